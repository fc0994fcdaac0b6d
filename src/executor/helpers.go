package executor

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/elee1766/grubguide/src/aisdk"
	"github.com/elee1766/grubguide/src/storage"
)

// memoKey identifies a tool call by name and canonical arguments, so that
// {"a":1,"b":2} and { "b":2, "a":1 } hit the same entry.
func memoKey(call aisdk.ToolCall) string {
	return call.Function.Name + "\x00" + canonicalArguments(call.Function.Arguments)
}

func canonicalArguments(raw json.RawMessage) string {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return "{}"
	}
	var v any
	if err := json.Unmarshal(trimmed, &v); err != nil {
		return string(trimmed)
	}
	// encoding/json sorts map keys
	out, err := json.Marshal(v)
	if err != nil {
		return string(trimmed)
	}
	return string(out)
}

// executeTools executes the given tool calls in order and returns the tool
// messages to send back. The first failing call fails the whole batch.
func (s *Service) executeTools(ctx context.Context, passID string, toolCalls []aisdk.ToolCall, memo map[string]*aisdk.ToolResponse) ([]*aisdk.Message, error) {
	toolResults := make([]*aisdk.Message, 0, len(toolCalls))

	for _, toolCall := range toolCalls {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		s.logger.Debug("executing tool", "name", toolCall.Function.Name, "id", toolCall.ID)
		s.callbacks.ToolCall(toolCall)

		key := memoKey(toolCall)
		if cached, ok := memo[key]; ok {
			s.logger.Debug("reusing tool result", "name", toolCall.Function.Name, "id", toolCall.ID)
			s.record(ctx, passID, toolCall, cached, nil, true, 0)
			s.callbacks.ToolResult(toolCall.Function.Name, cached, nil, true)
			toolResults = append(toolResults, toolMessage(toolCall, cached))
			continue
		}

		call := toolCall
		startTime := time.Now()
		result, execErr := s.toolbox.ExecuteTool(ctx, &call)
		duration := time.Since(startTime)

		var failure error
		switch {
		case execErr != nil:
			failure = execErr
		case result == nil:
			failure = errors.New("tool returned no response")
		case result.IsError:
			failure = errors.New(string(result.Content))
		}

		s.record(ctx, passID, toolCall, result, failure, false, duration)
		s.callbacks.ToolResult(toolCall.Function.Name, result, failure, false)

		if failure != nil {
			return nil, &ToolError{ToolName: toolCall.Function.Name, CallID: toolCall.ID, Err: failure}
		}

		memo[key] = result
		toolResults = append(toolResults, toolMessage(toolCall, result))
	}

	return toolResults, nil
}

func toolMessage(call aisdk.ToolCall, result *aisdk.ToolResponse) *aisdk.Message {
	return &aisdk.Message{
		Role:       aisdk.RoleTool,
		Content:    string(result.Content),
		Name:       call.Function.Name,
		ToolCallID: call.ID,
	}
}

// record saves a tool execution to the audit log when one is configured.
// A failed write is logged and otherwise ignored.
func (s *Service) record(ctx context.Context, passID string, call aisdk.ToolCall, result *aisdk.ToolResponse, failure error, cached bool, duration time.Duration) {
	if s.recorder == nil {
		return
	}

	execution := &storage.ToolExecution{
		PassID:     passID,
		ToolName:   call.Function.Name,
		Input:      string(call.Function.Arguments),
		Cached:     cached,
		DurationMs: duration.Milliseconds(),
	}
	if result != nil {
		execution.Output = string(result.Content)
	}
	if failure != nil {
		execution.Error = failure.Error()
		execution.Output = fmt.Sprintf("Error: %s", failure.Error())
	}

	if err := s.recorder.RecordToolExecution(ctx, execution); err != nil {
		s.logger.Error("Failed to save tool execution", "error", err)
	}
}
