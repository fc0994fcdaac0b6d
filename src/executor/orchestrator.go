package executor

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/elee1766/grubguide/src/agent"
	"github.com/elee1766/grubguide/src/aisdk"
	"github.com/google/uuid"
)

// pass tracks the state journey of one Reply call.
type pass struct {
	id        string
	state     ExecutionState
	result    *ReplyResult
	history   []aisdk.Turn
	logger    *slog.Logger
	callbacks *Callbacks
	started   time.Time
}

func (p *pass) transition(to ExecutionState) {
	from := p.state
	p.state = to
	p.result.States = append(p.result.States, to)
	p.logger.Debug("state transition", "from", from.String(), "to", to.String())
	p.callbacks.StateChange(p.id, from, to)
}

// Reply runs one pass for the latest user message. The model is called
// until it produces text; every tool-requesting turn counts as a round and
// the pass fails once the cap is exceeded.
//
// On failure the returned result is still usable: its Text is the failure
// reply and its History ends with that reply.
func (s *Service) Reply(ctx context.Context, req ReplyRequest) (*ReplyResult, error) {
	id := uuid.New().String()
	p := &pass{
		id:        id,
		state:     StateIdle,
		logger:    s.logger.With("pass_id", id),
		callbacks: s.callbacks,
		started:   time.Now(),
	}
	p.result = &ReplyResult{PassID: p.id, States: []ExecutionState{StateIdle}}
	p.history = aisdk.AppendTurns(req.History, aisdk.Turn{Role: aisdk.TurnUser, Text: req.Message})

	messages := aisdk.TurnsToMessages(s.SystemPrompt(), p.history)

	a := &agent.Agent{
		Model:       s.model,
		Toolbox:     s.toolbox,
		Temperature: s.temperature,
		MaxTokens:   s.maxTokens,
		Logger:      p.logger,
	}

	// Results of tool calls already made in this pass.
	memo := make(map[string]*aisdk.ToolResponse)

	for {
		p.transition(StateAwaitingModel)
		msg, err := a.SendMessages(ctx, messages)
		if err != nil {
			return s.fail(p, fmt.Errorf("model request failed: %w", err))
		}

		if len(msg.ToolCalls) > 0 {
			p.transition(StateToolInvocationRequested)
			if p.result.Rounds >= s.maxToolRounds {
				return s.fail(p, fmt.Errorf("%w: %d", ErrMaxToolRoundsExceeded, s.maxToolRounds))
			}
			p.result.Rounds++
			p.result.ToolCalls += len(msg.ToolCalls)

			assistantMsg := &aisdk.Message{
				Role:      aisdk.RoleAssistant,
				Content:   msg.Content,
				ToolCalls: msg.ToolCalls,
			}
			messages = append(messages, assistantMsg)

			p.transition(StateToolExecuting)
			toolMessages, err := s.executeTools(ctx, p.id, msg.ToolCalls, memo)
			if err != nil {
				return s.fail(p, err)
			}
			messages = append(messages, toolMessages...)
			continue
		}

		text := strings.TrimSpace(msg.Content)
		if text == "" {
			return s.fail(p, ErrEmptyResponse)
		}

		p.transition(StateResponding)
		p.result.Text = text
		p.result.History = aisdk.AppendTurns(p.history, aisdk.Turn{Role: aisdk.TurnAssistant, Text: text})
		p.logger.Info("reply generated",
			"rounds", p.result.Rounds,
			"tool_calls", p.result.ToolCalls,
			"duration", time.Since(p.started))
		p.transition(StateIdle)
		return p.result, nil
	}
}

func (s *Service) fail(p *pass, err error) (*ReplyResult, error) {
	p.transition(StateFailed)
	p.result.Text = s.failureReply
	p.result.History = aisdk.AppendTurns(p.history, aisdk.Turn{Role: aisdk.TurnAssistant, Text: s.failureReply})
	p.logger.Error("pass failed",
		"error", err,
		"rounds", p.result.Rounds,
		"tool_calls", p.result.ToolCalls,
		"duration", time.Since(p.started))
	p.transition(StateIdle)
	return p.result, err
}
