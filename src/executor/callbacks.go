package executor

import (
	"github.com/elee1766/grubguide/src/aisdk"
)

// Callbacks holds optional hooks into a pass. A nil *Callbacks is valid.
type Callbacks struct {
	// OnStateChange is called on every state transition
	OnStateChange func(passID string, from, to ExecutionState)

	// OnToolCall is called before executing a tool
	OnToolCall func(toolCall aisdk.ToolCall)

	// OnToolResult is called after tool execution; cached is set when the
	// result came from an earlier identical call in the same pass
	OnToolResult func(toolName string, result *aisdk.ToolResponse, err error, cached bool)
}

// StateChange calls the OnStateChange callback if it's set
func (c *Callbacks) StateChange(passID string, from, to ExecutionState) {
	if c == nil || c.OnStateChange == nil {
		return
	}
	c.OnStateChange(passID, from, to)
}

// ToolCall calls the OnToolCall callback if it's set
func (c *Callbacks) ToolCall(toolCall aisdk.ToolCall) {
	if c == nil || c.OnToolCall == nil {
		return
	}
	c.OnToolCall(toolCall)
}

// ToolResult calls the OnToolResult callback if it's set
func (c *Callbacks) ToolResult(toolName string, result *aisdk.ToolResponse, err error, cached bool) {
	if c == nil || c.OnToolResult == nil {
		return
	}
	c.OnToolResult(toolName, result, err, cached)
}
