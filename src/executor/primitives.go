package executor

import (
	"github.com/elee1766/grubguide/src/aisdk"
)

// ExecutionState represents the current state of an orchestrator pass
type ExecutionState int

const (
	// StateIdle means no pass is in progress
	StateIdle ExecutionState = iota
	// StateAwaitingModel means a request is out to the generation engine
	StateAwaitingModel
	// StateToolInvocationRequested means the model answered with tool calls
	StateToolInvocationRequested
	// StateToolExecuting means tool calls are being run through the toolbox
	StateToolExecuting
	// StateResponding means the model produced the final text reply
	StateResponding
	// StateFailed means the pass ended in an error
	StateFailed
)

func (s ExecutionState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateAwaitingModel:
		return "awaiting_model"
	case StateToolInvocationRequested:
		return "tool_invocation_requested"
	case StateToolExecuting:
		return "tool_executing"
	case StateResponding:
		return "responding"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Terminal reports whether s ends a pass. The only transition out of a
// terminal state is back to StateIdle.
func (s ExecutionState) Terminal() bool {
	return s == StateResponding || s == StateFailed
}

// ReplyRequest is one user message together with the dialogue so far.
type ReplyRequest struct {
	// History is never modified.
	History []aisdk.Turn
	Message string
}

// ReplyResult is the outcome of one orchestrator pass.
type ReplyResult struct {
	// Text is the assistant reply, or the failure reply when the pass failed.
	Text string
	// History is the input history plus the user turn and the assistant turn.
	History []aisdk.Turn
	// ToolCalls counts the tool calls the model requested, including
	// memoized repeats.
	ToolCalls int
	// Rounds counts model turns that requested tools.
	Rounds int
	// States is the sequence of states the pass went through. It starts
	// and ends with StateIdle.
	States []ExecutionState
	// PassID identifies the pass in logs and the audit table.
	PassID string
}

// FinalState returns the terminal state the pass reached, or StateIdle
// when it never reached one.
func (r *ReplyResult) FinalState() ExecutionState {
	if r == nil {
		return StateIdle
	}
	for i := len(r.States) - 1; i >= 0; i-- {
		if r.States[i].Terminal() {
			return r.States[i]
		}
	}
	return StateIdle
}
