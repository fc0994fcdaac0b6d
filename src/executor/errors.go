package executor

import (
	"errors"
	"fmt"
)

var (
	// Config validation errors
	ErrModelClientRequired = errors.New("model client is required")
	ErrToolboxRequired     = errors.New("toolbox is required")

	// Execution errors
	ErrMaxToolRoundsExceeded = errors.New("maximum tool rounds exceeded")
	ErrEmptyResponse         = errors.New("model returned an empty reply")
)

// ToolError represents a failed tool call inside a pass.
type ToolError struct {
	ToolName string
	CallID   string
	Err      error
}

// Error implements the error interface.
func (e *ToolError) Error() string {
	if e.CallID != "" {
		return fmt.Sprintf("tool %s (call %s) failed: %v", e.ToolName, e.CallID, e.Err)
	}
	return fmt.Sprintf("tool %s failed: %v", e.ToolName, e.Err)
}

// Unwrap returns the underlying error.
func (e *ToolError) Unwrap() error {
	return e.Err
}
