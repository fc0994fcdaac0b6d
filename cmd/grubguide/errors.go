package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"os"

	"github.com/elee1766/grubguide/src/config"
	"github.com/elee1766/grubguide/src/orclient"
)

// Exit codes following standard conventions
const (
	ExitSuccess     = 0 // Success
	ExitError       = 1 // General error
	ExitUsage       = 2 // Usage error
	ExitConfig      = 3 // Configuration error
	ExitAuth        = 4 // Authentication error
	ExitNetwork     = 6 // Network error
	ExitTimeout     = 7 // Timeout error
	ExitInterrupted = 8 // Interrupted by user
)

// ErrorHandler handles different types of errors and exits with appropriate codes
type ErrorHandler struct {
	logger *slog.Logger
}

// NewErrorHandler creates a new error handler
func NewErrorHandler(logger *slog.Logger) *ErrorHandler {
	return &ErrorHandler{logger: logger}
}

// HandleError handles an error and exits with the appropriate code
func (h *ErrorHandler) HandleError(err error) {
	if err == nil {
		return
	}

	code := exitCode(err)
	h.logger.Debug("command failed", "error", err, "exit_code", code)

	fmt.Fprintf(os.Stderr, "Error: %s\n", err.Error())

	os.Exit(code)
}

// usageError marks a bad argument that kong could not catch
type usageError struct {
	msg string
}

func (e *usageError) Error() string {
	return e.msg
}

func usagef(format string, args ...any) error {
	return &usageError{msg: fmt.Sprintf(format, args...)}
}

// exitCode determines the appropriate exit code for an error
func exitCode(err error) int {
	var validationErr config.ValidationError
	var apiErr *orclient.APIError
	var usageErr *usageError
	var netErr net.Error

	switch {
	case errors.As(err, &validationErr):
		return ExitConfig
	case errors.Is(err, orclient.ErrNoAPIKey):
		return ExitAuth
	case errors.As(err, &apiErr) && apiErr.IsAuthError():
		return ExitAuth
	case errors.Is(err, context.Canceled):
		return ExitInterrupted
	case errors.Is(err, orclient.ErrTimeout), errors.Is(err, context.DeadlineExceeded):
		return ExitTimeout
	case errors.As(err, &apiErr) && apiErr.IsServerError():
		return ExitNetwork
	case errors.As(err, &netErr):
		return ExitNetwork
	case errors.As(err, &usageErr):
		return ExitUsage
	default:
		return ExitError
	}
}

// FatalError logs a fatal error and exits
func FatalError(logger *slog.Logger, err error) {
	NewErrorHandler(logger).HandleError(err)
}
