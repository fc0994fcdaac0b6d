package orclient

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"
)

// Common error variables
var (
	// ErrNoAPIKey indicates the API key is missing
	ErrNoAPIKey = errors.New("API key is required")

	// ErrEmptyResponse indicates the API returned no choices
	ErrEmptyResponse = errors.New("empty response from API")

	// ErrTimeout indicates a timeout occurred
	ErrTimeout = errors.New("operation timed out")
)

// ErrorResponse represents a standard error response from the API
// This matches the OpenRouter error format: {"error":{"message":"...","code":...}}
type ErrorResponse struct {
	Error struct {
		Message  string                 `json:"message"`
		Type     string                 `json:"type"`
		Code     ErrorCode              `json:"code"`
		Param    string                 `json:"param"`
		Metadata map[string]interface{} `json:"metadata"`
	} `json:"error"`
}

// ErrorCode accepts both the numeric codes OpenRouter sends and the string
// codes of OpenAI-compatible upstreams.
type ErrorCode string

// UnmarshalJSON implements json.Unmarshaler.
func (c *ErrorCode) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*c = ""
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*c = ErrorCode(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*c = ErrorCode(n.String())
	return nil
}

// String returns the code text.
func (c ErrorCode) String() string {
	return string(c)
}

// APIError represents an error response from the OpenRouter API.
type APIError struct {
	StatusCode int
	Type       string
	Message    string
	Code       string
	Param      string
	Details    map[string]interface{}
	RequestID  string
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.Code != "" && e.Code != strconv.Itoa(e.StatusCode) {
		return fmt.Sprintf("API error %d (%s): %s", e.StatusCode, e.Code, e.Message)
	}
	return fmt.Sprintf("API error %d: %s", e.StatusCode, e.Message)
}

// IsRateLimit returns true if this is a rate limit error.
func (e *APIError) IsRateLimit() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.Code == "rate_limit_exceeded"
}

// IsAuthError returns true if this is an authentication error.
func (e *APIError) IsAuthError() bool {
	return e.StatusCode == http.StatusUnauthorized || e.Code == "invalid_api_key"
}

// IsServerError returns true for upstream 5xx failures.
func (e *APIError) IsServerError() bool {
	return e.StatusCode >= 500 && e.StatusCode < 600
}

// TimeoutError represents a timeout error with context.
type TimeoutError struct {
	Operation string
	Duration  time.Duration
	Cause     error
}

// Error implements the error interface.
func (e *TimeoutError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s timed out after %v: %v", e.Operation, e.Duration, e.Cause)
	}
	return fmt.Sprintf("%s timed out after %v", e.Operation, e.Duration)
}

// Unwrap returns the underlying error.
func (e *TimeoutError) Unwrap() error {
	return e.Cause
}

// Is implements error matching.
func (e *TimeoutError) Is(target error) bool {
	return target == ErrTimeout
}

// ErrorHandler provides centralized error handling with logging.
type ErrorHandler struct {
	logger *slog.Logger
}

// NewErrorHandler creates a new error handler.
func NewErrorHandler(logger *slog.Logger) *ErrorHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ErrorHandler{
		logger: logger.With("component", "error_handler"),
	}
}

// Handle logs an error at a level matching its type and returns it unchanged.
func (eh *ErrorHandler) Handle(err error, operation string, attrs ...slog.Attr) error {
	if err == nil {
		return nil
	}

	logAttrs := []any{"operation", operation, "error", err.Error()}
	for _, attr := range attrs {
		logAttrs = append(logAttrs, attr.Key, attr.Value)
	}

	var apiErr *APIError
	var timeoutErr *TimeoutError
	switch {
	case errors.As(err, &apiErr):
		logAttrs = append(logAttrs, "status_code", apiErr.StatusCode, "request_id", apiErr.RequestID)
		switch {
		case apiErr.IsRateLimit():
			eh.logger.Warn("rate limited", logAttrs...)
		case apiErr.IsAuthError():
			eh.logger.Error("authentication failed", logAttrs...)
		case apiErr.IsServerError():
			eh.logger.Warn("upstream server error", logAttrs...)
		default:
			eh.logger.Error("API error", logAttrs...)
		}
	case errors.As(err, &timeoutErr):
		eh.logger.Error("timeout error", append(logAttrs, "duration", timeoutErr.Duration)...)
	default:
		eh.logger.Error("error occurred", logAttrs...)
	}

	return err
}
