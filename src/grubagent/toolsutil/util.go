package toolsutil

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync/atomic"
)

// Package-level logger for tools. Handlers read it while NewToolbox may
// replace it.
var logger atomic.Pointer[slog.Logger]

func init() {
	logger.Store(slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{
		Level: slog.LevelError,
	})))
}

// SetLogger allows setting a custom logger for the tools package
func SetLogger(l *slog.Logger) {
	if l != nil {
		logger.Store(l)
	}
}

// GetLogger returns the current package logger
func GetLogger() *slog.Logger {
	return logger.Load()
}

// ErrCatalogUnavailable wraps failures reading the directory or review store.
var ErrCatalogUnavailable = errors.New("catalog unavailable")

// CatalogError reports which store operation failed.
func CatalogError(op string, err error) error {
	return fmt.Errorf("%w: %s: %v", ErrCatalogUnavailable, op, err)
}

// ContainsFold reports whether substr is within s, ignoring case and
// surrounding whitespace of substr. An empty substr matches everything.
func ContainsFold(s, substr string) bool {
	substr = strings.TrimSpace(substr)
	if substr == "" {
		return true
	}
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}
