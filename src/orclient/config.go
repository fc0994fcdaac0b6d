package orclient

import (
	"log/slog"
	"net/http"
	"time"
)

// Config holds configuration for the OpenRouter client
type Config struct {
	APIKey   string        // OpenRouter API key
	BaseURL  string        // Base URL for OpenRouter API
	Model    string        // Model every request is sent to
	Logger   *slog.Logger  // Logger for debugging
	Timeout  time.Duration // HTTP timeout
	SiteURL  string        // Site URL for ranking
	SiteName string        // Site name for ranking

	// HTTPClient overrides the default client; Timeout is ignored when set.
	HTTPClient *http.Client
}
