// Package orclient is a single-shot OpenRouter chat completions client.
package orclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/elee1766/grubguide/src/aisdk"
)

const (
	defaultBaseURL = "https://openrouter.ai/api/v1"
	defaultTimeout = 30 * time.Second
	defaultModel   = "google/gemini-2.0-flash-001"
)

var _ aisdk.ModelClient = (*Client)(nil)

// Client is the OpenRouter API client, bound to one model.
type Client struct {
	config       Config
	httpClient   *http.Client
	logger       *slog.Logger
	errorHandler *ErrorHandler
}

// NewClient creates a new OpenRouter API client.
func NewClient(config Config) *Client {
	if config.BaseURL == "" {
		config.BaseURL = defaultBaseURL
	}
	config.BaseURL = strings.TrimRight(config.BaseURL, "/")
	if config.Timeout == 0 {
		config.Timeout = defaultTimeout
	}
	if config.Model == "" {
		config.Model = defaultModel
	}

	httpClient := config.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{
			Timeout: config.Timeout,
		}
	}

	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "openrouter_client")

	return &Client{
		config:       config,
		httpClient:   httpClient,
		logger:       logger,
		errorHandler: NewErrorHandler(logger),
	}
}

// GetModelInfo returns the model the client is bound to.
func (c *Client) GetModelInfo() *aisdk.ModelInfo {
	return &aisdk.ModelInfo{
		ID:            c.config.Model,
		Name:          c.config.Model,
		Provider:      "openrouter",
		SupportsTools: true,
	}
}

// CreateChatCompletion sends a chat completion request to OpenRouter. The
// request is made once; failures are returned to the caller.
func (c *Client) CreateChatCompletion(ctx context.Context, req *aisdk.ChatCompletionRequest) (*aisdk.ChatCompletionResponse, error) {
	if c.config.APIKey == "" {
		return nil, ErrNoAPIKey
	}

	model := req.Model
	if model == "" {
		model = c.config.Model
	}

	logger := c.logger.With("method", "CreateChatCompletion", "model", model)
	logger.Debug("sending chat completion request", "messages", len(req.Messages), "tools", len(req.Tools))

	formattedReq := c.formatRequest(model, req)

	if c.logger.Enabled(ctx, slog.LevelDebug) {
		if debugBody, err := json.MarshalIndent(formattedReq, "", "  "); err == nil {
			logger.Debug("formatted request", "body", string(debugBody))
		}
	}

	body, err := json.Marshal(formattedReq)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := c.newRequest(ctx, http.MethodPost, "/chat/completions", body)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, c.errorHandler.Handle(c.transportError(ctx, err, time.Since(start)), "chat completion")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, c.errorHandler.Handle(c.handleError(resp), "chat completion")
	}

	var result aisdk.ChatCompletionResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, c.errorHandler.Handle(fmt.Errorf("failed to decode response: %w", err), "chat completion")
	}
	if len(result.Choices) == 0 {
		return nil, c.errorHandler.Handle(ErrEmptyResponse, "chat completion")
	}

	logger.Info("chat completion successful",
		"duration", time.Since(start),
		"finish_reason", result.Choices[0].FinishReason,
		"usage_total", result.Usage.TotalTokens,
		"usage_cached", result.Usage.PromptTokensCached)
	return &result, nil
}

// transportError classifies a failed round trip.
func (c *Client) transportError(ctx context.Context, err error, elapsed time.Duration) error {
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return &TimeoutError{Operation: "chat completion", Duration: elapsed, Cause: err}
	}
	return fmt.Errorf("request failed: %w", err)
}

// newRequest creates a new HTTP request with the appropriate headers.
func (c *Client) newRequest(ctx context.Context, method, path string, body []byte) (*http.Request, error) {
	url := c.config.BaseURL + path

	req, err := http.NewRequestWithContext(ctx, method, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+c.config.APIKey)
	req.Header.Set("Content-Type", "application/json")

	// Optional headers for ranking
	if c.config.SiteURL != "" {
		req.Header.Set("HTTP-Referer", c.config.SiteURL)
	}
	if c.config.SiteName != "" {
		req.Header.Set("X-Title", c.config.SiteName)
	}

	return req, nil
}

// handleError processes error responses from the API.
func (c *Client) handleError(resp *http.Response) error {
	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("failed to read error response: %w", err)
	}

	requestID := resp.Header.Get("X-Request-ID")

	var errResp ErrorResponse
	if err := json.Unmarshal(body, &errResp); err != nil || errResp.Error.Message == "" {
		// Return a basic API error if we can't parse the response
		return &APIError{
			StatusCode: resp.StatusCode,
			Message:    strings.TrimSpace(string(body)),
			RequestID:  requestID,
		}
	}

	apiErr := &APIError{
		StatusCode: resp.StatusCode,
		Type:       errResp.Error.Type,
		Message:    errResp.Error.Message,
		Code:       errResp.Error.Code.String(),
		Param:      errResp.Error.Param,
		Details:    errResp.Error.Metadata,
		RequestID:  requestID,
	}

	if resp.StatusCode == http.StatusTooManyRequests {
		if retryAfter := resp.Header.Get("Retry-After"); retryAfter != "" {
			if apiErr.Details == nil {
				apiErr.Details = make(map[string]interface{})
			}
			apiErr.Details["retry_after"] = retryAfter
		}
	}

	return apiErr
}

// detectProvider detects the upstream provider from the model name
func detectProvider(model string) string {
	if strings.HasPrefix(model, "anthropic/") || strings.HasPrefix(model, "claude") {
		return "anthropic"
	}
	if strings.HasPrefix(model, "google/") || strings.HasPrefix(model, "gemini") {
		return "google"
	}
	if strings.HasPrefix(model, "openai/") || strings.HasPrefix(model, "gpt") {
		return "openai"
	}
	return "unknown"
}

type wireMessage struct {
	Role       string           `json:"role"`
	Content    string           `json:"content"`
	Name       string           `json:"name,omitempty"`
	ToolCallID string           `json:"tool_call_id,omitempty"`
	ToolCalls  []aisdk.ToolCall `json:"tool_calls,omitempty"`
}

type wireRequest struct {
	Model       string            `json:"model"`
	Messages    []wireMessage     `json:"messages"`
	Temperature *float64          `json:"temperature,omitempty"`
	MaxTokens   *int              `json:"max_tokens,omitempty"`
	TopP        *float64          `json:"top_p,omitempty"`
	Stop        []string          `json:"stop,omitempty"`
	Tools       []*aisdk.ChatTool `json:"tools,omitempty"`
	ToolChoice  string            `json:"tool_choice,omitempty"`
	User        string            `json:"user,omitempty"`
}

// formatRequest builds the OpenAI-format body OpenRouter expects, with the
// per-provider fixes applied.
func (c *Client) formatRequest(model string, req *aisdk.ChatCompletionRequest) wireRequest {
	provider := detectProvider(model)

	messages := make([]wireMessage, 0, len(req.Messages))
	for _, msg := range req.Messages {
		if msg == nil {
			continue
		}
		wm := wireMessage{
			Role:       msg.Role,
			Content:    msg.Content,
			Name:       msg.Name,
			ToolCallID: msg.ToolCallID,
		}

		// Ensure tool calls have proper type and non-null arguments
		if len(msg.ToolCalls) > 0 {
			wm.ToolCalls = make([]aisdk.ToolCall, len(msg.ToolCalls))
			copy(wm.ToolCalls, msg.ToolCalls)
			for i := range wm.ToolCalls {
				if wm.ToolCalls[i].Type == "" {
					wm.ToolCalls[i].Type = "function"
				}
				if len(wm.ToolCalls[i].Function.Arguments) == 0 {
					wm.ToolCalls[i].Function.Arguments = json.RawMessage("{}")
				}
			}
		}

		if provider == "google" {
			// Google rejects unnamed tool responses and empty assistant turns.
			if wm.Role == aisdk.RoleTool && wm.Name == "" {
				wm.Name = "tool_response"
			}
			if wm.Role == aisdk.RoleAssistant && wm.Content == "" && len(wm.ToolCalls) > 0 {
				wm.Content = "Let me check."
			}
		}

		messages = append(messages, wm)
	}

	out := wireRequest{
		Model:       model,
		Messages:    messages,
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
		TopP:        req.TopP,
		Stop:        req.Stop,
		Tools:       req.Tools,
		User:        req.User,
	}
	if len(req.Tools) > 0 {
		out.ToolChoice = req.ToolChoice
	}
	return out
}
