// Package localmodel is an offline, rule-based chat model. It understands
// the handful of requests the guide supports, calls the catalog tools the
// same way a hosted model would and renders replies from their results.
package localmodel

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/elee1766/grubguide/src/aisdk"
	"github.com/elee1766/grubguide/src/grubagent"
	"github.com/elee1766/grubguide/src/grubagent/tools"
	tool_findrestaurants "github.com/elee1766/grubguide/src/grubagent/tools/tool_findrestaurants"
	tool_getreviews "github.com/elee1766/grubguide/src/grubagent/tools/tool_getreviews"
	"github.com/google/uuid"
)

// ModelID is reported as the model of every response.
const ModelID = "grubguide/local"

// Copy used only by the local model.
const (
	AskWhichReviewsMessage = "Which restaurant would you like to see reviews for?"
)

var (
	// ErrToolNotOffered is returned when the request does not advertise a
	// tool the message needs.
	ErrToolNotOffered = errors.New("tool not offered in request")
	// ErrNoUserMessage is returned when the request has no user message.
	ErrNoUserMessage = errors.New("no user message in request")
)

// Client is a deterministic aisdk.ModelClient.
type Client struct {
	logger *slog.Logger
}

var _ aisdk.ModelClient = (*Client)(nil)

// New creates a local model client.
func New(logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{logger: logger.With("component", "local_model")}
}

// GetModelInfo describes the local model.
func (c *Client) GetModelInfo() *aisdk.ModelInfo {
	return &aisdk.ModelInfo{
		ID:            ModelID,
		Name:          "Gadag Grub Guide (local)",
		Provider:      "local",
		SupportsTools: true,
	}
}

// CreateChatCompletion answers the last user message. When the message
// needs catalog data and no tool result follows it yet, the response is a
// tool call; otherwise it is the rendered reply.
func (c *Client) CreateChatCompletion(ctx context.Context, req *aisdk.ChatCompletionRequest) (*aisdk.ChatCompletionResponse, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	userIdx := lastIndex(req.Messages, aisdk.RoleUser)
	if userIdx < 0 {
		return nil, ErrNoUserMessage
	}
	in := classify(req.Messages[userIdx].Content, awaitingAnswer(req.Messages[:userIdx]))
	c.logger.Debug("classified message", "intent", in.kind.String(), "arg", in.arg)

	if result := lastToolResult(req.Messages[userIdx+1:]); result != nil {
		text, err := render(in, result)
		if err != nil {
			return nil, err
		}
		return c.textResponse(req, text), nil
	}

	name, args, ok := toolFor(in)
	if !ok {
		return c.textResponse(req, reply(in)), nil
	}
	if !offered(req.Tools, name) {
		return nil, fmt.Errorf("%w: %s", ErrToolNotOffered, name)
	}
	return c.toolCallResponse(req, name, args)
}

// toolFor returns the tool call an intent needs, if any.
func toolFor(in intent) (string, map[string]string, bool) {
	switch in.kind {
	case intentList:
		return tools.FindRestaurantsName, map[string]string{}, true
	case intentCuisine:
		return tools.FindRestaurantsName, map[string]string{"cuisine": in.arg}, true
	case intentRestaurantInfo, intentReviewLink:
		return tools.FindRestaurantsName, map[string]string{"name": in.arg}, true
	case intentReviews:
		return tools.GetReviewsName, map[string]string{"restaurantName": in.arg}, true
	default:
		return "", nil, false
	}
}

// reply is the answer for intents that need no catalog data.
func reply(in intent) string {
	switch in.kind {
	case intentGreeting:
		return grubagent.GreetingMessage
	case intentAskReviewTarget:
		return grubagent.AskWhichRestaurantMessage
	case intentAskReviewsTarget:
		return AskWhichReviewsMessage
	default:
		return grubagent.FallbackMessage
	}
}

func render(in intent, result *aisdk.Message) (string, error) {
	switch result.Name {
	case tools.FindRestaurantsName:
		var out tool_findrestaurants.FindRestaurantsOutput
		if err := json.Unmarshal([]byte(result.Content), &out); err != nil {
			return "", fmt.Errorf("failed to decode %s result: %w", result.Name, err)
		}
		return renderRestaurants(in, out.Restaurants), nil
	case tools.GetReviewsName:
		var out tool_getreviews.GetReviewsOutput
		if err := json.Unmarshal([]byte(result.Content), &out); err != nil {
			return "", fmt.Errorf("failed to decode %s result: %w", result.Name, err)
		}
		return grubagent.FormatReviews(out), nil
	default:
		return "", fmt.Errorf("unexpected tool result from %q", result.Name)
	}
}

func renderRestaurants(in intent, restaurants []tool_findrestaurants.RestaurantInfo) string {
	switch in.kind {
	case intentCuisine:
		if len(restaurants) == 0 {
			return fmt.Sprintf("Sorry, I couldn't find any %s restaurants in Gadag.", in.arg)
		}
		return withMore(fmt.Sprintf("Here are the %s restaurants I found:\n", in.arg), restaurants)

	case intentRestaurantInfo:
		switch len(restaurants) {
		case 0:
			return fmt.Sprintf("Sorry, I couldn't find a restaurant called \"%s\" in Gadag.", in.arg)
		case 1:
			r := restaurants[0]
			return fmt.Sprintf("%s serves %s. %s", r.Name, r.Cuisine, r.Description)
		default:
			return withMore(fmt.Sprintf("I found a few places matching \"%s\":\n", in.arg), restaurants)
		}

	case intentReviewLink:
		if len(restaurants) == 0 {
			return fmt.Sprintf("Sorry, I couldn't find a restaurant called \"%s\" in Gadag. You can browse the full list of restaurants to find the one you'd like to review.", in.arg)
		}
		r := restaurants[0]
		return fmt.Sprintf("Great! You can leave a review for %s here: %s", r.Name, grubagent.ReviewLink(r.ID))

	default:
		if len(restaurants) == 0 {
			return "Sorry, I couldn't find any restaurants in Gadag right now."
		}
		return withMore("Here are some restaurants in Gadag:\n", restaurants)
	}
}

func withMore(header string, restaurants []tool_findrestaurants.RestaurantInfo) string {
	text := header + grubagent.FormatRestaurantList(restaurants, grubagent.DefaultListLimit)
	if extra := len(restaurants) - grubagent.DefaultListLimit; extra > 0 {
		text += fmt.Sprintf("\n\n…and %d more. Ask me about a cuisine to narrow it down.", extra)
	}
	return text
}

func (c *Client) textResponse(req *aisdk.ChatCompletionRequest, text string) *aisdk.ChatCompletionResponse {
	return c.response(req, aisdk.Message{Role: aisdk.RoleAssistant, Content: text}, "stop")
}

func (c *Client) toolCallResponse(req *aisdk.ChatCompletionRequest, name string, args map[string]string) (*aisdk.ChatCompletionResponse, error) {
	raw, err := json.Marshal(args)
	if err != nil {
		return nil, fmt.Errorf("failed to encode tool arguments: %w", err)
	}
	msg := aisdk.Message{
		Role: aisdk.RoleAssistant,
		ToolCalls: []aisdk.ToolCall{{
			ID:       "call_" + uuid.NewString(),
			Type:     "function",
			Function: aisdk.FunctionCall{Name: name, Arguments: raw},
		}},
	}
	return c.response(req, msg, "tool_calls"), nil
}

func (c *Client) response(req *aisdk.ChatCompletionRequest, msg aisdk.Message, finish string) *aisdk.ChatCompletionResponse {
	prompt := estimateTokens(req)
	completion := len(msg.Content) / 4
	return &aisdk.ChatCompletionResponse{
		ID:      fmt.Sprintf("local-chatcmpl-%d", time.Now().UnixNano()),
		Object:  "chat.completion",
		Created: time.Now().Unix(),
		Model:   ModelID,
		Choices: []aisdk.Choice{{Index: 0, Message: msg, FinishReason: finish}},
		Usage: aisdk.Usage{
			PromptTokens:     prompt,
			CompletionTokens: completion,
			TotalTokens:      prompt + completion,
		},
	}
}

// estimateTokens provides a rough token count estimate.
func estimateTokens(req *aisdk.ChatCompletionRequest) int {
	total := 0
	for _, msg := range req.Messages {
		total += len(msg.Content) / 4
	}
	return total
}

// awaitingAnswer reports which question the assistant turn right before
// the user message asked.
func awaitingAnswer(before []*aisdk.Message) awaitKind {
	if len(before) == 0 || before[len(before)-1].Role != aisdk.RoleAssistant {
		return awaitNone
	}
	switch strings.TrimSpace(before[len(before)-1].Content) {
	case grubagent.AskWhichRestaurantMessage:
		return awaitReviewTarget
	case AskWhichReviewsMessage:
		return awaitReviewsTarget
	default:
		return awaitNone
	}
}

func lastIndex(messages []*aisdk.Message, role string) int {
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i] != nil && messages[i].Role == role {
			return i
		}
	}
	return -1
}

func lastToolResult(messages []*aisdk.Message) *aisdk.Message {
	idx := lastIndex(messages, aisdk.RoleTool)
	if idx < 0 {
		return nil
	}
	return messages[idx]
}

func offered(chatTools []*aisdk.ChatTool, name string) bool {
	for _, t := range chatTools {
		if t != nil && t.Function.Name == name {
			return true
		}
	}
	return false
}
