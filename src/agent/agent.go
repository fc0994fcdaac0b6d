package agent

import (
	"context"
	"errors"
	"log/slog"

	"github.com/elee1766/grubguide/src/aisdk"
)

// ErrNoChoices is returned when the model response carries no choices.
var ErrNoChoices = errors.New("no choices in response")

// Agent binds a model to a toolbox and sampling parameters.
type Agent struct {
	Model       aisdk.ModelClient
	Toolbox     *DefaultToolbox
	Temperature *float64
	MaxTokens   *int
	Logger      *slog.Logger
}

// SendMessages sends the full message list, advertising every tool in the
// toolbox, and returns the first choice.
func (a *Agent) SendMessages(ctx context.Context, messages []*aisdk.Message) (*aisdk.Message, error) {
	var chatTools []*aisdk.ChatTool
	if a.Toolbox != nil {
		chatTools = ToChatTools(a.Toolbox.Tools())
	}

	ccr := &aisdk.ChatCompletionRequest{
		Messages:    messages,
		Tools:       chatTools,
		Temperature: a.Temperature,
		MaxTokens:   a.MaxTokens,
	}
	if len(chatTools) > 0 {
		ccr.ToolChoice = "auto"
	}

	response, err := a.Model.CreateChatCompletion(ctx, ccr)
	if err != nil {
		return nil, err
	}

	if len(response.Choices) == 0 {
		return nil, ErrNoChoices
	}

	if a.Logger != nil {
		a.Logger.Debug("model responded",
			"finish_reason", response.Choices[0].FinishReason,
			"tool_calls", len(response.Choices[0].Message.ToolCalls),
			"usage_total", response.Usage.TotalTokens)
	}

	msg := response.Choices[0].Message
	return &msg, nil
}
