package aisdk

import (
	"context"
)

// ModelClient represents a client for a specific model
type ModelClient interface {
	CreateChatCompletion(ctx context.Context, req *ChatCompletionRequest) (*ChatCompletionResponse, error)
	GetModelInfo() *ModelInfo
}

// ModelClientFunc adapts a function to the ModelClient interface.
type ModelClientFunc func(ctx context.Context, req *ChatCompletionRequest) (*ChatCompletionResponse, error)

func (f ModelClientFunc) CreateChatCompletion(ctx context.Context, req *ChatCompletionRequest) (*ChatCompletionResponse, error) {
	return f(ctx, req)
}

func (f ModelClientFunc) GetModelInfo() *ModelInfo {
	return &ModelInfo{ID: "func", Name: "func", Provider: "func", SupportsTools: true}
}
