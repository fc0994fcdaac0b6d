// Package executor runs the dialogue loop: model turn, optional tool
// rounds, final reply.
package executor

import (
	"context"
	"log/slog"
	"time"

	"github.com/elee1766/grubguide/src/agent"
	"github.com/elee1766/grubguide/src/aisdk"
	"github.com/elee1766/grubguide/src/grubagent"
	"github.com/elee1766/grubguide/src/storage"
)

// DefaultMaxToolRounds is the number of tool-requesting model turns allowed
// per user message.
const DefaultMaxToolRounds = 3

// ToolRecorder stores an audit row per tool execution. storage.DB
// implements it.
type ToolRecorder interface {
	RecordToolExecution(ctx context.Context, execution *storage.ToolExecution) error
}

// Service handles orchestrator passes with all necessary dependencies
type Service struct {
	model         aisdk.ModelClient
	toolbox       *agent.DefaultToolbox
	logger        *slog.Logger
	systemPrompt  string
	maxToolRounds int
	failureReply  string
	recorder      ToolRecorder
	callbacks     *Callbacks
	temperature   *float64
	maxTokens     *int
	now           func() time.Time
}

// ServiceConfig holds configuration for creating a new Service
type ServiceConfig struct {
	ModelClient aisdk.ModelClient
	Toolbox     *agent.DefaultToolbox
	// SystemPrompt overrides the generated prompt when set.
	SystemPrompt  string
	MaxToolRounds int
	// FailureReply is the text of a failed pass. Defaults to the apology.
	FailureReply string
	// Recorder is optional.
	Recorder    ToolRecorder
	Callbacks   *Callbacks
	Temperature *float64
	MaxTokens   *int
	Logger      *slog.Logger
	// Now is used for the date line of the generated prompt.
	Now func() time.Time
}

// NewService creates a new orchestrator service
func NewService(config ServiceConfig) (*Service, error) {
	if config.ModelClient == nil {
		return nil, ErrModelClientRequired
	}
	if config.Toolbox == nil {
		return nil, ErrToolboxRequired
	}
	if config.Logger == nil {
		config.Logger = slog.Default()
	}

	// Default max tool rounds if not specified
	if config.MaxToolRounds <= 0 {
		config.MaxToolRounds = DefaultMaxToolRounds
	}
	if config.FailureReply == "" {
		config.FailureReply = grubagent.ApologyMessage
	}
	if config.Now == nil {
		config.Now = time.Now
	}

	return &Service{
		model:         config.ModelClient,
		toolbox:       config.Toolbox,
		logger:        config.Logger.With("component", "executor"),
		systemPrompt:  config.SystemPrompt,
		maxToolRounds: config.MaxToolRounds,
		failureReply:  config.FailureReply,
		recorder:      config.Recorder,
		callbacks:     config.Callbacks,
		temperature:   config.Temperature,
		maxTokens:     config.MaxTokens,
		now:           config.Now,
	}, nil
}

// ModelInfo returns the model the service is bound to.
func (s *Service) ModelInfo() *aisdk.ModelInfo {
	return s.model.GetModelInfo()
}

// MaxToolRounds returns the configured cap.
func (s *Service) MaxToolRounds() int {
	return s.maxToolRounds
}

// SystemPrompt returns the prompt sent at the start of every pass.
func (s *Service) SystemPrompt() string {
	if s.systemPrompt != "" {
		return s.systemPrompt
	}
	return grubagent.GenerateSystemPrompt(s.toolbox, s.now())
}
