// Package chat is the request/response boundary in front of the
// orchestrator. Whatever goes wrong behind it, callers get a well-formed
// reply.
package chat

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/elee1766/grubguide/src/aisdk"
	"github.com/elee1766/grubguide/src/executor"
	"github.com/elee1766/grubguide/src/grubagent"
)

// DefaultTimeout bounds one Send.
const DefaultTimeout = 30 * time.Second

// Replier runs one orchestrator pass. executor.Service implements it.
type Replier interface {
	Reply(ctx context.Context, req executor.ReplyRequest) (*executor.ReplyResult, error)
}

// Config configures a Service.
type Config struct {
	Replier Replier
	Timeout time.Duration
	Logger  *slog.Logger
}

// Service answers chat requests.
type Service struct {
	replier Replier
	timeout time.Duration
	logger  *slog.Logger
}

// NewService creates a chat service.
func NewService(cfg Config) (*Service, error) {
	if cfg.Replier == nil {
		return nil, errors.New("replier is required")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Service{
		replier: cfg.Replier,
		timeout: cfg.Timeout,
		logger:  cfg.Logger.With("component", "chat"),
	}, nil
}

// Timeout returns the per-request deadline.
func (s *Service) Timeout() time.Duration {
	return s.timeout
}

// Send answers a wire request. It never fails.
func (s *Service) Send(ctx context.Context, req Request) Response {
	_, text := s.Converse(ctx, DecodeHistory(req.ChatHistory), req.UserMessage)
	return Response{BotResponse: text}
}

type outcome struct {
	result *executor.ReplyResult
	err    error
}

// Converse answers message given history and returns the updated history
// with the reply. A blank message gets the greeting without calling the
// model.
func (s *Service) Converse(ctx context.Context, history []aisdk.Turn, message string) ([]aisdk.Turn, string) {
	message = strings.TrimSpace(message)
	if message == "" {
		return aisdk.AppendTurns(history, aisdk.Turn{Role: aisdk.TurnAssistant, Text: grubagent.GreetingMessage}), grubagent.GreetingMessage
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	done := make(chan outcome, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- outcome{err: fmt.Errorf("panic in orchestrator: %v", r)}
			}
		}()
		result, err := s.replier.Reply(ctx, executor.ReplyRequest{History: history, Message: message})
		done <- outcome{result: result, err: err}
	}()

	apology := func() ([]aisdk.Turn, string) {
		return aisdk.AppendTurns(history,
			aisdk.Turn{Role: aisdk.TurnUser, Text: message},
			aisdk.Turn{Role: aisdk.TurnAssistant, Text: grubagent.ApologyMessage},
		), grubagent.ApologyMessage
	}

	select {
	case <-ctx.Done():
		s.logger.Error("chat request timed out", "timeout", s.timeout, "error", ctx.Err())
		return apology()
	case o := <-done:
		if o.err != nil {
			s.logger.Error("chat request failed", "error", o.err)
			return apology()
		}
		if o.result == nil || strings.TrimSpace(o.result.Text) == "" {
			s.logger.Error("chat request returned no reply")
			return apology()
		}
		return o.result.History, o.result.Text
	}
}
