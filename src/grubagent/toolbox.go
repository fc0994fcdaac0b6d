package grubagent

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/elee1766/grubguide/src/agent"
	"github.com/elee1766/grubguide/src/aisdk"
	"github.com/elee1766/grubguide/src/catalog"
	"github.com/elee1766/grubguide/src/grubagent/tools"
	"github.com/elee1766/grubguide/src/grubagent/toolsutil"
	"github.com/elee1766/grubguide/src/policy"
)

// PolicyEvaluator decides whether a tool call may run.
type PolicyEvaluator interface {
	Evaluate(ctx context.Context, in policy.Input) (policy.Decision, error)
}

// Catalog is what the tools read from.
type Catalog interface {
	catalog.Directory
	catalog.ReviewStore
}

// ToolboxConfig configures NewToolbox.
type ToolboxConfig struct {
	Catalog Catalog
	// Policy is optional; when nil every registered tool may run.
	Policy PolicyEvaluator
	Logger *slog.Logger
}

// NewToolbox registers the read-only catalog tools with logging and, when
// configured, policy middleware.
func NewToolbox(cfg ToolboxConfig) (*agent.DefaultToolbox, error) {
	if cfg.Catalog == nil {
		return nil, fmt.Errorf("catalog is required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	toolsutil.SetLogger(logger.With("component", "tools"))

	findRestaurants, err := tools.FindRestaurantsTool(cfg.Catalog)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s tool: %w", tools.FindRestaurantsName, err)
	}
	getReviews, err := tools.GetReviewsTool(cfg.Catalog, cfg.Catalog)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s tool: %w", tools.GetReviewsName, err)
	}

	toolbox := agent.NewToolbox[agent.Tool]()
	for _, tool := range []agent.Tool{findRestaurants, getReviews} {
		if err := toolbox.RegisterTool(tool); err != nil {
			return nil, err
		}
	}

	toolbox.RegisterMiddleware(agent.LoggingMiddleware(logger.With("component", "toolbox")))
	if cfg.Policy != nil {
		toolbox.RegisterMiddleware(PolicyMiddleware(cfg.Policy, logger))
	}
	return toolbox, nil
}

// PolicyMiddleware turns a blocked call into an error response without
// running the tool. Evaluation failures are returned as errors.
func PolicyMiddleware(evaluator PolicyEvaluator, logger *slog.Logger) agent.ToolMiddleware {
	if logger == nil {
		logger = slog.Default()
	}
	return func(next agent.ToolExecutor) agent.ToolExecutor {
		return func(ctx context.Context, call *aisdk.ToolCall) (*aisdk.ToolResponse, error) {
			decision, err := evaluator.Evaluate(ctx, policy.Input{
				Tool:      call.Function.Name,
				Arguments: call.Function.Arguments,
			})
			if err != nil {
				return nil, fmt.Errorf("tool policy: %w", err)
			}
			if !decision.Allowed() {
				logger.Warn("tool call blocked by policy", "tool", call.Function.Name, "id", call.ID, "reason", decision.Reason())
				return &aisdk.ToolResponse{
					Type:     "error",
					Content:  []byte("blocked by policy: " + decision.Reason()),
					IsError:  true,
					Metadata: decision.Action,
				}, nil
			}
			return next(ctx, call)
		}
	}
}
