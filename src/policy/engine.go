// Package policy decides whether the assistant may run a tool call, using
// an OPA rego module.
package policy

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/open-policy-agent/opa/rego"
	"github.com/spf13/afero"
)

// Decisions a policy can return.
const (
	DecisionAllow = "allow"
	DecisionBlock = "block"
)

// DefaultMaxArgumentBytes caps a tool call's raw argument payload.
const DefaultMaxArgumentBytes = 1024

// Input is the document a policy is evaluated against.
type Input struct {
	Tool      string
	Arguments json.RawMessage
}

// Decision is the outcome of a policy evaluation.
type Decision struct {
	Action  string
	Reasons []string
}

// Allowed reports whether the call may proceed.
func (d Decision) Allowed() bool {
	return d.Action == DecisionAllow
}

// Reason joins the reasons for display.
func (d Decision) Reason() string {
	return strings.Join(d.Reasons, "; ")
}

// Options configures an Engine.
type Options struct {
	// AllowedTools is the read-only tool set rendered into the default module.
	AllowedTools []string
	// MaxArgumentBytes defaults to DefaultMaxArgumentBytes.
	MaxArgumentBytes int
	// Module replaces the default module when set. It must declare
	// package tool_policy with a decision rule.
	Module string
}

// Engine is the OPA policy engine.
type Engine struct {
	query rego.PreparedEvalQuery
}

// NewEngine compiles the policy module.
func NewEngine(ctx context.Context, opts Options) (*Engine, error) {
	module := opts.Module
	if strings.TrimSpace(module) == "" {
		module = RenderDefaultPolicy(opts.AllowedTools, opts.MaxArgumentBytes)
	}

	r := rego.New(
		rego.Query("data.tool_policy"),
		rego.Module("tool_policy.rego", module),
	)

	query, err := r.PrepareForEval(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare rego: %w", err)
	}

	return &Engine{query: query}, nil
}

// Evaluate checks a tool call against the policy.
func (e *Engine) Evaluate(ctx context.Context, in Input) (Decision, error) {
	var args any
	if len(in.Arguments) > 0 {
		if err := json.Unmarshal(in.Arguments, &args); err != nil {
			args = nil
		}
	}

	doc := map[string]any{
		"tool":           in.Tool,
		"arguments":      args,
		"argument_bytes": len(in.Arguments),
	}

	results, err := e.query.Eval(ctx, rego.EvalInput(doc))
	if err != nil {
		return Decision{}, fmt.Errorf("failed to evaluate policy: %w", err)
	}

	if len(results) == 0 || len(results[0].Expressions) == 0 {
		return Decision{}, fmt.Errorf("policy produced no result")
	}

	pkg, ok := results[0].Expressions[0].Value.(map[string]any)
	if !ok {
		return Decision{}, fmt.Errorf("unexpected policy result type %T", results[0].Expressions[0].Value)
	}

	action, ok := pkg["decision"].(string)
	if !ok {
		return Decision{}, fmt.Errorf("policy did not produce a decision")
	}
	if action != DecisionAllow && action != DecisionBlock {
		return Decision{}, fmt.Errorf("unknown policy decision %q", action)
	}

	decision := Decision{Action: action}
	if reasons, ok := pkg["reasons"].([]any); ok {
		for _, r := range reasons {
			if s, ok := r.(string); ok {
				decision.Reasons = append(decision.Reasons, s)
			}
		}
		sort.Strings(decision.Reasons)
	}
	return decision, nil
}

// LoadModule reads a rego module from fs.
func LoadModule(fs afero.Fs, path string) (string, error) {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return "", fmt.Errorf("failed to read policy file %s: %w", path, err)
	}
	return string(data), nil
}

// RenderDefaultPolicy builds the default module for the given tool set and
// argument size cap.
func RenderDefaultPolicy(allowedTools []string, maxArgumentBytes int) string {
	if maxArgumentBytes <= 0 {
		maxArgumentBytes = DefaultMaxArgumentBytes
	}
	quoted := make([]string, len(allowedTools))
	for i, name := range allowedTools {
		quoted[i] = strconv.Quote(name)
	}
	tools := "set()"
	if len(quoted) > 0 {
		tools = "{" + strings.Join(quoted, ", ") + "}"
	}
	return fmt.Sprintf(defaultPolicyTemplate, tools, maxArgumentBytes)
}

const defaultPolicyTemplate = `
package tool_policy

allowed_tools := %s

max_argument_bytes := %d

default decision = "allow"

decision = "block" {
	count(reasons) > 0
}

reasons["tool is not in the read-only set"] {
	not allowed_tools[input.tool]
}

reasons["arguments exceed size limit"] {
	input.argument_bytes > max_argument_bytes
}
`
