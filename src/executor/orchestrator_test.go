package executor

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"github.com/elee1766/grubguide/src/agent"
	"github.com/elee1766/grubguide/src/aisdk"
	"github.com/elee1766/grubguide/src/catalog"
	"github.com/elee1766/grubguide/src/grubagent"
	"github.com/elee1766/grubguide/src/localmodel"
	"github.com/elee1766/grubguide/src/policy"
	"github.com/elee1766/grubguide/src/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scriptedModel replays one response per call and records every request.
type scriptedModel struct {
	mu       sync.Mutex
	steps    []func(req *aisdk.ChatCompletionRequest) (*aisdk.ChatCompletionResponse, error)
	requests []*aisdk.ChatCompletionRequest
}

func (m *scriptedModel) CreateChatCompletion(ctx context.Context, req *aisdk.ChatCompletionRequest) (*aisdk.ChatCompletionResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	snapshot := *req
	snapshot.Messages = append([]*aisdk.Message(nil), req.Messages...)
	m.requests = append(m.requests, &snapshot)
	if len(m.steps) == 0 {
		return nil, errors.New("script exhausted")
	}
	step := m.steps[0]
	if len(m.steps) > 1 {
		m.steps = m.steps[1:]
	}
	return step(req)
}

func (m *scriptedModel) GetModelInfo() *aisdk.ModelInfo {
	return &aisdk.ModelInfo{ID: "scripted", Provider: "test", SupportsTools: true}
}

func (m *scriptedModel) calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.requests)
}

func text(content string) func(*aisdk.ChatCompletionRequest) (*aisdk.ChatCompletionResponse, error) {
	return func(*aisdk.ChatCompletionRequest) (*aisdk.ChatCompletionResponse, error) {
		return &aisdk.ChatCompletionResponse{Choices: []aisdk.Choice{{
			Message:      aisdk.Message{Role: aisdk.RoleAssistant, Content: content},
			FinishReason: "stop",
		}}}, nil
	}
}

func toolCall(id, name, args string) func(*aisdk.ChatCompletionRequest) (*aisdk.ChatCompletionResponse, error) {
	return func(*aisdk.ChatCompletionRequest) (*aisdk.ChatCompletionResponse, error) {
		return &aisdk.ChatCompletionResponse{Choices: []aisdk.Choice{{
			Message: aisdk.Message{
				Role: aisdk.RoleAssistant,
				ToolCalls: []aisdk.ToolCall{{
					ID:       id,
					Type:     "function",
					Function: aisdk.FunctionCall{Name: name, Arguments: json.RawMessage(args)},
				}},
			},
			FinishReason: "tool_calls",
		}}}, nil
	}
}

type fakeRecorder struct {
	executions []*storage.ToolExecution
}

func (r *fakeRecorder) RecordToolExecution(ctx context.Context, execution *storage.ToolExecution) error {
	r.executions = append(r.executions, execution)
	return nil
}

type blockAll struct{}

func (blockAll) Evaluate(ctx context.Context, in policy.Input) (policy.Decision, error) {
	return policy.Decision{Action: policy.DecisionBlock, Reasons: []string{"closed for the day"}}, nil
}

// newTestToolbox returns the catalog toolbox and a counter of real tool
// executions.
func newTestToolbox(t *testing.T, evaluator grubagent.PolicyEvaluator) (*agent.DefaultToolbox, *int) {
	t.Helper()
	toolbox, err := grubagent.NewToolbox(grubagent.ToolboxConfig{
		Catalog: catalog.NewMemoryStore(),
		Policy:  evaluator,
	})
	require.NoError(t, err)
	count := 0
	toolbox.RegisterMiddleware(func(next agent.ToolExecutor) agent.ToolExecutor {
		return func(ctx context.Context, call *aisdk.ToolCall) (*aisdk.ToolResponse, error) {
			count++
			return next(ctx, call)
		}
	})
	return toolbox, &count
}

func newTestService(t *testing.T, model aisdk.ModelClient, toolbox *agent.DefaultToolbox, mutate func(*ServiceConfig)) *Service {
	t.Helper()
	cfg := ServiceConfig{ModelClient: model, Toolbox: toolbox}
	if mutate != nil {
		mutate(&cfg)
	}
	svc, err := NewService(cfg)
	require.NoError(t, err)
	return svc
}

func TestReplyDirectAnswer(t *testing.T) {
	model := &scriptedModel{steps: []func(*aisdk.ChatCompletionRequest) (*aisdk.ChatCompletionResponse, error){text("  Hello from Gadag!  ")}}
	toolbox, _ := newTestToolbox(t, nil)
	svc := newTestService(t, model, toolbox, nil)

	history := []aisdk.Turn{
		{Role: aisdk.TurnUser, Text: "hi"},
		{Role: aisdk.TurnAssistant, Text: grubagent.GreetingMessage},
	}
	original := append([]aisdk.Turn(nil), history...)

	result, err := svc.Reply(context.Background(), ReplyRequest{History: history, Message: "hello again"})
	require.NoError(t, err)
	assert.Equal(t, "Hello from Gadag!", result.Text)
	assert.Equal(t, []ExecutionState{StateIdle, StateAwaitingModel, StateResponding, StateIdle}, result.States)
	assert.Equal(t, StateResponding, result.FinalState())
	assert.Zero(t, result.Rounds)
	assert.NotEmpty(t, result.PassID)

	require.Len(t, result.History, 4)
	assert.Equal(t, aisdk.Turn{Role: aisdk.TurnUser, Text: "hello again"}, result.History[2])
	assert.Equal(t, aisdk.Turn{Role: aisdk.TurnAssistant, Text: "Hello from Gadag!"}, result.History[3])
	assert.Equal(t, original, history, "input history must not change")

	require.Len(t, model.requests, 1)
	msgs := model.requests[0].Messages
	require.Len(t, msgs, 4)
	assert.Equal(t, aisdk.RoleSystem, msgs[0].Role)
	assert.Contains(t, msgs[0].Content, "Gadag")
	assert.Equal(t, "hello again", msgs[3].Content)
	assert.Len(t, model.requests[0].Tools, 2)
}

func TestReplyWithToolRound(t *testing.T) {
	model := &scriptedModel{steps: []func(*aisdk.ChatCompletionRequest) (*aisdk.ChatCompletionResponse, error){
		toolCall("call_1", "get_reviews", `{"restaurantName":"Kamat"}`),
		text("Kamat Hotel is well loved."),
	}}
	toolbox, count := newTestToolbox(t, nil)
	recorder := &fakeRecorder{}
	svc := newTestService(t, model, toolbox, func(c *ServiceConfig) { c.Recorder = recorder })

	result, err := svc.Reply(context.Background(), ReplyRequest{Message: "reviews for Kamat"})
	require.NoError(t, err)
	assert.Equal(t, "Kamat Hotel is well loved.", result.Text)
	assert.Equal(t, 1, result.Rounds)
	assert.Equal(t, 1, result.ToolCalls)
	assert.Equal(t, 1, *count)
	assert.Equal(t, []ExecutionState{
		StateIdle,
		StateAwaitingModel,
		StateToolInvocationRequested,
		StateToolExecuting,
		StateAwaitingModel,
		StateResponding,
		StateIdle,
	}, result.States)

	require.Len(t, model.requests, 2)
	second := model.requests[1].Messages
	last := second[len(second)-1]
	assert.Equal(t, aisdk.RoleTool, last.Role)
	assert.Equal(t, "get_reviews", last.Name)
	assert.Equal(t, "call_1", last.ToolCallID)
	assert.Contains(t, last.Content, "Kamat Hotel")
	assert.Equal(t, aisdk.RoleAssistant, second[len(second)-2].Role)

	require.Len(t, recorder.executions, 1)
	assert.Equal(t, result.PassID, recorder.executions[0].PassID)
	assert.Equal(t, "get_reviews", recorder.executions[0].ToolName)
	assert.False(t, recorder.executions[0].Cached)
}

func TestReplyMemoizesIdenticalCalls(t *testing.T) {
	model := &scriptedModel{steps: []func(*aisdk.ChatCompletionRequest) (*aisdk.ChatCompletionResponse, error){
		toolCall("call_1", "find_restaurants", `{"cuisine":"Vegetarian","name":""}`),
		toolCall("call_2", "find_restaurants", `{ "name":"", "cuisine":"Vegetarian" }`),
		text("Kamat Hotel is vegetarian."),
	}}
	toolbox, count := newTestToolbox(t, nil)
	recorder := &fakeRecorder{}
	var cachedResults int
	svc := newTestService(t, model, toolbox, func(c *ServiceConfig) {
		c.Recorder = recorder
		c.Callbacks = &Callbacks{OnToolResult: func(name string, result *aisdk.ToolResponse, err error, cached bool) {
			if cached {
				cachedResults++
			}
		}}
	})

	result, err := svc.Reply(context.Background(), ReplyRequest{Message: "veg places?"})
	require.NoError(t, err)
	assert.Equal(t, 2, result.Rounds)
	assert.Equal(t, 2, result.ToolCalls)
	assert.Equal(t, 1, *count, "identical call must not execute twice")
	assert.Equal(t, 1, cachedResults)

	require.Len(t, recorder.executions, 2)
	assert.True(t, recorder.executions[1].Cached)
	assert.Equal(t, recorder.executions[0].Output, recorder.executions[1].Output)

	third := model.requests[2].Messages
	assert.Equal(t, "call_2", third[len(third)-1].ToolCallID)
}

func TestReplyMaxToolRounds(t *testing.T) {
	model := &scriptedModel{steps: []func(*aisdk.ChatCompletionRequest) (*aisdk.ChatCompletionResponse, error){
		toolCall("call_1", "find_restaurants", `{}`),
		toolCall("call_2", "find_restaurants", `{"cuisine":"Cafe"}`),
		toolCall("call_3", "find_restaurants", `{"cuisine":"Chinese"}`),
		toolCall("call_4", "find_restaurants", `{"cuisine":"Udupi"}`),
	}}
	toolbox, count := newTestToolbox(t, nil)
	svc := newTestService(t, model, toolbox, nil)

	history := []aisdk.Turn{{Role: aisdk.TurnUser, Text: "hi"}}
	result, err := svc.Reply(context.Background(), ReplyRequest{History: history, Message: "everything"})
	require.ErrorIs(t, err, ErrMaxToolRoundsExceeded)
	require.NotNil(t, result)
	assert.Equal(t, grubagent.ApologyMessage, result.Text)
	assert.Equal(t, 3, result.Rounds)
	assert.Equal(t, 3, *count)
	assert.Equal(t, 4, model.calls())
	assert.Equal(t, StateFailed, result.FinalState())
	assert.Equal(t, []ExecutionState{StateFailed, StateIdle}, result.States[len(result.States)-2:])
	require.Len(t, result.History, 3)
	assert.Equal(t, grubagent.ApologyMessage, result.History[2].Text)
}

func TestReplyCustomRoundCap(t *testing.T) {
	model := &scriptedModel{steps: []func(*aisdk.ChatCompletionRequest) (*aisdk.ChatCompletionResponse, error){
		toolCall("call_1", "find_restaurants", `{}`),
		toolCall("call_2", "find_restaurants", `{"cuisine":"Cafe"}`),
	}}
	toolbox, _ := newTestToolbox(t, nil)
	svc := newTestService(t, model, toolbox, func(c *ServiceConfig) {
		c.MaxToolRounds = 1
		c.FailureReply = "try later"
	})

	result, err := svc.Reply(context.Background(), ReplyRequest{Message: "list"})
	assert.ErrorIs(t, err, ErrMaxToolRoundsExceeded)
	assert.Equal(t, "try later", result.Text)
	assert.Equal(t, 1, svc.MaxToolRounds())
}

func TestReplyFailures(t *testing.T) {
	modelDown := errors.New("connection refused")

	tests := []struct {
		name          string
		steps         []func(*aisdk.ChatCompletionRequest) (*aisdk.ChatCompletionResponse, error)
		policy        grubagent.PolicyEvaluator
		expectedError error
		checkResult   func(t *testing.T, err error)
	}{
		{
			name: "model error",
			steps: []func(*aisdk.ChatCompletionRequest) (*aisdk.ChatCompletionResponse, error){
				func(*aisdk.ChatCompletionRequest) (*aisdk.ChatCompletionResponse, error) { return nil, modelDown },
			},
			expectedError: modelDown,
		},
		{
			name: "no choices",
			steps: []func(*aisdk.ChatCompletionRequest) (*aisdk.ChatCompletionResponse, error){
				func(*aisdk.ChatCompletionRequest) (*aisdk.ChatCompletionResponse, error) {
					return &aisdk.ChatCompletionResponse{}, nil
				},
			},
			expectedError: agent.ErrNoChoices,
		},
		{
			name:          "empty reply",
			steps:         []func(*aisdk.ChatCompletionRequest) (*aisdk.ChatCompletionResponse, error){text("   ")},
			expectedError: ErrEmptyResponse,
		},
		{
			name:          "unknown tool",
			steps:         []func(*aisdk.ChatCompletionRequest) (*aisdk.ChatCompletionResponse, error){toolCall("call_x", "submit_review", `{}`)},
			expectedError: agent.ErrToolNotFound,
			checkResult: func(t *testing.T, err error) {
				var toolErr *ToolError
				require.True(t, errors.As(err, &toolErr))
				assert.Equal(t, "submit_review", toolErr.ToolName)
				assert.Equal(t, "call_x", toolErr.CallID)
			},
		},
		{
			name:  "tool error response",
			steps: []func(*aisdk.ChatCompletionRequest) (*aisdk.ChatCompletionResponse, error){toolCall("call_1", "get_reviews", `{}`)},
			checkResult: func(t *testing.T, err error) {
				var toolErr *ToolError
				require.True(t, errors.As(err, &toolErr))
				assert.Equal(t, "get_reviews", toolErr.ToolName)
			},
		},
		{
			name:   "policy block",
			steps:  []func(*aisdk.ChatCompletionRequest) (*aisdk.ChatCompletionResponse, error){toolCall("call_1", "find_restaurants", `{}`)},
			policy: blockAll{},
			checkResult: func(t *testing.T, err error) {
				var toolErr *ToolError
				require.True(t, errors.As(err, &toolErr))
				assert.Contains(t, err.Error(), "closed for the day")
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			model := &scriptedModel{steps: tt.steps}
			toolbox, _ := newTestToolbox(t, tt.policy)
			svc := newTestService(t, model, toolbox, nil)

			result, err := svc.Reply(context.Background(), ReplyRequest{Message: "hello"})
			require.Error(t, err)
			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
			}
			if tt.checkResult != nil {
				tt.checkResult(t, err)
			}
			require.NotNil(t, result)
			assert.Equal(t, grubagent.ApologyMessage, result.Text)
			assert.Equal(t, StateFailed, result.FinalState())
			require.Len(t, result.History, 2)
			assert.Equal(t, aisdk.TurnAssistant, result.History[1].Role)
		})
	}
}

func TestReplyCallbacksSeeEveryTransition(t *testing.T) {
	model := &scriptedModel{steps: []func(*aisdk.ChatCompletionRequest) (*aisdk.ChatCompletionResponse, error){
		toolCall("call_1", "find_restaurants", `{}`),
		text("done"),
	}}
	toolbox, _ := newTestToolbox(t, nil)
	var seen []ExecutionState
	var calls []string
	svc := newTestService(t, model, toolbox, func(c *ServiceConfig) {
		c.Callbacks = &Callbacks{
			OnStateChange: func(passID string, from, to ExecutionState) { seen = append(seen, to) },
			OnToolCall:    func(call aisdk.ToolCall) { calls = append(calls, call.Function.Name) },
		}
	})

	result, err := svc.Reply(context.Background(), ReplyRequest{Message: "list"})
	require.NoError(t, err)
	assert.Equal(t, result.States[1:], seen)
	assert.Equal(t, []string{"find_restaurants"}, calls)
}

func TestReplyWithLocalModel(t *testing.T) {
	toolbox, _ := newTestToolbox(t, nil)
	svc := newTestService(t, localmodel.New(nil), toolbox, nil)

	result, err := svc.Reply(context.Background(), ReplyRequest{Message: "show reviews for Kamat Hotel"})
	require.NoError(t, err)
	assert.Contains(t, result.Text, "Rating: ★★★★★/5")
	assert.NotContains(t, result.Text, "get_reviews")
	assert.Equal(t, 1, result.Rounds)
}

func TestNewServiceValidation(t *testing.T) {
	toolbox, _ := newTestToolbox(t, nil)

	_, err := NewService(ServiceConfig{Toolbox: toolbox})
	assert.ErrorIs(t, err, ErrModelClientRequired)

	_, err = NewService(ServiceConfig{ModelClient: &scriptedModel{}})
	assert.ErrorIs(t, err, ErrToolboxRequired)

	svc, err := NewService(ServiceConfig{ModelClient: &scriptedModel{}, Toolbox: toolbox, SystemPrompt: "custom"})
	require.NoError(t, err)
	assert.Equal(t, DefaultMaxToolRounds, svc.MaxToolRounds())
	assert.Equal(t, "custom", svc.SystemPrompt())
	assert.Equal(t, "scripted", svc.ModelInfo().ID)
}

func TestExecutionStateString(t *testing.T) {
	tests := map[ExecutionState]string{
		StateIdle:                    "idle",
		StateAwaitingModel:           "awaiting_model",
		StateToolInvocationRequested: "tool_invocation_requested",
		StateToolExecuting:           "tool_executing",
		StateResponding:              "responding",
		StateFailed:                  "failed",
		ExecutionState(42):           "unknown",
	}
	for state, want := range tests {
		assert.Equal(t, want, state.String())
	}
	assert.True(t, StateFailed.Terminal())
	assert.False(t, StateToolExecuting.Terminal())
	assert.False(t, StateIdle.Terminal())
}

func TestFinalStateSkipsReturnToIdle(t *testing.T) {
	assert.Equal(t, StateIdle, (*ReplyResult)(nil).FinalState())
	assert.Equal(t, StateIdle, (&ReplyResult{States: []ExecutionState{StateIdle, StateAwaitingModel}}).FinalState())
	assert.Equal(t, StateResponding, (&ReplyResult{States: []ExecutionState{StateIdle, StateAwaitingModel, StateResponding, StateIdle}}).FinalState())
}

func TestCanonicalArguments(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{name: "empty", raw: "", want: "{}"},
		{name: "null", raw: "null", want: "{}"},
		{name: "reordered", raw: `{ "b": 2, "a": "x" }`, want: `{"a":"x","b":2}`},
		{name: "invalid", raw: `{oops`, want: `{oops`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, canonicalArguments(json.RawMessage(tt.raw)))
		})
	}
}

func TestToolErrorMessage(t *testing.T) {
	err := &ToolError{ToolName: "get_reviews", CallID: "call_9", Err: errors.New("boom")}
	assert.Equal(t, "tool get_reviews (call call_9) failed: boom", err.Error())
	assert.Equal(t, "tool get_reviews failed: boom", (&ToolError{ToolName: "get_reviews", Err: errors.New("boom")}).Error())
}
