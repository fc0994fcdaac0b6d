package agent

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"reflect"
	"strings"

	"github.com/elee1766/grubguide/src/aisdk"
	"github.com/swaggest/jsonschema-go"
)

// GenericToolHandler is a type-safe handler function
type GenericToolHandler[TInput any, TOutput any] func(ctx context.Context, input TInput) (TOutput, error)

// GenericTool is a typed tool whose parameter schema is reflected from TInput.
type GenericTool[TInput any, TOutput any] struct {
	Type        string
	Name        string
	Description string
	Schema      *jsonschema.Schema
	Handler     GenericToolHandler[TInput, TOutput]
}

func (gt *GenericTool[TInput, TOutput]) GetType() string {
	return gt.Type
}

func (gt *GenericTool[TInput, TOutput]) GetName() string {
	return gt.Name
}

func (gt *GenericTool[TInput, TOutput]) GetDescription() string {
	return gt.Description
}

func (gt *GenericTool[TInput, TOutput]) GetParameters() *jsonschema.Schema {
	return gt.Schema
}

// Execute decodes the call arguments into TInput, checks required fields,
// runs the handler and encodes TOutput as the response content.
func (gt *GenericTool[TInput, TOutput]) Execute(ctx context.Context, call *aisdk.ToolCall) (*aisdk.ToolResponse, error) {
	var input TInput
	args := bytes.TrimSpace(call.Function.Arguments)
	if len(args) == 0 || bytes.Equal(args, []byte("null")) {
		args = []byte("{}")
	}
	if err := json.Unmarshal(args, &input); err != nil {
		return errorResponse(fmt.Sprintf("failed to parse input: %v", err)), nil
	}

	if err := gt.validateRequired(input); err != nil {
		return errorResponse(fmt.Sprintf("validation failed: %v", err)), nil
	}

	output, err := gt.Handler(ctx, input)
	if err != nil {
		return errorResponse(err.Error()), nil
	}

	content, err := json.Marshal(output)
	if err != nil {
		return errorResponse(fmt.Sprintf("failed to marshal result: %v", err)), nil
	}

	return &aisdk.ToolResponse{
		Type:    "success",
		Content: content,
		IsError: false,
	}, nil
}

func errorResponse(msg string) *aisdk.ToolResponse {
	return &aisdk.ToolResponse{
		Type:    "error",
		Content: []byte(msg),
		IsError: true,
	}
}

// validateRequired checks that required fields are not empty. Strings
// holding only whitespace count as empty.
func (gt *GenericTool[TInput, TOutput]) validateRequired(input TInput) error {
	if gt.Schema == nil || len(gt.Schema.Required) == 0 {
		return nil
	}

	val := reflect.ValueOf(input)
	if val.Kind() == reflect.Ptr {
		if val.IsNil() {
			return fmt.Errorf("input is nil")
		}
		val = val.Elem()
	}
	typ := val.Type()

	for _, requiredField := range gt.Schema.Required {
		found := false
		for i := 0; i < typ.NumField(); i++ {
			field := typ.Field(i)
			fieldName := strings.Split(field.Tag.Get("json"), ",")[0]
			if fieldName != requiredField {
				continue
			}
			found = true
			fieldValue := val.Field(i)
			if fieldValue.IsZero() {
				return fmt.Errorf("required field '%s' is missing", requiredField)
			}
			if fieldValue.Kind() == reflect.String && strings.TrimSpace(fieldValue.String()) == "" {
				return fmt.Errorf("required field '%s' is blank", requiredField)
			}
			break
		}
		if !found {
			return fmt.Errorf("required field '%s' not found in struct", requiredField)
		}
	}

	return nil
}

// NewGenericTool creates a new generic tool with automatic schema generation
func NewGenericTool[TInput any, TOutput any](name, description string, handler GenericToolHandler[TInput, TOutput]) (Tool, error) {
	var input TInput
	inputType := reflect.TypeOf(input)
	if inputType == nil {
		return nil, fmt.Errorf("tool input type must be a struct, got interface")
	}
	if inputType.Kind() == reflect.Ptr {
		inputType = inputType.Elem()
	}
	if inputType.Kind() != reflect.Struct {
		return nil, fmt.Errorf("tool input type must be a struct, got %s", inputType.Kind())
	}

	var output TOutput
	outputType := reflect.TypeOf(output)
	if outputType == nil {
		return nil, fmt.Errorf("tool output type must be a struct, got interface")
	}
	if outputType.Kind() == reflect.Ptr {
		outputType = outputType.Elem()
	}
	if outputType.Kind() != reflect.Struct {
		return nil, fmt.Errorf("tool output type must be a struct, got %s", outputType.Kind())
	}

	reflector := jsonschema.Reflector{}
	schema, err := reflector.Reflect(reflect.New(inputType).Elem().Interface())
	if err != nil {
		return nil, fmt.Errorf("failed to generate schema: %w", err)
	}

	return &GenericTool[TInput, TOutput]{
		Type:        "function",
		Name:        name,
		Description: description,
		Schema:      &schema,
		Handler:     handler,
	}, nil
}

// MustNewGenericTool creates a new generic tool and panics on error
func MustNewGenericTool[TInput any, TOutput any](name, description string, handler GenericToolHandler[TInput, TOutput]) Tool {
	tool, err := NewGenericTool(name, description, handler)
	if err != nil {
		panic(fmt.Sprintf("failed to create generic tool: %v", err))
	}
	return tool
}

var _ Tool = (*GenericTool[struct{}, struct{}])(nil)
