package grubagent

import (
	"strings"
	"testing"
	"time"

	"github.com/elee1766/grubguide/src/agent"
	"github.com/elee1766/grubguide/src/catalog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	jsonschema "github.com/swaggest/jsonschema-go"
)

func TestFormatSchemaForPrompt(t *testing.T) {
	tests := []struct {
		name     string
		schema   *jsonschema.Schema
		expected []string // Lines that should appear in output
	}{
		{
			name: "simple string schema",
			schema: &jsonschema.Schema{
				Type:        &jsonschema.Type{SimpleTypes: ptr(jsonschema.SimpleType("string"))},
				Description: ptr("A simple string field"),
			},
			expected: []string{
				"# A simple string field",
				"string",
			},
		},
		{
			name: "object with properties",
			schema: &jsonschema.Schema{
				Type: &jsonschema.Type{SimpleTypes: ptr(jsonschema.SimpleType("object"))},
				Properties: map[string]jsonschema.SchemaOrBool{
					"restaurantName": {
						TypeObject: &jsonschema.Schema{
							Type:        &jsonschema.Type{SimpleTypes: ptr(jsonschema.SimpleType("string"))},
							Description: ptr("The name"),
						},
					},
					"limit": {
						TypeObject: &jsonschema.Schema{
							Type: &jsonschema.Type{SimpleTypes: ptr(jsonschema.SimpleType("integer"))},
						},
					},
				},
				Required: []string{"restaurantName"},
			},
			expected: []string{
				"object (required: restaurantName)",
				"  limit: integer\n  restaurantName: string # The name",
			},
		},
		{
			name:     "nil schema",
			schema:   nil,
			expected: []string{"unknown"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := formatSchemaForPrompt(tt.schema, 0)
			for _, expected := range tt.expected {
				assert.Contains(t, result, expected)
			}
		})
	}
}

func TestFormatToolsForPrompt(t *testing.T) {
	assert.Equal(t, "No lookups available.", formatToolsForPrompt(nil))
	assert.Equal(t, "No lookups available.", formatToolsForPrompt(agent.NewToolbox[agent.Tool]()))

	toolbox, err := NewToolbox(ToolboxConfig{Catalog: catalog.NewMemoryStore()})
	require.NoError(t, err)

	result := formatToolsForPrompt(toolbox)
	for _, expected := range []string{
		"You can use the following lookups:",
		"Lookup: find_restaurants",
		"Lookup: get_reviews",
		"object (required: restaurantName)",
		"cuisine: string",
	} {
		assert.Contains(t, result, expected)
	}
	assert.Less(t, strings.Index(result, "find_restaurants"), strings.Index(result, "get_reviews"))
}

func TestGenerateSystemPrompt(t *testing.T) {
	toolbox, err := NewToolbox(ToolboxConfig{Catalog: catalog.NewMemoryStore()})
	require.NoError(t, err)

	now := time.Date(2024, 5, 17, 9, 0, 0, 0, time.UTC)
	result := GenerateSystemPrompt(toolbox, now)

	expectedSections := []string{
		"Gadag Grub Guide",
		"# Listing restaurants",
		"- <Name> – <Cuisine>",
		"# Cuisine and name questions",
		"# Reviews",
		`Rating: <stars>/5 - "<review text>" (by <username>)`,
		"Anonymous",
		"# Leaving a review",
		AskWhichRestaurantMessage,
		"/restaurants/<id>/review",
		"# Out of scope",
		FallbackMessage,
		"Never mention lookups, tools",
		"# Follow-ups",
		"Today's date: 2024-05-17",
		"Lookup: get_reviews",
	}
	for _, section := range expectedSections {
		assert.Contains(t, result, section)
	}

	assert.Equal(t, result, GenerateSystemPrompt(toolbox, now))
}

// Helper function to create pointers
func ptr[T any](v T) *T {
	return &v
}
