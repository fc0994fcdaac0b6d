package grubagent

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/elee1766/grubguide/src/agent"
	jsonschema "github.com/swaggest/jsonschema-go"
)

// Static prompt sections, one per behavioral rule.
const (
	mainPromptTemplate = `You are a friendly and knowledgeable chat assistant for "Gadag Grub Guide", a website for finding and reviewing restaurants in Gadag.

Your knowledge of restaurants and reviews is strictly limited to what your lookups return. Never invent a restaurant, a cuisine, a description, a rating or a review. Every fact you state about a restaurant must come from a lookup result in this conversation.`

	listingSection = `# Listing restaurants
When the user asks to see, browse or list restaurants without narrowing them down, look up the directory with no filters. Present at most 5 restaurants, one per line, formatted exactly as:
- <Name> – <Cuisine>`

	scopedQuestionSection = `# Cuisine and name questions
When the user asks about a cuisine or a particular restaurant, look it up with the matching filter before answering. Use the description from the lookup to answer questions about a named restaurant. If the lookup returns nothing, say plainly that you could not find a match. Never suggest a restaurant that was not returned.`

	reviewsSection = `# Reviews
When the user asks for reviews of a restaurant, fetch its reviews by name. Show at most 3 reviews, newest first, one per line, formatted exactly as:
- Rating: <stars>/5 - "<review text>" (by <username>)
where <stars> is five glyphs, ★ for each point of the rating and ☆ for the rest. Use "Anonymous" when a review has no username.
If the result says "` + NotFoundMessage + `" tell the user you couldn't find that restaurant. If it says "` + NoReviewsMessage + `" tell the user the restaurant has no reviews yet.`

	submissionSection = `# Leaving a review
When the user wants to submit or leave a review, reply exactly with:
` + AskWhichRestaurantMessage + `
On their next message, look the restaurant up by name. If it is found, give them the review link for that restaurant, built from its id exactly as /restaurants/<id>/review, together with its name. If it is not found, apologize and suggest they browse the full list of restaurants.`

	outOfScopeSection = `# Out of scope
If the request has nothing to do with restaurants in Gadag, their reviews or leaving a review, reply exactly with:
` + FallbackMessage

	invisibleToolsSection = `# Tone
Keep answers short, friendly and conversational. Do not repeat lookup results verbatim as JSON. Never mention lookups, tools, functions or their names to the user; present the information as if you simply know it.`

	reuseSection = `# Follow-ups
If a follow-up can be answered from results you already fetched earlier in this conversation, answer from those results instead of looking them up again. Look up again only when the user asks for a new filter or a different restaurant.`
)

// getEnvironmentInfo gives the model the date so it can talk about review recency.
func getEnvironmentInfo(now time.Time) string {
	return fmt.Sprintf(`<env>
Today's date: %s
</env>`, now.Format("2006-01-02"))
}

// formatSchemaForPrompt formats a JSON schema for display in the prompt
func formatSchemaForPrompt(schema *jsonschema.Schema, indentLevel int) string {
	if schema == nil {
		return "unknown"
	}

	indent := strings.Repeat("  ", indentLevel)
	parts := []string{}

	if schema.Description != nil && *schema.Description != "" {
		parts = append(parts, fmt.Sprintf("%s# %s", indent, *schema.Description))
	}

	schemaType := schemaTypeName(schema)

	if len(schema.Properties) > 0 && len(schema.Required) > 0 {
		parts = append(parts, fmt.Sprintf("%s%s (required: %s)", indent, schemaType, strings.Join(schema.Required, ", ")))
	} else {
		parts = append(parts, fmt.Sprintf("%s%s", indent, schemaType))
	}

	// Sort property names for consistent output
	propNames := make([]string, 0, len(schema.Properties))
	for name := range schema.Properties {
		propNames = append(propNames, name)
	}
	sort.Strings(propNames)

	for _, propName := range propNames {
		propSchema := schema.Properties[propName].TypeObject
		if propSchema == nil {
			continue
		}
		line := fmt.Sprintf("%s  %s: %s", indent, propName, schemaTypeName(propSchema))
		if propSchema.Description != nil && *propSchema.Description != "" {
			line += fmt.Sprintf(" # %s", *propSchema.Description)
		}
		parts = append(parts, line)
	}

	return strings.Join(parts, "\n")
}

func schemaTypeName(schema *jsonschema.Schema) string {
	if schema.Type != nil {
		if schema.Type.SimpleTypes != nil {
			return string(*schema.Type.SimpleTypes)
		}
		if len(schema.Type.SliceOfSimpleTypeValues) > 0 {
			return string(schema.Type.SliceOfSimpleTypeValues[0])
		}
	}
	return "object"
}

// formatToolsForPrompt formats tools for display in the prompt
func formatToolsForPrompt(toolbox *agent.DefaultToolbox) string {
	if toolbox == nil {
		return "No lookups available."
	}

	tools := toolbox.Tools()
	if len(tools) == 0 {
		return "No lookups available."
	}

	toolStrings := []string{}
	for _, tool := range tools {
		parts := []string{
			fmt.Sprintf("Lookup: %s", tool.GetName()),
			fmt.Sprintf("Description: %s", tool.GetDescription()),
			"Input Schema:",
		}

		if tool.GetParameters() != nil {
			parts = append(parts, formatSchemaForPrompt(tool.GetParameters(), 1))
		} else {
			parts = append(parts, "  # No schema defined")
		}

		toolStrings = append(toolStrings, strings.Join(parts, "\n"))
	}

	return fmt.Sprintf("You can use the following lookups:\n\n%s", strings.Join(toolStrings, "\n\n---\n\n"))
}

// GenerateSystemPrompt assembles all sections into the final system prompt
func GenerateSystemPrompt(toolbox *agent.DefaultToolbox, now time.Time) string {
	sections := []string{
		mainPromptTemplate,
		listingSection,
		scopedQuestionSection,
		reviewsSection,
		submissionSection,
		outOfScopeSection,
		invisibleToolsSection,
		reuseSection,
		getEnvironmentInfo(now),
		formatToolsForPrompt(toolbox),
	}
	return strings.Join(sections, "\n\n")
}
