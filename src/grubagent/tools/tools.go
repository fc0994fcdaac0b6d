package tools

// This file provides barrel-style re-exports for all tools, making them accessible
// from the main tools package.

import (
	"github.com/elee1766/grubguide/src/agent"
	"github.com/elee1766/grubguide/src/catalog"
	tool_findrestaurants "github.com/elee1766/grubguide/src/grubagent/tools/tool_findrestaurants"
	tool_getreviews "github.com/elee1766/grubguide/src/grubagent/tools/tool_getreviews"
)

// Tool name constants - re-exported from individual packages
const (
	FindRestaurantsName = tool_findrestaurants.Name
	GetReviewsName      = tool_getreviews.Name
)

// ReadOnlyNames lists every tool the assistant is allowed to call.
var ReadOnlyNames = []string{FindRestaurantsName, GetReviewsName}

func FindRestaurantsTool(dir catalog.Directory) (agent.Tool, error) {
	return tool_findrestaurants.Tool(dir)
}

func GetReviewsTool(dir catalog.Directory, reviews catalog.ReviewStore) (agent.Tool, error) {
	return tool_getreviews.Tool(dir, reviews)
}
