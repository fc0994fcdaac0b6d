package tool_findrestaurants

import (
	"context"
	"strings"

	"github.com/elee1766/grubguide/src/agent"
	"github.com/elee1766/grubguide/src/catalog"
	"github.com/elee1766/grubguide/src/grubagent/toolsutil"
)

// Tool name constant
const Name = "find_restaurants"

const findRestaurantsPrompt = `Looks up restaurants in the Gadag Grub Guide directory. Call it with no arguments to get the full list of restaurants. Pass "cuisine" to keep only restaurants whose cuisine contains that text, and "name" to keep only restaurants whose name contains that text. Matching ignores case, and when both are given a restaurant must match both. An empty "restaurants" list means nothing matched; it is not an error. Each result carries the restaurant id, which is what review links are built from.`

// FindRestaurantsInput represents the optional filters
type FindRestaurantsInput struct {
	Cuisine string `json:"cuisine,omitempty" description:"Only return restaurants whose cuisine contains this text (case-insensitive)"`
	Name    string `json:"name,omitempty" description:"Only return restaurants whose name contains this text (case-insensitive)"`
}

// RestaurantInfo is a directory record as returned to the model
type RestaurantInfo struct {
	ID          string `json:"id" description:"Restaurant id"`
	Name        string `json:"name" description:"Restaurant name"`
	Cuisine     string `json:"cuisine" description:"Cuisine served"`
	Description string `json:"description" description:"Short description"`
}

// FindRestaurantsOutput holds the matching restaurants in directory order
type FindRestaurantsOutput struct {
	Restaurants []RestaurantInfo `json:"restaurants" description:"Matching restaurants"`
	Count       int              `json:"count" description:"Number of matches"`
}

// Lookup filters restaurants by case-insensitive substring on cuisine and
// name. Blank filters are ignored; both filters must match when present.
// The result is never nil.
func Lookup(restaurants []catalog.Restaurant, cuisine, name string) []RestaurantInfo {
	cuisine = strings.TrimSpace(cuisine)
	name = strings.TrimSpace(name)

	out := make([]RestaurantInfo, 0, len(restaurants))
	for _, r := range restaurants {
		if !toolsutil.ContainsFold(r.Cuisine, cuisine) {
			continue
		}
		if !toolsutil.ContainsFold(r.Name, name) {
			continue
		}
		out = append(out, RestaurantInfo{
			ID:          r.ID,
			Name:        r.Name,
			Cuisine:     r.Cuisine,
			Description: r.Description,
		})
	}
	return out
}

func makeFindRestaurantsHandler(dir catalog.Directory) func(context.Context, FindRestaurantsInput) (FindRestaurantsOutput, error) {
	return func(ctx context.Context, input FindRestaurantsInput) (FindRestaurantsOutput, error) {
		logger := toolsutil.GetLogger()

		restaurants, err := dir.List(ctx)
		if err != nil {
			logger.Error("failed to list restaurants", "error", err)
			return FindRestaurantsOutput{}, toolsutil.CatalogError("list restaurants", err)
		}

		matches := Lookup(restaurants, input.Cuisine, input.Name)
		logger.Debug("restaurant lookup", "cuisine", input.Cuisine, "name", input.Name, "matches", len(matches))

		return FindRestaurantsOutput{
			Restaurants: matches,
			Count:       len(matches),
		}, nil
	}
}

// Tool builds the restaurant lookup tool over dir.
func Tool(dir catalog.Directory) (agent.Tool, error) {
	return agent.NewGenericTool(Name, findRestaurantsPrompt, makeFindRestaurantsHandler(dir))
}
