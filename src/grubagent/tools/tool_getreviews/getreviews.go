package tool_getreviews

import (
	"context"
	"sort"

	"github.com/elee1766/grubguide/src/agent"
	"github.com/elee1766/grubguide/src/catalog"
	"github.com/elee1766/grubguide/src/grubagent/toolsutil"
)

// Tool name constant
const Name = "get_reviews"

// Messages returned in place of reviews.
const (
	MessageNotFound  = "restaurant not found"
	MessageNoReviews = "no reviews yet"
)

// MaxReviews is how many of the most recent reviews are returned.
const MaxReviews = 3

const getReviewsPrompt = `Fetches the most recent customer reviews for a restaurant. Pass the restaurant name as "restaurantName"; partial names work and matching ignores case. Returns up to 3 reviews, newest first, each with a rating from 1 to 5, the review text and the reviewer's username when known. If the restaurant is unknown the result has message "restaurant not found"; if it has no reviews the message is "no reviews yet". In both cases there is no "reviews" field.`

// GetReviewsInput names the restaurant to fetch reviews for
type GetReviewsInput struct {
	RestaurantName string `json:"restaurantName" required:"true" description:"Name (or part of the name) of the restaurant"`
}

// ReviewInfo is a review as returned to the model
type ReviewInfo struct {
	Username string `json:"username,omitempty" description:"Reviewer username, absent for anonymous reviews"`
	Text     string `json:"text" description:"Review text"`
	Rating   int    `json:"rating" description:"Rating from 1 to 5"`
}

// GetReviewsOutput carries either reviews or a message, never both
type GetReviewsOutput struct {
	RestaurantName string       `json:"restaurantName" description:"Resolved restaurant name, or the name asked for when not found"`
	RestaurantID   string       `json:"restaurantId,omitempty" description:"Resolved restaurant id"`
	Reviews        []ReviewInfo `json:"reviews,omitempty" description:"Most recent reviews, newest first"`
	Message        string       `json:"message,omitempty" description:"Set when there are no reviews to show"`
}

// Lookup resolves name against the directory (first case-insensitive
// substring match in directory order) and returns its most recent reviews.
func Lookup(ctx context.Context, dir catalog.Directory, store catalog.ReviewStore, name string) (GetReviewsOutput, error) {
	restaurants, err := dir.List(ctx)
	if err != nil {
		return GetReviewsOutput{}, toolsutil.CatalogError("list restaurants", err)
	}

	var match *catalog.Restaurant
	for i := range restaurants {
		if toolsutil.ContainsFold(restaurants[i].Name, name) {
			match = &restaurants[i]
			break
		}
	}
	if match == nil {
		return GetReviewsOutput{RestaurantName: name, Message: MessageNotFound}, nil
	}

	reviews, err := store.ListByRestaurant(ctx, match.ID)
	if err != nil {
		return GetReviewsOutput{}, toolsutil.CatalogError("list reviews", err)
	}
	if len(reviews) == 0 {
		return GetReviewsOutput{RestaurantName: match.Name, RestaurantID: match.ID, Message: MessageNoReviews}, nil
	}

	return GetReviewsOutput{
		RestaurantName: match.Name,
		RestaurantID:   match.ID,
		Reviews:        MostRecent(reviews, MaxReviews),
	}, nil
}

// MostRecent returns up to limit reviews sorted newest first. Reviews with
// the same date keep their store order. The input is not modified.
func MostRecent(reviews []catalog.Review, limit int) []ReviewInfo {
	sorted := make([]catalog.Review, len(reviews))
	copy(sorted, reviews)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Date.After(sorted[j].Date)
	})

	if limit >= 0 && len(sorted) > limit {
		sorted = sorted[:limit]
	}

	out := make([]ReviewInfo, len(sorted))
	for i, rv := range sorted {
		out[i] = ReviewInfo{Username: rv.Username, Text: rv.Text, Rating: rv.Rating}
	}
	return out
}

func makeGetReviewsHandler(dir catalog.Directory, store catalog.ReviewStore) func(context.Context, GetReviewsInput) (GetReviewsOutput, error) {
	return func(ctx context.Context, input GetReviewsInput) (GetReviewsOutput, error) {
		logger := toolsutil.GetLogger()

		out, err := Lookup(ctx, dir, store, input.RestaurantName)
		if err != nil {
			logger.Error("review lookup failed", "restaurant", input.RestaurantName, "error", err)
			return GetReviewsOutput{}, err
		}

		logger.Debug("review lookup", "restaurant", input.RestaurantName, "resolved", out.RestaurantName, "reviews", len(out.Reviews), "message", out.Message)
		return out, nil
	}
}

// Tool builds the review lookup tool.
func Tool(dir catalog.Directory, store catalog.ReviewStore) (agent.Tool, error) {
	return agent.NewGenericTool(Name, getReviewsPrompt, makeGetReviewsHandler(dir, store))
}
