package tool_getreviews

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/elee1766/grubguide/src/aisdk"
	"github.com/elee1766/grubguide/src/catalog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingReviews struct{}

func (failingReviews) ListByRestaurant(context.Context, string) ([]catalog.Review, error) {
	return nil, errors.New("reviews offline")
}

func texts(reviews []ReviewInfo) []string {
	out := make([]string, len(reviews))
	for i, rv := range reviews {
		out[i] = rv.Text
	}
	return out
}

func TestLookupDefaultCatalog(t *testing.T) {
	ctx := context.Background()
	store := catalog.NewMemoryStore()

	tests := []struct {
		name           string
		query          string
		expectedName   string
		expectedCount  int
		expectedMsg    string
		expectedFirst  string
		expectedRating int
	}{
		{
			name:           "exact name",
			query:          "Shivaratna Grand Eatery",
			expectedName:   "Shivaratna Grand Eatery",
			expectedCount:  3,
			expectedFirst:  "Loved the masala dosa at Shivaratna Grand Eatery! Crispy and flavorful.",
			expectedRating: 4,
		},
		{
			name:           "partial name ignores case",
			query:          "kamat",
			expectedName:   "Kamat Hotel",
			expectedCount:  2,
			expectedFirst:  "Best vegetarian thali in town at Kamat Hotel! So many varieties and authentic taste.",
			expectedRating: 5,
		},
		{
			name:         "unknown restaurant",
			query:        "Burger Palace",
			expectedName: "Burger Palace",
			expectedMsg:  MessageNotFound,
		},
		{
			name:           "first directory match wins",
			query:          "garden",
			expectedName:   "Nisarga Garden Family Restaurant",
			expectedCount:  3,
			expectedFirst:  "Great ambiance and paneer tikka at Nisarga! Kids loved the garden.",
			expectedRating: 5,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := Lookup(ctx, store, store, tt.query)
			require.NoError(t, err)
			assert.Equal(t, tt.expectedName, out.RestaurantName)
			assert.Equal(t, tt.expectedMsg, out.Message)
			assert.Len(t, out.Reviews, tt.expectedCount)
			if tt.expectedCount > 0 {
				assert.Equal(t, tt.expectedFirst, out.Reviews[0].Text)
				assert.Equal(t, tt.expectedRating, out.Reviews[0].Rating)
			}
		})
	}
}

func TestLookupSameDayKeepsStoreOrder(t *testing.T) {
	out, err := Lookup(context.Background(), catalog.NewMemoryStore(), catalog.NewMemoryStore(), "Shivaratna")
	require.NoError(t, err)
	require.Len(t, out.Reviews, 3)
	assert.Equal(t, "FoodieGal", out.Reviews[0].Username)
	assert.Equal(t, "CriticBob", out.Reviews[1].Username)
	assert.Equal(t, "BiryaniKing", out.Reviews[2].Username)
}

func TestLookupNoReviews(t *testing.T) {
	store := catalog.NewMemoryStoreWith(catalog.SeedData{
		Restaurants: []catalog.Restaurant{{ID: "x", Name: "Quiet Corner", Cuisine: "Cafe"}},
	})

	out, err := Lookup(context.Background(), store, store, "quiet")
	require.NoError(t, err)
	assert.Equal(t, "Quiet Corner", out.RestaurantName)
	assert.Equal(t, "x", out.RestaurantID)
	assert.Equal(t, MessageNoReviews, out.Message)
	assert.Nil(t, out.Reviews)
}

func TestLookupLimitsToMostRecent(t *testing.T) {
	base := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	store := catalog.NewMemoryStoreWith(catalog.SeedData{
		Restaurants: []catalog.Restaurant{{ID: "a", Name: "Busy Place", Cuisine: "Any"}},
		Reviews: []catalog.Review{
			{ID: "1", RestaurantID: "a", Text: "oldest", Rating: 1, Date: base},
			{ID: "2", RestaurantID: "a", Text: "newest", Rating: 5, Date: base.AddDate(0, 0, 4)},
			{ID: "3", RestaurantID: "a", Text: "middle", Rating: 3, Date: base.AddDate(0, 0, 2)},
			{ID: "4", RestaurantID: "a", Text: "second", Rating: 4, Date: base.AddDate(0, 0, 3)},
			{ID: "5", RestaurantID: "a", Text: "old", Rating: 2, Date: base.AddDate(0, 0, 1)},
		},
	})

	out, err := Lookup(context.Background(), store, store, "busy")
	require.NoError(t, err)
	assert.Equal(t, []string{"newest", "second", "middle"}, texts(out.Reviews))
	assert.Empty(t, out.Message)
}

func TestLookupIsIdempotent(t *testing.T) {
	ctx := context.Background()
	store := catalog.NewMemoryStore()
	first, err := Lookup(ctx, store, store, "Nisarga")
	require.NoError(t, err)
	second, err := Lookup(ctx, store, store, "Nisarga")
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestMostRecentDoesNotModifyInput(t *testing.T) {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	in := []catalog.Review{
		{ID: "a", Text: "a", Date: base},
		{ID: "b", Text: "b", Date: base.Add(time.Hour)},
	}
	out := MostRecent(in, 1)
	assert.Equal(t, []string{"b"}, texts(out))
	assert.Equal(t, "a", in[0].ID)
}

func TestGetReviewsTool(t *testing.T) {
	store := catalog.NewMemoryStore()
	tool, err := Tool(store, store)
	require.NoError(t, err)

	require.NotNil(t, tool.GetParameters())
	assert.Equal(t, []string{"restaurantName"}, tool.GetParameters().Required)

	tests := []struct {
		name          string
		args          string
		expectedError bool
		checkResult   func(t *testing.T, raw map[string]any)
	}{
		{
			name: "known restaurant",
			args: `{"restaurantName":"Swathi"}`,
			checkResult: func(t *testing.T, raw map[string]any) {
				assert.Equal(t, "Swathi Family Restaurant", raw["restaurantName"])
				reviews, ok := raw["reviews"].([]any)
				require.True(t, ok)
				assert.Len(t, reviews, 1)
				assert.NotContains(t, raw, "message")
			},
		},
		{
			name: "unknown restaurant has message and no reviews",
			args: `{"restaurantName":"Nowhere"}`,
			checkResult: func(t *testing.T, raw map[string]any) {
				assert.Equal(t, MessageNotFound, raw["message"])
				assert.NotContains(t, raw, "reviews")
			},
		},
		{name: "missing restaurant name", args: `{}`, expectedError: true},
		{name: "blank restaurant name", args: `{"restaurantName":"  "}`, expectedError: true},
		{name: "malformed arguments", args: `not json`, expectedError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := tool.Execute(context.Background(), &aisdk.ToolCall{
				ID:       "call_1",
				Type:     "function",
				Function: aisdk.FunctionCall{Name: Name, Arguments: json.RawMessage(tt.args)},
			})
			require.NoError(t, err)
			if tt.expectedError {
				assert.True(t, resp.IsError)
				return
			}
			require.False(t, resp.IsError, string(resp.Content))
			var raw map[string]any
			require.NoError(t, json.Unmarshal(resp.Content, &raw))
			tt.checkResult(t, raw)
		})
	}
}

func TestGetReviewsToolStoreFailure(t *testing.T) {
	tool, err := Tool(catalog.NewMemoryStore(), failingReviews{})
	require.NoError(t, err)

	resp, err := tool.Execute(context.Background(), &aisdk.ToolCall{
		Function: aisdk.FunctionCall{Name: Name, Arguments: json.RawMessage(`{"restaurantName":"Kamat"}`)},
	})
	require.NoError(t, err)
	assert.True(t, resp.IsError)
	assert.Contains(t, string(resp.Content), "list reviews")
}
