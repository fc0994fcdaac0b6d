package grubagent

import (
	"fmt"
	"strings"

	tool_findrestaurants "github.com/elee1766/grubguide/src/grubagent/tools/tool_findrestaurants"
	tool_getreviews "github.com/elee1766/grubguide/src/grubagent/tools/tool_getreviews"
)

const (
	starFilled = "★"
	starEmpty  = "☆"
)

// Stars renders a rating as five glyphs. Ratings outside 0..5 are clamped.
func Stars(rating int) string {
	rating = max(0, min(5, rating))
	return strings.Repeat(starFilled, rating) + strings.Repeat(starEmpty, 5-rating)
}

// FormatReview renders one review line:
//
//	Rating: ★★★★☆/5 - "text" (by username)
func FormatReview(rv tool_getreviews.ReviewInfo) string {
	author := strings.TrimSpace(rv.Username)
	if author == "" {
		author = "Anonymous"
	}
	return fmt.Sprintf("Rating: %s/5 - \"%s\" (by %s)", Stars(rv.Rating), rv.Text, author)
}

// FormatReviews renders a review lookup result as a reply body.
func FormatReviews(out tool_getreviews.GetReviewsOutput) string {
	if len(out.Reviews) == 0 {
		switch out.Message {
		case NotFoundMessage:
			return fmt.Sprintf("I couldn't find a restaurant called \"%s\" in Gadag.", out.RestaurantName)
		default:
			return fmt.Sprintf("%s has no reviews yet.", out.RestaurantName)
		}
	}

	lines := make([]string, 0, len(out.Reviews)+1)
	lines = append(lines, fmt.Sprintf("Here's what people are saying about %s:", out.RestaurantName))
	for _, rv := range out.Reviews {
		lines = append(lines, "- "+FormatReview(rv))
	}
	return strings.Join(lines, "\n")
}

// FormatRestaurantList renders up to limit restaurants as "Name – Cuisine"
// bullets. A non-positive limit shows all.
func FormatRestaurantList(restaurants []tool_findrestaurants.RestaurantInfo, limit int) string {
	if limit > 0 && len(restaurants) > limit {
		restaurants = restaurants[:limit]
	}
	lines := make([]string, len(restaurants))
	for i, r := range restaurants {
		lines[i] = fmt.Sprintf("- %s – %s", r.Name, r.Cuisine)
	}
	return strings.Join(lines, "\n")
}

// ReviewLink is the deep link to a restaurant's review form.
func ReviewLink(restaurantID string) string {
	return "/restaurants/" + restaurantID + "/review"
}
