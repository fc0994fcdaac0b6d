package localmodel

import (
	"regexp"
	"strings"
	"unicode"
)

type intentKind int

const (
	intentFallback intentKind = iota
	intentGreeting
	intentList
	intentCuisine
	intentRestaurantInfo
	intentReviews
	intentAskReviewsTarget
	intentAskReviewTarget
	intentReviewLink
)

func (k intentKind) String() string {
	switch k {
	case intentGreeting:
		return "greeting"
	case intentList:
		return "list"
	case intentCuisine:
		return "cuisine"
	case intentRestaurantInfo:
		return "restaurant_info"
	case intentReviews:
		return "reviews"
	case intentAskReviewsTarget:
		return "ask_reviews_target"
	case intentAskReviewTarget:
		return "ask_review_target"
	case intentReviewLink:
		return "review_link"
	default:
		return "fallback"
	}
}

// awaitKind is the follow-up the previous assistant turn asked for.
type awaitKind int

const (
	awaitNone awaitKind = iota
	// awaitReviewTarget follows "which restaurant would you like to review".
	awaitReviewTarget
	// awaitReviewsTarget follows "which restaurant would you like to see reviews for".
	awaitReviewsTarget
)

// intent is a classified user message. arg is the cuisine or restaurant
// name the message is about, when it has one.
type intent struct {
	kind intentKind
	arg  string
}

var (
	greetingWords = wordSet("hi", "hello", "hey", "hiya", "namaste", "namaskara", "good", "morning", "afternoon", "evening", "there", "yo")
	submitWords   = wordSet("submit", "leave", "write", "post", "add", "give")
	reviewWords   = wordSet("review", "reviews", "rating", "ratings", "feedback")
	listWords     = wordSet("restaurant", "restaurants", "list", "browse", "places", "place", "options", "recommend", "recommendation", "recommendations", "eat", "food", "dine", "dining", "hungry", "eateries", "hotels", "all")
	infoWords     = wordSet("about", "describe", "info", "information", "details")

	// cuisineKeywords is checked in order so longer phrases win.
	cuisineKeywords = []struct{ phrase, filter string }{
		{"multi-cuisine", "Multi-cuisine"},
		{"indo-chinese", "Indo-Chinese"},
		{"south indian", "South Indian"},
		{"north indian", "North Indian"},
		{"vegetarian", "Vegetarian"},
		{"veg", "Vegetarian"},
		{"chinese", "Chinese"},
		{"udupi", "Udupi"},
		{"indian", "Indian"},
		{"cafe", "Cafe"},
		{"cafes", "Cafe"},
		{"snacks", "Snacks"},
		{"italian", "Italian"},
		{"mexican", "Mexican"},
		{"thai", "Thai"},
		{"continental", "Continental"},
		{"japanese", "Japanese"},
		{"punjabi", "Punjabi"},
		{"mughlai", "Mughlai"},
		{"andhra", "Andhra"},
	}

	lastMarkerPattern   = regexp.MustCompile(`(?i)^.*\b(?:for|of|about|at|on)\s+(.+)$`)
	afterReviewPattern  = regexp.MustCompile(`(?i)\breview\s+(.+)$`)
	beforeReviewPattern = regexp.MustCompile(`(?i)^(.+?)\s+(?:reviews?|ratings?)[[:punct:]]*$`)

	leadingFiller  = wordSet("the", "show", "me", "get", "see", "read", "any", "some", "please", "a", "an", "tell", "what", "is", "are", "give", "i", "want", "to", "like", "would", "i'd", "submit", "leave", "write", "post", "add", "rate", "can", "could", "may", "should", "how", "do", "does", "where", "we", "i'll", "i'm", "let", "let's", "us", "my", "you", "need")
	trailingFiller = wordSet("please", "thanks", "pls")
)

func wordSet(words ...string) map[string]struct{} {
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	return set
}

// words lowercases s and splits it into words. Hyphens and apostrophes
// stay inside words.
func words(s string) []string {
	return strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '-' && r != '\''
	})
}

func containsAny(ws []string, set map[string]struct{}) bool {
	for _, w := range ws {
		if _, ok := set[w]; ok {
			return true
		}
	}
	return false
}

func allIn(ws []string, set map[string]struct{}) bool {
	if len(ws) == 0 {
		return false
	}
	for _, w := range ws {
		if _, ok := set[w]; !ok {
			return false
		}
	}
	return true
}

func findCuisine(ws []string) string {
	joined := " " + strings.Join(ws, " ") + " "
	for _, kw := range cuisineKeywords {
		if strings.Contains(joined, " "+kw.phrase+" ") {
			return kw.filter
		}
	}
	return ""
}

// cleanName strips filler words and punctuation around a restaurant name.
func cleanName(s string) string {
	s = strings.TrimFunc(s, func(r rune) bool {
		return unicode.IsSpace(r) || unicode.IsPunct(r)
	})
	fields := strings.Fields(s)
	for len(fields) > 0 {
		if _, ok := leadingFiller[strings.ToLower(fields[0])]; !ok {
			break
		}
		fields = fields[1:]
	}
	for len(fields) > 0 {
		if _, ok := trailingFiller[strings.ToLower(strings.TrimFunc(fields[len(fields)-1], unicode.IsPunct))]; !ok {
			break
		}
		fields = fields[:len(fields)-1]
	}
	return strings.TrimFunc(strings.Join(fields, " "), func(r rune) bool {
		return unicode.IsSpace(r) || unicode.IsPunct(r)
	})
}

// plausibleName reports whether a cleaned name can be a restaurant. What
// is left of "how do I write a review" still reads as a request.
func plausibleName(name string) bool {
	ws := words(name)
	return len(ws) > 0 && !containsAny(ws, submitWords) && !containsAny(ws, reviewWords)
}

// extractName pulls the restaurant a message is about, or "".
func extractName(text string) string {
	text = strings.TrimSpace(text)
	for _, pattern := range []*regexp.Regexp{lastMarkerPattern, afterReviewPattern, beforeReviewPattern} {
		if m := pattern.FindStringSubmatch(text); m != nil {
			if name := cleanName(m[1]); plausibleName(name) {
				return name
			}
		}
	}
	return ""
}

// answerName is the restaurant named by a reply to "which restaurant".
// The reply is usually the bare name.
func answerName(text string) string {
	if name := cleanName(text); plausibleName(name) {
		return name
	}
	return extractName(text)
}

func wantsToSubmit(text string, ws []string) bool {
	if !containsAny(ws, reviewWords) {
		return false
	}
	if containsAny(ws, submitWords) {
		return true
	}
	lower := strings.ToLower(text)
	return strings.Contains(lower, "want to review") || strings.Contains(lower, "like to review")
}

// classify maps the latest user message to an intent. awaiting says which
// question, if any, the previous assistant turn asked.
func classify(text string, awaiting awaitKind) intent {
	ws := words(text)

	switch awaiting {
	case awaitReviewTarget:
		if name := answerName(text); name != "" {
			return intent{kind: intentReviewLink, arg: name}
		}
		return intent{kind: intentAskReviewTarget}
	case awaitReviewsTarget:
		if name := answerName(text); name != "" {
			return intent{kind: intentReviews, arg: name}
		}
		return intent{kind: intentAskReviewsTarget}
	}

	switch {
	case len(ws) == 0:
		return intent{kind: intentGreeting}
	case allIn(ws, greetingWords):
		return intent{kind: intentGreeting}
	case wantsToSubmit(text, ws):
		if name := extractName(text); name != "" {
			return intent{kind: intentReviewLink, arg: name}
		}
		return intent{kind: intentAskReviewTarget}
	case containsAny(ws, reviewWords):
		if name := extractName(text); name != "" {
			return intent{kind: intentReviews, arg: name}
		}
		return intent{kind: intentAskReviewsTarget}
	case containsAny(ws, infoWords):
		if name := extractName(text); name != "" {
			if cuisine := findCuisine(words(name)); cuisine != "" && containsAny(words(name), listWords) {
				return intent{kind: intentCuisine, arg: cuisine}
			}
			return intent{kind: intentRestaurantInfo, arg: name}
		}
	}

	if cuisine := findCuisine(ws); cuisine != "" {
		return intent{kind: intentCuisine, arg: cuisine}
	}
	if containsAny(ws, listWords) {
		return intent{kind: intentList}
	}
	return intent{kind: intentFallback}
}
