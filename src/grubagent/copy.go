package grubagent

import (
	tool_getreviews "github.com/elee1766/grubguide/src/grubagent/tools/tool_getreviews"
)

// Fixed copy shown to users.
const (
	GreetingMessage           = "Hi! I’m your food guide for Gadag 🍽️. Want to check out restaurants, read reviews, or leave a review?"
	ApologyMessage            = "Sorry, I seem to be having trouble connecting. Please try again in a moment."
	FallbackMessage           = "I'm sorry, I can only help with finding restaurants in Gadag, reading their reviews, or leaving a review."
	AskWhichRestaurantMessage = "Sure! Which restaurant would you like to review?"

	NotFoundMessage  = tool_getreviews.MessageNotFound
	NoReviewsMessage = tool_getreviews.MessageNoReviews
)

// DefaultListLimit caps how many restaurants a listing shows.
const DefaultListLimit = 5
