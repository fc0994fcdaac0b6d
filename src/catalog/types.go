// Package catalog holds the restaurant directory and review store the
// assistant reads from. Nothing in the chat path writes to it; Seed and
// Reset exist for operators and tests.
package catalog

import (
	"context"
	"errors"
	"time"
)

// Restaurant is a directory entry.
type Restaurant struct {
	ID          string `json:"id" db:"id"`
	Name        string `json:"name" db:"name"`
	Cuisine     string `json:"cuisine" db:"cuisine"`
	Description string `json:"description" db:"description"`
}

// Review is a single customer review. Username is optional.
type Review struct {
	ID           string    `json:"id" db:"id"`
	RestaurantID string    `json:"restaurantId" db:"restaurant_id"`
	UserID       string    `json:"userId,omitempty" db:"user_id"`
	Username     string    `json:"username,omitempty" db:"username"`
	Title        string    `json:"title,omitempty" db:"title"`
	Text         string    `json:"text" db:"text"`
	Rating       int       `json:"rating" db:"rating"`
	Date         time.Time `json:"date" db:"date"`
}

// Directory lists restaurants in a stable order.
type Directory interface {
	List(ctx context.Context) ([]Restaurant, error)
}

// ReviewStore lists reviews for one restaurant in store order.
type ReviewStore interface {
	ListByRestaurant(ctx context.Context, restaurantID string) ([]Review, error)
}

// Store is a backend serving both collaborator interfaces plus the
// seeding operations.
type Store interface {
	Directory
	ReviewStore
	Seed(ctx context.Context, data SeedData) error
	Reset(ctx context.Context) error
}

// SeedData is a full snapshot of directory and reviews.
type SeedData struct {
	Restaurants []Restaurant `json:"restaurants"`
	Reviews     []Review     `json:"reviews"`
}

// Validate checks that every review references a known restaurant and
// carries a rating between 1 and 5.
func (s SeedData) Validate() error {
	ids := make(map[string]struct{}, len(s.Restaurants))
	for _, r := range s.Restaurants {
		if r.ID == "" || r.Name == "" {
			return errors.New("restaurant id and name are required")
		}
		if _, dup := ids[r.ID]; dup {
			return errors.New("duplicate restaurant id " + r.ID)
		}
		ids[r.ID] = struct{}{}
	}
	for _, rv := range s.Reviews {
		if _, ok := ids[rv.RestaurantID]; !ok {
			return errors.New("review " + rv.ID + " references unknown restaurant " + rv.RestaurantID)
		}
		if rv.Rating < 1 || rv.Rating > 5 {
			return errors.New("review " + rv.ID + " has rating outside 1..5")
		}
	}
	return nil
}
