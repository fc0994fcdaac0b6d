package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/elee1766/grubguide/src/catalog"
	"github.com/georgysavva/scany/v2/sqlscan"
)

var _ catalog.Store = (*DB)(nil)

// List returns every restaurant in insertion order.
func (d *DB) List(ctx context.Context) ([]catalog.Restaurant, error) {
	return listRestaurants(ctx, d.db)
}

// ListByRestaurant returns a restaurant's reviews in insertion order.
func (d *DB) ListByRestaurant(ctx context.Context, restaurantID string) ([]catalog.Review, error) {
	return listReviews(ctx, d.db, restaurantID)
}

// IsEmpty reports whether the directory has no restaurants.
func (d *DB) IsEmpty(ctx context.Context) (bool, error) {
	var count int
	if err := sqlscan.Get(ctx, d.db, &count, `SELECT COUNT(*) FROM restaurants`); err != nil {
		return false, fmt.Errorf("failed to count restaurants: %w", err)
	}
	return count == 0, nil
}

// Seed replaces the catalog with data in a single transaction.
func (d *DB) Seed(ctx context.Context, data catalog.SeedData) error {
	if err := data.Validate(); err != nil {
		return err
	}

	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := replaceCatalog(ctx, tx, data); err != nil {
		return err
	}
	return tx.Commit()
}

// Reset restores the default seed.
func (d *DB) Reset(ctx context.Context) error {
	return d.Seed(ctx, catalog.DefaultSeed(time.Now()))
}

func listRestaurants(ctx context.Context, db sqlscan.Querier) ([]catalog.Restaurant, error) {
	query := `SELECT id, name, cuisine, description FROM restaurants ORDER BY seq`
	var restaurants []catalog.Restaurant
	if err := sqlscan.Select(ctx, db, &restaurants, query); err != nil {
		return nil, fmt.Errorf("failed to list restaurants: %w", err)
	}
	return restaurants, nil
}

func listReviews(ctx context.Context, db sqlscan.Querier, restaurantID string) ([]catalog.Review, error) {
	query := `SELECT id, restaurant_id, user_id, username, title, text, rating, date FROM reviews WHERE restaurant_id = ? ORDER BY seq`
	var reviews []catalog.Review
	if err := sqlscan.Select(ctx, db, &reviews, query, restaurantID); err != nil {
		return nil, fmt.Errorf("failed to list reviews for %s: %w", restaurantID, err)
	}
	return reviews, nil
}

func replaceCatalog(ctx context.Context, db Execer, data catalog.SeedData) error {
	if _, err := db.ExecContext(ctx, `DELETE FROM reviews`); err != nil {
		return fmt.Errorf("failed to clear reviews: %w", err)
	}
	if _, err := db.ExecContext(ctx, `DELETE FROM restaurants`); err != nil {
		return fmt.Errorf("failed to clear restaurants: %w", err)
	}

	for _, r := range data.Restaurants {
		query := `INSERT INTO restaurants (id, name, cuisine, description) VALUES (?, ?, ?, ?)`
		if _, err := db.ExecContext(ctx, query, r.ID, r.Name, r.Cuisine, r.Description); err != nil {
			return fmt.Errorf("failed to insert restaurant %s: %w", r.ID, err)
		}
	}

	for _, rv := range data.Reviews {
		query := `INSERT INTO reviews (id, restaurant_id, user_id, username, title, text, rating, date) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
		if _, err := db.ExecContext(ctx, query, rv.ID, rv.RestaurantID, rv.UserID, rv.Username, rv.Title, rv.Text, rv.Rating, rv.Date.UTC()); err != nil {
			return fmt.Errorf("failed to insert review %s: %w", rv.ID, err)
		}
	}
	return nil
}
