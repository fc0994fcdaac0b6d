package catalog

import (
	"context"
	"sync"
	"time"
)

// MemoryStore is an in-process Store. Reads hand out copies so callers
// cannot mutate the snapshot.
type MemoryStore struct {
	mu          sync.RWMutex
	restaurants []Restaurant
	reviews     map[string][]Review
	now         func() time.Time
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore returns a store loaded with the default seed.
func NewMemoryStore() *MemoryStore {
	s := &MemoryStore{now: time.Now}
	s.load(DefaultSeed(s.now()))
	return s
}

// NewMemoryStoreWith returns a store holding exactly data.
func NewMemoryStoreWith(data SeedData) *MemoryStore {
	s := &MemoryStore{now: time.Now}
	s.load(data)
	return s
}

func (s *MemoryStore) load(data SeedData) {
	restaurants := make([]Restaurant, len(data.Restaurants))
	copy(restaurants, data.Restaurants)

	reviews := make(map[string][]Review)
	for _, rv := range data.Reviews {
		reviews[rv.RestaurantID] = append(reviews[rv.RestaurantID], rv)
	}

	s.restaurants = restaurants
	s.reviews = reviews
}

// List returns all restaurants in seed order.
func (s *MemoryStore) List(ctx context.Context) ([]Restaurant, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Restaurant, len(s.restaurants))
	copy(out, s.restaurants)
	return out, nil
}

// ListByRestaurant returns the reviews of one restaurant in seed order.
func (s *MemoryStore) ListByRestaurant(ctx context.Context, restaurantID string) ([]Review, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	src := s.reviews[restaurantID]
	out := make([]Review, len(src))
	copy(out, src)
	return out, nil
}

// Seed replaces the store contents.
func (s *MemoryStore) Seed(ctx context.Context, data SeedData) error {
	if err := data.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.load(data)
	return nil
}

// Reset restores the default seed.
func (s *MemoryStore) Reset(ctx context.Context) error {
	return s.Seed(ctx, DefaultSeed(s.now()))
}
