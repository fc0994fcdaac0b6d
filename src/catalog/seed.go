package catalog

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/afero"
)

const day = 24 * time.Hour

// DefaultRestaurants returns the Gadag directory.
func DefaultRestaurants() []Restaurant {
	return []Restaurant{
		{ID: "1", Name: "Shivaratna Grand Eatery", Cuisine: "South Indian", Description: "Authentic South Indian delicacies, known for its crispy dosas and flavorful idlis. A local favorite for breakfast and lunch."},
		{ID: "2", Name: "Nisarga Garden Family Restaurant", Cuisine: "Multi-cuisine", Description: "A perfect place for family dining with a variety of dishes, set in a pleasant garden atmosphere. Offers North Indian, South Indian, and Chinese options."},
		{ID: "3", Name: "Shree Guru Residency", Cuisine: "North & South Indian", Description: "Serving a blend of North and South Indian flavors, popular for its thalis and biryanis. Clean and comfortable dining."},
		{ID: "4", Name: "Kamat Hotel", Cuisine: "Vegetarian", Description: "Pure vegetarian restaurant with traditional recipes from Karnataka. Famous for its authentic Udupi-style food."},
		{ID: "5", Name: "Swathi Family Restaurant", Cuisine: "Indo-Chinese", Description: "Delicious Indo-Chinese fusion cuisine, offering a mix of spicy Schezwan dishes and popular Chinese favorites adapted to Indian tastes."},
		{ID: "6", Name: "Annapoorna Udupi Bhojana", Cuisine: "Udupi South Indian", Description: "Classic Udupi-style vegetarian meals, known for its authentic flavors and quick service. A go-to for traditional Kannada thalis."},
		{ID: "7", Name: "Spice Garden Restaurant", Cuisine: "North Indian & Chinese", Description: "A family-friendly restaurant offering a diverse menu of popular North Indian curries, tandoori items, and flavorful Chinese dishes."},
		{ID: "8", Name: "City Light Cafe", Cuisine: "Cafe & Snacks", Description: "A cozy spot for quick bites, tea, coffee, and local snacks. Perfect for a casual hangout or an evening snack."},
	}
}

// DefaultReviews returns the demo reviews dated relative to now.
func DefaultReviews(now time.Time) []Review {
	ago := func(days int) time.Time { return now.Add(-time.Duration(days) * day) }
	return []Review{
		{ID: "r1", RestaurantID: "1", UserID: "user123", Username: "FoodieGal", Title: "Amazing Dosa!", Text: "Loved the masala dosa at Shivaratna Grand Eatery! Crispy and flavorful.", Rating: 4, Date: ago(2)},
		{ID: "r1a", RestaurantID: "1", UserID: "user456", Username: "CriticBob", Title: "Good, not great", Text: "Masala dosa at Shivaratna Grand Eatery was decent, service was quick. Could be spicier.", Rating: 3, Date: ago(2)},
		{ID: "r2", RestaurantID: "1", UserID: "user456", Username: "BiryaniKing", Title: "Decent South Indian", Text: "The idlis at Shivaratna Grand Eatery were soft, but the sambar could be better.", Rating: 3, Date: ago(5)},
		{ID: "r3", RestaurantID: "2", UserID: "user789", Username: "FamilyDiner", Title: "Great for Families", Text: "Great ambiance and paneer tikka at Nisarga! Kids loved the garden.", Rating: 5, Date: ago(1)},
		{ID: "r4", RestaurantID: "2", UserID: "user101", Username: "QuickBite", Title: "Good food, slow service", Text: "The North Indian dishes at Nisarga Garden were tasty, but service was a bit slow during peak hours.", Rating: 3, Date: ago(10)},
		{ID: "r4a", RestaurantID: "2", UserID: "user102", Username: "AnnoyedEater", Title: "Too Slow", Text: "Waited ages for our food at Nisarga. Not coming back on a weekend.", Rating: 2, Date: ago(10)},
		{ID: "r5", RestaurantID: "4", UserID: "user202", Username: "VegLover", Title: "Authentic Thali", Text: "Best vegetarian thali in town at Kamat Hotel! So many varieties and authentic taste.", Rating: 5, Date: ago(3)},
		{ID: "r6", RestaurantID: "4", UserID: "user303", Username: "LocalExplorer", Title: "Bit Crowded", Text: "Decent Udupi food at Kamat, but the place gets a bit crowded during lunch.", Rating: 3, Date: ago(7)},
		{ID: "r7", RestaurantID: "3", UserID: "user303", Username: "SpiceQueen", Title: "Delicious Biryani", Text: "The biryani at Shree Guru Residency is a must-try! Perfectly spiced.", Rating: 5, Date: ago(4)},
		{ID: "r8", RestaurantID: "5", UserID: "user303", Username: "NoodleFan", Title: "Yummy Noodles", Text: "Schezwan noodles at Swathi were fantastic. Good portion size too.", Rating: 4, Date: ago(6)},
		{ID: "r9", RestaurantID: "6", UserID: "user404", Username: "ThaliLover", Title: "Authentic Udupi Meal", Text: "Annapoorna Udupi Bhojana serves a really good, unlimited thali. Very satisfying!", Rating: 5, Date: ago(1)},
		{ID: "r10", RestaurantID: "7", UserID: "user505", Username: "CurryFan", Title: "Tasty Paneer Butter Masala", Text: "Enjoyed the Paneer Butter Masala at Spice Garden. The naans were soft too.", Rating: 4, Date: ago(2)},
		{ID: "r11", RestaurantID: "8", UserID: "user606", Username: "ChaiAddict", Title: "Nice Tea Spot", Text: "City Light Cafe is great for evening tea and some light snacks. Very affordable.", Rating: 4, Date: ago(3)},
	}
}

// DefaultSeed returns the demo directory and reviews.
func DefaultSeed(now time.Time) SeedData {
	return SeedData{
		Restaurants: DefaultRestaurants(),
		Reviews:     DefaultReviews(now),
	}
}

// LoadSeedFile reads a JSON SeedData document.
func LoadSeedFile(fs afero.Fs, path string) (SeedData, error) {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return SeedData{}, fmt.Errorf("failed to read seed file: %w", err)
	}

	var seed SeedData
	if err := json.Unmarshal(data, &seed); err != nil {
		return SeedData{}, fmt.Errorf("failed to parse seed file %s: %w", path, err)
	}
	if err := seed.Validate(); err != nil {
		return SeedData{}, fmt.Errorf("invalid seed file %s: %w", path, err)
	}
	return seed, nil
}
