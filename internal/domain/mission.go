package domain

// Difficulty tiers
const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// Difficulty is a mission tier
type Difficulty string

// Difficulties lists tiers in pool output order
var Difficulties = []Difficulty{DifficultyEasy, DifficultyMedium, DifficultyHard}

// Valid reports whether d is a known tier
func (d Difficulty) Valid() bool {
	return d == DifficultyEasy || d == DifficultyMedium || d == DifficultyHard
}

// Emission categories
const (
	CategoryTransport Category = "transport"
	CategoryFood      Category = "food"
	CategoryEnergy    Category = "energy"
	CategoryWaste     Category = "waste"
	CategoryWater     Category = "water"
)

// Category is an emission category
type Category string

// Valid reports whether c is a known category
func (c Category) Valid() bool {
	switch c {
	case CategoryTransport, CategoryFood, CategoryEnergy, CategoryWaste, CategoryWater:
		return true
	}
	return false
}

// Mission is a static catalog entry
type Mission struct {
	ID         string     `json:"id"`
	Title      string     `json:"title"`
	Category   Category   `json:"category"`
	Difficulty Difficulty `json:"difficulty"`
	Co2SavedKg float64    `json:"co2_saved_kg"`
	BasePoints int        `json:"base_points"`
}

// MissionCatalogConfig is the on-disk catalog format
type MissionCatalogConfig struct {
	Version  string    `json:"version"`
	Missions []Mission `json:"missions"`
}

// DailySignal is the same-day behavioural input to pool generation
type DailySignal struct {
	CarDistanceKm    float64  `json:"car_distance_km"`
	NonVegMeal       bool     `json:"non_veg_meal"`
	ApplianceHours   float64  `json:"appliance_hours"`
	DominantCategory Category `json:"dominant_category"`
}

// Vehicle classes exempt from compliance logging
const (
	VehicleClassElectric = "electric"
	VehicleClassBicycle  = "bicycle"
)

// FeedEvent is an entry appended to a community activity feed
type FeedEvent struct {
	Type      string         `json:"type"`
	UserID    string         `json:"user_id"`
	Message   string         `json:"message"`
	Data      map[string]any `json:"data,omitempty"`
	CreatedAt string         `json:"created_at"`
}
