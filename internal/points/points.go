// Package points converts a rewarded action into a point amount.
package points

import (
	"math"

	"github.com/osse101/EcoRewards_Go/internal/domain"
)

// Flat bonuses, never multiplied
const (
	DailyTiersBonus = 50
	Streak7Bonus    = 100
)

// Compliance and pollution rewards
const (
	ComplianceOnTimePoints = 50
	ComplianceLatePoints   = 20
	PollutionReportPoints  = 15
)

// Streak7Threshold is the streak length that triggers Streak7Bonus
const Streak7Threshold = 7

var difficultyMultipliers = map[domain.Difficulty]float64{
	domain.DifficultyEasy:   1.0,
	domain.DifficultyMedium: 1.5,
	domain.DifficultyHard:   2.0,
}

// streakTiers must stay sorted by MinStreak, multipliers non-decreasing
var streakTiers = []struct {
	MinStreak  int
	Multiplier float64
}{
	{30, 2.0},
	{14, 1.5},
	{7, 1.25},
	{0, 1.0},
}

// DifficultyMultiplier returns the co2 bonus multiplier for a tier; unknown tiers count as easy
func DifficultyMultiplier(d domain.Difficulty) float64 {
	if m, ok := difficultyMultipliers[d]; ok {
		return m
	}
	return 1.0
}

// StreakMultiplier returns the base-points multiplier for a streak length, capped at 2.0
func StreakMultiplier(streak int) float64 {
	for _, tier := range streakTiers {
		if streak >= tier.MinStreak {
			return tier.Multiplier
		}
	}
	return 1.0
}

// Points computes the award for a mission:
// round(base * streakMultiplier) + round(co2 * difficultyMultiplier).
func Points(basePoints int, co2SavedKg float64, d domain.Difficulty, streak int) int {
	if basePoints < 0 {
		basePoints = 0
	}
	if co2SavedKg < 0 {
		co2SavedKg = 0
	}
	base := int(math.Round(float64(basePoints) * StreakMultiplier(streak)))
	bonus := int(math.Round(co2SavedKg * DifficultyMultiplier(d)))
	return base + bonus
}

// CrossedStreak7 reports whether this action moved the streak up through 7
func CrossedStreak7(previous, next int) bool {
	return previous < Streak7Threshold && next == Streak7Threshold
}

// CompliancePoints returns the reward for a compliance log
func CompliancePoints(isOnTime bool) int {
	if isOnTime {
		return ComplianceOnTimePoints
	}
	return ComplianceLatePoints
}
