package milestone

import (
	"github.com/osse101/EcoRewards_Go/internal/badge"
	"github.com/osse101/EcoRewards_Go/internal/domain"
)

// Contribution is the raw input of one rewarded action
type Contribution struct {
	Co2Kg float64
	// Missions is 1 for a mission completion and 0 for other actions
	Missions int
	// Streak is the user's streak after the action
	Streak    int
	ActionRef string
}

// Extractor turns a contribution into the amount credited to a milestone.
// ok=false means the contribution does not touch this kind.
type Extractor func(c Contribution) (amount float64, ok bool)

// Tier is one difficulty level of a kind
type Tier struct {
	Target      float64
	BonusPoints int
}

// Kind describes one milestone type
type Kind struct {
	Type    domain.MilestoneType
	Period  domain.Period
	Unit    string
	Label   string
	Extract Extractor
	// Gauge kinds record the highest value seen instead of summing
	Gauge   bool
	Tiers   [3]Tier // easy, medium, hard
	BadgeID string
}

func co2Delta(c Contribution) (float64, bool) {
	return c.Co2Kg, c.Co2Kg > 0
}

func missionCount(c Contribution) (float64, bool) {
	return 1, c.Missions > 0
}

func streakGauge(c Contribution) (float64, bool) {
	return float64(c.Streak), c.Streak > 0
}

// DefaultKinds is the registry of tracked milestone types
var DefaultKinds = []Kind{
	{
		Type: domain.MilestoneWeeklyCo2, Period: domain.PeriodWeekly,
		Unit: "kg", Label: "Save CO2 this week", Extract: co2Delta,
		Tiers: [3]Tier{{10, 50}, {25, 100}, {50, 200}},
	},
	{
		Type: domain.MilestoneMonthlyCo2, Period: domain.PeriodMonthly,
		Unit: "kg", Label: "Save CO2 this month", Extract: co2Delta,
		Tiers:   [3]Tier{{50, 200}, {100, 400}, {200, 800}},
		BadgeID: badge.ClimateGuardian,
	},
	{
		Type: domain.MilestoneWeeklyMissions, Period: domain.PeriodWeekly,
		Unit: "missions", Label: "Complete missions this week", Extract: missionCount,
		Tiers: [3]Tier{{3, 30}, {5, 60}, {10, 120}},
	},
	{
		Type: domain.MilestoneMonthlyMissions, Period: domain.PeriodMonthly,
		Unit: "missions", Label: "Complete missions this month", Extract: missionCount,
		Tiers: [3]Tier{{10, 150}, {20, 300}, {40, 600}},
	},
	{
		Type: domain.MilestoneMonthlyStreak, Period: domain.PeriodMonthly,
		Unit: "days", Label: "Reach a daily streak this month", Extract: streakGauge, Gauge: true,
		Tiers:   [3]Tier{{7, 150}, {14, 300}, {21, 500}},
		BadgeID: badge.StreakMaster,
	},
}

// Tier thresholds on the number of milestones a user has completed
const (
	mediumTierAfter = 4
	hardTierAfter   = 12
)

// TierIndex picks the difficulty tier from a user's completed-milestone count
func TierIndex(completed int) int {
	switch {
	case completed < mediumTierAfter:
		return 0
	case completed < hardTierAfter:
		return 1
	default:
		return 2
	}
}
