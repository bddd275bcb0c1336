// Package badge evaluates the badge catalog against a user's stat snapshot.
package badge

import "github.com/osse101/EcoRewards_Go/internal/domain"

// Badge ids
const (
	FirstMission        = "first-mission"
	Bronze10Kg          = "bronze-10kg"
	Silver50Kg          = "silver-50kg"
	Gold100Kg           = "gold-100kg"
	Platinum500Kg       = "platinum-500kg"
	Streak7             = "streak-7"
	Streak30            = "streak-30"
	Missions10          = "missions-10"
	Missions50          = "missions-50"
	CommunityMember     = "community-member"
	ComplianceFirst     = "compliance-first"
	Compliance5         = "compliance-5"
	PollutionReporter   = "pollution-reporter"
	PollutionWatchdog10 = "pollution-watchdog-10"

	// Awarded only through milestone rewards
	ClimateGuardian = "climate-guardian"
	StreakMaster    = "streak-master"
)

// Predicate reports whether a snapshot qualifies for a badge
type Predicate func(s domain.StatSnapshot) bool

// Entry is one catalog row
type Entry struct {
	ID        string
	Name      string
	Predicate Predicate
}

func co2AtLeast(kg float64) Predicate {
	return func(s domain.StatSnapshot) bool { return s.TotalCo2SavedKg >= kg }
}

func missionsAtLeast(n int) Predicate {
	return func(s domain.StatSnapshot) bool { return s.MissionsCount >= n }
}

func streakAtLeast(n int) Predicate {
	return func(s domain.StatSnapshot) bool { return s.CurrentStreak >= n }
}

func complianceAtLeast(n int) Predicate {
	return func(s domain.StatSnapshot) bool { return s.ComplianceOnTimeCount >= n }
}

func reportsAtLeast(n int) Predicate {
	return func(s domain.StatSnapshot) bool { return s.PollutionReportCount >= n }
}

// DefaultCatalog is append-only. Predicates must only read non-decreasing stats
// or stats whose badge, once held, is never re-evaluated.
var DefaultCatalog = []Entry{
	{FirstMission, "First Step", missionsAtLeast(1)},
	{Bronze10Kg, "Bronze Saver", co2AtLeast(10)},
	{Silver50Kg, "Silver Saver", co2AtLeast(50)},
	{Gold100Kg, "Gold Saver", co2AtLeast(100)},
	{Platinum500Kg, "Platinum Saver", co2AtLeast(500)},
	{Streak7, "Week Warrior", streakAtLeast(7)},
	{Streak30, "Habit Hero", streakAtLeast(30)},
	{Missions10, "Mission Regular", missionsAtLeast(10)},
	{Missions50, "Mission Veteran", missionsAtLeast(50)},
	{CommunityMember, "Team Player", func(s domain.StatSnapshot) bool { return s.HasCommunity }},
	{ComplianceFirst, "Clean Ride", complianceAtLeast(1)},
	{Compliance5, "Clean Fleet", complianceAtLeast(5)},
	{PollutionReporter, "Watchful Eye", reportsAtLeast(1)},
	{PollutionWatchdog10, "Pollution Watchdog", reportsAtLeast(10)},
}

// names of milestone-only badges
var rewardBadgeNames = map[string]string{
	ClimateGuardian: "Climate Guardian",
	StreakMaster:    "Streak Master",
}
