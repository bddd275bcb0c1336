package domain

import "time"

// Action kinds recorded in the action log
const (
	ActionKindMission    ActionKind = "mission"
	ActionKindCompliance ActionKind = "compliance"
	ActionKindPollution  ActionKind = "pollution"
)

// ActionKind identifies which handler produced an ActionRecord
type ActionKind string

// BadgeAward is a badge held by a user
type BadgeAward struct {
	BadgeID  string    `json:"badge_id"`
	EarnedAt time.Time `json:"earned_at"`
}

// UserProgress is the per-user reward aggregate
type UserProgress struct {
	UserID            string       `json:"user_id"`
	TotalPoints       int          `json:"total_points"`
	TotalCo2SavedKg   float64      `json:"total_co2_saved_kg"`
	CurrentStreak     int          `json:"current_streak"`
	LongestStreak     int          `json:"longest_streak"`
	LastActiveDateKey string       `json:"last_active_date_key,omitempty"` // empty until the first action
	Badges            []BadgeAward `json:"badges"`
	MissionsCompleted int          `json:"missions_completed"`
	ComplianceOnTime  int          `json:"compliance_on_time"`
	PollutionReports  int          `json:"pollution_reports"`
	CreatedAt         time.Time    `json:"created_at"`
	UpdatedAt         time.Time    `json:"updated_at"`
}

// OwnedBadges returns the badge ids held by the user as a set
func (p *UserProgress) OwnedBadges() map[string]bool {
	owned := make(map[string]bool, len(p.Badges))
	for _, b := range p.Badges {
		owned[b.BadgeID] = true
	}
	return owned
}

// Snapshot builds the stat snapshot badge predicates are evaluated against
func (p *UserProgress) Snapshot(hasCommunity bool) StatSnapshot {
	return StatSnapshot{
		TotalCo2SavedKg:       p.TotalCo2SavedKg,
		MissionsCount:         p.MissionsCompleted,
		CurrentStreak:         p.CurrentStreak,
		HasCommunity:          hasCommunity,
		ComplianceOnTimeCount: p.ComplianceOnTime,
		PollutionReportCount:  p.PollutionReports,
	}
}

// StatSnapshot is the read-only view used for badge evaluation
type StatSnapshot struct {
	TotalCo2SavedKg       float64 `json:"total_co2_saved_kg"`
	MissionsCount         int     `json:"missions_count"`
	CurrentStreak         int     `json:"current_streak"`
	HasCommunity          bool    `json:"has_community"`
	ComplianceOnTimeCount int     `json:"compliance_on_time_count"`
	PollutionReportCount  int     `json:"pollution_report_count"`
}

// ActionRecord is one rewarded user action
type ActionRecord struct {
	UserID    string     `json:"user_id"`
	Kind      ActionKind `json:"kind"`
	ActionRef string     `json:"action_ref"`
	// Subject is the catalog id the action refers to (mission, vehicle or report id)
	Subject         string    `json:"subject"`
	DateKey         string    `json:"date_key"`
	PointsAwarded   int       `json:"points_awarded"`
	Co2SavedAwarded float64   `json:"co2_saved_awarded"`
	StreakAfter     int       `json:"streak_after"`
	CompletedAt     time.Time `json:"completed_at"`
	Settled         bool      `json:"settled"`
}

// Counter names the UserProgress counter an action increments
type Counter string

// Counters
const (
	CounterNone             Counter = ""
	CounterMissions         Counter = "missions_completed"
	CounterComplianceOnTime Counter = "compliance_on_time"
	CounterPollutionReports Counter = "pollution_reports"
)

// ApplyInput is the state a RewardFunc sees while the user's aggregate is locked
type ApplyInput struct {
	Progress UserProgress
	// KindCountToday is the number of records of the same kind already stored for the day.
	KindCountToday int
}

// ProgressDelta is the additive change applied together with a new ActionRecord
type ProgressDelta struct {
	Points  int
	Co2Kg   float64
	Streak  int
	Counter Counter
}

// RewardFunc computes the delta for a new action from the locked aggregate.
// Returning an error aborts the record with no mutation.
type RewardFunc func(in ApplyInput) (ProgressDelta, error)

// RecordOutcome is the result of an atomic record-and-apply call
type RecordOutcome struct {
	Record         ActionRecord
	Progress       UserProgress
	PreviousStreak int
	// Created is false when the record already existed; Progress is then the current state.
	Created bool
}
