package domain

import (
	"math"
	"time"
)

// MilestoneType tags the kind of recurring goal
type MilestoneType string

// Milestone types
const (
	MilestoneWeeklyCo2       MilestoneType = "weekly_co2"
	MilestoneMonthlyCo2      MilestoneType = "monthly_co2"
	MilestoneWeeklyMissions  MilestoneType = "weekly_missions"
	MilestoneMonthlyMissions MilestoneType = "monthly_missions"
	MilestoneMonthlyStreak   MilestoneType = "monthly_streak"
)

// Period is the calendar bucket a milestone is scoped to
type Period string

// Periods
const (
	PeriodWeekly  Period = "weekly"
	PeriodMonthly Period = "monthly"
)

// Status is shared by milestones and challenges
type Status string

// Statuses. Completed and failed are terminal.
const (
	StatusActive    Status = "active"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// MilestoneKey identifies a milestone record
type MilestoneKey struct {
	UserID    string        `json:"user_id"`
	Type      MilestoneType `json:"type"`
	PeriodKey string        `json:"period_key"`
}

// MilestoneGoal describes the target of a milestone
type MilestoneGoal struct {
	TargetValue float64 `json:"target_value"`
	Unit        string  `json:"unit"`
	Label       string  `json:"label"`
}

// MilestoneProgress is the running progress of a milestone
type MilestoneProgress struct {
	CurrentValue    float64 `json:"current_value"`
	PercentComplete int     `json:"percent_complete"`
}

// MilestoneReward is granted once on completion
type MilestoneReward struct {
	BonusPoints int    `json:"bonus_points"`
	BadgeID     string `json:"badge_id,omitempty"`
}

// RecurringMilestone is a period-scoped personal goal
type RecurringMilestone struct {
	ID          string            `json:"id"`
	UserID      string            `json:"user_id"`
	Type        MilestoneType     `json:"type"`
	PeriodKey   string            `json:"period_key"`
	Period      Period            `json:"period"`
	Goal        MilestoneGoal     `json:"goal"`
	Progress    MilestoneProgress `json:"progress"`
	Reward      MilestoneReward   `json:"reward"`
	Status      Status            `json:"status"`
	PeriodStart time.Time         `json:"period_start"`
	PeriodEnd   time.Time         `json:"period_end"`
	CompletedAt *time.Time        `json:"completed_at,omitempty"`
	CreatedAt   time.Time         `json:"created_at"`
}

// Key returns the uniqueness key of the milestone
func (m *RecurringMilestone) Key() MilestoneKey {
	return MilestoneKey{UserID: m.UserID, Type: m.Type, PeriodKey: m.PeriodKey}
}

// MilestoneUpdate is one atomic progress write against a milestone.
// Gauge updates keep the larger of the stored and new value instead of adding.
type MilestoneUpdate struct {
	MilestoneID string
	Amount      float64
	Gauge       bool
	ActionRef   string
	Now         time.Time
}

// MilestoneUpdateResult reports what an atomic progress write did
type MilestoneUpdateResult struct {
	Milestone RecurringMilestone
	// Applied is false when the action was already counted against this milestone.
	Applied bool
}

// MilestoneView is the read model returned to clients
type MilestoneView struct {
	Type            MilestoneType `json:"type"`
	PeriodKey       string        `json:"period_key"`
	Label           string        `json:"label"`
	Unit            string        `json:"unit"`
	TargetValue     float64       `json:"target_value"`
	CurrentValue    float64       `json:"current_value"`
	PercentComplete int           `json:"percent_complete"`
	BonusPoints     int           `json:"bonus_points"`
	BadgeID         string        `json:"badge_id,omitempty"`
	Status          Status        `json:"status"`
	PeriodEnd       time.Time     `json:"period_end"`
	DaysRemaining   int           `json:"days_remaining"`
}

// PercentComplete is min(100, round(current/target*100))
func PercentComplete(current, target float64) int {
	if target <= 0 {
		return 100
	}
	p := int(math.Round(current / target * 100))
	if p > 100 {
		return 100
	}
	if p < 0 {
		return 0
	}
	return p
}
