package domain

import "time"

// CommunityChallenge is a time-boxed community-wide co2 goal
type CommunityChallenge struct {
	ID               string     `json:"id"`
	CommunityID      string     `json:"community_id"`
	GoalCo2Kg        float64    `json:"goal_co2_kg"`
	CurrentCo2Kg     float64    `json:"current_co2_kg"`
	ParticipantCount int        `json:"participant_count"`
	Status           Status     `json:"status"`
	StartAt          time.Time  `json:"start_at"`
	EndAt            time.Time  `json:"end_at"`
	CompletedAt      *time.Time `json:"completed_at,omitempty"`
}

// ChallengeContribution is one atomic write against the active challenge
type ChallengeContribution struct {
	ChallengeID string
	UserID      string
	Co2Kg       float64
	ActionRef   string
	Now         time.Time
}

// ChallengeUpdateResult reports what a contribution write did
type ChallengeUpdateResult struct {
	Challenge CommunityChallenge
	Applied   bool
}

// ChallengeView is the read model returned to clients
type ChallengeView struct {
	CommunityChallenge
	ProgressPercent float64 `json:"progress_percent"`
	DaysRemaining   int     `json:"days_remaining"`
	HoursRemaining  int     `json:"hours_remaining"`
}

// ProgressPercent is min(100, current/goal*100); CurrentCo2Kg itself is never clamped
func (c *CommunityChallenge) ProgressPercent() float64 {
	if c.GoalCo2Kg <= 0 {
		return 100
	}
	p := c.CurrentCo2Kg / c.GoalCo2Kg * 100
	if p > 100 {
		return 100
	}
	return p
}

// Remaining floors the time left until EndAt to whole days and whole hours, never negative
func (c *CommunityChallenge) Remaining(now time.Time) (days, hours int) {
	d := c.EndAt.Sub(now)
	if d <= 0 {
		return 0, 0
	}
	return int(d / (24 * time.Hour)), int(d / time.Hour)
}
