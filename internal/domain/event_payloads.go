package domain

// MissionCompletedPayload is the payload for EventTypeMissionCompleted
type MissionCompletedPayload struct {
	UserID        string  `json:"user_id"`
	MissionID     string  `json:"mission_id"`
	PointsAwarded int     `json:"points_awarded"`
	Co2SavedKg    float64 `json:"co2_saved_kg"`
	Streak        int     `json:"streak"`
}

// ActionLoggedPayload is the payload for compliance and pollution events
type ActionLoggedPayload struct {
	UserID        string  `json:"user_id"`
	ActionRef     string  `json:"action_ref"`
	PointsAwarded int     `json:"points_awarded"`
	Co2ImpactKg   float64 `json:"co2_impact_kg"`
}

// BadgeAwardedPayload is the payload for EventTypeBadgeAwarded
type BadgeAwardedPayload struct {
	UserID  string `json:"user_id"`
	BadgeID string `json:"badge_id"`
}

// MilestoneCompletedPayload is the payload for EventTypeMilestoneCompleted
type MilestoneCompletedPayload struct {
	UserID      string        `json:"user_id"`
	Type        MilestoneType `json:"type"`
	PeriodKey   string        `json:"period_key"`
	BonusPoints int           `json:"bonus_points"`
	BadgeID     string        `json:"badge_id,omitempty"`
}

// ChallengeCompletedPayload is the payload for EventTypeChallengeCompleted
type ChallengeCompletedPayload struct {
	CommunityID  string  `json:"community_id"`
	ChallengeID  string  `json:"challenge_id"`
	GoalCo2Kg    float64 `json:"goal_co2_kg"`
	CurrentCo2Kg float64 `json:"current_co2_kg"`
}

// SweepCompletePayload is the payload for EventTypeSweepComplete
type SweepCompletePayload struct {
	MilestonesExpired int `json:"milestones_expired"`
	ChallengesExpired int `json:"challenges_expired"`
}
