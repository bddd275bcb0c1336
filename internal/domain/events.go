package domain

// Event type constants used for event bus subscriptions and metrics tracking.
//
// Event types follow the pattern: <entity>.<action> (e.g., "mission.completed")
const (
	// EventTypeMissionCompleted is published when a mission completion is recorded and settled
	EventTypeMissionCompleted = "mission.completed"

	// EventTypeComplianceLogged is published when a compliance certificate is logged
	EventTypeComplianceLogged = "compliance.logged"

	// EventTypePollutionReported is published when a pollution report is accepted
	EventTypePollutionReported = "pollution.reported"

	// EventTypeBadgeAwarded is published once per newly earned badge
	EventTypeBadgeAwarded = "badge.awarded"

	// EventTypeMilestoneCompleted is published when a milestone transitions to completed
	EventTypeMilestoneCompleted = "milestone.completed"

	// EventTypeChallengeCompleted is published when a community challenge reaches its goal
	EventTypeChallengeCompleted = "challenge.completed"

	// EventTypeFeedAppended carries activity feed entries when no external feed broker is configured
	EventTypeFeedAppended = "feed.appended"

	// EventTypeSweepComplete is published after an expiration sweep
	EventTypeSweepComplete = "sweep.complete"
)
