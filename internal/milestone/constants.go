package milestone

// Log messages
const (
	LogMsgMilestoneCreated     = "Milestone created for period"
	LogMsgMilestoneCompleted   = "Milestone completed"
	LogMsgMilestoneCasLost     = "Milestone completion claimed by a concurrent writer"
	LogMsgUnknownMilestoneType = "Skipping milestone with unregistered type"
	LogMsgMilestonesExpired    = "Expired milestones swept"
)

// Error messages
const (
	ErrMsgCountCompletedFailed = "failed to count completed milestones"
	ErrMsgUpsertFailed         = "failed to ensure milestone"
	ErrMsgFindActiveFailed     = "failed to load active milestones"
	ErrMsgApplyFailed          = "failed to apply milestone progress"
	ErrMsgCompleteFailed       = "failed to complete milestone"
	ErrMsgSweepFailed          = "failed to sweep expired milestones"
)
