package progress

// Claim key prefixes for once-per-day flat bonuses
const (
	ClaimKeyDailyTiers = "daily_tiers:"
	ClaimKeyStreak7    = "streak_7:"
)

// DefaultPollutionDailyCap is used when no cap is configured
const DefaultPollutionDailyCap = 3

// Action ref formats
const (
	vehicleRefFormat = "vehicle:%s:%s"
	dailyRefFormat   = "%s:%s"
)

// Feed entry types
const (
	FeedTypeMissionCompleted   = "mission_completed"
	FeedTypeBadgeEarned        = "badge_earned"
	FeedTypeMilestoneCompleted = "milestone_completed"
	FeedTypeChallengeCompleted = "challenge_completed"
)

// Rejection reasons for metrics
const (
	reasonAlreadyCompleted = "already_completed"
	reasonNotEligible      = "not_eligible"
	reasonRateLimited      = "rate_limited"
)

// Log messages
const (
	LogMsgMissionCompleted     = "Mission completed"
	LogMsgComplianceLogged     = "Compliance event logged"
	LogMsgPollutionReported    = "Pollution report logged"
	LogMsgResumingUnsettled    = "Resuming unsettled action"
	LogMsgBonusClaimed         = "Flat bonus claimed"
	LogMsgBadgesAwarded        = "Badges awarded"
	LogMsgChallengeCompleted   = "Community challenge completed by contribution"
	LogMsgNotificationFailed   = "Notification not delivered"
	LogMsgFeedAppendFailed     = "Activity feed append failed"
	LogMsgSweepComplete        = "Expiration sweep complete"
	LogMsgChallengeRaceRetried = "Active challenge closed concurrently, retrying contribution"
	LogMsgPoolUnavailable      = "Daily pool unavailable, skipping daily tiers bonus"
)

// Error messages
const (
	ErrMsgRecordFailed     = "failed to record action"
	ErrMsgSettleFailed     = "failed to settle action"
	ErrMsgBadgesFailed     = "failed to award badges"
	ErrMsgBonusFailed      = "failed to claim bonus"
	ErrMsgMilestonesFailed = "failed to apply milestone contribution"
	ErrMsgChallengeFailed  = "failed to apply challenge contribution"
	ErrMsgCommunityFailed  = "failed to resolve community"
	ErrMsgVehicleFailed    = "failed to resolve vehicle"
	ErrMsgLoadFailed       = "failed to load progress"
	ErrMsgPoolFailed       = "failed to build daily mission pool"
	ErrMsgSweepFailed      = "failed to sweep expirations"
)
