package challenge

import "time"

// Defaults used when no goal or window is configured
const (
	DefaultGoalCo2Kg = 1000.0
	DefaultWindow    = 30 * 24 * time.Hour
)

// Log messages
const (
	LogMsgChallengeCreated    = "Community challenge started"
	LogMsgChallengeCompleted  = "Community challenge completed"
	LogMsgChallengesExpired   = "Expired community challenges swept"
	LogMsgChallengeClosedLate = "Community challenge window ended before contribution"
)

// Error messages
const (
	ErrMsgEnsureFailed     = "failed to ensure active challenge"
	ErrMsgContributeFailed = "failed to apply challenge contribution"
	ErrMsgCompleteFailed   = "failed to complete challenge"
	ErrMsgSweepFailed      = "failed to sweep expired challenges"
	ErrMsgGetFailed        = "failed to load challenge"
)
