package worker

import "time"

// ============================================================================
// Log Messages - Worker Pool
// ============================================================================

const (
	LogMsgWorkerJobFailed = "Worker job failed"
	LogMsgWorkerQueueFull = "Worker queue full, job skipped"
)

// ============================================================================
// Log Messages - Sweep Worker
// ============================================================================

const (
	LogMsgSweepScheduled = "Expiration sweep scheduled"
	LogMsgSweepStarting  = "Expiration sweep starting"
	LogMsgSweepFailed    = "Expiration sweep failed"
	LogMsgSweepCompleted = "Expiration sweep completed"
)

// ============================================================================
// Log Messages - Pool Pre-warm
// ============================================================================

const (
	LogMsgPrewarmCompleted = "Daily mission pools pre-warmed"
	LogMsgPrewarmUserFail  = "Failed to pre-warm daily pool"
)

// ============================================================================
// Defaults
// ============================================================================

const (
	// sweepTimeout bounds a single sweep run
	sweepTimeout = 2 * time.Minute

	// DefaultPrewarmLookback is how far back a user must have acted to get a pre-warmed pool
	DefaultPrewarmLookback = 7 * 24 * time.Hour
)
