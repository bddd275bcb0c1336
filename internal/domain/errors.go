package domain

import (
	"errors"
	"fmt"
	"time"
)

// Error message string constants - single source of truth for error messages
// Use these in assert.Contains() checks when testing error messages
const (
	ErrMsgUserNotFound        = "user not found"
	ErrMsgMissionNotFound     = "mission not found"
	ErrMsgAlreadyCompleted    = "action already completed"
	ErrMsgNotEligible         = "not eligible for this action"
	ErrMsgRateLimited         = "daily action limit reached"
	ErrMsgInvalidInput        = "invalid input"
	ErrMsgNoActiveChallenge   = "no active challenge"
	ErrMsgEmptyDifficultyTier = "no missions available for difficulty tier"
	ErrMsgUnknownMilestone    = "unknown milestone type"

	// Database/System errors
	ErrMsgDatabaseError = "database error"
)

// Common domain errors
// Wrap these errors with fmt.Errorf("%w: %s", domain.ErrXxx, details) for additional context.
var (
	ErrUserNotFound        = errors.New(ErrMsgUserNotFound)
	ErrMissionNotFound     = errors.New(ErrMsgMissionNotFound)
	ErrAlreadyCompleted    = errors.New(ErrMsgAlreadyCompleted)
	ErrNotEligible         = errors.New(ErrMsgNotEligible)
	ErrRateLimited         = errors.New(ErrMsgRateLimited)
	ErrInvalidInput        = errors.New(ErrMsgInvalidInput)
	ErrNoActiveChallenge   = errors.New(ErrMsgNoActiveChallenge)
	ErrEmptyDifficultyTier = errors.New(ErrMsgEmptyDifficultyTier)
	ErrUnknownMilestone    = errors.New(ErrMsgUnknownMilestone)
)

// RateLimitedError carries the time at which the limited action becomes available again.
type RateLimitedError struct {
	Action     string
	RetryAfter time.Time
}

func (e *RateLimitedError) Error() string {
	return fmt.Sprintf("%s: %s, retry after %s", ErrMsgRateLimited, e.Action, e.RetryAfter.Format(time.RFC3339))
}

// Is lets errors.Is(err, ErrRateLimited) match
func (e *RateLimitedError) Is(target error) bool {
	return target == ErrRateLimited
}
