package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/osse101/EcoRewards_Go/internal/domain"
	"github.com/osse101/EcoRewards_Go/internal/logger"
)

// Generic HTTP error messages for client responses.
// These messages intentionally do not expose internal error details.
// Both handlers and tests should reference these constants to maintain consistency.
const (
	ErrMsgInvalidRequest        = "Invalid request body"
	ErrMsgInvalidRequestSummary = "Invalid request"
	ErrMsgMissingUserID         = "Missing X-User-ID header"
	ErrMsgMissingCommunityID    = "Missing community ID"
)

// User-facing messages for service errors
const (
	ErrMsgGenericServerError   = "Something went wrong"
	ErrMsgAlreadyCompletedErr  = "You have already completed this action"
	ErrMsgNotEligibleErr       = "This action is not eligible for rewards"
	ErrMsgRateLimitedErr       = "Daily limit reached. Try again later"
	ErrMsgUserNotFoundErr      = "User not found"
	ErrMsgMissionNotFoundErr   = "Mission not found"
	ErrMsgNoActiveChallengeErr = "No active challenge for this community"
	ErrMsgInvalidInputErr      = "Invalid request. Please check your inputs."
	ErrMsgNoMissionsErr        = "No missions available today"
)

// HeaderRetryAfter is set on 429 responses
const HeaderRetryAfter = "Retry-After"

// mapServiceErrorToUserMessage maps domain errors to an HTTP status and a user-facing message
func mapServiceErrorToUserMessage(err error) (int, string) {
	switch {
	case err == nil:
		return http.StatusInternalServerError, ErrMsgGenericServerError
	case errors.Is(err, domain.ErrAlreadyCompleted):
		return http.StatusConflict, ErrMsgAlreadyCompletedErr
	case errors.Is(err, domain.ErrNotEligible):
		return http.StatusForbidden, ErrMsgNotEligibleErr
	case errors.Is(err, domain.ErrRateLimited):
		return http.StatusTooManyRequests, ErrMsgRateLimitedErr
	case errors.Is(err, domain.ErrUserNotFound):
		return http.StatusNotFound, ErrMsgUserNotFoundErr
	case errors.Is(err, domain.ErrMissionNotFound):
		return http.StatusNotFound, ErrMsgMissionNotFoundErr
	case errors.Is(err, domain.ErrNoActiveChallenge):
		return http.StatusNotFound, ErrMsgNoActiveChallengeErr
	case errors.Is(err, domain.ErrEmptyDifficultyTier):
		return http.StatusServiceUnavailable, ErrMsgNoMissionsErr
	case errors.Is(err, domain.ErrInvalidInput):
		return http.StatusBadRequest, ErrMsgInvalidInputErr
	}
	return http.StatusInternalServerError, ErrMsgGenericServerError
}

// retryAfterSeconds returns the Retry-After value for a rate limited error, rounded up
func retryAfterSeconds(err error, now time.Time) (string, bool) {
	var rle *domain.RateLimitedError
	if !errors.As(err, &rle) {
		return "", false
	}
	wait := rle.RetryAfter.Sub(now)
	if wait < 0 {
		wait = 0
	}
	secs := int64(wait / time.Second)
	if wait%time.Second != 0 {
		secs++
	}
	return strconv.FormatInt(secs, 10), true
}

// respondServiceError logs a failed service call and writes the mapped response
func respondServiceError(w http.ResponseWriter, r *http.Request, opName string, err error) {
	log := logger.FromContext(r.Context())
	status, msg := mapServiceErrorToUserMessage(err)
	if status >= http.StatusInternalServerError {
		log.Error(opName+" failed", "error", err)
	} else {
		log.Warn(opName+" rejected", "error", err, "status", status)
	}

	if value, ok := retryAfterSeconds(err, time.Now()); ok {
		w.Header().Set(HeaderRetryAfter, value)
	}
	respondError(w, status, msg)
}
