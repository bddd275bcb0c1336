package repository

import (
	"context"
	"time"

	"github.com/osse101/EcoRewards_Go/internal/domain"
)

// ProgressRepository owns user aggregates and the action log
type ProgressRepository interface {
	// GetProgress returns domain.ErrUserNotFound when the user never acted.
	GetProgress(ctx context.Context, userID string) (*domain.UserProgress, error)

	// RecordAction inserts rec if no record with the same (user, kind, ref) exists and,
	// in the same transaction, applies the delta returned by reward. The user's
	// aggregate is locked while reward runs. An existing record is returned with
	// Created=false and nothing is mutated.
	RecordAction(ctx context.Context, rec domain.ActionRecord, reward domain.RewardFunc) (*domain.RecordOutcome, error)

	// MarkSettled flags a record whose follow-up steps all succeeded
	MarkSettled(ctx context.Context, userID string, kind domain.ActionKind, actionRef string) error

	// AwardBadges set-adds badges and returns the ids that were not held before
	AwardBadges(ctx context.Context, userID string, badgeIDs []string, at time.Time) ([]string, error)

	// ClaimBonus credits points once per (user, claimKey); false means already claimed
	ClaimBonus(ctx context.Context, userID, claimKey string, points int, at time.Time) (bool, error)

	// MissionRefsOnDay lists mission ids completed by the user on dateKey
	MissionRefsOnDay(ctx context.Context, userID, dateKey string) ([]string, error)

	// RecentMissionIDs lists the most recent mission ids completed before beforeDateKey, newest first
	RecentMissionIDs(ctx context.Context, userID, beforeDateKey string, limit int) ([]string, error)

	// ActiveUsersSince lists users with a recorded action at or after since
	ActiveUsersSince(ctx context.Context, since time.Time) ([]string, error)
}

// MilestoneRepository owns period-scoped personal goals
type MilestoneRepository interface {
	FindActive(ctx context.Context, userID string) ([]domain.RecurringMilestone, error)

	// UpsertIfAbsent inserts initial unless a record with the same key exists, and
	// returns whichever record is stored.
	UpsertIfAbsent(ctx context.Context, initial domain.RecurringMilestone) (*domain.RecurringMilestone, error)

	// ApplyProgress writes one contribution keyed by (milestone, action ref).
	// Applied is false when the milestone is not active or the ref was already counted.
	ApplyProgress(ctx context.Context, update domain.MilestoneUpdate) (*domain.MilestoneUpdateResult, error)

	// CasComplete moves the milestone from expected to completed and grants its
	// reward in the same transaction. False means another writer won.
	CasComplete(ctx context.Context, milestoneID string, expected domain.Status, at time.Time) (bool, error)

	CountCompleted(ctx context.Context, userID string) (int, error)

	// ExpireBefore fails active milestones whose period ended at or before now
	ExpireBefore(ctx context.Context, now time.Time) (int, error)
}

// ChallengeRepository owns community challenges
type ChallengeRepository interface {
	// FindActive returns domain.ErrNoActiveChallenge when none is active
	FindActive(ctx context.Context, communityID string) (*domain.CommunityChallenge, error)

	// UpsertActiveIfAbsent inserts initial unless the community already has an
	// active challenge, and returns the active one.
	UpsertActiveIfAbsent(ctx context.Context, initial domain.CommunityChallenge) (*domain.CommunityChallenge, error)

	ApplyContribution(ctx context.Context, c domain.ChallengeContribution) (*domain.ChallengeUpdateResult, error)
	CasComplete(ctx context.Context, challengeID string, expected domain.Status, at time.Time) (bool, error)

	// ExpireBefore closes active challenges whose window ended at or before now
	// and returns how many were failed.
	ExpireBefore(ctx context.Context, now time.Time) (int, error)
}
