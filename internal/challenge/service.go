// Package challenge aggregates member contributions into community-wide goals.
package challenge

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/osse101/EcoRewards_Go/internal/clock"
	"github.com/osse101/EcoRewards_Go/internal/domain"
	"github.com/osse101/EcoRewards_Go/internal/logger"
	"github.com/osse101/EcoRewards_Go/internal/repository"
)

// Service is the challenge contribution aggregator
type Service interface {
	// EnsureActive starts a challenge for the community unless one is already active
	EnsureActive(ctx context.Context, communityID string) (*domain.CommunityChallenge, error)

	// ApplyContribution adds co2 to the active challenge. completed is true only for
	// the call that moved the challenge to completed. A challenge past its end is
	// closed instead and domain.ErrNoActiveChallenge returned.
	ApplyContribution(ctx context.Context, communityID, userID string, co2Kg float64, actionRef string) (ch *domain.CommunityChallenge, completed bool, err error)

	SweepExpired(ctx context.Context) (int, error)

	// Get returns the active challenge view or domain.ErrNoActiveChallenge
	Get(ctx context.Context, communityID string) (*domain.ChallengeView, error)
}

// Config holds goal and window for new challenges
type Config struct {
	GoalCo2Kg float64
	Window    time.Duration
}

type service struct {
	repo  repository.ChallengeRepository
	clock clock.Clock
	cfg   Config
}

// NewService creates a challenge service; zero config values fall back to defaults
func NewService(repo repository.ChallengeRepository, clk clock.Clock, cfg Config) Service {
	if cfg.GoalCo2Kg <= 0 {
		cfg.GoalCo2Kg = DefaultGoalCo2Kg
	}
	if cfg.Window <= 0 {
		cfg.Window = DefaultWindow
	}
	return &service{repo: repo, clock: clk, cfg: cfg}
}

func (s *service) EnsureActive(ctx context.Context, communityID string) (*domain.CommunityChallenge, error) {
	now := s.clock.Now()
	initial := domain.CommunityChallenge{
		ID:          uuid.NewString(),
		CommunityID: communityID,
		GoalCo2Kg:   s.cfg.GoalCo2Kg,
		Status:      domain.StatusActive,
		StartAt:     now,
		EndAt:       now.Add(s.cfg.Window),
	}

	stored, err := s.repo.UpsertActiveIfAbsent(ctx, initial)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrMsgEnsureFailed, err)
	}
	if stored.ID == initial.ID {
		logger.FromContext(ctx).Info(LogMsgChallengeCreated,
			"community_id", communityID,
			"goal_co2_kg", stored.GoalCo2Kg,
			"end_at", stored.EndAt)
	}
	return stored, nil
}

func (s *service) ApplyContribution(ctx context.Context, communityID, userID string, co2Kg float64, actionRef string) (*domain.CommunityChallenge, bool, error) {
	now := s.clock.Now()

	active, err := s.repo.FindActive(ctx, communityID)
	if err != nil {
		return nil, false, fmt.Errorf("%s: %w", ErrMsgContributeFailed, err)
	}

	res, err := s.repo.ApplyContribution(ctx, domain.ChallengeContribution{
		ChallengeID: active.ID,
		UserID:      userID,
		Co2Kg:       co2Kg,
		ActionRef:   actionRef,
		Now:         now,
	})
	if err != nil {
		if errors.Is(err, domain.ErrNoActiveChallenge) {
			logger.FromContext(ctx).Info(LogMsgChallengeClosedLate,
				"community_id", communityID,
				"challenge_id", active.ID,
				"end_at", active.EndAt)
		}
		return nil, false, fmt.Errorf("%s: %w", ErrMsgContributeFailed, err)
	}

	ch := res.Challenge
	if ch.Status != domain.StatusActive || ch.CurrentCo2Kg < ch.GoalCo2Kg {
		return &ch, false, nil
	}

	won, err := s.repo.CasComplete(ctx, ch.ID, domain.StatusActive, now)
	if err != nil {
		return &ch, false, fmt.Errorf("%s: %w", ErrMsgCompleteFailed, err)
	}
	if !won {
		return &ch, false, nil
	}

	ch.Status = domain.StatusCompleted
	ch.CompletedAt = &now
	logger.FromContext(ctx).Info(LogMsgChallengeCompleted,
		"community_id", communityID,
		"challenge_id", ch.ID,
		"current_co2_kg", ch.CurrentCo2Kg)
	return &ch, true, nil
}

func (s *service) SweepExpired(ctx context.Context) (int, error) {
	n, err := s.repo.ExpireBefore(ctx, s.clock.Now())
	if err != nil {
		return 0, fmt.Errorf("%s: %w", ErrMsgSweepFailed, err)
	}
	if n > 0 {
		logger.FromContext(ctx).Info(LogMsgChallengesExpired, "count", n)
	}
	return n, nil
}

func (s *service) Get(ctx context.Context, communityID string) (*domain.ChallengeView, error) {
	ch, err := s.repo.FindActive(ctx, communityID)
	if err != nil {
		if errors.Is(err, domain.ErrNoActiveChallenge) {
			return nil, err
		}
		return nil, fmt.Errorf("%s: %w", ErrMsgGetFailed, err)
	}
	return NewView(*ch, s.clock.Now()), nil
}

// NewView derives the display fields of a challenge at now
func NewView(ch domain.CommunityChallenge, now time.Time) *domain.ChallengeView {
	days, hours := ch.Remaining(now)
	return &domain.ChallengeView{
		CommunityChallenge: ch,
		ProgressPercent:    ch.ProgressPercent(),
		DaysRemaining:      days,
		HoursRemaining:     hours,
	}
}
