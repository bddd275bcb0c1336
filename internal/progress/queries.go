package progress

import (
	"context"
	"errors"
	"fmt"

	"github.com/osse101/EcoRewards_Go/internal/domain"
	"github.com/osse101/EcoRewards_Go/internal/event"
	"github.com/osse101/EcoRewards_Go/internal/logger"
	"github.com/osse101/EcoRewards_Go/internal/points"
	"github.com/osse101/EcoRewards_Go/internal/streak"
)

func (e *engine) GetProgress(ctx context.Context, userID string) (*ProgressView, error) {
	p, err := e.deps.Progress.GetProgress(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("%s: %w", ErrMsgLoadFailed, err)
	}

	displayed := streak.Displayed(p.CurrentStreak, p.LastActiveDateKey, streak.DateKey(e.deps.Clock.Now()))
	if p.Badges == nil {
		p.Badges = []domain.BadgeAward{}
	}
	return &ProgressView{
		UserProgress:     *p,
		DisplayedStreak:  displayed,
		StreakMultiplier: points.StreakMultiplier(displayed),
	}, nil
}

func (e *engine) GetActiveMilestones(ctx context.Context, userID string) ([]domain.MilestoneView, error) {
	if _, err := e.deps.Milestones.EnsureCurrentPeriod(ctx, userID); err != nil {
		return nil, fmt.Errorf("%s: %w", ErrMsgMilestonesFailed, err)
	}
	return e.deps.Milestones.GetActive(ctx, userID)
}

func (e *engine) DailyMissions(ctx context.Context, userID string) ([]domain.Mission, error) {
	if e.deps.Pool == nil {
		return nil, fmt.Errorf("%s: no generator configured", ErrMsgPoolFailed)
	}
	pool, err := e.deps.Pool.DailyPool(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrMsgPoolFailed, err)
	}
	return pool, nil
}

func (e *engine) GetCommunityChallenge(ctx context.Context, communityID string) (*domain.ChallengeView, error) {
	return e.deps.Challenges.Get(ctx, communityID)
}

func (e *engine) SweepExpirations(ctx context.Context) (*SweepResult, error) {
	milestones, err := e.deps.Milestones.SweepExpired(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrMsgSweepFailed, err)
	}
	challenges, err := e.deps.Challenges.SweepExpired(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrMsgSweepFailed, err)
	}

	res := &SweepResult{MilestonesExpired: milestones, ChallengesExpired: challenges}
	e.publish(ctx, event.NewSweepCompleteEvent(milestones, challenges, e.deps.Clock.Now()))
	logger.FromContext(ctx).Info(LogMsgSweepComplete, "milestones_expired", milestones, "challenges_expired", challenges)
	return res, nil
}
