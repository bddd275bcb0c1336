// Package milestone manages weekly and monthly personal goals:
// creation per period, contribution, completion and expiry.
package milestone

import (
	"context"
	"fmt"
	"sort"

	"github.com/google/uuid"

	"github.com/osse101/EcoRewards_Go/internal/clock"
	"github.com/osse101/EcoRewards_Go/internal/domain"
	"github.com/osse101/EcoRewards_Go/internal/logger"
	"github.com/osse101/EcoRewards_Go/internal/repository"
)

// Service is the milestone lifecycle manager
type Service interface {
	// EnsureCurrentPeriod creates the current period's milestone of every kind if absent
	EnsureCurrentPeriod(ctx context.Context, userID string) ([]domain.RecurringMilestone, error)

	// ApplyContribution credits one action to every matching active milestone and
	// returns the milestones this call completed.
	ApplyContribution(ctx context.Context, userID string, c Contribution) ([]domain.RecurringMilestone, error)

	// SweepExpired fails active milestones whose period has ended
	SweepExpired(ctx context.Context) (int, error)

	GetActive(ctx context.Context, userID string) ([]domain.MilestoneView, error)
}

type service struct {
	repo  repository.MilestoneRepository
	clock clock.Clock
	kinds map[domain.MilestoneType]Kind
	order []domain.MilestoneType
}

// NewService creates a milestone service; nil kinds uses DefaultKinds
func NewService(repo repository.MilestoneRepository, clk clock.Clock, kinds []Kind) Service {
	if kinds == nil {
		kinds = DefaultKinds
	}
	s := &service{
		repo:  repo,
		clock: clk,
		kinds: make(map[domain.MilestoneType]Kind, len(kinds)),
	}
	for _, k := range kinds {
		s.kinds[k.Type] = k
		s.order = append(s.order, k.Type)
	}
	return s
}

func (s *service) EnsureCurrentPeriod(ctx context.Context, userID string) ([]domain.RecurringMilestone, error) {
	log := logger.FromContext(ctx)
	now := s.clock.Now()

	completed, err := s.repo.CountCompleted(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrMsgCountCompletedFailed, err)
	}
	tier := TierIndex(completed)

	out := make([]domain.RecurringMilestone, 0, len(s.order))
	for _, t := range s.order {
		kind := s.kinds[t]
		key, start, end := PeriodBounds(kind.Period, now)

		initial := domain.RecurringMilestone{
			ID:        uuid.NewString(),
			UserID:    userID,
			Type:      kind.Type,
			PeriodKey: key,
			Period:    kind.Period,
			Goal: domain.MilestoneGoal{
				TargetValue: kind.Tiers[tier].Target,
				Unit:        kind.Unit,
				Label:       kind.Label,
			},
			Reward: domain.MilestoneReward{
				BonusPoints: kind.Tiers[tier].BonusPoints,
				BadgeID:     kind.BadgeID,
			},
			Status:      domain.StatusActive,
			PeriodStart: start,
			PeriodEnd:   end,
			CreatedAt:   now,
		}

		stored, err := s.repo.UpsertIfAbsent(ctx, initial)
		if err != nil {
			return nil, fmt.Errorf("%s %s/%s: %w", ErrMsgUpsertFailed, kind.Type, key, err)
		}
		if stored.ID == initial.ID {
			log.Debug(LogMsgMilestoneCreated, "user_id", userID, "type", kind.Type, "period_key", key, "target", initial.Goal.TargetValue)
		}
		out = append(out, *stored)
	}
	return out, nil
}

func (s *service) ApplyContribution(ctx context.Context, userID string, c Contribution) ([]domain.RecurringMilestone, error) {
	log := logger.FromContext(ctx)
	now := s.clock.Now()

	active, err := s.repo.FindActive(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrMsgFindActiveFailed, err)
	}

	var completed []domain.RecurringMilestone
	for _, m := range active {
		kind, ok := s.kinds[m.Type]
		if !ok {
			log.Warn(LogMsgUnknownMilestoneType, "milestone_id", m.ID, "type", m.Type)
			continue
		}
		// a stale record from an ended period is left for the sweep
		if !now.Before(m.PeriodEnd) || now.Before(m.PeriodStart) {
			continue
		}
		amount, ok := kind.Extract(c)
		if !ok {
			continue
		}

		res, err := s.repo.ApplyProgress(ctx, domain.MilestoneUpdate{
			MilestoneID: m.ID,
			Amount:      amount,
			Gauge:       kind.Gauge,
			ActionRef:   c.ActionRef,
			Now:         now,
		})
		if err != nil {
			return completed, fmt.Errorf("%s %s: %w", ErrMsgApplyFailed, m.ID, err)
		}

		// checked even when the ref was already counted, so a retry after a
		// failed completion still converges
		cur := res.Milestone
		if cur.Status != domain.StatusActive || cur.Progress.CurrentValue < cur.Goal.TargetValue {
			continue
		}

		won, err := s.repo.CasComplete(ctx, cur.ID, domain.StatusActive, now)
		if err != nil {
			return completed, fmt.Errorf("%s %s: %w", ErrMsgCompleteFailed, cur.ID, err)
		}
		if !won {
			log.Debug(LogMsgMilestoneCasLost, "milestone_id", cur.ID)
			continue
		}

		cur.Status = domain.StatusCompleted
		cur.CompletedAt = &now
		cur.Progress.PercentComplete = 100
		log.Info(LogMsgMilestoneCompleted,
			"user_id", userID,
			"type", cur.Type,
			"period_key", cur.PeriodKey,
			"bonus_points", cur.Reward.BonusPoints)
		completed = append(completed, cur)
	}
	return completed, nil
}

func (s *service) SweepExpired(ctx context.Context) (int, error) {
	n, err := s.repo.ExpireBefore(ctx, s.clock.Now())
	if err != nil {
		return 0, fmt.Errorf("%s: %w", ErrMsgSweepFailed, err)
	}
	if n > 0 {
		logger.FromContext(ctx).Info(LogMsgMilestonesExpired, "count", n)
	}
	return n, nil
}

func (s *service) GetActive(ctx context.Context, userID string) ([]domain.MilestoneView, error) {
	now := s.clock.Now()

	active, err := s.repo.FindActive(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrMsgFindActiveFailed, err)
	}

	views := make([]domain.MilestoneView, 0, len(active))
	for _, m := range active {
		if !now.Before(m.PeriodEnd) {
			continue
		}
		views = append(views, domain.MilestoneView{
			Type:            m.Type,
			PeriodKey:       m.PeriodKey,
			Label:           m.Goal.Label,
			Unit:            m.Goal.Unit,
			TargetValue:     m.Goal.TargetValue,
			CurrentValue:    m.Progress.CurrentValue,
			PercentComplete: m.Progress.PercentComplete,
			BonusPoints:     m.Reward.BonusPoints,
			BadgeID:         m.Reward.BadgeID,
			Status:          m.Status,
			PeriodEnd:       m.PeriodEnd,
			DaysRemaining:   DaysRemaining(now, m.PeriodEnd),
		})
	}
	sort.SliceStable(views, func(i, j int) bool {
		return views[i].PeriodEnd.Before(views[j].PeriodEnd)
	})
	return views, nil
}
