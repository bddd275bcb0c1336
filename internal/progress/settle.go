package progress

import (
	"context"
	"errors"
	"fmt"

	"github.com/osse101/EcoRewards_Go/internal/domain"
	"github.com/osse101/EcoRewards_Go/internal/logger"
	"github.com/osse101/EcoRewards_Go/internal/metrics"
	"github.com/osse101/EcoRewards_Go/internal/milestone"
	"github.com/osse101/EcoRewards_Go/internal/points"
	"github.com/osse101/EcoRewards_Go/internal/streak"
)

// settlement is what the follow-up steps of one action changed during this call
type settlement struct {
	communityID string
	badges      []string
	milestones  []domain.RecurringMilestone
	challenge   *domain.CommunityChallenge
	bonusPoints int
}

// record inserts the action with its delta, or loads the existing record.
// A settled duplicate is rejected; an unsettled one is resumed.
func (e *engine) record(ctx context.Context, rec domain.ActionRecord, reward domain.RewardFunc) (*domain.RecordOutcome, error) {
	out, err := e.deps.Progress.RecordAction(ctx, rec, reward)
	if err != nil {
		var limited *domain.RateLimitedError
		if errors.As(err, &limited) {
			metrics.ActionsRejected.WithLabelValues(string(rec.Kind), reasonRateLimited).Inc()
			return nil, err
		}
		return nil, fmt.Errorf("%s: %w", ErrMsgRecordFailed, err)
	}
	if !out.Created {
		if out.Record.Settled {
			metrics.ActionsRejected.WithLabelValues(string(rec.Kind), reasonAlreadyCompleted).Inc()
			return nil, fmt.Errorf("%w: %s %s", domain.ErrAlreadyCompleted, rec.Kind, rec.ActionRef)
		}
		logger.FromContext(ctx).Info(LogMsgResumingUnsettled, "user_id", rec.UserID, "kind", rec.Kind, "action_ref", rec.ActionRef)
	}
	return out, nil
}

// settle runs the idempotent steps that follow a recorded action and marks the
// record settled once all of them succeeded. Every step is keyed by the action,
// so a retry after a partial failure converges.
func (e *engine) settle(ctx context.Context, out *domain.RecordOutcome, missions int) (*settlement, error) {
	log := logger.FromContext(ctx)
	rec := out.Record
	s := &settlement{}

	if reachedStreak7(out) {
		claimed, err := e.deps.Progress.ClaimBonus(ctx, rec.UserID, ClaimKeyStreak7+rec.DateKey, points.Streak7Bonus, rec.CompletedAt)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", ErrMsgBonusFailed, err)
		}
		if claimed {
			s.bonusPoints += points.Streak7Bonus
			metrics.PointsAwarded.WithLabelValues(metrics.SourceBonus).Add(points.Streak7Bonus)
			log.Info(LogMsgBonusClaimed, "user_id", rec.UserID, "bonus", ClaimKeyStreak7+rec.DateKey)
		}
	}

	if rec.Kind == domain.ActionKindMission && e.deps.Pool != nil {
		bonus, err := e.claimDailyTiers(ctx, rec)
		if err != nil {
			return nil, err
		}
		s.bonusPoints += bonus
	}

	community, err := e.deps.Communities.CommunityOf(ctx, rec.UserID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrMsgCommunityFailed, err)
	}
	s.communityID = community

	owned := out.Progress.OwnedBadges()
	earned := e.deps.Badges.NewlyEarned(out.Progress.Snapshot(community != ""), owned)
	if len(earned) > 0 {
		added, err := e.deps.Progress.AwardBadges(ctx, rec.UserID, earned, rec.CompletedAt)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", ErrMsgBadgesFailed, err)
		}
		s.badges = append(s.badges, added...)
		if len(added) > 0 {
			log.Info(LogMsgBadgesAwarded, "user_id", rec.UserID, "badges", added)
		}
	}

	if _, err := e.deps.Milestones.EnsureCurrentPeriod(ctx, rec.UserID); err != nil {
		return nil, fmt.Errorf("%s: %w", ErrMsgMilestonesFailed, err)
	}
	completed, err := e.deps.Milestones.ApplyContribution(ctx, rec.UserID, milestone.Contribution{
		Co2Kg:     rec.Co2SavedAwarded,
		Missions:  missions,
		Streak:    rec.StreakAfter,
		ActionRef: contributionRef(rec),
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrMsgMilestonesFailed, err)
	}
	s.milestones = completed
	for _, m := range completed {
		s.bonusPoints += m.Reward.BonusPoints
		if m.Reward.BadgeID != "" && !owned[m.Reward.BadgeID] {
			owned[m.Reward.BadgeID] = true
			s.badges = append(s.badges, m.Reward.BadgeID)
		}
	}

	if community != "" && rec.Co2SavedAwarded > 0 {
		ch, err := e.contribute(ctx, community, rec)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", ErrMsgChallengeFailed, err)
		}
		s.challenge = ch
	}

	if err := e.deps.Progress.MarkSettled(ctx, rec.UserID, rec.Kind, rec.ActionRef); err != nil {
		return nil, fmt.Errorf("%s: %w", ErrMsgSettleFailed, err)
	}
	return s, nil
}

// claimDailyTiers pays DailyTiersBonus once all three missions of today's pool are done.
// Without a pool there is no bonus to pay.
func (e *engine) claimDailyTiers(ctx context.Context, rec domain.ActionRecord) (int, error) {
	pool, err := e.deps.Pool.DailyPool(ctx, rec.UserID)
	if err != nil {
		logger.FromContext(ctx).Warn(LogMsgPoolUnavailable, "user_id", rec.UserID, "error", err)
		return 0, nil
	}
	done, err := e.deps.Progress.MissionRefsOnDay(ctx, rec.UserID, rec.DateKey)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", ErrMsgBonusFailed, err)
	}
	completed := make(map[string]bool, len(done))
	for _, id := range done {
		completed[id] = true
	}
	for _, m := range pool {
		if !completed[m.ID] {
			return 0, nil
		}
	}

	claimed, err := e.deps.Progress.ClaimBonus(ctx, rec.UserID, ClaimKeyDailyTiers+rec.DateKey, points.DailyTiersBonus, rec.CompletedAt)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", ErrMsgBonusFailed, err)
	}
	if !claimed {
		return 0, nil
	}
	metrics.PointsAwarded.WithLabelValues(metrics.SourceBonus).Add(points.DailyTiersBonus)
	logger.FromContext(ctx).Info(LogMsgBonusClaimed, "user_id", rec.UserID, "bonus", ClaimKeyDailyTiers+rec.DateKey)
	return points.DailyTiersBonus, nil
}

// contribute adds the action to the community's active challenge, starting one
// when none is active. Returns the challenge only when this call completed it.
func (e *engine) contribute(ctx context.Context, communityID string, rec domain.ActionRecord) (*domain.CommunityChallenge, error) {
	ref := contributionRef(rec)
	for attempt := 0; ; attempt++ {
		if _, err := e.deps.Challenges.EnsureActive(ctx, communityID); err != nil {
			return nil, err
		}
		ch, completed, err := e.deps.Challenges.ApplyContribution(ctx, communityID, rec.UserID, rec.Co2SavedAwarded, ref)
		if err != nil {
			// the active challenge can close between EnsureActive and the write
			if errors.Is(err, domain.ErrNoActiveChallenge) && attempt == 0 {
				logger.FromContext(ctx).Debug(LogMsgChallengeRaceRetried, "community_id", communityID)
				continue
			}
			return nil, err
		}
		if !completed {
			return nil, nil
		}
		logger.FromContext(ctx).Info(LogMsgChallengeCompleted, "community_id", communityID, "user_id", rec.UserID)
		return ch, nil
	}
}

// reachedStreak7 reports whether the action moved the streak to 7. A resumed
// record has no previous streak; a streak of exactly 7 can only have been
// reached on the record's own day, and the claim key is per day.
func reachedStreak7(out *domain.RecordOutcome) bool {
	if out.Created {
		return points.CrossedStreak7(out.PreviousStreak, out.Record.StreakAfter)
	}
	return out.Record.StreakAfter == points.Streak7Threshold
}

// contributionRef keys milestone and challenge writes; refs are only unique per kind
func contributionRef(rec domain.ActionRecord) string {
	return string(rec.Kind) + ":" + rec.ActionRef
}

// nextStreak is the streak after an action on todayKey
func nextStreak(in domain.ApplyInput, todayKey string) int {
	return streak.NextStreak(in.Progress.CurrentStreak, in.Progress.LastActiveDateKey, todayKey)
}
