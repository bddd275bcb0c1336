package progress

import (
	"context"
	"fmt"

	"github.com/osse101/EcoRewards_Go/internal/config"
	"github.com/osse101/EcoRewards_Go/internal/domain"
	"github.com/osse101/EcoRewards_Go/internal/event"
	"github.com/osse101/EcoRewards_Go/internal/logger"
	"github.com/osse101/EcoRewards_Go/internal/points"
	"github.com/osse101/EcoRewards_Go/internal/streak"
)

func (e *engine) CompleteMission(ctx context.Context, userID, missionID string) (*MissionResult, error) {
	if userID == "" || missionID == "" {
		return nil, fmt.Errorf("%w: user id and mission id are required", domain.ErrInvalidInput)
	}
	mission, err := e.deps.Catalog.Get(missionID)
	if err != nil {
		return nil, err
	}

	now := e.deps.Clock.Now()
	today := streak.DateKey(now)

	rec := domain.ActionRecord{
		UserID:      userID,
		Kind:        domain.ActionKindMission,
		ActionRef:   e.missionRef(missionID, today),
		Subject:     missionID,
		DateKey:     today,
		CompletedAt: now,
	}
	reward := func(in domain.ApplyInput) (domain.ProgressDelta, error) {
		next := nextStreak(in, today)
		return domain.ProgressDelta{
			Points:  points.Points(mission.BasePoints, mission.Co2SavedKg, mission.Difficulty, next),
			Co2Kg:   mission.Co2SavedKg,
			Streak:  next,
			Counter: domain.CounterMissions,
		}, nil
	}

	out, err := e.record(ctx, rec, reward)
	if err != nil {
		return nil, err
	}
	s, err := e.settle(ctx, out, 1)
	if err != nil {
		return nil, err
	}

	final, err := e.deps.Progress.GetProgress(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrMsgLoadFailed, err)
	}

	rec = out.Record
	if out.Created {
		e.publish(ctx, event.NewMissionCompletedEvent(domain.MissionCompletedPayload{
			UserID:        userID,
			MissionID:     missionID,
			PointsAwarded: rec.PointsAwarded,
			Co2SavedKg:    rec.Co2SavedAwarded,
			Streak:        rec.StreakAfter,
		}, now))
	}
	e.announce(ctx, userID, s, &domain.FeedEvent{
		Type:    FeedTypeMissionCompleted,
		UserID:  userID,
		Message: fmt.Sprintf("completed %q and saved %.1f kg of CO2", mission.Title, rec.Co2SavedAwarded),
		Data:    map[string]any{"mission_id": missionID, "co2_saved_kg": rec.Co2SavedAwarded},
	}, now)

	logger.FromContext(ctx).Info(LogMsgMissionCompleted,
		"user_id", userID,
		"mission_id", missionID,
		"points", rec.PointsAwarded,
		"bonus_points", s.bonusPoints,
		"streak", rec.StreakAfter)

	result := &MissionResult{
		MissionID:         missionID,
		PointsAwarded:     rec.PointsAwarded,
		Co2SavedAwarded:   rec.Co2SavedAwarded,
		StreakMultiplier:  points.StreakMultiplier(rec.StreakAfter),
		NewTotalPoints:    final.TotalPoints,
		NewTotalCo2Saved:  final.TotalCo2SavedKg,
		CurrentStreak:     final.CurrentStreak,
		NewlyEarnedBadges: s.badges,
		BonusPoints:       s.bonusPoints,
	}
	if result.NewlyEarnedBadges == nil {
		result.NewlyEarnedBadges = []string{}
	}
	for _, m := range s.milestones {
		result.CompletedMilestones = append(result.CompletedMilestones, m.Type)
	}
	return result, nil
}

// missionRef is the uniqueness key of a mission completion under the repeat policy
func (e *engine) missionRef(missionID, today string) string {
	if e.cfg.RepeatPolicy == config.RepeatPolicyDaily {
		return fmt.Sprintf(dailyRefFormat, missionID, today)
	}
	return missionID
}
