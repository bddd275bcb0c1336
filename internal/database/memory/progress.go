package memory

import (
	"context"
	"time"

	"github.com/osse101/EcoRewards_Go/internal/domain"
)

// ProgressRepository implements repository.ProgressRepository
type ProgressRepository struct {
	s *Store
}

func (r *ProgressRepository) GetProgress(ctx context.Context, userID string) (*domain.UserProgress, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	p, ok := r.s.progress[userID]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	out := copyProgress(p)
	return &out, nil
}

func (r *ProgressRepository) RecordAction(ctx context.Context, rec domain.ActionRecord, reward domain.RewardFunc) (*domain.RecordOutcome, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	key := actionKey{userID: rec.UserID, kind: rec.Kind, ref: rec.ActionRef}
	if existing, ok := r.s.actions[key]; ok {
		var current domain.UserProgress
		if p, ok := r.s.progress[rec.UserID]; ok {
			current = copyProgress(p)
		}
		return &domain.RecordOutcome{Record: *existing, Progress: current, Created: false}, nil
	}

	in := domain.ApplyInput{}
	if p, ok := r.s.progress[rec.UserID]; ok {
		in.Progress = copyProgress(p)
	} else {
		in.Progress = domain.UserProgress{UserID: rec.UserID}
	}
	for _, k := range r.s.actionOrder {
		if k.userID == rec.UserID && k.kind == rec.Kind && r.s.actions[k].DateKey == rec.DateKey {
			in.KindCountToday++
		}
	}

	delta, err := reward(in)
	if err != nil {
		return nil, err
	}

	p := r.s.progressLocked(rec.UserID, rec.CompletedAt)
	previous := p.CurrentStreak

	p.TotalPoints += delta.Points
	p.TotalCo2SavedKg += delta.Co2Kg
	if delta.Streak > 0 {
		p.CurrentStreak = delta.Streak
		if delta.Streak > p.LongestStreak {
			p.LongestStreak = delta.Streak
		}
		p.LastActiveDateKey = rec.DateKey
	}
	switch delta.Counter {
	case domain.CounterMissions:
		p.MissionsCompleted++
	case domain.CounterComplianceOnTime:
		p.ComplianceOnTime++
	case domain.CounterPollutionReports:
		p.PollutionReports++
	}
	p.UpdatedAt = rec.CompletedAt

	rec.PointsAwarded = delta.Points
	rec.Co2SavedAwarded = delta.Co2Kg
	rec.StreakAfter = p.CurrentStreak
	rec.Settled = false
	stored := rec
	r.s.actions[key] = &stored
	r.s.actionOrder = append(r.s.actionOrder, key)

	return &domain.RecordOutcome{
		Record:         stored,
		Progress:       copyProgress(p),
		PreviousStreak: previous,
		Created:        true,
	}, nil
}

func (r *ProgressRepository) MarkSettled(ctx context.Context, userID string, kind domain.ActionKind, actionRef string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if rec, ok := r.s.actions[actionKey{userID: userID, kind: kind, ref: actionRef}]; ok {
		rec.Settled = true
	}
	return nil
}

func (r *ProgressRepository) AwardBadges(ctx context.Context, userID string, badgeIDs []string, at time.Time) ([]string, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	return r.s.addBadgesLocked(r.s.progressLocked(userID, at), badgeIDs, at), nil
}

func (r *ProgressRepository) ClaimBonus(ctx context.Context, userID, claimKey string, points int, at time.Time) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	k := refKey{ownerID: userID, ref: claimKey}
	if r.s.bonusClaims[k] {
		return false, nil
	}
	r.s.bonusClaims[k] = true
	p := r.s.progressLocked(userID, at)
	p.TotalPoints += points
	p.UpdatedAt = at
	return true, nil
}

func (r *ProgressRepository) MissionRefsOnDay(ctx context.Context, userID, dateKey string) ([]string, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var out []string
	for _, k := range r.s.actionOrder {
		rec := r.s.actions[k]
		if k.userID == userID && k.kind == domain.ActionKindMission && rec.DateKey == dateKey {
			out = append(out, rec.Subject)
		}
	}
	return out, nil
}

func (r *ProgressRepository) RecentMissionIDs(ctx context.Context, userID, beforeDateKey string, limit int) ([]string, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var out []string
	for i := len(r.s.actionOrder) - 1; i >= 0 && len(out) < limit; i-- {
		k := r.s.actionOrder[i]
		if k.userID == userID && k.kind == domain.ActionKindMission && r.s.actions[k].DateKey < beforeDateKey {
			out = append(out, r.s.actions[k].Subject)
		}
	}
	return out, nil
}

func (r *ProgressRepository) ActiveUsersSince(ctx context.Context, since time.Time) ([]string, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	seen := make(map[string]bool)
	var out []string
	for _, k := range r.s.actionOrder {
		if seen[k.userID] || r.s.actions[k].CompletedAt.Before(since) {
			continue
		}
		seen[k.userID] = true
		out = append(out, k.userID)
	}
	return out, nil
}
