package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/osse101/EcoRewards_Go/internal/domain"
)

// MilestoneRepository implements repository.MilestoneRepository
type MilestoneRepository struct {
	s *Store
}

func (r *MilestoneRepository) FindActive(ctx context.Context, userID string) ([]domain.RecurringMilestone, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var out []domain.RecurringMilestone
	for _, m := range r.s.milestones {
		if m.UserID == userID && m.Status == domain.StatusActive {
			out = append(out, *m)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].PeriodEnd.Equal(out[j].PeriodEnd) {
			return out[i].PeriodEnd.Before(out[j].PeriodEnd)
		}
		return out[i].Type < out[j].Type
	})
	return out, nil
}

func (r *MilestoneRepository) UpsertIfAbsent(ctx context.Context, initial domain.RecurringMilestone) (*domain.RecurringMilestone, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	key := initial.Key()
	if id, ok := r.s.milestoneIndex[key]; ok {
		out := *r.s.milestones[id]
		return &out, nil
	}

	stored := initial
	r.s.milestones[stored.ID] = &stored
	r.s.milestoneIndex[key] = stored.ID
	out := stored
	return &out, nil
}

func (r *MilestoneRepository) ApplyProgress(ctx context.Context, u domain.MilestoneUpdate) (*domain.MilestoneUpdateResult, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	m, ok := r.s.milestones[u.MilestoneID]
	if !ok {
		return nil, fmt.Errorf("milestone %s not found", u.MilestoneID)
	}

	ref := refKey{ownerID: u.MilestoneID, ref: u.ActionRef}
	if m.Status != domain.StatusActive || r.s.milestoneRefs[ref] {
		return &domain.MilestoneUpdateResult{Milestone: *m, Applied: false}, nil
	}

	if u.Gauge {
		if u.Amount > m.Progress.CurrentValue {
			m.Progress.CurrentValue = u.Amount
		}
	} else {
		m.Progress.CurrentValue += u.Amount
	}
	m.Progress.PercentComplete = domain.PercentComplete(m.Progress.CurrentValue, m.Goal.TargetValue)
	r.s.milestoneRefs[ref] = true

	return &domain.MilestoneUpdateResult{Milestone: *m, Applied: true}, nil
}

func (r *MilestoneRepository) CasComplete(ctx context.Context, milestoneID string, expected domain.Status, at time.Time) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	m, ok := r.s.milestones[milestoneID]
	if !ok || m.Status != expected {
		return false, nil
	}

	m.Status = domain.StatusCompleted
	completedAt := at
	m.CompletedAt = &completedAt
	m.Progress.PercentComplete = 100

	p := r.s.progressLocked(m.UserID, at)
	p.TotalPoints += m.Reward.BonusPoints
	p.UpdatedAt = at
	if m.Reward.BadgeID != "" {
		r.s.addBadgesLocked(p, []string{m.Reward.BadgeID}, at)
	}
	return true, nil
}

func (r *MilestoneRepository) CountCompleted(ctx context.Context, userID string) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	n := 0
	for _, m := range r.s.milestones {
		if m.UserID == userID && m.Status == domain.StatusCompleted {
			n++
		}
	}
	return n, nil
}

func (r *MilestoneRepository) ExpireBefore(ctx context.Context, now time.Time) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	n := 0
	for _, m := range r.s.milestones {
		if m.Status == domain.StatusActive && !m.PeriodEnd.After(now) {
			m.Status = domain.StatusFailed
			n++
		}
	}
	return n, nil
}
