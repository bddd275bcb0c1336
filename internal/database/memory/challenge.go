package memory

import (
	"context"
	"fmt"
	"time"

	"github.com/osse101/EcoRewards_Go/internal/domain"
)

// ChallengeRepository implements repository.ChallengeRepository
type ChallengeRepository struct {
	s *Store
}

func (r *ChallengeRepository) FindActive(ctx context.Context, communityID string) (*domain.CommunityChallenge, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	id, ok := r.s.activeChallenge[communityID]
	if !ok {
		return nil, domain.ErrNoActiveChallenge
	}
	out := *r.s.challenges[id]
	return &out, nil
}

func (r *ChallengeRepository) UpsertActiveIfAbsent(ctx context.Context, initial domain.CommunityChallenge) (*domain.CommunityChallenge, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if id, ok := r.s.activeChallenge[initial.CommunityID]; ok {
		out := *r.s.challenges[id]
		return &out, nil
	}

	stored := initial
	stored.Status = domain.StatusActive
	r.s.challenges[stored.ID] = &stored
	r.s.activeChallenge[stored.CommunityID] = stored.ID
	r.s.participants[stored.ID] = make(map[string]bool)
	out := stored
	return &out, nil
}

func (r *ChallengeRepository) ApplyContribution(ctx context.Context, c domain.ChallengeContribution) (*domain.ChallengeUpdateResult, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	ch, ok := r.s.challenges[c.ChallengeID]
	if !ok {
		return nil, fmt.Errorf("challenge %s not found", c.ChallengeID)
	}

	if ch.Status == domain.StatusActive && !c.Now.Before(ch.EndAt) {
		r.s.closeExpiredChallengeLocked(ch, c.Now)
		return nil, domain.ErrNoActiveChallenge
	}

	ref := refKey{ownerID: c.ChallengeID, ref: c.ActionRef}
	if ch.Status != domain.StatusActive || r.s.challengeRefs[ref] {
		return &domain.ChallengeUpdateResult{Challenge: *ch, Applied: false}, nil
	}

	ch.CurrentCo2Kg += c.Co2Kg
	r.s.challengeRefs[ref] = true
	if !r.s.participants[ch.ID][c.UserID] {
		r.s.participants[ch.ID][c.UserID] = true
		ch.ParticipantCount++
	}
	return &domain.ChallengeUpdateResult{Challenge: *ch, Applied: true}, nil
}

func (r *ChallengeRepository) CasComplete(ctx context.Context, challengeID string, expected domain.Status, at time.Time) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	ch, ok := r.s.challenges[challengeID]
	if !ok || ch.Status != expected {
		return false, nil
	}
	r.s.closeChallengeLocked(ch, domain.StatusCompleted, at)
	return true, nil
}

func (r *ChallengeRepository) ExpireBefore(ctx context.Context, now time.Time) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	failed := 0
	for _, id := range r.s.activeChallenge {
		ch := r.s.challenges[id]
		if ch.EndAt.After(now) {
			continue
		}
		if r.s.closeExpiredChallengeLocked(ch, now) == domain.StatusFailed {
			failed++
		}
	}
	return failed, nil
}

// closeExpiredChallengeLocked closes a challenge whose window has ended: completed
// at EndAt when the goal was reached, failed otherwise
func (s *Store) closeExpiredChallengeLocked(ch *domain.CommunityChallenge, now time.Time) domain.Status {
	if ch.CurrentCo2Kg >= ch.GoalCo2Kg {
		s.closeChallengeLocked(ch, domain.StatusCompleted, ch.EndAt)
		return domain.StatusCompleted
	}
	s.closeChallengeLocked(ch, domain.StatusFailed, now)
	return domain.StatusFailed
}

// closeChallengeLocked moves ch to a terminal status and frees the community's active slot
func (s *Store) closeChallengeLocked(ch *domain.CommunityChallenge, status domain.Status, at time.Time) {
	ch.Status = status
	if status == domain.StatusCompleted {
		completedAt := at
		ch.CompletedAt = &completedAt
	}
	if s.activeChallenge[ch.CommunityID] == ch.ID {
		delete(s.activeChallenge, ch.CommunityID)
	}
}
