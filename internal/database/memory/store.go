// Package memory is an in-process store keyed by the same composite keys as the
// Postgres schema. A single mutex makes every method atomic.
package memory

import (
	"sync"
	"time"

	"github.com/osse101/EcoRewards_Go/internal/domain"
)

type actionKey struct {
	userID string
	kind   domain.ActionKind
	ref    string
}

type refKey struct {
	ownerID string
	ref     string
}

// Store holds all engine state in memory
type Store struct {
	mu sync.Mutex

	progress    map[string]*domain.UserProgress
	actions     map[actionKey]*domain.ActionRecord
	actionOrder []actionKey
	bonusClaims map[refKey]bool

	milestones     map[string]*domain.RecurringMilestone
	milestoneIndex map[domain.MilestoneKey]string
	milestoneRefs  map[refKey]bool

	challenges      map[string]*domain.CommunityChallenge
	activeChallenge map[string]string
	challengeRefs   map[refKey]bool
	participants    map[string]map[string]bool

	communities map[string]string
	vehicles    map[string]string
	signals     map[refKey]domain.DailySignal
	tokens      map[string][]string
}

// NewStore creates an empty store
func NewStore() *Store {
	return &Store{
		progress:        make(map[string]*domain.UserProgress),
		actions:         make(map[actionKey]*domain.ActionRecord),
		bonusClaims:     make(map[refKey]bool),
		milestones:      make(map[string]*domain.RecurringMilestone),
		milestoneIndex:  make(map[domain.MilestoneKey]string),
		milestoneRefs:   make(map[refKey]bool),
		challenges:      make(map[string]*domain.CommunityChallenge),
		activeChallenge: make(map[string]string),
		challengeRefs:   make(map[refKey]bool),
		participants:    make(map[string]map[string]bool),
		communities:     make(map[string]string),
		vehicles:        make(map[string]string),
		signals:         make(map[refKey]domain.DailySignal),
		tokens:          make(map[string][]string),
	}
}

// Progress returns the ProgressRepository view of the store
func (s *Store) Progress() *ProgressRepository { return &ProgressRepository{s: s} }

// Milestones returns the MilestoneRepository view of the store
func (s *Store) Milestones() *MilestoneRepository { return &MilestoneRepository{s: s} }

// Challenges returns the ChallengeRepository view of the store
func (s *Store) Challenges() *ChallengeRepository { return &ChallengeRepository{s: s} }

// Directory returns the lookup view used for communities, vehicles, signals and tokens
func (s *Store) Directory() *Directory { return &Directory{s: s} }

// progressLocked returns the aggregate for userID, creating it when absent. Caller holds mu.
func (s *Store) progressLocked(userID string, now time.Time) *domain.UserProgress {
	p, ok := s.progress[userID]
	if !ok {
		p = &domain.UserProgress{UserID: userID, CreatedAt: now, UpdatedAt: now}
		s.progress[userID] = p
	}
	return p
}

// addBadgesLocked set-adds badges and returns the ids that were new. Caller holds mu.
func (s *Store) addBadgesLocked(p *domain.UserProgress, badgeIDs []string, at time.Time) []string {
	owned := p.OwnedBadges()
	var added []string
	for _, id := range badgeIDs {
		if id == "" || owned[id] {
			continue
		}
		owned[id] = true
		p.Badges = append(p.Badges, domain.BadgeAward{BadgeID: id, EarnedAt: at})
		added = append(added, id)
	}
	if len(added) > 0 {
		p.UpdatedAt = at
	}
	return added
}

func copyProgress(p *domain.UserProgress) domain.UserProgress {
	out := *p
	out.Badges = append([]domain.BadgeAward(nil), p.Badges...)
	return out
}
