package event

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/osse101/EcoRewards_Go/internal/domain"
)

// Type represents the type of an event
type Type string

// Metadata defines the type for event metadata
type Metadata interface{}

// Event represents a generic event in the system
type Event struct {
	Version  string      `json:"version"` // Event schema version (e.g., "1.0")
	Type     Type        `json:"type"`
	Payload  interface{} `json:"payload"`
	Metadata Metadata    `json:"metadata"`
}

// GetMetadataValue extracts a value from the event metadata safely
func (e Event) GetMetadataValue(key string) interface{} {
	if m, ok := e.Metadata.(map[string]interface{}); ok {
		return m[key]
	}
	return nil
}

// Metadata keys
const (
	MetadataKeyCommunityID = "community_id"
	MetadataKeyOccurredAt  = "occurred_at"
)

func newEvent(t string, payload interface{}, occurredAt time.Time) Event {
	return Event{
		Version:  EventSchemaVersion,
		Type:     Type(t),
		Payload:  payload,
		Metadata: map[string]interface{}{MetadataKeyOccurredAt: occurredAt.UTC().Format(time.RFC3339)},
	}
}

// NewMissionCompletedEvent creates a mission.completed event
func NewMissionCompletedEvent(p domain.MissionCompletedPayload, at time.Time) Event {
	return newEvent(domain.EventTypeMissionCompleted, p, at)
}

// NewComplianceLoggedEvent creates a compliance.logged event
func NewComplianceLoggedEvent(p domain.ActionLoggedPayload, at time.Time) Event {
	return newEvent(domain.EventTypeComplianceLogged, p, at)
}

// NewPollutionReportedEvent creates a pollution.reported event
func NewPollutionReportedEvent(p domain.ActionLoggedPayload, at time.Time) Event {
	return newEvent(domain.EventTypePollutionReported, p, at)
}

// NewBadgeAwardedEvent creates a badge.awarded event
func NewBadgeAwardedEvent(userID, badgeID string, at time.Time) Event {
	return newEvent(domain.EventTypeBadgeAwarded, domain.BadgeAwardedPayload{UserID: userID, BadgeID: badgeID}, at)
}

// NewMilestoneCompletedEvent creates a milestone.completed event
func NewMilestoneCompletedEvent(m domain.RecurringMilestone, at time.Time) Event {
	return newEvent(domain.EventTypeMilestoneCompleted, domain.MilestoneCompletedPayload{
		UserID:      m.UserID,
		Type:        m.Type,
		PeriodKey:   m.PeriodKey,
		BonusPoints: m.Reward.BonusPoints,
		BadgeID:     m.Reward.BadgeID,
	}, at)
}

// NewChallengeCompletedEvent creates a challenge.completed event
func NewChallengeCompletedEvent(c domain.CommunityChallenge, at time.Time) Event {
	evt := newEvent(domain.EventTypeChallengeCompleted, domain.ChallengeCompletedPayload{
		CommunityID:  c.CommunityID,
		ChallengeID:  c.ID,
		GoalCo2Kg:    c.GoalCo2Kg,
		CurrentCo2Kg: c.CurrentCo2Kg,
	}, at)
	evt.Metadata.(map[string]interface{})[MetadataKeyCommunityID] = c.CommunityID
	return evt
}

// NewFeedAppendedEvent wraps an activity feed entry
func NewFeedAppendedEvent(communityID string, fe domain.FeedEvent, at time.Time) Event {
	evt := newEvent(domain.EventTypeFeedAppended, fe, at)
	evt.Metadata.(map[string]interface{})[MetadataKeyCommunityID] = communityID
	return evt
}

// NewSweepCompleteEvent creates a sweep.complete event
func NewSweepCompleteEvent(milestones, challenges int, at time.Time) Event {
	return newEvent(domain.EventTypeSweepComplete, domain.SweepCompletePayload{
		MilestonesExpired: milestones,
		ChallengesExpired: challenges,
	}, at)
}

// Handler is a function that handles an event
type Handler func(ctx context.Context, event Event) error

// Bus defines the interface for an event bus
type Bus interface {
	Publish(ctx context.Context, event Event) error
	Subscribe(eventType Type, handler Handler)
}

// MemoryBus is an in-memory implementation of the Event Bus
type MemoryBus struct {
	handlers map[Type][]Handler
	mu       sync.RWMutex
}

// NewMemoryBus creates a new MemoryBus
func NewMemoryBus() *MemoryBus {
	return &MemoryBus{
		handlers: make(map[Type][]Handler),
	}
}

// Publish publishes an event to all subscribers. Handlers run synchronously.
func (b *MemoryBus) Publish(ctx context.Context, event Event) error {
	b.mu.RLock()
	handlers, ok := b.handlers[event.Type]
	b.mu.RUnlock()

	if !ok {
		return nil
	}

	var errs []error
	for _, handler := range handlers {
		if err := handler(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf(LogMsgHandlerErrorFormat, len(errs), event.Type, errs)
	}

	return nil
}

// Subscribe subscribes a handler to an event type
func (b *MemoryBus) Subscribe(eventType Type, handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.handlers[eventType] = append(b.handlers[eventType], handler)
}
