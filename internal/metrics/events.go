package metrics

import (
	"context"

	"github.com/osse101/EcoRewards_Go/internal/domain"
	"github.com/osse101/EcoRewards_Go/internal/event"
	"github.com/osse101/EcoRewards_Go/internal/logger"
)

// EventMetricsCollector subscribes to events and records metrics
type EventMetricsCollector struct{}

// NewEventMetricsCollector creates a new event metrics collector
func NewEventMetricsCollector() *EventMetricsCollector {
	return &EventMetricsCollector{}
}

// Register subscribes to all events
func (e *EventMetricsCollector) Register(bus event.Bus) error {
	eventTypes := []event.Type{
		domain.EventTypeMissionCompleted,
		domain.EventTypeComplianceLogged,
		domain.EventTypePollutionReported,
		domain.EventTypeBadgeAwarded,
		domain.EventTypeMilestoneCompleted,
		domain.EventTypeChallengeCompleted,
		domain.EventTypeSweepComplete,
	}

	for _, eventType := range eventTypes {
		bus.Subscribe(eventType, e.HandleEvent)
	}

	return nil
}

// HandleEvent processes events and updates metrics
func (e *EventMetricsCollector) HandleEvent(ctx context.Context, evt event.Event) error {
	log := logger.FromContext(ctx)

	EventsPublished.WithLabelValues(string(evt.Type)).Inc()

	var err error
	switch evt.Type {
	case domain.EventTypeMissionCompleted:
		var p domain.MissionCompletedPayload
		if p, err = event.DecodePayload[domain.MissionCompletedPayload](evt.Payload); err == nil {
			MissionsCompleted.Inc()
			PointsAwarded.WithLabelValues(SourceAction).Add(float64(p.PointsAwarded))
			Co2SavedKg.WithLabelValues(string(domain.ActionKindMission)).Add(p.Co2SavedKg)
		}

	case domain.EventTypeComplianceLogged, domain.EventTypePollutionReported:
		var p domain.ActionLoggedPayload
		if p, err = event.DecodePayload[domain.ActionLoggedPayload](evt.Payload); err == nil {
			kind := domain.ActionKindCompliance
			if evt.Type == domain.EventTypePollutionReported {
				kind = domain.ActionKindPollution
			}
			PointsAwarded.WithLabelValues(SourceAction).Add(float64(p.PointsAwarded))
			Co2SavedKg.WithLabelValues(string(kind)).Add(p.Co2ImpactKg)
		}

	case domain.EventTypeBadgeAwarded:
		var p domain.BadgeAwardedPayload
		if p, err = event.DecodePayload[domain.BadgeAwardedPayload](evt.Payload); err == nil {
			BadgesAwarded.WithLabelValues(p.BadgeID).Inc()
		}

	case domain.EventTypeMilestoneCompleted:
		var p domain.MilestoneCompletedPayload
		if p, err = event.DecodePayload[domain.MilestoneCompletedPayload](evt.Payload); err == nil {
			MilestonesCompleted.WithLabelValues(string(p.Type)).Inc()
			PointsAwarded.WithLabelValues(SourceMilestone).Add(float64(p.BonusPoints))
		}

	case domain.EventTypeChallengeCompleted:
		ChallengesCompleted.Inc()

	case domain.EventTypeSweepComplete:
		var p domain.SweepCompletePayload
		if p, err = event.DecodePayload[domain.SweepCompletePayload](evt.Payload); err == nil {
			MilestonesExpired.Add(float64(p.MilestonesExpired))
			ChallengesExpired.Add(float64(p.ChallengesExpired))
		}
	}

	if err != nil {
		log.Debug(LogMsgEventPayloadUnexpected, "type", evt.Type, "error", err)
		return nil
	}

	log.Debug(LogMsgMetricsRecorded, "type", evt.Type)
	return nil
}
