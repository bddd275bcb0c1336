package progress

import (
	"context"
	"fmt"

	"github.com/osse101/EcoRewards_Go/internal/domain"
	"github.com/osse101/EcoRewards_Go/internal/event"
	"github.com/osse101/EcoRewards_Go/internal/logger"
	"github.com/osse101/EcoRewards_Go/internal/metrics"
	"github.com/osse101/EcoRewards_Go/internal/points"
	"github.com/osse101/EcoRewards_Go/internal/streak"
)

func (e *engine) LogComplianceEvent(ctx context.Context, userID, contextID string, co2ImpactKg float64, isOnTime bool) (*ComplianceResult, error) {
	if userID == "" || contextID == "" || co2ImpactKg < 0 {
		return nil, fmt.Errorf("%w: user id, vehicle id and a non-negative co2 impact are required", domain.ErrInvalidInput)
	}

	class, err := e.deps.Vehicles.VehicleClass(ctx, contextID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrMsgVehicleFailed, err)
	}
	if class == domain.VehicleClassElectric || class == domain.VehicleClassBicycle {
		metrics.ActionsRejected.WithLabelValues(string(domain.ActionKindCompliance), reasonNotEligible).Inc()
		return nil, fmt.Errorf("%w: vehicle class %s is exempt from emission compliance", domain.ErrNotEligible, class)
	}

	now := e.deps.Clock.Now()
	today := streak.DateKey(now)
	awarded := points.CompliancePoints(isOnTime)

	rec := domain.ActionRecord{
		UserID:      userID,
		Kind:        domain.ActionKindCompliance,
		ActionRef:   fmt.Sprintf(vehicleRefFormat, contextID, today),
		Subject:     contextID,
		DateKey:     today,
		CompletedAt: now,
	}
	reward := func(in domain.ApplyInput) (domain.ProgressDelta, error) {
		counter := domain.CounterNone
		if isOnTime {
			counter = domain.CounterComplianceOnTime
		}
		return domain.ProgressDelta{
			Points:  awarded,
			Co2Kg:   co2ImpactKg,
			Streak:  nextStreak(in, today),
			Counter: counter,
		}, nil
	}

	out, err := e.record(ctx, rec, reward)
	if err != nil {
		return nil, err
	}
	s, err := e.settle(ctx, out, 0)
	if err != nil {
		return nil, err
	}

	rec = out.Record
	if out.Created {
		e.publish(ctx, event.NewComplianceLoggedEvent(domain.ActionLoggedPayload{
			UserID:        userID,
			ActionRef:     rec.ActionRef,
			PointsAwarded: rec.PointsAwarded,
			Co2ImpactKg:   rec.Co2SavedAwarded,
		}, now))
	}
	e.announce(ctx, userID, s, nil, now)

	logger.FromContext(ctx).Info(LogMsgComplianceLogged, "user_id", userID, "vehicle_id", contextID, "on_time", isOnTime, "points", rec.PointsAwarded)
	return &ComplianceResult{
		PointsAwarded: rec.PointsAwarded,
		Co2ImpactKg:   rec.Co2SavedAwarded,
		IsOnTime:      isOnTime,
	}, nil
}

func (e *engine) ReportPollution(ctx context.Context, userID, reportID string, co2ImpactKg float64) (*PollutionResult, error) {
	if userID == "" || reportID == "" || co2ImpactKg < 0 {
		return nil, fmt.Errorf("%w: user id, report id and a non-negative co2 impact are required", domain.ErrInvalidInput)
	}

	now := e.deps.Clock.Now()
	today := streak.DateKey(now)
	limit := e.cfg.PollutionDailyCap

	rec := domain.ActionRecord{
		UserID:      userID,
		Kind:        domain.ActionKindPollution,
		ActionRef:   reportID,
		Subject:     reportID,
		DateKey:     today,
		CompletedAt: now,
	}
	reportsToday := 0
	reward := func(in domain.ApplyInput) (domain.ProgressDelta, error) {
		if in.KindCountToday >= limit {
			return domain.ProgressDelta{}, &domain.RateLimitedError{
				Action:     string(domain.ActionKindPollution),
				RetryAfter: streak.NextMidnight(now),
			}
		}
		reportsToday = in.KindCountToday + 1
		return domain.ProgressDelta{
			Points:  points.PollutionReportPoints,
			Co2Kg:   co2ImpactKg,
			Streak:  nextStreak(in, today),
			Counter: domain.CounterPollutionReports,
		}, nil
	}

	out, err := e.record(ctx, rec, reward)
	if err != nil {
		return nil, err
	}
	s, err := e.settle(ctx, out, 0)
	if err != nil {
		return nil, err
	}

	rec = out.Record
	if out.Created {
		e.publish(ctx, event.NewPollutionReportedEvent(domain.ActionLoggedPayload{
			UserID:        userID,
			ActionRef:     reportID,
			PointsAwarded: rec.PointsAwarded,
			Co2ImpactKg:   rec.Co2SavedAwarded,
		}, now))
	}
	e.announce(ctx, userID, s, nil, now)

	logger.FromContext(ctx).Info(LogMsgPollutionReported, "user_id", userID, "report_id", reportID, "reports_today", reportsToday)
	return &PollutionResult{
		PointsAwarded: rec.PointsAwarded,
		Co2ImpactKg:   rec.Co2SavedAwarded,
		ReportsToday:  reportsToday,
		DailyCap:      limit,
	}, nil
}
