// Package progress is the rewards engine: it turns a completed user action
// into streak, points, badges, milestone and challenge progress.
package progress

import (
	"context"
	"sync"

	"github.com/osse101/EcoRewards_Go/internal/badge"
	"github.com/osse101/EcoRewards_Go/internal/challenge"
	"github.com/osse101/EcoRewards_Go/internal/clock"
	"github.com/osse101/EcoRewards_Go/internal/config"
	"github.com/osse101/EcoRewards_Go/internal/domain"
	"github.com/osse101/EcoRewards_Go/internal/event"
	"github.com/osse101/EcoRewards_Go/internal/feed"
	"github.com/osse101/EcoRewards_Go/internal/milestone"
	"github.com/osse101/EcoRewards_Go/internal/notification"
	"github.com/osse101/EcoRewards_Go/internal/repository"
)

// Engine is the set of operations exposed to action handlers
type Engine interface {
	CompleteMission(ctx context.Context, userID, missionID string) (*MissionResult, error)
	LogComplianceEvent(ctx context.Context, userID, contextID string, co2ImpactKg float64, isOnTime bool) (*ComplianceResult, error)
	ReportPollution(ctx context.Context, userID, reportID string, co2ImpactKg float64) (*PollutionResult, error)

	GetProgress(ctx context.Context, userID string) (*ProgressView, error)
	GetActiveMilestones(ctx context.Context, userID string) ([]domain.MilestoneView, error)
	DailyMissions(ctx context.Context, userID string) ([]domain.Mission, error)
	GetCommunityChallenge(ctx context.Context, communityID string) (*domain.ChallengeView, error)

	// SweepExpirations is driven by an external schedule
	SweepExpirations(ctx context.Context) (*SweepResult, error)

	// Shutdown waits for in-flight notifications and feed appends
	Shutdown(ctx context.Context) error
}

// MissionCatalog resolves catalog missions
type MissionCatalog interface {
	Get(id string) (domain.Mission, error)
}

// PoolGenerator returns a user's mission pool for today
type PoolGenerator interface {
	DailyPool(ctx context.Context, userID string) ([]domain.Mission, error)
}

// Publisher is the fire-and-forget side of the event bus
type Publisher interface {
	PublishWithRetry(ctx context.Context, evt event.Event)
}

// Deps are the collaborators of the engine. Notifier, Feed and Publisher are optional.
type Deps struct {
	Progress    repository.ProgressRepository
	Milestones  milestone.Service
	Challenges  challenge.Service
	Badges      *badge.Evaluator
	Catalog     MissionCatalog
	Pool        PoolGenerator
	Communities repository.CommunityDirectory
	Vehicles    repository.VehicleLookup
	Notifier    notification.Sender
	Feed        feed.Sink
	Publisher   Publisher
	Clock       clock.Clock
}

// Config holds engine policy
type Config struct {
	// RepeatPolicy is config.RepeatPolicyOnce or config.RepeatPolicyDaily
	RepeatPolicy      string
	PollutionDailyCap int
}

// MissionResult is the outcome of CompleteMission
type MissionResult struct {
	MissionID         string   `json:"mission_id"`
	PointsAwarded     int      `json:"points_awarded"`
	Co2SavedAwarded   float64  `json:"co2_saved_awarded"`
	StreakMultiplier  float64  `json:"streak_multiplier"`
	NewTotalPoints    int      `json:"new_total_points"`
	NewTotalCo2Saved  float64  `json:"new_total_co2_saved"`
	CurrentStreak     int      `json:"current_streak"`
	NewlyEarnedBadges []string `json:"newly_earned_badges"`
	// BonusPoints sums flat bonuses and milestone rewards credited by this call
	BonusPoints         int                    `json:"bonus_points"`
	CompletedMilestones []domain.MilestoneType `json:"completed_milestones,omitempty"`
}

// ComplianceResult is the outcome of LogComplianceEvent
type ComplianceResult struct {
	PointsAwarded int     `json:"points_awarded"`
	Co2ImpactKg   float64 `json:"co2_impact_kg"`
	IsOnTime      bool    `json:"is_on_time"`
}

// PollutionResult is the outcome of ReportPollution
type PollutionResult struct {
	PointsAwarded int     `json:"points_awarded"`
	Co2ImpactKg   float64 `json:"co2_impact_kg"`
	ReportsToday  int     `json:"reports_today"`
	DailyCap      int     `json:"daily_cap"`
}

// ProgressView is the read model of a user's aggregate
type ProgressView struct {
	domain.UserProgress
	// DisplayedStreak is 0 when the stored streak has lapsed without a new action
	DisplayedStreak  int     `json:"displayed_streak"`
	StreakMultiplier float64 `json:"streak_multiplier"`
}

// SweepResult reports how many records a sweep failed
type SweepResult struct {
	MilestonesExpired int `json:"milestones_expired"`
	ChallengesExpired int `json:"challenges_expired"`
}

type engine struct {
	deps Deps
	cfg  Config
	wg   sync.WaitGroup
}

// NewEngine wires an engine. Missing optional collaborators get no-op defaults.
func NewEngine(deps Deps, cfg Config) Engine {
	if deps.Clock == nil {
		deps.Clock = clock.Real{}
	}
	if deps.Badges == nil {
		deps.Badges = badge.NewEvaluator(nil)
	}
	if deps.Notifier == nil {
		deps.Notifier = notification.LogSender{}
	}
	if deps.Feed == nil {
		deps.Feed = feed.NopSink{}
	}
	if cfg.RepeatPolicy == "" {
		cfg.RepeatPolicy = config.RepeatPolicyOnce
	}
	if cfg.PollutionDailyCap <= 0 {
		cfg.PollutionDailyCap = DefaultPollutionDailyCap
	}
	return &engine{deps: deps, cfg: cfg}
}

func (e *engine) Shutdown(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		e.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
