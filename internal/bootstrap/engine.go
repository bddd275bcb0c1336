package bootstrap

import (
	"fmt"
	"log/slog"

	"github.com/osse101/EcoRewards_Go/internal/badge"
	"github.com/osse101/EcoRewards_Go/internal/challenge"
	"github.com/osse101/EcoRewards_Go/internal/clock"
	"github.com/osse101/EcoRewards_Go/internal/config"
	"github.com/osse101/EcoRewards_Go/internal/milestone"
	"github.com/osse101/EcoRewards_Go/internal/mission"
	"github.com/osse101/EcoRewards_Go/internal/missionpool"
	"github.com/osse101/EcoRewards_Go/internal/progress"
	"github.com/osse101/EcoRewards_Go/internal/validation"
)

// EngineComponents is the wired engine plus the pieces the workers need
type EngineComponents struct {
	Engine    progress.Engine
	Generator *missionpool.Generator
	Catalog   *mission.Catalog
}

// LoadMissionCatalog loads and validates the mission catalog named by cfg.
// When cfg.MissionSchemaPath is set the file is checked against that JSON schema first.
func LoadMissionCatalog(cfg *config.Config) (*mission.Catalog, error) {
	if cfg.MissionSchemaPath != "" {
		if err := validation.NewSchemaValidator().ValidateFile(cfg.MissionCatalogPath, cfg.MissionSchemaPath); err != nil {
			return nil, fmt.Errorf("%s: %w", ErrMsgFailedLoadCatalog, err)
		}
	}
	catalog, err := mission.LoadCatalog(cfg.MissionCatalogPath)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrMsgFailedLoadCatalog, err)
	}
	slog.Info(LogMsgCatalogLoaded, "path", cfg.MissionCatalogPath, "missions", catalog.Len())
	return catalog, nil
}

// BuildEngine wires the rewards engine from stores, integrations and policy config
func BuildEngine(cfg *config.Config, repos *Repositories, in *Integrations, publisher progress.Publisher, catalog *mission.Catalog, clk clock.Clock) *EngineComponents {
	generator := missionpool.NewGenerator(catalog, repos.Progress, repos.Directory, in.PoolCache, clk)

	engine := progress.NewEngine(progress.Deps{
		Progress:   repos.Progress,
		Milestones: milestone.NewService(repos.Milestones, clk, nil),
		Challenges: challenge.NewService(repos.Challenges, clk, challenge.Config{
			GoalCo2Kg: cfg.ChallengeGoalKg,
			Window:    cfg.ChallengeWindow,
		}),
		Badges:      badge.NewEvaluator(nil),
		Catalog:     catalog,
		Pool:        generator,
		Communities: repos.Directory,
		Vehicles:    repos.Directory,
		Notifier:    in.Notifier,
		Feed:        in.Feed,
		Publisher:   publisher,
		Clock:       clk,
	}, progress.Config{
		RepeatPolicy:      cfg.MissionRepeatPolicy,
		PollutionDailyCap: cfg.PollutionDailyCap,
	})

	return &EngineComponents{Engine: engine, Generator: generator, Catalog: catalog}
}
