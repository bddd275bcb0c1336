package bootstrap

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/osse101/EcoRewards_Go/internal/config"
	"github.com/osse101/EcoRewards_Go/internal/database"
	"github.com/osse101/EcoRewards_Go/internal/database/memory"
	"github.com/osse101/EcoRewards_Go/internal/database/postgres"
	"github.com/osse101/EcoRewards_Go/internal/repository"
	"github.com/osse101/EcoRewards_Go/migrations"
)

// Directory is the read side of community, vehicle, signal and device data
type Directory interface {
	repository.CommunityDirectory
	repository.VehicleLookup
	repository.SignalProvider
	repository.DeviceTokenStore
}

// Repositories holds all repository implementations used by the application.
type Repositories struct {
	Progress   repository.ProgressRepository
	Milestones repository.MilestoneRepository
	Challenges repository.ChallengeRepository
	Directory  Directory

	// DBPool is nil for in-memory storage
	DBPool *pgxpool.Pool
}

// InitializeRepositories selects the storage backend named by cfg.Storage.
// For Postgres it connects, applies pending migrations and returns pool-backed repositories.
func InitializeRepositories(ctx context.Context, cfg *config.Config) (*Repositories, error) {
	if cfg.Storage != config.StoragePostgres {
		store := memory.NewStore()
		slog.Warn(LogMsgMemoryStorage)
		return &Repositories{
			Progress:   store.Progress(),
			Milestones: store.Milestones(),
			Challenges: store.Challenges(),
			Directory:  store.Directory(),
		}, nil
	}

	dbPool, err := database.NewPool(cfg.GetDBConnString(), cfg.DBMaxConns, cfg.DBMaxConnIdleTime, cfg.DBMaxConnLifetime)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrMsgFailedConnectDB, err)
	}

	if err := database.Migrate(ctx, dbPool, migrations.FS, database.MigrateUp); err != nil {
		dbPool.Close()
		return nil, err
	}

	return &Repositories{
		Progress:   postgres.NewProgressRepository(dbPool),
		Milestones: postgres.NewMilestoneRepository(dbPool),
		Challenges: postgres.NewChallengeRepository(dbPool),
		Directory:  postgres.NewDirectory(dbPool),
		DBPool:     dbPool,
	}, nil
}

// Close releases the database pool, if any
func (r *Repositories) Close() {
	if r.DBPool != nil {
		r.DBPool.Close()
	}
}
