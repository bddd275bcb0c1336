package worker

import (
	"context"
	"fmt"
	"time"

	"github.com/osse101/EcoRewards_Go/internal/domain"
	"github.com/osse101/EcoRewards_Go/internal/logger"
)

// ActiveUserLister lists users with recent actions
type ActiveUserLister interface {
	ActiveUsersSince(ctx context.Context, since time.Time) ([]string, error)
}

// PoolWarmer computes (and caches) a user's daily mission pool
type PoolWarmer interface {
	DailyPool(ctx context.Context, userID string) ([]domain.Mission, error)
}

// PrewarmJob fills the mission pool cache for recently active users so the
// first request of the day is served from cache
type PrewarmJob struct {
	users    ActiveUserLister
	pools    PoolWarmer
	lookback time.Duration
	now      func() time.Time
}

// NewPrewarmJob creates a pre-warm job; lookback <= 0 uses DefaultPrewarmLookback
func NewPrewarmJob(users ActiveUserLister, pools PoolWarmer, lookback time.Duration, now func() time.Time) *PrewarmJob {
	if lookback <= 0 {
		lookback = DefaultPrewarmLookback
	}
	if now == nil {
		now = time.Now
	}
	return &PrewarmJob{users: users, pools: pools, lookback: lookback, now: now}
}

func (j *PrewarmJob) Name() string { return "daily_pool_prewarm" }

// Process warms every active user's pool. A failing user does not stop the rest.
func (j *PrewarmJob) Process(ctx context.Context) error {
	log := logger.FromContext(ctx)

	userIDs, err := j.users.ActiveUsersSince(ctx, j.now().Add(-j.lookback))
	if err != nil {
		return fmt.Errorf("failed to list active users: %w", err)
	}

	warmed := 0
	for _, userID := range userIDs {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if _, err := j.pools.DailyPool(ctx, userID); err != nil {
			log.Warn(LogMsgPrewarmUserFail, "user_id", userID, "error", err)
			continue
		}
		warmed++
	}

	log.Info(LogMsgPrewarmCompleted, "users", len(userIDs), "warmed", warmed)
	return nil
}
