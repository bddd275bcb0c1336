// Package missionpool builds the three-mission daily suggestion pool.
package missionpool

import (
	"context"
	"fmt"

	"github.com/osse101/EcoRewards_Go/internal/clock"
	"github.com/osse101/EcoRewards_Go/internal/domain"
	"github.com/osse101/EcoRewards_Go/internal/logger"
	"github.com/osse101/EcoRewards_Go/internal/metrics"
	"github.com/osse101/EcoRewards_Go/internal/repository"
	"github.com/osse101/EcoRewards_Go/internal/streak"
)

// MissionSource is the static catalog the pool draws from
type MissionSource interface {
	All() []domain.Mission
}

// HistoryProvider returns a user's most recent mission ids completed before a day
type HistoryProvider interface {
	RecentMissionIDs(ctx context.Context, userID, beforeDateKey string, limit int) ([]string, error)
}

// Generator produces and caches daily pools
type Generator struct {
	catalog MissionSource
	history HistoryProvider
	signals repository.SignalProvider
	cache   Cache
	clock   clock.Clock
	recentN int
}

// NewGenerator wires a generator. A nil cache disables caching.
func NewGenerator(catalog MissionSource, history HistoryProvider, signals repository.SignalProvider, cache Cache, clk clock.Clock) *Generator {
	return &Generator{
		catalog: catalog,
		history: history,
		signals: signals,
		cache:   cache,
		clock:   clk,
		recentN: DefaultRecentWindow,
	}
}

// DailyPool returns today's pool for userID, generating it on the first call of the day
func (g *Generator) DailyPool(ctx context.Context, userID string) ([]domain.Mission, error) {
	log := logger.FromContext(ctx)
	now := g.clock.Now()
	today := streak.DateKey(now)

	all := g.catalog.All()
	byID := make(map[string]domain.Mission, len(all))
	for _, m := range all {
		byID[m.ID] = m
	}

	if g.cache != nil {
		ids, found, err := g.cache.Get(ctx, userID, today)
		switch {
		case err != nil:
			log.Warn(LogMsgPoolCacheFailed, "user_id", userID, "error", err)
		case found:
			if pool, ok := resolve(byID, ids); ok {
				metrics.PoolCacheLookups.WithLabelValues(metrics.ResultHit).Inc()
				return pool, nil
			}
			log.Warn(LogMsgPoolStale, "user_id", userID, "date_key", today)
		}
		metrics.PoolCacheLookups.WithLabelValues(metrics.ResultMiss).Inc()
	}

	pool, err := g.generate(ctx, userID, today, all, byID)
	if err != nil {
		return nil, err
	}
	if g.cache == nil {
		return pool, nil
	}

	stored, err := g.cache.SetIfAbsent(ctx, userID, today, missionIDs(pool), streak.NextMidnight(now))
	if err != nil {
		log.Warn(LogMsgPoolCacheFailed, "user_id", userID, "error", err)
		return pool, nil
	}
	// another request generated the pool first
	if winner, ok := resolve(byID, stored); ok {
		return winner, nil
	}
	return pool, nil
}

// generate computes the pool for userID on dateKey without touching the cache
func (g *Generator) generate(ctx context.Context, userID, dateKey string, all []domain.Mission, byID map[string]domain.Mission) ([]domain.Mission, error) {
	// today's completions stay out so the pool is the same all day
	recentIDs, err := g.history.RecentMissionIDs(ctx, userID, dateKey, g.recentN)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrMsgRecentFailed, err)
	}
	recent := make(map[string]bool, len(recentIDs))
	for _, id := range recentIDs {
		recent[id] = true
	}

	sig, err := g.signals.DailySignal(ctx, userID, dateKey)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrMsgSignalFailed, err)
	}

	preferred := PreferredCategory(sig, DominantCategory(byID, recentIDs))
	pool, err := Select(all, preferred, recent, userID+":"+dateKey)
	if err != nil {
		return nil, err
	}

	logger.FromContext(ctx).Debug(LogMsgPoolGenerated,
		"user_id", userID,
		"date_key", dateKey,
		"preferred_category", preferred,
		"missions", missionIDs(pool))
	return pool, nil
}

func resolve(byID map[string]domain.Mission, ids []string) ([]domain.Mission, bool) {
	if len(ids) != len(domain.Difficulties) {
		return nil, false
	}
	out := make([]domain.Mission, 0, len(ids))
	for _, id := range ids {
		m, ok := byID[id]
		if !ok {
			return nil, false
		}
		out = append(out, m)
	}
	return out, true
}

func missionIDs(pool []domain.Mission) []string {
	ids := make([]string, len(pool))
	for i, m := range pool {
		ids[i] = m.ID
	}
	return ids
}
