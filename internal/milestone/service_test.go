package milestone

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/osse101/EcoRewards_Go/internal/badge"
	"github.com/osse101/EcoRewards_Go/internal/clock"
	"github.com/osse101/EcoRewards_Go/internal/database/memory"
	"github.com/osse101/EcoRewards_Go/internal/domain"
)

// Wednesday of ISO week 2024-W07
var wednesday = time.Date(2024, 2, 14, 10, 0, 0, 0, time.UTC)

func weeklyCo2Only(target float64, bonus int) []Kind {
	k := DefaultKinds[0]
	k.Tiers = [3]Tier{{target, bonus}, {target, bonus}, {target, bonus}}
	return []Kind{k}
}

func TestPeriodBounds(t *testing.T) {
	tests := []struct {
		name      string
		period    domain.Period
		at        time.Time
		wantKey   string
		wantStart time.Time
		wantEnd   time.Time
	}{
		{"midweek", domain.PeriodWeekly, wednesday, "2024-W07",
			time.Date(2024, 2, 12, 0, 0, 0, 0, time.UTC), time.Date(2024, 2, 19, 0, 0, 0, 0, time.UTC)},
		{"sunday belongs to previous monday", domain.PeriodWeekly, time.Date(2024, 2, 18, 23, 59, 0, 0, time.UTC), "2024-W07",
			time.Date(2024, 2, 12, 0, 0, 0, 0, time.UTC), time.Date(2024, 2, 19, 0, 0, 0, 0, time.UTC)},
		{"iso year differs from calendar year", domain.PeriodWeekly, time.Date(2021, 1, 2, 12, 0, 0, 0, time.UTC), "2020-W53",
			time.Date(2020, 12, 28, 0, 0, 0, 0, time.UTC), time.Date(2021, 1, 4, 0, 0, 0, 0, time.UTC)},
		{"month", domain.PeriodMonthly, wednesday, "2024-02",
			time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC), time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)},
		{"december rolls year", domain.PeriodMonthly, time.Date(2023, 12, 31, 23, 0, 0, 0, time.UTC), "2023-12",
			time.Date(2023, 12, 1, 0, 0, 0, 0, time.UTC), time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			key, start, end := PeriodBounds(tt.period, tt.at)
			assert.Equal(t, tt.wantKey, key)
			assert.Equal(t, tt.wantStart, start)
			assert.Equal(t, tt.wantEnd, end)
		})
	}
}

func TestTierIndex(t *testing.T) {
	assert.Equal(t, 0, TierIndex(0))
	assert.Equal(t, 0, TierIndex(3))
	assert.Equal(t, 1, TierIndex(4))
	assert.Equal(t, 1, TierIndex(11))
	assert.Equal(t, 2, TierIndex(12))
}

func TestEnsureCurrentPeriod_Idempotent(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	svc := NewService(store.Milestones(), clock.NewFake(wednesday), nil)

	first, err := svc.EnsureCurrentPeriod(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, first, len(DefaultKinds))

	second, err := svc.EnsureCurrentPeriod(ctx, "u1")
	require.NoError(t, err)
	for i := range first {
		assert.Equal(t, first[i].ID, second[i].ID)
	}

	active, err := store.Milestones().FindActive(ctx, "u1")
	require.NoError(t, err)
	assert.Len(t, active, len(DefaultKinds))
}

func TestEnsureCurrentPeriod_ConcurrentCreatesOnePerKind(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	svc := NewService(store.Milestones(), clock.NewFake(wednesday), nil)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := svc.EnsureCurrentPeriod(ctx, "u1"); err != nil {
				t.Error(err)
			}
		}()
	}
	wg.Wait()

	active, err := store.Milestones().FindActive(ctx, "u1")
	require.NoError(t, err)
	assert.Len(t, active, len(DefaultKinds))
}

func TestEnsureCurrentPeriod_UsesEasyTierForNewUser(t *testing.T) {
	ctx := context.Background()
	svc := NewService(memory.NewStore().Milestones(), clock.NewFake(wednesday), nil)

	ms, err := svc.EnsureCurrentPeriod(ctx, "u1")
	require.NoError(t, err)

	byType := make(map[domain.MilestoneType]domain.RecurringMilestone)
	for _, m := range ms {
		byType[m.Type] = m
	}
	weekly := byType[domain.MilestoneWeeklyCo2]
	assert.Equal(t, float64(10), weekly.Goal.TargetValue)
	assert.Equal(t, 50, weekly.Reward.BonusPoints)
	assert.Equal(t, "2024-W07", weekly.PeriodKey)

	monthly := byType[domain.MilestoneMonthlyCo2]
	assert.Equal(t, "2024-02", monthly.PeriodKey)
	assert.Equal(t, badge.ClimateGuardian, monthly.Reward.BadgeID)
}

func TestApplyContribution_CompletesExactlyOnce(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	svc := NewService(store.Milestones(), clock.NewFake(wednesday), weeklyCo2Only(50, 50))

	_, err := svc.EnsureCurrentPeriod(ctx, "u1")
	require.NoError(t, err)

	steps := []struct {
		ref           string
		co2           float64
		wantCompleted int
	}{
		{"a1", 20, 0},
		{"a2", 20, 0},
		{"a3", 15, 1},
		{"a4", 10, 0},
	}
	for _, s := range steps {
		done, err := svc.ApplyContribution(ctx, "u1", Contribution{Co2Kg: s.co2, ActionRef: s.ref})
		require.NoError(t, err)
		assert.Len(t, done, s.wantCompleted, s.ref)
	}

	p, err := store.Progress().GetProgress(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 50, p.TotalPoints)

	n, err := store.Milestones().CountCompleted(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	views, err := svc.GetActive(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, views)
}

func TestApplyContribution_ReplayDoesNotDoubleCount(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	svc := NewService(store.Milestones(), clock.NewFake(wednesday), weeklyCo2Only(50, 50))
	_, err := svc.EnsureCurrentPeriod(ctx, "u1")
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		_, err := svc.ApplyContribution(ctx, "u1", Contribution{Co2Kg: 20, ActionRef: "same"})
		require.NoError(t, err)
	}

	views, err := svc.GetActive(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, float64(20), views[0].CurrentValue)
	assert.Equal(t, 40, views[0].PercentComplete)
}

func TestApplyContribution_ConcurrentCrossingGrantsOneBonus(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	svc := NewService(store.Milestones(), clock.NewFake(wednesday), weeklyCo2Only(50, 50))
	_, err := svc.EnsureCurrentPeriod(ctx, "u1")
	require.NoError(t, err)

	var wg sync.WaitGroup
	var mu sync.Mutex
	completions := 0
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			done, err := svc.ApplyContribution(ctx, "u1", Contribution{Co2Kg: 30, ActionRef: string(rune('a' + i))})
			if err != nil {
				t.Error(err)
				return
			}
			mu.Lock()
			completions += len(done)
			mu.Unlock()
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 1, completions)
	p, err := store.Progress().GetProgress(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 50, p.TotalPoints)
}

func TestApplyContribution_KindRules(t *testing.T) {
	ctx := context.Background()
	svc := NewService(memory.NewStore().Milestones(), clock.NewFake(wednesday), nil)
	_, err := svc.EnsureCurrentPeriod(ctx, "u1")
	require.NoError(t, err)

	_, err = svc.ApplyContribution(ctx, "u1", Contribution{Co2Kg: 2, Missions: 1, Streak: 5, ActionRef: "m1"})
	require.NoError(t, err)
	_, err = svc.ApplyContribution(ctx, "u1", Contribution{Co2Kg: 1, Streak: 3, ActionRef: "c1"})
	require.NoError(t, err)

	views, err := svc.GetActive(ctx, "u1")
	require.NoError(t, err)
	got := make(map[domain.MilestoneType]float64)
	for _, v := range views {
		got[v.Type] = v.CurrentValue
	}
	assert.Equal(t, float64(3), got[domain.MilestoneWeeklyCo2])
	assert.Equal(t, float64(3), got[domain.MilestoneMonthlyCo2])
	assert.Equal(t, float64(1), got[domain.MilestoneWeeklyMissions])
	assert.Equal(t, float64(1), got[domain.MilestoneMonthlyMissions])
	assert.Equal(t, float64(5), got[domain.MilestoneMonthlyStreak])
}

func TestApplyContribution_StreakGaugeAwardsBadge(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	svc := NewService(store.Milestones(), clock.NewFake(wednesday), []Kind{DefaultKinds[4]})
	_, err := svc.EnsureCurrentPeriod(ctx, "u1")
	require.NoError(t, err)

	done, err := svc.ApplyContribution(ctx, "u1", Contribution{Streak: 7, ActionRef: "m7"})
	require.NoError(t, err)
	require.Len(t, done, 1)
	assert.Equal(t, domain.StatusCompleted, done[0].Status)

	p, err := store.Progress().GetProgress(ctx, "u1")
	require.NoError(t, err)
	assert.True(t, p.OwnedBadges()[badge.StreakMaster])
	assert.Equal(t, 150, p.TotalPoints)
}

func TestSweepExpired(t *testing.T) {
	ctx := context.Background()
	clk := clock.NewFake(wednesday)
	svc := NewService(memory.NewStore().Milestones(), clk, nil)
	_, err := svc.EnsureCurrentPeriod(ctx, "u1")
	require.NoError(t, err)

	n, err := svc.SweepExpired(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	clk.Set(time.Date(2024, 2, 19, 0, 0, 0, 0, time.UTC))
	n, err = svc.SweepExpired(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n, "both weekly kinds end on Monday")

	n, err = svc.SweepExpired(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	// a contribution after the week ended only reaches monthly kinds
	_, err = svc.ApplyContribution(ctx, "u1", Contribution{Co2Kg: 5, ActionRef: "late"})
	require.NoError(t, err)
	views, err := svc.GetActive(ctx, "u1")
	require.NoError(t, err)
	assert.Len(t, views, 3)
}

func TestGetActive_DaysRemaining(t *testing.T) {
	ctx := context.Background()
	svc := NewService(memory.NewStore().Milestones(), clock.NewFake(wednesday), nil)
	_, err := svc.EnsureCurrentPeriod(ctx, "u1")
	require.NoError(t, err)

	views, err := svc.GetActive(ctx, "u1")
	require.NoError(t, err)
	require.NotEmpty(t, views)
	assert.Equal(t, 4, views[0].DaysRemaining)
	assert.Equal(t, domain.PeriodWeekly, periodOf(views[0].Type))
	assert.Equal(t, 15, views[len(views)-1].DaysRemaining)
}

func periodOf(t domain.MilestoneType) domain.Period {
	for _, k := range DefaultKinds {
		if k.Type == t {
			return k.Period
		}
	}
	return ""
}
