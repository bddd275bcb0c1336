package challenge

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/osse101/EcoRewards_Go/internal/clock"
	"github.com/osse101/EcoRewards_Go/internal/database/memory"
	"github.com/osse101/EcoRewards_Go/internal/domain"
)

var start = time.Date(2024, 2, 14, 10, 0, 0, 0, time.UTC)

func newTestService(clk clock.Clock) Service {
	return NewService(memory.NewStore().Challenges(), clk, Config{})
}

func TestEnsureActive_UsesDefaults(t *testing.T) {
	svc := newTestService(clock.NewFake(start))

	ch, err := svc.EnsureActive(context.Background(), "c1")
	require.NoError(t, err)
	assert.Equal(t, DefaultGoalCo2Kg, ch.GoalCo2Kg)
	assert.Equal(t, start.Add(DefaultWindow), ch.EndAt)
	assert.Equal(t, domain.StatusActive, ch.Status)
}

func TestEnsureActive_ConcurrentSingleActive(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(clock.NewFake(start))

	ids := make(chan string, 20)
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ch, err := svc.EnsureActive(ctx, "c1")
			if err != nil {
				t.Error(err)
				return
			}
			ids <- ch.ID
		}()
	}
	wg.Wait()
	close(ids)

	seen := make(map[string]bool)
	for id := range ids {
		seen[id] = true
	}
	assert.Len(t, seen, 1)
}

func TestApplyContribution_OvershootClampsPercent(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(clock.NewFake(start))
	_, err := svc.EnsureActive(ctx, "c1")
	require.NoError(t, err)

	ch, completed, err := svc.ApplyContribution(ctx, "c1", "u1", 950, "r1")
	require.NoError(t, err)
	assert.False(t, completed)
	assert.InDelta(t, 95, ch.ProgressPercent(), 1e-9)

	ch, completed, err = svc.ApplyContribution(ctx, "c1", "u2", 60, "r2")
	require.NoError(t, err)
	assert.True(t, completed)
	assert.Equal(t, float64(1010), ch.CurrentCo2Kg)
	assert.Equal(t, float64(100), ch.ProgressPercent())
	assert.Equal(t, domain.StatusCompleted, ch.Status)
	require.NotNil(t, ch.CompletedAt)
	assert.Equal(t, start, *ch.CompletedAt)
	assert.Equal(t, 2, ch.ParticipantCount)
}

func TestApplyContribution_NoActiveChallenge(t *testing.T) {
	svc := newTestService(clock.NewFake(start))

	_, _, err := svc.ApplyContribution(context.Background(), "c1", "u1", 1, "r1")
	assert.ErrorIs(t, err, domain.ErrNoActiveChallenge)
}

func TestApplyContribution_ConcurrentCompletesOnce(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(clock.NewFake(start))
	_, err := svc.EnsureActive(ctx, "c1")
	require.NoError(t, err)

	var wg sync.WaitGroup
	var mu sync.Mutex
	completions := 0
	for i := 0; i < 30; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, completed, err := svc.ApplyContribution(ctx, "c1", "u1", 100, string(rune('A'+i)))
			if err != nil {
				// contributions racing the completion may find no active challenge
				assert.ErrorIs(t, err, domain.ErrNoActiveChallenge)
				return
			}
			if completed {
				mu.Lock()
				completions++
				mu.Unlock()
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 1, completions)
}

func TestApplyContribution_AfterEndOpensNewWindow(t *testing.T) {
	ctx := context.Background()
	clk := clock.NewFake(start)
	svc := newTestService(clk)
	first, err := svc.EnsureActive(ctx, "c1")
	require.NoError(t, err)
	_, _, err = svc.ApplyContribution(ctx, "c1", "u1", 950, "r1")
	require.NoError(t, err)

	clk.Advance(DefaultWindow + 24*time.Hour)
	ch, completed, err := svc.ApplyContribution(ctx, "c1", "u2", 60, "r2")
	assert.ErrorIs(t, err, domain.ErrNoActiveChallenge)
	assert.False(t, completed)
	assert.Nil(t, ch)

	_, err = svc.Get(ctx, "c1")
	assert.ErrorIs(t, err, domain.ErrNoActiveChallenge)
	n, err := svc.SweepExpired(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	next, err := svc.EnsureActive(ctx, "c1")
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, next.ID)
	assert.Equal(t, clk.Now(), next.StartAt)

	ch, completed, err = svc.ApplyContribution(ctx, "c1", "u2", 60, "r2")
	require.NoError(t, err)
	assert.False(t, completed)
	assert.Equal(t, float64(60), ch.CurrentCo2Kg)
	assert.Equal(t, 1, ch.ParticipantCount)
}

func TestSweepExpired(t *testing.T) {
	ctx := context.Background()
	clk := clock.NewFake(start)
	svc := newTestService(clk)
	_, err := svc.EnsureActive(ctx, "c1")
	require.NoError(t, err)
	_, _, err = svc.ApplyContribution(ctx, "c1", "u1", 10, "r1")
	require.NoError(t, err)

	clk.Advance(DefaultWindow - time.Hour)
	n, err := svc.SweepExpired(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	clk.Advance(time.Hour)
	n, err = svc.SweepExpired(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	_, err = svc.Get(ctx, "c1")
	assert.ErrorIs(t, err, domain.ErrNoActiveChallenge)

	n, err = svc.SweepExpired(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestGet_Remaining(t *testing.T) {
	ctx := context.Background()
	clk := clock.NewFake(start)
	svc := newTestService(clk)
	_, err := svc.EnsureActive(ctx, "c1")
	require.NoError(t, err)

	clk.Advance(28*24*time.Hour + 30*time.Minute)
	view, err := svc.Get(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, 1, view.DaysRemaining)
	assert.Equal(t, 47, view.HoursRemaining)
}

func TestRemaining_ClampsAtZero(t *testing.T) {
	ch := domain.CommunityChallenge{EndAt: start}
	days, hours := ch.Remaining(start.Add(time.Hour))
	assert.Equal(t, 0, days)
	assert.Equal(t, 0, hours)

	view := NewView(ch, start.Add(time.Hour))
	assert.Equal(t, 0, view.DaysRemaining)
}
