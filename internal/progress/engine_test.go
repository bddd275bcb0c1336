package progress

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/osse101/EcoRewards_Go/internal/badge"
	"github.com/osse101/EcoRewards_Go/internal/challenge"
	"github.com/osse101/EcoRewards_Go/internal/clock"
	"github.com/osse101/EcoRewards_Go/internal/config"
	"github.com/osse101/EcoRewards_Go/internal/database/memory"
	"github.com/osse101/EcoRewards_Go/internal/domain"
	"github.com/osse101/EcoRewards_Go/internal/event"
	"github.com/osse101/EcoRewards_Go/internal/milestone"
	"github.com/osse101/EcoRewards_Go/internal/mission"
	"github.com/osse101/EcoRewards_Go/internal/missionpool"
	"github.com/osse101/EcoRewards_Go/internal/points"
)

// MockNotifier is a mock notification.Sender
type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) Send(ctx context.Context, userID, title, body string, data map[string]string) bool {
	args := m.Called(ctx, userID, title, body, data)
	return args.Bool(0)
}

// MockFeed is a mock feed.Sink
type MockFeed struct {
	mock.Mock
}

func (m *MockFeed) Append(ctx context.Context, communityID string, fe domain.FeedEvent) error {
	args := m.Called(ctx, communityID, fe)
	return args.Error(0)
}

// MockPublisher is a mock Publisher
type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) PublishWithRetry(ctx context.Context, evt event.Event) {
	m.Called(ctx, evt)
}

// flakyMilestones fails ApplyContribution a fixed number of times
type flakyMilestones struct {
	milestone.Service
	mu       sync.Mutex
	failures int
}

// failingPool never produces a daily pool
type failingPool struct{}

func (failingPool) DailyPool(context.Context, string) ([]domain.Mission, error) {
	return nil, domain.ErrEmptyDifficultyTier
}

func (f *flakyMilestones) ApplyContribution(ctx context.Context, userID string, c milestone.Contribution) ([]domain.RecurringMilestone, error) {
	f.mu.Lock()
	if f.failures > 0 {
		f.failures--
		f.mu.Unlock()
		return nil, errors.New("store unavailable")
	}
	f.mu.Unlock()
	return f.Service.ApplyContribution(ctx, userID, c)
}

// Wednesday, ISO week 2024-W07
var now = time.Date(2024, 2, 14, 10, 0, 0, 0, time.UTC)

var testMissions = []domain.Mission{
	{ID: "walk", Title: "Walk", Category: domain.CategoryTransport, Difficulty: domain.DifficultyEasy, Co2SavedKg: 0.7, BasePoints: 10},
	{ID: "transit", Title: "Transit", Category: domain.CategoryTransport, Difficulty: domain.DifficultyMedium, Co2SavedKg: 2.5, BasePoints: 10},
	{ID: "car-free", Title: "Car free", Category: domain.CategoryTransport, Difficulty: domain.DifficultyHard, Co2SavedKg: 1.8, BasePoints: 30},
	{ID: "meatless", Title: "Meatless meal", Category: domain.CategoryFood, Difficulty: domain.DifficultyEasy, Co2SavedKg: 1.2, BasePoints: 10},
}

type harness struct {
	t          *testing.T
	store      *memory.Store
	clk        *clock.Fake
	engine     Engine
	notifier   *MockNotifier
	feed       *MockFeed
	publisher  *MockPublisher
	milestones milestone.Service
}

type harnessOption func(h *harness, d *Deps, cfg *Config)

func newHarness(t *testing.T, opts ...harnessOption) *harness {
	t.Helper()
	store := memory.NewStore()
	clk := clock.NewFake(now)
	catalog, err := mission.NewCatalog(testMissions)
	require.NoError(t, err)

	h := &harness{
		t:          t,
		store:      store,
		clk:        clk,
		notifier:   &MockNotifier{},
		feed:       &MockFeed{},
		publisher:  &MockPublisher{},
		milestones: milestone.NewService(store.Milestones(), clk, nil),
	}
	h.notifier.On("Send", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(true).Maybe()
	h.feed.On("Append", mock.Anything, mock.Anything, mock.Anything).Return(nil).Maybe()
	h.publisher.On("PublishWithRetry", mock.Anything, mock.Anything).Return().Maybe()

	deps := Deps{
		Progress:    store.Progress(),
		Milestones:  h.milestones,
		Challenges:  challenge.NewService(store.Challenges(), clk, challenge.Config{}),
		Badges:      badge.NewEvaluator(nil),
		Catalog:     catalog,
		Pool:        missionpool.NewGenerator(catalog, store.Progress(), store.Directory(), missionpool.NewLRUCache(100, time.Hour), clk),
		Communities: store.Directory(),
		Vehicles:    store.Directory(),
		Notifier:    h.notifier,
		Feed:        h.feed,
		Publisher:   h.publisher,
		Clock:       clk,
	}
	cfg := Config{RepeatPolicy: config.RepeatPolicyOnce, PollutionDailyCap: 3}
	for _, opt := range opts {
		opt(h, &deps, &cfg)
	}
	h.engine = NewEngine(deps, cfg)
	return h
}

// seed applies a raw delta dated dateKey, bypassing the engine
func (h *harness) seed(userID, dateKey string, delta domain.ProgressDelta) {
	h.t.Helper()
	rec := domain.ActionRecord{
		UserID:      userID,
		Kind:        domain.ActionKindPollution,
		ActionRef:   "seed-" + dateKey,
		DateKey:     dateKey,
		CompletedAt: now.Add(-24 * time.Hour),
	}
	_, err := h.store.Progress().RecordAction(context.Background(), rec, func(domain.ApplyInput) (domain.ProgressDelta, error) {
		return delta, nil
	})
	require.NoError(h.t, err)
}

func (h *harness) drain() {
	h.t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(h.t, h.engine.Shutdown(ctx))
}

func TestCompleteMission_StreakAndPointsScenario(t *testing.T) {
	h := newHarness(t)
	h.seed("u1", "2024-02-13", domain.ProgressDelta{Streak: 3})

	res, err := h.engine.CompleteMission(context.Background(), "u1", "transit")
	require.NoError(t, err)

	assert.Equal(t, 4, res.CurrentStreak)
	assert.Equal(t, 14, res.PointsAwarded)
	assert.Equal(t, 2.5, res.Co2SavedAwarded)
	assert.Equal(t, 1.0, res.StreakMultiplier)
	assert.Contains(t, res.NewlyEarnedBadges, badge.FirstMission)
	h.drain()
}

func TestCompleteMission_DuplicateRejected(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	first, err := h.engine.CompleteMission(ctx, "u1", "walk")
	require.NoError(t, err)

	_, err = h.engine.CompleteMission(ctx, "u1", "walk")
	assert.ErrorIs(t, err, domain.ErrAlreadyCompleted)

	p, err := h.engine.GetProgress(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, first.NewTotalPoints, p.TotalPoints)
	assert.Equal(t, first.NewTotalCo2Saved, p.TotalCo2SavedKg)
	h.drain()
}

func TestCompleteMission_DailyRepeatPolicy(t *testing.T) {
	h := newHarness(t, func(_ *harness, _ *Deps, cfg *Config) { cfg.RepeatPolicy = config.RepeatPolicyDaily })
	ctx := context.Background()

	_, err := h.engine.CompleteMission(ctx, "u1", "walk")
	require.NoError(t, err)
	_, err = h.engine.CompleteMission(ctx, "u1", "walk")
	assert.ErrorIs(t, err, domain.ErrAlreadyCompleted)

	h.clk.Advance(24 * time.Hour)
	res, err := h.engine.CompleteMission(ctx, "u1", "walk")
	require.NoError(t, err)
	assert.Equal(t, 2, res.CurrentStreak)
	h.drain()
}

func TestCompleteMission_UnknownMission(t *testing.T) {
	h := newHarness(t)
	_, err := h.engine.CompleteMission(context.Background(), "u1", "nope")
	assert.ErrorIs(t, err, domain.ErrMissionNotFound)

	_, err = h.engine.CompleteMission(context.Background(), "", "walk")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestCompleteMission_BronzeBadgeCrossing(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.seed("u1", "2024-02-14", domain.ProgressDelta{Co2Kg: 9.5, Streak: 1})

	res, err := h.engine.CompleteMission(ctx, "u1", "walk")
	require.NoError(t, err)
	assert.InDelta(t, 10.2, res.NewTotalCo2Saved, 1e-9)
	assert.Contains(t, res.NewlyEarnedBadges, badge.Bronze10Kg)

	res, err = h.engine.CompleteMission(ctx, "u1", "car-free")
	require.NoError(t, err)
	assert.InDelta(t, 12.0, res.NewTotalCo2Saved, 1e-9)
	assert.Empty(t, res.NewlyEarnedBadges)
	h.drain()
}

func TestCompleteMission_Streak7Bonus(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.seed("u1", "2024-02-13", domain.ProgressDelta{Streak: 6})

	res, err := h.engine.CompleteMission(ctx, "u1", "walk")
	require.NoError(t, err)
	assert.Equal(t, 7, res.CurrentStreak)
	assert.Equal(t, points.StreakMultiplier(7), res.StreakMultiplier)
	assert.Contains(t, res.NewlyEarnedBadges, badge.Streak7)
	// round(10*1.25) + round(0.7*1.0)
	assert.Equal(t, 14, res.PointsAwarded)
	assert.GreaterOrEqual(t, res.BonusPoints, points.Streak7Bonus)

	again, err := h.engine.CompleteMission(ctx, "u1", "meatless")
	require.NoError(t, err)
	assert.Equal(t, 7, again.CurrentStreak)
	assert.Less(t, again.BonusPoints, points.Streak7Bonus)
	h.drain()
}

func TestCompleteMission_DailyTiersBonusOnce(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	pool, err := h.engine.DailyMissions(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, pool, 3)

	var last *MissionResult
	for i, m := range pool {
		last, err = h.engine.CompleteMission(ctx, "u1", m.ID)
		require.NoError(t, err)
		if i < 2 {
			assert.Equal(t, 0, last.BonusPoints, m.ID)
		}
	}
	assert.GreaterOrEqual(t, last.BonusPoints, points.DailyTiersBonus)

	claimed, err := h.store.Progress().ClaimBonus(ctx, "u1", ClaimKeyDailyTiers+"2024-02-14", points.DailyTiersBonus, now)
	require.NoError(t, err)
	assert.False(t, claimed)
	h.drain()
}

func TestCompleteMission_PoolFailureStillSettles(t *testing.T) {
	h := newHarness(t, func(_ *harness, d *Deps, _ *Config) {
		d.Pool = failingPool{}
	})
	ctx := context.Background()

	res, err := h.engine.CompleteMission(ctx, "u1", "walk")
	require.NoError(t, err)
	assert.Equal(t, 0, res.BonusPoints)
	assert.Contains(t, res.NewlyEarnedBadges, badge.FirstMission)

	views, err := h.engine.GetActiveMilestones(ctx, "u1")
	require.NoError(t, err)
	for _, v := range views {
		if v.Type == domain.MilestoneWeeklyMissions {
			assert.Equal(t, float64(1), v.CurrentValue)
		}
	}

	_, err = h.engine.CompleteMission(ctx, "u1", "walk")
	assert.ErrorIs(t, err, domain.ErrAlreadyCompleted)
	h.drain()
}

func TestCompleteMission_PoolStableAcrossTodaysCompletions(t *testing.T) {
	h := newHarness(t, func(h *harness, d *Deps, _ *Config) {
		catalog, err := mission.NewCatalog([]domain.Mission{
			{ID: "walk", Title: "Walk", Category: domain.CategoryTransport, Difficulty: domain.DifficultyEasy, Co2SavedKg: 0.7, BasePoints: 10},
			{ID: "bike", Title: "Bike", Category: domain.CategoryTransport, Difficulty: domain.DifficultyEasy, Co2SavedKg: 0.9, BasePoints: 10},
			{ID: "transit", Title: "Transit", Category: domain.CategoryTransport, Difficulty: domain.DifficultyMedium, Co2SavedKg: 2.5, BasePoints: 10},
			{ID: "car-free", Title: "Car free", Category: domain.CategoryTransport, Difficulty: domain.DifficultyHard, Co2SavedKg: 1.8, BasePoints: 30},
		})
		require.NoError(t, err)
		d.Catalog = catalog
		// uncached: every lookup regenerates the pool
		d.Pool = missionpool.NewGenerator(catalog, h.store.Progress(), h.store.Directory(), nil, h.clk)
	})
	ctx := context.Background()

	pool, err := h.engine.DailyMissions(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, pool, 3)

	var last *MissionResult
	for _, m := range pool {
		last, err = h.engine.CompleteMission(ctx, "u1", m.ID)
		require.NoError(t, err)
	}
	assert.GreaterOrEqual(t, last.BonusPoints, points.DailyTiersBonus)

	again, err := h.engine.DailyMissions(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, pool, again)
	h.drain()
}

func TestCompleteMission_WeeklyMilestoneCompletes(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	var res *MissionResult
	var err error
	for _, id := range []string{"walk", "transit", "car-free"} {
		res, err = h.engine.CompleteMission(ctx, "u1", id)
		require.NoError(t, err)
	}
	assert.Contains(t, res.CompletedMilestones, domain.MilestoneWeeklyMissions)

	views, err := h.engine.GetActiveMilestones(ctx, "u1")
	require.NoError(t, err)
	for _, v := range views {
		assert.NotEqual(t, domain.MilestoneWeeklyMissions, v.Type)
	}
	h.drain()
}

func TestCompleteMission_ResumesUnsettledAction(t *testing.T) {
	h := newHarness(t, func(_ *harness, d *Deps, _ *Config) {
		d.Milestones = &flakyMilestones{Service: d.Milestones, failures: 1}
	})
	ctx := context.Background()

	_, err := h.engine.CompleteMission(ctx, "u1", "walk")
	require.Error(t, err)
	assert.Contains(t, err.Error(), ErrMsgMilestonesFailed)

	// the record and its points are in; the tail is not
	p, err := h.store.Progress().GetProgress(ctx, "u1")
	require.NoError(t, err)
	credited := p.TotalPoints

	res, err := h.engine.CompleteMission(ctx, "u1", "walk")
	require.NoError(t, err)
	assert.Equal(t, credited, res.NewTotalPoints)

	views, err := h.engine.GetActiveMilestones(ctx, "u1")
	require.NoError(t, err)
	for _, v := range views {
		if v.Type == domain.MilestoneWeeklyMissions {
			assert.Equal(t, float64(1), v.CurrentValue)
		}
	}

	_, err = h.engine.CompleteMission(ctx, "u1", "walk")
	assert.ErrorIs(t, err, domain.ErrAlreadyCompleted)
	h.drain()
}

func TestCompleteMission_ConcurrentDuplicatesCreditOnce(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := h.engine.CompleteMission(ctx, "u1", "transit")
			if err != nil {
				assert.ErrorIs(t, err, domain.ErrAlreadyCompleted)
			}
		}()
	}
	wg.Wait()

	p, err := h.engine.GetProgress(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 1, p.MissionsCompleted)
	assert.Equal(t, 2.5, p.TotalCo2SavedKg)
	h.drain()
}

func TestCompleteMission_CommunityChallengeAndFeed(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.store.Directory().SetCommunity("u1", "c1")

	res, err := h.engine.CompleteMission(ctx, "u1", "transit")
	require.NoError(t, err)
	assert.Contains(t, res.NewlyEarnedBadges, badge.CommunityMember)

	view, err := h.engine.GetCommunityChallenge(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, 2.5, view.CurrentCo2Kg)
	assert.Equal(t, 1, view.ParticipantCount)

	h.drain()
	h.feed.AssertCalled(t, "Append", mock.Anything, "c1", mock.MatchedBy(func(fe domain.FeedEvent) bool {
		return fe.Type == FeedTypeMissionCompleted && fe.UserID == "u1" && fe.CreatedAt != ""
	}))
	h.notifier.AssertCalled(t, "Send", mock.Anything, "u1", mock.Anything, mock.Anything, mock.Anything)
	h.publisher.AssertCalled(t, "PublishWithRetry", mock.Anything, mock.MatchedBy(func(e event.Event) bool {
		return e.Type == event.Type(domain.EventTypeMissionCompleted)
	}))
}

func TestCompleteMission_ChallengeCompletion(t *testing.T) {
	h := newHarness(t, func(h *harness, d *Deps, _ *Config) {
		d.Challenges = challenge.NewService(h.store.Challenges(), h.clk, challenge.Config{GoalCo2Kg: 2.9})
	})
	ctx := context.Background()
	h.store.Directory().SetCommunity("u1", "c1")
	h.store.Directory().SetCommunity("u2", "c1")

	_, err := h.engine.CompleteMission(ctx, "u1", "car-free")
	require.NoError(t, err)
	_, err = h.engine.CompleteMission(ctx, "u2", "meatless")
	require.NoError(t, err)

	h.drain()
	h.publisher.AssertCalled(t, "PublishWithRetry", mock.Anything, mock.MatchedBy(func(e event.Event) bool {
		return e.Type == event.Type(domain.EventTypeChallengeCompleted)
	}))

	// the next contribution opens a new challenge
	_, err = h.engine.CompleteMission(ctx, "u1", "walk")
	require.NoError(t, err)
	view, err := h.engine.GetCommunityChallenge(ctx, "c1")
	require.NoError(t, err)
	assert.InDelta(t, 0.7, view.CurrentCo2Kg, 1e-9)
	h.drain()
}

func TestCompleteMission_LateContributionOpensNewChallenge(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.store.Directory().SetCommunity("u1", "c1")

	_, err := h.engine.CompleteMission(ctx, "u1", "transit")
	require.NoError(t, err)
	first, err := h.engine.GetCommunityChallenge(ctx, "c1")
	require.NoError(t, err)

	h.clk.Advance(challenge.DefaultWindow + 24*time.Hour)
	_, err = h.engine.CompleteMission(ctx, "u1", "walk")
	require.NoError(t, err)

	view, err := h.engine.GetCommunityChallenge(ctx, "c1")
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, view.ID)
	assert.InDelta(t, 0.7, view.CurrentCo2Kg, 1e-9)
	assert.True(t, view.EndAt.After(h.clk.Now()))
	h.drain()

	h.publisher.AssertNotCalled(t, "PublishWithRetry", mock.Anything, mock.MatchedBy(func(e event.Event) bool {
		return e.Type == event.Type(domain.EventTypeChallengeCompleted)
	}))
}

func TestCompleteMission_DeliveryFailuresAreSwallowed(t *testing.T) {
	h := newHarness(t)
	h.notifier.ExpectedCalls = nil
	h.feed.ExpectedCalls = nil
	h.notifier.On("Send", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(false)
	h.feed.On("Append", mock.Anything, mock.Anything, mock.Anything).Return(errors.New("broker down"))
	h.store.Directory().SetCommunity("u1", "c1")

	res, err := h.engine.CompleteMission(context.Background(), "u1", "walk")
	require.NoError(t, err)
	assert.Positive(t, res.PointsAwarded)
	h.drain()
}

func TestLogComplianceEvent(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	dir := h.store.Directory()
	dir.RegisterVehicle("car-1", "petrol")
	dir.RegisterVehicle("car-2", "diesel")
	dir.RegisterVehicle("ev-1", domain.VehicleClassElectric)
	dir.RegisterVehicle("bike-1", domain.VehicleClassBicycle)

	res, err := h.engine.LogComplianceEvent(ctx, "u1", "car-1", 1.5, true)
	require.NoError(t, err)
	assert.Equal(t, points.ComplianceOnTimePoints, res.PointsAwarded)
	assert.True(t, res.IsOnTime)

	late, err := h.engine.LogComplianceEvent(ctx, "u1", "car-2", 0.5, false)
	require.NoError(t, err)
	assert.Equal(t, points.ComplianceLatePoints, late.PointsAwarded)

	_, err = h.engine.LogComplianceEvent(ctx, "u1", "car-1", 1.5, true)
	assert.ErrorIs(t, err, domain.ErrAlreadyCompleted)

	_, err = h.engine.LogComplianceEvent(ctx, "u1", "ev-1", 1, true)
	assert.ErrorIs(t, err, domain.ErrNotEligible)
	_, err = h.engine.LogComplianceEvent(ctx, "u1", "bike-1", 1, true)
	assert.ErrorIs(t, err, domain.ErrNotEligible)

	p, err := h.engine.GetProgress(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 1, p.ComplianceOnTime)
	assert.True(t, p.OwnedBadges()[badge.ComplianceFirst])

	h.clk.Advance(24 * time.Hour)
	_, err = h.engine.LogComplianceEvent(ctx, "u1", "car-1", 1.5, true)
	require.NoError(t, err)
	h.drain()
}

func TestReportPollution_DailyCap(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	for i, id := range []string{"r1", "r2", "r3"} {
		res, err := h.engine.ReportPollution(ctx, "u1", id, 0)
		require.NoError(t, err)
		assert.Equal(t, points.PollutionReportPoints, res.PointsAwarded)
		assert.Equal(t, i+1, res.ReportsToday)
	}

	_, err := h.engine.ReportPollution(ctx, "u1", "r4", 0)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrRateLimited)
	var limited *domain.RateLimitedError
	require.ErrorAs(t, err, &limited)
	assert.Equal(t, time.Date(2024, 2, 15, 0, 0, 0, 0, time.UTC), limited.RetryAfter)

	p, err := h.engine.GetProgress(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 3*points.PollutionReportPoints, p.TotalPoints)
	assert.Equal(t, 3, p.PollutionReports)

	_, err = h.engine.ReportPollution(ctx, "u1", "r1", 0)
	assert.ErrorIs(t, err, domain.ErrAlreadyCompleted)

	h.clk.Advance(24 * time.Hour)
	_, err = h.engine.ReportPollution(ctx, "u1", "r4", 0)
	require.NoError(t, err)
	h.drain()
}

func TestGetProgress_LapsedStreakDisplaysZero(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	_, err := h.engine.GetProgress(ctx, "u1")
	assert.ErrorIs(t, err, domain.ErrUserNotFound)

	_, err = h.engine.CompleteMission(ctx, "u1", "walk")
	require.NoError(t, err)

	h.clk.Advance(24 * time.Hour)
	p, err := h.engine.GetProgress(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 1, p.DisplayedStreak)

	h.clk.Advance(24 * time.Hour)
	p, err = h.engine.GetProgress(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 0, p.DisplayedStreak)
	assert.Equal(t, 1, p.CurrentStreak)

	res, err := h.engine.CompleteMission(ctx, "u1", "meatless")
	require.NoError(t, err)
	assert.Equal(t, 1, res.CurrentStreak)
	h.drain()
}

func TestSweepExpirations(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.store.Directory().SetCommunity("u1", "c1")

	_, err := h.engine.CompleteMission(ctx, "u1", "walk")
	require.NoError(t, err)

	res, err := h.engine.SweepExpirations(ctx)
	require.NoError(t, err)
	assert.Equal(t, SweepResult{}, *res)

	h.clk.Set(time.Date(2024, 3, 20, 0, 0, 0, 0, time.UTC))
	res, err = h.engine.SweepExpirations(ctx)
	require.NoError(t, err)
	assert.Equal(t, len(milestone.DefaultKinds), res.MilestonesExpired)
	assert.Equal(t, 1, res.ChallengesExpired)

	_, err = h.engine.GetCommunityChallenge(ctx, "c1")
	assert.ErrorIs(t, err, domain.ErrNoActiveChallenge)
	h.drain()
}
