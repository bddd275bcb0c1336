package memory

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/osse101/EcoRewards_Go/internal/domain"
)

var testNow = time.Date(2024, 2, 14, 10, 0, 0, 0, time.UTC)

func missionRecord(userID, ref string) domain.ActionRecord {
	return domain.ActionRecord{
		UserID:      userID,
		Kind:        domain.ActionKindMission,
		ActionRef:   ref,
		Subject:     ref,
		DateKey:     "2024-02-14",
		CompletedAt: testNow,
	}
}

func fixedReward(points int, co2 float64) domain.RewardFunc {
	return func(in domain.ApplyInput) (domain.ProgressDelta, error) {
		return domain.ProgressDelta{
			Points:  points,
			Co2Kg:   co2,
			Streak:  in.Progress.CurrentStreak + 1,
			Counter: domain.CounterMissions,
		}, nil
	}
}

func TestRecordAction_InsertIfAbsent(t *testing.T) {
	ctx := context.Background()
	repo := NewStore().Progress()

	out, err := repo.RecordAction(ctx, missionRecord("u1", "m1"), fixedReward(14, 2.5))
	require.NoError(t, err)
	assert.True(t, out.Created)
	assert.Equal(t, 14, out.Progress.TotalPoints)
	assert.Equal(t, 2.5, out.Progress.TotalCo2SavedKg)
	assert.Equal(t, 1, out.Progress.CurrentStreak)
	assert.Equal(t, 1, out.Progress.MissionsCompleted)
	assert.Equal(t, 0, out.PreviousStreak)
	assert.False(t, out.Record.Settled)

	again, err := repo.RecordAction(ctx, missionRecord("u1", "m1"), fixedReward(14, 2.5))
	require.NoError(t, err)
	assert.False(t, again.Created)
	assert.Equal(t, 14, again.Progress.TotalPoints)
	assert.Equal(t, 2.5, again.Progress.TotalCo2SavedKg)
}

func TestRecordAction_RewardErrorLeavesNoTrace(t *testing.T) {
	ctx := context.Background()
	repo := NewStore().Progress()

	boom := errors.New("capped")
	_, err := repo.RecordAction(ctx, missionRecord("u1", "m1"), func(domain.ApplyInput) (domain.ProgressDelta, error) {
		return domain.ProgressDelta{}, boom
	})
	assert.ErrorIs(t, err, boom)

	_, err = repo.GetProgress(ctx, "u1")
	assert.ErrorIs(t, err, domain.ErrUserNotFound)

	out, err := repo.RecordAction(ctx, missionRecord("u1", "m1"), fixedReward(10, 1))
	require.NoError(t, err)
	assert.True(t, out.Created)
}

func TestRecordAction_KindCountToday(t *testing.T) {
	ctx := context.Background()
	repo := NewStore().Progress()

	var seen []int
	reward := func(in domain.ApplyInput) (domain.ProgressDelta, error) {
		seen = append(seen, in.KindCountToday)
		return domain.ProgressDelta{Points: 15, Counter: domain.CounterPollutionReports}, nil
	}
	for _, ref := range []string{"r1", "r2", "r3"} {
		rec := domain.ActionRecord{UserID: "u1", Kind: domain.ActionKindPollution, ActionRef: ref, DateKey: "2024-02-14", CompletedAt: testNow}
		_, err := repo.RecordAction(ctx, rec, reward)
		require.NoError(t, err)
	}
	next := domain.ActionRecord{UserID: "u1", Kind: domain.ActionKindPollution, ActionRef: "r4", DateKey: "2024-02-15", CompletedAt: testNow.Add(24 * time.Hour)}
	_, err := repo.RecordAction(ctx, next, reward)
	require.NoError(t, err)

	assert.Equal(t, []int{0, 1, 2, 0}, seen)
}

func TestRecordAction_ConcurrentDuplicatesAwardOnce(t *testing.T) {
	ctx := context.Background()
	repo := NewStore().Progress()

	const workers = 50
	var wg sync.WaitGroup
	var mu sync.Mutex
	created := 0
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			out, err := repo.RecordAction(ctx, missionRecord("u1", "m1"), fixedReward(10, 1))
			if err != nil {
				t.Error(err)
				return
			}
			if out.Created {
				mu.Lock()
				created++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, created)
	p, err := repo.GetProgress(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 10, p.TotalPoints)
}

func TestMarkSettled(t *testing.T) {
	ctx := context.Background()
	repo := NewStore().Progress()

	_, err := repo.RecordAction(ctx, missionRecord("u1", "m1"), fixedReward(10, 1))
	require.NoError(t, err)
	require.NoError(t, repo.MarkSettled(ctx, "u1", domain.ActionKindMission, "m1"))

	out, err := repo.RecordAction(ctx, missionRecord("u1", "m1"), fixedReward(10, 1))
	require.NoError(t, err)
	assert.False(t, out.Created)
	assert.True(t, out.Record.Settled)
}

func TestAwardBadges_SetAdd(t *testing.T) {
	ctx := context.Background()
	repo := NewStore().Progress()

	added, err := repo.AwardBadges(ctx, "u1", []string{"first-mission", "bronze-10kg"}, testNow)
	require.NoError(t, err)
	assert.Equal(t, []string{"first-mission", "bronze-10kg"}, added)

	added, err = repo.AwardBadges(ctx, "u1", []string{"bronze-10kg", "streak-7"}, testNow)
	require.NoError(t, err)
	assert.Equal(t, []string{"streak-7"}, added)

	p, err := repo.GetProgress(ctx, "u1")
	require.NoError(t, err)
	assert.Len(t, p.Badges, 3)
}

func TestClaimBonus_Once(t *testing.T) {
	ctx := context.Background()
	repo := NewStore().Progress()

	ok, err := repo.ClaimBonus(ctx, "u1", "streak_7:2024-02-14", 100, testNow)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.ClaimBonus(ctx, "u1", "streak_7:2024-02-14", 100, testNow)
	require.NoError(t, err)
	assert.False(t, ok)

	p, err := repo.GetProgress(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 100, p.TotalPoints)
}

func TestMissionHistoryQueries(t *testing.T) {
	ctx := context.Background()
	repo := NewStore().Progress()

	for _, id := range []string{"m1", "m2", "m3"} {
		_, err := repo.RecordAction(ctx, missionRecord("u1", id), fixedReward(1, 0))
		require.NoError(t, err)
	}
	other := missionRecord("u1", "m4")
	other.DateKey = "2024-02-15"
	other.CompletedAt = testNow.Add(24 * time.Hour)
	_, err := repo.RecordAction(ctx, other, fixedReward(1, 0))
	require.NoError(t, err)

	onDay, err := repo.MissionRefsOnDay(ctx, "u1", "2024-02-14")
	require.NoError(t, err)
	assert.Equal(t, []string{"m1", "m2", "m3"}, onDay)

	recent, err := repo.RecentMissionIDs(ctx, "u1", "2024-02-16", 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"m4", "m3"}, recent)

	recent, err = repo.RecentMissionIDs(ctx, "u1", "2024-02-15", 5)
	require.NoError(t, err)
	assert.Equal(t, []string{"m3", "m2", "m1"}, recent)

	users, err := repo.ActiveUsersSince(ctx, testNow.Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, []string{"u1"}, users)
}

func newMilestone(id string, target float64) domain.RecurringMilestone {
	return domain.RecurringMilestone{
		ID:          id,
		UserID:      "u1",
		Type:        domain.MilestoneWeeklyCo2,
		PeriodKey:   "2024-W07",
		Period:      domain.PeriodWeekly,
		Goal:        domain.MilestoneGoal{TargetValue: target, Unit: "kg"},
		Reward:      domain.MilestoneReward{BonusPoints: 50},
		Status:      domain.StatusActive,
		PeriodStart: time.Date(2024, 2, 12, 0, 0, 0, 0, time.UTC),
		PeriodEnd:   time.Date(2024, 2, 19, 0, 0, 0, 0, time.UTC),
	}
}

func TestMilestone_UpsertIfAbsentKeepsFirst(t *testing.T) {
	ctx := context.Background()
	repo := NewStore().Milestones()

	first, err := repo.UpsertIfAbsent(ctx, newMilestone("a", 50))
	require.NoError(t, err)
	second, err := repo.UpsertIfAbsent(ctx, newMilestone("b", 99))
	require.NoError(t, err)

	assert.Equal(t, "a", first.ID)
	assert.Equal(t, "a", second.ID)
	assert.Equal(t, float64(50), second.Goal.TargetValue)
}

func TestMilestone_ApplyProgressDedupesRef(t *testing.T) {
	ctx := context.Background()
	repo := NewStore().Milestones()
	_, err := repo.UpsertIfAbsent(ctx, newMilestone("a", 50))
	require.NoError(t, err)

	res, err := repo.ApplyProgress(ctx, domain.MilestoneUpdate{MilestoneID: "a", Amount: 20, ActionRef: "r1"})
	require.NoError(t, err)
	assert.True(t, res.Applied)
	assert.Equal(t, float64(20), res.Milestone.Progress.CurrentValue)
	assert.Equal(t, 40, res.Milestone.Progress.PercentComplete)

	res, err = repo.ApplyProgress(ctx, domain.MilestoneUpdate{MilestoneID: "a", Amount: 20, ActionRef: "r1"})
	require.NoError(t, err)
	assert.False(t, res.Applied)
	assert.Equal(t, float64(20), res.Milestone.Progress.CurrentValue)
}

func TestMilestone_GaugeKeepsMax(t *testing.T) {
	ctx := context.Background()
	repo := NewStore().Milestones()
	_, err := repo.UpsertIfAbsent(ctx, newMilestone("a", 7))
	require.NoError(t, err)

	for i, v := range []float64{3, 5, 2} {
		_, err := repo.ApplyProgress(ctx, domain.MilestoneUpdate{MilestoneID: "a", Amount: v, Gauge: true, ActionRef: string(rune('a' + i))})
		require.NoError(t, err)
	}
	active, err := repo.FindActive(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, float64(5), active[0].Progress.CurrentValue)
}

func TestMilestone_CasCompleteGrantsRewardOnce(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	repo := s.Milestones()
	m := newMilestone("a", 50)
	m.Reward.BadgeID = "climate-guardian"
	_, err := repo.UpsertIfAbsent(ctx, m)
	require.NoError(t, err)

	var wg sync.WaitGroup
	var mu sync.Mutex
	wins := 0
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			won, err := repo.CasComplete(ctx, "a", domain.StatusActive, testNow)
			if err != nil {
				t.Error(err)
				return
			}
			if won {
				mu.Lock()
				wins++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, wins)
	p, err := s.Progress().GetProgress(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 50, p.TotalPoints)
	assert.True(t, p.OwnedBadges()["climate-guardian"])

	n, err := repo.CountCompleted(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	res, err := repo.ApplyProgress(ctx, domain.MilestoneUpdate{MilestoneID: "a", Amount: 10, ActionRef: "late"})
	require.NoError(t, err)
	assert.False(t, res.Applied)
	assert.Equal(t, 100, res.Milestone.Progress.PercentComplete)
}

func TestMilestone_ExpireBefore(t *testing.T) {
	ctx := context.Background()
	repo := NewStore().Milestones()
	_, err := repo.UpsertIfAbsent(ctx, newMilestone("a", 50))
	require.NoError(t, err)

	n, err := repo.ExpireBefore(ctx, time.Date(2024, 2, 18, 23, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	n, err = repo.ExpireBefore(ctx, time.Date(2024, 2, 19, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	n, err = repo.ExpireBefore(ctx, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	won, err := repo.CasComplete(ctx, "a", domain.StatusActive, testNow)
	require.NoError(t, err)
	assert.False(t, won)
}

func newChallenge(id, community string, goal float64) domain.CommunityChallenge {
	return domain.CommunityChallenge{
		ID:          id,
		CommunityID: community,
		GoalCo2Kg:   goal,
		Status:      domain.StatusActive,
		StartAt:     testNow,
		EndAt:       testNow.Add(30 * 24 * time.Hour),
	}
}

func TestChallenge_OneActivePerCommunity(t *testing.T) {
	ctx := context.Background()
	repo := NewStore().Challenges()

	_, err := repo.FindActive(ctx, "c1")
	assert.ErrorIs(t, err, domain.ErrNoActiveChallenge)

	first, err := repo.UpsertActiveIfAbsent(ctx, newChallenge("a", "c1", 1000))
	require.NoError(t, err)
	second, err := repo.UpsertActiveIfAbsent(ctx, newChallenge("b", "c1", 1000))
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
}

func TestChallenge_ContributionsAndParticipants(t *testing.T) {
	ctx := context.Background()
	repo := NewStore().Challenges()
	_, err := repo.UpsertActiveIfAbsent(ctx, newChallenge("a", "c1", 1000))
	require.NoError(t, err)

	contribs := []domain.ChallengeContribution{
		{ChallengeID: "a", UserID: "u1", Co2Kg: 10, ActionRef: "r1"},
		{ChallengeID: "a", UserID: "u1", Co2Kg: 5, ActionRef: "r2"},
		{ChallengeID: "a", UserID: "u2", Co2Kg: 1, ActionRef: "r3"},
		{ChallengeID: "a", UserID: "u1", Co2Kg: 10, ActionRef: "r1"},
	}
	var last *domain.ChallengeUpdateResult
	for _, c := range contribs {
		last, err = repo.ApplyContribution(ctx, c)
		require.NoError(t, err)
	}
	assert.False(t, last.Applied)
	assert.Equal(t, float64(16), last.Challenge.CurrentCo2Kg)
	assert.Equal(t, 2, last.Challenge.ParticipantCount)
}

func TestChallenge_CompletionFreesActiveSlot(t *testing.T) {
	ctx := context.Background()
	repo := NewStore().Challenges()
	_, err := repo.UpsertActiveIfAbsent(ctx, newChallenge("a", "c1", 1000))
	require.NoError(t, err)

	won, err := repo.CasComplete(ctx, "a", domain.StatusActive, testNow)
	require.NoError(t, err)
	assert.True(t, won)
	won, err = repo.CasComplete(ctx, "a", domain.StatusActive, testNow)
	require.NoError(t, err)
	assert.False(t, won)

	_, err = repo.FindActive(ctx, "c1")
	assert.ErrorIs(t, err, domain.ErrNoActiveChallenge)

	next, err := repo.UpsertActiveIfAbsent(ctx, newChallenge("b", "c1", 1000))
	require.NoError(t, err)
	assert.Equal(t, "b", next.ID)
}

func TestChallenge_ContributionAfterEndClosesChallenge(t *testing.T) {
	ctx := context.Background()
	end := testNow.Add(30 * 24 * time.Hour)

	tests := []struct {
		name       string
		prior      float64
		wantStatus domain.Status
	}{
		{"under goal fails", 950, domain.StatusFailed},
		{"goal reached completes at end", 1000, domain.StatusCompleted},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := NewStore()
			repo := store.Challenges()
			_, err := repo.UpsertActiveIfAbsent(ctx, newChallenge("a", "c1", 1000))
			require.NoError(t, err)
			_, err = repo.ApplyContribution(ctx, domain.ChallengeContribution{
				ChallengeID: "a", UserID: "u1", Co2Kg: tt.prior, ActionRef: "r1", Now: testNow,
			})
			require.NoError(t, err)

			res, err := repo.ApplyContribution(ctx, domain.ChallengeContribution{
				ChallengeID: "a", UserID: "u2", Co2Kg: 60, ActionRef: "r2", Now: end,
			})
			assert.ErrorIs(t, err, domain.ErrNoActiveChallenge)
			assert.Nil(t, res)

			ch := store.challenges["a"]
			assert.Equal(t, tt.wantStatus, ch.Status)
			assert.Equal(t, tt.prior, ch.CurrentCo2Kg)
			if tt.wantStatus == domain.StatusCompleted {
				require.NotNil(t, ch.CompletedAt)
				assert.Equal(t, end, *ch.CompletedAt)
			} else {
				assert.Nil(t, ch.CompletedAt)
			}

			_, err = repo.FindActive(ctx, "c1")
			assert.ErrorIs(t, err, domain.ErrNoActiveChallenge)
			failed, err := repo.ExpireBefore(ctx, end.Add(24*time.Hour))
			require.NoError(t, err)
			assert.Equal(t, 0, failed)
		})
	}
}

func TestChallenge_ExpireBefore(t *testing.T) {
	ctx := context.Background()
	repo := NewStore().Challenges()
	_, err := repo.UpsertActiveIfAbsent(ctx, newChallenge("under", "c1", 1000))
	require.NoError(t, err)
	_, err = repo.UpsertActiveIfAbsent(ctx, newChallenge("later", "c2", 1000))
	require.NoError(t, err)

	failed, err := repo.ExpireBefore(ctx, testNow.Add(30*24*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 2, failed)

	failed, err = repo.ExpireBefore(ctx, testNow.Add(60*24*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 0, failed)
}

func TestDirectory(t *testing.T) {
	ctx := context.Background()
	d := NewStore().Directory()

	c, err := d.CommunityOf(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, c)

	d.SetCommunity("u1", "c1")
	c, err = d.CommunityOf(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "c1", c)

	_, err = d.VehicleClass(ctx, "v1")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	d.RegisterVehicle("v1", domain.VehicleClassElectric)
	class, err := d.VehicleClass(ctx, "v1")
	require.NoError(t, err)
	assert.Equal(t, domain.VehicleClassElectric, class)

	sig, err := d.DailySignal(ctx, "u1", "2024-02-14")
	require.NoError(t, err)
	assert.Equal(t, domain.DailySignal{}, *sig)

	d.AddDeviceToken("u1", "tok")
	d.AddDeviceToken("u1", "tok")
	tokens, err := d.TokensFor(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, []string{"tok"}, tokens)
}
