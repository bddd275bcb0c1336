package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/osse101/EcoRewards_Go/internal/domain"
)

// ProgressRepository implements repository.ProgressRepository on Postgres
type ProgressRepository struct {
	db *pgxpool.Pool
}

// NewProgressRepository creates a new ProgressRepository
func NewProgressRepository(db *pgxpool.Pool) *ProgressRepository {
	return &ProgressRepository{db: db}
}

func scanProgress(row pgx.Row) (*domain.UserProgress, error) {
	var p domain.UserProgress
	err := row.Scan(&p.UserID, &p.TotalPoints, &p.TotalCo2SavedKg, &p.CurrentStreak, &p.LongestStreak,
		&p.LastActiveDateKey, &p.MissionsCompleted, &p.ComplianceOnTime, &p.PollutionReports,
		&p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func scanAction(row pgx.Row) (*domain.ActionRecord, error) {
	var rec domain.ActionRecord
	var kind string
	err := row.Scan(&rec.UserID, &kind, &rec.ActionRef, &rec.Subject, &rec.DateKey, &rec.PointsAwarded,
		&rec.Co2SavedAwarded, &rec.StreakAfter, &rec.CompletedAt, &rec.Settled)
	if err != nil {
		return nil, err
	}
	rec.Kind = domain.ActionKind(kind)
	return &rec, nil
}

// loadProgress reads the aggregate with its badges; found is false when the user never acted
func loadProgress(ctx context.Context, q querier, userID string) (p *domain.UserProgress, found bool, err error) {
	p, err = scanProgress(q.QueryRow(ctx, queryGetProgress, userID))
	if errors.Is(err, pgx.ErrNoRows) {
		return &domain.UserProgress{UserID: userID, Badges: []domain.BadgeAward{}}, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("%s: %w", ErrMsgFailedToGetProgress, err)
	}

	rows, err := q.Query(ctx, queryGetBadges, userID)
	if err != nil {
		return nil, false, fmt.Errorf("%s: %w", ErrMsgFailedToGetBadges, err)
	}
	defer rows.Close()

	p.Badges = []domain.BadgeAward{}
	for rows.Next() {
		var b domain.BadgeAward
		if err := rows.Scan(&b.BadgeID, &b.EarnedAt); err != nil {
			return nil, false, fmt.Errorf("%s: %w", ErrMsgFailedToGetBadges, err)
		}
		p.Badges = append(p.Badges, b)
	}
	if err := rows.Err(); err != nil {
		return nil, false, fmt.Errorf("%s: %w", ErrMsgFailedToGetBadges, err)
	}
	return p, true, nil
}

// GetProgress returns domain.ErrUserNotFound when the user never acted
func (r *ProgressRepository) GetProgress(ctx context.Context, userID string) (*domain.UserProgress, error) {
	p, found, err := loadProgress(ctx, r.db, userID)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, domain.ErrUserNotFound
	}
	return p, nil
}

// RecordAction inserts the record and applies its delta in one transaction.
// The per-user advisory lock is held while reward runs, so the streak and the
// per-day count it sees cannot change underneath it.
func (r *ProgressRepository) RecordAction(ctx context.Context, rec domain.ActionRecord, reward domain.RewardFunc) (*domain.RecordOutcome, error) {
	var out *domain.RecordOutcome
	err := withTx(ctx, r.db, func(tx pgx.Tx) error {
		if err := lockUser(ctx, tx, rec.UserID); err != nil {
			return err
		}

		current, _, err := loadProgress(ctx, tx, rec.UserID)
		if err != nil {
			return err
		}

		existing, err := scanAction(tx.QueryRow(ctx, queryGetAction, rec.UserID, string(rec.Kind), rec.ActionRef))
		switch {
		case err == nil:
			out = &domain.RecordOutcome{Record: *existing, Progress: *current, Created: false}
			return nil
		case !errors.Is(err, pgx.ErrNoRows):
			return fmt.Errorf("%s: %w", ErrMsgFailedToGetAction, err)
		}

		in := domain.ApplyInput{Progress: *current}
		if err := tx.QueryRow(ctx, queryCountKindOnDay, rec.UserID, string(rec.Kind), rec.DateKey).Scan(&in.KindCountToday); err != nil {
			return fmt.Errorf("%s: %w", ErrMsgFailedToCountActions, err)
		}

		delta, err := reward(in)
		if err != nil {
			return err
		}

		var missions, compliance, reports int
		switch delta.Counter {
		case domain.CounterMissions:
			missions = 1
		case domain.CounterComplianceOnTime:
			compliance = 1
		case domain.CounterPollutionReports:
			reports = 1
		}
		activeDay := ""
		if delta.Streak > 0 {
			activeDay = rec.DateKey
		}

		updated, err := scanProgress(tx.QueryRow(ctx, queryApplyDelta,
			rec.UserID, delta.Points, delta.Co2Kg, delta.Streak, activeDay,
			missions, compliance, reports, rec.CompletedAt))
		if err != nil {
			return fmt.Errorf("%s: %w", ErrMsgFailedToUpdateProgress, err)
		}
		updated.Badges = current.Badges

		rec.PointsAwarded = delta.Points
		rec.Co2SavedAwarded = delta.Co2Kg
		rec.StreakAfter = updated.CurrentStreak
		rec.Settled = false
		if _, err := tx.Exec(ctx, queryInsertAction,
			rec.UserID, string(rec.Kind), rec.ActionRef, rec.Subject, rec.DateKey,
			rec.PointsAwarded, rec.Co2SavedAwarded, rec.StreakAfter, rec.CompletedAt); err != nil {
			return fmt.Errorf("%s: %w", ErrMsgFailedToInsertAction, err)
		}

		out = &domain.RecordOutcome{
			Record:         rec,
			Progress:       *updated,
			PreviousStreak: current.CurrentStreak,
			Created:        true,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *ProgressRepository) MarkSettled(ctx context.Context, userID string, kind domain.ActionKind, actionRef string) error {
	if _, err := r.db.Exec(ctx, queryMarkSettled, userID, string(kind), actionRef); err != nil {
		return fmt.Errorf("%s: %w", ErrMsgFailedToSettleAction, err)
	}
	return nil
}

func (r *ProgressRepository) AwardBadges(ctx context.Context, userID string, badgeIDs []string, at time.Time) ([]string, error) {
	var added []string
	err := withTx(ctx, r.db, func(tx pgx.Tx) error {
		if err := ensureProgressRow(ctx, tx, userID, at); err != nil {
			return err
		}
		var err error
		added, err = insertBadges(ctx, tx, userID, badgeIDs, at)
		if err != nil {
			return err
		}
		if len(added) > 0 {
			if _, err := tx.Exec(ctx, queryTouchProgress, userID, at); err != nil {
				return fmt.Errorf("%s: %w", ErrMsgFailedToUpdateProgress, err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return added, nil
}

func (r *ProgressRepository) ClaimBonus(ctx context.Context, userID, claimKey string, points int, at time.Time) (bool, error) {
	claimed := false
	err := withTx(ctx, r.db, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, queryInsertBonusClaim, userID, claimKey, points, at)
		if err != nil {
			return fmt.Errorf("%s: %w", ErrMsgFailedToClaimBonus, err)
		}
		if tag.RowsAffected() == 0 {
			return nil
		}
		if err := creditPoints(ctx, tx, userID, points, at); err != nil {
			return err
		}
		claimed = true
		return nil
	})
	if err != nil {
		return false, err
	}
	return claimed, nil
}

func (r *ProgressRepository) MissionRefsOnDay(ctx context.Context, userID, dateKey string) ([]string, error) {
	ids, err := collectStrings(ctx, r.db, queryMissionSubjectsOnDay, userID, dateKey)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrMsgFailedToListMissionRefs, err)
	}
	return ids, nil
}

func (r *ProgressRepository) RecentMissionIDs(ctx context.Context, userID, beforeDateKey string, limit int) ([]string, error) {
	ids, err := collectStrings(ctx, r.db, queryRecentMissionSubjects, userID, beforeDateKey, limit)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrMsgFailedToListMissionRefs, err)
	}
	return ids, nil
}

func (r *ProgressRepository) ActiveUsersSince(ctx context.Context, since time.Time) ([]string, error) {
	ids, err := collectStrings(ctx, r.db, queryActiveUsersSince, since)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrMsgFailedToListActiveUsers, err)
	}
	return ids, nil
}

func collectStrings(ctx context.Context, q querier, sql string, args ...any) ([]string, error) {
	rows, err := q.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowTo[string])
}
