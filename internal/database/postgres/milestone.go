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

const milestoneColumns = `id, user_id, milestone_type, period_key, period, target_value, unit, label,
	current_value, percent_complete, bonus_points, badge_id, status, period_start, period_end,
	completed_at, created_at`

const queryFindActiveMilestones = `SELECT ` + milestoneColumns + ` FROM recurring_milestones
	WHERE user_id = $1 AND status = 'active'
	ORDER BY period_end, milestone_type`

const queryInsertMilestone = `INSERT INTO recurring_milestones (` + milestoneColumns + `)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
	ON CONFLICT (user_id, milestone_type, period_key) DO NOTHING`

const queryGetMilestoneByKey = `SELECT ` + milestoneColumns + ` FROM recurring_milestones
	WHERE user_id = $1 AND milestone_type = $2 AND period_key = $3`

const queryGetMilestoneForUpdate = `SELECT ` + milestoneColumns + ` FROM recurring_milestones
	WHERE id = $1 FOR UPDATE`

const queryInsertMilestoneContribution = `INSERT INTO milestone_contributions (milestone_id, action_ref, amount, created_at)
	VALUES ($1, $2, $3, $4)
	ON CONFLICT (milestone_id, action_ref) DO NOTHING`

const queryUpdateMilestoneProgress = `UPDATE recurring_milestones
	SET current_value = $2, percent_complete = $3
	WHERE id = $1`

const queryCasCompleteMilestone = `UPDATE recurring_milestones
	SET status = 'completed', completed_at = $3, percent_complete = 100
	WHERE id = $1 AND status = $2
	RETURNING user_id, bonus_points, badge_id`

const queryCountCompletedMilestones = `SELECT COUNT(*) FROM recurring_milestones
	WHERE user_id = $1 AND status = 'completed'`

const queryExpireMilestones = `UPDATE recurring_milestones
	SET status = 'failed'
	WHERE status = 'active' AND period_end <= $1`

// MilestoneRepository implements repository.MilestoneRepository on Postgres
type MilestoneRepository struct {
	db *pgxpool.Pool
}

// NewMilestoneRepository creates a new MilestoneRepository
func NewMilestoneRepository(db *pgxpool.Pool) *MilestoneRepository {
	return &MilestoneRepository{db: db}
}

func scanMilestone(row pgx.Row) (*domain.RecurringMilestone, error) {
	var m domain.RecurringMilestone
	var milestoneType, period, status string
	err := row.Scan(&m.ID, &m.UserID, &milestoneType, &m.PeriodKey, &period,
		&m.Goal.TargetValue, &m.Goal.Unit, &m.Goal.Label,
		&m.Progress.CurrentValue, &m.Progress.PercentComplete,
		&m.Reward.BonusPoints, &m.Reward.BadgeID, &status,
		&m.PeriodStart, &m.PeriodEnd, &m.CompletedAt, &m.CreatedAt)
	if err != nil {
		return nil, err
	}
	m.Type = domain.MilestoneType(milestoneType)
	m.Period = domain.Period(period)
	m.Status = domain.Status(status)
	return &m, nil
}

func (r *MilestoneRepository) FindActive(ctx context.Context, userID string) ([]domain.RecurringMilestone, error) {
	rows, err := r.db.Query(ctx, queryFindActiveMilestones, userID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrMsgFailedToFindMilestones, err)
	}
	defer rows.Close()

	var out []domain.RecurringMilestone
	for rows.Next() {
		m, err := scanMilestone(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", ErrMsgFailedToFindMilestones, err)
		}
		out = append(out, *m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", ErrMsgFailedToFindMilestones, err)
	}
	return out, nil
}

func (r *MilestoneRepository) UpsertIfAbsent(ctx context.Context, initial domain.RecurringMilestone) (*domain.RecurringMilestone, error) {
	m := initial
	_, err := r.db.Exec(ctx, queryInsertMilestone,
		m.ID, m.UserID, string(m.Type), m.PeriodKey, string(m.Period),
		m.Goal.TargetValue, m.Goal.Unit, m.Goal.Label,
		m.Progress.CurrentValue, m.Progress.PercentComplete,
		m.Reward.BonusPoints, m.Reward.BadgeID, string(m.Status),
		m.PeriodStart, m.PeriodEnd, m.CompletedAt, m.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrMsgFailedToUpsertMilestone, err)
	}

	stored, err := scanMilestone(r.db.QueryRow(ctx, queryGetMilestoneByKey, m.UserID, string(m.Type), m.PeriodKey))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrMsgFailedToGetMilestone, err)
	}
	return stored, nil
}

// ApplyProgress locks the milestone row, records the ref and writes the new value
func (r *MilestoneRepository) ApplyProgress(ctx context.Context, u domain.MilestoneUpdate) (*domain.MilestoneUpdateResult, error) {
	var res *domain.MilestoneUpdateResult
	err := withTx(ctx, r.db, func(tx pgx.Tx) error {
		m, err := scanMilestone(tx.QueryRow(ctx, queryGetMilestoneForUpdate, u.MilestoneID))
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("milestone %s not found", u.MilestoneID)
		}
		if err != nil {
			return fmt.Errorf("%s: %w", ErrMsgFailedToGetMilestone, err)
		}
		if m.Status != domain.StatusActive {
			res = &domain.MilestoneUpdateResult{Milestone: *m}
			return nil
		}

		tag, err := tx.Exec(ctx, queryInsertMilestoneContribution, u.MilestoneID, u.ActionRef, u.Amount, u.Now)
		if err != nil {
			return fmt.Errorf("%s: %w", ErrMsgFailedToApplyMilestone, err)
		}
		if tag.RowsAffected() == 0 {
			res = &domain.MilestoneUpdateResult{Milestone: *m}
			return nil
		}

		if u.Gauge {
			if u.Amount > m.Progress.CurrentValue {
				m.Progress.CurrentValue = u.Amount
			}
		} else {
			m.Progress.CurrentValue += u.Amount
		}
		m.Progress.PercentComplete = domain.PercentComplete(m.Progress.CurrentValue, m.Goal.TargetValue)

		if _, err := tx.Exec(ctx, queryUpdateMilestoneProgress, m.ID, m.Progress.CurrentValue, m.Progress.PercentComplete); err != nil {
			return fmt.Errorf("%s: %w", ErrMsgFailedToApplyMilestone, err)
		}
		res = &domain.MilestoneUpdateResult{Milestone: *m, Applied: true}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

// CasComplete flips the status and credits the reward in one transaction
func (r *MilestoneRepository) CasComplete(ctx context.Context, milestoneID string, expected domain.Status, at time.Time) (bool, error) {
	won := false
	err := withTx(ctx, r.db, func(tx pgx.Tx) error {
		var userID, badgeID string
		var bonus int
		err := tx.QueryRow(ctx, queryCasCompleteMilestone, milestoneID, string(expected), at).Scan(&userID, &bonus, &badgeID)
		if errors.Is(err, pgx.ErrNoRows) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("%s: %w", ErrMsgFailedToCompleteMilestone, err)
		}

		if err := creditPoints(ctx, tx, userID, bonus, at); err != nil {
			return err
		}
		if badgeID != "" {
			if _, err := insertBadges(ctx, tx, userID, []string{badgeID}, at); err != nil {
				return err
			}
		}
		won = true
		return nil
	})
	if err != nil {
		return false, err
	}
	return won, nil
}

func (r *MilestoneRepository) CountCompleted(ctx context.Context, userID string) (int, error) {
	var n int
	if err := r.db.QueryRow(ctx, queryCountCompletedMilestones, userID).Scan(&n); err != nil {
		return 0, fmt.Errorf("%s: %w", ErrMsgFailedToCountMilestones, err)
	}
	return n, nil
}

func (r *MilestoneRepository) ExpireBefore(ctx context.Context, now time.Time) (int, error) {
	tag, err := r.db.Exec(ctx, queryExpireMilestones, now)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", ErrMsgFailedToExpireMilestones, err)
	}
	return int(tag.RowsAffected()), nil
}
