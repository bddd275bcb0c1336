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

const challengeColumns = `id, community_id, goal_co2_kg, current_co2_kg, participant_count, status,
	start_at, end_at, completed_at`

const queryFindActiveChallenge = `SELECT ` + challengeColumns + ` FROM community_challenges
	WHERE community_id = $1 AND status = 'active'`

// The partial unique index admits one active challenge per community
const queryInsertActiveChallenge = `INSERT INTO community_challenges (` + challengeColumns + `)
	VALUES ($1, $2, $3, $4, $5, 'active', $6, $7, NULL)
	ON CONFLICT (community_id) WHERE status = 'active' DO NOTHING`

const queryGetChallengeForUpdate = `SELECT ` + challengeColumns + ` FROM community_challenges
	WHERE id = $1 FOR UPDATE`

const queryInsertChallengeContribution = `INSERT INTO challenge_contributions (challenge_id, action_ref, user_id, co2_kg, created_at)
	VALUES ($1, $2, $3, $4, $5)
	ON CONFLICT (challenge_id, action_ref) DO NOTHING`

const queryInsertChallengeParticipant = `INSERT INTO challenge_participants (challenge_id, user_id)
	VALUES ($1, $2)
	ON CONFLICT (challenge_id, user_id) DO NOTHING`

const queryUpdateChallengeProgress = `UPDATE community_challenges
	SET current_co2_kg = current_co2_kg + $2, participant_count = participant_count + $3
	WHERE id = $1
	RETURNING ` + challengeColumns

const queryCasCompleteChallenge = `UPDATE community_challenges
	SET status = 'completed', completed_at = $3
	WHERE id = $1 AND status = $2`

const queryCloseExpiredChallenge = `UPDATE community_challenges
	SET status = CASE WHEN current_co2_kg >= goal_co2_kg THEN 'completed' ELSE 'failed' END,
		completed_at = CASE WHEN current_co2_kg >= goal_co2_kg THEN end_at ELSE NULL END
	WHERE id = $1 AND status = 'active'`

const queryCompleteReachedChallenges = `UPDATE community_challenges
	SET status = 'completed', completed_at = end_at
	WHERE status = 'active' AND end_at <= $1 AND current_co2_kg >= goal_co2_kg`

const queryFailExpiredChallenges = `UPDATE community_challenges
	SET status = 'failed'
	WHERE status = 'active' AND end_at <= $1`

// ChallengeRepository implements repository.ChallengeRepository on Postgres
type ChallengeRepository struct {
	db *pgxpool.Pool
}

// NewChallengeRepository creates a new ChallengeRepository
func NewChallengeRepository(db *pgxpool.Pool) *ChallengeRepository {
	return &ChallengeRepository{db: db}
}

func scanChallenge(row pgx.Row) (*domain.CommunityChallenge, error) {
	var c domain.CommunityChallenge
	var status string
	err := row.Scan(&c.ID, &c.CommunityID, &c.GoalCo2Kg, &c.CurrentCo2Kg, &c.ParticipantCount, &status,
		&c.StartAt, &c.EndAt, &c.CompletedAt)
	if err != nil {
		return nil, err
	}
	c.Status = domain.Status(status)
	return &c, nil
}

func (r *ChallengeRepository) FindActive(ctx context.Context, communityID string) (*domain.CommunityChallenge, error) {
	c, err := scanChallenge(r.db.QueryRow(ctx, queryFindActiveChallenge, communityID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNoActiveChallenge
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrMsgFailedToFindChallenge, err)
	}
	return c, nil
}

// UpsertActiveIfAbsent retries once when the active challenge closes between the insert and the read
func (r *ChallengeRepository) UpsertActiveIfAbsent(ctx context.Context, initial domain.CommunityChallenge) (*domain.CommunityChallenge, error) {
	for attempt := 0; attempt < 2; attempt++ {
		_, err := r.db.Exec(ctx, queryInsertActiveChallenge,
			initial.ID, initial.CommunityID, initial.GoalCo2Kg, initial.CurrentCo2Kg, initial.ParticipantCount,
			initial.StartAt, initial.EndAt)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", ErrMsgFailedToUpsertChallenge, err)
		}
		c, err := r.FindActive(ctx, initial.CommunityID)
		if errors.Is(err, domain.ErrNoActiveChallenge) {
			continue
		}
		return c, err
	}
	return nil, domain.ErrNoActiveChallenge
}

// ApplyContribution locks the challenge row and adds the contribution once per ref.
// A challenge whose window has ended is closed instead and domain.ErrNoActiveChallenge returned.
func (r *ChallengeRepository) ApplyContribution(ctx context.Context, c domain.ChallengeContribution) (*domain.ChallengeUpdateResult, error) {
	var res *domain.ChallengeUpdateResult
	expired := false
	err := withTx(ctx, r.db, func(tx pgx.Tx) error {
		ch, err := scanChallenge(tx.QueryRow(ctx, queryGetChallengeForUpdate, c.ChallengeID))
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("challenge %s not found", c.ChallengeID)
		}
		if err != nil {
			return fmt.Errorf("%s: %w", ErrMsgFailedToFindChallenge, err)
		}
		if ch.Status != domain.StatusActive {
			res = &domain.ChallengeUpdateResult{Challenge: *ch}
			return nil
		}
		if !c.Now.Before(ch.EndAt) {
			if _, err := tx.Exec(ctx, queryCloseExpiredChallenge, c.ChallengeID); err != nil {
				return fmt.Errorf("%s: %w", ErrMsgFailedToExpireChallenges, err)
			}
			expired = true
			return nil
		}

		tag, err := tx.Exec(ctx, queryInsertChallengeContribution, c.ChallengeID, c.ActionRef, c.UserID, c.Co2Kg, c.Now)
		if err != nil {
			return fmt.Errorf("%s: %w", ErrMsgFailedToApplyChallenge, err)
		}
		if tag.RowsAffected() == 0 {
			res = &domain.ChallengeUpdateResult{Challenge: *ch}
			return nil
		}

		tag, err = tx.Exec(ctx, queryInsertChallengeParticipant, c.ChallengeID, c.UserID)
		if err != nil {
			return fmt.Errorf("%s: %w", ErrMsgFailedToApplyChallenge, err)
		}
		newParticipants := int(tag.RowsAffected())

		updated, err := scanChallenge(tx.QueryRow(ctx, queryUpdateChallengeProgress, c.ChallengeID, c.Co2Kg, newParticipants))
		if err != nil {
			return fmt.Errorf("%s: %w", ErrMsgFailedToApplyChallenge, err)
		}
		res = &domain.ChallengeUpdateResult{Challenge: *updated, Applied: true}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if expired {
		return nil, domain.ErrNoActiveChallenge
	}
	return res, nil
}

func (r *ChallengeRepository) CasComplete(ctx context.Context, challengeID string, expected domain.Status, at time.Time) (bool, error) {
	tag, err := r.db.Exec(ctx, queryCasCompleteChallenge, challengeID, string(expected), at)
	if err != nil {
		return false, fmt.Errorf("%s: %w", ErrMsgFailedToCompleteChallenge, err)
	}
	return tag.RowsAffected() == 1, nil
}

// ExpireBefore completes ended challenges that reached their goal and fails the rest
func (r *ChallengeRepository) ExpireBefore(ctx context.Context, now time.Time) (int, error) {
	failed := 0
	err := withTx(ctx, r.db, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, queryCompleteReachedChallenges, now); err != nil {
			return fmt.Errorf("%s: %w", ErrMsgFailedToExpireChallenges, err)
		}
		tag, err := tx.Exec(ctx, queryFailExpiredChallenges, now)
		if err != nil {
			return fmt.Errorf("%s: %w", ErrMsgFailedToExpireChallenges, err)
		}
		failed = int(tag.RowsAffected())
		return nil
	})
	if err != nil {
		return 0, err
	}
	return failed, nil
}
