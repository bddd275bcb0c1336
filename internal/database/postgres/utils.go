package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/osse101/EcoRewards_Go/internal/logger"
)

// querier is satisfied by *pgxpool.Pool and pgx.Tx
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// SafeRollback rolls back a transaction and logs any error that isn't ErrTxClosed
func SafeRollback(ctx context.Context, tx pgx.Tx) {
	if err := tx.Rollback(ctx); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
		logger.FromContext(ctx).Error("Failed to rollback transaction", "error", err)
	}
}

// withTx runs fn in a transaction and commits when fn returns nil
func withTx(ctx context.Context, db *pgxpool.Pool, fn func(tx pgx.Tx) error) error {
	tx, err := db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("%s: %w", ErrMsgFailedToBeginTransaction, err)
	}
	defer SafeRollback(ctx, tx)

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("%s: %w", ErrMsgFailedToCommitTransaction, err)
	}
	return nil
}

// lockUser serializes writers of one user's aggregate until the transaction ends
func lockUser(ctx context.Context, tx pgx.Tx, userID string) error {
	if _, err := tx.Exec(ctx, queryAdvisoryLock, userID); err != nil {
		return fmt.Errorf("%s: %w", ErrMsgFailedToLockUser, err)
	}
	return nil
}

// ensureProgressRow creates an empty aggregate so badge rows can reference it
func ensureProgressRow(ctx context.Context, q querier, userID string, at any) error {
	if _, err := q.Exec(ctx, queryEnsureProgress, userID, at); err != nil {
		return fmt.Errorf("%s: %w", ErrMsgFailedToUpdateProgress, err)
	}
	return nil
}

// creditPoints adds points to the aggregate, creating it when absent
func creditPoints(ctx context.Context, q querier, userID string, points int, at any) error {
	if _, err := q.Exec(ctx, queryCreditPoints, userID, points, at); err != nil {
		return fmt.Errorf("%s: %w", ErrMsgFailedToUpdateProgress, err)
	}
	return nil
}

// insertBadges set-adds badges and returns the ids that were new
func insertBadges(ctx context.Context, q querier, userID string, badgeIDs []string, at any) ([]string, error) {
	var added []string
	for _, id := range badgeIDs {
		if id == "" {
			continue
		}
		tag, err := q.Exec(ctx, queryInsertBadge, userID, id, at)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", ErrMsgFailedToAwardBadges, err)
		}
		if tag.RowsAffected() == 1 {
			added = append(added, id)
		}
	}
	return added, nil
}
