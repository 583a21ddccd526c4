package services

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

func inTx(ctx context.Context, db *pgxpool.Pool, fn func(tx pgx.Tx) error) error {
	tx, err := db.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// lockCoachSchedule serialises schedule writes for one coach until the
// surrounding transaction ends.
func lockCoachSchedule(ctx context.Context, tx pgx.Tx, coachID int64) error {
	_, err := tx.Exec(ctx, "SELECT pg_advisory_xact_lock($1)", coachID)
	return err
}
