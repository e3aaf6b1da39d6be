package repository

import (
	"errors"

	"luckyten/service"

	"github.com/jackc/pgx/v5/pgconn"
)

// Postgres SQLSTATEs that mean the statement lost a race with a concurrent
// transaction and the whole operation should be retried.
const (
	pgSerializationFailure = "40001"
	pgDeadlockDetected     = "40P01"
	pgLockNotAvailable     = "55P03"
)

// translateConcurrency converts serialization, deadlock and lock-timeout
// failures into the service-level conflict type so callers can retry instead
// of reporting an internal error. Other errors pass through unchanged.
func translateConcurrency(err error) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgSerializationFailure, pgDeadlockDetected, pgLockNotAvailable:
			return &service.ConcurrencyConflictError{
				Msg: "operation conflicted with a concurrent update, retry",
			}
		}
	}
	return err
}
