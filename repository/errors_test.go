package repository

import (
	"errors"
	"fmt"
	"testing"

	"luckyten/service"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestTranslateConcurrency(t *testing.T) {
	t.Run("serialization failure becomes conflict", func(t *testing.T) {
		pgErr := &pgconn.PgError{Code: "40001", Message: "could not serialize access"}
		err := translateConcurrency(fmt.Errorf("failed to commit transaction: %w", pgErr))

		assert.True(t, service.IsConcurrencyConflict(err))
	})

	t.Run("deadlock becomes conflict", func(t *testing.T) {
		pgErr := &pgconn.PgError{Code: "40P01", Message: "deadlock detected"}
		err := translateConcurrency(fmt.Errorf("failed to get balance for account 1: %w", pgErr))

		assert.True(t, service.IsConcurrencyConflict(err))
	})

	t.Run("lock timeout becomes conflict", func(t *testing.T) {
		pgErr := &pgconn.PgError{Code: "55P03", Message: "could not obtain lock on row"}
		err := translateConcurrency(pgErr)

		assert.True(t, service.IsConcurrencyConflict(err))
	})

	t.Run("other postgres errors pass through", func(t *testing.T) {
		pgErr := &pgconn.PgError{Code: "23505", Message: "duplicate key value"}
		wrapped := fmt.Errorf("failed to create account: %w", pgErr)
		err := translateConcurrency(wrapped)

		assert.Equal(t, wrapped, err)
		assert.False(t, service.IsConcurrencyConflict(err))
	})

	t.Run("plain errors pass through", func(t *testing.T) {
		plain := errors.New("connection refused")
		assert.Equal(t, plain, translateConcurrency(plain))
	})

	t.Run("nil passes through", func(t *testing.T) {
		assert.NoError(t, translateConcurrency(nil))
	})
}
