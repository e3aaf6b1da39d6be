package repository

import (
	"context"
	"fmt"

	"luckyten/database"
	"luckyten/models"
	"luckyten/service"

	"github.com/jackc/pgx/v5"
)

// BalanceRepository implements the BalanceRepository interface
type BalanceRepository struct {
	q queryable
}

// NewBalanceRepository creates a new balance repository
func NewBalanceRepository(db *database.DB) *BalanceRepository {
	return &BalanceRepository{q: db.Pool}
}

// newBalanceRepositoryWithTx creates a new balance repository with a transaction
func newBalanceRepositoryWithTx(tx queryable) *BalanceRepository {
	return &BalanceRepository{q: tx}
}

// bucketColumn maps a bucket to its column. Bucket names are a closed set;
// anything else is a programming error, never user input.
func bucketColumn(bucket models.Bucket) (string, error) {
	switch bucket {
	case models.BucketFrozen:
		return "frozen", nil
	case models.BucketBasic:
		return "basic", nil
	case models.BucketPro:
		return "pro", nil
	case models.BucketCash:
		return "cash", nil
	}
	return "", fmt.Errorf("unknown bucket %q", bucket)
}

func (r *BalanceRepository) get(ctx context.Context, accountID int64, forUpdate bool) (*models.Balance, error) {
	query := `
		SELECT id, account_id, frozen, basic, pro, cash, updated_at
		FROM balances
		WHERE account_id = $1
	`
	if forUpdate {
		query += ` FOR UPDATE`
	}

	var balance models.Balance
	err := r.q.QueryRow(ctx, query, accountID).Scan(
		&balance.ID,
		&balance.AccountID,
		&balance.Frozen,
		&balance.Basic,
		&balance.Pro,
		&balance.Cash,
		&balance.UpdatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, fmt.Errorf("balance for account %d not found", accountID)
	}
	if err != nil {
		return nil, translateConcurrency(fmt.Errorf("failed to get balance for account %d: %w", accountID, err))
	}
	return &balance, nil
}

// GetByAccount retrieves the balance row for an account
func (r *BalanceRepository) GetByAccount(ctx context.Context, accountID int64) (*models.Balance, error) {
	return r.get(ctx, accountID, false)
}

// GetByAccountForUpdate retrieves the balance row with a row lock,
// serializing concurrent mutations against the same account
func (r *BalanceRepository) GetByAccountForUpdate(ctx context.Context, accountID int64) (*models.Balance, error) {
	return r.get(ctx, accountID, true)
}

// Create inserts a new balance row
func (r *BalanceRepository) Create(ctx context.Context, balance *models.Balance) error {
	query := `
		INSERT INTO balances (account_id, frozen, basic, pro, cash)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, updated_at
	`

	err := r.q.QueryRow(ctx, query,
		balance.AccountID,
		balance.Frozen,
		balance.Basic,
		balance.Pro,
		balance.Cash,
	).Scan(&balance.ID, &balance.UpdatedAt)

	if err != nil {
		return fmt.Errorf("failed to create balance for account %d: %w", balance.AccountID, err)
	}
	return nil
}

// Credit adds amount to the named bucket atomically
func (r *BalanceRepository) Credit(ctx context.Context, accountID int64, bucket models.Bucket, amount int64) error {
	if amount <= 0 {
		return fmt.Errorf("amount must be positive")
	}
	column, err := bucketColumn(bucket)
	if err != nil {
		return err
	}

	query := fmt.Sprintf(`
		UPDATE balances
		SET %s = %s + $1, updated_at = NOW()
		WHERE account_id = $2
	`, column, column)

	result, err := r.q.Exec(ctx, query, amount, accountID)
	if err != nil {
		return translateConcurrency(fmt.Errorf("failed to credit %s for account %d: %w", bucket, accountID, err))
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("balance for account %d not found", accountID)
	}
	return nil
}

// Debit subtracts amount from the named bucket. The update is guarded so the
// bucket can never go negative even under concurrent writers.
func (r *BalanceRepository) Debit(ctx context.Context, accountID int64, bucket models.Bucket, amount int64) error {
	if amount <= 0 {
		return fmt.Errorf("amount must be positive")
	}
	column, err := bucketColumn(bucket)
	if err != nil {
		return err
	}

	query := fmt.Sprintf(`
		UPDATE balances
		SET %s = %s - $1, updated_at = NOW()
		WHERE account_id = $2 AND %s >= $1
	`, column, column, column)

	result, err := r.q.Exec(ctx, query, amount, accountID)
	if err != nil {
		return translateConcurrency(fmt.Errorf("failed to debit %s for account %d: %w", bucket, accountID, err))
	}
	if result.RowsAffected() == 0 {
		balance, err := r.GetByAccount(ctx, accountID)
		if err != nil {
			return fmt.Errorf("failed to check balance: %w", err)
		}
		return &service.InsufficientBalanceError{
			Bucket:    string(bucket),
			Available: balance.Bucket(bucket),
			Requested: amount,
		}
	}
	return nil
}

// MoveAll empties the from bucket into the to bucket atomically and returns
// the amount moved
func (r *BalanceRepository) MoveAll(ctx context.Context, accountID int64, from, to models.Bucket) (int64, error) {
	fromCol, err := bucketColumn(from)
	if err != nil {
		return 0, err
	}
	toCol, err := bucketColumn(to)
	if err != nil {
		return 0, err
	}

	// RETURNING sees post-update values, so the moved amount has to be
	// captured before the source column is zeroed
	query := fmt.Sprintf(`
		WITH prior AS (
			SELECT %s AS amount FROM balances WHERE account_id = $1 FOR UPDATE
		)
		UPDATE balances
		SET %s = %s + (SELECT amount FROM prior), %s = 0, updated_at = NOW()
		WHERE account_id = $1
		RETURNING (SELECT amount FROM prior)
	`, fromCol, toCol, toCol, fromCol)

	var moved int64
	if err := r.q.QueryRow(ctx, query, accountID).Scan(&moved); err != nil {
		if err == pgx.ErrNoRows {
			return 0, fmt.Errorf("balance for account %d not found", accountID)
		}
		return 0, translateConcurrency(fmt.Errorf("failed to move %s to %s for account %d: %w", from, to, accountID, err))
	}
	return moved, nil
}
