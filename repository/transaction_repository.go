package repository

import (
	"context"
	"fmt"

	"luckyten/database"
	"luckyten/models"
)

// TransactionRepository implements the TransactionRepository interface over
// the append-only ledger table.
type TransactionRepository struct {
	q queryable
}

// NewTransactionRepository creates a new transaction repository
func NewTransactionRepository(db *database.DB) *TransactionRepository {
	return &TransactionRepository{q: db.Pool}
}

// newTransactionRepositoryWithTx creates a new transaction repository with a transaction
func newTransactionRepositoryWithTx(tx queryable) *TransactionRepository {
	return &TransactionRepository{q: tx}
}

// Record appends a ledger entry and fills ID and CreatedAt
func (r *TransactionRepository) Record(ctx context.Context, txn *models.Transaction) error {
	query := `
		INSERT INTO transactions (account_id, type, amount, from_bucket, to_bucket, status, description, metadata)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at
	`

	err := r.q.QueryRow(ctx, query,
		txn.AccountID,
		txn.Type,
		txn.Amount,
		txn.FromBucket,
		txn.ToBucket,
		txn.Status,
		txn.Description,
		txn.Metadata,
	).Scan(&txn.ID, &txn.CreatedAt)

	if err != nil {
		return fmt.Errorf("failed to record transaction for account %d: %w", txn.AccountID, err)
	}
	return nil
}

// GetByAccount returns ledger entries for an account, newest first
func (r *TransactionRepository) GetByAccount(ctx context.Context, accountID int64, typeFilter *models.TransactionType, limit int) ([]*models.Transaction, error) {
	if limit <= 0 {
		limit = 50
	}

	query := `
		SELECT id, account_id, type, amount, from_bucket, to_bucket, status, description, metadata, created_at
		FROM transactions
		WHERE account_id = $1
	`
	args := []any{accountID}
	if typeFilter != nil {
		query += ` AND type = $2`
		args = append(args, *typeFilter)
	}
	query += fmt.Sprintf(` ORDER BY created_at DESC, id DESC LIMIT %d`, limit)

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get transactions for account %d: %w", accountID, err)
	}
	defer rows.Close()

	var txns []*models.Transaction
	for rows.Next() {
		var txn models.Transaction
		err := rows.Scan(
			&txn.ID,
			&txn.AccountID,
			&txn.Type,
			&txn.Amount,
			&txn.FromBucket,
			&txn.ToBucket,
			&txn.Status,
			&txn.Description,
			&txn.Metadata,
			&txn.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		txns = append(txns, &txn)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate transactions: %w", err)
	}
	return txns, nil
}
