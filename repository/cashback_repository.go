package repository

import (
	"context"
	"fmt"

	"luckyten/database"
	"luckyten/models"

	"github.com/jackc/pgx/v5"
)

const cashbackColumns = `
	id, account_id, total_losses, total_recovered, daily_rate_bps,
	max_roi_bps, is_active, qualified_referrals, last_payout_at, updated_at`

// CashbackRepository implements the CashbackRepository interface
type CashbackRepository struct {
	q queryable
}

// NewCashbackRepository creates a new cashback repository
func NewCashbackRepository(db *database.DB) *CashbackRepository {
	return &CashbackRepository{q: db.Pool}
}

// newCashbackRepositoryWithTx creates a new cashback repository with a transaction
func newCashbackRepositoryWithTx(tx queryable) *CashbackRepository {
	return &CashbackRepository{q: tx}
}

func scanCashback(row pgx.Row) (*models.CashbackStatus, error) {
	var status models.CashbackStatus
	err := row.Scan(
		&status.ID,
		&status.AccountID,
		&status.TotalLosses,
		&status.TotalRecovered,
		&status.DailyRateBps,
		&status.MaxROIBps,
		&status.IsActive,
		&status.QualifiedReferrals,
		&status.LastPayoutAt,
		&status.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &status, nil
}

// GetByAccount retrieves the cashback row for an account, nil if none
func (r *CashbackRepository) GetByAccount(ctx context.Context, accountID int64) (*models.CashbackStatus, error) {
	query := `SELECT` + cashbackColumns + ` FROM cashback_statuses WHERE account_id = $1`

	status, err := scanCashback(r.q.QueryRow(ctx, query, accountID))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get cashback status for account %d: %w", accountID, err)
	}
	return status, nil
}

// Create inserts a cashback row
func (r *CashbackRepository) Create(ctx context.Context, status *models.CashbackStatus) error {
	query := `
		INSERT INTO cashback_statuses (account_id, total_losses, total_recovered, daily_rate_bps, max_roi_bps, is_active, qualified_referrals, last_payout_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, updated_at
	`

	err := r.q.QueryRow(ctx, query,
		status.AccountID,
		status.TotalLosses,
		status.TotalRecovered,
		status.DailyRateBps,
		status.MaxROIBps,
		status.IsActive,
		status.QualifiedReferrals,
		status.LastPayoutAt,
	).Scan(&status.ID, &status.UpdatedAt)

	if err != nil {
		return fmt.Errorf("failed to create cashback status for account %d: %w", status.AccountID, err)
	}
	return nil
}

// Update persists the mutable cashback fields
func (r *CashbackRepository) Update(ctx context.Context, status *models.CashbackStatus) error {
	query := `
		UPDATE cashback_statuses
		SET total_losses = $1,
		    total_recovered = $2,
		    daily_rate_bps = $3,
		    max_roi_bps = $4,
		    is_active = $5,
		    qualified_referrals = $6,
		    last_payout_at = $7,
		    updated_at = NOW()
		WHERE id = $8
	`

	result, err := r.q.Exec(ctx, query,
		status.TotalLosses,
		status.TotalRecovered,
		status.DailyRateBps,
		status.MaxROIBps,
		status.IsActive,
		status.QualifiedReferrals,
		status.LastPayoutAt,
		status.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update cashback status %d: %w", status.ID, err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("cashback status %d not found", status.ID)
	}
	return nil
}

// GetActive returns all rows with is_active = true
func (r *CashbackRepository) GetActive(ctx context.Context) ([]*models.CashbackStatus, error) {
	query := `SELECT` + cashbackColumns + `
		FROM cashback_statuses
		WHERE is_active = TRUE
		ORDER BY account_id`

	rows, err := r.q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to get active cashbacks: %w", err)
	}
	defer rows.Close()

	var statuses []*models.CashbackStatus
	for rows.Next() {
		status, err := scanCashback(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan cashback status: %w", err)
		}
		statuses = append(statuses, status)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate cashback statuses: %w", err)
	}
	return statuses, nil
}
