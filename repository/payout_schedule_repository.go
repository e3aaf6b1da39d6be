package repository

import (
	"context"
	"fmt"
	"time"

	"luckyten/database"
	"luckyten/models"

	"github.com/jackc/pgx/v5"
)

const payoutScheduleColumns = `
	id, account_id, source_round_id, total_amount, daily_amount,
	total_days, paid_days, next_payout_at, status, created_at, updated_at`

// PayoutScheduleRepository implements the PayoutScheduleRepository interface
type PayoutScheduleRepository struct {
	q queryable
}

// NewPayoutScheduleRepository creates a new payout schedule repository
func NewPayoutScheduleRepository(db *database.DB) *PayoutScheduleRepository {
	return &PayoutScheduleRepository{q: db.Pool}
}

// newPayoutScheduleRepositoryWithTx creates a new payout schedule repository with a transaction
func newPayoutScheduleRepositoryWithTx(tx queryable) *PayoutScheduleRepository {
	return &PayoutScheduleRepository{q: tx}
}

func scanPayoutSchedule(rows pgx.Rows) (*models.PayoutSchedule, error) {
	var schedule models.PayoutSchedule
	err := rows.Scan(
		&schedule.ID,
		&schedule.AccountID,
		&schedule.SourceRoundID,
		&schedule.TotalAmount,
		&schedule.DailyAmount,
		&schedule.TotalDays,
		&schedule.PaidDays,
		&schedule.NextPayoutAt,
		&schedule.Status,
		&schedule.CreatedAt,
		&schedule.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to scan payout schedule: %w", err)
	}
	return &schedule, nil
}

// Create inserts a schedule and fills ID and CreatedAt
func (r *PayoutScheduleRepository) Create(ctx context.Context, schedule *models.PayoutSchedule) error {
	query := `
		INSERT INTO payout_schedules (account_id, source_round_id, total_amount, daily_amount, total_days, next_payout_at, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at
	`

	err := r.q.QueryRow(ctx, query,
		schedule.AccountID,
		schedule.SourceRoundID,
		schedule.TotalAmount,
		schedule.DailyAmount,
		schedule.TotalDays,
		schedule.NextPayoutAt,
		schedule.Status,
	).Scan(&schedule.ID, &schedule.CreatedAt, &schedule.UpdatedAt)

	if err != nil {
		return fmt.Errorf("failed to create payout schedule for account %d: %w", schedule.AccountID, err)
	}
	return nil
}

func (r *PayoutScheduleRepository) query(ctx context.Context, query string, args ...any) ([]*models.PayoutSchedule, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var schedules []*models.PayoutSchedule
	for rows.Next() {
		schedule, err := scanPayoutSchedule(rows)
		if err != nil {
			return nil, err
		}
		schedules = append(schedules, schedule)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate payout schedules: %w", err)
	}
	return schedules, nil
}

// GetActiveByAccount returns active schedules ordered by next payout
func (r *PayoutScheduleRepository) GetActiveByAccount(ctx context.Context, accountID int64) ([]*models.PayoutSchedule, error) {
	query := `SELECT` + payoutScheduleColumns + `
		FROM payout_schedules
		WHERE account_id = $1 AND status = 'active'
		ORDER BY next_payout_at`

	schedules, err := r.query(ctx, query, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to get active schedules for account %d: %w", accountID, err)
	}
	return schedules, nil
}

// GetDue returns active schedules with next_payout_at <= now
func (r *PayoutScheduleRepository) GetDue(ctx context.Context, now time.Time) ([]*models.PayoutSchedule, error) {
	query := `SELECT` + payoutScheduleColumns + `
		FROM payout_schedules
		WHERE status = 'active' AND next_payout_at <= $1
		ORDER BY next_payout_at, id`

	schedules, err := r.query(ctx, query, now)
	if err != nil {
		return nil, fmt.Errorf("failed to get due schedules: %w", err)
	}
	return schedules, nil
}

// Update persists paid_days, next_payout_at and status
func (r *PayoutScheduleRepository) Update(ctx context.Context, schedule *models.PayoutSchedule) error {
	query := `
		UPDATE payout_schedules
		SET paid_days = $1, next_payout_at = $2, status = $3, updated_at = NOW()
		WHERE id = $4
	`

	result, err := r.q.Exec(ctx, query,
		schedule.PaidDays,
		schedule.NextPayoutAt,
		schedule.Status,
		schedule.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update payout schedule %d: %w", schedule.ID, err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("payout schedule %d not found", schedule.ID)
	}
	return nil
}
