package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"luckyten/database"
	"luckyten/models"

	"github.com/jackc/pgx/v5"
)

// SettlementRunRepository implements the SettlementRunRepository interface
type SettlementRunRepository struct {
	q queryable
}

// NewSettlementRunRepository creates a new settlement run repository
func NewSettlementRunRepository(db *database.DB) *SettlementRunRepository {
	return &SettlementRunRepository{q: db.Pool}
}

// newSettlementRunRepositoryWithTx creates a new settlement run repository with a transaction
func newSettlementRunRepositoryWithTx(tx queryable) *SettlementRunRepository {
	return &SettlementRunRepository{q: tx}
}

// Create creates a new settlement run record
func (r *SettlementRunRepository) Create(ctx context.Context, run *models.SettlementRun) error {
	// Convert summary to JSON
	summaryJSON, err := json.Marshal(run.ExecutionSummary)
	if err != nil {
		return fmt.Errorf("failed to marshal execution summary: %w", err)
	}

	query := `
		INSERT INTO settlement_runs
		(run_at, payouts_settled, cashbacks_settled, total_paid_out, execution_summary)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`

	err = r.q.QueryRow(ctx, query,
		run.RunAt,
		run.PayoutsSettled,
		run.CashbacksSettled,
		run.TotalPaidOut,
		summaryJSON,
	).Scan(&run.ID, &run.CreatedAt)

	if err != nil {
		return fmt.Errorf("failed to create settlement run: %w", err)
	}

	return nil
}

// GetLatest returns the most recent settlement run
func (r *SettlementRunRepository) GetLatest(ctx context.Context) (*models.SettlementRun, error) {
	query := `
		SELECT id, run_at, payouts_settled, cashbacks_settled,
		       total_paid_out, execution_summary, created_at
		FROM settlement_runs
		ORDER BY run_at DESC, id DESC
		LIMIT 1
	`

	var run models.SettlementRun
	var summaryJSON []byte

	err := r.q.QueryRow(ctx, query).Scan(
		&run.ID,
		&run.RunAt,
		&run.PayoutsSettled,
		&run.CashbacksSettled,
		&run.TotalPaidOut,
		&summaryJSON,
		&run.CreatedAt,
	)

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get latest settlement run: %w", err)
	}

	// Unmarshal execution summary
	if len(summaryJSON) > 0 {
		if err := json.Unmarshal(summaryJSON, &run.ExecutionSummary); err != nil {
			return nil, fmt.Errorf("failed to unmarshal execution summary: %w", err)
		}
	}

	return &run, nil
}
