package repository

import (
	"context"
	"fmt"

	"luckyten/database"
	"luckyten/models"
)

// GameRoundRepository implements the GameRoundRepository interface
type GameRoundRepository struct {
	q queryable
}

// NewGameRoundRepository creates a new game round repository
func NewGameRoundRepository(db *database.DB) *GameRoundRepository {
	return &GameRoundRepository{q: db.Pool}
}

// newGameRoundRepositoryWithTx creates a new game round repository with a transaction
func newGameRoundRepositoryWithTx(tx queryable) *GameRoundRepository {
	return &GameRoundRepository{q: tx}
}

// Create inserts a round and fills ID and CreatedAt
func (r *GameRoundRepository) Create(ctx context.Context, round *models.GameRound) error {
	query := `
		INSERT INTO game_rounds (account_id, tier, entry_amount, selected_number, drawn_number, outcome, payout)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at
	`

	err := r.q.QueryRow(ctx, query,
		round.AccountID,
		round.Tier,
		round.EntryAmount,
		round.SelectedNumber,
		round.DrawnNumber,
		round.Outcome,
		round.Payout,
	).Scan(&round.ID, &round.CreatedAt)

	if err != nil {
		return fmt.Errorf("failed to create game round for account %d: %w", round.AccountID, err)
	}
	return nil
}

// GetByAccount returns rounds for an account, newest first
func (r *GameRoundRepository) GetByAccount(ctx context.Context, accountID int64, limit int) ([]*models.GameRound, error) {
	if limit <= 0 {
		limit = 50
	}

	query := fmt.Sprintf(`
		SELECT id, account_id, tier, entry_amount, selected_number, drawn_number, outcome, payout, created_at
		FROM game_rounds
		WHERE account_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT %d
	`, limit)

	rows, err := r.q.Query(ctx, query, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to get rounds for account %d: %w", accountID, err)
	}
	defer rows.Close()

	var rounds []*models.GameRound
	for rows.Next() {
		var round models.GameRound
		err := rows.Scan(
			&round.ID,
			&round.AccountID,
			&round.Tier,
			&round.EntryAmount,
			&round.SelectedNumber,
			&round.DrawnNumber,
			&round.Outcome,
			&round.Payout,
			&round.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan game round: %w", err)
		}
		rounds = append(rounds, &round)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate game rounds: %w", err)
	}
	return rounds, nil
}

// GetStats returns aggregate win/loss statistics for an account
func (r *GameRoundRepository) GetStats(ctx context.Context, accountID int64) (*models.GameStats, error) {
	query := `
		SELECT
			COUNT(*),
			COUNT(*) FILTER (WHERE outcome = 'win'),
			COUNT(*) FILTER (WHERE outcome = 'loss'),
			COALESCE(SUM(payout) FILTER (WHERE outcome = 'win'), 0),
			COALESCE(SUM(entry_amount) FILTER (WHERE outcome = 'loss'), 0)
		FROM game_rounds
		WHERE account_id = $1
	`

	var stats models.GameStats
	err := r.q.QueryRow(ctx, query, accountID).Scan(
		&stats.TotalRounds,
		&stats.Wins,
		&stats.Losses,
		&stats.TotalWon,
		&stats.TotalLost,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get game stats for account %d: %w", accountID, err)
	}

	stats.NetProfit = stats.TotalWon - stats.TotalLost
	return &stats, nil
}
