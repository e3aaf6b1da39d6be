package repository

import (
	"context"
	"fmt"

	"luckyten/database"
	"luckyten/models"
)

// ReferralRepository implements the ReferralRepository interface
type ReferralRepository struct {
	q queryable
}

// NewReferralRepository creates a new referral repository
func NewReferralRepository(db *database.DB) *ReferralRepository {
	return &ReferralRepository{q: db.Pool}
}

// newReferralRepositoryWithTx creates a new referral repository with a transaction
func newReferralRepositoryWithTx(tx queryable) *ReferralRepository {
	return &ReferralRepository{q: tx}
}

// Create inserts a referral edge
func (r *ReferralRepository) Create(ctx context.Context, referral *models.Referral) error {
	query := `
		INSERT INTO referrals (referrer_id, referred_id, level, status, commission)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`

	err := r.q.QueryRow(ctx, query,
		referral.ReferrerID,
		referral.ReferredID,
		referral.Level,
		referral.Status,
		referral.Commission,
	).Scan(&referral.ID, &referral.CreatedAt)

	if err != nil {
		return fmt.Errorf("failed to create referral %d -> %d: %w", referral.ReferrerID, referral.ReferredID, err)
	}
	return nil
}

// GetEntriesByReferrer returns all edges where the account is the referrer,
// joined with the referred account
func (r *ReferralRepository) GetEntriesByReferrer(ctx context.Context, referrerID int64) ([]*models.ReferralEntry, error) {
	query := `
		SELECT r.id, r.referrer_id, r.referred_id, r.level, r.status, r.commission, r.created_at,
		       a.wallet_address, a.status, a.total_volume
		FROM referrals r
		JOIN accounts a ON a.id = r.referred_id
		WHERE r.referrer_id = $1
		ORDER BY r.level, r.created_at
	`

	rows, err := r.q.Query(ctx, query, referrerID)
	if err != nil {
		return nil, fmt.Errorf("failed to get referrals for account %d: %w", referrerID, err)
	}
	defer rows.Close()

	var entries []*models.ReferralEntry
	for rows.Next() {
		var entry models.ReferralEntry
		err := rows.Scan(
			&entry.ID,
			&entry.ReferrerID,
			&entry.ReferredID,
			&entry.Level,
			&entry.Status,
			&entry.Commission,
			&entry.CreatedAt,
			&entry.ReferredWallet,
			&entry.ReferredStatus,
			&entry.ReferredVolume,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan referral entry: %w", err)
		}
		entries = append(entries, &entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate referral entries: %w", err)
	}
	return entries, nil
}

// GetClaimable returns edges with positive accumulated commission
func (r *ReferralRepository) GetClaimable(ctx context.Context, referrerID int64) ([]*models.Referral, error) {
	query := `
		SELECT id, referrer_id, referred_id, level, status, commission, created_at
		FROM referrals
		WHERE referrer_id = $1 AND commission > 0
		ORDER BY level, created_at
	`

	rows, err := r.q.Query(ctx, query, referrerID)
	if err != nil {
		return nil, fmt.Errorf("failed to get claimable referrals for account %d: %w", referrerID, err)
	}
	defer rows.Close()

	var referrals []*models.Referral
	for rows.Next() {
		var referral models.Referral
		err := rows.Scan(
			&referral.ID,
			&referral.ReferrerID,
			&referral.ReferredID,
			&referral.Level,
			&referral.Status,
			&referral.Commission,
			&referral.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan referral: %w", err)
		}
		referrals = append(referrals, &referral)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate referrals: %w", err)
	}
	return referrals, nil
}

// ZeroCommissions resets commission on all edges of a referrer
func (r *ReferralRepository) ZeroCommissions(ctx context.Context, referrerID int64) error {
	query := `UPDATE referrals SET commission = 0 WHERE referrer_id = $1 AND commission > 0`

	if _, err := r.q.Exec(ctx, query, referrerID); err != nil {
		return fmt.Errorf("failed to zero commissions for account %d: %w", referrerID, err)
	}
	return nil
}

// UpdateStatusByReferred mirrors the referred account's tier onto all edges
// pointing at it
func (r *ReferralRepository) UpdateStatusByReferred(ctx context.Context, referredID int64, status models.ReferralStatus) error {
	query := `UPDATE referrals SET status = $1 WHERE referred_id = $2`

	if _, err := r.q.Exec(ctx, query, status, referredID); err != nil {
		return fmt.Errorf("failed to update referral status for referred %d: %w", referredID, err)
	}
	return nil
}

// CountQualifiedDirects counts level-1 referrals whose referred account has
// total volume of at least minVolume
func (r *ReferralRepository) CountQualifiedDirects(ctx context.Context, referrerID int64, minVolume int64) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM referrals r
		JOIN accounts a ON a.id = r.referred_id
		WHERE r.referrer_id = $1 AND r.level = 1 AND a.total_volume >= $2
	`

	var count int
	if err := r.q.QueryRow(ctx, query, referrerID, minVolume).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count qualified referrals for account %d: %w", referrerID, err)
	}
	return count, nil
}
