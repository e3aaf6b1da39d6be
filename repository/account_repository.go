package repository

import (
	"context"
	"fmt"

	"luckyten/database"
	"luckyten/models"

	"github.com/jackc/pgx/v5"
)

const accountColumns = `
	id, wallet_address, referral_code, referred_by, status,
	total_deposited, total_volume, direct_referral_count,
	created_at, activated_at, pro_activated_at, free_expiry_at, updated_at`

// AccountRepository implements the AccountRepository interface
type AccountRepository struct {
	q queryable
}

// NewAccountRepository creates a new account repository
func NewAccountRepository(db *database.DB) *AccountRepository {
	return &AccountRepository{q: db.Pool}
}

// newAccountRepositoryWithTx creates a new account repository with a transaction
func newAccountRepositoryWithTx(tx queryable) *AccountRepository {
	return &AccountRepository{q: tx}
}

func scanAccount(row pgx.Row) (*models.Account, error) {
	var account models.Account
	err := row.Scan(
		&account.ID,
		&account.WalletAddress,
		&account.ReferralCode,
		&account.ReferredBy,
		&account.Status,
		&account.TotalDeposited,
		&account.TotalVolume,
		&account.DirectReferralCount,
		&account.CreatedAt,
		&account.ActivatedAt,
		&account.ProActivatedAt,
		&account.FreeExpiryAt,
		&account.UpdatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &account, nil
}

// GetByID retrieves an account by its internal id
func (r *AccountRepository) GetByID(ctx context.Context, id int64) (*models.Account, error) {
	query := `SELECT` + accountColumns + ` FROM accounts WHERE id = $1`

	account, err := scanAccount(r.q.QueryRow(ctx, query, id))
	if err != nil {
		return nil, fmt.Errorf("failed to get account %d: %w", id, err)
	}
	return account, nil
}

// GetByWallet retrieves an account by wallet address
func (r *AccountRepository) GetByWallet(ctx context.Context, wallet string) (*models.Account, error) {
	query := `SELECT` + accountColumns + ` FROM accounts WHERE wallet_address = $1`

	account, err := scanAccount(r.q.QueryRow(ctx, query, wallet))
	if err != nil {
		return nil, fmt.Errorf("failed to get account by wallet %s: %w", wallet, err)
	}
	return account, nil
}

// GetByReferralCode retrieves an account by its referral code
func (r *AccountRepository) GetByReferralCode(ctx context.Context, code string) (*models.Account, error) {
	query := `SELECT` + accountColumns + ` FROM accounts WHERE referral_code = $1`

	account, err := scanAccount(r.q.QueryRow(ctx, query, code))
	if err != nil {
		return nil, fmt.Errorf("failed to get account by referral code %s: %w", code, err)
	}
	return account, nil
}

// Create inserts a new account and fills ID and CreatedAt
func (r *AccountRepository) Create(ctx context.Context, account *models.Account) error {
	query := `
		INSERT INTO accounts (wallet_address, referral_code, referred_by, status, free_expiry_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at
	`

	err := r.q.QueryRow(ctx, query,
		account.WalletAddress,
		account.ReferralCode,
		account.ReferredBy,
		account.Status,
		account.FreeExpiryAt,
	).Scan(&account.ID, &account.CreatedAt, &account.UpdatedAt)

	if err != nil {
		return fmt.Errorf("failed to create account for wallet %s: %w", account.WalletAddress, err)
	}
	return nil
}

// Update persists mutable account state
func (r *AccountRepository) Update(ctx context.Context, account *models.Account) error {
	query := `
		UPDATE accounts
		SET status = $1,
		    total_deposited = $2,
		    total_volume = $3,
		    activated_at = $4,
		    pro_activated_at = $5,
		    free_expiry_at = $6,
		    updated_at = NOW()
		WHERE id = $7
	`

	result, err := r.q.Exec(ctx, query,
		account.Status,
		account.TotalDeposited,
		account.TotalVolume,
		account.ActivatedAt,
		account.ProActivatedAt,
		account.FreeExpiryAt,
		account.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update account %d: %w", account.ID, err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("account %d not found", account.ID)
	}
	return nil
}

// IncrementDirectReferrals bumps the direct referral counter atomically and
// returns the new count
func (r *AccountRepository) IncrementDirectReferrals(ctx context.Context, id int64) (int, error) {
	query := `
		UPDATE accounts
		SET direct_referral_count = direct_referral_count + 1, updated_at = NOW()
		WHERE id = $1
		RETURNING direct_referral_count
	`

	var count int
	if err := r.q.QueryRow(ctx, query, id).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to increment direct referrals for account %d: %w", id, err)
	}
	return count, nil
}

// AddVolume adds amount to total_volume atomically
func (r *AccountRepository) AddVolume(ctx context.Context, id int64, amount int64) error {
	if amount <= 0 {
		return fmt.Errorf("amount must be positive")
	}

	query := `
		UPDATE accounts
		SET total_volume = total_volume + $1, updated_at = NOW()
		WHERE id = $2
	`

	result, err := r.q.Exec(ctx, query, amount, id)
	if err != nil {
		return fmt.Errorf("failed to add volume for account %d: %w", id, err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("account %d not found", id)
	}
	return nil
}
