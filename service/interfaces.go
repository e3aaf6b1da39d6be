package service

import (
	"context"
	"time"

	"luckyten/events"
	"luckyten/models"
)

// AccountRepository defines the interface for account data access.
// Get methods return (nil, nil) when the row does not exist.
type AccountRepository interface {
	// GetByID retrieves an account by its internal id
	GetByID(ctx context.Context, id int64) (*models.Account, error)

	// GetByWallet retrieves an account by wallet address (lowercased)
	GetByWallet(ctx context.Context, wallet string) (*models.Account, error)

	// GetByReferralCode retrieves an account by its referral code
	GetByReferralCode(ctx context.Context, code string) (*models.Account, error)

	// Create inserts a new account and fills ID and CreatedAt
	Create(ctx context.Context, account *models.Account) error

	// Update persists mutable account state (status, totals, timestamps)
	Update(ctx context.Context, account *models.Account) error

	// IncrementDirectReferrals bumps the direct referral counter atomically
	// and returns the new count
	IncrementDirectReferrals(ctx context.Context, id int64) (int, error)

	// AddVolume adds amount to total_volume atomically
	AddVolume(ctx context.Context, id int64, amount int64) error
}

// BalanceRepository defines the interface for balance bucket access.
type BalanceRepository interface {
	// GetByAccount retrieves the balance row for an account
	GetByAccount(ctx context.Context, accountID int64) (*models.Balance, error)

	// GetByAccountForUpdate retrieves the balance row with a row lock,
	// serializing concurrent mutations against the same account
	GetByAccountForUpdate(ctx context.Context, accountID int64) (*models.Balance, error)

	// Create inserts a new balance row
	Create(ctx context.Context, balance *models.Balance) error

	// Credit adds amount to the named bucket atomically
	Credit(ctx context.Context, accountID int64, bucket models.Bucket, amount int64) error

	// Debit subtracts amount from the named bucket, failing with
	// InsufficientBalanceError if the bucket would go negative
	Debit(ctx context.Context, accountID int64, bucket models.Bucket, amount int64) error

	// MoveAll empties the from bucket into the to bucket atomically and
	// returns the amount moved
	MoveAll(ctx context.Context, accountID int64, from, to models.Bucket) (int64, error)
}

// TransactionRepository defines the interface for the append-only ledger.
type TransactionRepository interface {
	// Record appends a ledger entry and fills ID and CreatedAt
	Record(ctx context.Context, txn *models.Transaction) error

	// GetByAccount returns ledger entries for an account, newest first,
	// optionally filtered by type
	GetByAccount(ctx context.Context, accountID int64, typeFilter *models.TransactionType, limit int) ([]*models.Transaction, error)
}

// ReferralRepository defines the interface for referral edge access.
type ReferralRepository interface {
	// Create inserts a referral edge
	Create(ctx context.Context, referral *models.Referral) error

	// GetEntriesByReferrer returns all edges where the account is the
	// referrer, joined with the referred account
	GetEntriesByReferrer(ctx context.Context, referrerID int64) ([]*models.ReferralEntry, error)

	// GetClaimable returns edges with positive accumulated commission
	GetClaimable(ctx context.Context, referrerID int64) ([]*models.Referral, error)

	// ZeroCommissions resets commission on all edges of a referrer
	ZeroCommissions(ctx context.Context, referrerID int64) error

	// UpdateStatusByReferred mirrors the referred account's tier onto all
	// edges pointing at it
	UpdateStatusByReferred(ctx context.Context, referredID int64, status models.ReferralStatus) error

	// CountQualifiedDirects counts level-1 referrals whose referred account
	// has total volume of at least minVolume
	CountQualifiedDirects(ctx context.Context, referrerID int64, minVolume int64) (int, error)
}

// GameRoundRepository defines the interface for immutable round records.
type GameRoundRepository interface {
	// Create inserts a round and fills ID and CreatedAt
	Create(ctx context.Context, round *models.GameRound) error

	// GetByAccount returns rounds for an account, newest first
	GetByAccount(ctx context.Context, accountID int64, limit int) ([]*models.GameRound, error)

	// GetStats returns aggregate win/loss statistics for an account
	GetStats(ctx context.Context, accountID int64) (*models.GameStats, error)
}

// PayoutScheduleRepository defines the interface for multi-day disbursements.
type PayoutScheduleRepository interface {
	// Create inserts a schedule and fills ID and CreatedAt
	Create(ctx context.Context, schedule *models.PayoutSchedule) error

	// GetActiveByAccount returns active schedules ordered by next payout
	GetActiveByAccount(ctx context.Context, accountID int64) ([]*models.PayoutSchedule, error)

	// GetDue returns active schedules with next_payout_at <= now
	GetDue(ctx context.Context, now time.Time) ([]*models.PayoutSchedule, error)

	// Update persists paid_days, next_payout_at and status
	Update(ctx context.Context, schedule *models.PayoutSchedule) error
}

// CashbackRepository defines the interface for loss recovery state.
type CashbackRepository interface {
	// GetByAccount retrieves the cashback row for an account, nil if none
	GetByAccount(ctx context.Context, accountID int64) (*models.CashbackStatus, error)

	// Create inserts a cashback row
	Create(ctx context.Context, status *models.CashbackStatus) error

	// Update persists the mutable cashback fields
	Update(ctx context.Context, status *models.CashbackStatus) error

	// GetActive returns all rows with is_active = true
	GetActive(ctx context.Context) ([]*models.CashbackStatus, error)
}

// SettlementRunRepository records daily settlement sweeps.
type SettlementRunRepository interface {
	// Create inserts a run record and fills ID and CreatedAt
	Create(ctx context.Context, run *models.SettlementRun) error

	// GetLatest returns the most recent run, nil if none
	GetLatest(ctx context.Context) (*models.SettlementRun, error)
}

// RegistrationService registers accounts and propagates referral commissions.
type RegistrationService interface {
	// Register creates an account with the frozen signup bonus and, when a
	// referral code resolves, credits the upline chain up to 10 levels
	Register(ctx context.Context, wallet, referralCode string) (*models.RegisterResult, error)
}

// AccountService exposes profile and ledger history reads.
type AccountService interface {
	// GetProfile returns the account with its balance snapshot and referral count
	GetProfile(ctx context.Context, wallet string) (*models.AccountProfile, error)

	// GetTransactions returns ledger history with summary totals
	GetTransactions(ctx context.Context, wallet string, typeFilter *models.TransactionType, limit int) ([]*models.Transaction, *models.TransactionSummary, error)
}

// DepositService owns the Free -> Basic -> Pro activation state machine.
type DepositService interface {
	// Deposit applies a deposit, performing Basic or Pro activation when
	// the relevant threshold is crossed
	Deposit(ctx context.Context, wallet string, amount int64, txHash string) (*models.DepositResult, error)
}

// GameService resolves number-guessing rounds.
type GameService interface {
	// Play resolves one wager: draws, debits the entry, records the round
	// and routes any payout per tier
	Play(ctx context.Context, wallet string, tier models.GameTier, selectedNumber int, entryAmount int64) (*models.PlayResult, error)

	// GetHistory returns recent rounds and aggregate stats
	GetHistory(ctx context.Context, wallet string, limit int) ([]*models.GameRound, *models.GameStats, error)
}

// ReferralService exposes the referral tree and commission claims.
type ReferralService interface {
	// GetOverview returns the referral tree grouped by level with
	// commission totals
	GetOverview(ctx context.Context, wallet string) (*models.ReferralOverview, error)

	// Claim credits all accumulated edge commissions to cash (Pro only)
	Claim(ctx context.Context, wallet string) (*models.ClaimResult, error)
}

// PayoutService exposes open schedules and cashback state.
type PayoutService interface {
	// GetOverview returns active schedules, pending totals and cashback view
	GetOverview(ctx context.Context, wallet string) (*models.PayoutOverview, error)
}

// SettlementService advances all due schedules and cashback recoveries by
// one day. Driven by a periodic external trigger.
type SettlementService interface {
	// SettleDue settles every schedule and cashback due as of now and
	// records an audit run. Idempotent per record per settlement day.
	SettleDue(ctx context.Context, now time.Time) (*models.SettlementRun, error)

	// LatestRun returns the most recent settlement run, nil if none
	LatestRun(ctx context.Context) (*models.SettlementRun, error)
}

// EventPublisher defines the interface for publishing events.
type EventPublisher interface {
	Publish(event events.Event)
}

// UnitOfWork defines the interface for transactional repository operations.
type UnitOfWork interface {
	// Begin starts a new transaction
	Begin(ctx context.Context) error

	// Commit commits the transaction
	Commit() error

	// Rollback rolls back the transaction
	Rollback() error

	// Repository getters
	AccountRepository() AccountRepository
	BalanceRepository() BalanceRepository
	TransactionRepository() TransactionRepository
	ReferralRepository() ReferralRepository
	GameRoundRepository() GameRoundRepository
	PayoutScheduleRepository() PayoutScheduleRepository
	CashbackRepository() CashbackRepository
	SettlementRunRepository() SettlementRunRepository
	EventBus() EventPublisher
}

// UnitOfWorkFactory defines the interface for creating UnitOfWork instances.
type UnitOfWorkFactory interface {
	// Create returns a new UnitOfWork
	Create() UnitOfWork
}
