package models

import (
	"time"
)

// TransactionType classifies a ledger entry.
type TransactionType string

const (
	TransactionTypeSignupBonus        TransactionType = "signup_bonus"
	TransactionTypeDeposit            TransactionType = "deposit"
	TransactionTypeReferralCommission TransactionType = "referral_commission"
	TransactionTypeGameEntry          TransactionType = "game_entry"
	TransactionTypeGameWin            TransactionType = "game_win"
	TransactionTypeScheduledPayout    TransactionType = "scheduled_payout"
	TransactionTypeCashback           TransactionType = "cashback"
	TransactionTypeCommissionClaim    TransactionType = "commission_claim"
)

// TransactionStatus tracks settlement of a ledger entry. Pro game wins are
// recorded pending and settle through the payout schedule.
type TransactionStatus string

const (
	TransactionStatusPending   TransactionStatus = "pending"
	TransactionStatusCompleted TransactionStatus = "completed"
)

// Transaction is one append-only ledger entry. Bucket balances are mutated in
// place, so the ledger is the only record of how funds moved.
type Transaction struct {
	ID          int64             `db:"id"`
	AccountID   int64             `db:"account_id"`
	Type        TransactionType   `db:"type"`
	Amount      int64             `db:"amount"`
	FromBucket  *Bucket           `db:"from_bucket"`
	ToBucket    *Bucket           `db:"to_bucket"`
	Status      TransactionStatus `db:"status"`
	Description string            `db:"description"`
	Metadata    map[string]any    `db:"metadata"`
	CreatedAt   time.Time         `db:"created_at"`
}

// TransactionSummary aggregates a transaction history query.
type TransactionSummary struct {
	TotalDeposits    int64
	TotalWinnings    int64
	TotalCommissions int64
}
