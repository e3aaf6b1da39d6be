package models

import (
	"time"
)

// AccountStatus represents the activation tier of an account.
// Transitions are one-way: free -> basic -> pro.
type AccountStatus string

const (
	StatusFree  AccountStatus = "free"
	StatusBasic AccountStatus = "basic"
	StatusPro   AccountStatus = "pro"
)

// Account represents a registered participant keyed by wallet address.
// All monetary fields are int64 minor units (1 USDT = 100 cents).
type Account struct {
	ID                  int64         `db:"id"`
	WalletAddress       string        `db:"wallet_address"`
	ReferralCode        string        `db:"referral_code"`
	ReferredBy          *string       `db:"referred_by"` // referrer's wallet address
	Status              AccountStatus `db:"status"`
	TotalDeposited      int64         `db:"total_deposited"`
	TotalVolume         int64         `db:"total_volume"`
	DirectReferralCount int           `db:"direct_referral_count"`
	CreatedAt           time.Time     `db:"created_at"`
	ActivatedAt         *time.Time    `db:"activated_at"`
	ProActivatedAt      *time.Time    `db:"pro_activated_at"`
	FreeExpiryAt        *time.Time    `db:"free_expiry_at"`
	UpdatedAt           time.Time     `db:"updated_at"`
}

// IsPro reports whether the account has reached the Pro tier.
func (a *Account) IsPro() bool {
	return a.Status == StatusPro
}

// AccountProfile bundles an account with its balance for profile reads.
type AccountProfile struct {
	Account       *Account
	Balance       Snapshot
	ReferralCount int
}
