package models

import "time"

// ReferralStatus mirrors the referred account's tier on the edge.
type ReferralStatus string

const (
	ReferralStatusPending   ReferralStatus = "pending"
	ReferralStatusActivated ReferralStatus = "activated"
	ReferralStatusPro       ReferralStatus = "pro"
)

// Referral is a directed edge from a referrer to a referred account at a
// given upline level (1..10). At most one edge exists per (referrer,
// referred) pair since every account has a single upline path.
type Referral struct {
	ID         int64          `db:"id"`
	ReferrerID int64          `db:"referrer_id"`
	ReferredID int64          `db:"referred_id"`
	Level      int            `db:"level"`
	Status     ReferralStatus `db:"status"`
	Commission int64          `db:"commission"` // accumulated claimable, cents
	CreatedAt  time.Time      `db:"created_at"`
}

// ReferralEntry is a referral edge joined with the referred account, used in
// the referral overview.
type ReferralEntry struct {
	Referral
	ReferredWallet string
	ReferredStatus AccountStatus
	ReferredVolume int64
}

// ReferralOverview is the per-account referral tree summary.
type ReferralOverview struct {
	ReferralCode         string
	DirectReferrals      int
	TotalReferrals       int
	QualifiedReferrals   int
	Level1               []*ReferralEntry
	Level2               []*ReferralEntry
	Level3To10Count      int
	CommissionLevel1     int64
	CommissionLevel2     int64
	CommissionLevel3To10 int64
	CommissionTotal      int64
	FrozenReferralLimit  int
	FrozenReferralsUsed  int
}

// ClaimResult reports a successful commission claim.
type ClaimResult struct {
	Claimed int64
	Balance Snapshot
}
