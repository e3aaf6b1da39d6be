package service

// Engine constants. Amounts are int64 cents (1 USDT = 100 cents), rates are
// basis points.
const (
	// SignupBonus is credited frozen at registration.
	SignupBonus int64 = 10_00

	// BasicActivationMin is the minimum single deposit for Free -> Basic.
	BasicActivationMin int64 = 10_00

	// ProActivationTotal is the cumulative deposit total for Basic -> Pro.
	ProActivationTotal int64 = 100_00

	// FreeGracePeriodDays is how long a Free account lives before external
	// housekeeping may expire it.
	FreeGracePeriodDays = 10

	// MaxReferralLevels bounds the upline walk.
	MaxReferralLevels = 10

	// FrozenReferralLimit caps how many direct referrals earn the frozen
	// level-1 bonus. Edges past the limit are still created with zero
	// commission.
	FrozenReferralLimit = 10

	// GameMultiplier is the payout multiple on a winning round.
	GameMultiplier int64 = 8

	// GameNumberMax is the inclusive upper bound of the guessing range.
	GameNumberMax = 10

	// Game entry bounds.
	MinEntryAmount int64 = 1_00
	MaxEntryAmount int64 = 1000_00

	// PayoutScheduleDays spreads a Pro win over this many installments.
	PayoutScheduleDays = 10

	// CashbackActivationLosses is the cumulative Pro-tier loss total that
	// switches recovery on.
	CashbackActivationLosses int64 = 100_00

	// QualifiedReferralVolume is the referred-account volume that makes a
	// level-1 referral count toward the cashback tier.
	QualifiedReferralVolume int64 = 100_00
)

// referralCommissionBps returns the commission rate for an upline level in
// basis points: 10% at level 1, 2% at level 2, 1% at levels 3-10.
func referralCommissionBps(level int) int64 {
	switch {
	case level == 1:
		return 1000
	case level == 2:
		return 200
	case level >= 3 && level <= MaxReferralLevels:
		return 100
	}
	return 0
}

// cashbackTier returns (daily rate, max ROI) in basis points for a qualified
// referral count. The highest matching threshold wins.
func cashbackTier(qualifiedReferrals int) (rateBps, maxROIBps int64) {
	switch {
	case qualifiedReferrals >= 9:
		return 200, 20000
	case qualifiedReferrals >= 5:
		return 100, 20000
	case qualifiedReferrals >= 1:
		return 100, 10000
	}
	return 50, 10000
}

// bpsOf applies a basis-point rate to an amount with floor semantics.
func bpsOf(amount, bps int64) int64 {
	return amount * bps / 10000
}
