package models

import "time"

// CashbackStatus tracks cumulative Pro-tier losses and the bounded daily
// recovery. Rates are basis points of TotalLosses; MaxROIBps caps
// TotalRecovered at TotalLosses * MaxROIBps / 10000.
type CashbackStatus struct {
	ID                 int64      `db:"id"`
	AccountID          int64      `db:"account_id"`
	TotalLosses        int64      `db:"total_losses"`
	TotalRecovered     int64      `db:"total_recovered"`
	DailyRateBps       int64      `db:"daily_rate_bps"`
	MaxROIBps          int64      `db:"max_roi_bps"`
	IsActive           bool       `db:"is_active"`
	QualifiedReferrals int        `db:"qualified_referrals"`
	LastPayoutAt       *time.Time `db:"last_payout_at"`
	UpdatedAt          time.Time  `db:"updated_at"`
}

// MaxRecovery is the recovery ceiling for the current ROI cap.
func (c *CashbackStatus) MaxRecovery() int64 {
	return c.TotalLosses * c.MaxROIBps / 10000
}

// RemainingRecovery is how much can still be recovered before the cap.
func (c *CashbackStatus) RemainingRecovery() int64 {
	remaining := c.MaxRecovery() - c.TotalRecovered
	if remaining < 0 {
		return 0
	}
	return remaining
}
