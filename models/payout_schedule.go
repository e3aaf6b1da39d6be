package models

import "time"

// PayoutScheduleStatus is the lifecycle state of a schedule.
type PayoutScheduleStatus string

const (
	PayoutScheduleActive    PayoutScheduleStatus = "active"
	PayoutScheduleCompleted PayoutScheduleStatus = "completed"
)

// PayoutSchedule disburses a Pro-tier win over TotalDays daily installments.
// DailyAmount is the floor of TotalAmount/TotalDays; the final installment
// pays whatever remains so the schedule settles TotalAmount exactly.
type PayoutSchedule struct {
	ID            int64                `db:"id"`
	AccountID     int64                `db:"account_id"`
	SourceRoundID int64                `db:"source_round_id"`
	TotalAmount   int64                `db:"total_amount"`
	DailyAmount   int64                `db:"daily_amount"`
	TotalDays     int                  `db:"total_days"`
	PaidDays      int                  `db:"paid_days"`
	NextPayoutAt  time.Time            `db:"next_payout_at"`
	Status        PayoutScheduleStatus `db:"status"`
	CreatedAt     time.Time            `db:"created_at"`
	UpdatedAt     time.Time            `db:"updated_at"`
}

// RemainingAmount is the total not yet credited to cash.
func (p *PayoutSchedule) RemainingAmount() int64 {
	if p.PaidDays >= p.TotalDays {
		return 0
	}
	return p.TotalAmount - p.PaidAmount()
}

// PaidAmount is the total already credited across paid installments.
func (p *PayoutSchedule) PaidAmount() int64 {
	if p.PaidDays >= p.TotalDays {
		return p.TotalAmount
	}
	return p.DailyAmount * int64(p.PaidDays)
}

// InstallmentAmount is the amount the next settlement will credit: the
// daily amount, except the final day which absorbs the division remainder.
func (p *PayoutSchedule) InstallmentAmount() int64 {
	if p.PaidDays == p.TotalDays-1 {
		return p.TotalAmount - p.DailyAmount*int64(p.TotalDays-1)
	}
	return p.DailyAmount
}

// PayoutOverview lists an account's open schedules with pending totals.
type PayoutOverview struct {
	Schedules    []*PayoutSchedule
	TotalPending int64
	Cashback     *CashbackStatus
}
