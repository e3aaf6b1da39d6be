package models

import (
	"time"
)

// SettlementRun is the audit record of one daily settlement sweep covering
// payout schedules and cashback recovery. Every invocation is recorded;
// idempotence lives on the settled records themselves, so a retried sweep
// produces a run with zero settled entries rather than double payments.
type SettlementRun struct {
	ID               int64                  `db:"id"`
	RunAt            time.Time              `db:"run_at"`
	PayoutsSettled   int                    `db:"payouts_settled"`
	CashbacksSettled int                    `db:"cashbacks_settled"`
	TotalPaidOut     int64                  `db:"total_paid_out"`
	ExecutionSummary map[string]interface{} `db:"execution_summary"`
	CreatedAt        time.Time              `db:"created_at"`
}
