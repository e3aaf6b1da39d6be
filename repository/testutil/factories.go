package testutil

import (
	"fmt"
	"time"

	"luckyten/models"
)

// CreateTestAccount creates a test account with default values
func CreateTestAccount(wallet string) *models.Account {
	return &models.Account{
		WalletAddress: wallet,
		ReferralCode:  fmt.Sprintf("T%07X", time.Now().UnixNano()%0xFFFFFFF),
		Status:        models.StatusFree,
	}
}

// CreateTestAccountWithStatus creates a test account in a specific tier
func CreateTestAccountWithStatus(wallet string, status models.AccountStatus) *models.Account {
	account := CreateTestAccount(wallet)
	account.Status = status
	return account
}

// CreateTestBalance creates a balance row with the given bucket amounts
func CreateTestBalance(accountID int64, frozen, basic, pro, cash int64) *models.Balance {
	return &models.Balance{
		AccountID: accountID,
		Frozen:    frozen,
		Basic:     basic,
		Pro:       pro,
		Cash:      cash,
	}
}

// CreateTestGameRound creates a winning Pro round for an account
func CreateTestGameRound(accountID int64, entry int64) *models.GameRound {
	return &models.GameRound{
		AccountID:      accountID,
		Tier:           models.GameTierPro,
		EntryAmount:    entry,
		SelectedNumber: 7,
		DrawnNumber:    7,
		Outcome:        models.OutcomeWin,
		Payout:         entry * 8,
	}
}

// CreateTestPayoutSchedule creates a 10-day schedule with a division remainder
// on the final installment
func CreateTestPayoutSchedule(accountID, roundID int64, nextPayoutAt time.Time) *models.PayoutSchedule {
	return &models.PayoutSchedule{
		AccountID:     accountID,
		SourceRoundID: roundID,
		TotalAmount:   10_05,
		DailyAmount:   1_00,
		TotalDays:     10,
		NextPayoutAt:  nextPayoutAt,
		Status:        models.PayoutScheduleActive,
	}
}

// CreateTestSettlementRun creates a test settlement run
func CreateTestSettlementRun(runAt time.Time) *models.SettlementRun {
	return &models.SettlementRun{
		RunAt:            runAt,
		PayoutsSettled:   3,
		CashbacksSettled: 2,
		TotalPaidOut:     5000,
		ExecutionSummary: map[string]interface{}{
			"payout_total":   4000,
			"cashback_total": 1000,
		},
	}
}

// CreateTestSettlementRunWithDetails creates a test settlement run with specific totals
func CreateTestSettlementRunWithDetails(runAt time.Time, totalPaid int64, payouts, cashbacks int) *models.SettlementRun {
	run := CreateTestSettlementRun(runAt)
	run.TotalPaidOut = totalPaid
	run.PayoutsSettled = payouts
	run.CashbacksSettled = cashbacks
	return run
}
