package service

import (
	"context"
	"fmt"
	"time"

	"luckyten/events"
	"luckyten/models"

	log "github.com/sirupsen/logrus"
)

type settlementService struct {
	uowFactory UnitOfWorkFactory
}

// NewSettlementService creates a new settlement service
func NewSettlementService(uowFactory UnitOfWorkFactory) SettlementService {
	return &settlementService{uowFactory: uowFactory}
}

// SettleDue advances every due payout schedule and active cashback by one
// installment inside a single transaction. Idempotence is carried by the
// records themselves: a schedule is due only while next_payout_at <= now,
// and a cashback pays at most once per UTC day via last_payout_at. Running
// the sweep twice therefore settles nothing the second time.
func (s *settlementService) SettleDue(ctx context.Context, now time.Time) (*models.SettlementRun, error) {
	now = now.UTC()

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback() // No-op if already committed

	run := &models.SettlementRun{RunAt: now}

	payoutTotal, err := s.settlePayouts(ctx, uow, now, run)
	if err != nil {
		return nil, err
	}
	cashbackTotal, err := s.settleCashbacks(ctx, uow, now, run)
	if err != nil {
		return nil, err
	}

	run.TotalPaidOut = payoutTotal + cashbackTotal
	run.ExecutionSummary = map[string]interface{}{
		"payout_total":   payoutTotal,
		"cashback_total": cashbackTotal,
	}
	if err := uow.SettlementRunRepository().Create(ctx, run); err != nil {
		return nil, fmt.Errorf("failed to record settlement run: %w", err)
	}

	uow.EventBus().Publish(events.SettlementCompletedEvent{
		RunID:            run.ID,
		PayoutsSettled:   run.PayoutsSettled,
		CashbacksSettled: run.CashbacksSettled,
		TotalPaidOut:     run.TotalPaidOut,
	})

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit settlement: %w", err)
	}

	log.WithFields(log.Fields{
		"runId":     run.ID,
		"payouts":   run.PayoutsSettled,
		"cashbacks": run.CashbacksSettled,
		"totalPaid": run.TotalPaidOut,
	}).Info("Settlement sweep completed")

	return run, nil
}

// settlePayouts credits one installment on every schedule whose next payout
// is due. The final installment absorbs the division remainder so the
// schedule settles its total exactly.
func (s *settlementService) settlePayouts(ctx context.Context, uow UnitOfWork, now time.Time, run *models.SettlementRun) (int64, error) {
	due, err := uow.PayoutScheduleRepository().GetDue(ctx, now)
	if err != nil {
		return 0, fmt.Errorf("failed to get due schedules: %w", err)
	}

	var total int64
	for _, schedule := range due {
		installment := schedule.InstallmentAmount()

		if err := uow.BalanceRepository().Credit(ctx, schedule.AccountID, models.BucketCash, installment); err != nil {
			return 0, fmt.Errorf("failed to credit installment for schedule %d: %w", schedule.ID, err)
		}

		schedule.PaidDays++
		if schedule.PaidDays >= schedule.TotalDays {
			schedule.Status = models.PayoutScheduleCompleted
		} else {
			schedule.NextPayoutAt = now.Add(24 * time.Hour)
		}
		if err := uow.PayoutScheduleRepository().Update(ctx, schedule); err != nil {
			return 0, fmt.Errorf("failed to update schedule %d: %w", schedule.ID, err)
		}

		txn := &models.Transaction{
			AccountID:   schedule.AccountID,
			Type:        models.TransactionTypeScheduledPayout,
			Amount:      installment,
			ToBucket:    bucketPtr(models.BucketCash),
			Description: fmt.Sprintf("Scheduled payout day %d/%d", schedule.PaidDays, schedule.TotalDays),
			Metadata:    map[string]any{"schedule_id": schedule.ID},
		}
		if err := RecordTransaction(ctx, uow, txn); err != nil {
			return 0, err
		}

		total += installment
		run.PayoutsSettled++
	}
	return total, nil
}

// settleCashbacks pays the daily recovery on every active cashback. The
// daily rate and ROI cap are recomputed from the current qualified referral
// count before paying, so tier upgrades take effect on the next sweep.
func (s *settlementService) settleCashbacks(ctx context.Context, uow UnitOfWork, now time.Time, run *models.SettlementRun) (int64, error) {
	active, err := uow.CashbackRepository().GetActive(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to get active cashbacks: %w", err)
	}

	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	var total int64
	for _, cb := range active {
		// At most one recovery per UTC day
		if cb.LastPayoutAt != nil && !cb.LastPayoutAt.Before(dayStart) {
			continue
		}

		account, err := uow.AccountRepository().GetByID(ctx, cb.AccountID)
		if err != nil {
			return 0, fmt.Errorf("failed to get account %d: %w", cb.AccountID, err)
		}
		if account == nil || !account.IsPro() {
			continue
		}

		qualified, err := uow.ReferralRepository().CountQualifiedDirects(ctx, cb.AccountID, QualifiedReferralVolume)
		if err != nil {
			return 0, fmt.Errorf("failed to count qualified referrals: %w", err)
		}
		cb.QualifiedReferrals = qualified
		cb.DailyRateBps, cb.MaxROIBps = cashbackTier(qualified)

		remaining := cb.RemainingRecovery()
		if remaining <= 0 {
			cb.IsActive = false
			if err := uow.CashbackRepository().Update(ctx, cb); err != nil {
				return 0, fmt.Errorf("failed to deactivate cashback %d: %w", cb.ID, err)
			}
			continue
		}

		daily := bpsOf(cb.TotalLosses, cb.DailyRateBps)
		if daily > remaining {
			daily = remaining
		}
		if daily <= 0 {
			continue
		}

		if err := uow.BalanceRepository().Credit(ctx, cb.AccountID, models.BucketCash, daily); err != nil {
			return 0, fmt.Errorf("failed to credit cashback for account %d: %w", cb.AccountID, err)
		}

		cb.TotalRecovered += daily
		cb.LastPayoutAt = &now
		if cb.TotalRecovered >= cb.MaxRecovery() {
			cb.IsActive = false
		}
		if err := uow.CashbackRepository().Update(ctx, cb); err != nil {
			return 0, fmt.Errorf("failed to update cashback %d: %w", cb.ID, err)
		}

		txn := &models.Transaction{
			AccountID:   cb.AccountID,
			Type:        models.TransactionTypeCashback,
			Amount:      daily,
			ToBucket:    bucketPtr(models.BucketCash),
			Description: fmt.Sprintf("Daily cashback recovery (%d/%d recovered)", cb.TotalRecovered, cb.MaxRecovery()),
			Metadata:    map[string]any{"daily_rate_bps": cb.DailyRateBps},
		}
		if err := RecordTransaction(ctx, uow, txn); err != nil {
			return 0, err
		}

		total += daily
		run.CashbacksSettled++
	}
	return total, nil
}

func (s *settlementService) LatestRun(ctx context.Context) (*models.SettlementRun, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	run, err := uow.SettlementRunRepository().GetLatest(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get latest run: %w", err)
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return run, nil
}
