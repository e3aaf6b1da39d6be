package service

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"luckyten/events"
	"luckyten/models"
)

type gameService struct {
	uowFactory UnitOfWorkFactory

	// draw returns a uniform number in [1, GameNumberMax]. Replaced in
	// tests to force outcomes.
	draw func() int
}

// NewGameService creates a new game service
func NewGameService(uowFactory UnitOfWorkFactory) GameService {
	return &gameService{
		uowFactory: uowFactory,
		draw: func() int {
			return rand.Intn(GameNumberMax) + 1
		},
	}
}

func (s *gameService) Play(ctx context.Context, wallet string, tier models.GameTier, selectedNumber int, entryAmount int64) (*models.PlayResult, error) {
	wallet = strings.ToLower(strings.TrimSpace(wallet))
	if wallet == "" {
		return nil, validationErrorf(CodeMissingField, "wallet address is required")
	}
	if tier != models.GameTierBasic && tier != models.GameTierPro {
		return nil, validationErrorf(CodeInvalidTier, "game tier must be basic or pro")
	}
	if selectedNumber < 1 || selectedNumber > GameNumberMax {
		return nil, validationErrorf(CodeInvalidNumber, "selected number must be between 1 and %d", GameNumberMax)
	}
	if entryAmount < MinEntryAmount || entryAmount > MaxEntryAmount {
		return nil, validationErrorf(CodeInvalidAmount, "entry amount must be between %d and %d USDT",
			MinEntryAmount/100, MaxEntryAmount/100)
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback() // No-op if already committed

	account, err := uow.AccountRepository().GetByWallet(ctx, wallet)
	if err != nil {
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	if account == nil {
		return nil, &NotFoundError{Entity: "account", Key: wallet}
	}

	if tier == models.GameTierPro && !account.IsPro() {
		return nil, stateConflictf(CodeProStatusRequired, "pro game requires Pro status")
	}
	if tier == models.GameTierBasic && account.Status == models.StatusFree {
		return nil, stateConflictf(CodeBasicStatusRequired, "basic game requires Basic activation")
	}

	balance, err := uow.BalanceRepository().GetByAccountForUpdate(ctx, account.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to lock balance: %w", err)
	}

	bucket := models.BucketBasic
	if tier == models.GameTierPro {
		bucket = models.BucketPro
	}
	if available := balance.Bucket(bucket); available < entryAmount {
		return nil, &InsufficientBalanceError{
			Bucket:    string(bucket),
			Available: available,
			Requested: entryAmount,
		}
	}

	drawnNumber := s.draw()
	won := drawnNumber == selectedNumber
	var payout int64
	if won {
		payout = entryAmount * GameMultiplier
	}

	// Entry fee is consumed regardless of outcome
	if err := uow.BalanceRepository().Debit(ctx, account.ID, bucket, entryAmount); err != nil {
		return nil, fmt.Errorf("failed to debit entry: %w", err)
	}

	outcome := models.OutcomeLoss
	if won {
		outcome = models.OutcomeWin
	}
	round := &models.GameRound{
		AccountID:      account.ID,
		Tier:           tier,
		EntryAmount:    entryAmount,
		SelectedNumber: selectedNumber,
		DrawnNumber:    drawnNumber,
		Outcome:        outcome,
		Payout:         payout,
	}
	if err := uow.GameRoundRepository().Create(ctx, round); err != nil {
		return nil, fmt.Errorf("failed to record round: %w", err)
	}

	entry := &models.Transaction{
		AccountID:   account.ID,
		Type:        models.TransactionTypeGameEntry,
		Amount:      entryAmount,
		FromBucket:  bucketPtr(bucket),
		Description: fmt.Sprintf("Game entry: selected %d", selectedNumber),
		Metadata:    map[string]any{"round_id": round.ID},
	}
	if err := RecordTransaction(ctx, uow, entry); err != nil {
		return nil, err
	}

	scheduled := false
	switch {
	case won && tier == models.GameTierBasic:
		// Basic winnings stay locked in the basic bucket
		if err := uow.BalanceRepository().Credit(ctx, account.ID, models.BucketBasic, payout); err != nil {
			return nil, fmt.Errorf("failed to credit winnings: %w", err)
		}
		win := &models.Transaction{
			AccountID:   account.ID,
			Type:        models.TransactionTypeGameWin,
			Amount:      payout,
			ToBucket:    bucketPtr(models.BucketBasic),
			Description: fmt.Sprintf("Won %dx: %d (locked in basic)", GameMultiplier, payout),
			Metadata:    map[string]any{"round_id": round.ID},
		}
		if err := RecordTransaction(ctx, uow, win); err != nil {
			return nil, err
		}

	case won && tier == models.GameTierPro:
		// Pro winnings disburse over a 10-day schedule; nothing is
		// credited until the settlement sweep runs
		now := time.Now().UTC()
		schedule := &models.PayoutSchedule{
			AccountID:     account.ID,
			SourceRoundID: round.ID,
			TotalAmount:   payout,
			DailyAmount:   payout / PayoutScheduleDays,
			TotalDays:     PayoutScheduleDays,
			NextPayoutAt:  now.Add(24 * time.Hour),
			Status:        models.PayoutScheduleActive,
		}
		if err := uow.PayoutScheduleRepository().Create(ctx, schedule); err != nil {
			return nil, fmt.Errorf("failed to create payout schedule: %w", err)
		}
		win := &models.Transaction{
			AccountID:   account.ID,
			Type:        models.TransactionTypeGameWin,
			Amount:      payout,
			Status:      models.TransactionStatusPending,
			Description: fmt.Sprintf("Won %dx: %d (%d-day distribution scheduled)", GameMultiplier, payout, PayoutScheduleDays),
			Metadata:    map[string]any{"round_id": round.ID, "schedule_id": schedule.ID},
		}
		if err := RecordTransaction(ctx, uow, win); err != nil {
			return nil, err
		}
		scheduled = true

	case !won && tier == models.GameTierPro:
		// Losses count toward volume and feed cashback recovery
		if err := uow.AccountRepository().AddVolume(ctx, account.ID, entryAmount); err != nil {
			return nil, fmt.Errorf("failed to add loss volume: %w", err)
		}
		if err := s.recordLoss(ctx, uow, account.ID, entryAmount); err != nil {
			return nil, err
		}
	}

	updated, err := uow.BalanceRepository().GetByAccount(ctx, account.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to get updated balance: %w", err)
	}

	uow.EventBus().Publish(events.GamePlayedEvent{
		AccountID: account.ID,
		RoundID:   round.ID,
		Tier:      tier,
		Entry:     entryAmount,
		Won:       won,
		Payout:    payout,
	})

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return &models.PlayResult{
		RoundID:        round.ID,
		Tier:           tier,
		SelectedNumber: selectedNumber,
		DrawnNumber:    drawnNumber,
		Won:            won,
		EntryAmount:    entryAmount,
		Payout:         payout,
		Scheduled:      scheduled,
		Balance:        updated.Snapshot(),
	}, nil
}

// recordLoss accumulates a Pro-tier loss and activates recovery once the
// loss threshold is crossed.
func (s *gameService) recordLoss(ctx context.Context, uow UnitOfWork, accountID, amount int64) error {
	cb, err := uow.CashbackRepository().GetByAccount(ctx, accountID)
	if err != nil {
		return fmt.Errorf("failed to get cashback status: %w", err)
	}

	if cb == nil {
		rate, roi := cashbackTier(0)
		cb = &models.CashbackStatus{
			AccountID:    accountID,
			TotalLosses:  amount,
			DailyRateBps: rate,
			MaxROIBps:    roi,
			IsActive:     amount >= CashbackActivationLosses,
		}
		if err := uow.CashbackRepository().Create(ctx, cb); err != nil {
			return fmt.Errorf("failed to create cashback status: %w", err)
		}
		return nil
	}

	cb.TotalLosses += amount
	if !cb.IsActive && cb.TotalLosses >= CashbackActivationLosses && cb.TotalRecovered < cb.MaxRecovery() {
		cb.IsActive = true
	}
	if err := uow.CashbackRepository().Update(ctx, cb); err != nil {
		return fmt.Errorf("failed to update cashback status: %w", err)
	}
	return nil
}

func (s *gameService) GetHistory(ctx context.Context, wallet string, limit int) ([]*models.GameRound, *models.GameStats, error) {
	wallet = strings.ToLower(strings.TrimSpace(wallet))
	if wallet == "" {
		return nil, nil, validationErrorf(CodeMissingField, "wallet address is required")
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	account, err := uow.AccountRepository().GetByWallet(ctx, wallet)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get account: %w", err)
	}
	if account == nil {
		return nil, nil, &NotFoundError{Entity: "account", Key: wallet}
	}

	rounds, err := uow.GameRoundRepository().GetByAccount(ctx, account.ID, limit)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get rounds: %w", err)
	}
	stats, err := uow.GameRoundRepository().GetStats(ctx, account.ID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get game stats: %w", err)
	}

	if err := uow.Commit(); err != nil {
		return nil, nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return rounds, stats, nil
}
