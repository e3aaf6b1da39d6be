package service

import (
	"context"
	"fmt"
	"strings"

	"luckyten/models"
)

type payoutService struct {
	uowFactory UnitOfWorkFactory
}

// NewPayoutService creates a new payout service
func NewPayoutService(uowFactory UnitOfWorkFactory) PayoutService {
	return &payoutService{uowFactory: uowFactory}
}

func (s *payoutService) GetOverview(ctx context.Context, wallet string) (*models.PayoutOverview, error) {
	wallet = strings.ToLower(strings.TrimSpace(wallet))
	if wallet == "" {
		return nil, validationErrorf(CodeMissingField, "wallet address is required")
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	account, err := uow.AccountRepository().GetByWallet(ctx, wallet)
	if err != nil {
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	if account == nil {
		return nil, &NotFoundError{Entity: "account", Key: wallet}
	}

	schedules, err := uow.PayoutScheduleRepository().GetActiveByAccount(ctx, account.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to get payout schedules: %w", err)
	}
	cashback, err := uow.CashbackRepository().GetByAccount(ctx, account.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to get cashback status: %w", err)
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	overview := &models.PayoutOverview{
		Schedules: schedules,
		Cashback:  cashback,
	}
	for _, schedule := range schedules {
		overview.TotalPending += schedule.RemainingAmount()
	}
	return overview, nil
}
