package service

import (
	"context"
	"fmt"
	"strings"

	"luckyten/models"
)

type accountService struct {
	uowFactory UnitOfWorkFactory
}

// NewAccountService creates a new account service
func NewAccountService(uowFactory UnitOfWorkFactory) AccountService {
	return &accountService{uowFactory: uowFactory}
}

func (s *accountService) GetProfile(ctx context.Context, wallet string) (*models.AccountProfile, error) {
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

	balance, err := uow.BalanceRepository().GetByAccount(ctx, account.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to get balance: %w", err)
	}
	entries, err := uow.ReferralRepository().GetEntriesByReferrer(ctx, account.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to get referrals: %w", err)
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return &models.AccountProfile{
		Account:       account,
		Balance:       balance.Snapshot(),
		ReferralCount: len(entries),
	}, nil
}

func (s *accountService) GetTransactions(ctx context.Context, wallet string, typeFilter *models.TransactionType, limit int) ([]*models.Transaction, *models.TransactionSummary, error) {
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

	txns, err := uow.TransactionRepository().GetByAccount(ctx, account.ID, typeFilter, limit)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get transactions: %w", err)
	}

	if err := uow.Commit(); err != nil {
		return nil, nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	summary := &models.TransactionSummary{}
	for _, txn := range txns {
		switch txn.Type {
		case models.TransactionTypeDeposit:
			summary.TotalDeposits += txn.Amount
		case models.TransactionTypeGameWin, models.TransactionTypeScheduledPayout, models.TransactionTypeCashback:
			summary.TotalWinnings += txn.Amount
		case models.TransactionTypeReferralCommission, models.TransactionTypeCommissionClaim:
			summary.TotalCommissions += txn.Amount
		}
	}

	return txns, summary, nil
}
