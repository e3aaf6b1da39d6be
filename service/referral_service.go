package service

import (
	"context"
	"fmt"
	"strings"

	"luckyten/events"
	"luckyten/models"

	log "github.com/sirupsen/logrus"
)

type referralService struct {
	uowFactory UnitOfWorkFactory
}

// NewReferralService creates a new referral service
func NewReferralService(uowFactory UnitOfWorkFactory) ReferralService {
	return &referralService{uowFactory: uowFactory}
}

func (s *referralService) GetOverview(ctx context.Context, wallet string) (*models.ReferralOverview, error) {
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

	entries, err := uow.ReferralRepository().GetEntriesByReferrer(ctx, account.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to get referrals: %w", err)
	}
	qualified, err := uow.ReferralRepository().CountQualifiedDirects(ctx, account.ID, QualifiedReferralVolume)
	if err != nil {
		return nil, fmt.Errorf("failed to count qualified referrals: %w", err)
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	overview := &models.ReferralOverview{
		ReferralCode:        account.ReferralCode,
		DirectReferrals:     account.DirectReferralCount,
		TotalReferrals:      len(entries),
		QualifiedReferrals:  qualified,
		FrozenReferralLimit: FrozenReferralLimit,
		FrozenReferralsUsed: min(account.DirectReferralCount, FrozenReferralLimit),
	}
	for _, entry := range entries {
		switch {
		case entry.Level == 1:
			overview.Level1 = append(overview.Level1, entry)
			overview.CommissionLevel1 += entry.Commission
		case entry.Level == 2:
			overview.Level2 = append(overview.Level2, entry)
			overview.CommissionLevel2 += entry.Commission
		default:
			overview.Level3To10Count++
			overview.CommissionLevel3To10 += entry.Commission
		}
	}
	overview.CommissionTotal = overview.CommissionLevel1 + overview.CommissionLevel2 + overview.CommissionLevel3To10

	return overview, nil
}

// Claim credits every accumulated edge commission to cash and zeroes the
// edges in the same transaction. Claiming is gated behind Pro status so
// large payouts require the higher deposit tier.
func (s *referralService) Claim(ctx context.Context, wallet string) (*models.ClaimResult, error) {
	wallet = strings.ToLower(strings.TrimSpace(wallet))
	if wallet == "" {
		return nil, validationErrorf(CodeMissingField, "wallet address is required")
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
	if !account.IsPro() {
		return nil, stateConflictf(CodeProStatusRequired, "pro status required to claim commissions")
	}

	// Serializes against other operations on this account
	if _, err := uow.BalanceRepository().GetByAccountForUpdate(ctx, account.ID); err != nil {
		return nil, fmt.Errorf("failed to lock balance: %w", err)
	}

	claimable, err := uow.ReferralRepository().GetClaimable(ctx, account.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to get claimable commissions: %w", err)
	}

	var total int64
	for _, edge := range claimable {
		total += edge.Commission
	}
	if total <= 0 {
		return nil, stateConflictf(CodeNothingToClaim, "no commissions available to claim")
	}

	if err := uow.BalanceRepository().Credit(ctx, account.ID, models.BucketCash, total); err != nil {
		return nil, fmt.Errorf("failed to credit commissions: %w", err)
	}
	if err := uow.ReferralRepository().ZeroCommissions(ctx, account.ID); err != nil {
		return nil, fmt.Errorf("failed to reset commissions: %w", err)
	}

	txn := &models.Transaction{
		AccountID:   account.ID,
		Type:        models.TransactionTypeCommissionClaim,
		Amount:      total,
		ToBucket:    bucketPtr(models.BucketCash),
		Description: fmt.Sprintf("Claimed referral commissions from %d referrals", len(claimable)),
	}
	if err := RecordTransaction(ctx, uow, txn); err != nil {
		return nil, err
	}

	balance, err := uow.BalanceRepository().GetByAccount(ctx, account.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to get updated balance: %w", err)
	}

	uow.EventBus().Publish(events.CommissionClaimedEvent{
		AccountID: account.ID,
		Amount:    total,
	})

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	log.WithFields(log.Fields{
		"accountId": account.ID,
		"claimed":   total,
	}).Info("Referral commissions claimed")

	return &models.ClaimResult{
		Claimed: total,
		Balance: balance.Snapshot(),
	}, nil
}
