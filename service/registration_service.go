package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"luckyten/events"
	"luckyten/models"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

type registrationService struct {
	uowFactory UnitOfWorkFactory
}

// NewRegistrationService creates a new registration service
func NewRegistrationService(uowFactory UnitOfWorkFactory) RegistrationService {
	return &registrationService{uowFactory: uowFactory}
}

func (s *registrationService) Register(ctx context.Context, wallet, referralCode string) (*models.RegisterResult, error) {
	wallet = strings.ToLower(strings.TrimSpace(wallet))
	if wallet == "" {
		return nil, validationErrorf(CodeMissingField, "wallet address is required")
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback() // No-op if already committed

	existing, err := uow.AccountRepository().GetByWallet(ctx, wallet)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing account: %w", err)
	}
	if existing != nil {
		return nil, stateConflictf(CodeAlreadyRegistered, "wallet %s is already registered", wallet)
	}

	// Resolve the referrer before creating anything so a bad code fails clean
	var referrer *models.Account
	if referralCode != "" {
		referrer, err = uow.AccountRepository().GetByReferralCode(ctx, strings.ToUpper(strings.TrimSpace(referralCode)))
		if err != nil {
			return nil, fmt.Errorf("failed to resolve referral code: %w", err)
		}
		if referrer == nil {
			return nil, &NotFoundError{Entity: "referral code", Key: referralCode}
		}
	}

	now := time.Now().UTC()
	expiry := now.AddDate(0, 0, FreeGracePeriodDays)
	account := &models.Account{
		WalletAddress: wallet,
		ReferralCode:  newReferralCode(),
		Status:        models.StatusFree,
		FreeExpiryAt:  &expiry,
	}
	if referrer != nil {
		referrerWallet := referrer.WalletAddress
		account.ReferredBy = &referrerWallet
	}

	if err := uow.AccountRepository().Create(ctx, account); err != nil {
		return nil, fmt.Errorf("failed to create account: %w", err)
	}

	balance := &models.Balance{
		AccountID: account.ID,
		Frozen:    SignupBonus,
	}
	if err := uow.BalanceRepository().Create(ctx, balance); err != nil {
		return nil, fmt.Errorf("failed to create balance: %w", err)
	}

	bonus := &models.Transaction{
		AccountID:   account.ID,
		Type:        models.TransactionTypeSignupBonus,
		Amount:      SignupBonus,
		ToBucket:    bucketPtr(models.BucketFrozen),
		Description: "Signup bonus (frozen until activation)",
	}
	if err := RecordTransaction(ctx, uow, bonus); err != nil {
		return nil, err
	}

	if referrer != nil {
		if err := s.propagateCommissions(ctx, uow, account, referrer); err != nil {
			return nil, err
		}
	}

	referredBy := ""
	if account.ReferredBy != nil {
		referredBy = *account.ReferredBy
	}
	uow.EventBus().Publish(events.AccountRegisteredEvent{
		AccountID:     account.ID,
		WalletAddress: account.WalletAddress,
		ReferralCode:  account.ReferralCode,
		ReferredBy:    referredBy,
	})

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	log.WithFields(log.Fields{
		"accountId": account.ID,
		"wallet":    account.WalletAddress,
		"referred":  referrer != nil,
	}).Info("Account registered")

	return &models.RegisterResult{
		Account: account,
		Balance: balance.Snapshot(),
	}, nil
}

// propagateCommissions creates referral edges for every ancestor up to
// MaxReferralLevels and credits each ancestor's frozen balance with the
// level-scaled cut of the signup bonus. The edge's commission field mirrors
// the frozen credit at creation time. Level-1 credits stop after the
// referrer's FrozenReferralLimit-th direct referral; the edge is still
// created so the tree stays complete.
func (s *registrationService) propagateCommissions(ctx context.Context, uow UnitOfWork, referred, direct *models.Account) error {
	directCount, err := uow.AccountRepository().IncrementDirectReferrals(ctx, direct.ID)
	if err != nil {
		return fmt.Errorf("failed to increment direct referrals: %w", err)
	}

	commission := bpsOf(SignupBonus, referralCommissionBps(1))
	if directCount > FrozenReferralLimit {
		commission = 0
	}

	if err := s.creditAncestor(ctx, uow, referred, direct, 1, commission); err != nil {
		return err
	}

	ancestor := direct
	for level := 2; level <= MaxReferralLevels; level++ {
		if ancestor.ReferredBy == nil {
			break
		}
		upline, err := uow.AccountRepository().GetByWallet(ctx, *ancestor.ReferredBy)
		if err != nil {
			return fmt.Errorf("failed to resolve upline at level %d: %w", level, err)
		}
		if upline == nil {
			break
		}

		amount := bpsOf(SignupBonus, referralCommissionBps(level))
		if err := s.creditAncestor(ctx, uow, referred, upline, level, amount); err != nil {
			return err
		}
		ancestor = upline
	}

	return nil
}

func (s *registrationService) creditAncestor(ctx context.Context, uow UnitOfWork, referred, ancestor *models.Account, level int, amount int64) error {
	edge := &models.Referral{
		ReferrerID: ancestor.ID,
		ReferredID: referred.ID,
		Level:      level,
		Status:     models.ReferralStatusPending,
		Commission: amount,
	}
	if err := uow.ReferralRepository().Create(ctx, edge); err != nil {
		return fmt.Errorf("failed to create level %d referral: %w", level, err)
	}

	if amount <= 0 {
		return nil
	}

	if err := uow.BalanceRepository().Credit(ctx, ancestor.ID, models.BucketFrozen, amount); err != nil {
		return fmt.Errorf("failed to credit level %d commission: %w", level, err)
	}

	txn := &models.Transaction{
		AccountID:   ancestor.ID,
		Type:        models.TransactionTypeReferralCommission,
		Amount:      amount,
		ToBucket:    bucketPtr(models.BucketFrozen),
		Description: fmt.Sprintf("Level %d referral commission", level),
		Metadata: map[string]any{
			"level":           level,
			"referred_wallet": referred.WalletAddress,
		},
	}
	return RecordTransaction(ctx, uow, txn)
}

// newReferralCode generates an 8-character uppercase code.
func newReferralCode() string {
	return strings.ToUpper(uuid.NewString()[:8])
}
