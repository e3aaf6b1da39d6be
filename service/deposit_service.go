package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"luckyten/events"
	"luckyten/models"

	log "github.com/sirupsen/logrus"
)

type depositService struct {
	uowFactory UnitOfWorkFactory
}

// NewDepositService creates a new deposit service
func NewDepositService(uowFactory UnitOfWorkFactory) DepositService {
	return &depositService{uowFactory: uowFactory}
}

// Deposit applies a deposit and drives the Free -> Basic -> Pro activation
// state machine. Status never moves backwards; each branch applies its
// balance and account updates inside a single transaction with the balance
// row locked, so a crash can never leave a half-applied transition.
func (s *depositService) Deposit(ctx context.Context, wallet string, amount int64, txHash string) (*models.DepositResult, error) {
	wallet = strings.ToLower(strings.TrimSpace(wallet))
	if wallet == "" {
		return nil, validationErrorf(CodeMissingField, "wallet address is required")
	}
	if amount < 1_00 {
		return nil, validationErrorf(CodeInvalidAmount, "minimum deposit is 1 USDT")
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

	// Serializes concurrent operations against this account
	if _, err := uow.BalanceRepository().GetByAccountForUpdate(ctx, account.ID); err != nil {
		return nil, fmt.Errorf("failed to lock balance: %w", err)
	}

	now := time.Now().UTC()
	result := &models.DepositResult{Activation: models.ActivationNone}

	switch account.Status {
	case models.StatusFree:
		if amount < BasicActivationMin {
			return nil, stateConflictf(CodeBelowActivationThreshold,
				"minimum %d USDT required for Basic activation", BasicActivationMin/100)
		}

		unlocked, err := uow.BalanceRepository().MoveAll(ctx, account.ID, models.BucketFrozen, models.BucketBasic)
		if err != nil {
			return nil, fmt.Errorf("failed to unlock frozen balance: %w", err)
		}
		if err := uow.BalanceRepository().Credit(ctx, account.ID, models.BucketBasic, amount); err != nil {
			return nil, fmt.Errorf("failed to credit deposit: %w", err)
		}

		account.Status = models.StatusBasic
		account.ActivatedAt = &now
		account.FreeExpiryAt = nil
		account.TotalDeposited = amount
		if err := uow.AccountRepository().Update(ctx, account); err != nil {
			return nil, fmt.Errorf("failed to update account: %w", err)
		}
		if err := uow.ReferralRepository().UpdateStatusByReferred(ctx, account.ID, models.ReferralStatusActivated); err != nil {
			return nil, fmt.Errorf("failed to update referral status: %w", err)
		}

		txn := &models.Transaction{
			AccountID:   account.ID,
			Type:        models.TransactionTypeDeposit,
			Amount:      amount + unlocked,
			ToBucket:    bucketPtr(models.BucketBasic),
			Description: fmt.Sprintf("Basic activation: %d deposited + %d unlocked", amount, unlocked),
			Metadata:    depositMetadata(txHash),
		}
		if err := RecordTransaction(ctx, uow, txn); err != nil {
			return nil, err
		}

		uow.EventBus().Publish(events.AccountActivatedEvent{
			AccountID: account.ID,
			OldStatus: models.StatusFree,
			NewStatus: models.StatusBasic,
		})

		result.Activation = models.ActivationBasic
		result.FrozenUnlocked = unlocked

	case models.StatusBasic:
		newTotal := account.TotalDeposited + amount
		if newTotal >= ProActivationTotal {
			converted, err := uow.BalanceRepository().MoveAll(ctx, account.ID, models.BucketBasic, models.BucketPro)
			if err != nil {
				return nil, fmt.Errorf("failed to convert basic balance: %w", err)
			}
			if err := uow.BalanceRepository().Credit(ctx, account.ID, models.BucketPro, amount); err != nil {
				return nil, fmt.Errorf("failed to credit deposit: %w", err)
			}

			account.Status = models.StatusPro
			account.ProActivatedAt = &now
			account.TotalDeposited = newTotal
			account.TotalVolume += amount
			if err := uow.AccountRepository().Update(ctx, account); err != nil {
				return nil, fmt.Errorf("failed to update account: %w", err)
			}
			if err := uow.ReferralRepository().UpdateStatusByReferred(ctx, account.ID, models.ReferralStatusPro); err != nil {
				return nil, fmt.Errorf("failed to update referral status: %w", err)
			}

			txn := &models.Transaction{
				AccountID:   account.ID,
				Type:        models.TransactionTypeDeposit,
				Amount:      amount + converted,
				ToBucket:    bucketPtr(models.BucketPro),
				Description: fmt.Sprintf("Pro activation: %d deposited + %d converted", amount, converted),
				Metadata:    depositMetadata(txHash),
			}
			if err := RecordTransaction(ctx, uow, txn); err != nil {
				return nil, err
			}

			uow.EventBus().Publish(events.AccountActivatedEvent{
				AccountID: account.ID,
				OldStatus: models.StatusBasic,
				NewStatus: models.StatusPro,
			})

			result.Activation = models.ActivationPro
		} else {
			if err := uow.BalanceRepository().Credit(ctx, account.ID, models.BucketBasic, amount); err != nil {
				return nil, fmt.Errorf("failed to credit deposit: %w", err)
			}

			account.TotalDeposited = newTotal
			if err := uow.AccountRepository().Update(ctx, account); err != nil {
				return nil, fmt.Errorf("failed to update account: %w", err)
			}

			txn := &models.Transaction{
				AccountID:   account.ID,
				Type:        models.TransactionTypeDeposit,
				Amount:      amount,
				ToBucket:    bucketPtr(models.BucketBasic),
				Description: fmt.Sprintf("Deposit to basic: %d", amount),
				Metadata:    depositMetadata(txHash),
			}
			if err := RecordTransaction(ctx, uow, txn); err != nil {
				return nil, err
			}
		}

	case models.StatusPro:
		if err := uow.BalanceRepository().Credit(ctx, account.ID, models.BucketPro, amount); err != nil {
			return nil, fmt.Errorf("failed to credit deposit: %w", err)
		}

		account.TotalDeposited += amount
		account.TotalVolume += amount
		if err := uow.AccountRepository().Update(ctx, account); err != nil {
			return nil, fmt.Errorf("failed to update account: %w", err)
		}

		txn := &models.Transaction{
			AccountID:   account.ID,
			Type:        models.TransactionTypeDeposit,
			Amount:      amount,
			ToBucket:    bucketPtr(models.BucketPro),
			Description: fmt.Sprintf("Deposit to pro: %d", amount),
			Metadata:    depositMetadata(txHash),
		}
		if err := RecordTransaction(ctx, uow, txn); err != nil {
			return nil, err
		}
	}

	balance, err := uow.BalanceRepository().GetByAccount(ctx, account.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to get updated balance: %w", err)
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	log.WithFields(log.Fields{
		"accountId":  account.ID,
		"amount":     amount,
		"activation": result.Activation,
		"status":     account.Status,
	}).Info("Deposit applied")

	result.TotalDeposited = account.TotalDeposited
	result.TotalVolume = account.TotalVolume
	result.Status = account.Status
	result.Balance = balance.Snapshot()
	return result, nil
}

func depositMetadata(txHash string) map[string]any {
	if txHash == "" {
		return nil
	}
	return map[string]any{"tx_hash": txHash}
}
