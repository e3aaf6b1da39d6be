package repository

import (
	"context"
	"fmt"

	"luckyten/database"
	"luckyten/events"
	"luckyten/service"

	"github.com/jackc/pgx/v5"
)

// unitOfWork implements the UnitOfWork interface
type unitOfWork struct {
	db                 *database.DB
	tx                 pgx.Tx
	ctx                context.Context
	transactionalBus   *events.TransactionalBus
	accountRepo        service.AccountRepository
	balanceRepo        service.BalanceRepository
	transactionRepo    service.TransactionRepository
	referralRepo       service.ReferralRepository
	gameRoundRepo      service.GameRoundRepository
	payoutScheduleRepo service.PayoutScheduleRepository
	cashbackRepo       service.CashbackRepository
	settlementRunRepo  service.SettlementRunRepository
}

// NewUnitOfWorkFactory creates a new UnitOfWork factory
func NewUnitOfWorkFactory(db *database.DB, eventBus *events.Bus) service.UnitOfWorkFactory {
	return &unitOfWorkFactory{
		db:       db,
		eventBus: eventBus,
	}
}

type unitOfWorkFactory struct {
	db       *database.DB
	eventBus *events.Bus
}

func (f *unitOfWorkFactory) Create() service.UnitOfWork {
	return &unitOfWork{
		db:               f.db,
		transactionalBus: events.NewTransactionalBus(f.eventBus),
	}
}

// Begin starts a new transaction
func (u *unitOfWork) Begin(ctx context.Context) error {
	if u.tx != nil {
		return fmt.Errorf("transaction already started")
	}

	tx, err := u.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	u.tx = tx
	u.ctx = ctx

	// Create repositories with the transaction
	u.accountRepo = newAccountRepositoryWithTx(tx)
	u.balanceRepo = newBalanceRepositoryWithTx(tx)
	u.transactionRepo = newTransactionRepositoryWithTx(tx)
	u.referralRepo = newReferralRepositoryWithTx(tx)
	u.gameRoundRepo = newGameRoundRepositoryWithTx(tx)
	u.payoutScheduleRepo = newPayoutScheduleRepositoryWithTx(tx)
	u.cashbackRepo = newCashbackRepositoryWithTx(tx)
	u.settlementRunRepo = newSettlementRunRepositoryWithTx(tx)

	return nil
}

// Commit commits the transaction
func (u *unitOfWork) Commit() error {
	if u.tx == nil {
		return fmt.Errorf("no transaction to commit")
	}

	err := u.tx.Commit(u.ctx)
	if err != nil {
		return translateConcurrency(fmt.Errorf("failed to commit transaction: %w", err))
	}

	u.tx = nil

	// Flush pending events after successful commit
	if u.transactionalBus != nil {
		u.transactionalBus.Flush(u.ctx)
	}

	return nil
}

// Rollback rolls back the transaction
func (u *unitOfWork) Rollback() error {
	if u.tx == nil {
		return nil // Nothing to rollback
	}

	err := u.tx.Rollback(u.ctx)
	if err != nil && err != pgx.ErrTxClosed {
		return fmt.Errorf("failed to rollback transaction: %w", err)
	}

	u.tx = nil

	// Discard pending events on rollback
	if u.transactionalBus != nil {
		u.transactionalBus.Discard()
	}

	return nil
}

// AccountRepository returns the account repository for this unit of work
func (u *unitOfWork) AccountRepository() service.AccountRepository {
	if u.accountRepo == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.accountRepo
}

// BalanceRepository returns the balance repository for this unit of work
func (u *unitOfWork) BalanceRepository() service.BalanceRepository {
	if u.balanceRepo == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.balanceRepo
}

// TransactionRepository returns the ledger repository for this unit of work
func (u *unitOfWork) TransactionRepository() service.TransactionRepository {
	if u.transactionRepo == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.transactionRepo
}

// ReferralRepository returns the referral repository for this unit of work
func (u *unitOfWork) ReferralRepository() service.ReferralRepository {
	if u.referralRepo == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.referralRepo
}

// GameRoundRepository returns the game round repository for this unit of work
func (u *unitOfWork) GameRoundRepository() service.GameRoundRepository {
	if u.gameRoundRepo == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.gameRoundRepo
}

// PayoutScheduleRepository returns the payout schedule repository for this unit of work
func (u *unitOfWork) PayoutScheduleRepository() service.PayoutScheduleRepository {
	if u.payoutScheduleRepo == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.payoutScheduleRepo
}

// CashbackRepository returns the cashback repository for this unit of work
func (u *unitOfWork) CashbackRepository() service.CashbackRepository {
	if u.cashbackRepo == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.cashbackRepo
}

// SettlementRunRepository returns the settlement run repository for this unit of work
func (u *unitOfWork) SettlementRunRepository() service.SettlementRunRepository {
	if u.settlementRunRepo == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.settlementRunRepo
}

// EventBus returns the transactional event bus for this unit of work
func (u *unitOfWork) EventBus() service.EventPublisher {
	if u.transactionalBus == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.transactionalBus
}
