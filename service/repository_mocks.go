package service

import (
	"context"
	"time"

	"luckyten/events"
	"luckyten/models"

	"github.com/stretchr/testify/mock"
)

// MockAccountRepository is a mock implementation of AccountRepository
type MockAccountRepository struct {
	mock.Mock
}

func (m *MockAccountRepository) GetByID(ctx context.Context, id int64) (*models.Account, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Account), args.Error(1)
}

func (m *MockAccountRepository) GetByWallet(ctx context.Context, wallet string) (*models.Account, error) {
	args := m.Called(ctx, wallet)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Account), args.Error(1)
}

func (m *MockAccountRepository) GetByReferralCode(ctx context.Context, code string) (*models.Account, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Account), args.Error(1)
}

func (m *MockAccountRepository) Create(ctx context.Context, account *models.Account) error {
	args := m.Called(ctx, account)
	return args.Error(0)
}

func (m *MockAccountRepository) Update(ctx context.Context, account *models.Account) error {
	args := m.Called(ctx, account)
	return args.Error(0)
}

func (m *MockAccountRepository) IncrementDirectReferrals(ctx context.Context, id int64) (int, error) {
	args := m.Called(ctx, id)
	return args.Int(0), args.Error(1)
}

func (m *MockAccountRepository) AddVolume(ctx context.Context, id int64, amount int64) error {
	args := m.Called(ctx, id, amount)
	return args.Error(0)
}

// MockBalanceRepository is a mock implementation of BalanceRepository
type MockBalanceRepository struct {
	mock.Mock
}

func (m *MockBalanceRepository) GetByAccount(ctx context.Context, accountID int64) (*models.Balance, error) {
	args := m.Called(ctx, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Balance), args.Error(1)
}

func (m *MockBalanceRepository) GetByAccountForUpdate(ctx context.Context, accountID int64) (*models.Balance, error) {
	args := m.Called(ctx, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Balance), args.Error(1)
}

func (m *MockBalanceRepository) Create(ctx context.Context, balance *models.Balance) error {
	args := m.Called(ctx, balance)
	return args.Error(0)
}

func (m *MockBalanceRepository) Credit(ctx context.Context, accountID int64, bucket models.Bucket, amount int64) error {
	args := m.Called(ctx, accountID, bucket, amount)
	return args.Error(0)
}

func (m *MockBalanceRepository) Debit(ctx context.Context, accountID int64, bucket models.Bucket, amount int64) error {
	args := m.Called(ctx, accountID, bucket, amount)
	return args.Error(0)
}

func (m *MockBalanceRepository) MoveAll(ctx context.Context, accountID int64, from, to models.Bucket) (int64, error) {
	args := m.Called(ctx, accountID, from, to)
	return args.Get(0).(int64), args.Error(1)
}

// MockTransactionRepository is a mock implementation of TransactionRepository
type MockTransactionRepository struct {
	mock.Mock
}

func (m *MockTransactionRepository) Record(ctx context.Context, txn *models.Transaction) error {
	args := m.Called(ctx, txn)
	return args.Error(0)
}

func (m *MockTransactionRepository) GetByAccount(ctx context.Context, accountID int64, typeFilter *models.TransactionType, limit int) ([]*models.Transaction, error) {
	args := m.Called(ctx, accountID, typeFilter, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Transaction), args.Error(1)
}

// MockReferralRepository is a mock implementation of ReferralRepository
type MockReferralRepository struct {
	mock.Mock
}

func (m *MockReferralRepository) Create(ctx context.Context, referral *models.Referral) error {
	args := m.Called(ctx, referral)
	return args.Error(0)
}

func (m *MockReferralRepository) GetEntriesByReferrer(ctx context.Context, referrerID int64) ([]*models.ReferralEntry, error) {
	args := m.Called(ctx, referrerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.ReferralEntry), args.Error(1)
}

func (m *MockReferralRepository) GetClaimable(ctx context.Context, referrerID int64) ([]*models.Referral, error) {
	args := m.Called(ctx, referrerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Referral), args.Error(1)
}

func (m *MockReferralRepository) ZeroCommissions(ctx context.Context, referrerID int64) error {
	args := m.Called(ctx, referrerID)
	return args.Error(0)
}

func (m *MockReferralRepository) UpdateStatusByReferred(ctx context.Context, referredID int64, status models.ReferralStatus) error {
	args := m.Called(ctx, referredID, status)
	return args.Error(0)
}

func (m *MockReferralRepository) CountQualifiedDirects(ctx context.Context, referrerID int64, minVolume int64) (int, error) {
	args := m.Called(ctx, referrerID, minVolume)
	return args.Int(0), args.Error(1)
}

// MockGameRoundRepository is a mock implementation of GameRoundRepository
type MockGameRoundRepository struct {
	mock.Mock
}

func (m *MockGameRoundRepository) Create(ctx context.Context, round *models.GameRound) error {
	args := m.Called(ctx, round)
	return args.Error(0)
}

func (m *MockGameRoundRepository) GetByAccount(ctx context.Context, accountID int64, limit int) ([]*models.GameRound, error) {
	args := m.Called(ctx, accountID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.GameRound), args.Error(1)
}

func (m *MockGameRoundRepository) GetStats(ctx context.Context, accountID int64) (*models.GameStats, error) {
	args := m.Called(ctx, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.GameStats), args.Error(1)
}

// MockPayoutScheduleRepository is a mock implementation of PayoutScheduleRepository
type MockPayoutScheduleRepository struct {
	mock.Mock
}

func (m *MockPayoutScheduleRepository) Create(ctx context.Context, schedule *models.PayoutSchedule) error {
	args := m.Called(ctx, schedule)
	return args.Error(0)
}

func (m *MockPayoutScheduleRepository) GetActiveByAccount(ctx context.Context, accountID int64) ([]*models.PayoutSchedule, error) {
	args := m.Called(ctx, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.PayoutSchedule), args.Error(1)
}

func (m *MockPayoutScheduleRepository) GetDue(ctx context.Context, now time.Time) ([]*models.PayoutSchedule, error) {
	args := m.Called(ctx, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.PayoutSchedule), args.Error(1)
}

func (m *MockPayoutScheduleRepository) Update(ctx context.Context, schedule *models.PayoutSchedule) error {
	args := m.Called(ctx, schedule)
	return args.Error(0)
}

// MockCashbackRepository is a mock implementation of CashbackRepository
type MockCashbackRepository struct {
	mock.Mock
}

func (m *MockCashbackRepository) GetByAccount(ctx context.Context, accountID int64) (*models.CashbackStatus, error) {
	args := m.Called(ctx, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.CashbackStatus), args.Error(1)
}

func (m *MockCashbackRepository) Create(ctx context.Context, status *models.CashbackStatus) error {
	args := m.Called(ctx, status)
	return args.Error(0)
}

func (m *MockCashbackRepository) Update(ctx context.Context, status *models.CashbackStatus) error {
	args := m.Called(ctx, status)
	return args.Error(0)
}

func (m *MockCashbackRepository) GetActive(ctx context.Context) ([]*models.CashbackStatus, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.CashbackStatus), args.Error(1)
}

// MockSettlementRunRepository is a mock implementation of SettlementRunRepository
type MockSettlementRunRepository struct {
	mock.Mock
}

func (m *MockSettlementRunRepository) Create(ctx context.Context, run *models.SettlementRun) error {
	args := m.Called(ctx, run)
	return args.Error(0)
}

func (m *MockSettlementRunRepository) GetLatest(ctx context.Context) (*models.SettlementRun, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.SettlementRun), args.Error(1)
}

// MockEventPublisher is a mock implementation of EventPublisher for testing
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(event events.Event) {
	m.Called(event)
}

// noopPublisher swallows events for tests that don't assert on them
type noopPublisher struct{}

func (noopPublisher) Publish(events.Event) {}

// MockUnitOfWork is a mock implementation of UnitOfWork. Repositories are
// plain fields set via SetRepositories; Begin/Commit/Rollback are mocked.
type MockUnitOfWork struct {
	mock.Mock

	accountRepo        AccountRepository
	balanceRepo        BalanceRepository
	transactionRepo    TransactionRepository
	referralRepo       ReferralRepository
	gameRoundRepo      GameRoundRepository
	payoutScheduleRepo PayoutScheduleRepository
	cashbackRepo       CashbackRepository
	settlementRunRepo  SettlementRunRepository
	eventBus           EventPublisher
}

// SetRepositories wires the repository mocks a test cares about. Nil entries
// are fine as long as the code under test never touches them.
func (m *MockUnitOfWork) SetRepositories(
	accounts AccountRepository,
	balances BalanceRepository,
	transactions TransactionRepository,
	referrals ReferralRepository,
	gameRounds GameRoundRepository,
	payoutSchedules PayoutScheduleRepository,
	cashbacks CashbackRepository,
	settlementRuns SettlementRunRepository,
) {
	m.accountRepo = accounts
	m.balanceRepo = balances
	m.transactionRepo = transactions
	m.referralRepo = referrals
	m.gameRoundRepo = gameRounds
	m.payoutScheduleRepo = payoutSchedules
	m.cashbackRepo = cashbacks
	m.settlementRunRepo = settlementRuns
}

// SetEventBus overrides the default no-op publisher
func (m *MockUnitOfWork) SetEventBus(bus EventPublisher) {
	m.eventBus = bus
}

func (m *MockUnitOfWork) Begin(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockUnitOfWork) Commit() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockUnitOfWork) Rollback() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockUnitOfWork) AccountRepository() AccountRepository { return m.accountRepo }

func (m *MockUnitOfWork) BalanceRepository() BalanceRepository { return m.balanceRepo }

func (m *MockUnitOfWork) TransactionRepository() TransactionRepository { return m.transactionRepo }

func (m *MockUnitOfWork) ReferralRepository() ReferralRepository { return m.referralRepo }

func (m *MockUnitOfWork) GameRoundRepository() GameRoundRepository { return m.gameRoundRepo }

func (m *MockUnitOfWork) PayoutScheduleRepository() PayoutScheduleRepository {
	return m.payoutScheduleRepo
}

func (m *MockUnitOfWork) CashbackRepository() CashbackRepository { return m.cashbackRepo }

func (m *MockUnitOfWork) SettlementRunRepository() SettlementRunRepository {
	return m.settlementRunRepo
}

func (m *MockUnitOfWork) EventBus() EventPublisher {
	if m.eventBus == nil {
		return noopPublisher{}
	}
	return m.eventBus
}

// MockUnitOfWorkFactory is a mock implementation of UnitOfWorkFactory
type MockUnitOfWorkFactory struct {
	mock.Mock
}

func (m *MockUnitOfWorkFactory) Create() UnitOfWork {
	args := m.Called()
	return args.Get(0).(UnitOfWork)
}
