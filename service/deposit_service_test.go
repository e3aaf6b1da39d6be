package service

import (
	"context"
	"testing"

	"luckyten/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func setupDepositMocks() (*MockUnitOfWorkFactory, *MockAccountRepository, *MockBalanceRepository, *MockTransactionRepository, *MockReferralRepository) {
	mockUoW := new(MockUnitOfWork)
	mockFactory := new(MockUnitOfWorkFactory)
	mockAccountRepo := new(MockAccountRepository)
	mockBalanceRepo := new(MockBalanceRepository)
	mockTxnRepo := new(MockTransactionRepository)
	mockReferralRepo := new(MockReferralRepository)

	mockUoW.SetRepositories(mockAccountRepo, mockBalanceRepo, mockTxnRepo, mockReferralRepo, nil, nil, nil, nil)
	mockFactory.On("Create").Return(mockUoW)
	mockUoW.On("Begin", mock.Anything).Return(nil)
	mockUoW.On("Commit").Return(nil)
	mockUoW.On("Rollback").Return(nil)

	return mockFactory, mockAccountRepo, mockBalanceRepo, mockTxnRepo, mockReferralRepo
}

func TestDepositService_Deposit_BasicActivation(t *testing.T) {
	ctx := context.Background()
	mockFactory, mockAccountRepo, mockBalanceRepo, mockTxnRepo, mockReferralRepo := setupDepositMocks()

	service := NewDepositService(mockFactory)

	account := &models.Account{
		ID:            1,
		WalletAddress: "0xabc",
		Status:        models.StatusFree,
	}
	lockedBalance := &models.Balance{AccountID: 1, Frozen: SignupBonus}
	finalBalance := &models.Balance{AccountID: 1, Basic: SignupBonus + 10_00}

	mockAccountRepo.On("GetByWallet", ctx, "0xabc").Return(account, nil)
	mockBalanceRepo.On("GetByAccountForUpdate", ctx, int64(1)).Return(lockedBalance, nil)
	mockBalanceRepo.On("MoveAll", ctx, int64(1), models.BucketFrozen, models.BucketBasic).Return(int64(SignupBonus), nil)
	mockBalanceRepo.On("Credit", ctx, int64(1), models.BucketBasic, int64(10_00)).Return(nil)
	mockAccountRepo.On("Update", ctx, mock.MatchedBy(func(a *models.Account) bool {
		return a.Status == models.StatusBasic &&
			a.ActivatedAt != nil &&
			a.FreeExpiryAt == nil &&
			a.TotalDeposited == 10_00
	})).Return(nil)
	mockReferralRepo.On("UpdateStatusByReferred", ctx, int64(1), models.ReferralStatusActivated).Return(nil)
	mockTxnRepo.On("Record", ctx, mock.MatchedBy(func(txn *models.Transaction) bool {
		return txn.Type == models.TransactionTypeDeposit && txn.Amount == 10_00+SignupBonus
	})).Return(nil)
	mockBalanceRepo.On("GetByAccount", ctx, int64(1)).Return(finalBalance, nil)

	result, err := service.Deposit(ctx, "0xabc", 10_00, "0xhash")

	assert.NoError(t, err)
	assert.Equal(t, models.ActivationBasic, result.Activation)
	assert.Equal(t, int64(SignupBonus), result.FrozenUnlocked)
	assert.Equal(t, models.StatusBasic, result.Status)
	assert.Equal(t, int64(SignupBonus+10_00), result.Balance.Basic)

	mockAccountRepo.AssertExpectations(t)
	mockBalanceRepo.AssertExpectations(t)
	mockReferralRepo.AssertExpectations(t)
	mockTxnRepo.AssertExpectations(t)
}

func TestDepositService_Deposit_BelowActivationThreshold(t *testing.T) {
	ctx := context.Background()
	mockFactory, mockAccountRepo, mockBalanceRepo, _, _ := setupDepositMocks()

	service := NewDepositService(mockFactory)

	account := &models.Account{ID: 1, WalletAddress: "0xabc", Status: models.StatusFree}
	mockAccountRepo.On("GetByWallet", ctx, "0xabc").Return(account, nil)
	mockBalanceRepo.On("GetByAccountForUpdate", ctx, int64(1)).Return(&models.Balance{AccountID: 1}, nil)

	result, err := service.Deposit(ctx, "0xabc", 5_00, "")

	assert.Error(t, err)
	assert.Nil(t, result)
	var sc *StateConflictError
	assert.ErrorAs(t, err, &sc)
	assert.Equal(t, CodeBelowActivationThreshold, sc.Code)
	// No balance mutation on rejection
	mockBalanceRepo.AssertNotCalled(t, "MoveAll", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	mockBalanceRepo.AssertNotCalled(t, "Credit", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestDepositService_Deposit_ProActivationAtThreshold(t *testing.T) {
	ctx := context.Background()
	mockFactory, mockAccountRepo, mockBalanceRepo, mockTxnRepo, mockReferralRepo := setupDepositMocks()

	service := NewDepositService(mockFactory)

	account := &models.Account{
		ID:             1,
		WalletAddress:  "0xabc",
		Status:         models.StatusBasic,
		TotalDeposited: 60_00,
	}
	basicHeld := int64(75_00)

	mockAccountRepo.On("GetByWallet", ctx, "0xabc").Return(account, nil)
	mockBalanceRepo.On("GetByAccountForUpdate", ctx, int64(1)).Return(&models.Balance{AccountID: 1, Basic: basicHeld}, nil)
	mockBalanceRepo.On("MoveAll", ctx, int64(1), models.BucketBasic, models.BucketPro).Return(basicHeld, nil)
	mockBalanceRepo.On("Credit", ctx, int64(1), models.BucketPro, int64(40_00)).Return(nil)
	mockAccountRepo.On("Update", ctx, mock.MatchedBy(func(a *models.Account) bool {
		return a.Status == models.StatusPro &&
			a.ProActivatedAt != nil &&
			a.TotalDeposited == 100_00 &&
			a.TotalVolume == 40_00
	})).Return(nil)
	mockReferralRepo.On("UpdateStatusByReferred", ctx, int64(1), models.ReferralStatusPro).Return(nil)
	mockTxnRepo.On("Record", ctx, mock.MatchedBy(func(txn *models.Transaction) bool {
		return txn.Type == models.TransactionTypeDeposit && txn.Amount == 40_00+basicHeld
	})).Return(nil)
	mockBalanceRepo.On("GetByAccount", ctx, int64(1)).Return(&models.Balance{AccountID: 1, Pro: basicHeld + 40_00}, nil)

	result, err := service.Deposit(ctx, "0xabc", 40_00, "")

	assert.NoError(t, err)
	assert.Equal(t, models.ActivationPro, result.Activation)
	assert.Equal(t, models.StatusPro, result.Status)
	assert.Equal(t, int64(100_00), result.TotalDeposited)

	mockBalanceRepo.AssertExpectations(t)
	mockReferralRepo.AssertExpectations(t)
}

func TestDepositService_Deposit_BasicBelowProThreshold(t *testing.T) {
	ctx := context.Background()
	mockFactory, mockAccountRepo, mockBalanceRepo, mockTxnRepo, _ := setupDepositMocks()

	service := NewDepositService(mockFactory)

	account := &models.Account{
		ID:             1,
		WalletAddress:  "0xabc",
		Status:         models.StatusBasic,
		TotalDeposited: 20_00,
	}

	mockAccountRepo.On("GetByWallet", ctx, "0xabc").Return(account, nil)
	mockBalanceRepo.On("GetByAccountForUpdate", ctx, int64(1)).Return(&models.Balance{AccountID: 1, Basic: 30_00}, nil)
	mockBalanceRepo.On("Credit", ctx, int64(1), models.BucketBasic, int64(30_00)).Return(nil)
	mockAccountRepo.On("Update", ctx, mock.MatchedBy(func(a *models.Account) bool {
		return a.Status == models.StatusBasic && a.TotalDeposited == 50_00
	})).Return(nil)
	mockTxnRepo.On("Record", ctx, mock.Anything).Return(nil)
	mockBalanceRepo.On("GetByAccount", ctx, int64(1)).Return(&models.Balance{AccountID: 1, Basic: 60_00}, nil)

	result, err := service.Deposit(ctx, "0xabc", 30_00, "")

	assert.NoError(t, err)
	assert.Equal(t, models.ActivationNone, result.Activation)
	assert.Equal(t, models.StatusBasic, result.Status)
	// No tier conversion happened
	mockBalanceRepo.AssertNotCalled(t, "MoveAll", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestDepositService_Deposit_ProAddsVolume(t *testing.T) {
	ctx := context.Background()
	mockFactory, mockAccountRepo, mockBalanceRepo, mockTxnRepo, _ := setupDepositMocks()

	service := NewDepositService(mockFactory)

	account := &models.Account{
		ID:             1,
		WalletAddress:  "0xabc",
		Status:         models.StatusPro,
		TotalDeposited: 150_00,
		TotalVolume:    80_00,
	}

	mockAccountRepo.On("GetByWallet", ctx, "0xabc").Return(account, nil)
	mockBalanceRepo.On("GetByAccountForUpdate", ctx, int64(1)).Return(&models.Balance{AccountID: 1, Pro: 50_00}, nil)
	mockBalanceRepo.On("Credit", ctx, int64(1), models.BucketPro, int64(25_00)).Return(nil)
	mockAccountRepo.On("Update", ctx, mock.MatchedBy(func(a *models.Account) bool {
		return a.TotalDeposited == 175_00 && a.TotalVolume == 105_00
	})).Return(nil)
	mockTxnRepo.On("Record", ctx, mock.Anything).Return(nil)
	mockBalanceRepo.On("GetByAccount", ctx, int64(1)).Return(&models.Balance{AccountID: 1, Pro: 75_00}, nil)

	result, err := service.Deposit(ctx, "0xabc", 25_00, "")

	assert.NoError(t, err)
	assert.Equal(t, models.ActivationNone, result.Activation)
	assert.Equal(t, int64(105_00), result.TotalVolume)
}

func TestDepositService_Deposit_Validation(t *testing.T) {
	service := NewDepositService(new(MockUnitOfWorkFactory))
	ctx := context.Background()

	_, err := service.Deposit(ctx, "", 10_00, "")
	assert.True(t, IsValidation(err))

	_, err = service.Deposit(ctx, "0xabc", 50, "")
	assert.True(t, IsValidation(err))
}

func TestDepositService_Deposit_AccountNotFound(t *testing.T) {
	ctx := context.Background()
	mockFactory, mockAccountRepo, _, _, _ := setupDepositMocks()

	service := NewDepositService(mockFactory)
	mockAccountRepo.On("GetByWallet", ctx, "0xmissing").Return(nil, nil)

	result, err := service.Deposit(ctx, "0xmissing", 10_00, "")

	assert.Error(t, err)
	assert.Nil(t, result)
	assert.True(t, IsNotFound(err))
}
