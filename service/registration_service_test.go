package service

import (
	"context"
	"testing"

	"luckyten/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func setupRegistrationMocks() (*MockUnitOfWorkFactory, *MockUnitOfWork, *MockAccountRepository, *MockBalanceRepository, *MockTransactionRepository, *MockReferralRepository) {
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

	return mockFactory, mockUoW, mockAccountRepo, mockBalanceRepo, mockTxnRepo, mockReferralRepo
}

func TestRegistrationService_Register_NoReferrer(t *testing.T) {
	ctx := context.Background()
	mockFactory, mockUoW, mockAccountRepo, mockBalanceRepo, mockTxnRepo, _ := setupRegistrationMocks()

	service := NewRegistrationService(mockFactory)

	mockAccountRepo.On("GetByWallet", ctx, "0xabc123").Return(nil, nil)
	mockAccountRepo.On("Create", ctx, mock.MatchedBy(func(a *models.Account) bool {
		return a.WalletAddress == "0xabc123" &&
			a.Status == models.StatusFree &&
			a.ReferralCode != "" &&
			a.ReferredBy == nil &&
			a.FreeExpiryAt != nil
	})).Return(nil).Run(func(args mock.Arguments) {
		args.Get(1).(*models.Account).ID = 1
	})
	mockBalanceRepo.On("Create", ctx, mock.MatchedBy(func(b *models.Balance) bool {
		return b.AccountID == 1 && b.Frozen == SignupBonus && b.Basic == 0 && b.Pro == 0 && b.Cash == 0
	})).Return(nil)
	mockTxnRepo.On("Record", ctx, mock.MatchedBy(func(txn *models.Transaction) bool {
		return txn.AccountID == 1 &&
			txn.Type == models.TransactionTypeSignupBonus &&
			txn.Amount == SignupBonus &&
			*txn.ToBucket == models.BucketFrozen
	})).Return(nil)

	result, err := service.Register(ctx, "0xABC123", "")

	assert.NoError(t, err)
	assert.NotNil(t, result)
	assert.Equal(t, int64(SignupBonus), result.Balance.Frozen)
	assert.Equal(t, models.StatusFree, result.Account.Status)

	mockFactory.AssertExpectations(t)
	mockUoW.AssertExpectations(t)
	mockAccountRepo.AssertExpectations(t)
	mockBalanceRepo.AssertExpectations(t)
	mockTxnRepo.AssertExpectations(t)
}

func TestRegistrationService_Register_AlreadyRegistered(t *testing.T) {
	ctx := context.Background()
	mockUoW := new(MockUnitOfWork)
	mockFactory := new(MockUnitOfWorkFactory)
	mockAccountRepo := new(MockAccountRepository)
	mockUoW.SetRepositories(mockAccountRepo, nil, nil, nil, nil, nil, nil, nil)
	mockFactory.On("Create").Return(mockUoW)
	mockUoW.On("Begin", mock.Anything).Return(nil)
	mockUoW.On("Rollback").Return(nil)

	service := NewRegistrationService(mockFactory)

	mockAccountRepo.On("GetByWallet", ctx, "0xabc").Return(&models.Account{ID: 7, WalletAddress: "0xabc"}, nil)

	result, err := service.Register(ctx, "0xabc", "")

	assert.Error(t, err)
	assert.Nil(t, result)
	assert.True(t, IsStateConflict(err))
	var sc *StateConflictError
	assert.ErrorAs(t, err, &sc)
	assert.Equal(t, CodeAlreadyRegistered, sc.Code)
}

func TestRegistrationService_Register_UnknownReferralCode(t *testing.T) {
	ctx := context.Background()
	mockUoW := new(MockUnitOfWork)
	mockFactory := new(MockUnitOfWorkFactory)
	mockAccountRepo := new(MockAccountRepository)
	mockUoW.SetRepositories(mockAccountRepo, nil, nil, nil, nil, nil, nil, nil)
	mockFactory.On("Create").Return(mockUoW)
	mockUoW.On("Begin", mock.Anything).Return(nil)
	mockUoW.On("Rollback").Return(nil)

	service := NewRegistrationService(mockFactory)

	mockAccountRepo.On("GetByWallet", ctx, "0xabc").Return(nil, nil)
	mockAccountRepo.On("GetByReferralCode", ctx, "NOPE1234").Return(nil, nil)

	result, err := service.Register(ctx, "0xabc", "nope1234")

	assert.Error(t, err)
	assert.Nil(t, result)
	assert.True(t, IsNotFound(err))
	// Nothing was created
	mockAccountRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestRegistrationService_Register_ReferrerCommission(t *testing.T) {
	ctx := context.Background()
	mockFactory, _, mockAccountRepo, mockBalanceRepo, mockTxnRepo, mockReferralRepo := setupRegistrationMocks()

	service := NewRegistrationService(mockFactory)

	referrer := &models.Account{
		ID:            10,
		WalletAddress: "0xreferrer",
		ReferralCode:  "REF00001",
		Status:        models.StatusBasic,
	}

	mockAccountRepo.On("GetByWallet", ctx, "0xnew").Return(nil, nil)
	mockAccountRepo.On("GetByReferralCode", ctx, "REF00001").Return(referrer, nil)
	mockAccountRepo.On("Create", ctx, mock.MatchedBy(func(a *models.Account) bool {
		return a.ReferredBy != nil && *a.ReferredBy == "0xreferrer"
	})).Return(nil).Run(func(args mock.Arguments) {
		args.Get(1).(*models.Account).ID = 11
	})
	mockBalanceRepo.On("Create", ctx, mock.Anything).Return(nil)
	mockAccountRepo.On("IncrementDirectReferrals", ctx, int64(10)).Return(1, nil)

	// Level 1 edge: 10% of the signup bonus
	expectedCommission := bpsOf(SignupBonus, 1000)
	mockReferralRepo.On("Create", ctx, mock.MatchedBy(func(r *models.Referral) bool {
		return r.ReferrerID == 10 && r.ReferredID == 11 && r.Level == 1 &&
			r.Status == models.ReferralStatusPending && r.Commission == expectedCommission
	})).Return(nil)
	mockBalanceRepo.On("Credit", ctx, int64(10), models.BucketFrozen, expectedCommission).Return(nil)

	mockTxnRepo.On("Record", ctx, mock.MatchedBy(func(txn *models.Transaction) bool {
		return txn.Type == models.TransactionTypeSignupBonus
	})).Return(nil)
	mockTxnRepo.On("Record", ctx, mock.MatchedBy(func(txn *models.Transaction) bool {
		return txn.AccountID == 10 &&
			txn.Type == models.TransactionTypeReferralCommission &&
			txn.Amount == expectedCommission
	})).Return(nil)

	result, err := service.Register(ctx, "0xNEW", "ref00001")

	assert.NoError(t, err)
	assert.NotNil(t, result)

	mockReferralRepo.AssertExpectations(t)
	mockBalanceRepo.AssertExpectations(t)
	mockTxnRepo.AssertExpectations(t)
}

func TestRegistrationService_Register_FrozenCapZeroesCommission(t *testing.T) {
	ctx := context.Background()
	mockFactory, _, mockAccountRepo, mockBalanceRepo, mockTxnRepo, mockReferralRepo := setupRegistrationMocks()

	service := NewRegistrationService(mockFactory)

	referrer := &models.Account{
		ID:            10,
		WalletAddress: "0xreferrer",
		ReferralCode:  "REF00001",
	}

	mockAccountRepo.On("GetByWallet", ctx, "0xnew").Return(nil, nil)
	mockAccountRepo.On("GetByReferralCode", ctx, "REF00001").Return(referrer, nil)
	mockAccountRepo.On("Create", ctx, mock.Anything).Return(nil).Run(func(args mock.Arguments) {
		args.Get(1).(*models.Account).ID = 11
	})
	mockBalanceRepo.On("Create", ctx, mock.Anything).Return(nil)

	// 11th direct referral: past the cap
	mockAccountRepo.On("IncrementDirectReferrals", ctx, int64(10)).Return(FrozenReferralLimit+1, nil)

	// Edge still recorded, but with zero commission and no credit
	mockReferralRepo.On("Create", ctx, mock.MatchedBy(func(r *models.Referral) bool {
		return r.Level == 1 && r.Commission == 0
	})).Return(nil)
	mockTxnRepo.On("Record", ctx, mock.MatchedBy(func(txn *models.Transaction) bool {
		return txn.Type == models.TransactionTypeSignupBonus
	})).Return(nil)

	result, err := service.Register(ctx, "0xnew", "REF00001")

	assert.NoError(t, err)
	assert.NotNil(t, result)

	mockBalanceRepo.AssertNotCalled(t, "Credit", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	mockReferralRepo.AssertExpectations(t)
}

func TestRegistrationService_Register_MultiLevelPropagation(t *testing.T) {
	ctx := context.Background()
	mockFactory, _, mockAccountRepo, mockBalanceRepo, mockTxnRepo, mockReferralRepo := setupRegistrationMocks()

	service := NewRegistrationService(mockFactory)

	grandWallet := "0xgrand"
	referrer := &models.Account{
		ID:            10,
		WalletAddress: "0xreferrer",
		ReferralCode:  "REF00001",
		ReferredBy:    &grandWallet,
	}
	grandparent := &models.Account{
		ID:            9,
		WalletAddress: grandWallet,
	}

	mockAccountRepo.On("GetByWallet", ctx, "0xnew").Return(nil, nil)
	mockAccountRepo.On("GetByReferralCode", ctx, "REF00001").Return(referrer, nil)
	mockAccountRepo.On("Create", ctx, mock.Anything).Return(nil).Run(func(args mock.Arguments) {
		args.Get(1).(*models.Account).ID = 11
	})
	mockBalanceRepo.On("Create", ctx, mock.Anything).Return(nil)
	mockAccountRepo.On("IncrementDirectReferrals", ctx, int64(10)).Return(1, nil)
	mockAccountRepo.On("GetByWallet", ctx, grandWallet).Return(grandparent, nil)

	level1 := bpsOf(SignupBonus, 1000) // 10%
	level2 := bpsOf(SignupBonus, 200)  // 2%

	mockReferralRepo.On("Create", ctx, mock.MatchedBy(func(r *models.Referral) bool {
		return r.ReferrerID == 10 && r.Level == 1 && r.Commission == level1
	})).Return(nil)
	mockReferralRepo.On("Create", ctx, mock.MatchedBy(func(r *models.Referral) bool {
		return r.ReferrerID == 9 && r.Level == 2 && r.Commission == level2
	})).Return(nil)
	mockBalanceRepo.On("Credit", ctx, int64(10), models.BucketFrozen, level1).Return(nil)
	mockBalanceRepo.On("Credit", ctx, int64(9), models.BucketFrozen, level2).Return(nil)
	mockTxnRepo.On("Record", ctx, mock.Anything).Return(nil)

	result, err := service.Register(ctx, "0xnew", "REF00001")

	assert.NoError(t, err)
	assert.NotNil(t, result)

	mockReferralRepo.AssertExpectations(t)
	mockBalanceRepo.AssertExpectations(t)
}

func TestRegistrationService_Register_MissingWallet(t *testing.T) {
	service := NewRegistrationService(new(MockUnitOfWorkFactory))

	result, err := service.Register(context.Background(), "   ", "")

	assert.Error(t, err)
	assert.Nil(t, result)
	assert.True(t, IsValidation(err))
}
