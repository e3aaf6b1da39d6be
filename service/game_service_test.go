package service

import (
	"context"
	"testing"

	"luckyten/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func setupGameMocks() (*MockUnitOfWorkFactory, *MockAccountRepository, *MockBalanceRepository, *MockTransactionRepository, *MockGameRoundRepository, *MockPayoutScheduleRepository, *MockCashbackRepository) {
	mockUoW := new(MockUnitOfWork)
	mockFactory := new(MockUnitOfWorkFactory)
	mockAccountRepo := new(MockAccountRepository)
	mockBalanceRepo := new(MockBalanceRepository)
	mockTxnRepo := new(MockTransactionRepository)
	mockRoundRepo := new(MockGameRoundRepository)
	mockScheduleRepo := new(MockPayoutScheduleRepository)
	mockCashbackRepo := new(MockCashbackRepository)

	mockUoW.SetRepositories(mockAccountRepo, mockBalanceRepo, mockTxnRepo, nil, mockRoundRepo, mockScheduleRepo, mockCashbackRepo, nil)
	mockFactory.On("Create").Return(mockUoW)
	mockUoW.On("Begin", mock.Anything).Return(nil)
	mockUoW.On("Commit").Return(nil)
	mockUoW.On("Rollback").Return(nil)

	return mockFactory, mockAccountRepo, mockBalanceRepo, mockTxnRepo, mockRoundRepo, mockScheduleRepo, mockCashbackRepo
}

// forceDraw pins the drawn number so outcomes are deterministic
func forceDraw(s GameService, number int) {
	s.(*gameService).draw = func() int { return number }
}

func TestGameService_Play_BasicWin(t *testing.T) {
	ctx := context.Background()
	mockFactory, mockAccountRepo, mockBalanceRepo, mockTxnRepo, mockRoundRepo, _, _ := setupGameMocks()

	service := NewGameService(mockFactory)
	forceDraw(service, 7)

	account := &models.Account{ID: 1, WalletAddress: "0xabc", Status: models.StatusBasic}

	mockAccountRepo.On("GetByWallet", ctx, "0xabc").Return(account, nil)
	mockBalanceRepo.On("GetByAccountForUpdate", ctx, int64(1)).Return(&models.Balance{AccountID: 1, Basic: 50_00}, nil)
	mockBalanceRepo.On("Debit", ctx, int64(1), models.BucketBasic, int64(5_00)).Return(nil)
	mockRoundRepo.On("Create", ctx, mock.MatchedBy(func(r *models.GameRound) bool {
		return r.Tier == models.GameTierBasic &&
			r.SelectedNumber == 7 &&
			r.DrawnNumber == 7 &&
			r.Outcome == models.OutcomeWin &&
			r.Payout == 5_00*GameMultiplier
	})).Return(nil).Run(func(args mock.Arguments) {
		args.Get(1).(*models.GameRound).ID = 42
	})
	mockBalanceRepo.On("Credit", ctx, int64(1), models.BucketBasic, int64(5_00*GameMultiplier)).Return(nil)
	mockTxnRepo.On("Record", ctx, mock.MatchedBy(func(txn *models.Transaction) bool {
		return txn.Type == models.TransactionTypeGameEntry && txn.Amount == 5_00
	})).Return(nil)
	mockTxnRepo.On("Record", ctx, mock.MatchedBy(func(txn *models.Transaction) bool {
		return txn.Type == models.TransactionTypeGameWin &&
			txn.Amount == 5_00*GameMultiplier &&
			*txn.ToBucket == models.BucketBasic
	})).Return(nil)
	mockBalanceRepo.On("GetByAccount", ctx, int64(1)).Return(&models.Balance{AccountID: 1, Basic: 85_00}, nil)

	result, err := service.Play(ctx, "0xabc", models.GameTierBasic, 7, 5_00)

	require.NoError(t, err)
	assert.True(t, result.Won)
	assert.False(t, result.Scheduled)
	assert.Equal(t, int64(5_00*GameMultiplier), result.Payout)
	assert.Equal(t, int64(42), result.RoundID)

	mockBalanceRepo.AssertExpectations(t)
	mockTxnRepo.AssertExpectations(t)
}

func TestGameService_Play_ProWinSchedulesPayout(t *testing.T) {
	ctx := context.Background()
	mockFactory, mockAccountRepo, mockBalanceRepo, mockTxnRepo, mockRoundRepo, mockScheduleRepo, _ := setupGameMocks()

	service := NewGameService(mockFactory)
	forceDraw(service, 3)

	account := &models.Account{ID: 1, WalletAddress: "0xabc", Status: models.StatusPro}
	entry := int64(100_00)
	payout := entry * GameMultiplier

	mockAccountRepo.On("GetByWallet", ctx, "0xabc").Return(account, nil)
	mockBalanceRepo.On("GetByAccountForUpdate", ctx, int64(1)).Return(&models.Balance{AccountID: 1, Pro: 500_00}, nil)
	mockBalanceRepo.On("Debit", ctx, int64(1), models.BucketPro, entry).Return(nil)
	mockRoundRepo.On("Create", ctx, mock.Anything).Return(nil).Run(func(args mock.Arguments) {
		args.Get(1).(*models.GameRound).ID = 7
	})
	mockScheduleRepo.On("Create", ctx, mock.MatchedBy(func(s *models.PayoutSchedule) bool {
		return s.AccountID == 1 &&
			s.SourceRoundID == 7 &&
			s.TotalAmount == payout &&
			s.DailyAmount == payout/PayoutScheduleDays &&
			s.TotalDays == PayoutScheduleDays &&
			s.Status == models.PayoutScheduleActive
	})).Return(nil)
	mockTxnRepo.On("Record", ctx, mock.MatchedBy(func(txn *models.Transaction) bool {
		return txn.Type == models.TransactionTypeGameEntry
	})).Return(nil)
	mockTxnRepo.On("Record", ctx, mock.MatchedBy(func(txn *models.Transaction) bool {
		return txn.Type == models.TransactionTypeGameWin && txn.Status == models.TransactionStatusPending
	})).Return(nil)
	mockBalanceRepo.On("GetByAccount", ctx, int64(1)).Return(&models.Balance{AccountID: 1, Pro: 400_00}, nil)

	result, err := service.Play(ctx, "0xabc", models.GameTierPro, 3, entry)

	require.NoError(t, err)
	assert.True(t, result.Won)
	assert.True(t, result.Scheduled)
	// Nothing credited immediately on a pro win
	mockBalanceRepo.AssertNotCalled(t, "Credit", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	mockScheduleRepo.AssertExpectations(t)
}

func TestGameService_Play_ProLossFeedsCashback(t *testing.T) {
	ctx := context.Background()
	mockFactory, mockAccountRepo, mockBalanceRepo, mockTxnRepo, mockRoundRepo, _, mockCashbackRepo := setupGameMocks()

	service := NewGameService(mockFactory)
	forceDraw(service, 9) // selected 2: loss

	account := &models.Account{ID: 1, WalletAddress: "0xabc", Status: models.StatusPro}
	entry := int64(120_00)

	mockAccountRepo.On("GetByWallet", ctx, "0xabc").Return(account, nil)
	mockBalanceRepo.On("GetByAccountForUpdate", ctx, int64(1)).Return(&models.Balance{AccountID: 1, Pro: 200_00}, nil)
	mockBalanceRepo.On("Debit", ctx, int64(1), models.BucketPro, entry).Return(nil)
	mockRoundRepo.On("Create", ctx, mock.MatchedBy(func(r *models.GameRound) bool {
		return r.Outcome == models.OutcomeLoss && r.Payout == 0
	})).Return(nil)
	mockTxnRepo.On("Record", ctx, mock.Anything).Return(nil)
	mockAccountRepo.On("AddVolume", ctx, int64(1), entry).Return(nil)
	mockCashbackRepo.On("GetByAccount", ctx, int64(1)).Return(nil, nil)
	// First loss already crosses the 100 USDT activation threshold
	mockCashbackRepo.On("Create", ctx, mock.MatchedBy(func(cb *models.CashbackStatus) bool {
		return cb.AccountID == 1 && cb.TotalLosses == entry && cb.IsActive
	})).Return(nil)
	mockBalanceRepo.On("GetByAccount", ctx, int64(1)).Return(&models.Balance{AccountID: 1, Pro: 80_00}, nil)

	result, err := service.Play(ctx, "0xabc", models.GameTierPro, 2, entry)

	require.NoError(t, err)
	assert.False(t, result.Won)
	assert.Equal(t, int64(0), result.Payout)

	mockCashbackRepo.AssertExpectations(t)
	mockAccountRepo.AssertExpectations(t)
}

func TestGameService_Play_InsufficientBalance(t *testing.T) {
	ctx := context.Background()
	mockFactory, mockAccountRepo, mockBalanceRepo, _, mockRoundRepo, _, _ := setupGameMocks()

	service := NewGameService(mockFactory)
	forceDraw(service, 1)

	account := &models.Account{ID: 1, WalletAddress: "0xabc", Status: models.StatusBasic}

	mockAccountRepo.On("GetByWallet", ctx, "0xabc").Return(account, nil)
	mockBalanceRepo.On("GetByAccountForUpdate", ctx, int64(1)).Return(&models.Balance{AccountID: 1, Basic: 2_00}, nil)

	result, err := service.Play(ctx, "0xabc", models.GameTierBasic, 5, 10_00)

	assert.Error(t, err)
	assert.Nil(t, result)
	assert.True(t, IsInsufficientBalance(err))
	// No debit, no round on rejection
	mockBalanceRepo.AssertNotCalled(t, "Debit", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	mockRoundRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestGameService_Play_TierGates(t *testing.T) {
	ctx := context.Background()

	t.Run("pro game requires pro status", func(t *testing.T) {
		mockFactory, mockAccountRepo, _, _, _, _, _ := setupGameMocks()
		service := NewGameService(mockFactory)

		account := &models.Account{ID: 1, WalletAddress: "0xabc", Status: models.StatusBasic}
		mockAccountRepo.On("GetByWallet", ctx, "0xabc").Return(account, nil)

		_, err := service.Play(ctx, "0xabc", models.GameTierPro, 5, 10_00)
		var sc *StateConflictError
		assert.ErrorAs(t, err, &sc)
		assert.Equal(t, CodeProStatusRequired, sc.Code)
	})

	t.Run("basic game requires activation", func(t *testing.T) {
		mockFactory, mockAccountRepo, _, _, _, _, _ := setupGameMocks()
		service := NewGameService(mockFactory)

		account := &models.Account{ID: 1, WalletAddress: "0xabc", Status: models.StatusFree}
		mockAccountRepo.On("GetByWallet", ctx, "0xabc").Return(account, nil)

		_, err := service.Play(ctx, "0xabc", models.GameTierBasic, 5, 10_00)
		var sc *StateConflictError
		assert.ErrorAs(t, err, &sc)
		assert.Equal(t, CodeBasicStatusRequired, sc.Code)
	})
}

func TestGameService_Play_Validation(t *testing.T) {
	service := NewGameService(new(MockUnitOfWorkFactory))
	ctx := context.Background()

	cases := []struct {
		name   string
		wallet string
		tier   models.GameTier
		number int
		entry  int64
	}{
		{"missing wallet", "", models.GameTierBasic, 5, 10_00},
		{"bad tier", "0xabc", models.GameTier("turbo"), 5, 10_00},
		{"number too low", "0xabc", models.GameTierBasic, 0, 10_00},
		{"number too high", "0xabc", models.GameTierBasic, 11, 10_00},
		{"entry below minimum", "0xabc", models.GameTierBasic, 5, 50},
		{"entry above maximum", "0xabc", models.GameTierBasic, 5, 1001_00},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := service.Play(ctx, tc.wallet, tc.tier, tc.number, tc.entry)
			assert.True(t, IsValidation(err), "expected validation error, got %v", err)
		})
	}
}

func TestGameService_Draw_Distribution(t *testing.T) {
	service := NewGameService(new(MockUnitOfWorkFactory)).(*gameService)

	const samples = 100_000
	counts := make(map[int]int)
	for i := 0; i < samples; i++ {
		n := service.draw()
		require.GreaterOrEqual(t, n, 1)
		require.LessOrEqual(t, n, GameNumberMax)
		counts[n]++
	}

	// Each number should land near 10% of draws
	expected := samples / GameNumberMax
	for n := 1; n <= GameNumberMax; n++ {
		assert.InDelta(t, expected, counts[n], float64(expected)*0.10,
			"number %d drawn %d times", n, counts[n])
	}
}
