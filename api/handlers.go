package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"luckyten/models"
	"luckyten/service"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

// Handler bundles the services behind the HTTP surface
type Handler struct {
	registration service.RegistrationService
	accounts     service.AccountService
	deposits     service.DepositService
	games        service.GameService
	referrals    service.ReferralService
	payouts      service.PayoutService
	settlement   service.SettlementService
}

// NewHandler creates a new API handler
func NewHandler(
	registration service.RegistrationService,
	accounts service.AccountService,
	deposits service.DepositService,
	games service.GameService,
	referrals service.ReferralService,
	payouts service.PayoutService,
	settlement service.SettlementService,
) *Handler {
	return &Handler{
		registration: registration,
		accounts:     accounts,
		deposits:     deposits,
		games:        games,
		referrals:    referrals,
		payouts:      payouts,
		settlement:   settlement,
	}
}

// writeError maps service error kinds onto HTTP statuses
func writeError(c *gin.Context, err error) {
	body := gin.H{"error": err.Error()}

	var ve *service.ValidationError
	if errors.As(err, &ve) {
		body["code"] = ve.Code
		c.JSON(http.StatusBadRequest, body)
		return
	}

	if service.IsInsufficientBalance(err) {
		body["code"] = "insufficient_balance"
		c.JSON(http.StatusBadRequest, body)
		return
	}

	if service.IsNotFound(err) {
		c.JSON(http.StatusNotFound, body)
		return
	}

	var sc *service.StateConflictError
	if errors.As(err, &sc) {
		body["code"] = sc.Code
		// Tier gates are authorization failures; everything else is a
		// conflict with current state
		switch sc.Code {
		case service.CodeProStatusRequired, service.CodeBasicStatusRequired:
			c.JSON(http.StatusForbidden, body)
		default:
			c.JSON(http.StatusConflict, body)
		}
		return
	}

	if service.IsConcurrencyConflict(err) {
		c.JSON(http.StatusConflict, body)
		return
	}

	log.WithError(err).Error("Unhandled request error")
	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
}

func snapshotView(s models.Snapshot) balanceView {
	return balanceView{
		Frozen: toUSDT(s.Frozen),
		Basic:  toUSDT(s.Basic),
		Pro:    toUSDT(s.Pro),
		Cash:   toUSDT(s.Cash),
		Total:  toUSDT(s.Frozen + s.Basic + s.Pro + s.Cash),
	}
}

func walletParam(c *gin.Context) string {
	return c.Query("wallet")
}

type registerRequest struct {
	WalletAddress string `json:"walletAddress" binding:"required"`
	ReferralCode  string `json:"referralCode"`
}

// Register handles POST /api/v1/users
func (h *Handler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.registration.Register(c.Request.Context(), req.WalletAddress, req.ReferralCode)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"walletAddress": result.Account.WalletAddress,
		"referralCode":  result.Account.ReferralCode,
		"status":        result.Account.Status,
		"freeExpiryAt":  result.Account.FreeExpiryAt,
		"balance":       snapshotView(result.Balance),
	})
}

// GetProfile handles GET /api/v1/users?wallet=
func (h *Handler) GetProfile(c *gin.Context) {
	profile, err := h.accounts.GetProfile(c.Request.Context(), walletParam(c))
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"walletAddress":  profile.Account.WalletAddress,
		"referralCode":   profile.Account.ReferralCode,
		"referredBy":     profile.Account.ReferredBy,
		"status":         profile.Account.Status,
		"totalDeposited": toUSDT(profile.Account.TotalDeposited),
		"totalVolume":    toUSDT(profile.Account.TotalVolume),
		"referralCount":  profile.ReferralCount,
		"createdAt":      profile.Account.CreatedAt,
		"activatedAt":    profile.Account.ActivatedAt,
		"proActivatedAt": profile.Account.ProActivatedAt,
		"freeExpiryAt":   profile.Account.FreeExpiryAt,
		"balance":        snapshotView(profile.Balance),
	})
}

type depositRequest struct {
	WalletAddress string  `json:"walletAddress" binding:"required"`
	Amount        float64 `json:"amount" binding:"required"`
	TxHash        string  `json:"txHash"`
}

// Deposit handles POST /api/v1/deposits
func (h *Handler) Deposit(c *gin.Context) {
	var req depositRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.deposits.Deposit(c.Request.Context(), req.WalletAddress, toCents(req.Amount), req.TxHash)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"activation":     result.Activation,
		"frozenUnlocked": toUSDT(result.FrozenUnlocked),
		"totalDeposited": toUSDT(result.TotalDeposited),
		"totalVolume":    toUSDT(result.TotalVolume),
		"status":         result.Status,
		"balance":        snapshotView(result.Balance),
	})
}

// GetTransactions handles GET /api/v1/deposits?wallet=
func (h *Handler) GetTransactions(c *gin.Context) {
	var typeFilter *models.TransactionType
	if t := c.Query("type"); t != "" {
		tt := models.TransactionType(t)
		typeFilter = &tt
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))

	txns, summary, err := h.accounts.GetTransactions(c.Request.Context(), walletParam(c), typeFilter, limit)
	if err != nil {
		writeError(c, err)
		return
	}

	entries := make([]gin.H, 0, len(txns))
	for _, txn := range txns {
		entries = append(entries, gin.H{
			"id":          txn.ID,
			"type":        txn.Type,
			"amount":      toUSDT(txn.Amount),
			"fromBucket":  txn.FromBucket,
			"toBucket":    txn.ToBucket,
			"status":      txn.Status,
			"description": txn.Description,
			"createdAt":   txn.CreatedAt,
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"transactions": entries,
		"summary": gin.H{
			"totalDeposits":    toUSDT(summary.TotalDeposits),
			"totalWinnings":    toUSDT(summary.TotalWinnings),
			"totalCommissions": toUSDT(summary.TotalCommissions),
		},
	})
}

type playRequest struct {
	WalletAddress  string  `json:"walletAddress" binding:"required"`
	GameType       string  `json:"gameType" binding:"required"`
	SelectedNumber int     `json:"selectedNumber" binding:"required"`
	EntryAmount    float64 `json:"entryAmount" binding:"required"`
}

// Play handles POST /api/v1/games
func (h *Handler) Play(c *gin.Context) {
	var req playRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.games.Play(c.Request.Context(),
		req.WalletAddress,
		models.GameTier(req.GameType),
		req.SelectedNumber,
		toCents(req.EntryAmount),
	)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"roundId":        result.RoundID,
		"gameType":       result.Tier,
		"selectedNumber": result.SelectedNumber,
		"drawnNumber":    result.DrawnNumber,
		"won":            result.Won,
		"entryAmount":    toUSDT(result.EntryAmount),
		"payout":         toUSDT(result.Payout),
		"scheduled":      result.Scheduled,
		"balance":        snapshotView(result.Balance),
	})
}

// GetGames handles GET /api/v1/games?wallet=
func (h *Handler) GetGames(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))

	rounds, stats, err := h.games.GetHistory(c.Request.Context(), walletParam(c), limit)
	if err != nil {
		writeError(c, err)
		return
	}

	entries := make([]gin.H, 0, len(rounds))
	for _, round := range rounds {
		entries = append(entries, gin.H{
			"id":             round.ID,
			"gameType":       round.Tier,
			"entryAmount":    toUSDT(round.EntryAmount),
			"selectedNumber": round.SelectedNumber,
			"drawnNumber":    round.DrawnNumber,
			"outcome":        round.Outcome,
			"payout":         toUSDT(round.Payout),
			"createdAt":      round.CreatedAt,
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"rounds": entries,
		"stats": gin.H{
			"totalRounds": stats.TotalRounds,
			"wins":        stats.Wins,
			"losses":      stats.Losses,
			"totalWon":    toUSDT(stats.TotalWon),
			"totalLost":   toUSDT(stats.TotalLost),
			"netProfit":   toUSDT(stats.NetProfit),
		},
	})
}

// GetReferrals handles GET /api/v1/referrals?wallet=
func (h *Handler) GetReferrals(c *gin.Context) {
	overview, err := h.referrals.GetOverview(c.Request.Context(), walletParam(c))
	if err != nil {
		writeError(c, err)
		return
	}

	entryViews := func(entries []*models.ReferralEntry) []gin.H {
		views := make([]gin.H, 0, len(entries))
		for _, entry := range entries {
			views = append(views, gin.H{
				"wallet":     entry.ReferredWallet,
				"status":     entry.ReferredStatus,
				"volume":     toUSDT(entry.ReferredVolume),
				"commission": toUSDT(entry.Commission),
				"joinedAt":   entry.CreatedAt,
			})
		}
		return views
	}

	c.JSON(http.StatusOK, gin.H{
		"referralCode":        overview.ReferralCode,
		"directReferrals":     overview.DirectReferrals,
		"totalReferrals":      overview.TotalReferrals,
		"qualifiedReferrals":  overview.QualifiedReferrals,
		"frozenReferralLimit": overview.FrozenReferralLimit,
		"frozenReferralsUsed": overview.FrozenReferralsUsed,
		"level1":              entryViews(overview.Level1),
		"level2":              entryViews(overview.Level2),
		"level3To10Count":     overview.Level3To10Count,
		"commissions": gin.H{
			"level1":     toUSDT(overview.CommissionLevel1),
			"level2":     toUSDT(overview.CommissionLevel2),
			"level3To10": toUSDT(overview.CommissionLevel3To10),
			"total":      toUSDT(overview.CommissionTotal),
		},
	})
}

type claimRequest struct {
	WalletAddress string `json:"walletAddress" binding:"required"`
}

// Claim handles POST /api/v1/referrals/claim
func (h *Handler) Claim(c *gin.Context) {
	var req claimRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.referrals.Claim(c.Request.Context(), req.WalletAddress)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"claimed": toUSDT(result.Claimed),
		"balance": snapshotView(result.Balance),
	})
}

// GetPayouts handles GET /api/v1/payouts?wallet=
func (h *Handler) GetPayouts(c *gin.Context) {
	overview, err := h.payouts.GetOverview(c.Request.Context(), walletParam(c))
	if err != nil {
		writeError(c, err)
		return
	}

	schedules := make([]gin.H, 0, len(overview.Schedules))
	for _, schedule := range overview.Schedules {
		schedules = append(schedules, gin.H{
			"id":           schedule.ID,
			"totalAmount":  toUSDT(schedule.TotalAmount),
			"dailyAmount":  toUSDT(schedule.DailyAmount),
			"totalDays":    schedule.TotalDays,
			"paidDays":     schedule.PaidDays,
			"paidAmount":   toUSDT(schedule.PaidAmount()),
			"remaining":    toUSDT(schedule.RemainingAmount()),
			"nextPayoutAt": schedule.NextPayoutAt,
			"status":       schedule.Status,
		})
	}

	body := gin.H{
		"schedules":    schedules,
		"totalPending": toUSDT(overview.TotalPending),
	}
	if cb := overview.Cashback; cb != nil {
		body["cashback"] = gin.H{
			"totalLosses":        toUSDT(cb.TotalLosses),
			"totalRecovered":     toUSDT(cb.TotalRecovered),
			"remainingRecovery":  toUSDT(cb.RemainingRecovery()),
			"dailyRateBps":       cb.DailyRateBps,
			"maxRoiBps":          cb.MaxROIBps,
			"isActive":           cb.IsActive,
			"qualifiedReferrals": cb.QualifiedReferrals,
			"lastPayoutAt":       cb.LastPayoutAt,
		}
	}
	c.JSON(http.StatusOK, body)
}

// ProcessSettlement handles POST /api/v1/payouts/process
func (h *Handler) ProcessSettlement(c *gin.Context) {
	run, err := h.settlement.SettleDue(c.Request.Context(), time.Now().UTC())
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"runId":            run.ID,
		"runAt":            run.RunAt,
		"payoutsSettled":   run.PayoutsSettled,
		"cashbacksSettled": run.CashbacksSettled,
		"totalPaidOut":     toUSDT(run.TotalPaidOut),
	})
}

// SettlementStatus handles GET /api/v1/payouts/status
func (h *Handler) SettlementStatus(c *gin.Context) {
	run, err := h.settlement.LatestRun(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	if run == nil {
		c.JSON(http.StatusOK, gin.H{"latestRun": nil})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"latestRun": gin.H{
			"runId":            run.ID,
			"runAt":            run.RunAt,
			"payoutsSettled":   run.PayoutsSettled,
			"cashbacksSettled": run.CashbacksSettled,
			"totalPaidOut":     toUSDT(run.TotalPaidOut),
		},
	})
}
