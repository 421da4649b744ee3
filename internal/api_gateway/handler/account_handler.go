package handler

import (
	"context"
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/personal-ledger/internal/account_manager"
	"github.com/personal-ledger/internal/api_gateway/middleware"
	"github.com/personal-ledger/internal/api_gateway/service"
	"github.com/personal-ledger/internal/domain/account"
)

// Defaults are applied when a query parameter is omitted
type Defaults struct {
	HistoryLimit   int
	StatisticsDays int
}

// AccountHandler handles HTTP requests for account lifecycle and reporting
type AccountHandler struct {
	ledger   service.LedgerService
	defaults Defaults
	logger   *slog.Logger
}

// NewAccountHandler creates a new account handler
func NewAccountHandler(logger *slog.Logger, ledger service.LedgerService, defaults Defaults) *AccountHandler {
	return &AccountHandler{
		ledger:   ledger,
		defaults: defaults,
		logger:   logger,
	}
}

// Create opens an account with its initial deposit
func (h *AccountHandler) Create(c *gin.Context) {
	var req CreateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	acc, err := h.ledger.CreateAccount(c.Request.Context(), account_manager.CreateAccountParams{
		CustomerName:         req.CustomerName,
		Type:                 account.Type(req.AccountType),
		InitialDeposit:       req.InitialDeposit,
		MinimumBalance:       req.MinimumBalance,
		InterestRate:         req.InterestRate,
		DailyWithdrawalLimit: req.DailyWithdrawalLimit,
	}, withReference(req.Reference)...)
	if err != nil {
		RespondError(c, err)
		return
	}

	middleware.RequestLogger(c, h.logger).Info("Account created", "account_id", acc.ID, "account_number", acc.AccountNumber)
	RespondCreated(c, mapAccountToResponse(acc))
}

// List returns every account ordered by id
func (h *AccountHandler) List(c *gin.Context) {
	accounts, err := h.ledger.ListAccounts(c.Request.Context())
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, mapAccountsToResponse(accounts))
}

// GetByID retrieves an account by its id
func (h *AccountHandler) GetByID(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	h.respondAccount(c, func() (*account.Account, error) { return h.ledger.GetAccount(c.Request.Context(), id) })
}

// GetByNumber retrieves an account by its account number
func (h *AccountHandler) GetByNumber(c *gin.Context) {
	number := c.Param("number")
	h.respondAccount(c, func() (*account.Account, error) { return h.ledger.GetAccountByNumber(c.Request.Context(), number) })
}

func (h *AccountHandler) Freeze(c *gin.Context) {
	h.withReason(c, h.ledger.FreezeAccount)
}

func (h *AccountHandler) Unfreeze(c *gin.Context) {
	h.withReason(c, h.ledger.UnfreezeAccount)
}

// Deactivate closes an account; the balance must be zero
func (h *AccountHandler) Deactivate(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	h.respondAccount(c, func() (*account.Account, error) { return h.ledger.DeactivateAccount(c.Request.Context(), id) })
}

// SetDailyLimit sets the daily withdrawal cap; a null limit removes it
func (h *AccountHandler) SetDailyLimit(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req DailyLimitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	h.respondAccount(c, func() (*account.Account, error) {
		return h.ledger.SetDailyWithdrawalLimit(c.Request.Context(), id, req.Limit)
	})
}

func (h *AccountHandler) SetInterestRate(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req InterestRateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	h.respondAccount(c, func() (*account.Account, error) {
		return h.ledger.SetInterestRate(c.Request.Context(), id, *req.Rate)
	})
}

func (h *AccountHandler) Balance(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	balance, err := h.ledger.GetBalance(c.Request.Context(), id)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, BalanceResponse{AccountID: id, Balance: balance})
}

func (h *AccountHandler) Summary(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	summary, err := h.ledger.GetAccountSummary(c.Request.Context(), id)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, summary)
}

// History returns the most recent transactions, newest first
func (h *AccountHandler) History(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var q HistoryQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		respondBindError(c, err)
		return
	}
	if q.Limit == 0 {
		q.Limit = h.defaults.HistoryLimit
	}

	txns, err := h.ledger.GetAccountHistory(c.Request.Context(), id, q.Limit)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, txns)
}

func (h *AccountHandler) Statement(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var q StatementQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		respondBindError(c, err)
		return
	}

	statement, err := h.ledger.GetMonthlyStatement(c.Request.Context(), id, q.Year, time.Month(q.Month))
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, statement)
}

func (h *AccountHandler) Statistics(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var q StatisticsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		respondBindError(c, err)
		return
	}
	if q.Days == 0 {
		q.Days = h.defaults.StatisticsDays
	}

	stats, err := h.ledger.GetAccountStatistics(c.Request.Context(), id, q.Days)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, stats)
}

// Reconcile replays the account history and reports any drift
func (h *AccountHandler) Reconcile(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	result, err := h.ledger.ReconcileAccount(c.Request.Context(), id)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, result)
}

func (h *AccountHandler) withReason(c *gin.Context, op func(ctx context.Context, id int64, reason string) (*account.Account, error)) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req ReasonRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			respondBindError(c, err)
			return
		}
	}
	h.respondAccount(c, func() (*account.Account, error) { return op(c.Request.Context(), id, req.Reason) })
}

func (h *AccountHandler) respondAccount(c *gin.Context, fetch func() (*account.Account, error)) {
	acc, err := fetch()
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, mapAccountToResponse(acc))
}
