package handler

import (
	"context"
	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/personal-ledger/internal/account_manager"
	"github.com/personal-ledger/internal/api_gateway/middleware"
	"github.com/personal-ledger/internal/api_gateway/service"
	"github.com/personal-ledger/internal/domain/money"
)

// TransactionHandler handles HTTP requests that move money synchronously
type TransactionHandler struct {
	ledger service.LedgerService
	logger *slog.Logger
}

// NewTransactionHandler creates a new transaction handler
func NewTransactionHandler(logger *slog.Logger, ledger service.LedgerService) *TransactionHandler {
	return &TransactionHandler{
		ledger: ledger,
		logger: logger,
	}
}

type movementFunc func(ctx context.Context, id int64, amount money.Money, description string, opts ...account_manager.OperationOption) (*account_manager.MovementResult, error)

func (h *TransactionHandler) Deposit(c *gin.Context) {
	h.move(c, "deposit", h.ledger.Deposit)
}

func (h *TransactionHandler) Withdraw(c *gin.Context) {
	h.move(c, "withdrawal", h.ledger.Withdraw)
}

func (h *TransactionHandler) ChargeFee(c *gin.Context) {
	h.move(c, "fee", h.ledger.ChargeFee)
}

func (h *TransactionHandler) move(c *gin.Context, kind string, op movementFunc) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req MovementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	result, err := op(c.Request.Context(), id, req.Amount, req.Description, withReference(req.Reference)...)
	if err != nil {
		RespondError(c, err)
		return
	}

	middleware.RequestLogger(c, h.logger).Info("Movement applied",
		"kind", kind,
		"account_id", id,
		"transaction_id", result.Transaction.ID,
		"amount", req.Amount.String(),
	)
	RespondCreated(c, result)
}

// AccrueInterest credits interest earned since the previous accrual
func (h *TransactionHandler) AccrueInterest(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req ReferenceRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			respondBindError(c, err)
			return
		}
	}

	result, err := h.ledger.CalculateInterest(c.Request.Context(), id, withReference(req.Reference)...)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, result)
}

func (h *TransactionHandler) Transfer(c *gin.Context) {
	var req TransferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	result, err := h.ledger.Transfer(c.Request.Context(), req.FromAccountID, req.ToAccountID, req.Amount, req.Description, withReference(req.Reference)...)
	if err != nil {
		RespondError(c, err)
		return
	}

	middleware.RequestLogger(c, h.logger).Info("Transfer applied",
		"from_account_id", req.FromAccountID,
		"to_account_id", req.ToAccountID,
		"reference", result.Reference,
	)
	RespondCreated(c, result)
}

// BulkTransfer debits one account once and credits every leg, all or nothing
func (h *TransactionHandler) BulkTransfer(c *gin.Context) {
	var req BulkTransferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	result, err := h.ledger.BulkTransfer(c.Request.Context(), req.FromAccountID, req.Transfers, req.Description, withReference(req.Reference)...)
	if err != nil {
		RespondError(c, err)
		return
	}

	middleware.RequestLogger(c, h.logger).Info("Bulk transfer applied",
		"from_account_id", req.FromAccountID,
		"legs", len(req.Transfers),
		"total", result.Total.String(),
		"reference", result.Reference,
	)
	RespondCreated(c, result)
}
