package handler

import (
	"time"

	"github.com/personal-ledger/internal/account_manager"
	"github.com/personal-ledger/internal/domain/account"
	"github.com/personal-ledger/internal/domain/money"
	"github.com/personal-ledger/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Amounts are accepted as JSON strings ("150.00") or numbers and parsed exactly.

// CreateAccountRequest represents a request to open an account
type CreateAccountRequest struct {
	CustomerName         string          `json:"customer_name" binding:"required"`
	AccountType          string          `json:"account_type" binding:"required"`
	InitialDeposit       money.Money     `json:"initial_deposit"`
	MinimumBalance       money.Money     `json:"minimum_balance"`
	InterestRate         decimal.Decimal `json:"interest_rate"`
	DailyWithdrawalLimit *money.Money    `json:"daily_withdrawal_limit,omitempty"`
	Reference            string          `json:"reference,omitempty"`
}

// MovementRequest represents a deposit, withdrawal or fee
type MovementRequest struct {
	Amount      money.Money `json:"amount"`
	Description string      `json:"description,omitempty"`
	Reference   string      `json:"reference,omitempty"`
}

// ReferenceRequest carries an optional idempotency reference
type ReferenceRequest struct {
	Reference string `json:"reference,omitempty"`
}

// ReasonRequest carries the audit reason of a freeze or unfreeze
type ReasonRequest struct {
	Reason string `json:"reason,omitempty"`
}

// DailyLimitRequest sets or, with a null limit, removes the daily cap
type DailyLimitRequest struct {
	Limit *money.Money `json:"limit"`
}

// InterestRateRequest sets the annual rate as a fraction, e.g. "0.025"
type InterestRateRequest struct {
	Rate *decimal.Decimal `json:"rate" binding:"required"`
}

// TransferRequest represents a transfer between two accounts
type TransferRequest struct {
	FromAccountID int64       `json:"from_account_id" binding:"required,gt=0"`
	ToAccountID   int64       `json:"to_account_id" binding:"required,gt=0"`
	Amount        money.Money `json:"amount"`
	Description   string      `json:"description,omitempty"`
	Reference     string      `json:"reference,omitempty"`
}

// BulkTransferRequest represents one debit fanned out to several accounts
type BulkTransferRequest struct {
	FromAccountID int64                         `json:"from_account_id" binding:"required,gt=0"`
	Transfers     []account_manager.TransferLeg `json:"transfers"`
	Description   string                        `json:"description,omitempty"`
	Reference     string                        `json:"reference,omitempty"`
}

// CommandRequest represents an asynchronous ledger command.
// CommandID is optional; resubmitting the same id is applied once.
type CommandRequest struct {
	CommandID   string              `json:"command_id,omitempty" binding:"omitempty,uuid"`
	Type        string              `json:"type" binding:"required"`
	AccountID   int64               `json:"account_id" binding:"required,gt=0"`
	ToAccountID int64               `json:"to_account_id,omitempty"`
	Amount      money.Money         `json:"amount"`
	Legs        []shared.CommandLeg `json:"legs,omitempty"`
	Description string              `json:"description,omitempty"`
}

// CommandResponse acknowledges an accepted command
type CommandResponse struct {
	CommandID string    `json:"command_id"`
	Type      string    `json:"type"`
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
}

// AccountResponse represents an account in API responses
type AccountResponse struct {
	ID                      int64           `json:"id"`
	AccountNumber           string          `json:"account_number"`
	CustomerName            string          `json:"customer_name"`
	AccountType             string          `json:"account_type"`
	Balance                 money.Money     `json:"balance"`
	AvailableBalance        money.Money     `json:"available_balance"`
	MinimumBalance          money.Money     `json:"minimum_balance"`
	IsActive                bool            `json:"is_active"`
	IsFrozen                bool            `json:"is_frozen"`
	DailyWithdrawalLimit    *money.Money    `json:"daily_withdrawal_limit"`
	InterestRate            decimal.Decimal `json:"interest_rate"`
	LastInterestCalculation *time.Time      `json:"last_interest_calculation,omitempty"`
	CreatedAt               string          `json:"created_at"`
	UpdatedAt               string          `json:"updated_at"`
}

// BalanceResponse represents the balance view of an account
type BalanceResponse struct {
	AccountID int64       `json:"account_id"`
	Balance   money.Money `json:"balance"`
}

// HistoryQuery bounds the history endpoint; zero means the configured default
type HistoryQuery struct {
	Limit int `form:"limit"`
}

// StatementQuery selects a calendar month
type StatementQuery struct {
	Year  int `form:"year" binding:"required"`
	Month int `form:"month" binding:"required"`
}

// StatisticsQuery selects the trailing window; zero means the configured default
type StatisticsQuery struct {
	Days int `form:"days"`
}

// PaginationParams represents pagination parameters for list endpoints
type PaginationParams struct {
	Page    int `form:"page,default=1" binding:"min=1"`
	PerPage int `form:"per_page,default=20" binding:"min=1,max=100"`
}

// mapAccountToResponse maps an account entity to an account response DTO
func mapAccountToResponse(acc *account.Account) AccountResponse {
	return AccountResponse{
		ID:                      acc.ID,
		AccountNumber:           acc.AccountNumber,
		CustomerName:            acc.CustomerName,
		AccountType:             string(acc.Type),
		Balance:                 acc.Balance,
		AvailableBalance:        acc.Available(),
		MinimumBalance:          acc.MinimumBalance,
		IsActive:                acc.IsActive,
		IsFrozen:                acc.IsFrozen,
		DailyWithdrawalLimit:    acc.DailyWithdrawalLimit,
		InterestRate:            acc.InterestRate,
		LastInterestCalculation: acc.LastInterestCalculation,
		CreatedAt:               acc.CreatedAt.Format(time.RFC3339),
		UpdatedAt:               acc.UpdatedAt.Format(time.RFC3339),
	}
}

func mapAccountsToResponse(accounts []*account.Account) []AccountResponse {
	out := make([]AccountResponse, 0, len(accounts))
	for _, acc := range accounts {
		out = append(out, mapAccountToResponse(acc))
	}
	return out
}
