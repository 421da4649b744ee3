package account_manager

import (
	"time"

	"github.com/personal-ledger/internal/domain/account"
	"github.com/personal-ledger/internal/domain/ledger"
	"github.com/personal-ledger/internal/domain/money"
	"github.com/shopspring/decimal"
)

// CreateAccountParams describes a new account
type CreateAccountParams struct {
	CustomerName         string
	Type                 account.Type
	InitialDeposit       money.Money
	MinimumBalance       money.Money
	InterestRate         decimal.Decimal
	DailyWithdrawalLimit *money.Money // nil means no limit
}

// MovementResult is the outcome of a single-account movement
type MovementResult struct {
	Account     *account.Account    `json:"account"`
	Transaction *ledger.Transaction `json:"transaction"`
}

// TransferResult holds both sides of a committed transfer
type TransferResult struct {
	Reference   string              `json:"reference"`
	Source      *account.Account    `json:"source"`
	Destination *account.Account    `json:"destination"`
	Debit       *ledger.Transaction `json:"debit"`
	Credit      *ledger.Transaction `json:"credit"`
}

// TransferLeg is one destination of a bulk transfer
type TransferLeg struct {
	ToAccountID int64       `json:"to_account_id"`
	Amount      money.Money `json:"amount"`
}

// BulkTransferResult holds the aggregate debit and one credit per leg, in leg order
type BulkTransferResult struct {
	Reference    string                `json:"reference"`
	Total        money.Money           `json:"total"`
	Source       *account.Account      `json:"source"`
	Destinations []*account.Account    `json:"destinations"` // Distinct accounts, in first-leg order
	Debit        *ledger.Transaction   `json:"debit"`
	Credits      []*ledger.Transaction `json:"credits"`
}

// InterestResult reports one accrual. Transaction is nil when nothing was credited.
type InterestResult struct {
	Account     *account.Account    `json:"account"`
	Interest    money.Money         `json:"interest"`
	PeriodStart time.Time           `json:"period_start"`
	PeriodEnd   time.Time           `json:"period_end"`
	Transaction *ledger.Transaction `json:"transaction,omitempty"`
}

// AccountSummary is the overview shown for a single account
type AccountSummary struct {
	Account            *account.Account      `json:"account"`
	TotalDeposits      money.Money           `json:"total_deposits"`
	TotalWithdrawals   money.Money           `json:"total_withdrawals"`
	AvailableBalance   money.Money           `json:"available_balance"`
	TransactionCount   int                   `json:"transaction_count"`
	RecentTransactions []*ledger.Transaction `json:"recent_transactions"`
}
