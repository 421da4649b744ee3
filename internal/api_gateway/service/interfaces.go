package service

import (
	"context"
	"time"

	"github.com/personal-ledger/internal/account_manager"
	"github.com/personal-ledger/internal/domain/account"
	"github.com/personal-ledger/internal/domain/ledger"
	"github.com/personal-ledger/internal/domain/money"
	"github.com/personal-ledger/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// LedgerService is the synchronous account manager surface exposed over HTTP
type LedgerService interface {
	CreateAccount(ctx context.Context, params account_manager.CreateAccountParams, opts ...account_manager.OperationOption) (*account.Account, error)
	GetAccount(ctx context.Context, id int64) (*account.Account, error)
	GetAccountByNumber(ctx context.Context, number string) (*account.Account, error)
	ListAccounts(ctx context.Context) ([]*account.Account, error)
	GetBalance(ctx context.Context, id int64) (money.Money, error)

	FreezeAccount(ctx context.Context, id int64, reason string) (*account.Account, error)
	UnfreezeAccount(ctx context.Context, id int64, reason string) (*account.Account, error)
	SetDailyWithdrawalLimit(ctx context.Context, id int64, limit *money.Money) (*account.Account, error)
	SetInterestRate(ctx context.Context, id int64, rate decimal.Decimal) (*account.Account, error)
	DeactivateAccount(ctx context.Context, id int64) (*account.Account, error)

	Deposit(ctx context.Context, id int64, amount money.Money, description string, opts ...account_manager.OperationOption) (*account_manager.MovementResult, error)
	Withdraw(ctx context.Context, id int64, amount money.Money, description string, opts ...account_manager.OperationOption) (*account_manager.MovementResult, error)
	ChargeFee(ctx context.Context, id int64, amount money.Money, description string, opts ...account_manager.OperationOption) (*account_manager.MovementResult, error)
	Transfer(ctx context.Context, fromID, toID int64, amount money.Money, description string, opts ...account_manager.OperationOption) (*account_manager.TransferResult, error)
	BulkTransfer(ctx context.Context, fromID int64, legs []account_manager.TransferLeg, description string, opts ...account_manager.OperationOption) (*account_manager.BulkTransferResult, error)
	CalculateInterest(ctx context.Context, id int64, opts ...account_manager.OperationOption) (*account_manager.InterestResult, error)

	GetAccountHistory(ctx context.Context, id int64, limit int) ([]*ledger.Transaction, error)
	GetAccountSummary(ctx context.Context, id int64) (*account_manager.AccountSummary, error)
	GetMonthlyStatement(ctx context.Context, id int64, year int, month time.Month) (*ledger.Statement, error)
	GetAccountStatistics(ctx context.Context, id int64, days int) (*ledger.Statistics, error)
	ReconcileAccount(ctx context.Context, id int64) (*ledger.Reconciliation, error)
}

var _ LedgerService = (*account_manager.Manager)(nil)

// CommandService submits asynchronous ledger commands
type CommandService interface {
	// Submit validates and publishes the command, assigning its id and timestamp.
	// Returns the command as published.
	Submit(ctx context.Context, cmd *shared.LedgerCommand) (*shared.LedgerCommand, error)
}

// ArchiveService reads the archived transaction stream
type ArchiveService interface {
	// GetTransaction returns ledger.ErrArchivedTransactionNotFound for unknown ids
	GetTransaction(ctx context.Context, transactionID int64) (*ledger.Transaction, error)

	// ListAccountTransactions returns one page, newest first, and the total count
	ListAccountTransactions(ctx context.Context, accountID int64, page, perPage int) ([]*ledger.Transaction, int64, error)
}
