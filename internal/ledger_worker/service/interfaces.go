package service

import (
	"context"

	"github.com/personal-ledger/internal/account_manager"
	"github.com/personal-ledger/internal/domain/money"
	"github.com/personal-ledger/internal/domain/shared"
)

// CommandService applies ledger commands received from Kafka
type CommandService interface {
	Execute(ctx context.Context, cmd *shared.LedgerCommand) error
}

// LedgerEngine is the part of the account manager reachable through commands
type LedgerEngine interface {
	Deposit(ctx context.Context, id int64, amount money.Money, description string, opts ...account_manager.OperationOption) (*account_manager.MovementResult, error)
	Withdraw(ctx context.Context, id int64, amount money.Money, description string, opts ...account_manager.OperationOption) (*account_manager.MovementResult, error)
	ChargeFee(ctx context.Context, id int64, amount money.Money, description string, opts ...account_manager.OperationOption) (*account_manager.MovementResult, error)
	Transfer(ctx context.Context, fromID, toID int64, amount money.Money, description string, opts ...account_manager.OperationOption) (*account_manager.TransferResult, error)
	BulkTransfer(ctx context.Context, fromID int64, legs []account_manager.TransferLeg, description string, opts ...account_manager.OperationOption) (*account_manager.BulkTransferResult, error)
}

var _ LedgerEngine = (*account_manager.Manager)(nil)
