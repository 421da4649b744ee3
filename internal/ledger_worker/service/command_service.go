package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/personal-ledger/internal/account_manager"
	"github.com/personal-ledger/internal/domain/shared"
)

// CommandServiceImpl runs each command as one account manager operation
type CommandServiceImpl struct {
	engine LedgerEngine
	logger *slog.Logger
}

// NewCommandService creates a new CommandServiceImpl
func NewCommandService(engine LedgerEngine, logger *slog.Logger) *CommandServiceImpl {
	return &CommandServiceImpl{
		engine: engine,
		logger: logger,
	}
}

// Execute applies cmd under its idempotency reference. A command whose
// reference is already in the ledger was applied before and succeeds again.
func (s *CommandServiceImpl) Execute(ctx context.Context, cmd *shared.LedgerCommand) error {
	logger := s.logger
	if cmd.CorrelationID != "" {
		logger = s.logger.With("correlation_id", cmd.CorrelationID)
	}

	if err := cmd.Validate(); err != nil {
		return err
	}

	logger.Info("Executing ledger command",
		"command_id", cmd.CommandID.String(),
		"type", cmd.Type,
		"account_id", cmd.AccountID,
	)

	err := s.dispatch(ctx, cmd, account_manager.WithReference(cmd.Reference()))
	if errors.Is(err, shared.ErrDuplicateRequest{}) {
		logger.Info("Ledger command already applied", "command_id", cmd.CommandID.String())
		return nil
	}
	if err != nil {
		return fmt.Errorf("command %s: %w", cmd.CommandID, err)
	}

	logger.Info("Ledger command applied", "command_id", cmd.CommandID.String())
	return nil
}

func (s *CommandServiceImpl) dispatch(ctx context.Context, cmd *shared.LedgerCommand, ref account_manager.OperationOption) error {
	var err error
	switch cmd.Type {
	case shared.CommandTypeDeposit:
		_, err = s.engine.Deposit(ctx, cmd.AccountID, cmd.Amount, cmd.Description, ref)
	case shared.CommandTypeWithdraw:
		_, err = s.engine.Withdraw(ctx, cmd.AccountID, cmd.Amount, cmd.Description, ref)
	case shared.CommandTypeFee:
		_, err = s.engine.ChargeFee(ctx, cmd.AccountID, cmd.Amount, cmd.Description, ref)
	case shared.CommandTypeTransfer:
		_, err = s.engine.Transfer(ctx, cmd.AccountID, cmd.ToAccountID, cmd.Amount, cmd.Description, ref)
	case shared.CommandTypeBulkTransfer:
		legs := make([]account_manager.TransferLeg, 0, len(cmd.Legs))
		for _, leg := range cmd.Legs {
			legs = append(legs, account_manager.TransferLeg{ToAccountID: leg.ToAccountID, Amount: leg.Amount})
		}
		_, err = s.engine.BulkTransfer(ctx, cmd.AccountID, legs, cmd.Description, ref)
	default:
		err = shared.ErrInvalidInput{Field: "type", Reason: "unsupported command type " + string(cmd.Type)}
	}
	return err
}
