package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/personal-ledger/internal/domain/shared"
	"github.com/personal-ledger/internal/platform/messaging/producers"
)

// CommandServiceImpl implements the CommandService interface
type CommandServiceImpl struct {
	producer producers.CommandPublisher
	logger   *slog.Logger
	now      func() time.Time
}

// NewCommandService creates a new command service
func NewCommandService(logger *slog.Logger, producer producers.CommandPublisher) CommandService {
	return &CommandServiceImpl{
		producer: producer,
		logger:   logger,
		now:      time.Now,
	}
}

// Submit publishes cmd keyed by its account. A client supplied command id is
// kept so retries of the same request collapse into one ledger operation.
func (s *CommandServiceImpl) Submit(ctx context.Context, cmd *shared.LedgerCommand) (*shared.LedgerCommand, error) {
	if cmd.CommandID == uuid.Nil {
		cmd.CommandID = uuid.New()
	}
	cmd.Timestamp = s.now().UTC()

	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	logger := s.logger
	if cmd.CorrelationID != "" {
		logger = s.logger.With("correlation_id", cmd.CorrelationID)
	}

	if err := s.producer.PublishCommand(ctx, cmd); err != nil {
		logger.Error("Failed to publish ledger command",
			"command_id", cmd.CommandID.String(),
			"command_type", string(cmd.Type),
			"account_id", cmd.AccountID,
			"error", err,
		)
		return nil, err
	}

	logger.Info("Ledger command published",
		"command_id", cmd.CommandID.String(),
		"command_type", string(cmd.Type),
		"account_id", cmd.AccountID,
	)
	return cmd, nil
}
