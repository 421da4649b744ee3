package consumer

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/personal-ledger/internal/domain/shared"
	"github.com/personal-ledger/internal/ledger_worker/service"
	"github.com/personal-ledger/internal/platform/messaging/producers"
	"github.com/segmentio/kafka-go"
)

// CommandHandler handles ledger command messages from Kafka
type CommandHandler struct {
	commandService service.CommandService
	producer       producers.DeadLetterPublisher
	logger         *slog.Logger
}

// NewCommandHandler creates a new handler. producer may be nil when no DLQ is configured.
func NewCommandHandler(logger *slog.Logger, commandService service.CommandService, producer producers.DeadLetterPublisher) *CommandHandler {
	return &CommandHandler{
		commandService: commandService,
		producer:       producer,
		logger:         logger,
	}
}

// HandleMessage applies one command. Returning nil commits the offset: the
// command was applied or parked in the DLQ. Storage failures are returned so
// the message is delivered again.
func (h *CommandHandler) HandleMessage(ctx context.Context, msg kafka.Message) error {
	var cmd shared.LedgerCommand
	if err := json.Unmarshal(msg.Value, &cmd); err != nil {
		h.logger.Error("Failed to unmarshal ledger command", "message_key", string(msg.Key), "error", err)
		reason := fmt.Sprintf("%s: failed to unmarshal ledger command: %v", shared.FailureReasonInvalidInput, err)
		return h.deadLetter(ctx, h.logger, msg, reason, fmt.Errorf("failed to unmarshal message value: %w", err))
	}

	logger := h.logger
	if cmd.CorrelationID != "" {
		logger = h.logger.With("correlation_id", cmd.CorrelationID)
	}

	err := h.commandService.Execute(ctx, &cmd)
	if err == nil {
		return nil
	}

	reason := shared.ReasonOf(err)
	if shared.IsClientError(err) || reason == shared.FailureReasonInvariantViolation {
		logger.Warn("Ledger command rejected", "command_id", cmd.CommandID.String(), "reason", reason, "error", err)
		return h.deadLetter(ctx, logger, msg, string(reason)+": "+err.Error(), err)
	}

	logger.Error("Ledger command not applied, will be redelivered",
		"command_id", cmd.CommandID.String(),
		"reason", reason,
		"error", err,
	)
	return fmt.Errorf("processing command %s failed: %w", cmd.CommandID.String(), err)
}

// deadLetter parks msg. When no DLQ is available cause is returned so the offset stays uncommitted.
func (h *CommandHandler) deadLetter(ctx context.Context, logger *slog.Logger, msg kafka.Message, reason string, cause error) error {
	if h.producer == nil {
		return cause
	}
	if err := h.producer.PublishToDLQ(ctx, string(msg.Key), msg.Value, reason); err != nil {
		logger.Error("Failed to publish message to DLQ", "message_key", string(msg.Key), "dlq_error", err, "original_error", cause)
		return cause
	}
	return nil
}
