package outbox_poller

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/personal-ledger/internal/domain/ledger"
	"github.com/personal-ledger/internal/domain/outbox"
	"github.com/personal-ledger/internal/domain/shared"
	"github.com/personal-ledger/internal/platform/messaging/producers"
)

// EventPublisher delivers one outbox message to its downstream consumers
type EventPublisher interface {
	Publish(ctx context.Context, message *outbox.Message) error
}

// EventPublisherImpl streams committed transactions to Kafka and the Mongo archive
type EventPublisherImpl struct {
	outboxRepo outbox.Repository
	events     producers.EventPublisher
	archive    ledger.ArchiveRepository
	logger     *slog.Logger
}

// NewEventPublisher creates a new publisher. archive may be nil when no read model is configured.
func NewEventPublisher(
	outboxRepo outbox.Repository,
	events producers.EventPublisher,
	archive ledger.ArchiveRepository,
	logger *slog.Logger,
) EventPublisher {
	return &EventPublisherImpl{
		outboxRepo: outboxRepo,
		events:     events,
		archive:    archive,
		logger:     logger,
	}
}

// Publish sends the message and marks it PROCESSED. Both sinks are keyed by
// transaction id, so a message retried after a partial failure is harmless.
func (p *EventPublisherImpl) Publish(ctx context.Context, message *outbox.Message) error {
	txn, err := message.Transaction()
	if err != nil {
		p.logger.Error("Failed to decode transaction from outbox payload",
			"outbox_id", message.ID, "transaction_id", message.TransactionID, "error", err,
		)
		if updateErr := p.outboxRepo.UpdateStatus(ctx, message.ID, shared.OutboxStatusFailedToPublish); updateErr != nil {
			p.logger.Error("Also failed to mark undecodable outbox message as FAILED_TO_PUBLISH", "outbox_id", message.ID, "update_error", updateErr)
		}
		return fmt.Errorf("decode payload for outbox %d failed: %w", message.ID, err)
	}

	logger := p.logger.With("outbox_id", message.ID, "transaction_id", txn.ID, "account_id", txn.AccountID)

	if err := p.events.PublishEvent(ctx, message); err != nil {
		logger.Error("Failed to publish transaction event", "error", err)
		return fmt.Errorf("failed to publish transaction %d: %w", txn.ID, err)
	}

	if p.archive != nil {
		if err := p.archive.Upsert(ctx, txn); err != nil {
			logger.Error("Failed to archive transaction", "error", err)
			return fmt.Errorf("failed to archive transaction %d: %w", txn.ID, err)
		}
	}

	if err := p.outboxRepo.UpdateStatus(ctx, message.ID, shared.OutboxStatusProcessed); err != nil {
		logger.Error("Failed to update outbox message status to PROCESSED", "error", err)
		return fmt.Errorf("transaction %d delivered, but failed to mark outbox %d as PROCESSED: %w", txn.ID, message.ID, err)
	}

	logger.Debug("Outbox message delivered", "event_type", message.EventType)
	return nil
}
