package producers

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/personal-ledger/internal/config"
	"github.com/personal-ledger/internal/domain/outbox"
	"github.com/segmentio/kafka-go"
)

// EventProducer publishes committed transactions from the outbox
type EventProducer struct {
	topicWriter
}

var _ EventPublisher = (*EventProducer)(nil)

// NewEventProducer ensures the event topic exists and opens a writer on it
func NewEventProducer(logger *slog.Logger, cfg *config.KafkaConfig) (*EventProducer, error) {
	if cfg.EventTopic == "" {
		return nil, fmt.Errorf("kafka event topic is not configured")
	}
	if err := EnsureTopics(cfg, logger, cfg.EventTopic); err != nil {
		return nil, fmt.Errorf("failed to ensure event topic %s exists: %w", cfg.EventTopic, err)
	}

	return &EventProducer{topicWriter{
		logger: logger,
		writer: newKafkaWriter(cfg, cfg.EventTopic, kafka.RequireAll),
		topic:  cfg.EventTopic,
	}}, nil
}

// PublishEvent writes the stored payload as is, keyed by account
func (p *EventProducer) PublishEvent(ctx context.Context, msg *outbox.Message) error {
	return p.write(ctx, kafka.Message{
		Key:   msg.Key(),
		Value: msg.Payload,
		Headers: []kafka.Header{
			{Key: "event-type", Value: []byte(msg.EventType)},
			{Key: "transaction-id", Value: []byte(strconv.FormatInt(msg.TransactionID, 10))},
		},
	})
}
