package producers

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/personal-ledger/internal/config"
	"github.com/segmentio/kafka-go"
)

// DLQProducer parks messages the worker could not apply
type DLQProducer struct {
	topicWriter
	now func() time.Time
}

var _ DeadLetterPublisher = (*DLQProducer)(nil)

// dlqMessage wraps the original message with the failure kind
type dlqMessage struct {
	OriginalKey   string `json:"original_key"`
	OriginalValue string `json:"original_value"`
	DLQReason     string `json:"dlq_reason"`
	Timestamp     string `json:"timestamp"`
}

// NewDLQProducer returns nil, nil when no DLQ topic is configured
func NewDLQProducer(logger *slog.Logger, cfg *config.KafkaConfig) (*DLQProducer, error) {
	if cfg.DLQTopic == "" {
		logger.Info("DLQ topic is not configured, rejected commands will only be logged")
		return nil, nil
	}
	if err := EnsureTopics(cfg, logger, cfg.DLQTopic); err != nil {
		return nil, fmt.Errorf("failed to ensure DLQ topic %s exists: %w", cfg.DLQTopic, err)
	}

	return &DLQProducer{
		topicWriter: topicWriter{
			logger: logger,
			writer: newKafkaWriter(cfg, cfg.DLQTopic, kafka.RequireAll),
			topic:  cfg.DLQTopic,
		},
		now: time.Now,
	}, nil
}

// PublishToDLQ writes the original message with reason in the body and a header
func (p *DLQProducer) PublishToDLQ(ctx context.Context, key string, originalMessageValue []byte, reason string) error {
	if p == nil || p.writer == nil {
		return fmt.Errorf("DLQ producer not initialized")
	}

	value, err := json.Marshal(dlqMessage{
		OriginalKey:   key,
		OriginalValue: string(originalMessageValue),
		DLQReason:     reason,
		Timestamp:     p.now().UTC().Format(time.RFC3339Nano),
	})
	if err != nil {
		return fmt.Errorf("failed to marshal DLQ message: %w", err)
	}

	if err := p.write(ctx, kafka.Message{
		Key:     []byte(key),
		Value:   value,
		Headers: []kafka.Header{{Key: "dlq-reason", Value: []byte(reason)}},
	}); err != nil {
		return err
	}

	p.logger.Info("Published message to DLQ", "topic", p.topic, "key", key, "reason", reason)
	return nil
}

// Close tolerates a nil producer
func (p *DLQProducer) Close() error {
	if p == nil || p.writer == nil {
		return nil
	}
	return p.topicWriter.Close()
}
