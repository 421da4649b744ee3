package producers

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/personal-ledger/internal/config"
	"github.com/segmentio/kafka-go"
)

// newKafkaWriter builds a synchronous writer for topic
func newKafkaWriter(cfg *config.KafkaConfig, topic string, acks kafka.RequiredAcks) *kafka.Writer {
	return &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: acks,
		WriteTimeout: cfg.MaxWait,
	}
}

// topicWriter is the write path shared by every producer
type topicWriter struct {
	logger *slog.Logger
	writer KafkaWriter
	topic  string
}

func (w *topicWriter) write(ctx context.Context, msg kafka.Message) error {
	if err := w.writer.WriteMessages(ctx, msg); err != nil {
		w.logger.Error("Failed to publish message",
			"topic", w.topic,
			"key", string(msg.Key),
			"error", err,
		)
		return fmt.Errorf("failed to publish message to %s: %w", w.topic, err)
	}

	w.logger.Debug("Published message", "topic", w.topic, "key", string(msg.Key))
	return nil
}

func (w *topicWriter) Close() error {
	w.logger.Info("Closing Kafka producer", "topic", w.topic)
	if err := w.writer.Close(); err != nil {
		return fmt.Errorf("failed to close kafka writer for topic %s: %w", w.topic, err)
	}
	return nil
}
