package producers

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/personal-ledger/internal/config"
	"github.com/segmentio/kafka-go"
)

const topicReadAttempts = 5

// topicRetryDelay is a variable so tests can shorten it
var topicRetryDelay = 2 * time.Second

// EnsureTopics dials the broker once and creates every missing topic
func EnsureTopics(cfg *config.KafkaConfig, logger *slog.Logger, topics ...string) error {
	conn, err := kafka.Dial("tcp", cfg.Brokers)
	if err != nil {
		return fmt.Errorf("failed to dial kafka: %w", err)
	}
	defer conn.Close()

	for _, topic := range topics {
		if err := ensureTopic(conn, topic, cfg.NumPartitions, cfg.ReplicationFactor, logger); err != nil {
			return err
		}
	}
	return nil
}

// ensureTopic creates topic unless its partitions can be read. Partition reads
// are retried since a fresh broker may not answer metadata requests yet.
func ensureTopic(admin TopicAdmin, topic string, partitions, replication int, logger *slog.Logger) error {
	if topic == "" {
		return errors.New("kafka topic name is empty")
	}

	var (
		existing []kafka.Partition
		err      error
	)
	for attempt := 1; attempt <= topicReadAttempts; attempt++ {
		existing, err = admin.ReadPartitions(topic)
		if err == nil {
			break
		}
		logger.Warn("Failed to read topic partitions, retrying", "topic", topic, "attempt", attempt, "error", err)
		if attempt < topicReadAttempts {
			time.Sleep(topicRetryDelay)
		}
	}

	if len(existing) > 0 {
		logger.Debug("Kafka topic already exists", "topic", topic, "partitions", len(existing))
		return nil
	}

	topicConfig := kafka.TopicConfig{
		Topic:             topic,
		NumPartitions:     max(partitions, 1),
		ReplicationFactor: max(replication, 1),
	}
	if err := admin.CreateTopics(topicConfig); err != nil {
		return fmt.Errorf("failed to create kafka topic %s: %w", topic, err)
	}
	logger.Info("Created Kafka topic", "topic", topic, "partitions", topicConfig.NumPartitions)
	return nil
}
