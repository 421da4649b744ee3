package producers

import (
	"context"

	"github.com/personal-ledger/internal/domain/outbox"
	"github.com/personal-ledger/internal/domain/shared"
	"github.com/segmentio/kafka-go"
)

// CommandPublisher enqueues ledger commands for the worker
type CommandPublisher interface {
	PublishCommand(ctx context.Context, cmd *shared.LedgerCommand) error
	Close() error
}

// EventPublisher announces committed transactions
type EventPublisher interface {
	PublishEvent(ctx context.Context, msg *outbox.Message) error
	Close() error
}

// DeadLetterPublisher handles publishing messages to a Dead Letter Queue
type DeadLetterPublisher interface {
	PublishToDLQ(ctx context.Context, key string, originalMessageValue []byte, reason string) error
	Close() error
}

// KafkaWriter wraps kafka.Writer methods for testing
type KafkaWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// TopicAdmin is the part of kafka.Conn used to provision topics
type TopicAdmin interface {
	ReadPartitions(topics ...string) ([]kafka.Partition, error)
	CreateTopics(topics ...kafka.TopicConfig) error
}
