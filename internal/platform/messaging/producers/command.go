package producers

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/personal-ledger/internal/config"
	"github.com/personal-ledger/internal/domain/shared"
	"github.com/segmentio/kafka-go"
)

// CommandProducer writes ledger commands to the command topic. Commands are
// keyed by source account so one account's commands keep their order.
type CommandProducer struct {
	topicWriter
}

var _ CommandPublisher = (*CommandProducer)(nil)

// NewCommandProducer ensures the command topic exists and opens a writer on it
func NewCommandProducer(logger *slog.Logger, cfg *config.KafkaConfig) (*CommandProducer, error) {
	if cfg.CommandTopic == "" {
		return nil, fmt.Errorf("kafka command topic is not configured")
	}
	if err := EnsureTopics(cfg, logger, cfg.CommandTopic); err != nil {
		return nil, fmt.Errorf("failed to ensure command topic %s exists: %w", cfg.CommandTopic, err)
	}

	return &CommandProducer{topicWriter{
		logger: logger,
		writer: newKafkaWriter(cfg, cfg.CommandTopic, kafka.RequireAll),
		topic:  cfg.CommandTopic,
	}}, nil
}

// PublishCommand writes cmd and returns once the broker acknowledged it
func (p *CommandProducer) PublishCommand(ctx context.Context, cmd *shared.LedgerCommand) error {
	value, err := json.Marshal(cmd)
	if err != nil {
		return fmt.Errorf("failed to marshal ledger command: %w", err)
	}

	headers := []kafka.Header{{Key: "command-type", Value: []byte(cmd.Type)}}
	if cmd.CorrelationID != "" {
		headers = append(headers, kafka.Header{Key: "correlation-id", Value: []byte(cmd.CorrelationID)})
	}

	return p.write(ctx, kafka.Message{
		Key:     []byte(strconv.FormatInt(cmd.AccountID, 10)),
		Value:   value,
		Headers: headers,
	})
}
