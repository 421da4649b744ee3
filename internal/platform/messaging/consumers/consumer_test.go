package consumers

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/personal-ledger/internal/config"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockMessageReader struct {
	mock.Mock
}

func (m *MockMessageReader) FetchMessage(ctx context.Context) (kafka.Message, error) {
	args := m.Called(ctx)
	return args.Get(0).(kafka.Message), args.Error(1)
}

func (m *MockMessageReader) CommitMessages(ctx context.Context, msgs ...kafka.Message) error {
	args := m.Called(ctx, msgs)
	return args.Error(0)
}

func (m *MockMessageReader) Close() error {
	args := m.Called()
	return args.Error(0)
}

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

func TestNewKafkaConsumer(t *testing.T) {
	cfg := &config.KafkaConfig{
		Brokers:       "localhost:9092",
		CommandTopic:  "ledger_commands",
		ConsumerGroup: "ledger-worker-group",
		MinBytes:      1024,
		MaxBytes:      10240,
		MaxWait:       time.Second,
	}

	consumer := NewKafkaConsumer(newTestLogger(), cfg)
	require.NotNil(t, consumer)
	require.NotNil(t, consumer.reader)
	assert.Equal(t, "ledger_commands", consumer.topic)
	assert.Equal(t, "ledger-worker-group", consumer.groupID)
	_ = consumer.Close()
}

func TestKafkaConsumer_Run(t *testing.T) {
	first := kafka.Message{Topic: "ledger_commands", Offset: 1, Key: []byte("1"), Value: []byte(`{}`)}
	second := kafka.Message{Topic: "ledger_commands", Offset: 2, Key: []byte("2"), Value: []byte(`{}`)}

	t.Run("commits handled messages only", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		reader := new(MockMessageReader)
		reader.On("FetchMessage", mock.Anything).Return(first, nil).Once()
		reader.On("FetchMessage", mock.Anything).Return(second, nil).Once()
		reader.On("FetchMessage", mock.Anything).Return(kafka.Message{}, context.Canceled).Run(func(mock.Arguments) { cancel() })
		reader.On("CommitMessages", mock.Anything, []kafka.Message{first}).Return(nil).Once()

		var handled []int64
		consumer := &KafkaConsumer{reader: reader, logger: newTestLogger(), topic: "ledger_commands"}
		consumer.run(ctx, func(_ context.Context, msg kafka.Message) error {
			handled = append(handled, msg.Offset)
			if msg.Offset == 2 {
				return errors.New("storage timeout")
			}
			return nil
		})

		assert.Equal(t, []int64{1, 2}, handled)
		reader.AssertExpectations(t)
		reader.AssertNotCalled(t, "CommitMessages", mock.Anything, []kafka.Message{second})
	})

	t.Run("fetch errors are retried", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		reader := new(MockMessageReader)
		reader.On("FetchMessage", mock.Anything).Return(kafka.Message{}, errors.New("broker down")).Once()
		reader.On("FetchMessage", mock.Anything).Return(first, nil).Once()
		reader.On("CommitMessages", mock.Anything, []kafka.Message{first}).Return(nil).Run(func(mock.Arguments) { cancel() }).Once()

		calls := 0
		consumer := &KafkaConsumer{reader: reader, logger: newTestLogger()}
		consumer.run(ctx, func(context.Context, kafka.Message) error {
			calls++
			return nil
		})

		assert.Equal(t, 1, calls)
		reader.AssertExpectations(t)
	})

	t.Run("subscribe returns immediately", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		consumer := &KafkaConsumer{reader: new(MockMessageReader), logger: newTestLogger()}
		require.NoError(t, consumer.Subscribe(ctx, func(context.Context, kafka.Message) error { return nil }))
	})
}

func TestKafkaConsumer_Close(t *testing.T) {
	t.Run("nil reader", func(t *testing.T) {
		consumer := &KafkaConsumer{logger: newTestLogger()}
		require.NoError(t, consumer.Close())
	})

	t.Run("reader error", func(t *testing.T) {
		reader := new(MockMessageReader)
		reader.On("Close").Return(errors.New("closed")).Once()
		consumer := &KafkaConsumer{reader: reader, logger: newTestLogger()}
		assert.Error(t, consumer.Close())
	})
}
