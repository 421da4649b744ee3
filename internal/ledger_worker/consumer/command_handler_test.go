package consumer

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/personal-ledger/internal/domain/money"
	"github.com/personal-ledger/internal/domain/shared"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockCommandService struct {
	mock.Mock
}

func (m *MockCommandService) Execute(ctx context.Context, cmd *shared.LedgerCommand) error {
	args := m.Called(ctx, cmd)
	return args.Error(0)
}

type MockDLQProducer struct {
	mock.Mock
}

func (m *MockDLQProducer) PublishToDLQ(ctx context.Context, key string, originalMessageValue []byte, reason string) error {
	args := m.Called(ctx, key, originalMessageValue, reason)
	return args.Error(0)
}

func (m *MockDLQProducer) Close() error {
	args := m.Called()
	return args.Error(0)
}

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

func TestCommandHandler_HandleMessage(t *testing.T) {
	ctx := context.Background()
	cmd := shared.LedgerCommand{
		CommandID:     uuid.New(),
		Type:          shared.CommandTypeWithdraw,
		AccountID:     1,
		Amount:        money.MustParse("50"),
		CorrelationID: "corr-1",
	}
	value, err := json.Marshal(cmd)
	require.NoError(t, err)
	msg := kafka.Message{Key: []byte("1"), Value: value}
	sameCommand := mock.MatchedBy(func(c *shared.LedgerCommand) bool { return c.CommandID == cmd.CommandID })

	t.Run("success", func(t *testing.T) {
		svc, dlq := new(MockCommandService), new(MockDLQProducer)
		svc.On("Execute", ctx, sameCommand).Return(nil).Once()

		require.NoError(t, NewCommandHandler(newTestLogger(), svc, dlq).HandleMessage(ctx, msg))
		svc.AssertExpectations(t)
		dlq.AssertNotCalled(t, "PublishToDLQ", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("business failure goes to DLQ", func(t *testing.T) {
		svc, dlq := new(MockCommandService), new(MockDLQProducer)
		svc.On("Execute", ctx, sameCommand).Return(shared.ErrInsufficientFunds{AccountID: 1}).Once()
		dlq.On("PublishToDLQ", ctx, "1", value, mock.MatchedBy(func(reason string) bool {
			return strings.HasPrefix(reason, "INSUFFICIENT_FUNDS: ")
		})).Return(nil).Once()

		require.NoError(t, NewCommandHandler(newTestLogger(), svc, dlq).HandleMessage(ctx, msg))
		dlq.AssertExpectations(t)
	})

	t.Run("storage conflict is redelivered", func(t *testing.T) {
		svc, dlq := new(MockCommandService), new(MockDLQProducer)
		conflict := shared.ErrStorageConflict{Op: "ledger transaction"}
		svc.On("Execute", ctx, sameCommand).Return(conflict).Once()

		err := NewCommandHandler(newTestLogger(), svc, dlq).HandleMessage(ctx, msg)
		assert.ErrorIs(t, err, shared.ErrStorageConflict{})
		dlq.AssertNotCalled(t, "PublishToDLQ", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("infrastructure error is redelivered", func(t *testing.T) {
		svc, dlq := new(MockCommandService), new(MockDLQProducer)
		svc.On("Execute", ctx, sameCommand).Return(errors.New("connection refused")).Once()

		assert.Error(t, NewCommandHandler(newTestLogger(), svc, dlq).HandleMessage(ctx, msg))
		dlq.AssertNotCalled(t, "PublishToDLQ", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("unparseable message goes to DLQ", func(t *testing.T) {
		svc, dlq := new(MockCommandService), new(MockDLQProducer)
		bad := kafka.Message{Key: []byte("k"), Value: []byte("not json")}
		dlq.On("PublishToDLQ", ctx, "k", bad.Value, mock.MatchedBy(func(reason string) bool {
			return strings.HasPrefix(reason, "INVALID_INPUT: failed to unmarshal")
		})).Return(nil).Once()

		require.NoError(t, NewCommandHandler(newTestLogger(), svc, dlq).HandleMessage(ctx, bad))
		svc.AssertNotCalled(t, "Execute", mock.Anything, mock.Anything)
	})

	t.Run("DLQ failure keeps the message", func(t *testing.T) {
		svc, dlq := new(MockCommandService), new(MockDLQProducer)
		svc.On("Execute", ctx, sameCommand).Return(shared.ErrAccountFrozen{AccountID: 1}).Once()
		dlq.On("PublishToDLQ", ctx, "1", value, mock.Anything).Return(errors.New("dlq down")).Once()

		err := NewCommandHandler(newTestLogger(), svc, dlq).HandleMessage(ctx, msg)
		assert.ErrorIs(t, err, shared.ErrAccountFrozen{})
	})

	t.Run("no DLQ configured", func(t *testing.T) {
		svc := new(MockCommandService)
		err := NewCommandHandler(newTestLogger(), svc, nil).HandleMessage(ctx, kafka.Message{Value: []byte("{")})
		assert.ErrorContains(t, err, "failed to unmarshal message value")
	})
}
