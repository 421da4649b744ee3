package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/personal-ledger/internal/domain/money"
	"github.com/personal-ledger/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockCommandPublisher struct {
	mock.Mock
}

func (m *MockCommandPublisher) PublishCommand(ctx context.Context, cmd *shared.LedgerCommand) error {
	args := m.Called(ctx, cmd)
	return args.Error(0)
}

func (m *MockCommandPublisher) Close() error {
	args := m.Called()
	return args.Error(0)
}

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

func TestCommandService_Submit(t *testing.T) {
	ctx := context.Background()
	fixed := time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC)

	newService := func(producer *MockCommandPublisher) *CommandServiceImpl {
		svc := NewCommandService(newTestLogger(), producer).(*CommandServiceImpl)
		svc.now = func() time.Time { return fixed }
		return svc
	}

	t.Run("assigns id and timestamp", func(t *testing.T) {
		producer := new(MockCommandPublisher)
		producer.On("PublishCommand", ctx, mock.AnythingOfType("*shared.LedgerCommand")).Return(nil).Once()

		cmd, err := newService(producer).Submit(ctx, &shared.LedgerCommand{
			Type:          shared.CommandTypeDeposit,
			AccountID:     3,
			Amount:        money.MustParse("25"),
			CorrelationID: "corr",
		})
		require.NoError(t, err)
		assert.NotEqual(t, uuid.Nil, cmd.CommandID)
		assert.True(t, fixed.Equal(cmd.Timestamp))
		producer.AssertExpectations(t)
	})

	t.Run("keeps client command id", func(t *testing.T) {
		producer := new(MockCommandPublisher)
		id := uuid.New()
		producer.On("PublishCommand", ctx, mock.MatchedBy(func(c *shared.LedgerCommand) bool { return c.CommandID == id })).Return(nil).Once()

		cmd, err := newService(producer).Submit(ctx, &shared.LedgerCommand{CommandID: id, Type: shared.CommandTypeFee, AccountID: 1, Amount: money.MustParse("2")})
		require.NoError(t, err)
		assert.Equal(t, id, cmd.CommandID)
	})

	t.Run("invalid command is not published", func(t *testing.T) {
		producer := new(MockCommandPublisher)

		_, err := newService(producer).Submit(ctx, &shared.LedgerCommand{Type: shared.CommandTypeTransfer, AccountID: 1, Amount: money.MustParse("2")})
		assert.ErrorIs(t, err, shared.ErrInvalidInput{Field: "to_account_id"})
		producer.AssertNotCalled(t, "PublishCommand", mock.Anything, mock.Anything)
	})

	t.Run("publish failure", func(t *testing.T) {
		producer := new(MockCommandPublisher)
		producer.On("PublishCommand", ctx, mock.Anything).Return(errors.New("broker down")).Once()

		_, err := newService(producer).Submit(ctx, &shared.LedgerCommand{Type: shared.CommandTypeWithdraw, AccountID: 1, Amount: money.MustParse("2")})
		assert.EqualError(t, err, "broker down")
	})
}
