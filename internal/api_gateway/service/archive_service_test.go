package service

import (
	"context"
	"errors"
	"testing"

	"github.com/personal-ledger/internal/domain/ledger"
	"github.com/personal-ledger/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockArchiveRepo struct {
	mock.Mock
}

func (m *MockArchiveRepo) Upsert(ctx context.Context, txn *ledger.Transaction) error {
	args := m.Called(ctx, txn)
	return args.Error(0)
}

func (m *MockArchiveRepo) GetByTransactionID(ctx context.Context, transactionID int64) (*ledger.Transaction, error) {
	args := m.Called(ctx, transactionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ledger.Transaction), args.Error(1)
}

func (m *MockArchiveRepo) GetByAccountID(ctx context.Context, accountID int64, limit, offset int) ([]*ledger.Transaction, error) {
	args := m.Called(ctx, accountID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*ledger.Transaction), args.Error(1)
}

func (m *MockArchiveRepo) CountByAccountID(ctx context.Context, accountID int64) (int64, error) {
	args := m.Called(ctx, accountID)
	return args.Get(0).(int64), args.Error(1)
}

func TestArchiveService_GetTransaction(t *testing.T) {
	ctx := context.Background()

	t.Run("found", func(t *testing.T) {
		repo := new(MockArchiveRepo)
		repo.On("GetByTransactionID", ctx, int64(5)).Return(&ledger.Transaction{ID: 5}, nil).Once()

		txn, err := NewArchiveService(newTestLogger(), repo).GetTransaction(ctx, 5)
		require.NoError(t, err)
		assert.Equal(t, int64(5), txn.ID)
	})

	t.Run("not found", func(t *testing.T) {
		repo := new(MockArchiveRepo)
		repo.On("GetByTransactionID", ctx, int64(6)).Return(nil, ledger.ErrArchivedTransactionNotFound{TransactionID: 6}).Once()

		_, err := NewArchiveService(newTestLogger(), repo).GetTransaction(ctx, 6)
		assert.ErrorIs(t, err, ledger.ErrArchivedTransactionNotFound{})
	})

	t.Run("invalid id", func(t *testing.T) {
		_, err := NewArchiveService(newTestLogger(), new(MockArchiveRepo)).GetTransaction(ctx, 0)
		assert.ErrorIs(t, err, shared.ErrInvalidInput{Field: "transaction_id"})
	})
}

func TestArchiveService_ListAccountTransactions(t *testing.T) {
	ctx := context.Background()

	t.Run("second page", func(t *testing.T) {
		repo := new(MockArchiveRepo)
		page := []*ledger.Transaction{{ID: 3}, {ID: 2}}
		repo.On("GetByAccountID", ctx, int64(9), 2, 2).Return(page, nil).Once()
		repo.On("CountByAccountID", ctx, int64(9)).Return(int64(5), nil).Once()

		txns, total, err := NewArchiveService(newTestLogger(), repo).ListAccountTransactions(ctx, 9, 2, 2)
		require.NoError(t, err)
		assert.Len(t, txns, 2)
		assert.Equal(t, int64(5), total)
		repo.AssertExpectations(t)
	})

	t.Run("list error", func(t *testing.T) {
		repo := new(MockArchiveRepo)
		repo.On("GetByAccountID", ctx, int64(9), 10, 0).Return(nil, errors.New("mongo down")).Once()

		_, _, err := NewArchiveService(newTestLogger(), repo).ListAccountTransactions(ctx, 9, 1, 10)
		assert.Error(t, err)
		repo.AssertNotCalled(t, "CountByAccountID", mock.Anything, mock.Anything)
	})

	t.Run("count error", func(t *testing.T) {
		repo := new(MockArchiveRepo)
		repo.On("GetByAccountID", ctx, int64(9), 10, 0).Return([]*ledger.Transaction{}, nil).Once()
		repo.On("CountByAccountID", ctx, int64(9)).Return(int64(0), errors.New("mongo down")).Once()

		_, _, err := NewArchiveService(newTestLogger(), repo).ListAccountTransactions(ctx, 9, 1, 10)
		assert.Error(t, err)
	})
}
