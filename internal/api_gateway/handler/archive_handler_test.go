package handler

import (
	"errors"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/personal-ledger/internal/domain/ledger"
	"github.com/personal-ledger/internal/domain/money"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newArchiveRouter(svc *MockArchiveService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewArchiveHandler(newTestLogger(), svc)
	r := gin.New()
	r.GET("/archive/transactions/:id", h.GetTransaction)
	r.GET("/archive/accounts/:id/transactions", h.ListAccountTransactions)
	return r
}

func TestArchiveHandler_GetTransaction(t *testing.T) {
	t.Run("Found", func(t *testing.T) {
		svc := new(MockArchiveService)
		svc.On("GetTransaction", mock.Anything, int64(12)).Return(&ledger.Transaction{
			ID:     12,
			Type:   ledger.TransactionTypeDeposit,
			Amount: money.MustParse("40"),
		}, nil).Once()

		status, env := serve(t, newArchiveRouter(svc), http.MethodGet, "/archive/transactions/12", nil)
		require.Equal(t, http.StatusOK, status)
		var txn ledger.Transaction
		env.decode(t, &txn)
		assert.Equal(t, int64(12), txn.ID)
		assert.Equal(t, "40.00", txn.Amount.String())
	})

	t.Run("NotFound", func(t *testing.T) {
		svc := new(MockArchiveService)
		svc.On("GetTransaction", mock.Anything, int64(13)).Return(nil, ledger.ErrArchivedTransactionNotFound{TransactionID: 13}).Once()

		status, env := serve(t, newArchiveRouter(svc), http.MethodGet, "/archive/transactions/13", nil)
		assert.Equal(t, http.StatusNotFound, status)
		assert.Equal(t, "TRANSACTION_NOT_FOUND", env.Error.Code)
	})

	t.Run("StoreError", func(t *testing.T) {
		svc := new(MockArchiveService)
		svc.On("GetTransaction", mock.Anything, int64(14)).Return(nil, errors.New("mongo: server selection timeout")).Once()

		status, env := serve(t, newArchiveRouter(svc), http.MethodGet, "/archive/transactions/14", nil)
		assert.Equal(t, http.StatusInternalServerError, status)
		assert.Equal(t, "UNKNOWN_ERROR", env.Error.Code)
		assert.Equal(t, "An internal error occurred", env.Error.Message)
	})
}

func TestArchiveHandler_ListAccountTransactions(t *testing.T) {
	t.Run("Paginated", func(t *testing.T) {
		svc := new(MockArchiveService)
		page := []*ledger.Transaction{{ID: 9}, {ID: 8}}
		svc.On("ListAccountTransactions", mock.Anything, int64(3), 2, 2).Return(page, int64(5), nil).Once()

		status, env := serve(t, newArchiveRouter(svc), http.MethodGet, "/archive/accounts/3/transactions?page=2&per_page=2", nil)
		require.Equal(t, http.StatusOK, status)
		require.NotNil(t, env.Meta)
		assert.Equal(t, 2, env.Meta.Page)
		assert.Equal(t, 3, env.Meta.TotalPages)
		assert.Equal(t, int64(5), env.Meta.TotalItems)

		var txns []ledger.Transaction
		env.decode(t, &txns)
		assert.Len(t, txns, 2)
	})

	t.Run("Defaults", func(t *testing.T) {
		svc := new(MockArchiveService)
		svc.On("ListAccountTransactions", mock.Anything, int64(3), 1, 20).Return([]*ledger.Transaction{}, int64(0), nil).Once()

		status, _ := serve(t, newArchiveRouter(svc), http.MethodGet, "/archive/accounts/3/transactions", nil)
		assert.Equal(t, http.StatusOK, status)
		svc.AssertExpectations(t)
	})

	t.Run("InvalidPagination", func(t *testing.T) {
		svc := new(MockArchiveService)
		status, env := serve(t, newArchiveRouter(svc), http.MethodGet, "/archive/accounts/3/transactions?per_page=500", nil)
		assert.Equal(t, http.StatusBadRequest, status)
		assert.Equal(t, "INVALID_INPUT", env.Error.Code)
	})
}
