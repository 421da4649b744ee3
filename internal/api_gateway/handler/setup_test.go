package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/personal-ledger/internal/account_manager"
	"github.com/personal-ledger/internal/api_gateway/middleware"
	"github.com/personal-ledger/internal/data/memory"
	"github.com/personal-ledger/internal/domain/ledger"
	"github.com/personal-ledger/internal/domain/shared"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockCommandService struct {
	mock.Mock
}

func (m *MockCommandService) Submit(ctx context.Context, cmd *shared.LedgerCommand) (*shared.LedgerCommand, error) {
	args := m.Called(ctx, cmd)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*shared.LedgerCommand), args.Error(1)
}

type MockArchiveService struct {
	mock.Mock
}

func (m *MockArchiveService) GetTransaction(ctx context.Context, transactionID int64) (*ledger.Transaction, error) {
	args := m.Called(ctx, transactionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ledger.Transaction), args.Error(1)
}

func (m *MockArchiveService) ListAccountTransactions(ctx context.Context, accountID int64, page, perPage int) ([]*ledger.Transaction, int64, error) {
	args := m.Called(ctx, accountID, page, perPage)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]*ledger.Transaction), args.Get(1).(int64), args.Error(2)
}

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

// testAPI routes requests to handlers backed by a real manager over the memory store
type testAPI struct {
	router  *gin.Engine
	manager *account_manager.Manager
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	gin.SetMode(gin.TestMode)
	logger := newTestLogger()
	manager := account_manager.NewManager(memory.NewStore(logger), logger, account_manager.WithLocation(time.UTC))

	accounts := NewAccountHandler(logger, manager, Defaults{HistoryLimit: 10, StatisticsDays: 30})
	transactions := NewTransactionHandler(logger, manager)

	r := gin.New()
	r.Use(middleware.CorrelationID(), middleware.Logger(logger))
	r.POST("/accounts", accounts.Create)
	r.GET("/accounts", accounts.List)
	r.GET("/accounts/:id", accounts.GetByID)
	r.GET("/account-numbers/:number", accounts.GetByNumber)
	r.POST("/accounts/:id/deposits", transactions.Deposit)
	r.POST("/accounts/:id/withdrawals", transactions.Withdraw)
	r.POST("/accounts/:id/fees", transactions.ChargeFee)
	r.POST("/accounts/:id/interest", transactions.AccrueInterest)
	r.POST("/accounts/:id/freeze", accounts.Freeze)
	r.POST("/accounts/:id/unfreeze", accounts.Unfreeze)
	r.POST("/accounts/:id/deactivate", accounts.Deactivate)
	r.PUT("/accounts/:id/daily-limit", accounts.SetDailyLimit)
	r.PUT("/accounts/:id/interest-rate", accounts.SetInterestRate)
	r.GET("/accounts/:id/balance", accounts.Balance)
	r.GET("/accounts/:id/summary", accounts.Summary)
	r.GET("/accounts/:id/transactions", accounts.History)
	r.GET("/accounts/:id/statement", accounts.Statement)
	r.GET("/accounts/:id/statistics", accounts.Statistics)
	r.GET("/accounts/:id/reconciliation", accounts.Reconcile)
	r.POST("/transfers", transactions.Transfer)
	r.POST("/bulk-transfers", transactions.BulkTransfer)

	return &testAPI{router: r, manager: manager}
}

// do sends body (a string is sent verbatim) and decodes the envelope
func (a *testAPI) do(t *testing.T, method, path string, body any) (int, *envelope) {
	t.Helper()
	return serve(t, a.router, method, path, body)
}

func serve(t *testing.T, router http.Handler, method, path string, body any) (int, *envelope) {
	t.Helper()
	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = bytes.NewBufferString(b)
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewBuffer(raw)
	}

	req, err := http.NewRequest(method, path, reader)
	require.NoError(t, err)
	if reader != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	var env envelope
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &env), rr.Body.String())
	return rr.Code, &env
}

// envelope mirrors Response with the data left raw
type envelope struct {
	Data          json.RawMessage `json:"data"`
	Error         *ErrorInfo      `json:"error"`
	CorrelationID string          `json:"correlation_id"`
	Meta          *MetaInfo       `json:"meta"`
}

func (e *envelope) decode(t *testing.T, v any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(e.Data, v))
}

func (a *testAPI) openAccount(t *testing.T, deposit string) AccountResponse {
	t.Helper()
	status, env := a.do(t, http.MethodPost, "/accounts", map[string]any{
		"customer_name":   "Alice",
		"account_type":    "checking",
		"initial_deposit": deposit,
	})
	require.Equal(t, http.StatusCreated, status, env.Error)
	var acc AccountResponse
	env.decode(t, &acc)
	return acc
}
