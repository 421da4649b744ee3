package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/personal-ledger/internal/config"
	"github.com/personal-ledger/internal/domain/account"
	"github.com/personal-ledger/internal/domain/ledger"
	"github.com/personal-ledger/internal/domain/outbox"
	"github.com/personal-ledger/internal/domain/shared"
	"github.com/personal-ledger/internal/platform/persistence"
)

// SQLSTATE codes the store maps onto retryable failures
const (
	sqlStateSerializationFailure = "40001"
	sqlStateDeadlockDetected     = "40P01"
	sqlStateQueryCanceled        = "57014"
	sqlStateLockNotAvailable     = "55P03"
	sqlStateStringTooLong        = "22001"
	sqlStateNumericOutOfRange    = "22003"
)

// Store implements ledger.Store on PostgreSQL. Every scope is one database
// transaction; accounts are locked with SELECT ... FOR UPDATE.
type Store struct {
	db           *persistence.PostgresDB
	accounts     account.Repository
	transactions ledger.Repository
	events       account.EventRepository
	outbox       outbox.Repository
	logger       *slog.Logger
	txOptions    pgx.TxOptions
	timeout      time.Duration
}

var _ ledger.Store = (*Store)(nil)

// NewStore builds the ledger store over db
func NewStore(logger *slog.Logger, db *persistence.PostgresDB, cfg config.LedgerConfig) *Store {
	return &Store{
		db:           db,
		accounts:     NewAccountRepository(logger, db),
		transactions: NewTransactionRepository(logger, db),
		events:       NewEventRepository(logger, db),
		outbox:       NewOutboxRepository(logger, db),
		logger:       logger,
		txOptions:    pgx.TxOptions{IsoLevel: persistence.IsolationLevel(cfg.IsolationLevel)},
		timeout:      cfg.OperationTimeout,
	}
}

// WithinTx runs fn in one database transaction bounded by the operation timeout.
// Storage failures are translated into the retryable error kinds.
func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context, tx ledger.Tx) error) error {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	err := s.db.ExecuteTx(ctx, s.txOptions, func(tx pgx.Tx) error {
		return fn(ctx, &storeTx{
			accounts:     s.accounts.WithTx(tx),
			transactions: s.transactions.WithTx(tx),
			events:       s.events.WithTx(tx),
			outbox:       s.outbox.WithTx(tx),
		})
	})
	if err == nil {
		return nil
	}

	classified := classifyError("ledger transaction", err)
	if shared.IsRetryable(classified) {
		s.logger.Warn("Ledger transaction not committed", "reason", string(shared.ReasonOf(classified)), "error", err)
	}
	return classified
}

// classifyError maps driver and context failures onto StorageConflict and
// StorageTimeout, and column limit violations onto InvalidInput. Ledger failures
// pass through unchanged.
func classifyError(op string, err error) error {
	if shared.ReasonOf(err) != shared.FailureReasonUnknownError {
		return err
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case sqlStateSerializationFailure, sqlStateDeadlockDetected:
			return shared.ErrStorageConflict{Op: op, Err: err}
		case sqlStateQueryCanceled, sqlStateLockNotAvailable:
			return shared.ErrStorageTimeout{Op: op, Err: err}
		case sqlStateStringTooLong, sqlStateNumericOutOfRange:
			field := pgErr.ColumnName
			if field == "" {
				field = "value"
			}
			return shared.ErrInvalidInput{Field: field, Reason: pgErr.Message}
		}
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) || pgconn.Timeout(err) {
		return shared.ErrStorageTimeout{Op: op, Err: err}
	}

	return err
}

// storeTx adapts the transaction-bound repositories to ledger.Tx
type storeTx struct {
	accounts     account.Repository
	transactions ledger.Repository
	events       account.EventRepository
	outbox       outbox.Repository
}

func (t *storeTx) GetAccount(ctx context.Context, id int64) (*account.Account, error) {
	return t.accounts.GetByID(ctx, id)
}

func (t *storeTx) LockAccount(ctx context.Context, id int64) (*account.Account, error) {
	return t.accounts.LockForUpdate(ctx, id)
}

func (t *storeTx) GetAccountByNumber(ctx context.Context, number string) (*account.Account, error) {
	return t.accounts.GetByNumber(ctx, number)
}

func (t *storeTx) ListAccounts(ctx context.Context) ([]*account.Account, error) {
	return t.accounts.List(ctx)
}

func (t *storeTx) CreateAccount(ctx context.Context, acc *account.Account) error {
	return t.accounts.Create(ctx, acc)
}

func (t *storeTx) SaveAccount(ctx context.Context, acc *account.Account) error {
	return t.accounts.Update(ctx, acc)
}

// AppendTransaction writes the ledger row and its outbox message together
func (t *storeTx) AppendTransaction(ctx context.Context, txn *ledger.Transaction) error {
	if err := t.transactions.Create(ctx, txn); err != nil {
		return err
	}

	message, err := outbox.NewMessage(txn)
	if err != nil {
		return fmt.Errorf("failed to build outbox message: %w", err)
	}
	return t.outbox.Create(ctx, message)
}

func (t *storeTx) ListTransactions(ctx context.Context, accountID int64, window ledger.TimeRange) ([]*ledger.Transaction, error) {
	return t.transactions.ListByAccount(ctx, accountID, window)
}

func (t *storeTx) ListRecentTransactions(ctx context.Context, accountID int64, limit int) ([]*ledger.Transaction, error) {
	return t.transactions.ListRecent(ctx, accountID, limit)
}

func (t *storeTx) LastTransactionBefore(ctx context.Context, accountID int64, before time.Time) (*ledger.Transaction, error) {
	return t.transactions.LastBefore(ctx, accountID, before)
}

func (t *storeTx) ReferenceExists(ctx context.Context, reference string) (bool, error) {
	return t.transactions.ExistsByReference(ctx, reference)
}

func (t *storeTx) AppendEvent(ctx context.Context, event *account.Event) error {
	return t.events.Create(ctx, event)
}
