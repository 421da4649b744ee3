package ledger

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
)

// Repository persists the append-only transaction history. There is no update or delete.
type Repository interface {
	Create(ctx context.Context, txn *Transaction) error
	ListByAccount(ctx context.Context, accountID int64, window TimeRange) ([]*Transaction, error)
	ListRecent(ctx context.Context, accountID int64, limit int) ([]*Transaction, error)
	LastBefore(ctx context.Context, accountID int64, before time.Time) (*Transaction, error)
	ExistsByReference(ctx context.Context, reference string) (bool, error)
	WithTx(tx pgx.Tx) Repository
}

// ArchiveRepository is the read model of committed transactions fed by the outbox
type ArchiveRepository interface {
	// Upsert is idempotent on the transaction ID
	Upsert(ctx context.Context, txn *Transaction) error
	GetByTransactionID(ctx context.Context, transactionID int64) (*Transaction, error)
	GetByAccountID(ctx context.Context, accountID int64, limit, offset int) ([]*Transaction, error)
	CountByAccountID(ctx context.Context, accountID int64) (int64, error)
}

// ErrArchivedTransactionNotFound indicates a transaction missing from the archive
type ErrArchivedTransactionNotFound struct {
	TransactionID int64
}

func (e ErrArchivedTransactionNotFound) Error() string {
	return "archived transaction not found"
}

// Is implements the errors.Is interface for ErrArchivedTransactionNotFound
func (e ErrArchivedTransactionNotFound) Is(target error) bool {
	t, ok := target.(ErrArchivedTransactionNotFound)
	if !ok {
		return false
	}
	// If the target TransactionID is empty, consider it a match for any ErrArchivedTransactionNotFound
	if t.TransactionID == 0 {
		return true
	}
	return e.TransactionID == t.TransactionID
}
