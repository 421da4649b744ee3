package ledger

import (
	"context"
	"time"

	"github.com/personal-ledger/internal/domain/account"
)

// Store is the durable home of accounts and their transaction history.
// All reads and writes happen inside a WithinTx scope: either every write of
// fn is committed or none is.
type Store interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
}

// Tx is the set of operations available inside one atomic scope
type Tx interface {
	// GetAccount returns shared.ErrAccountNotFound for unknown ids
	GetAccount(ctx context.Context, id int64) (*account.Account, error)
	// LockAccount reads the account for update; callers lock in ascending id order
	LockAccount(ctx context.Context, id int64) (*account.Account, error)
	// GetAccountByNumber returns nil, nil when the number is free
	GetAccountByNumber(ctx context.Context, number string) (*account.Account, error)
	ListAccounts(ctx context.Context) ([]*account.Account, error)

	// CreateAccount assigns the account ID
	CreateAccount(ctx context.Context, acc *account.Account) error
	SaveAccount(ctx context.Context, acc *account.Account) error

	// AppendTransaction assigns the transaction ID
	AppendTransaction(ctx context.Context, txn *Transaction) error
	// ListTransactions returns records in commit order (timestamp, then id)
	ListTransactions(ctx context.Context, accountID int64, window TimeRange) ([]*Transaction, error)
	// ListRecentTransactions returns the newest records first
	ListRecentTransactions(ctx context.Context, accountID int64, limit int) ([]*Transaction, error)
	// LastTransactionBefore returns nil, nil when the account has no earlier record
	LastTransactionBefore(ctx context.Context, accountID int64, before time.Time) (*Transaction, error)
	ReferenceExists(ctx context.Context, reference string) (bool, error)

	AppendEvent(ctx context.Context, event *account.Event) error
}
