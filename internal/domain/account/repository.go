package account

import (
	"context"

	"github.com/jackc/pgx/v5"
)

// Repository defines account persistence operations
type Repository interface {
	// Create inserts the account and assigns its ID
	Create(ctx context.Context, account *Account) error
	GetByID(ctx context.Context, id int64) (*Account, error)
	// GetByNumber returns nil, nil when no account carries the number
	GetByNumber(ctx context.Context, number string) (*Account, error)
	List(ctx context.Context) ([]*Account, error)

	// Update uses optimistic locking on Version
	Update(ctx context.Context, account *Account) error

	// LockForUpdate acquires a pessimistic lock for the surrounding transaction
	LockForUpdate(ctx context.Context, id int64) (*Account, error)
	WithTx(tx pgx.Tx) Repository
}

// EventRepository persists administrative audit events
type EventRepository interface {
	Create(ctx context.Context, event *Event) error
	ListByAccount(ctx context.Context, accountID int64) ([]*Event, error)
	WithTx(tx pgx.Tx) EventRepository
}
