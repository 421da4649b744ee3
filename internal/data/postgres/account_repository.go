// Package postgres provides PostgreSQL implementations of the ledger repositories
// and the transactional ledger store built on them.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/personal-ledger/internal/domain/account"
	"github.com/personal-ledger/internal/domain/money"
	"github.com/personal-ledger/internal/domain/shared"
	"github.com/personal-ledger/internal/platform/persistence"
)

const accountColumns = `id, account_number, customer_name, account_type, balance, minimum_balance,
		is_active, is_frozen, daily_withdrawal_limit, interest_rate, last_interest_calculation,
		version, created_at, updated_at`

const (
	insertAccountQuery = `
		INSERT INTO accounts (account_number, customer_name, account_type, balance, minimum_balance,
			is_active, is_frozen, daily_withdrawal_limit, interest_rate, last_interest_calculation,
			version, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING id`

	selectAccountByIDQuery = `SELECT ` + accountColumns + `
		FROM accounts
		WHERE id = $1`

	selectAccountByNumberQuery = `SELECT ` + accountColumns + `
		FROM accounts
		WHERE account_number = $1`

	listAccountsQuery = `SELECT ` + accountColumns + `
		FROM accounts
		ORDER BY id ASC`

	lockAccountQuery = `SELECT ` + accountColumns + `
		FROM accounts
		WHERE id = $1
		FOR UPDATE`

	updateAccountQuery = `
		UPDATE accounts
		SET customer_name = $1, account_type = $2, balance = $3, minimum_balance = $4,
			is_active = $5, is_frozen = $6, daily_withdrawal_limit = $7, interest_rate = $8,
			last_interest_calculation = $9, version = $10, updated_at = $11
		WHERE id = $12 AND version = $13`
)

// AccountRepository implements the account.Repository interface for PostgreSQL
type AccountRepository struct {
	querier persistence.Querier // Can be the pool or a pgx.Tx
	logger  *slog.Logger
}

// NewAccountRepository creates a new PostgreSQL account repository
func NewAccountRepository(logger *slog.Logger, db *persistence.PostgresDB) account.Repository {
	return &AccountRepository{
		querier: db.Pool(),
		logger:  logger,
	}
}

// WithTx returns a repository bound to tx
func (r *AccountRepository) WithTx(tx pgx.Tx) account.Repository {
	return &AccountRepository{
		querier: tx,
		logger:  r.logger,
	}
}

// limitArg renders the optional daily limit as a query argument
func limitArg(limit *money.Money) any {
	if limit == nil {
		return nil
	}
	return limit.String()
}

// Create stores a new account and assigns its sequence ID
func (r *AccountRepository) Create(ctx context.Context, acc *account.Account) error {
	err := r.querier.QueryRow(ctx, insertAccountQuery,
		acc.AccountNumber,
		acc.CustomerName,
		string(acc.Type),
		acc.Balance.String(),
		acc.MinimumBalance.String(),
		acc.IsActive,
		acc.IsFrozen,
		limitArg(acc.DailyWithdrawalLimit),
		acc.InterestRate.String(),
		acc.LastInterestCalculation,
		acc.Version,
		acc.CreatedAt,
		acc.UpdatedAt,
	).Scan(&acc.ID)
	if err != nil {
		r.logger.Error("Failed to create account", "account_number", acc.AccountNumber, "error", err)
		return fmt.Errorf("failed to create account: %w", err)
	}

	return nil
}

func scanAccount(row pgx.Row) (*account.Account, error) {
	var (
		acc         account.Account
		accountType string
		limit       money.NullMoney
	)
	err := row.Scan(
		&acc.ID,
		&acc.AccountNumber,
		&acc.CustomerName,
		&accountType,
		&acc.Balance,
		&acc.MinimumBalance,
		&acc.IsActive,
		&acc.IsFrozen,
		&limit,
		&acc.InterestRate,
		&acc.LastInterestCalculation,
		&acc.Version,
		&acc.CreatedAt,
		&acc.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	acc.Type = account.Type(accountType)
	acc.DailyWithdrawalLimit = limit.Ptr()
	return &acc, nil
}

// GetByID retrieves an account by its ID
func (r *AccountRepository) GetByID(ctx context.Context, id int64) (*account.Account, error) {
	acc, err := scanAccount(r.querier.QueryRow(ctx, selectAccountByIDQuery, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrAccountNotFound{AccountID: id}
		}
		r.logger.Error("Failed to get account", "account_id", id, "error", err)
		return nil, fmt.Errorf("failed to get account: %w", err)
	}

	return acc, nil
}

// GetByNumber retrieves an account by its account number, nil when absent
func (r *AccountRepository) GetByNumber(ctx context.Context, number string) (*account.Account, error) {
	acc, err := scanAccount(r.querier.QueryRow(ctx, selectAccountByNumberQuery, number))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		r.logger.Error("Failed to get account by number", "account_number", number, "error", err)
		return nil, fmt.Errorf("failed to get account by number: %w", err)
	}

	return acc, nil
}

// List returns every account ordered by ID
func (r *AccountRepository) List(ctx context.Context) ([]*account.Account, error) {
	rows, err := r.querier.Query(ctx, listAccountsQuery)
	if err != nil {
		r.logger.Error("Failed to list accounts", "error", err)
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	defer rows.Close()

	accounts := []*account.Account{}
	for rows.Next() {
		acc, err := scanAccount(rows)
		if err != nil {
			r.logger.Error("Failed to scan account", "error", err)
			return nil, fmt.Errorf("failed to scan account: %w", err)
		}
		accounts = append(accounts, acc)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error("Error iterating over accounts", "error", err)
		return nil, fmt.Errorf("error iterating over accounts: %w", err)
	}

	return accounts, nil
}

// Update writes the mutable columns. The caller has already bumped Version,
// so the row must still carry Version-1.
func (r *AccountRepository) Update(ctx context.Context, acc *account.Account) error {
	result, err := r.querier.Exec(ctx, updateAccountQuery,
		acc.CustomerName,
		string(acc.Type),
		acc.Balance.String(),
		acc.MinimumBalance.String(),
		acc.IsActive,
		acc.IsFrozen,
		limitArg(acc.DailyWithdrawalLimit),
		acc.InterestRate.String(),
		acc.LastInterestCalculation,
		acc.Version,
		acc.UpdatedAt,
		acc.ID,
		acc.Version-1,
	)
	if err != nil {
		r.logger.Error("Failed to update account", "account_id", acc.ID, "error", err)
		return fmt.Errorf("failed to update account: %w", err)
	}

	if result.RowsAffected() == 0 {
		return shared.ErrStorageConflict{Op: "update account", Err: fmt.Errorf("account %d changed since it was read", acc.ID)}
	}

	return nil
}

// LockForUpdate obtains a row lock on the account for the surrounding transaction
func (r *AccountRepository) LockForUpdate(ctx context.Context, id int64) (*account.Account, error) {
	acc, err := scanAccount(r.querier.QueryRow(ctx, lockAccountQuery, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrAccountNotFound{AccountID: id}
		}
		r.logger.Error("Failed to lock account for update", "account_id", id, "error", err)
		return nil, fmt.Errorf("failed to lock account for update: %w", err)
	}

	return acc, nil
}
