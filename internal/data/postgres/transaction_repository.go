package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/personal-ledger/internal/domain/ledger"
	"github.com/personal-ledger/internal/platform/persistence"
)

const transactionColumns = `id, account_id, transaction_type, amount, balance_after,
		related_account_id, reference, description, created_at`

const (
	insertTransactionQuery = `
		INSERT INTO transactions (account_id, transaction_type, amount, balance_after,
			related_account_id, reference, description, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id`

	listTransactionsQuery = `SELECT ` + transactionColumns + `
		FROM transactions
		WHERE account_id = $1
			AND ($2::timestamptz IS NULL OR created_at >= $2)
			AND ($3::timestamptz IS NULL OR created_at < $3)
		ORDER BY created_at ASC, id ASC`

	listRecentTransactionsQuery = `SELECT ` + transactionColumns + `
		FROM transactions
		WHERE account_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2`

	lastTransactionBeforeQuery = `SELECT ` + transactionColumns + `
		FROM transactions
		WHERE account_id = $1 AND created_at < $2
		ORDER BY created_at DESC, id DESC
		LIMIT 1`

	referenceExistsQuery = `SELECT EXISTS (SELECT 1 FROM transactions WHERE reference = $1)`
)

// TransactionRepository implements the append-only ledger.Repository for PostgreSQL
type TransactionRepository struct {
	querier persistence.Querier
	logger  *slog.Logger
}

// NewTransactionRepository creates a new PostgreSQL transaction repository
func NewTransactionRepository(logger *slog.Logger, db *persistence.PostgresDB) ledger.Repository {
	return &TransactionRepository{
		querier: db.Pool(),
		logger:  logger,
	}
}

// WithTx returns a repository bound to tx
func (r *TransactionRepository) WithTx(tx pgx.Tx) ledger.Repository {
	return &TransactionRepository{
		querier: tx,
		logger:  r.logger,
	}
}

// timeArg maps an unbounded range edge to NULL
func timeArg(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t
}

// Create appends a transaction record and assigns its ID
func (r *TransactionRepository) Create(ctx context.Context, txn *ledger.Transaction) error {
	err := r.querier.QueryRow(ctx, insertTransactionQuery,
		txn.AccountID,
		string(txn.Type),
		txn.Amount.String(),
		txn.BalanceAfter.String(),
		txn.RelatedAccountID,
		txn.Reference,
		txn.Description,
		txn.Timestamp,
	).Scan(&txn.ID)
	if err != nil {
		r.logger.Error("Failed to append transaction",
			"account_id", txn.AccountID,
			"transaction_type", string(txn.Type),
			"error", err,
		)
		return fmt.Errorf("failed to append transaction: %w", err)
	}

	return nil
}

func scanTransaction(row pgx.Row) (*ledger.Transaction, error) {
	var (
		txn     ledger.Transaction
		txnType string
	)
	err := row.Scan(
		&txn.ID,
		&txn.AccountID,
		&txnType,
		&txn.Amount,
		&txn.BalanceAfter,
		&txn.RelatedAccountID,
		&txn.Reference,
		&txn.Description,
		&txn.Timestamp,
	)
	if err != nil {
		return nil, err
	}
	txn.Type = ledger.TransactionType(txnType)
	return &txn, nil
}

func (r *TransactionRepository) collect(rows pgx.Rows) ([]*ledger.Transaction, error) {
	defer rows.Close()

	txns := []*ledger.Transaction{}
	for rows.Next() {
		txn, err := scanTransaction(rows)
		if err != nil {
			r.logger.Error("Failed to scan transaction", "error", err)
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		txns = append(txns, txn)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error("Error iterating over transactions", "error", err)
		return nil, fmt.Errorf("error iterating over transactions: %w", err)
	}

	return txns, nil
}

// ListByAccount returns the account's records inside window in commit order
func (r *TransactionRepository) ListByAccount(ctx context.Context, accountID int64, window ledger.TimeRange) ([]*ledger.Transaction, error) {
	rows, err := r.querier.Query(ctx, listTransactionsQuery, accountID, timeArg(window.From), timeArg(window.To))
	if err != nil {
		r.logger.Error("Failed to list transactions", "account_id", accountID, "error", err)
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}

	return r.collect(rows)
}

// ListRecent returns up to limit records, newest first
func (r *TransactionRepository) ListRecent(ctx context.Context, accountID int64, limit int) ([]*ledger.Transaction, error) {
	rows, err := r.querier.Query(ctx, listRecentTransactionsQuery, accountID, limit)
	if err != nil {
		r.logger.Error("Failed to list recent transactions", "account_id", accountID, "error", err)
		return nil, fmt.Errorf("failed to list recent transactions: %w", err)
	}

	return r.collect(rows)
}

// LastBefore returns the newest record strictly before the given instant, nil when none
func (r *TransactionRepository) LastBefore(ctx context.Context, accountID int64, before time.Time) (*ledger.Transaction, error) {
	txn, err := scanTransaction(r.querier.QueryRow(ctx, lastTransactionBeforeQuery, accountID, before))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		r.logger.Error("Failed to get last transaction", "account_id", accountID, "error", err)
		return nil, fmt.Errorf("failed to get last transaction: %w", err)
	}

	return txn, nil
}

// ExistsByReference reports whether any record carries the reference
func (r *TransactionRepository) ExistsByReference(ctx context.Context, reference string) (bool, error) {
	var exists bool
	if err := r.querier.QueryRow(ctx, referenceExistsQuery, reference).Scan(&exists); err != nil {
		r.logger.Error("Failed to check transaction reference", "reference", reference, "error", err)
		return false, fmt.Errorf("failed to check transaction reference: %w", err)
	}

	return exists, nil
}
