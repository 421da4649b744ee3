package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/personal-ledger/internal/domain/ledger"
	"github.com/personal-ledger/internal/domain/money"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransactionRepository_Create(t *testing.T) {
	ctx := context.Background()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := &TransactionRepository{querier: mock, logger: newTestLogger()}
	related := int64(2)
	txn := &ledger.Transaction{
		AccountID:        1,
		Type:             ledger.TransactionTypeTransferOut,
		Amount:           money.MustParse("8000"),
		BalanceAfter:     money.MustParse("17000"),
		RelatedAccountID: &related,
		Reference:        "ref-1",
		Description:      "Transfer to account BANK-2",
		Timestamp:        time.Now(),
	}
	args := []any{int64(1), "TRANSFER_OUT", "8000.00", "17000.00", &related, "ref-1", txn.Description, txn.Timestamp}

	t.Run("success", func(t *testing.T) {
		mock.ExpectQuery(q(insertTransactionQuery)).WithArgs(args...).
			WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(int64(10)))

		require.NoError(t, repo.Create(ctx, txn))
		assert.Equal(t, int64(10), txn.ID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("db error", func(t *testing.T) {
		mock.ExpectQuery(q(insertTransactionQuery)).WithArgs(args...).WillReturnError(errors.New("append-only"))

		err := repo.Create(ctx, txn)
		assert.ErrorContains(t, err, "failed to append transaction")
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestTransactionRepository_ListByAccount(t *testing.T) {
	ctx := context.Background()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := &TransactionRepository{querier: mock, logger: newTestLogger()}
	from := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 1, 0)
	ts := from.Add(time.Hour)

	t.Run("bounded window", func(t *testing.T) {
		rows := pgxmock.NewRows(transactionColumnNames).
			AddRow(int64(1), int64(1), "DEPOSIT", "100.00", "100.00", nil, "", "Initial deposit", ts).
			AddRow(int64(2), int64(1), "FEE", "2.50", "97.50", nil, "", "Monthly fee", ts.Add(time.Minute))
		mock.ExpectQuery(q(listTransactionsQuery)).WithArgs(int64(1), from, to).WillReturnRows(rows)

		txns, err := repo.ListByAccount(ctx, 1, ledger.TimeRange{From: from, To: to})
		require.NoError(t, err)
		require.Len(t, txns, 2)
		assert.Equal(t, ledger.TransactionTypeDeposit, txns[0].Type)
		assert.Equal(t, "97.50", txns[1].BalanceAfter.String())
		assert.Nil(t, txns[0].RelatedAccountID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("unbounded window", func(t *testing.T) {
		mock.ExpectQuery(q(listTransactionsQuery)).WithArgs(int64(1), nil, nil).
			WillReturnRows(pgxmock.NewRows(transactionColumnNames))

		txns, err := repo.ListByAccount(ctx, 1, ledger.TimeRange{})
		require.NoError(t, err)
		assert.Empty(t, txns)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("db error", func(t *testing.T) {
		mock.ExpectQuery(q(listTransactionsQuery)).WithArgs(int64(1), nil, nil).WillReturnError(errors.New("db error"))

		_, err := repo.ListByAccount(ctx, 1, ledger.TimeRange{})
		assert.ErrorContains(t, err, "failed to list transactions")
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestTransactionRepository_ListRecent(t *testing.T) {
	ctx := context.Background()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := &TransactionRepository{querier: mock, logger: newTestLogger()}
	ts := time.Now()
	related := int64(3)
	rows := pgxmock.NewRows(transactionColumnNames).
		AddRow(int64(5), int64(1), "TRANSFER_IN", "10.00", "60.00", &related, "ref", "Transfer from account X", ts)
	mock.ExpectQuery(q(listRecentTransactionsQuery)).WithArgs(int64(1), 5).WillReturnRows(rows)

	txns, err := repo.ListRecent(ctx, 1, 5)
	require.NoError(t, err)
	require.Len(t, txns, 1)
	require.NotNil(t, txns[0].RelatedAccountID)
	assert.Equal(t, int64(3), *txns[0].RelatedAccountID)
	assert.Equal(t, "ref", txns[0].Reference)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTransactionRepository_LastBefore(t *testing.T) {
	ctx := context.Background()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := &TransactionRepository{querier: mock, logger: newTestLogger()}
	before := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	t.Run("found", func(t *testing.T) {
		rows := pgxmock.NewRows(transactionColumnNames).
			AddRow(int64(4), int64(1), "DEPOSIT", "10.00", "250.00", nil, "", "", before.Add(-time.Hour))
		mock.ExpectQuery(q(lastTransactionBeforeQuery)).WithArgs(int64(1), before).WillReturnRows(rows)

		txn, err := repo.LastBefore(ctx, 1, before)
		require.NoError(t, err)
		require.NotNil(t, txn)
		assert.Equal(t, "250.00", txn.BalanceAfter.String())
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("none", func(t *testing.T) {
		mock.ExpectQuery(q(lastTransactionBeforeQuery)).WithArgs(int64(1), before).WillReturnError(pgx.ErrNoRows)

		txn, err := repo.LastBefore(ctx, 1, before)
		assert.NoError(t, err)
		assert.Nil(t, txn)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestTransactionRepository_ExistsByReference(t *testing.T) {
	ctx := context.Background()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := &TransactionRepository{querier: mock, logger: newTestLogger()}

	mock.ExpectQuery(q(referenceExistsQuery)).WithArgs("cmd-1").
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(true))
	exists, err := repo.ExistsByReference(ctx, "cmd-1")
	require.NoError(t, err)
	assert.True(t, exists)

	mock.ExpectQuery(q(referenceExistsQuery)).WithArgs("cmd-2").WillReturnError(errors.New("db error"))
	_, err = repo.ExistsByReference(ctx, "cmd-2")
	assert.ErrorContains(t, err, "failed to check transaction reference")
	assert.NoError(t, mock.ExpectationsWereMet())
}
