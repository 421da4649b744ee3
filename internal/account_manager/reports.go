package account_manager

import (
	"context"
	"time"

	"github.com/personal-ledger/internal/domain/account"
	"github.com/personal-ledger/internal/domain/ledger"
	"github.com/personal-ledger/internal/domain/money"
	"github.com/personal-ledger/internal/domain/shared"
)

const summaryRecentCount = 5

// GetAccountHistory returns up to limit records, newest first
func (m *Manager) GetAccountHistory(ctx context.Context, id int64, limit int) ([]*ledger.Transaction, error) {
	if limit <= 0 {
		return nil, shared.ErrInvalidInput{Field: "limit", Reason: "must be a positive integer"}
	}

	var txns []*ledger.Transaction
	err := m.store.WithinTx(ctx, func(ctx context.Context, tx ledger.Tx) error {
		if _, err := tx.GetAccount(ctx, id); err != nil {
			return err
		}
		var err error
		txns, err = tx.ListRecentTransactions(ctx, id, limit)
		return err
	})
	if err != nil {
		return nil, err
	}
	return txns, nil
}

// GetAccountSummary totals the lifetime credits and debits of an account
func (m *Manager) GetAccountSummary(ctx context.Context, id int64) (*AccountSummary, error) {
	var summary *AccountSummary
	err := m.store.WithinTx(ctx, func(ctx context.Context, tx ledger.Tx) error {
		acc, err := tx.GetAccount(ctx, id)
		if err != nil {
			return err
		}
		history, err := tx.ListTransactions(ctx, id, ledger.TimeRange{})
		if err != nil {
			return err
		}

		summary = &AccountSummary{
			Account:            acc,
			AvailableBalance:   acc.Available(),
			TransactionCount:   len(history),
			RecentTransactions: []*ledger.Transaction{},
		}
		for _, txn := range history {
			switch txn.Type {
			case ledger.TransactionTypeDeposit, ledger.TransactionTypeTransferIn, ledger.TransactionTypeBulkTransferIn:
				summary.TotalDeposits = summary.TotalDeposits.Add(txn.Amount)
			case ledger.TransactionTypeWithdrawal, ledger.TransactionTypeTransferOut, ledger.TransactionTypeBulkTransferOut:
				summary.TotalWithdrawals = summary.TotalWithdrawals.Add(txn.Amount)
			}
		}
		for i := len(history) - 1; i >= 0 && len(summary.RecentTransactions) < summaryRecentCount; i-- {
			summary.RecentTransactions = append(summary.RecentTransactions, history[i])
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return summary, nil
}

// GetMonthlyStatement returns the calendar month of an account in the manager's location
func (m *Manager) GetMonthlyStatement(ctx context.Context, id int64, year int, month time.Month) (*ledger.Statement, error) {
	if year < 1 || year > 9999 {
		return nil, shared.ErrInvalidInput{Field: "year", Reason: "must be between 1 and 9999"}
	}
	if month < time.January || month > time.December {
		return nil, shared.ErrInvalidInput{Field: "month", Reason: "must be between 1 and 12"}
	}

	start := time.Date(year, month, 1, 0, 0, 0, 0, m.location)
	end := start.AddDate(0, 1, 0)

	var statement *ledger.Statement
	err := m.store.WithinTx(ctx, func(ctx context.Context, tx ledger.Tx) error {
		acc, err := tx.GetAccount(ctx, id)
		if err != nil {
			return err
		}
		txns, err := tx.ListTransactions(ctx, id, ledger.TimeRange{From: start, To: end})
		if err != nil {
			return err
		}
		previous, err := tx.LastTransactionBefore(ctx, id, start)
		if err != nil {
			return err
		}

		statement = &ledger.Statement{
			AccountID:      acc.ID,
			AccountNumber:  acc.AccountNumber,
			Year:           year,
			Month:          month,
			PeriodStart:    start,
			PeriodEnd:      end,
			OpeningBalance: money.Zero,
			Transactions:   txns,
		}
		if previous != nil {
			statement.OpeningBalance = previous.BalanceAfter
		}
		statement.Summarize()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return statement, nil
}

// GetAccountStatistics aggregates the trailing window of days ending now
func (m *Manager) GetAccountStatistics(ctx context.Context, id int64, days int) (*ledger.Statistics, error) {
	if days <= 0 {
		return nil, shared.ErrInvalidInput{Field: "days", Reason: "must be a positive integer"}
	}

	end := m.now()
	start := end.AddDate(0, 0, -days)

	var stats *ledger.Statistics
	err := m.store.WithinTx(ctx, func(ctx context.Context, tx ledger.Tx) error {
		if _, err := tx.GetAccount(ctx, id); err != nil {
			return err
		}
		// the window includes a record committed at exactly now
		txns, err := tx.ListTransactions(ctx, id, ledger.TimeRange{From: start, To: end.Add(time.Nanosecond)})
		if err != nil {
			return err
		}

		stats = &ledger.Statistics{AccountID: id, Days: days, PeriodStart: start, PeriodEnd: end}
		stats.Aggregate(txns, m.location)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return stats, nil
}

// ReconcileAccount replays the full history of an account and compares every
// recorded balance with the replayed one
func (m *Manager) ReconcileAccount(ctx context.Context, id int64) (*ledger.Reconciliation, error) {
	var (
		acc     *account.Account
		history []*ledger.Transaction
	)
	err := m.store.WithinTx(ctx, func(ctx context.Context, tx ledger.Tx) error {
		var err error
		if acc, err = tx.GetAccount(ctx, id); err != nil {
			return err
		}
		history, err = tx.ListTransactions(ctx, id, ledger.TimeRange{})
		return err
	})
	if err != nil {
		return nil, err
	}

	result := ledger.Replay(acc.ID, acc.Balance, history)
	if !result.Consistent {
		m.logger.Error("Ledger history does not reconcile",
			"account_id", id,
			"mismatches", len(result.Mismatches),
			"replayed_balance", result.ReplayedBalance.String(),
			"current_balance", acc.Balance.String(),
		)
	}
	return result, nil
}
