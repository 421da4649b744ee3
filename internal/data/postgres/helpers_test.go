package postgres

import (
	"io"
	"log/slog"
	"regexp"
	"time"

	"github.com/pashagolub/pgxmock/v3"
	"github.com/personal-ledger/internal/domain/account"
	"github.com/personal-ledger/internal/domain/money"
	"github.com/shopspring/decimal"
)

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

func q(query string) string {
	return regexp.QuoteMeta(query)
}

var accountColumnNames = []string{
	"id", "account_number", "customer_name", "account_type", "balance", "minimum_balance",
	"is_active", "is_frozen", "daily_withdrawal_limit", "interest_rate", "last_interest_calculation",
	"version", "created_at", "updated_at",
}

var transactionColumnNames = []string{
	"id", "account_id", "transaction_type", "amount", "balance_after",
	"related_account_id", "reference", "description", "created_at",
}

func sampleAccount(now time.Time) *account.Account {
	limit := money.MustParse("500.00")
	return &account.Account{
		ID:                   1,
		AccountNumber:        "BANK-20240115-0A1B2C3D",
		CustomerName:         "Alice",
		Type:                 account.TypeSavings,
		Balance:              money.MustParse("1000.00"),
		MinimumBalance:       money.MustParse("100.00"),
		IsActive:             true,
		DailyWithdrawalLimit: &limit,
		InterestRate:         decimal.RequireFromString("0.05"),
		Version:              1,
		CreatedAt:            now,
		UpdatedAt:            now,
	}
}

// accountRows renders acc the way the driver would hand it back
func accountRows(acc *account.Account) *pgxmock.Rows {
	var limit any
	if acc.DailyWithdrawalLimit != nil {
		limit = acc.DailyWithdrawalLimit.String()
	}
	return pgxmock.NewRows(accountColumnNames).AddRow(
		acc.ID, acc.AccountNumber, acc.CustomerName, string(acc.Type),
		acc.Balance.String(), acc.MinimumBalance.String(),
		acc.IsActive, acc.IsFrozen, limit, acc.InterestRate.String(), acc.LastInterestCalculation,
		acc.Version, acc.CreatedAt, acc.UpdatedAt,
	)
}
