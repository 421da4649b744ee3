package cli

import (
	"errors"
	"strconv"
	"strings"

	"github.com/personal-ledger/internal/account_manager"
	"github.com/personal-ledger/internal/domain/account"
	"github.com/personal-ledger/internal/domain/money"
	"github.com/personal-ledger/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

var amountDecorations = strings.NewReplacer("$", "", "€", "", "£", "", "₽", "", ",", "", " ", "")

// parseAmount accepts "1500", "1500.5", "$1,500.00" and the like
func parseAmount(s string) (money.Money, error) {
	cleaned := amountDecorations.Replace(strings.TrimSpace(s))
	if cleaned == "" {
		return money.Zero, money.ErrInvalidAmount{Input: s, Reason: "empty amount"}
	}
	amount, err := money.Parse(cleaned)
	if err != nil {
		return money.Zero, money.ErrInvalidAmount{Input: s, Reason: invalidReason(err)}
	}
	return amount, nil
}

func invalidReason(err error) string {
	var invalid money.ErrInvalidAmount
	if errors.As(err, &invalid) {
		return invalid.Reason
	}
	return err.Error()
}

// parseID reads a store-assigned account id
func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil || id <= 0 {
		return 0, shared.ErrInvalidInput{Field: "account_id", Reason: "must be a positive integer, got " + strconv.Quote(s)}
	}
	return id, nil
}

// parseRate reads an annual interest rate given as a decimal fraction, e.g. 0.025
func parseRate(s string) (decimal.Decimal, error) {
	rate, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Zero, shared.ErrInvalidInput{Field: "interest_rate", Reason: "not a decimal number: " + strconv.Quote(s)}
	}
	if err := account.ValidateInterestRate(rate); err != nil {
		return decimal.Zero, shared.ErrInvalidInput{Field: "interest_rate", Reason: err.Error()}
	}
	return rate, nil
}

// parseLeg reads one bulk transfer destination written as id:amount
func parseLeg(s string) (account_manager.TransferLeg, error) {
	id, amount, ok := strings.Cut(s, ":")
	if !ok {
		return account_manager.TransferLeg{}, shared.ErrInvalidInput{Field: "to", Reason: "expected id:amount, got " + strconv.Quote(s)}
	}
	to, err := parseID(id)
	if err != nil {
		return account_manager.TransferLeg{}, err
	}
	value, err := parseAmount(amount)
	if err != nil {
		return account_manager.TransferLeg{}, err
	}
	return account_manager.TransferLeg{ToAccountID: to, Amount: value}, nil
}

// exactArgs is cobra.ExactArgs reported as a usage error
func exactArgs(n int, names ...string) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if len(args) != n {
			return usageErrorf("%s expects %d argument(s) <%s>, got %d", cmd.Name(), n, strings.Join(names, "> <"), len(args))
		}
		return nil
	}
}

// rangeArgs is cobra.RangeArgs reported as a usage error
func rangeArgs(lo, hi int) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if len(args) < lo || len(args) > hi {
			return usageErrorf("%s expects between %d and %d arguments, got %d", cmd.Name(), lo, hi, len(args))
		}
		return nil
	}
}
