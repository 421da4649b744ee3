package account_manager

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/personal-ledger/internal/domain/account"
	"github.com/personal-ledger/internal/domain/ledger"
	"github.com/personal-ledger/internal/domain/money"
	"github.com/personal-ledger/internal/domain/shared"
	"github.com/shopspring/decimal"
)

var secondsPerYear = decimal.NewFromInt(365 * 24 * 60 * 60)

func describe(description, fallback string) string {
	if d := strings.TrimSpace(description); d != "" {
		return d
	}
	return fallback
}

// Deposit credits an active, unfrozen account
func (m *Manager) Deposit(ctx context.Context, id int64, amount money.Money, description string, opts ...OperationOption) (*MovementResult, error) {
	result, err := m.move(ctx, id, amount, opts, func(ctx context.Context, tx ledger.Tx, acc *account.Account, now time.Time) (*ledger.Transaction, error) {
		acc.Balance = acc.Balance.Add(amount)
		return &ledger.Transaction{Type: ledger.TransactionTypeDeposit, Description: describe(description, "Deposit")}, nil
	})
	m.logResult("deposit", id, err, "amount", amount.String())
	return result, err
}

// Withdraw debits an account after the daily limit and minimum balance checks
func (m *Manager) Withdraw(ctx context.Context, id int64, amount money.Money, description string, opts ...OperationOption) (*MovementResult, error) {
	result, err := m.move(ctx, id, amount, opts, func(ctx context.Context, tx ledger.Tx, acc *account.Account, now time.Time) (*ledger.Transaction, error) {
		if err := m.checkWithdrawal(ctx, tx, acc, amount, now); err != nil {
			return nil, err
		}
		acc.Balance = acc.Balance.Sub(amount)
		return &ledger.Transaction{Type: ledger.TransactionTypeWithdrawal, Description: describe(description, "Withdrawal")}, nil
	})
	m.logResult("withdraw", id, err, "amount", amount.String())
	return result, err
}

// ChargeFee debits a service fee. Fees honour the minimum balance but not the daily limit.
func (m *Manager) ChargeFee(ctx context.Context, id int64, amount money.Money, description string, opts ...OperationOption) (*MovementResult, error) {
	result, err := m.move(ctx, id, amount, opts, func(_ context.Context, _ ledger.Tx, acc *account.Account, _ time.Time) (*ledger.Transaction, error) {
		if !acc.CanWithdraw(amount) {
			return nil, shared.ErrInsufficientFunds{AccountID: acc.ID, Requested: amount, Available: acc.Available()}
		}
		acc.Balance = acc.Balance.Sub(amount)
		return &ledger.Transaction{Type: ledger.TransactionTypeFee, Description: describe(description, "Service fee")}, nil
	})
	m.logResult("charge_fee", id, err, "amount", amount.String())
	return result, err
}

// move runs a single-account movement. apply mutates the locked account and
// returns the record to append; amount and balance are filled in here.
func (m *Manager) move(
	ctx context.Context,
	id int64,
	amount money.Money,
	opts []OperationOption,
	apply func(ctx context.Context, tx ledger.Tx, acc *account.Account, now time.Time) (*ledger.Transaction, error),
) (*MovementResult, error) {
	if err := money.RequirePositive(amount); err != nil {
		return nil, err
	}

	o := applyOptions(opts)
	var result *MovementResult
	err := m.store.WithinTx(ctx, func(ctx context.Context, tx ledger.Tx) error {
		reference, err := m.reference(ctx, tx, o)
		if err != nil {
			return err
		}
		acc, err := tx.LockAccount(ctx, id)
		if err != nil {
			return err
		}
		if err := requireOpen(acc); err != nil {
			return err
		}

		now := m.now()
		txn, err := apply(ctx, tx, acc, now)
		if err != nil {
			return err
		}
		if err := save(ctx, tx, acc, now); err != nil {
			return err
		}

		txn.AccountID = acc.ID
		txn.Amount = amount
		txn.BalanceAfter = acc.Balance
		txn.Reference = reference
		txn.Timestamp = now
		if err := tx.AppendTransaction(ctx, txn); err != nil {
			return err
		}

		result = &MovementResult{Account: acc, Transaction: txn}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Transfer moves amount between two accounts. Both balances and both records
// are committed together or not at all.
func (m *Manager) Transfer(ctx context.Context, fromID, toID int64, amount money.Money, description string, opts ...OperationOption) (*TransferResult, error) {
	result, err := m.transfer(ctx, fromID, toID, amount, description, opts)
	m.logResult("transfer", fromID, err, "to_account_id", toID, "amount", amount.String())
	return result, err
}

func (m *Manager) transfer(ctx context.Context, fromID, toID int64, amount money.Money, description string, opts []OperationOption) (*TransferResult, error) {
	if fromID == toID {
		return nil, shared.ErrSelfTransfer{AccountID: fromID}
	}
	if err := money.RequirePositive(amount); err != nil {
		return nil, err
	}

	o := applyOptions(opts)
	var result *TransferResult
	err := m.store.WithinTx(ctx, func(ctx context.Context, tx ledger.Tx) error {
		reference, err := m.reference(ctx, tx, o)
		if err != nil {
			return err
		}
		locked, err := lockAll(ctx, tx, fromID, toID)
		if err != nil {
			return err
		}
		source, destination := locked[fromID], locked[toID]
		if err := requireOpen(source); err != nil {
			return err
		}
		if err := requireOpen(destination); err != nil {
			return err
		}

		now := m.now()
		if err := m.checkWithdrawal(ctx, tx, source, amount, now); err != nil {
			return err
		}

		sourceID, destinationID := source.ID, destination.ID
		source.Balance = source.Balance.Sub(amount)
		destination.Balance = destination.Balance.Add(amount)
		for _, acc := range []*account.Account{source, destination} {
			if err := save(ctx, tx, acc, now); err != nil {
				return err
			}
		}

		debit := &ledger.Transaction{
			AccountID:        source.ID,
			Type:             ledger.TransactionTypeTransferOut,
			Amount:           amount,
			BalanceAfter:     source.Balance,
			RelatedAccountID: &destinationID,
			Reference:        reference,
			Description:      describe(description, "Transfer to account "+destination.AccountNumber),
			Timestamp:        now,
		}
		credit := &ledger.Transaction{
			AccountID:        destination.ID,
			Type:             ledger.TransactionTypeTransferIn,
			Amount:           amount,
			BalanceAfter:     destination.Balance,
			RelatedAccountID: &sourceID,
			Reference:        reference,
			Description:      describe(description, "Transfer from account "+source.AccountNumber),
			Timestamp:        now,
		}
		for _, txn := range []*ledger.Transaction{debit, credit} {
			if err := tx.AppendTransaction(ctx, txn); err != nil {
				return err
			}
		}

		result = &TransferResult{Reference: reference, Source: source, Destination: destination, Debit: debit, Credit: credit}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// BulkTransfer pays every leg from one source. All legs are validated before
// anything changes; the source is checked once against the total.
func (m *Manager) BulkTransfer(ctx context.Context, fromID int64, legs []TransferLeg, description string, opts ...OperationOption) (*BulkTransferResult, error) {
	result, err := m.bulkTransfer(ctx, fromID, legs, description, opts)
	m.logResult("bulk_transfer", fromID, err, "legs", len(legs))
	return result, err
}

func (m *Manager) bulkTransfer(ctx context.Context, fromID int64, legs []TransferLeg, description string, opts []OperationOption) (*BulkTransferResult, error) {
	if len(legs) == 0 {
		return nil, shared.ErrInvalidInput{Field: "transfers", Reason: "at least one transfer is required"}
	}
	ids := make([]int64, 0, len(legs)+1)
	ids = append(ids, fromID)
	amounts := make([]money.Money, 0, len(legs))
	for _, leg := range legs {
		if err := money.RequirePositive(leg.Amount); err != nil {
			return nil, err
		}
		if leg.ToAccountID == fromID {
			return nil, shared.ErrSelfTransfer{AccountID: fromID}
		}
		ids = append(ids, leg.ToAccountID)
		amounts = append(amounts, leg.Amount)
	}
	total := money.Sum(amounts...)

	o := applyOptions(opts)
	var result *BulkTransferResult
	err := m.store.WithinTx(ctx, func(ctx context.Context, tx ledger.Tx) error {
		reference, err := m.reference(ctx, tx, o)
		if err != nil {
			return err
		}
		locked, err := lockAll(ctx, tx, ids...)
		if err != nil {
			return err
		}

		source := locked[fromID]
		if err := requireOpen(source); err != nil {
			return err
		}
		destinations := make([]*account.Account, 0, len(legs))
		for _, leg := range legs {
			destination := locked[leg.ToAccountID]
			if err := requireOpen(destination); err != nil {
				return err
			}
			if !containsAccount(destinations, destination.ID) {
				destinations = append(destinations, destination)
			}
		}

		now := m.now()
		if err := m.checkWithdrawal(ctx, tx, source, total, now); err != nil {
			return err
		}

		source.Balance = source.Balance.Sub(total)
		debit := &ledger.Transaction{
			AccountID:    source.ID,
			Type:         ledger.TransactionTypeBulkTransferOut,
			Amount:       total,
			BalanceAfter: source.Balance,
			Reference:    reference,
			Description:  describe(description, fmt.Sprintf("Bulk transfer to %d accounts", len(legs))),
			Timestamp:    now,
		}
		credits := make([]*ledger.Transaction, 0, len(legs))
		for _, leg := range legs {
			sourceID := source.ID
			destination := locked[leg.ToAccountID]
			destination.Balance = destination.Balance.Add(leg.Amount)
			credits = append(credits, &ledger.Transaction{
				AccountID:        destination.ID,
				Type:             ledger.TransactionTypeBulkTransferIn,
				Amount:           leg.Amount,
				BalanceAfter:     destination.Balance,
				RelatedAccountID: &sourceID,
				Reference:        reference,
				Description:      describe(description, "Bulk transfer from account "+source.AccountNumber),
				Timestamp:        now,
			})
		}

		if err := save(ctx, tx, source, now); err != nil {
			return err
		}
		for _, destination := range destinations {
			if err := save(ctx, tx, destination, now); err != nil {
				return err
			}
		}
		if err := tx.AppendTransaction(ctx, debit); err != nil {
			return err
		}
		for _, credit := range credits {
			if err := tx.AppendTransaction(ctx, credit); err != nil {
				return err
			}
		}

		result = &BulkTransferResult{
			Reference:    reference,
			Total:        total,
			Source:       source,
			Destinations: destinations,
			Debit:        debit,
			Credits:      credits,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func containsAccount(accounts []*account.Account, id int64) bool {
	for _, acc := range accounts {
		if acc.ID == id {
			return true
		}
	}
	return false
}

// CalculateInterest accrues simple interest since the last accrual (or since
// creation). The accrual timestamp advances even when nothing is credited.
func (m *Manager) CalculateInterest(ctx context.Context, id int64, opts ...OperationOption) (*InterestResult, error) {
	o := applyOptions(opts)
	var result *InterestResult
	err := m.store.WithinTx(ctx, func(ctx context.Context, tx ledger.Tx) error {
		reference, err := m.reference(ctx, tx, o)
		if err != nil {
			return err
		}
		acc, err := tx.LockAccount(ctx, id)
		if err != nil {
			return err
		}
		if !acc.IsActive {
			return shared.ErrAccountInactive{AccountID: acc.ID}
		}

		now := m.now()
		since := acc.CreatedAt
		if acc.LastInterestCalculation != nil {
			since = *acc.LastInterestCalculation
		}
		interest := accrue(acc.Balance, acc.InterestRate, now.Sub(since))

		result = &InterestResult{PeriodStart: since, PeriodEnd: now, Interest: money.Zero}
		if interest.IsPositive() {
			acc.Balance = acc.Balance.Add(interest)
			result.Interest = interest
		}
		acc.LastInterestCalculation = &now
		if err := save(ctx, tx, acc, now); err != nil {
			return err
		}

		if interest.IsPositive() {
			txn := &ledger.Transaction{
				AccountID:    acc.ID,
				Type:         ledger.TransactionTypeInterest,
				Amount:       interest,
				BalanceAfter: acc.Balance,
				Reference:    reference,
				Description:  "Interest accrued at " + acc.InterestRate.String(),
				Timestamp:    now,
			}
			if err := tx.AppendTransaction(ctx, txn); err != nil {
				return err
			}
			result.Transaction = txn
		}

		result.Account = acc
		return nil
	})

	if err != nil {
		m.logResult("calculate_interest", id, err)
		return nil, err
	}
	m.logResult("calculate_interest", id, nil, "interest", result.Interest.String())
	return result, nil
}

// accrue computes balance * rate * elapsed/year on exact decimals, rounded to cents
func accrue(balance money.Money, rate decimal.Decimal, elapsed time.Duration) money.Money {
	if elapsed <= 0 || rate.IsZero() || !balance.IsPositive() {
		return money.Zero
	}
	seconds := decimal.NewFromInt(int64(elapsed / time.Second))
	fraction := seconds.DivRound(secondsPerYear, 16)
	return balance.MulRate(rate.Mul(fraction))
}
