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

// CreateAccount opens an account and records the opening deposit in the same scope
func (m *Manager) CreateAccount(ctx context.Context, params CreateAccountParams, opts ...OperationOption) (*account.Account, error) {
	name := strings.TrimSpace(params.CustomerName)
	if err := account.ValidateCustomerName(name); err != nil {
		return nil, shared.ErrInvalidInput{Field: "customer_name", Reason: err.Error()}
	}
	accountType, err := account.ParseType(string(params.Type))
	if err != nil {
		return nil, shared.ErrInvalidInput{Field: "account_type", Reason: err.Error()}
	}
	if params.InitialDeposit.IsNegative() {
		return nil, money.ErrInvalidAmount{Input: params.InitialDeposit.String(), Reason: "initial deposit must not be negative"}
	}
	if params.MinimumBalance.IsNegative() {
		return nil, money.ErrInvalidAmount{Input: params.MinimumBalance.String(), Reason: "minimum balance must not be negative"}
	}
	if params.InitialDeposit.LessThan(params.MinimumBalance) {
		return nil, shared.ErrInvalidInitialDeposit{InitialDeposit: params.InitialDeposit, MinimumBalance: params.MinimumBalance}
	}
	if err := account.ValidateInterestRate(params.InterestRate); err != nil {
		return nil, shared.ErrInvalidInput{Field: "interest_rate", Reason: err.Error()}
	}
	if params.DailyWithdrawalLimit != nil {
		if err := money.RequirePositive(*params.DailyWithdrawalLimit); err != nil {
			return nil, err
		}
	}

	o := applyOptions(opts)
	var created *account.Account
	err = m.store.WithinTx(ctx, func(ctx context.Context, tx ledger.Tx) error {
		reference, err := m.reference(ctx, tx, o)
		if err != nil {
			return err
		}

		now := m.now()
		number, err := m.uniqueNumber(ctx, tx, now)
		if err != nil {
			return err
		}

		acc := &account.Account{
			AccountNumber:  number,
			CustomerName:   name,
			Type:           accountType,
			Balance:        params.InitialDeposit,
			MinimumBalance: params.MinimumBalance,
			IsActive:       true,
			InterestRate:   params.InterestRate,
			Version:        1,
			CreatedAt:      now,
			UpdatedAt:      now,
		}
		if params.DailyWithdrawalLimit != nil {
			limit := *params.DailyWithdrawalLimit
			acc.DailyWithdrawalLimit = &limit
		}
		if err := tx.CreateAccount(ctx, acc); err != nil {
			return err
		}

		if params.InitialDeposit.IsPositive() {
			if err := tx.AppendTransaction(ctx, &ledger.Transaction{
				AccountID:    acc.ID,
				Type:         ledger.TransactionTypeDeposit,
				Amount:       params.InitialDeposit,
				BalanceAfter: acc.Balance,
				Reference:    reference,
				Description:  "Initial deposit",
				Timestamp:    now,
			}); err != nil {
				return err
			}
		}

		created = acc
		return nil
	})

	if err != nil {
		m.logResult("create_account", 0, err, "customer_name", name)
		return nil, err
	}
	m.logResult("create_account", created.ID, nil, "account_number", created.AccountNumber)
	return created, nil
}

func (m *Manager) uniqueNumber(ctx context.Context, tx ledger.Tx, now time.Time) (string, error) {
	for attempt := 0; attempt < maxNumberAttempts; attempt++ {
		number := m.newNumber(now)
		existing, err := tx.GetAccountByNumber(ctx, number)
		if err != nil {
			return "", err
		}
		if existing == nil {
			return number, nil
		}
		m.logger.Debug("Account number collision, regenerating", "account_number", number, "attempt", attempt+1)
	}
	return "", shared.ErrStorageConflict{
		Op:  "generate account number",
		Err: fmt.Errorf("no free account number after %d attempts", maxNumberAttempts),
	}
}

// FreezeAccount blocks movements on the account. Freezing a frozen account is a no-op.
func (m *Manager) FreezeAccount(ctx context.Context, id int64, reason string) (*account.Account, error) {
	return m.setFrozen(ctx, id, true, reason)
}

// UnfreezeAccount lifts a freeze. Unfreezing an unfrozen account is a no-op.
func (m *Manager) UnfreezeAccount(ctx context.Context, id int64, reason string) (*account.Account, error) {
	return m.setFrozen(ctx, id, false, reason)
}

func (m *Manager) setFrozen(ctx context.Context, id int64, frozen bool, reason string) (*account.Account, error) {
	op, eventType := "unfreeze_account", account.EventUnfrozen
	if frozen {
		op, eventType = "freeze_account", account.EventFrozen
	}

	acc, err := m.updateAccount(ctx, id, func(acc *account.Account) (*account.Event, error) {
		if acc.IsFrozen == frozen {
			return nil, nil
		}
		acc.IsFrozen = frozen
		return &account.Event{Type: eventType, Reason: strings.TrimSpace(reason)}, nil
	})
	m.logResult(op, id, err)
	return acc, err
}

// SetDailyWithdrawalLimit caps the daily debits of the account. A nil limit removes the cap.
func (m *Manager) SetDailyWithdrawalLimit(ctx context.Context, id int64, limit *money.Money) (*account.Account, error) {
	if limit != nil {
		if err := money.RequirePositive(*limit); err != nil {
			return nil, err
		}
	}

	acc, err := m.updateAccount(ctx, id, func(acc *account.Account) (*account.Event, error) {
		if limit == nil {
			acc.DailyWithdrawalLimit = nil
			return &account.Event{Type: account.EventDailyLimitChanged, Reason: "limit removed"}, nil
		}
		value := *limit
		acc.DailyWithdrawalLimit = &value
		return &account.Event{Type: account.EventDailyLimitChanged, Reason: "limit set to " + value.String()}, nil
	})
	m.logResult("set_daily_withdrawal_limit", id, err)
	return acc, err
}

// SetInterestRate changes the annual rate used by CalculateInterest
func (m *Manager) SetInterestRate(ctx context.Context, id int64, rate decimal.Decimal) (*account.Account, error) {
	if err := account.ValidateInterestRate(rate); err != nil {
		return nil, shared.ErrInvalidInput{Field: "interest_rate", Reason: err.Error()}
	}

	acc, err := m.updateAccount(ctx, id, func(acc *account.Account) (*account.Event, error) {
		acc.InterestRate = rate
		return &account.Event{Type: account.EventInterestRateChanged, Reason: "rate set to " + rate.String()}, nil
	})
	m.logResult("set_interest_rate", id, err)
	return acc, err
}

// DeactivateAccount closes an account holding a zero balance. Inactive is terminal.
func (m *Manager) DeactivateAccount(ctx context.Context, id int64) (*account.Account, error) {
	acc, err := m.updateAccount(ctx, id, func(acc *account.Account) (*account.Event, error) {
		if !acc.Balance.IsZero() {
			return nil, shared.ErrNonZeroBalance{AccountID: acc.ID, Balance: acc.Balance}
		}
		acc.IsActive = false
		return &account.Event{Type: account.EventDeactivated}, nil
	})
	m.logResult("deactivate_account", id, err)
	return acc, err
}

// updateAccount runs an administrative change on an active account. When change
// returns a nil event the account is left untouched.
func (m *Manager) updateAccount(ctx context.Context, id int64, change func(acc *account.Account) (*account.Event, error)) (*account.Account, error) {
	var updated *account.Account
	err := m.store.WithinTx(ctx, func(ctx context.Context, tx ledger.Tx) error {
		acc, err := tx.LockAccount(ctx, id)
		if err != nil {
			return err
		}
		if !acc.IsActive {
			return shared.ErrAccountInactive{AccountID: acc.ID}
		}

		event, err := change(acc)
		if err != nil {
			return err
		}
		if event == nil {
			updated = acc
			return nil
		}

		now := m.now()
		if err := save(ctx, tx, acc, now); err != nil {
			return err
		}
		event.AccountID = acc.ID
		event.CreatedAt = now
		if err := tx.AppendEvent(ctx, event); err != nil {
			return err
		}

		updated = acc
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// GetAccount returns the current state of an account
func (m *Manager) GetAccount(ctx context.Context, id int64) (*account.Account, error) {
	var acc *account.Account
	err := m.store.WithinTx(ctx, func(ctx context.Context, tx ledger.Tx) error {
		var err error
		acc, err = tx.GetAccount(ctx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return acc, nil
}

// GetAccountByNumber resolves an account by its human-readable number
func (m *Manager) GetAccountByNumber(ctx context.Context, number string) (*account.Account, error) {
	number = strings.TrimSpace(number)
	if number == "" {
		return nil, shared.ErrInvalidInput{Field: "account_number", Reason: "must not be empty"}
	}

	var acc *account.Account
	err := m.store.WithinTx(ctx, func(ctx context.Context, tx ledger.Tx) error {
		var err error
		acc, err = tx.GetAccountByNumber(ctx, number)
		if err != nil {
			return err
		}
		if acc == nil {
			return shared.ErrAccountNotFound{AccountNumber: number}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return acc, nil
}

// ListAccounts returns every account ordered by id
func (m *Manager) ListAccounts(ctx context.Context) ([]*account.Account, error) {
	var accounts []*account.Account
	err := m.store.WithinTx(ctx, func(ctx context.Context, tx ledger.Tx) error {
		var err error
		accounts, err = tx.ListAccounts(ctx)
		return err
	})
	if err != nil {
		return nil, err
	}
	return accounts, nil
}

// GetBalance returns the current balance of an account
func (m *Manager) GetBalance(ctx context.Context, id int64) (money.Money, error) {
	acc, err := m.GetAccount(ctx, id)
	if err != nil {
		return money.Zero, err
	}
	return acc.Balance, nil
}
