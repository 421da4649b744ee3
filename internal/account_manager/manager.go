// Package account_manager is the ledger engine. Every operation resolves its
// accounts, validates the request and commits its effects inside one store scope.
package account_manager

import (
	"context"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/personal-ledger/internal/domain/account"
	"github.com/personal-ledger/internal/domain/ledger"
	"github.com/personal-ledger/internal/domain/money"
	"github.com/personal-ledger/internal/domain/shared"
)

const (
	defaultNumberPrefix = "BANK"
	maxNumberAttempts   = 5
)

// Manager runs account operations against a ledger store
type Manager struct {
	store        ledger.Store
	logger       *slog.Logger
	now          func() time.Time
	location     *time.Location
	newNumber    account.NumberGenerator
	newReference func() string
}

// Option configures a Manager
type Option func(*Manager)

// WithClock replaces the wall clock
func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

// WithLocation sets the zone that defines calendar days and months
func WithLocation(loc *time.Location) Option {
	return func(m *Manager) {
		if loc != nil {
			m.location = loc
		}
	}
}

// WithNumberGenerator replaces the account number generator
func WithNumberGenerator(gen account.NumberGenerator) Option {
	return func(m *Manager) { m.newNumber = gen }
}

// NewManager creates a Manager over store
func NewManager(store ledger.Store, logger *slog.Logger, opts ...Option) *Manager {
	m := &Manager{
		store:        store,
		logger:       logger,
		now:          time.Now,
		location:     time.Local,
		newNumber:    account.NewNumberGenerator(defaultNumberPrefix),
		newReference: uuid.NewString,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Location returns the zone used for day and month boundaries
func (m *Manager) Location() *time.Location {
	return m.location
}

type operation struct {
	reference string
}

// OperationOption tunes a single mutating call
type OperationOption func(*operation)

// WithReference tags the records of the operation with a caller-supplied
// idempotency reference. A reference that is already in the ledger fails
// with shared.ErrDuplicateRequest.
func WithReference(reference string) OperationOption {
	return func(o *operation) { o.reference = reference }
}

func applyOptions(opts []OperationOption) operation {
	var o operation
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// reference claims the operation reference inside the scope
func (m *Manager) reference(ctx context.Context, tx ledger.Tx, o operation) (string, error) {
	if o.reference == "" {
		return m.newReference(), nil
	}
	exists, err := tx.ReferenceExists(ctx, o.reference)
	if err != nil {
		return "", err
	}
	if exists {
		return "", shared.ErrDuplicateRequest{Reference: o.reference}
	}
	return o.reference, nil
}

// requireOpen enforces the state checks shared by every movement of funds
func requireOpen(acc *account.Account) error {
	if !acc.IsActive {
		return shared.ErrAccountInactive{AccountID: acc.ID}
	}
	if acc.IsFrozen {
		return shared.ErrAccountFrozen{AccountID: acc.ID}
	}
	return nil
}

// checkWithdrawal applies the daily limit and then the minimum balance rule to a debit
func (m *Manager) checkWithdrawal(ctx context.Context, tx ledger.Tx, acc *account.Account, amount money.Money, now time.Time) error {
	if acc.DailyWithdrawalLimit != nil {
		withdrawn, err := m.withdrawnOn(ctx, tx, acc.ID, now)
		if err != nil {
			return err
		}
		if !acc.IsWithinDailyLimit(amount, withdrawn) {
			return shared.ErrDailyLimitExceeded{
				AccountID:      acc.ID,
				Limit:          *acc.DailyWithdrawalLimit,
				WithdrawnToday: withdrawn,
				Requested:      amount,
			}
		}
	}

	if !acc.CanWithdraw(amount) {
		return shared.ErrInsufficientFunds{AccountID: acc.ID, Requested: amount, Available: acc.Available()}
	}
	return nil
}

// withdrawnOn sums the limited debits of the calendar day containing now
func (m *Manager) withdrawnOn(ctx context.Context, tx ledger.Tx, accountID int64, now time.Time) (money.Money, error) {
	txns, err := tx.ListTransactions(ctx, accountID, m.dayOf(now))
	if err != nil {
		return money.Zero, err
	}
	total := money.Zero
	for _, txn := range txns {
		if txn.Type.CountsTowardDailyLimit() {
			total = total.Add(txn.Amount)
		}
	}
	return total, nil
}

func (m *Manager) dayOf(t time.Time) ledger.TimeRange {
	local := t.In(m.location)
	start := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, m.location)
	return ledger.TimeRange{From: start, To: start.AddDate(0, 0, 1)}
}

// save checks the balance floor on the computed state and persists it
func save(ctx context.Context, tx ledger.Tx, acc *account.Account, now time.Time) error {
	if !acc.HoldsMinimumBalance() {
		return shared.ErrInvariantViolation{AccountID: acc.ID, Balance: acc.Balance, MinimumBalance: acc.MinimumBalance}
	}
	acc.Touch(now)
	return tx.SaveAccount(ctx, acc)
}

// lockAll locks the accounts in ascending id order and returns them by id
func lockAll(ctx context.Context, tx ledger.Tx, ids ...int64) (map[int64]*account.Account, error) {
	unique := make([]int64, 0, len(ids))
	seen := make(map[int64]bool, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			unique = append(unique, id)
		}
	}
	sort.Slice(unique, func(i, j int) bool { return unique[i] < unique[j] })

	locked := make(map[int64]*account.Account, len(unique))
	for _, id := range unique {
		acc, err := tx.LockAccount(ctx, id)
		if err != nil {
			return nil, err
		}
		locked[id] = acc
	}
	return locked, nil
}

// logResult records the outcome of a mutating operation. Rejections are
// expected traffic and stay at warn level.
func (m *Manager) logResult(op string, accountID int64, err error, attrs ...any) {
	attrs = append([]any{"operation", op, "account_id", accountID}, attrs...)
	switch {
	case err == nil:
		m.logger.Info("Ledger operation committed", attrs...)
	case shared.IsClientError(err):
		m.logger.Warn("Ledger operation rejected", append(attrs, "reason", shared.ReasonOf(err), "error", err)...)
	case shared.IsRetryable(err):
		m.logger.Warn("Ledger operation not committed, safe to retry", append(attrs, "reason", shared.ReasonOf(err), "error", err)...)
	default:
		m.logger.Error("Ledger operation failed", append(attrs, "reason", shared.ReasonOf(err), "error", err)...)
	}
}
