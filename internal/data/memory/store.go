// Package memory provides an in-process ledger store for the CLI and tests.
package memory

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/personal-ledger/internal/domain/account"
	"github.com/personal-ledger/internal/domain/ledger"
	"github.com/personal-ledger/internal/domain/shared"
)

// Store implements ledger.Store in memory. One scope runs at a time; a scope
// works on a copy of the state which replaces the live state only when fn succeeds.
type Store struct {
	sem    chan struct{}
	state  *state
	logger *slog.Logger
}

var _ ledger.Store = (*Store)(nil)

type state struct {
	accounts      map[int64]*account.Account
	numbers       map[string]int64
	transactions  map[int64][]*ledger.Transaction
	events        map[int64][]*account.Event
	references    map[string]struct{}
	nextAccountID int64
	nextTxnID     int64
	nextEventID   int64
}

func newState() *state {
	return &state{
		accounts:     make(map[int64]*account.Account),
		numbers:      make(map[string]int64),
		transactions: make(map[int64][]*ledger.Transaction),
		events:       make(map[int64][]*account.Event),
		references:   make(map[string]struct{}),
	}
}

// clone copies the per-account maps. History slices and the reference set are
// shared with the live state: only one scope runs at a time, appends past the
// live length stay invisible to it, and references reach the shared set only
// on commit. A scope therefore costs O(accounts), not O(history).
func (s *state) clone() *state {
	c := &state{
		accounts:      make(map[int64]*account.Account, len(s.accounts)),
		numbers:       make(map[string]int64, len(s.numbers)),
		transactions:  make(map[int64][]*ledger.Transaction, len(s.transactions)),
		events:        make(map[int64][]*account.Event, len(s.events)),
		references:    s.references,
		nextAccountID: s.nextAccountID,
		nextTxnID:     s.nextTxnID,
		nextEventID:   s.nextEventID,
	}
	for id, acc := range s.accounts {
		c.accounts[id] = acc
	}
	for number, id := range s.numbers {
		c.numbers[number] = id
	}
	for id, txns := range s.transactions {
		c.transactions[id] = txns
	}
	for id, events := range s.events {
		c.events[id] = events
	}
	return c
}

// NewStore creates an empty store
func NewStore(logger *slog.Logger) *Store {
	return &Store{
		sem:    make(chan struct{}, 1),
		state:  newState(),
		logger: logger,
	}
}

// WithinTx serializes scopes. Waiting for the store honours ctx.
func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context, tx ledger.Tx) error) error {
	select {
	case s.sem <- struct{}{}:
	case <-ctx.Done():
		return shared.ErrStorageTimeout{Op: "acquire ledger store", Err: ctx.Err()}
	}
	defer func() { <-s.sem }()

	working := s.state.clone()
	tx := &memTx{st: working, references: make(map[string]struct{})}
	if err := fn(ctx, tx); err != nil {
		s.logger.Debug("Discarding ledger scope", "error", err)
		return err
	}
	if err := ctx.Err(); err != nil {
		return shared.ErrStorageTimeout{Op: "commit ledger scope", Err: err}
	}

	for ref := range tx.references {
		working.references[ref] = struct{}{}
	}
	s.state = working
	return nil
}

type memTx struct {
	st         *state
	references map[string]struct{} // recorded by this scope, merged on commit
}

func (t *memTx) GetAccount(_ context.Context, id int64) (*account.Account, error) {
	acc, ok := t.st.accounts[id]
	if !ok {
		return nil, shared.ErrAccountNotFound{AccountID: id}
	}
	return acc.Clone(), nil
}

// LockAccount is a plain read: the scope already holds the store exclusively
func (t *memTx) LockAccount(ctx context.Context, id int64) (*account.Account, error) {
	return t.GetAccount(ctx, id)
}

func (t *memTx) GetAccountByNumber(ctx context.Context, number string) (*account.Account, error) {
	id, ok := t.st.numbers[number]
	if !ok {
		return nil, nil
	}
	return t.GetAccount(ctx, id)
}

func (t *memTx) ListAccounts(_ context.Context) ([]*account.Account, error) {
	accounts := make([]*account.Account, 0, len(t.st.accounts))
	for _, acc := range t.st.accounts {
		accounts = append(accounts, acc.Clone())
	}
	sort.Slice(accounts, func(i, j int) bool { return accounts[i].ID < accounts[j].ID })
	return accounts, nil
}

func (t *memTx) CreateAccount(_ context.Context, acc *account.Account) error {
	if _, taken := t.st.numbers[acc.AccountNumber]; taken {
		return shared.ErrStorageConflict{Op: "create account", Err: fmt.Errorf("account number %s already exists", acc.AccountNumber)}
	}
	t.st.nextAccountID++
	acc.ID = t.st.nextAccountID
	t.st.accounts[acc.ID] = acc.Clone()
	t.st.numbers[acc.AccountNumber] = acc.ID
	return nil
}

// SaveAccount applies the same optimistic version check as the database store
func (t *memTx) SaveAccount(_ context.Context, acc *account.Account) error {
	stored, ok := t.st.accounts[acc.ID]
	if !ok {
		return shared.ErrAccountNotFound{AccountID: acc.ID}
	}
	if stored.Version != acc.Version-1 {
		return shared.ErrStorageConflict{Op: "update account", Err: fmt.Errorf("account %d changed since it was read", acc.ID)}
	}
	t.st.accounts[acc.ID] = acc.Clone()
	return nil
}

func (t *memTx) AppendTransaction(_ context.Context, txn *ledger.Transaction) error {
	if _, ok := t.st.accounts[txn.AccountID]; !ok {
		return shared.ErrAccountNotFound{AccountID: txn.AccountID}
	}
	t.st.nextTxnID++
	txn.ID = t.st.nextTxnID

	stored := *txn
	t.st.transactions[txn.AccountID] = append(t.st.transactions[txn.AccountID], &stored)
	if txn.Reference != "" {
		t.references[txn.Reference] = struct{}{}
	}
	return nil
}

// sorted returns copies of the account's records in commit order
func (t *memTx) sorted(accountID int64, keep func(*ledger.Transaction) bool) []*ledger.Transaction {
	txns := []*ledger.Transaction{}
	for _, txn := range t.st.transactions[accountID] {
		if keep(txn) {
			c := *txn
			txns = append(txns, &c)
		}
	}
	sort.SliceStable(txns, func(i, j int) bool {
		if !txns[i].Timestamp.Equal(txns[j].Timestamp) {
			return txns[i].Timestamp.Before(txns[j].Timestamp)
		}
		return txns[i].ID < txns[j].ID
	})
	return txns
}

func (t *memTx) ListTransactions(_ context.Context, accountID int64, window ledger.TimeRange) ([]*ledger.Transaction, error) {
	return t.sorted(accountID, func(txn *ledger.Transaction) bool { return window.Contains(txn.Timestamp) }), nil
}

func (t *memTx) ListRecentTransactions(_ context.Context, accountID int64, limit int) ([]*ledger.Transaction, error) {
	txns := t.sorted(accountID, func(*ledger.Transaction) bool { return true })
	for i, j := 0, len(txns)-1; i < j; i, j = i+1, j-1 {
		txns[i], txns[j] = txns[j], txns[i]
	}
	if limit > 0 && len(txns) > limit {
		txns = txns[:limit]
	}
	return txns, nil
}

func (t *memTx) LastTransactionBefore(_ context.Context, accountID int64, before time.Time) (*ledger.Transaction, error) {
	txns := t.sorted(accountID, func(txn *ledger.Transaction) bool { return txn.Timestamp.Before(before) })
	if len(txns) == 0 {
		return nil, nil
	}
	return txns[len(txns)-1], nil
}

func (t *memTx) ReferenceExists(_ context.Context, reference string) (bool, error) {
	if _, ok := t.references[reference]; ok {
		return true, nil
	}
	_, ok := t.st.references[reference]
	return ok, nil
}

func (t *memTx) AppendEvent(_ context.Context, event *account.Event) error {
	t.st.nextEventID++
	event.ID = t.st.nextEventID
	stored := *event
	t.st.events[event.AccountID] = append(t.st.events[event.AccountID], &stored)
	return nil
}

// Events returns the audit trail of an account, oldest first
func (s *Store) Events(ctx context.Context, accountID int64) ([]*account.Event, error) {
	var events []*account.Event
	err := s.WithinTx(ctx, func(ctx context.Context, tx ledger.Tx) error {
		for _, e := range tx.(*memTx).st.events[accountID] {
			c := *e
			events = append(events, &c)
		}
		return nil
	})
	return events, err
}
