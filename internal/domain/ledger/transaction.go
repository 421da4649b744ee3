package ledger

import (
	"time"

	"github.com/personal-ledger/internal/domain/money"
)

// TransactionType defines the direction and origin of a ledger movement
type TransactionType string

const (
	TransactionTypeDeposit         TransactionType = "DEPOSIT"
	TransactionTypeWithdrawal      TransactionType = "WITHDRAWAL"
	TransactionTypeTransferIn      TransactionType = "TRANSFER_IN"
	TransactionTypeTransferOut     TransactionType = "TRANSFER_OUT"
	TransactionTypeInterest        TransactionType = "INTEREST"
	TransactionTypeFee             TransactionType = "FEE"
	TransactionTypeBulkTransferIn  TransactionType = "BULK_TRANSFER_IN"
	TransactionTypeBulkTransferOut TransactionType = "BULK_TRANSFER_OUT"
)

// AllTransactionTypes lists every type in reporting order
var AllTransactionTypes = []TransactionType{
	TransactionTypeDeposit,
	TransactionTypeWithdrawal,
	TransactionTypeTransferIn,
	TransactionTypeTransferOut,
	TransactionTypeInterest,
	TransactionTypeFee,
	TransactionTypeBulkTransferIn,
	TransactionTypeBulkTransferOut,
}

// IsCredit reports whether the type increases the balance
func (t TransactionType) IsCredit() bool {
	switch t {
	case TransactionTypeDeposit, TransactionTypeTransferIn, TransactionTypeInterest, TransactionTypeBulkTransferIn:
		return true
	}
	return false
}

// IsDebit reports whether the type decreases the balance
func (t TransactionType) IsDebit() bool {
	switch t {
	case TransactionTypeWithdrawal, TransactionTypeTransferOut, TransactionTypeFee, TransactionTypeBulkTransferOut:
		return true
	}
	return false
}

// CountsTowardDailyLimit reports whether the type is a withdrawal-type debit
func (t TransactionType) CountsTowardDailyLimit() bool {
	switch t {
	case TransactionTypeWithdrawal, TransactionTypeTransferOut, TransactionTypeBulkTransferOut:
		return true
	}
	return false
}

// Valid reports whether t is a known type
func (t TransactionType) Valid() bool {
	return t.IsCredit() || t.IsDebit()
}

// Transaction is an immutable record of one movement on one account
type Transaction struct {
	ID               int64           `json:"id"`
	AccountID        int64           `json:"account_id"`
	Type             TransactionType `json:"type"`
	Amount           money.Money     `json:"amount"` // Always positive, direction comes from Type
	BalanceAfter     money.Money     `json:"balance_after"`
	RelatedAccountID *int64          `json:"related_account_id,omitempty"`
	Reference        string          `json:"reference,omitempty"`
	Description      string          `json:"description"`
	Timestamp        time.Time       `json:"timestamp"`
}

// SignedAmount returns the amount with the sign implied by the type
func (t *Transaction) SignedAmount() money.Money {
	if t.Type.IsDebit() {
		return t.Amount.Neg()
	}
	return t.Amount
}

// TimeRange is a half-open interval [From, To). A zero bound is unbounded.
type TimeRange struct {
	From time.Time
	To   time.Time
}

// Contains reports whether ts falls inside the range
func (r TimeRange) Contains(ts time.Time) bool {
	if !r.From.IsZero() && ts.Before(r.From) {
		return false
	}
	if !r.To.IsZero() && !ts.Before(r.To) {
		return false
	}
	return true
}
