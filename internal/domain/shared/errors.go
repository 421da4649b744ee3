package shared

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/personal-ledger/internal/domain/money"
)

// ErrAccountNotFound indicates an unknown account id or account number
type ErrAccountNotFound struct {
	AccountID     int64
	AccountNumber string
}

func (e ErrAccountNotFound) Error() string {
	if e.AccountNumber != "" {
		return "account not found: " + e.AccountNumber
	}
	return "account not found: " + strconv.FormatInt(e.AccountID, 10)
}

// Is matches any ErrAccountNotFound when the target is the zero value
func (e ErrAccountNotFound) Is(target error) bool {
	t, ok := target.(ErrAccountNotFound)
	if !ok {
		return false
	}
	if t.AccountID == 0 && t.AccountNumber == "" {
		return true
	}
	return e.AccountID == t.AccountID && e.AccountNumber == t.AccountNumber
}

// ErrAccountInactive indicates a mutation attempted on a deactivated account
type ErrAccountInactive struct {
	AccountID int64
}

func (e ErrAccountInactive) Error() string {
	return "account is inactive: " + strconv.FormatInt(e.AccountID, 10)
}

func (e ErrAccountInactive) Is(target error) bool {
	t, ok := target.(ErrAccountInactive)
	return ok && (t.AccountID == 0 || t.AccountID == e.AccountID)
}

// ErrAccountFrozen indicates a movement attempted on a frozen account
type ErrAccountFrozen struct {
	AccountID int64
}

func (e ErrAccountFrozen) Error() string {
	return "account is frozen: " + strconv.FormatInt(e.AccountID, 10)
}

func (e ErrAccountFrozen) Is(target error) bool {
	t, ok := target.(ErrAccountFrozen)
	return ok && (t.AccountID == 0 || t.AccountID == e.AccountID)
}

// ErrInsufficientFunds reports the amount that could actually be withdrawn
type ErrInsufficientFunds struct {
	AccountID int64
	Requested money.Money
	Available money.Money
}

func (e ErrInsufficientFunds) Error() string {
	return fmt.Sprintf("insufficient funds in account %d: requested %s, available %s",
		e.AccountID, e.Requested, e.Available)
}

func (e ErrInsufficientFunds) Is(target error) bool {
	t, ok := target.(ErrInsufficientFunds)
	return ok && (t.AccountID == 0 || t.AccountID == e.AccountID)
}

// ErrDailyLimitExceeded reports the configured cap and today's usage
type ErrDailyLimitExceeded struct {
	AccountID      int64
	Limit          money.Money
	WithdrawnToday money.Money
	Requested      money.Money
}

func (e ErrDailyLimitExceeded) Error() string {
	return fmt.Sprintf("daily withdrawal limit exceeded for account %d: limit %s, withdrawn today %s, requested %s",
		e.AccountID, e.Limit, e.WithdrawnToday, e.Requested)
}

func (e ErrDailyLimitExceeded) Is(target error) bool {
	t, ok := target.(ErrDailyLimitExceeded)
	return ok && (t.AccountID == 0 || t.AccountID == e.AccountID)
}

// ErrSelfTransfer indicates a transfer whose source and destination coincide
type ErrSelfTransfer struct {
	AccountID int64
}

func (e ErrSelfTransfer) Error() string {
	return "cannot transfer to the same account: " + strconv.FormatInt(e.AccountID, 10)
}

func (e ErrSelfTransfer) Is(target error) bool {
	t, ok := target.(ErrSelfTransfer)
	return ok && (t.AccountID == 0 || t.AccountID == e.AccountID)
}

// ErrInvalidInitialDeposit indicates an opening deposit below the minimum balance
type ErrInvalidInitialDeposit struct {
	InitialDeposit money.Money
	MinimumBalance money.Money
}

func (e ErrInvalidInitialDeposit) Error() string {
	return fmt.Sprintf("initial deposit %s is below minimum balance %s", e.InitialDeposit, e.MinimumBalance)
}

func (e ErrInvalidInitialDeposit) Is(target error) bool {
	_, ok := target.(ErrInvalidInitialDeposit)
	return ok
}

// ErrNonZeroBalance indicates a deactivation attempt on an account holding funds
type ErrNonZeroBalance struct {
	AccountID int64
	Balance   money.Money
}

func (e ErrNonZeroBalance) Error() string {
	return fmt.Sprintf("account %d has non-zero balance %s", e.AccountID, e.Balance)
}

func (e ErrNonZeroBalance) Is(target error) bool {
	t, ok := target.(ErrNonZeroBalance)
	return ok && (t.AccountID == 0 || t.AccountID == e.AccountID)
}

// ErrInvalidInput reports a malformed non-monetary argument
type ErrInvalidInput struct {
	Field  string
	Reason string
}

func (e ErrInvalidInput) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func (e ErrInvalidInput) Is(target error) bool {
	t, ok := target.(ErrInvalidInput)
	return ok && (t.Field == "" || t.Field == e.Field)
}

// ErrDuplicateRequest indicates the operation reference was already committed
type ErrDuplicateRequest struct {
	Reference string
}

func (e ErrDuplicateRequest) Error() string {
	return "request already processed: " + e.Reference
}

func (e ErrDuplicateRequest) Is(target error) bool {
	t, ok := target.(ErrDuplicateRequest)
	return ok && (t.Reference == "" || t.Reference == e.Reference)
}

// ErrInvariantViolation signals a computed state that would break the minimum balance floor.
// Raising it aborts the scope before anything is saved.
type ErrInvariantViolation struct {
	AccountID      int64
	Balance        money.Money
	MinimumBalance money.Money
}

func (e ErrInvariantViolation) Error() string {
	return fmt.Sprintf("account %d would hold %s below minimum balance %s", e.AccountID, e.Balance, e.MinimumBalance)
}

func (e ErrInvariantViolation) Is(target error) bool {
	_, ok := target.(ErrInvariantViolation)
	return ok
}

// ErrStorageTimeout indicates the store did not complete in time. Nothing was committed.
type ErrStorageTimeout struct {
	Op  string
	Err error
}

func (e ErrStorageTimeout) Error() string {
	if e.Err == nil {
		return "storage timeout during " + e.Op
	}
	return fmt.Sprintf("storage timeout during %s: %v", e.Op, e.Err)
}

func (e ErrStorageTimeout) Unwrap() error { return e.Err }

func (e ErrStorageTimeout) Is(target error) bool {
	_, ok := target.(ErrStorageTimeout)
	return ok
}

// ErrStorageConflict indicates the isolation layer rejected a concurrent modification.
// Nothing was committed.
type ErrStorageConflict struct {
	Op  string
	Err error
}

func (e ErrStorageConflict) Error() string {
	if e.Err == nil {
		return "storage conflict during " + e.Op
	}
	return fmt.Sprintf("storage conflict during %s: %v", e.Op, e.Err)
}

func (e ErrStorageConflict) Unwrap() error { return e.Err }

func (e ErrStorageConflict) Is(target error) bool {
	_, ok := target.(ErrStorageConflict)
	return ok
}

// ReasonOf classifies err into its failure kind
func ReasonOf(err error) FailureReason {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrAccountNotFound{}):
		return FailureReasonAccountNotFound
	case errors.Is(err, money.ErrInvalidAmount{}):
		return FailureReasonInvalidAmount
	case errors.Is(err, ErrAccountInactive{}):
		return FailureReasonAccountInactive
	case errors.Is(err, ErrAccountFrozen{}):
		return FailureReasonAccountFrozen
	case errors.Is(err, ErrInsufficientFunds{}):
		return FailureReasonInsufficientFunds
	case errors.Is(err, ErrDailyLimitExceeded{}):
		return FailureReasonDailyLimitExceeded
	case errors.Is(err, ErrSelfTransfer{}):
		return FailureReasonSelfTransfer
	case errors.Is(err, ErrInvalidInitialDeposit{}):
		return FailureReasonInvalidInitialDeposit
	case errors.Is(err, ErrNonZeroBalance{}):
		return FailureReasonNonZeroBalance
	case errors.Is(err, ErrInvalidInput{}):
		return FailureReasonInvalidInput
	case errors.Is(err, ErrDuplicateRequest{}):
		return FailureReasonDuplicateRequest
	case errors.Is(err, ErrStorageTimeout{}):
		return FailureReasonStorageTimeout
	case errors.Is(err, ErrStorageConflict{}):
		return FailureReasonStorageConflict
	case errors.Is(err, ErrInvariantViolation{}):
		return FailureReasonInvariantViolation
	default:
		return FailureReasonUnknownError
	}
}

// IsRetryable reports whether the caller may safely repeat the operation
func IsRetryable(err error) bool {
	reason := ReasonOf(err)
	return reason == FailureReasonStorageTimeout || reason == FailureReasonStorageConflict
}

// IsClientError reports validation, lookup and business-rule failures
func IsClientError(err error) bool {
	switch ReasonOf(err) {
	case "", FailureReasonStorageTimeout, FailureReasonStorageConflict,
		FailureReasonInvariantViolation, FailureReasonUnknownError:
		return false
	default:
		return true
	}
}
