package account

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/personal-ledger/internal/domain/money"
	"github.com/shopspring/decimal"
)

// Type classifies an account
type Type string

const (
	TypeChecking Type = "checking"
	TypeSavings  Type = "savings"
	TypeBusiness Type = "business"
)

// ParseType resolves a case-insensitive account type name
func ParseType(s string) (Type, error) {
	switch t := Type(strings.ToLower(strings.TrimSpace(s))); t {
	case TypeChecking, TypeSavings, TypeBusiness:
		return t, nil
	default:
		return "", fmt.Errorf("unknown account type %q", s)
	}
}

// Storage limits of the accounts table
const (
	MaxCustomerNameLength       = 255
	InterestRateScale     int32 = 6
)

var maxInterestRate = decimal.RequireFromString("999.999999")

// ValidateCustomerName checks a trimmed customer name
func ValidateCustomerName(name string) error {
	if name == "" {
		return errors.New("must not be empty")
	}
	if n := utf8.RuneCountInString(name); n > MaxCustomerNameLength {
		return fmt.Errorf("must be at most %d characters, got %d", MaxCustomerNameLength, n)
	}
	return nil
}

// ValidateInterestRate checks an annual rate given as a fraction. The exponent
// is bounded before any arithmetic so oversized inputs are never expanded.
func ValidateInterestRate(rate decimal.Decimal) error {
	if exp := rate.Exponent(); exp < -3*InterestRateScale || exp > 3 {
		return fmt.Errorf("must be between 0 and %s with at most %d fractional digits", maxInterestRate, InterestRateScale)
	}
	if rate.IsNegative() {
		return errors.New("must not be negative")
	}
	if rate.GreaterThan(maxInterestRate) {
		return fmt.Errorf("must not exceed %s", maxInterestRate)
	}
	if !rate.Equal(rate.Truncate(InterestRateScale)) {
		return fmt.Errorf("must have at most %d fractional digits", InterestRateScale)
	}
	return nil
}

// Account represents a ledger account and its current state
type Account struct {
	ID                      int64           `json:"id"`
	AccountNumber           string          `json:"account_number"`
	CustomerName            string          `json:"customer_name"`
	Type                    Type            `json:"account_type"`
	Balance                 money.Money     `json:"balance"`
	MinimumBalance          money.Money     `json:"minimum_balance"`
	IsActive                bool            `json:"is_active"`
	IsFrozen                bool            `json:"is_frozen"`
	DailyWithdrawalLimit    *money.Money    `json:"daily_withdrawal_limit,omitempty"`
	InterestRate            decimal.Decimal `json:"interest_rate"`
	LastInterestCalculation *time.Time      `json:"last_interest_calculation,omitempty"`
	Version                 int             `json:"version"` // Incremented on every save
	CreatedAt               time.Time       `json:"created_at"`
	UpdatedAt               time.Time       `json:"updated_at"`
}

// CanWithdraw is the single authority on the minimum balance rule
func (a *Account) CanWithdraw(amount money.Money) bool {
	if !a.IsActive || a.IsFrozen || !amount.IsPositive() {
		return false
	}
	return a.Balance.Sub(amount).GreaterThanOrEqual(a.MinimumBalance)
}

// IsWithinDailyLimit reports whether amount fits in what is left of today's cap
func (a *Account) IsWithinDailyLimit(amount, withdrawnToday money.Money) bool {
	if a.DailyWithdrawalLimit == nil {
		return true
	}
	return withdrawnToday.Add(amount).LessThanOrEqual(*a.DailyWithdrawalLimit)
}

// Available returns the amount that can leave the account without breaching the floor
func (a *Account) Available() money.Money {
	return money.Max(a.Balance.Sub(a.MinimumBalance), money.Zero)
}

// HoldsMinimumBalance checks the balance floor on a computed state
func (a *Account) HoldsMinimumBalance() bool {
	return !a.IsActive || a.Balance.GreaterThanOrEqual(a.MinimumBalance)
}

// Touch records a state change
func (a *Account) Touch(now time.Time) {
	a.UpdatedAt = now
	a.Version++
}

// Clone returns a deep copy so stores never share mutable state with callers
func (a *Account) Clone() *Account {
	c := *a
	if a.DailyWithdrawalLimit != nil {
		limit := *a.DailyWithdrawalLimit
		c.DailyWithdrawalLimit = &limit
	}
	if a.LastInterestCalculation != nil {
		ts := *a.LastInterestCalculation
		c.LastInterestCalculation = &ts
	}
	return &c
}

// NumberGenerator derives a human-readable account number for the given creation time
type NumberGenerator func(now time.Time) string

// NewNumberGenerator produces numbers like BANK-20240115-1A2B3C4D
func NewNumberGenerator(prefix string) NumberGenerator {
	return func(now time.Time) string {
		suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))[:8]
		return fmt.Sprintf("%s-%s-%s", prefix, now.Format("20060102"), suffix)
	}
}
