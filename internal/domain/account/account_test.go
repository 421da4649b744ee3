package account

import (
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/personal-ledger/internal/domain/money"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestAccount(balance, minimum string) *Account {
	return &Account{
		ID:             1,
		AccountNumber:  "BANK-20240115-1A2B3C4D",
		CustomerName:   "Jane Doe",
		Type:           TypeChecking,
		Balance:        money.MustParse(balance),
		MinimumBalance: money.MustParse(minimum),
		IsActive:       true,
		Version:        1,
	}
}

func TestAccount_CanWithdraw(t *testing.T) {
	tests := []struct {
		name     string
		mutate   func(a *Account)
		amount   string
		expected bool
	}{
		{"within available funds", nil, "12000.00", true},
		{"exactly to the floor", nil, "13000.00", true},
		{"below the floor", nil, "14000.00", false},
		{"zero amount", nil, "0", false},
		{"negative amount", nil, "-10", false},
		{"frozen", func(a *Account) { a.IsFrozen = true }, "10", false},
		{"inactive", func(a *Account) { a.IsActive = false }, "10", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			acc := newTestAccount("15000.00", "2000.00")
			if tt.mutate != nil {
				tt.mutate(acc)
			}
			assert.Equal(t, tt.expected, acc.CanWithdraw(money.MustParse(tt.amount)))
		})
	}
}

func TestAccount_IsWithinDailyLimit(t *testing.T) {
	acc := newTestAccount("5000", "0")
	assert.True(t, acc.IsWithinDailyLimit(money.MustParse("100000"), money.MustParse("100000")), "no limit configured")

	limit := money.MustParse("1000.00")
	acc.DailyWithdrawalLimit = &limit
	assert.True(t, acc.IsWithinDailyLimit(money.MustParse("400"), money.MustParse("600")))
	assert.False(t, acc.IsWithinDailyLimit(money.MustParse("400.01"), money.MustParse("600")))
}

func TestAccount_AvailableAndFloor(t *testing.T) {
	acc := newTestAccount("15000.00", "2000.00")
	assert.Equal(t, "13000.00", acc.Available().String())
	assert.True(t, acc.HoldsMinimumBalance())

	acc.Balance = money.MustParse("1000.00")
	assert.Equal(t, "0.00", acc.Available().String())
	assert.False(t, acc.HoldsMinimumBalance())

	acc.IsActive = false
	assert.True(t, acc.HoldsMinimumBalance())
}

func TestAccount_TouchAndClone(t *testing.T) {
	acc := newTestAccount("10", "0")
	limit := money.MustParse("50")
	ts := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	acc.DailyWithdrawalLimit = &limit
	acc.LastInterestCalculation = &ts
	acc.InterestRate = decimal.RequireFromString("0.035")

	clone := acc.Clone()
	*clone.DailyWithdrawalLimit = money.MustParse("99")
	*clone.LastInterestCalculation = ts.Add(time.Hour)
	assert.Equal(t, "50.00", acc.DailyWithdrawalLimit.String())
	assert.Equal(t, ts, *acc.LastInterestCalculation)

	now := time.Now()
	acc.Touch(now)
	assert.Equal(t, 2, acc.Version)
	assert.Equal(t, now, acc.UpdatedAt)
}

func TestParseType(t *testing.T) {
	for _, in := range []string{"checking", "SAVINGS", " Business "} {
		_, err := ParseType(in)
		assert.NoError(t, err, in)
	}
	_, err := ParseType("brokerage")
	assert.Error(t, err)
}

func TestValidateCustomerName(t *testing.T) {
	assert.NoError(t, ValidateCustomerName("Alice"))
	assert.NoError(t, ValidateCustomerName(strings.Repeat("é", MaxCustomerNameLength)))
	assert.Error(t, ValidateCustomerName(""))
	assert.Error(t, ValidateCustomerName(strings.Repeat("a", MaxCustomerNameLength+1)))
}

func TestValidateInterestRate(t *testing.T) {
	tests := []struct {
		name    string
		rate    decimal.Decimal
		wantErr bool
	}{
		{"zero", decimal.Zero, false},
		{"typical", decimal.RequireFromString("0.025"), false},
		{"six digits", decimal.RequireFromString("0.123456"), false},
		{"trailing zeros", decimal.RequireFromString("0.0250000000"), false},
		{"column maximum", decimal.RequireFromString("999.999999"), false},
		{"negative", decimal.RequireFromString("-0.01"), true},
		{"too large", decimal.NewFromInt(1000), true},
		{"seven digits", decimal.RequireFromString("0.1234567"), true},
		{"huge exponent", decimal.New(1, 40000000), true},
		{"tiny exponent", decimal.New(1, -40000000), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateInterestRate(tt.rate)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestNumberGenerator(t *testing.T) {
	gen := NewNumberGenerator("BANK")
	now := time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC)

	first := gen(now)
	second := gen(now)

	require.Regexp(t, regexp.MustCompile(`^BANK-20240115-[0-9A-F]{8}$`), first)
	assert.NotEqual(t, first, second)
}
