// Package money implements the exact fixed-point amount used for every balance,
// movement and aggregate in the ledger. Values are backed by shopspring/decimal
// and always carry two fractional digits; binary floating point is never used.
package money

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// Scale is the number of fractional digits (currency minor units).
const Scale int32 = 2

// divisionPrecision bounds intermediate quotients before rounding to Scale.
const divisionPrecision int32 = 16

// maxInputLength bounds the text handed to the decimal parser.
const maxInputLength = 32

var (
	// Zero is the zero amount.
	Zero = Money{}

	// maxMagnitude bounds a single amount. Balance columns are NUMERIC(20,2),
	// which leaves headroom for sums of maximal amounts.
	maxMagnitude = decimal.RequireFromString("9999999999999.99")

	// plainDecimal admits digits with an optional sign and fraction, no exponent.
	plainDecimal = regexp.MustCompile(`^[+-]?(\d+(\.\d*)?|\.\d+)$`)
)

// Money is an exact decimal amount with two fractional digits.
// The zero value is 0.00 and ready to use.
type Money struct {
	d decimal.Decimal
}

// ErrInvalidAmount reports an amount that could not be parsed or is not
// acceptable for a movement of funds.
type ErrInvalidAmount struct {
	Input  string
	Reason string
}

func (e ErrInvalidAmount) Error() string {
	if e.Input == "" {
		return "invalid amount: " + e.Reason
	}
	return fmt.Sprintf("invalid amount %q: %s", e.Input, e.Reason)
}

// Is matches any ErrInvalidAmount when the target carries no input.
func (e ErrInvalidAmount) Is(target error) bool {
	t, ok := target.(ErrInvalidAmount)
	if !ok {
		return false
	}
	if t.Input == "" && t.Reason == "" {
		return true
	}
	return e.Input == t.Input
}

// Parse converts a decimal string into Money. Inputs with more than two
// fractional digits are rejected rather than rounded, and so is exponent notation.
func Parse(s string) (Money, error) {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return Zero, ErrInvalidAmount{Input: s, Reason: "empty amount"}
	}
	if len(trimmed) > maxInputLength {
		return Zero, ErrInvalidAmount{Input: s, Reason: "amount out of range"}
	}
	if !plainDecimal.MatchString(trimmed) {
		return Zero, ErrInvalidAmount{Input: s, Reason: "not a decimal number"}
	}

	d, err := decimal.NewFromString(trimmed)
	if err != nil {
		return Zero, ErrInvalidAmount{Input: s, Reason: "not a decimal number"}
	}
	if !d.Equal(d.Truncate(Scale)) {
		return Zero, ErrInvalidAmount{Input: s, Reason: "more than 2 fractional digits"}
	}
	if d.Abs().GreaterThan(maxMagnitude) {
		return Zero, ErrInvalidAmount{Input: s, Reason: "amount out of range"}
	}

	return Money{d: d.Round(Scale)}, nil
}

// MustParse is Parse for constants and tests; it panics on error.
func MustParse(s string) Money {
	m, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return m
}

// FromMinorUnits builds an amount from an integer count of cents.
func FromMinorUnits(cents int64) Money {
	return Money{d: decimal.New(cents, -Scale)}
}

// FromDecimal rounds d to the money scale with banker's rounding.
func FromDecimal(d decimal.Decimal) Money {
	return Money{d: d.RoundBank(Scale)}
}

// RequirePositive fails with ErrInvalidAmount unless m > 0.
func RequirePositive(m Money) error {
	if !m.IsPositive() {
		return ErrInvalidAmount{Input: m.String(), Reason: "amount must be greater than zero"}
	}
	return nil
}

// Decimal exposes the underlying decimal value.
func (m Money) Decimal() decimal.Decimal {
	return m.d
}

func (m Money) Add(o Money) Money { return Money{d: m.d.Add(o.d)} }
func (m Money) Sub(o Money) Money { return Money{d: m.d.Sub(o.d)} }
func (m Money) Neg() Money        { return Money{d: m.d.Neg()} }

// MulRate multiplies by an arbitrary-precision factor and rounds to scale.
func (m Money) MulRate(rate decimal.Decimal) Money {
	return FromDecimal(m.d.Mul(rate))
}

// Div divides by n and rounds to scale. Division by zero returns Zero.
func (m Money) Div(n int64) Money {
	if n == 0 {
		return Zero
	}
	return FromDecimal(m.d.DivRound(decimal.NewFromInt(n), divisionPrecision))
}

func (m Money) Cmp(o Money) int                 { return m.d.Cmp(o.d) }
func (m Money) Equal(o Money) bool              { return m.d.Equal(o.d) }
func (m Money) GreaterThan(o Money) bool        { return m.d.GreaterThan(o.d) }
func (m Money) GreaterThanOrEqual(o Money) bool { return m.d.GreaterThanOrEqual(o.d) }
func (m Money) LessThan(o Money) bool           { return m.d.LessThan(o.d) }
func (m Money) LessThanOrEqual(o Money) bool    { return m.d.LessThanOrEqual(o.d) }
func (m Money) IsZero() bool                    { return m.d.IsZero() }
func (m Money) IsPositive() bool                { return m.d.IsPositive() }
func (m Money) IsNegative() bool                { return m.d.IsNegative() }

// Sum adds all amounts.
func Sum(amounts ...Money) Money {
	total := Zero
	for _, a := range amounts {
		total = total.Add(a)
	}
	return total
}

// Max returns the larger of a and b.
func Max(a, b Money) Money {
	if a.GreaterThanOrEqual(b) {
		return a
	}
	return b
}

// String renders the amount with exactly two fractional digits, e.g. "1500.00".
func (m Money) String() string {
	return m.d.StringFixed(Scale)
}

// Format renders the amount with thousands separators, e.g. "1,500.00".
func (m Money) Format() string {
	s := m.String()
	sign := ""
	if strings.HasPrefix(s, "-") {
		sign, s = "-", s[1:]
	}
	intPart, frac, _ := strings.Cut(s, ".")

	var b strings.Builder
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	return sign + b.String() + "." + frac
}

// MarshalJSON encodes the amount as a JSON string to avoid float decoding by clients.
func (m Money) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.String())
}

// UnmarshalJSON accepts a JSON string or a bare JSON number, parsed exactly.
func (m *Money) UnmarshalJSON(data []byte) error {
	raw := strings.TrimSpace(string(data))
	if raw == "null" {
		*m = Zero
		return nil
	}
	if strings.HasPrefix(raw, `"`) {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return ErrInvalidAmount{Input: raw, Reason: "not a string"}
		}
		raw = s
	}
	parsed, err := Parse(raw)
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// Scan implements sql.Scanner for NUMERIC columns.
func (m *Money) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		*m = Zero
		return nil
	case Money:
		*m = v
		return nil
	case decimal.Decimal:
		*m = FromDecimal(v)
		return nil
	}

	var d decimal.Decimal
	if err := d.Scan(src); err != nil {
		return fmt.Errorf("failed to scan money value: %w", err)
	}
	*m = FromDecimal(d)
	return nil
}

// Value implements driver.Valuer; amounts travel as decimal text.
func (m Money) Value() (driver.Value, error) {
	return m.String(), nil
}

// NullMoney is a Money that may be NULL in storage.
type NullMoney struct {
	Money Money
	Valid bool
}

// NewNullMoney wraps an optional amount.
func NewNullMoney(m *Money) NullMoney {
	if m == nil {
		return NullMoney{}
	}
	return NullMoney{Money: *m, Valid: true}
}

// Ptr returns nil when the value is NULL.
func (n NullMoney) Ptr() *Money {
	if !n.Valid {
		return nil
	}
	m := n.Money
	return &m
}

// Scan implements sql.Scanner.
func (n *NullMoney) Scan(src interface{}) error {
	if src == nil {
		n.Money, n.Valid = Zero, false
		return nil
	}
	if p, ok := src.(*Money); ok {
		if p == nil {
			n.Money, n.Valid = Zero, false
			return nil
		}
		src = *p
	}
	if err := n.Money.Scan(src); err != nil {
		return err
	}
	n.Valid = true
	return nil
}

// Value implements driver.Valuer.
func (n NullMoney) Value() (driver.Value, error) {
	if !n.Valid {
		return nil, nil
	}
	return n.Money.String(), nil
}
