package money

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
		wantErr  bool
	}{
		{"integer", "1500", "1500.00", false},
		{"two digits", "1500.25", "1500.25", false},
		{"one digit", "0.5", "0.50", false},
		{"surrounding spaces", "  42.10 ", "42.10", false},
		{"negative", "-3.00", "-3.00", false},
		{"empty", "", "", true},
		{"garbage", "12abc", "", true},
		{"three fractional digits", "1.005", "", true},
		{"out of range", "10000000000000.00", "", true},
		{"exponent", "1e2", "", true},
		{"negative exponent", "1.5E-1", "", true},
		{"huge exponent", "1e40000000", "", true},
		{"too long", "0.00000000000000000000000000000000000001", "", true},
		{"sign only", "-", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := Parse(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, ErrInvalidAmount{}))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, m.String())
		})
	}
}

func TestParse_ExponentRejectedWithoutExpansion(t *testing.T) {
	for _, input := range []string{"1e40000000", "-9E999999999", "1e-40000000"} {
		t.Run(input, func(t *testing.T) {
			start := time.Now()
			_, err := Parse(input)
			require.Error(t, err)
			assert.Equal(t, ErrInvalidAmount{Input: input, Reason: "not a decimal number"}, err)
			assert.Less(t, time.Since(start), 100*time.Millisecond)
		})
	}

	var p struct {
		Amount Money `json:"amount"`
	}
	err := json.Unmarshal([]byte(`{"amount":1e40000000}`), &p)
	assert.ErrorIs(t, err, ErrInvalidAmount{})
}

func TestMoney_Arithmetic(t *testing.T) {
	a := MustParse("25000.00")
	b := MustParse("8000.00")

	assert.Equal(t, "17000.00", a.Sub(b).String())
	assert.Equal(t, "33000.00", a.Add(b).String())
	assert.Equal(t, "-8000.00", b.Neg().String())
	assert.True(t, a.Sub(b).Add(b).Equal(a))

	// 0.1 + 0.2 must be exact
	assert.Equal(t, "0.30", MustParse("0.10").Add(MustParse("0.20")).String())
	assert.Equal(t, "0.60", Sum(MustParse("0.10"), MustParse("0.20"), MustParse("0.30")).String())
}

func TestMoney_RoundingIsBankers(t *testing.T) {
	assert.Equal(t, "0.02", MustParse("0.05").MulRate(decimal.RequireFromString("0.5")).String()) // 0.025 -> 0.02
	assert.Equal(t, "0.04", MustParse("0.07").MulRate(decimal.RequireFromString("0.5")).String()) // 0.035 -> 0.04
	assert.Equal(t, "3.33", MustParse("10.00").Div(3).String())
	assert.Equal(t, "0.00", MustParse("10.00").Div(0).String())
}

func TestMoney_Comparisons(t *testing.T) {
	low := MustParse("1000.00")
	high := MustParse("2000.00")

	assert.True(t, low.LessThan(high))
	assert.True(t, high.GreaterThan(low))
	assert.True(t, low.GreaterThanOrEqual(MustParse("1000")))
	assert.True(t, low.LessThanOrEqual(MustParse("1000")))
	assert.Equal(t, -1, low.Cmp(high))
	assert.True(t, Zero.IsZero())
	assert.True(t, low.IsPositive())
	assert.True(t, low.Neg().IsNegative())
	assert.Equal(t, high, Max(low, high))
}

func TestRequirePositive(t *testing.T) {
	assert.NoError(t, RequirePositive(MustParse("0.01")))

	err := RequirePositive(Zero)
	require.Error(t, err)
	var invalid ErrInvalidAmount
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, "0.00", invalid.Input)

	assert.Error(t, RequirePositive(MustParse("-5")))
}

func TestMoney_Format(t *testing.T) {
	assert.Equal(t, "0.00", Zero.Format())
	assert.Equal(t, "999.99", MustParse("999.99").Format())
	assert.Equal(t, "1,000.00", MustParse("1000").Format())
	assert.Equal(t, "1,234,567.89", MustParse("1234567.89").Format())
	assert.Equal(t, "-12,000.50", MustParse("-12000.5").Format())
}

func TestMoney_JSON(t *testing.T) {
	type payload struct {
		Amount Money `json:"amount"`
	}

	data, err := json.Marshal(payload{Amount: MustParse("12.5")})
	require.NoError(t, err)
	assert.JSONEq(t, `{"amount":"12.50"}`, string(data))

	var fromString payload
	require.NoError(t, json.Unmarshal([]byte(`{"amount":"99.99"}`), &fromString))
	assert.Equal(t, "99.99", fromString.Amount.String())

	var fromNumber payload
	require.NoError(t, json.Unmarshal([]byte(`{"amount":0.1}`), &fromNumber))
	assert.Equal(t, "0.10", fromNumber.Amount.String())

	var bad payload
	err = json.Unmarshal([]byte(`{"amount":"1.001"}`), &bad)
	assert.Error(t, err)
}

func TestMoney_ScanAndValue(t *testing.T) {
	var m Money
	require.NoError(t, m.Scan("1500.00"))
	assert.Equal(t, "1500.00", m.String())

	require.NoError(t, m.Scan([]byte("20.5")))
	assert.Equal(t, "20.50", m.String())

	require.NoError(t, m.Scan(MustParse("7")))
	assert.Equal(t, "7.00", m.String())

	require.NoError(t, m.Scan(nil))
	assert.True(t, m.IsZero())

	assert.Error(t, m.Scan(struct{}{}))

	v, err := MustParse("3.1").Value()
	require.NoError(t, err)
	assert.Equal(t, "3.10", v)
}

func TestNullMoney(t *testing.T) {
	var n NullMoney
	require.NoError(t, n.Scan(nil))
	assert.False(t, n.Valid)
	assert.Nil(t, n.Ptr())

	require.NoError(t, n.Scan("500.00"))
	require.True(t, n.Valid)
	assert.Equal(t, "500.00", n.Ptr().String())

	limit := MustParse("250")
	wrapped := NewNullMoney(&limit)
	v, err := wrapped.Value()
	require.NoError(t, err)
	assert.Equal(t, "250.00", v)

	v, err = NewNullMoney(nil).Value()
	require.NoError(t, err)
	assert.Nil(t, v)
}
