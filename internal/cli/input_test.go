package cli

import (
	"errors"
	"fmt"
	"testing"

	"github.com/personal-ledger/internal/domain/money"
	"github.com/personal-ledger/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAmount(t *testing.T) {
	tests := []struct {
		input   string
		want    string
		wantErr bool
	}{
		{input: "1500", want: "1500.00"},
		{input: "1500.5", want: "1500.50"},
		{input: "$1,500.00", want: "1500.00"},
		{input: " €2,000,000.99 ", want: "2000000.99"},
		{input: "£ 12", want: "12.00"},
		{input: "-$5", want: "-5.00"},
		{input: "₽1,500.25", want: "1500.25"},
		{input: "", wantErr: true},
		{input: "$", wantErr: true},
		{input: "12.345", wantErr: true},
		{input: "twelve", wantErr: true},
		{input: "1e40000000", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("%q", tt.input), func(t *testing.T) {
			got, err := parseAmount(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, money.ErrInvalidAmount{})
				assert.Equal(t, shared.FailureReasonInvalidAmount, shared.ReasonOf(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.String())
		})
	}

	t.Run("error keeps the raw input", func(t *testing.T) {
		_, err := parseAmount("$1,000.001")
		require.Error(t, err)
		assert.Contains(t, err.Error(), `"$1,000.001"`)
		assert.Contains(t, err.Error(), "more than 2 fractional digits")
	})
}

func TestParseID(t *testing.T) {
	id, err := parseID("42")
	require.NoError(t, err)
	assert.Equal(t, int64(42), id)

	for _, input := range []string{"", "0", "-3", "abc", "1.5"} {
		t.Run(fmt.Sprintf("%q", input), func(t *testing.T) {
			_, err := parseID(input)
			assert.ErrorIs(t, err, shared.ErrInvalidInput{Field: "account_id"})
		})
	}
}

func TestParseRate(t *testing.T) {
	rate, err := parseRate("0.025")
	require.NoError(t, err)
	assert.Equal(t, "0.025", rate.String())

	for _, input := range []string{"abc", "-0.01", "1000", "0.1234567", "1e40000000"} {
		t.Run(input, func(t *testing.T) {
			_, err := parseRate(input)
			assert.ErrorIs(t, err, shared.ErrInvalidInput{Field: "interest_rate"})
		})
	}
}

func TestParseLeg(t *testing.T) {
	leg, err := parseLeg("7:$1,250.10")
	require.NoError(t, err)
	assert.Equal(t, int64(7), leg.ToAccountID)
	assert.Equal(t, "1250.10", leg.Amount.String())

	_, err = parseLeg("7")
	assert.ErrorIs(t, err, shared.ErrInvalidInput{Field: "to"})

	_, err = parseLeg("x:10")
	assert.ErrorIs(t, err, shared.ErrInvalidInput{Field: "account_id"})

	_, err = parseLeg("7:ten")
	assert.ErrorIs(t, err, money.ErrInvalidAmount{})
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"success", nil, ExitSuccess},
		{"usage", usageErrorf("bad flag"), ExitRejected},
		{"not found", shared.ErrAccountNotFound{AccountID: 1}, ExitRejected},
		{"wrapped business rule", fmt.Errorf("withdraw: %w", shared.ErrInsufficientFunds{AccountID: 1}), ExitRejected},
		{"invalid amount", money.ErrInvalidAmount{Input: "x", Reason: "not a decimal number"}, ExitRejected},
		{"duplicate", shared.ErrDuplicateRequest{Reference: "r"}, ExitRejected},
		{"storage timeout", shared.ErrStorageTimeout{Op: "commit", Err: errors.New("deadline")}, ExitFailure},
		{"storage conflict", shared.ErrStorageConflict{Op: "update", Err: errors.New("serialization")}, ExitFailure},
		{"invariant", shared.ErrInvariantViolation{AccountID: 1}, ExitFailure},
		{"unknown", errors.New("connection refused"), ExitFailure},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExitCode(tt.err))
		})
	}
}
