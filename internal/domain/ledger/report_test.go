package ledger

import (
	"testing"
	"time"

	"github.com/personal-ledger/internal/domain/money"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func txn(id int64, typ TransactionType, amount, after string, ts time.Time) *Transaction {
	return &Transaction{
		ID:           id,
		AccountID:    1,
		Type:         typ,
		Amount:       money.MustParse(amount),
		BalanceAfter: money.MustParse(after),
		Timestamp:    ts,
	}
}

func TestStatement_Summarize(t *testing.T) {
	day := time.Date(2024, 3, 5, 10, 0, 0, 0, time.UTC)

	t.Run("with transactions", func(t *testing.T) {
		s := &Statement{
			OpeningBalance: money.MustParse("1000.00"),
			Transactions: []*Transaction{
				txn(1, TransactionTypeDeposit, "500.00", "1500.00", day),
				txn(2, TransactionTypeWithdrawal, "200.00", "1300.00", day.Add(time.Hour)),
				txn(3, TransactionTypeBulkTransferIn, "50.00", "1350.00", day.Add(2*time.Hour)),
				txn(4, TransactionTypeTransferOut, "100.00", "1250.00", day.Add(3*time.Hour)),
				txn(5, TransactionTypeInterest, "1.25", "1251.25", day.Add(4*time.Hour)),
				txn(6, TransactionTypeFee, "5.00", "1246.25", day.Add(5*time.Hour)),
			},
		}
		s.Summarize()

		assert.Equal(t, "1246.25", s.ClosingBalance.String())
		assert.Equal(t, "500.00", s.Totals.Deposits.String())
		assert.Equal(t, "200.00", s.Totals.Withdrawals.String())
		assert.Equal(t, "50.00", s.Totals.TransfersIn.String())
		assert.Equal(t, "100.00", s.Totals.TransfersOut.String())
		assert.Equal(t, "1.25", s.Totals.Interest.String())
		assert.Equal(t, "5.00", s.Totals.Fees.String())
		assert.Equal(t, "246.25", s.Totals.NetChange.String())
		assert.Equal(t, 6, s.Totals.TransactionCount)
		assert.True(t, s.OpeningBalance.Add(s.Totals.NetChange).Equal(s.ClosingBalance))
	})

	t.Run("empty period keeps opening balance", func(t *testing.T) {
		s := &Statement{OpeningBalance: money.MustParse("75.00")}
		s.Summarize()
		assert.Equal(t, "75.00", s.ClosingBalance.String())
		assert.Equal(t, 0, s.Totals.TransactionCount)
	})
}

func TestStatistics_Aggregate(t *testing.T) {
	d1 := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	d2 := d1.AddDate(0, 0, 1)
	txns := []*Transaction{
		txn(1, TransactionTypeDeposit, "1000.00", "1000.00", d1),
		txn(2, TransactionTypeDeposit, "500.00", "1500.00", d2),
		txn(3, TransactionTypeWithdrawal, "300.00", "1200.00", d2.Add(time.Hour)),
		txn(4, TransactionTypeTransferOut, "1100.00", "100.00", d2.Add(2*time.Hour)),
	}

	var s Statistics
	s.Aggregate(txns, time.UTC)

	assert.Equal(t, 4, s.TransactionCount)
	require.Contains(t, s.ByType, TransactionTypeDeposit)
	assert.Equal(t, 2, s.ByType[TransactionTypeDeposit].Count)
	assert.Equal(t, "1500.00", s.ByType[TransactionTypeDeposit].Total.String())
	assert.Equal(t, "750.00", s.ByType[TransactionTypeDeposit].Average.String())
	assert.Equal(t, "1500.00", s.TotalCredits.String())
	assert.Equal(t, "1400.00", s.TotalDebits.String())
	assert.Equal(t, "100.00", s.NetFlow.String())
	require.NotNil(t, s.LargestMovement)
	assert.Equal(t, int64(4), s.LargestMovement.ID)
	assert.Equal(t, "1000.00", s.LargestDeposit.String())
	assert.Equal(t, "300.00", s.LargestWithdrawal.String())
	require.Len(t, s.DailyActivity, 2)
	assert.Equal(t, "2024-03-01", s.DailyActivity[0].Date)
	assert.Equal(t, 3, s.DailyActivity[1].Count)
	assert.Equal(t, "2024-03-02", s.MostActiveDay)
	assert.Len(t, s.BalanceTrend, 4)
	assert.Equal(t, "100.00", s.BalanceTrend[3].Balance.String())
}

func TestStatistics_AggregateEmpty(t *testing.T) {
	var s Statistics
	s.Aggregate(nil, time.UTC)

	assert.Equal(t, 0, s.TransactionCount)
	assert.Nil(t, s.LargestMovement)
	assert.Empty(t, s.MostActiveDay)
	assert.NotNil(t, s.BalanceTrend)
	assert.True(t, s.NetFlow.IsZero())
}

func TestStatistics_BalanceTrendKeepsLastTen(t *testing.T) {
	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	var txns []*Transaction
	balance := money.Zero
	for i := 1; i <= 15; i++ {
		balance = balance.Add(money.MustParse("1"))
		txns = append(txns, txn(int64(i), TransactionTypeDeposit, "1", balance.String(), start.Add(time.Duration(i)*time.Minute)))
	}

	var s Statistics
	s.Aggregate(txns, time.UTC)

	require.Len(t, s.BalanceTrend, 10)
	assert.Equal(t, "6.00", s.BalanceTrend[0].Balance.String())
	assert.Equal(t, "15.00", s.BalanceTrend[9].Balance.String())
}

func TestReplay(t *testing.T) {
	ts := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	history := []*Transaction{
		txn(1, TransactionTypeDeposit, "25000.00", "25000.00", ts),
		txn(2, TransactionTypeTransferOut, "8000.00", "17000.00", ts.Add(time.Minute)),
		txn(3, TransactionTypeFee, "2.50", "16997.50", ts.Add(2*time.Minute)),
	}

	t.Run("consistent history", func(t *testing.T) {
		r := Replay(1, money.MustParse("16997.50"), history)
		assert.True(t, r.Consistent)
		assert.Equal(t, 3, r.TransactionsReplayed)
		assert.Empty(t, r.Mismatches)
		assert.Equal(t, "16997.50", r.ReplayedBalance.String())
	})

	t.Run("current balance drift", func(t *testing.T) {
		r := Replay(1, money.MustParse("17000.00"), history)
		assert.False(t, r.Consistent)
		assert.Empty(t, r.Mismatches)
	})

	t.Run("corrupted snapshot", func(t *testing.T) {
		broken := []*Transaction{
			history[0],
			txn(2, TransactionTypeTransferOut, "8000.00", "17500.00", ts.Add(time.Minute)),
		}
		r := Replay(1, money.MustParse("17500.00"), broken)
		assert.False(t, r.Consistent)
		require.Len(t, r.Mismatches, 1)
		assert.Equal(t, int64(2), r.Mismatches[0].TransactionID)
		assert.Equal(t, "17000.00", r.Mismatches[0].Expected.String())
	})
}
