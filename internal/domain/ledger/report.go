package ledger

import (
	"sort"
	"time"

	"github.com/personal-ledger/internal/domain/money"
)

const balanceTrendSize = 10

// StatementTotals aggregates one statement period by movement kind
type StatementTotals struct {
	Deposits         money.Money `json:"deposits"`
	Withdrawals      money.Money `json:"withdrawals"`
	TransfersIn      money.Money `json:"transfers_in"`  // Includes bulk legs
	TransfersOut     money.Money `json:"transfers_out"` // Includes bulk payouts
	Interest         money.Money `json:"interest"`
	Fees             money.Money `json:"fees"`
	NetChange        money.Money `json:"net_change"`
	TransactionCount int         `json:"transaction_count"`
}

// Statement is the calendar-month view of an account
type Statement struct {
	AccountID      int64           `json:"account_id"`
	AccountNumber  string          `json:"account_number"`
	Year           int             `json:"year"`
	Month          time.Month      `json:"month"`
	PeriodStart    time.Time       `json:"period_start"`
	PeriodEnd      time.Time       `json:"period_end"`
	OpeningBalance money.Money     `json:"opening_balance"`
	ClosingBalance money.Money     `json:"closing_balance"`
	Totals         StatementTotals `json:"totals"`
	Transactions   []*Transaction  `json:"transactions"`
}

// Summarize fills the closing balance and totals from the opening balance and the
// ordered in-period transactions.
func (s *Statement) Summarize() {
	totals := StatementTotals{TransactionCount: len(s.Transactions)}
	closing := s.OpeningBalance

	for _, txn := range s.Transactions {
		switch txn.Type {
		case TransactionTypeDeposit:
			totals.Deposits = totals.Deposits.Add(txn.Amount)
		case TransactionTypeWithdrawal:
			totals.Withdrawals = totals.Withdrawals.Add(txn.Amount)
		case TransactionTypeTransferIn, TransactionTypeBulkTransferIn:
			totals.TransfersIn = totals.TransfersIn.Add(txn.Amount)
		case TransactionTypeTransferOut, TransactionTypeBulkTransferOut:
			totals.TransfersOut = totals.TransfersOut.Add(txn.Amount)
		case TransactionTypeInterest:
			totals.Interest = totals.Interest.Add(txn.Amount)
		case TransactionTypeFee:
			totals.Fees = totals.Fees.Add(txn.Amount)
		}
		totals.NetChange = totals.NetChange.Add(txn.SignedAmount())
		closing = txn.BalanceAfter
	}

	s.Totals = totals
	s.ClosingBalance = closing
}

// TypeSummary aggregates one transaction type
type TypeSummary struct {
	Count   int         `json:"count"`
	Total   money.Money `json:"total"`
	Average money.Money `json:"average"`
}

// DailyActivity aggregates one calendar day
type DailyActivity struct {
	Date    string      `json:"date"` // YYYY-MM-DD in the ledger location
	Count   int         `json:"count"`
	Credits money.Money `json:"credits"`
	Debits  money.Money `json:"debits"`
}

// BalancePoint is one sample of the balance trend
type BalancePoint struct {
	Timestamp time.Time   `json:"timestamp"`
	Balance   money.Money `json:"balance"`
}

// Statistics aggregates the history of an account over a trailing window
type Statistics struct {
	AccountID         int64                           `json:"account_id"`
	Days              int                             `json:"days"`
	PeriodStart       time.Time                       `json:"period_start"`
	PeriodEnd         time.Time                       `json:"period_end"`
	TransactionCount  int                             `json:"transaction_count"`
	ByType            map[TransactionType]TypeSummary `json:"by_type"`
	TotalCredits      money.Money                     `json:"total_credits"`
	TotalDebits       money.Money                     `json:"total_debits"`
	NetFlow           money.Money                     `json:"net_flow"`
	LargestMovement   *Transaction                    `json:"largest_movement,omitempty"`
	LargestDeposit    money.Money                     `json:"largest_deposit"`
	LargestWithdrawal money.Money                     `json:"largest_withdrawal"`
	DailyActivity     []DailyActivity                 `json:"daily_activity"`
	MostActiveDay     string                          `json:"most_active_day,omitempty"`
	BalanceTrend      []BalancePoint                  `json:"balance_trend"`
}

// Aggregate computes every statistic from transactions in commit order.
// Days are bucketed in loc.
func (s *Statistics) Aggregate(txns []*Transaction, loc *time.Location) {
	s.TransactionCount = len(txns)
	s.ByType = make(map[TransactionType]TypeSummary)
	s.DailyActivity = []DailyActivity{}
	s.BalanceTrend = []BalancePoint{}

	days := make(map[string]*DailyActivity)
	for _, txn := range txns {
		summary := s.ByType[txn.Type]
		summary.Count++
		summary.Total = summary.Total.Add(txn.Amount)
		s.ByType[txn.Type] = summary

		day := txn.Timestamp.In(loc).Format(time.DateOnly)
		activity, ok := days[day]
		if !ok {
			activity = &DailyActivity{Date: day}
			days[day] = activity
		}
		activity.Count++

		if txn.Type.IsCredit() {
			s.TotalCredits = s.TotalCredits.Add(txn.Amount)
			activity.Credits = activity.Credits.Add(txn.Amount)
		} else {
			s.TotalDebits = s.TotalDebits.Add(txn.Amount)
			activity.Debits = activity.Debits.Add(txn.Amount)
		}

		if s.LargestMovement == nil || txn.Amount.GreaterThan(s.LargestMovement.Amount) {
			s.LargestMovement = txn
		}
		switch txn.Type {
		case TransactionTypeDeposit:
			s.LargestDeposit = money.Max(s.LargestDeposit, txn.Amount)
		case TransactionTypeWithdrawal:
			s.LargestWithdrawal = money.Max(s.LargestWithdrawal, txn.Amount)
		}
	}

	for t, summary := range s.ByType {
		summary.Average = summary.Total.Div(int64(summary.Count))
		s.ByType[t] = summary
	}
	s.NetFlow = s.TotalCredits.Sub(s.TotalDebits)

	for _, activity := range days {
		s.DailyActivity = append(s.DailyActivity, *activity)
	}
	sort.Slice(s.DailyActivity, func(i, j int) bool {
		return s.DailyActivity[i].Date < s.DailyActivity[j].Date
	})
	best := 0
	for _, activity := range s.DailyActivity {
		if activity.Count > best {
			best = activity.Count
			s.MostActiveDay = activity.Date
		}
	}

	start := max(len(txns)-balanceTrendSize, 0)
	for _, txn := range txns[start:] {
		s.BalanceTrend = append(s.BalanceTrend, BalancePoint{Timestamp: txn.Timestamp, Balance: txn.BalanceAfter})
	}
}

// Mismatch is a record whose balance_after disagrees with the replayed balance
type Mismatch struct {
	TransactionID int64       `json:"transaction_id"`
	Expected      money.Money `json:"expected"`
	Recorded      money.Money `json:"recorded"`
}

// Reconciliation is the result of replaying an account history from creation
type Reconciliation struct {
	AccountID            int64       `json:"account_id"`
	TransactionsReplayed int         `json:"transactions_replayed"`
	ReplayedBalance      money.Money `json:"replayed_balance"`
	CurrentBalance       money.Money `json:"current_balance"`
	Mismatches           []Mismatch  `json:"mismatches"`
	Consistent           bool        `json:"consistent"`
}

// Replay recomputes the balance from zero over the full history and compares
// every snapshot plus the final balance with what is recorded.
func Replay(accountID int64, current money.Money, history []*Transaction) *Reconciliation {
	r := &Reconciliation{
		AccountID:            accountID,
		TransactionsReplayed: len(history),
		CurrentBalance:       current,
		Mismatches:           []Mismatch{},
	}

	running := money.Zero
	for _, txn := range history {
		running = running.Add(txn.SignedAmount())
		if !running.Equal(txn.BalanceAfter) {
			r.Mismatches = append(r.Mismatches, Mismatch{TransactionID: txn.ID, Expected: running, Recorded: txn.BalanceAfter})
			// continue from the recorded snapshot so one bad row is reported once
			running = txn.BalanceAfter
		}
	}

	r.ReplayedBalance = running
	r.Consistent = len(r.Mismatches) == 0 && running.Equal(current)
	return r
}
