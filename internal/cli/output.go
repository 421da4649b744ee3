package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/personal-ledger/internal/domain/account"
	"github.com/personal-ledger/internal/domain/ledger"
	"github.com/personal-ledger/internal/domain/money"
)

const timeLayout = "2006-01-02 15:04:05"

// printer renders command results as aligned text or indented JSON
type printer struct {
	w    io.Writer
	json bool
	loc  *time.Location
}

func (a *App) printer(loc *time.Location) *printer {
	return &printer{w: a.out, json: a.output == outputJSON, loc: loc}
}

func (p *printer) print(v any, text func(tw *tabwriter.Writer)) error {
	if p.json {
		enc := json.NewEncoder(p.w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}

	tw := tabwriter.NewWriter(p.w, 0, 0, 2, ' ', 0)
	text(tw)
	return tw.Flush()
}

func (p *printer) time(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.In(p.loc).Format(timeLayout)
}

func (p *printer) account(tw *tabwriter.Writer, acc *account.Account) {
	fmt.Fprintf(tw, "ID:\t%d\n", acc.ID)
	fmt.Fprintf(tw, "Number:\t%s\n", acc.AccountNumber)
	fmt.Fprintf(tw, "Customer:\t%s\n", acc.CustomerName)
	fmt.Fprintf(tw, "Type:\t%s\n", acc.Type)
	fmt.Fprintf(tw, "Status:\t%s\n", status(acc))
	fmt.Fprintf(tw, "Balance:\t%s\n", acc.Balance.Format())
	fmt.Fprintf(tw, "Minimum balance:\t%s\n", acc.MinimumBalance.Format())
	fmt.Fprintf(tw, "Available:\t%s\n", acc.Available().Format())
	fmt.Fprintf(tw, "Daily limit:\t%s\n", optionalAmount(acc.DailyWithdrawalLimit))
	fmt.Fprintf(tw, "Interest rate:\t%s\n", acc.InterestRate.String())
	if acc.LastInterestCalculation != nil {
		fmt.Fprintf(tw, "Interest accrued to:\t%s\n", p.time(*acc.LastInterestCalculation))
	}
	fmt.Fprintf(tw, "Created:\t%s\n", p.time(acc.CreatedAt))
	fmt.Fprintf(tw, "Updated:\t%s\n", p.time(acc.UpdatedAt))
}

func (p *printer) accounts(tw *tabwriter.Writer, accounts []*account.Account) {
	fmt.Fprintln(tw, "ID\tNUMBER\tCUSTOMER\tTYPE\tSTATUS\tBALANCE")
	for _, acc := range accounts {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\n",
			acc.ID, acc.AccountNumber, acc.CustomerName, acc.Type, status(acc), acc.Balance.Format())
	}
}

func (p *printer) transaction(tw *tabwriter.Writer, txn *ledger.Transaction) {
	fmt.Fprintf(tw, "Transaction:\t%d\n", txn.ID)
	fmt.Fprintf(tw, "Type:\t%s\n", txn.Type)
	fmt.Fprintf(tw, "Amount:\t%s\n", txn.Amount.Format())
	fmt.Fprintf(tw, "Balance after:\t%s\n", txn.BalanceAfter.Format())
	if txn.RelatedAccountID != nil {
		fmt.Fprintf(tw, "Counterparty:\t%d\n", *txn.RelatedAccountID)
	}
	fmt.Fprintf(tw, "Reference:\t%s\n", txn.Reference)
	fmt.Fprintf(tw, "Description:\t%s\n", txn.Description)
	fmt.Fprintf(tw, "Time:\t%s\n", p.time(txn.Timestamp))
}

func (p *printer) transactions(tw *tabwriter.Writer, txns []*ledger.Transaction) {
	if len(txns) == 0 {
		fmt.Fprintln(tw, "No transactions")
		return
	}
	fmt.Fprintln(tw, "ID\tTIME\tTYPE\tAMOUNT\tBALANCE\tDESCRIPTION")
	for _, txn := range txns {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\n",
			txn.ID, p.time(txn.Timestamp), txn.Type, txn.SignedAmount().Format(), txn.BalanceAfter.Format(), txn.Description)
	}
}

func status(acc *account.Account) string {
	switch {
	case !acc.IsActive:
		return "inactive"
	case acc.IsFrozen:
		return "frozen"
	default:
		return "active"
	}
}

func optionalAmount(m *money.Money) string {
	if m == nil {
		return "none"
	}
	return m.Format()
}
