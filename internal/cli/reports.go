package cli

import (
	"fmt"
	"sort"
	"text/tabwriter"
	"time"

	"github.com/personal-ledger/internal/domain/ledger"
	"github.com/spf13/cobra"
)

func (a *App) balanceCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "balance <id>",
		Short: "Print the current balance of an account",
		Args:  exactArgs(1, "id"),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			manager, err := a.ledger(cmd)
			if err != nil {
				return err
			}
			balance, err := manager.GetBalance(cmd.Context(), id)
			if err != nil {
				return err
			}

			p := a.printer(manager.Location())
			view := struct {
				AccountID int64  `json:"account_id"`
				Balance   string `json:"balance"`
			}{id, balance.String()}
			return p.print(view, func(tw *tabwriter.Writer) {
				fmt.Fprintln(tw, balance.Format())
			})
		},
	}
}

func (a *App) historyCommand() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "history <id>",
		Short: "List the most recent transactions, newest first",
		Args:  exactArgs(1, "id"),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			manager, err := a.ledger(cmd)
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("limit") {
				limit = a.defaultHistoryLimit()
			}
			txns, err := manager.GetAccountHistory(cmd.Context(), id, limit)
			if err != nil {
				return err
			}

			p := a.printer(manager.Location())
			return p.print(txns, func(tw *tabwriter.Writer) { p.transactions(tw, txns) })
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "number of records (default LEDGER_HISTORY_LIMIT)")
	return cmd
}

func (a *App) summaryCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "summary <id>",
		Short: "Lifetime totals and the latest transactions of an account",
		Args:  exactArgs(1, "id"),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			manager, err := a.ledger(cmd)
			if err != nil {
				return err
			}
			summary, err := manager.GetAccountSummary(cmd.Context(), id)
			if err != nil {
				return err
			}

			p := a.printer(manager.Location())
			return p.print(summary, func(tw *tabwriter.Writer) {
				p.account(tw, summary.Account)
				fmt.Fprintf(tw, "Total deposits:\t%s\n", summary.TotalDeposits.Format())
				fmt.Fprintf(tw, "Total withdrawals:\t%s\n", summary.TotalWithdrawals.Format())
				fmt.Fprintf(tw, "Transactions:\t%d\n", summary.TransactionCount)
				fmt.Fprintln(tw)
				p.transactions(tw, summary.RecentTransactions)
			})
		},
	}
}

func (a *App) statementCommand() *cobra.Command {
	var year, month int
	cmd := &cobra.Command{
		Use:   "statement <id>",
		Short: "Monthly statement with opening and closing balances",
		Args:  exactArgs(1, "id"),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			manager, err := a.ledger(cmd)
			if err != nil {
				return err
			}

			now := time.Now().In(manager.Location())
			if !cmd.Flags().Changed("year") {
				year = now.Year()
			}
			if !cmd.Flags().Changed("month") {
				month = int(now.Month())
			}
			statement, err := manager.GetMonthlyStatement(cmd.Context(), id, year, time.Month(month))
			if err != nil {
				return err
			}

			p := a.printer(manager.Location())
			return p.print(statement, func(tw *tabwriter.Writer) {
				fmt.Fprintf(tw, "Statement:\t%s %d\n", statement.Month, statement.Year)
				fmt.Fprintf(tw, "Account:\t%d (%s)\n", statement.AccountID, statement.AccountNumber)
				fmt.Fprintf(tw, "Opening balance:\t%s\n", statement.OpeningBalance.Format())
				fmt.Fprintf(tw, "Deposits:\t%s\n", statement.Totals.Deposits.Format())
				fmt.Fprintf(tw, "Withdrawals:\t%s\n", statement.Totals.Withdrawals.Format())
				fmt.Fprintf(tw, "Transfers in:\t%s\n", statement.Totals.TransfersIn.Format())
				fmt.Fprintf(tw, "Transfers out:\t%s\n", statement.Totals.TransfersOut.Format())
				fmt.Fprintf(tw, "Interest:\t%s\n", statement.Totals.Interest.Format())
				fmt.Fprintf(tw, "Fees:\t%s\n", statement.Totals.Fees.Format())
				fmt.Fprintf(tw, "Net change:\t%s\n", statement.Totals.NetChange.Format())
				fmt.Fprintf(tw, "Closing balance:\t%s\n", statement.ClosingBalance.Format())
				fmt.Fprintln(tw)
				p.transactions(tw, statement.Transactions)
			})
		},
	}
	cmd.Flags().IntVar(&year, "year", 0, "statement year (default current)")
	cmd.Flags().IntVar(&month, "month", 0, "statement month 1-12 (default current)")
	return cmd
}

func (a *App) statsCommand() *cobra.Command {
	var days int
	cmd := &cobra.Command{
		Use:   "stats <id>",
		Short: "Activity statistics over a trailing window of days",
		Args:  exactArgs(1, "id"),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			manager, err := a.ledger(cmd)
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("days") {
				days = a.defaultStatisticsDays()
			}
			stats, err := manager.GetAccountStatistics(cmd.Context(), id, days)
			if err != nil {
				return err
			}

			p := a.printer(manager.Location())
			return p.print(stats, func(tw *tabwriter.Writer) {
				fmt.Fprintf(tw, "Window:\t%d days, %s to %s\n", stats.Days, p.time(stats.PeriodStart), p.time(stats.PeriodEnd))
				fmt.Fprintf(tw, "Transactions:\t%d\n", stats.TransactionCount)
				fmt.Fprintf(tw, "Credits:\t%s\n", stats.TotalCredits.Format())
				fmt.Fprintf(tw, "Debits:\t%s\n", stats.TotalDebits.Format())
				fmt.Fprintf(tw, "Net flow:\t%s\n", stats.NetFlow.Format())
				fmt.Fprintf(tw, "Largest deposit:\t%s\n", stats.LargestDeposit.Format())
				fmt.Fprintf(tw, "Largest withdrawal:\t%s\n", stats.LargestWithdrawal.Format())
				if stats.MostActiveDay != "" {
					fmt.Fprintf(tw, "Most active day:\t%s\n", stats.MostActiveDay)
				}
				if len(stats.ByType) == 0 {
					return
				}

				types := make([]ledger.TransactionType, 0, len(stats.ByType))
				for t := range stats.ByType {
					types = append(types, t)
				}
				sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })

				fmt.Fprintln(tw)
				fmt.Fprintln(tw, "TYPE\tCOUNT\tTOTAL\tAVERAGE")
				for _, t := range types {
					s := stats.ByType[t]
					fmt.Fprintf(tw, "%s\t%d\t%s\t%s\n", t, s.Count, s.Total.Format(), s.Average.Format())
				}
			})
		},
	}
	cmd.Flags().IntVar(&days, "days", 0, "window length in days (default LEDGER_STATISTICS_DAYS)")
	return cmd
}

// verifyCommand replays the history of one account, or of every account when no id is given
func (a *App) verifyCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "verify [id]",
		Short: "Replay transaction history and check it against stored balances",
		Args:  rangeArgs(0, 1),
		RunE: func(cmd *cobra.Command, args []string) error {
			manager, err := a.ledger(cmd)
			if err != nil {
				return err
			}

			var ids []int64
			if len(args) == 1 {
				id, err := parseID(args[0])
				if err != nil {
					return err
				}
				ids = append(ids, id)
			} else {
				accounts, err := manager.ListAccounts(cmd.Context())
				if err != nil {
					return err
				}
				for _, acc := range accounts {
					ids = append(ids, acc.ID)
				}
			}

			results := make([]*ledger.Reconciliation, 0, len(ids))
			failed := 0
			for _, id := range ids {
				result, err := manager.ReconcileAccount(cmd.Context(), id)
				if err != nil {
					return err
				}
				if !result.Consistent {
					failed++
				}
				results = append(results, result)
			}

			p := a.printer(manager.Location())
			err = p.print(results, func(tw *tabwriter.Writer) {
				fmt.Fprintln(tw, "ACCOUNT\tREPLAYED\tBALANCE\tRECORDS\tRESULT")
				for _, r := range results {
					verdict := "ok"
					if !r.Consistent {
						verdict = fmt.Sprintf("MISMATCH (%d)", len(r.Mismatches))
					}
					fmt.Fprintf(tw, "%d\t%s\t%s\t%d\t%s\n",
						r.AccountID, r.ReplayedBalance.Format(), r.CurrentBalance.Format(), r.TransactionsReplayed, verdict)
				}
			})
			if err != nil {
				return err
			}
			if failed > 0 {
				return fmt.Errorf("ledger history does not reconcile for %d account(s)", failed)
			}
			return nil
		},
	}
}
