package cli

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/personal-ledger/internal/account_manager"
	"github.com/personal-ledger/internal/domain/money"
	"github.com/spf13/cobra"
)

type movementFunc func(m *account_manager.Manager, ctx context.Context, id int64, amount money.Money, description string, opts ...account_manager.OperationOption) (*account_manager.MovementResult, error)

func (a *App) depositCommand() *cobra.Command {
	return a.movementCommand("deposit", "Credit funds to an account", "Deposit completed",
		(*account_manager.Manager).Deposit)
}

func (a *App) withdrawCommand() *cobra.Command {
	return a.movementCommand("withdraw", "Debit funds, honouring the minimum balance and daily limit", "Withdrawal completed",
		(*account_manager.Manager).Withdraw)
}

func (a *App) feeCommand() *cobra.Command {
	return a.movementCommand("fee", "Charge a fee, honouring the minimum balance", "Fee charged",
		(*account_manager.Manager).ChargeFee)
}

// movementCommand builds the single-account movements
func (a *App) movementCommand(name, short, done string, op movementFunc) *cobra.Command {
	var description, reference string
	cmd := &cobra.Command{
		Use:   name + " <id> <amount>",
		Short: short,
		Args:  exactArgs(2, "id", "amount"),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			amount, err := parseAmount(args[1])
			if err != nil {
				return err
			}

			manager, err := a.ledger(cmd)
			if err != nil {
				return err
			}
			result, err := op(manager, cmd.Context(), id, amount, description, operationOptions(reference)...)
			if err != nil {
				return err
			}

			p := a.printer(manager.Location())
			return p.print(result, func(tw *tabwriter.Writer) {
				fmt.Fprintln(tw, done)
				p.transaction(tw, result.Transaction)
				fmt.Fprintf(tw, "New balance:\t%s\n", result.Account.Balance.Format())
			})
		},
	}
	cmd.Flags().StringVar(&description, "description", "", "free text stored on the transaction")
	cmd.Flags().StringVar(&reference, "reference", "", "idempotency reference")
	return cmd
}

func (a *App) transferCommand() *cobra.Command {
	var description, reference string
	cmd := &cobra.Command{
		Use:   "transfer <from-id> <to-id> <amount>",
		Short: "Move funds between two accounts atomically",
		Args:  exactArgs(3, "from-id", "to-id", "amount"),
		RunE: func(cmd *cobra.Command, args []string) error {
			from, err := parseID(args[0])
			if err != nil {
				return err
			}
			to, err := parseID(args[1])
			if err != nil {
				return err
			}
			amount, err := parseAmount(args[2])
			if err != nil {
				return err
			}

			manager, err := a.ledger(cmd)
			if err != nil {
				return err
			}
			result, err := manager.Transfer(cmd.Context(), from, to, amount, description, operationOptions(reference)...)
			if err != nil {
				return err
			}

			p := a.printer(manager.Location())
			return p.print(result, func(tw *tabwriter.Writer) {
				fmt.Fprintln(tw, "Transfer completed")
				fmt.Fprintf(tw, "Reference:\t%s\n", result.Reference)
				fmt.Fprintf(tw, "Amount:\t%s\n", amount.Format())
				fmt.Fprintf(tw, "From:\t%d (%s)\tbalance %s\n", result.Source.ID, result.Source.AccountNumber, result.Source.Balance.Format())
				fmt.Fprintf(tw, "To:\t%d (%s)\tbalance %s\n", result.Destination.ID, result.Destination.AccountNumber, result.Destination.Balance.Format())
			})
		},
	}
	cmd.Flags().StringVar(&description, "description", "", "free text stored on both records")
	cmd.Flags().StringVar(&reference, "reference", "", "idempotency reference")
	return cmd
}

func (a *App) bulkTransferCommand() *cobra.Command {
	var (
		legs        []string
		description string
		reference   string
	)
	cmd := &cobra.Command{
		Use:   "bulk-transfer <from-id> --to <id:amount> [--to <id:amount> ...]",
		Short: "Pay several accounts from one source, all or nothing",
		Args:  exactArgs(1, "from-id"),
		RunE: func(cmd *cobra.Command, args []string) error {
			from, err := parseID(args[0])
			if err != nil {
				return err
			}
			if len(legs) == 0 {
				return usageErrorf("bulk-transfer needs at least one --to id:amount")
			}
			transfers := make([]account_manager.TransferLeg, 0, len(legs))
			for _, raw := range legs {
				leg, err := parseLeg(raw)
				if err != nil {
					return err
				}
				transfers = append(transfers, leg)
			}

			manager, err := a.ledger(cmd)
			if err != nil {
				return err
			}
			result, err := manager.BulkTransfer(cmd.Context(), from, transfers, description, operationOptions(reference)...)
			if err != nil {
				return err
			}

			p := a.printer(manager.Location())
			return p.print(result, func(tw *tabwriter.Writer) {
				fmt.Fprintln(tw, "Bulk transfer completed")
				fmt.Fprintf(tw, "Reference:\t%s\n", result.Reference)
				fmt.Fprintf(tw, "Total:\t%s\n", result.Total.Format())
				fmt.Fprintf(tw, "Source balance:\t%s\n", result.Source.Balance.Format())
				fmt.Fprintln(tw)
				fmt.Fprintln(tw, "TO\tAMOUNT\tTRANSACTION")
				for _, credit := range result.Credits {
					fmt.Fprintf(tw, "%d\t%s\t%d\n", credit.AccountID, credit.Amount.Format(), credit.ID)
				}
			})
		},
	}
	cmd.Flags().StringArrayVar(&legs, "to", nil, "destination as id:amount, repeatable")
	cmd.Flags().StringVar(&description, "description", "", "free text stored on every record")
	cmd.Flags().StringVar(&reference, "reference", "", "idempotency reference")
	return cmd
}

func (a *App) accrueInterestCommand() *cobra.Command {
	var reference string
	cmd := &cobra.Command{
		Use:   "accrue-interest <id>",
		Short: "Credit the interest earned since the last accrual",
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
			result, err := manager.CalculateInterest(cmd.Context(), id, operationOptions(reference)...)
			if err != nil {
				return err
			}

			p := a.printer(manager.Location())
			return p.print(result, func(tw *tabwriter.Writer) {
				if result.Transaction == nil {
					fmt.Fprintln(tw, "No interest due")
				} else {
					fmt.Fprintln(tw, "Interest credited")
				}
				fmt.Fprintf(tw, "Interest:\t%s\n", result.Interest.Format())
				fmt.Fprintf(tw, "Period:\t%s to %s\n", p.time(result.PeriodStart), p.time(result.PeriodEnd))
				fmt.Fprintf(tw, "New balance:\t%s\n", result.Account.Balance.Format())
			})
		},
	}
	cmd.Flags().StringVar(&reference, "reference", "", "idempotency reference")
	return cmd
}
