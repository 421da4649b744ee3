package cli

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"text/tabwriter"

	"github.com/personal-ledger/internal/account_manager"
	"github.com/personal-ledger/internal/domain/account"
	"github.com/personal-ledger/internal/domain/money"
	"github.com/personal-ledger/internal/domain/shared"
	"github.com/spf13/cobra"
)

func (a *App) createAccountCommand() *cobra.Command {
	var (
		accountType    string
		initialDeposit string
		minimumBalance string
		interestRate   string
		dailyLimit     string
		reference      string
	)

	cmd := &cobra.Command{
		Use:   "create-account <customer-name>",
		Short: "Open an account, optionally with an opening deposit",
		Args:  exactArgs(1, "customer-name"),
		RunE: func(cmd *cobra.Command, args []string) error {
			params := account_manager.CreateAccountParams{
				CustomerName: args[0],
				Type:         account.Type(accountType),
			}

			var err error
			if params.InitialDeposit, err = parseAmount(initialDeposit); err != nil {
				return err
			}
			if params.MinimumBalance, err = parseAmount(minimumBalance); err != nil {
				return err
			}
			if params.InterestRate, err = parseRate(interestRate); err != nil {
				return err
			}
			if dailyLimit != "" {
				limit, err := parseAmount(dailyLimit)
				if err != nil {
					return err
				}
				params.DailyWithdrawalLimit = &limit
			}

			manager, err := a.ledger(cmd)
			if err != nil {
				return err
			}
			acc, err := manager.CreateAccount(cmd.Context(), params, operationOptions(reference)...)
			if err != nil {
				return err
			}

			return a.printAccount(manager, "Account created", acc)
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&accountType, "type", "t", string(account.TypeChecking), "account type: checking, savings or business")
	flags.StringVarP(&initialDeposit, "initial-deposit", "d", "0", "opening deposit")
	flags.StringVar(&minimumBalance, "minimum-balance", "0", "balance floor the account must keep")
	flags.StringVar(&interestRate, "interest-rate", "0", "annual interest rate as a fraction, e.g. 0.025")
	flags.StringVar(&dailyLimit, "daily-limit", "", "daily withdrawal limit (none when omitted)")
	flags.StringVar(&reference, "reference", "", "idempotency reference")
	return cmd
}

func (a *App) showAccountCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show-account <id|account-number>",
		Short: "Show one account by id or account number",
		Args:  exactArgs(1, "id|account-number"),
		RunE: func(cmd *cobra.Command, args []string) error {
			manager, err := a.ledger(cmd)
			if err != nil {
				return err
			}

			var acc *account.Account
			if id, parseErr := strconv.ParseInt(args[0], 10, 64); parseErr == nil {
				acc, err = manager.GetAccount(cmd.Context(), id)
			} else {
				acc, err = manager.GetAccountByNumber(cmd.Context(), args[0])
			}
			if err != nil {
				return err
			}

			p := a.printer(manager.Location())
			return p.print(acc, func(tw *tabwriter.Writer) { p.account(tw, acc) })
		},
	}
}

func (a *App) listAccountsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list-accounts",
		Short: "List every account in id order",
		Args:  exactArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			manager, err := a.ledger(cmd)
			if err != nil {
				return err
			}
			accounts, err := manager.ListAccounts(cmd.Context())
			if err != nil {
				return err
			}

			p := a.printer(manager.Location())
			return p.print(accounts, func(tw *tabwriter.Writer) {
				if len(accounts) == 0 {
					fmt.Fprintln(tw, "No accounts")
					return
				}
				p.accounts(tw, accounts)
			})
		},
	}
}

func (a *App) freezeCommand() *cobra.Command {
	return a.stateCommand("freeze", "Freeze an account, blocking every movement of funds", "Account frozen",
		(*account_manager.Manager).FreezeAccount)
}

func (a *App) unfreezeCommand() *cobra.Command {
	return a.stateCommand("unfreeze", "Lift a freeze", "Account unfrozen",
		(*account_manager.Manager).UnfreezeAccount)
}

// stateCommand builds freeze and unfreeze, which differ only in the manager call
func (a *App) stateCommand(
	name, short, done string,
	op func(m *account_manager.Manager, ctx context.Context, id int64, reason string) (*account.Account, error),
) *cobra.Command {
	var reason string
	cmd := &cobra.Command{
		Use:   name + " <id>",
		Short: short,
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
			acc, err := op(manager, cmd.Context(), id, reason)
			if err != nil {
				return err
			}
			return a.printAccount(manager, done, acc)
		},
	}
	cmd.Flags().StringVar(&reason, "reason", "", "reason recorded in the audit trail")
	return cmd
}

func (a *App) setLimitCommand() *cobra.Command {
	var none bool
	cmd := &cobra.Command{
		Use:   "set-limit <id> [amount]",
		Short: "Set or remove the daily withdrawal limit",
		Args:  rangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if none == (len(args) == 2) {
				return usageErrorf("set-limit takes either an amount or --none")
			}
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			var limit *money.Money
			if !none {
				value, err := parseAmount(args[1])
				if err != nil {
					return err
				}
				limit = &value
			}

			manager, err := a.ledger(cmd)
			if err != nil {
				return err
			}
			acc, err := manager.SetDailyWithdrawalLimit(cmd.Context(), id, limit)
			if err != nil {
				return err
			}
			return a.printAccount(manager, "Daily withdrawal limit: "+optionalAmount(acc.DailyWithdrawalLimit), acc)
		},
	}
	cmd.Flags().BoolVar(&none, "none", false, "remove the limit")
	return cmd
}

func (a *App) setInterestRateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "set-interest-rate <id> <rate>",
		Short: "Change the annual interest rate, given as a fraction",
		Args:  exactArgs(2, "id", "rate"),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			rate, err := parseRate(args[1])
			if err != nil {
				return err
			}

			manager, err := a.ledger(cmd)
			if err != nil {
				return err
			}
			acc, err := manager.SetInterestRate(cmd.Context(), id, rate)
			if err != nil {
				return err
			}
			return a.printAccount(manager, "Interest rate: "+acc.InterestRate.String(), acc)
		},
	}
}

func (a *App) deactivateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "deactivate <id>",
		Short: "Close an account holding a zero balance",
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
			acc, err := manager.DeactivateAccount(cmd.Context(), id)
			if err != nil {
				if errors.Is(err, shared.ErrNonZeroBalance{}) {
					return fmt.Errorf("%w (withdraw or transfer the remaining funds first)", err)
				}
				return err
			}
			return a.printAccount(manager, "Account deactivated", acc)
		},
	}
}

func (a *App) printAccount(manager *account_manager.Manager, headline string, acc *account.Account) error {
	p := a.printer(manager.Location())
	return p.print(acc, func(tw *tabwriter.Writer) {
		fmt.Fprintln(tw, headline)
		p.account(tw, acc)
	})
}

func operationOptions(reference string) []account_manager.OperationOption {
	if reference == "" {
		return nil
	}
	return []account_manager.OperationOption{account_manager.WithReference(reference)}
}
