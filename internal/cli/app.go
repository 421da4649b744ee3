// Package cli implements the ledger command line tool on top of the account manager.
package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/personal-ledger/internal/account_manager"
	"github.com/personal-ledger/internal/config"
	"github.com/personal-ledger/internal/data/memory"
	"github.com/personal-ledger/internal/data/postgres"
	"github.com/personal-ledger/internal/domain/account"
	"github.com/personal-ledger/internal/domain/ledger"
	"github.com/personal-ledger/internal/logger"
	"github.com/personal-ledger/internal/platform/persistence"
	"github.com/spf13/cobra"
)

const (
	flagConfig   = "config"
	flagStore    = "store"
	flagLogLevel = "log-level"
	flagOutput   = "output"

	outputText = "text"
	outputJSON = "json"

	fallbackHistoryLimit   = 20
	fallbackStatisticsDays = 30
)

// App owns the command tree and the resources opened while it runs
type App struct {
	out     io.Writer
	errOut  io.Writer
	cfg     *config.Config
	logger  *slog.Logger
	manager *account_manager.Manager
	closers []func()

	configFile string
	store      string
	logLevel   string
	output     string
}

// Option configures an App
type Option func(*App)

// WithManager runs every command against manager instead of a configured store
func WithManager(manager *account_manager.Manager) Option {
	return func(a *App) { a.manager = manager }
}

// WithOutput redirects command output and error reports
func WithOutput(out, errOut io.Writer) Option {
	return func(a *App) {
		a.out = out
		a.errOut = errOut
	}
}

// New creates an App writing to the process streams
func New(opts ...Option) *App {
	a := &App{
		out:    os.Stdout,
		errOut: os.Stderr,
		output: outputText,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Run executes args and returns the process exit code
func (a *App) Run(ctx context.Context, args []string) int {
	defer a.Close()

	root := a.Command()
	root.SetArgs(args)

	err := root.ExecuteContext(ctx)
	if err == nil {
		return ExitSuccess
	}

	fmt.Fprintf(a.errOut, "Error: %v\n", err)
	if isUsageError(err) {
		fmt.Fprintf(a.errOut, "Run '%s --help' for usage.\n", root.CommandPath())
	}
	if a.logger != nil && ExitCode(err) == ExitFailure {
		a.logger.Error("Command failed", "error", err)
	}
	return ExitCode(err)
}

// Close releases the store and any connection opened by a command
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}

// Command builds the root command with every subcommand attached
func (a *App) Command() *cobra.Command {
	root := &cobra.Command{
		Use:   "ledger",
		Short: "Personal ledger: accounts, movements of funds and reports",
		Long: "ledger manages accounts and an append-only transaction history.\n" +
			"Amounts are decimal numbers with at most two fractional digits; a currency\n" +
			"symbol and thousands separators are accepted, e.g. $1,500.00.",
		Args:          cobra.ArbitraryArgs,
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) > 0 {
				return usageErrorf("unknown command %q for %q", args[0], cmd.CommandPath())
			}
			return cmd.Help()
		},
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			switch a.output {
			case outputText, outputJSON:
				return nil
			default:
				return usageErrorf("--output must be %s or %s", outputText, outputJSON)
			}
		},
	}
	root.SetOut(a.out)
	root.SetErr(a.errOut)
	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return usageError{err: err}
	})

	flags := root.PersistentFlags()
	flags.StringVar(&a.configFile, flagConfig, "", "path to a .env configuration file")
	flags.StringVar(&a.store, flagStore, "", "ledger store: postgres or memory (overrides LEDGER_STORE)")
	flags.StringVar(&a.logLevel, flagLogLevel, "", "log level: debug, info, warn or error (overrides LOG_LEVEL)")
	flags.StringVarP(&a.output, flagOutput, "o", outputText, "output format: text or json")

	root.AddCommand(
		a.createAccountCommand(),
		a.showAccountCommand(),
		a.listAccountsCommand(),
		a.depositCommand(),
		a.withdrawCommand(),
		a.feeCommand(),
		a.transferCommand(),
		a.bulkTransferCommand(),
		a.freezeCommand(),
		a.unfreezeCommand(),
		a.setLimitCommand(),
		a.setInterestRateCommand(),
		a.accrueInterestCommand(),
		a.deactivateCommand(),
		a.balanceCommand(),
		a.historyCommand(),
		a.summaryCommand(),
		a.statementCommand(),
		a.statsCommand(),
		a.verifyCommand(),
		a.migrateCommand(),
	)
	return root
}

// loadConfig reads configuration once. Flags that were set override the file and environment.
func (a *App) loadConfig(cmd *cobra.Command) (*config.Config, error) {
	if a.cfg != nil {
		return a.cfg, nil
	}

	cfg, err := config.Load(config.LoadOptions{
		Name:  "ledger",
		File:  a.configFile,
		Flags: cmd.Flags(),
		FlagKeys: map[string]string{
			"LEDGER_STORE": flagStore,
			"LOG_LEVEL":    flagLogLevel,
		},
		Defaults: map[string]any{
			"APP_NAME":   "ledger",
			"LOG_OUTPUT": "stderr",
			"LOG_LEVEL":  "warn",
		},
	})
	if err != nil {
		return nil, usageError{err: err}
	}

	a.cfg = cfg
	a.logger = logger.NewLogger(cfg)
	return cfg, nil
}

// ledger returns the account manager, opening the configured store on first use
func (a *App) ledger(cmd *cobra.Command) (*account_manager.Manager, error) {
	if a.manager != nil {
		return a.manager, nil
	}

	cfg, err := a.loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	loc, err := cfg.Ledger.Location()
	if err != nil {
		return nil, usageError{err: err}
	}

	var store ledger.Store
	switch cfg.Ledger.Store {
	case config.StoreMemory:
		a.logger.Warn("Using the in-memory ledger store, nothing outlives this command")
		store = memory.NewStore(a.logger)
	default:
		db, err := persistence.NewPostgresDB(cmd.Context(), a.logger, &cfg.Postgres)
		if err != nil {
			return nil, fmt.Errorf("failed to open ledger store: %w", err)
		}
		a.closers = append(a.closers, db.Close)
		store = postgres.NewStore(a.logger, db, cfg.Ledger)
	}

	a.manager = account_manager.NewManager(store, a.logger,
		account_manager.WithLocation(loc),
		account_manager.WithNumberGenerator(account.NewNumberGenerator(cfg.Ledger.AccountNumberPrefix)),
	)
	return a.manager, nil
}

// defaultHistoryLimit and defaultStatisticsDays come from configuration when it was loaded
func (a *App) defaultHistoryLimit() int {
	if a.cfg != nil {
		return a.cfg.Ledger.HistoryLimit
	}
	return fallbackHistoryLimit
}

func (a *App) defaultStatisticsDays() int {
	if a.cfg != nil {
		return a.cfg.Ledger.StatisticsDays
	}
	return fallbackStatisticsDays
}
