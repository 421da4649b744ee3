package cli

import (
	"fmt"

	"github.com/personal-ledger/internal/platform/persistence"
	"github.com/spf13/cobra"
)

func (a *App) migrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending PostgreSQL schema migrations",
		Args:  exactArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := a.loadConfig(cmd)
			if err != nil {
				return err
			}
			if err := persistence.RunMigrations(cfg.Postgres.URL, cfg.Postgres.MigrationsPath); err != nil {
				return err
			}
			a.logger.Info("Migrations applied", "path", cfg.Postgres.MigrationsPath)
			fmt.Fprintln(a.out, "Schema is up to date")
			return nil
		},
	}
}
