package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func (a *App) newMigrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.manager.RunMigrations(cmd.Context()); err != nil {
				return fmt.Errorf("migration error: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "migrations applied (%s)\n", a.config.StorageBackend)
			return nil
		},
	}
}
