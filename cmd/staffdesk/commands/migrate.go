package commands

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// MigrateCmd creates the migrate command
func MigrateCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			backend, err := app.Backend()
			if err != nil {
				return err
			}
			defer backend.Close()

			if backend.Migrate == nil {
				return fmt.Errorf("backend does not support migrations")
			}
			applied, err := backend.Migrate(app.Ctx)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(applied) == 0 {
				fmt.Fprintln(out, "Database is up to date.")
				return nil
			}
			fmt.Fprintf(out, "Applied %d migration(s):\n", len(applied))
			for _, name := range applied {
				fmt.Fprintf(out, "  %s\n", name)
			}
			app.Logger.Info("migrations applied", zap.Strings("versions", applied))
			return nil
		},
	}
}
