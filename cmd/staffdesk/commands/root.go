// Package commands implements the staffdesk command line.
package commands

import (
	"github.com/spf13/cobra"
)

// NewRootCmd builds the staffdesk command tree around app.
func NewRootCmd(app *AppContext) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "staffdesk",
		Short: "Staffdesk - job admin and age consent emails for event staffing",
		Long: `Serves the job admin form, runs database migrations and sends the
parental consent email to attendees who are minors at the start of the event.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Context() != nil {
				app.Ctx = cmd.Context()
			}
			return app.Init(cmd.ErrOrStderr())
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			app.Close()
		},
	}

	rootCmd.PersistentFlags().StringVarP(&app.ConfigPath, "config", "c", "", "Path to staffdesk.yaml (defaults to ./staffdesk.yaml, then ~/staffdesk.yaml)")
	rootCmd.PersistentFlags().StringVarP(&app.Env, "env", "e", "dev", "Environment name, used for log file names")

	rootCmd.AddCommand(ServeCmd(app))
	rootCmd.AddCommand(MigrateCmd(app))
	rootCmd.AddCommand(RenderJobFormCmd(app))
	rootCmd.AddCommand(SendAgeConsentCmd(app))

	return rootCmd
}
