package commands

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/goliatone/go-staffdesk/pkg/email"
)

// SendAgeConsentCmd creates the send-age-consent command
func SendAgeConsentCmd(app *AppContext) *cobra.Command {
	var (
		yes    bool
		dryRun bool
	)

	cmd := &cobra.Command{
		Use:   "send-age-consent",
		Short: "Email the parental consent form to attendees who are minors",
		Long: `Sends the age consent email once to every attendee with an email address
who will be under 18 when the event starts. Attendees already emailed are
skipped. Nothing is sent after the final email deadline.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()

			_, ageConsent, err := app.Renderers()
			if err != nil {
				return err
			}
			backend, err := app.Backend()
			if err != nil {
				return err
			}
			defer backend.Close()

			event := &app.Cfg.Event
			logger := app.Logger.Named("age_consent")

			preview, err := email.NewAutomation(event, ageConsent, backend.Consent, nil,
				email.WithDryRun(true),
				email.WithClock(app.Now),
				email.WithLogger(logger),
			)
			if err != nil {
				return err
			}
			if !preview.Active() {
				fmt.Fprintf(out, "The final email deadline (%s) has passed; nothing to send.\n",
					event.FinalEmailDeadline().Format("2006-01-02 15:04 MST"))
				return nil
			}

			pending, err := preview.Pending(app.Ctx)
			if err != nil {
				return err
			}
			if len(pending) == 0 {
				fmt.Fprintln(out, "No attendees need the age consent email.")
				return nil
			}
			fmt.Fprintf(out, "%d attendee(s) need the age consent email:\n", len(pending))
			for _, attendee := range pending {
				fmt.Fprintf(out, "  %s <%s>\n", attendee.FullName(), attendee.Email)
			}

			if dryRun {
				result, err := preview.Run(app.Ctx)
				printResult(out, result)
				return err
			}

			if !yes {
				ok, err := app.Confirm(
					fmt.Sprintf("Send the age consent email to %d attendee(s)?", len(pending)),
					"Each attendee is emailed once; re-running skips anyone already sent to.",
				)
				if err != nil {
					return err
				}
				if !ok {
					fmt.Fprintln(out, "Cancelled.")
					return nil
				}
			}

			sender, err := app.NewSender(app.Ctx, app.Cfg, app.Logger.Named("gmail"))
			if err != nil {
				return fmt.Errorf("failed to create mail sender: %w", err)
			}
			automation, err := email.NewAutomation(event, ageConsent, backend.Consent, sender,
				email.WithClock(app.Now),
				email.WithLogger(logger),
			)
			if err != nil {
				return err
			}

			result, err := automation.Run(app.Ctx)
			printResult(out, result)
			if err != nil {
				app.Logger.Error("age consent run finished with errors", zap.Error(err))
				return err
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Send without asking for confirmation")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Render the emails without sending or recording them")
	return cmd
}

func printResult(out io.Writer, result email.Result) {
	verb := "Sent"
	if result.DryRun {
		verb = "Rendered (dry run)"
	}
	fmt.Fprintf(out, "\n%s: %d, skipped: %d, failed: %d\n",
		verb, len(result.Sent), len(result.Skipped), len(result.Failed))
	for _, id := range result.Failed {
		fmt.Fprintf(out, "  failed: %s\n", id)
	}
}
