package cli

import (
	"github.com/spf13/cobra"

	"rscapproval/internal/approval"
)

func newSubmissionsCommand(app *App) *cobra.Command {
	var status, submitter string

	cmd := &cobra.Command{
		Use:   "submissions",
		Short: "List submitted bundles",
		Long: `List submitted bundles, oldest first.

Example:
  rscapproval submissions --status pending-admin`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			filter := approval.Filter{
				Status:    approval.Status(status),
				Submitter: submitter,
			}
			if status != "" && !filter.Status.IsValid() {
				app.Printer.Failure("%v: %q", approval.ErrUnknownStatus, status)
				return NewExitError(1)
			}

			records, err := app.Store.List(filter)
			if err != nil {
				app.Printer.Failure("%v", err)
				return NewExitError(1)
			}
			app.Printer.Records(records)
			return nil
		},
	}

	cmd.Flags().StringVar(&status, "status", "", "only show submissions in this status")
	cmd.Flags().StringVar(&submitter, "submitter", "", "only show submissions by this researcher")

	return cmd
}

func newShowCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show a submission with its documents and history",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rec, err := app.Store.Get(args[0])
			if err != nil {
				app.Printer.Failure("%v", err)
				return NewExitError(1)
			}
			app.Printer.Record(*rec)
			return nil
		},
	}
}
