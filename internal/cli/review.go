package cli

import (
	"github.com/spf13/cobra"

	"rscapproval/internal/approval"
)

type reviewOptions struct {
	role   string
	actor  string
	reason string
}

func newApproveCommand(app *App) *cobra.Command {
	var opts reviewOptions

	cmd := &cobra.Command{
		Use:   "approve <id>",
		Short: "Approve a submission at the current stage",
		Long: `Approve a submission on behalf of a role. Admins approve first, then
directors.

Example:
  rscapproval approve 3f2a... --role admin --actor pim`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReview(app, args[0], opts, false)
		},
	}
	addReviewFlags(cmd, &opts)
	return cmd
}

func newRejectCommand(app *App) *cobra.Command {
	var opts reviewOptions

	cmd := &cobra.Command{
		Use:   "reject <id>",
		Short: "Reject a submission at the current stage",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReview(app, args[0], opts, true)
		},
	}
	addReviewFlags(cmd, &opts)
	cmd.Flags().StringVar(&opts.reason, "reason", "", "reason recorded in the history")
	return cmd
}

func addReviewFlags(cmd *cobra.Command, opts *reviewOptions) {
	cmd.Flags().StringVar(&opts.role, "role", "", "reviewing role: admin or director (required)")
	cmd.Flags().StringVar(&opts.actor, "actor", "", "name recorded in the history")
	_ = cmd.MarkFlagRequired("role")
}

func runReview(app *App, id string, opts reviewOptions, reject bool) error {
	role, err := approval.ParseRole(opts.role)
	if err != nil {
		app.Printer.Failure("%v", err)
		return NewExitError(1)
	}

	var rec *approval.Record
	if reject {
		rec, err = app.Store.Reject(id, role, opts.actor, opts.reason)
	} else {
		rec, err = app.Store.Approve(id, role, opts.actor)
	}
	if err != nil {
		app.Printer.Failure("%v", err)
		return NewExitError(1)
	}

	app.Printer.Success("%s is now %s.", rec.ID, app.Printer.StatusText(rec.Status))
	return nil
}
