package cli

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"rscapproval/internal/wizard"
)

type startOptions struct {
	answersPath string
	submitter   string
	dryRun      bool
}

func newStartCommand(app *App) *cobra.Command {
	var opts startOptions

	cmd := &cobra.Command{
		Use:   "start <path>",
		Short: "Prepare and submit a request bundle",
		Long: `Walk through the steps of a request path, answering each decision and
filling in each form, then review and submit the assembled bundle.

Type "<" at any prompt to go back one step. With --answers the wizard
replays a YAML answers file instead of prompting.

Example:
  rscapproval start car --as somchai
  rscapproval start project --answers project.yaml`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStart(cmd.Context(), app, args[0], opts)
		},
	}

	cmd.Flags().StringVar(&opts.answersPath, "answers", "", "replay answers from a YAML file instead of prompting")
	cmd.Flags().StringVar(&opts.submitter, "as", "", "researcher name recorded on the submission")
	cmd.Flags().BoolVar(&opts.dryRun, "dry-run", false, "assemble the bundle without submitting it")

	return cmd
}

func runStart(ctx context.Context, app *App, pathID string, opts startOptions) error {
	path, err := app.Registry.GetPath(pathID)
	if err != nil {
		app.Printer.Failure("Unknown path %q. Choose one of:", pathID)
		app.Printer.Paths(app.Registry.Paths())
		return NewExitError(1)
	}

	submitter := opts.submitter
	var collector wizard.Collector
	if opts.answersPath != "" {
		answers, err := wizard.LoadAnswers(opts.answersPath)
		if err != nil {
			app.Printer.Failure("%v", err)
			return NewExitError(1)
		}
		if submitter == "" {
			submitter = answers.Submitter
		}
		collector = wizard.NewScript(answers)
	} else {
		collector = wizard.NewTerminal(app.input(), app.Printer)
	}
	if submitter == "" {
		submitter = app.Config.Output.Submitter
	}

	var submit wizard.Submitter
	if !opts.dryRun {
		submit = wizard.StoreSubmitter{Store: app.Store}
	}

	driver := wizard.NewDriver(app.Registry, collector, submit, app.Logger)
	if app.Config.Output.ShowProgress {
		driver.SetProgressCallback(app.Printer.StepStart)
	}

	app.Printer.Header(path.Name)
	res, err := driver.Run(ctx, path.ID, submitter)
	switch {
	case errors.Is(err, wizard.ErrExited):
		app.Printer.Muted("Wizard exited; nothing was submitted.")
		return nil
	case err != nil:
		app.Printer.Failure("%v", err)
		return NewExitError(1)
	}

	if res.PathID != path.ID {
		app.Printer.Muted("Finished on path %q.", res.PathID)
	}
	if res.Record == nil {
		app.Printer.Success("Bundle ready (%d documents); not submitted.", len(res.Documents))
		app.Printer.Bundle(res.Documents)
		return nil
	}
	if !res.Created {
		app.Printer.Success("Already submitted as %s.", res.Record.ID)
		return nil
	}
	app.Printer.Success("Submitted %s, now %s.", res.Record.ID, app.Printer.StatusText(res.Record.Status))
	return nil
}
