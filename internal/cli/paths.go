package cli

import (
	"github.com/spf13/cobra"
)

func newPathsCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "paths",
		Short: "List request paths",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app.Printer.Header("Request paths")
			app.Printer.Paths(app.Registry.Paths())
			return nil
		},
	}
}
