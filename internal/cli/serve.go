package cli

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"rscapproval/internal/server"
)

func newServeCommand(app *App) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the wizard and approval API over HTTP",
		Long: `Serve the session and submission API until interrupted.

Each client session gets its own wizard state; submissions go to the
configured submissions file.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if addr == "" {
				addr = app.Config.Server.Addr
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			handler := server.NewHandler(app.Registry, app.Store, app.Logger)
			engine := server.Setup(app.Config.Server.Mode, handler)

			app.Printer.Success("Listening on http://%s", addr)
			if err := server.Run(ctx, addr, engine, app.Logger); err != nil {
				app.Printer.Failure("%v", err)
				return NewExitError(1)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config server.addr)")

	return cmd
}
