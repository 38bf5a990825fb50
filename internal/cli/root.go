// Package cli provides the command-line interface for rscapproval.
//
// Commands are built with Cobra and share one [App] holding the loaded
// configuration, the step registry, the approval store and the printer.
// Commands never call os.Exit; failures are returned as [ExitError] so tests
// can assert on exit codes.
//
// Key types:
//   - [App] - dependencies shared by all commands
//   - [ExitError] - a failure carrying a shell exit code
//   - [ExecuteResult] - exit code and error from [RunWithConfig]
package cli

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"rscapproval/internal/approval"
	"rscapproval/internal/config"
	"rscapproval/internal/logging"
	"rscapproval/internal/output"
	"rscapproval/internal/registry"
)

// App holds the dependencies shared by all commands.
type App struct {
	Config   *config.Config
	Registry *registry.Registry
	Store    *approval.Store
	Printer  *output.Printer
	Logger   *slog.Logger

	// In is read by the interactive wizard. Nil means os.Stdin.
	In io.Reader
}

// NewApp wires an [App] from cfg.
//
// The registry comes from cfg.RegistryPath when set, otherwise the built-in
// paths are used.
func NewApp(cfg *config.Config) (*App, error) {
	reg := registry.Default()
	if cfg.RegistryPath != "" {
		loaded, err := registry.LoadFile(cfg.RegistryPath)
		if err != nil {
			return nil, err
		}
		reg = loaded
	}

	logger := logging.New(os.Stderr, cfg.Log.Level)

	return &App{
		Config:   cfg,
		Registry: reg,
		Store:    approval.NewStore(cfg.Store.SubmissionsPath, nil, logger),
		Printer:  output.NewPrinter(),
		Logger:   logger,
		In:       os.Stdin,
	}, nil
}

func (a *App) input() io.Reader {
	if a.In == nil {
		return os.Stdin
	}
	return a.In
}

// NewRootCommand builds the command tree for app.
func NewRootCommand(app *App) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "rscapproval",
		Short: "Prepare and approve research expense request bundles",
		Long: `rscapproval walks researchers through the documents needed for a
research expense request, assembles the bundle and tracks it through
admin and director approval.

Start a request with "rscapproval start <path>"; list paths with
"rscapproval paths".`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(
		newPathsCommand(app),
		newStartCommand(app),
		newSubmissionsCommand(app),
		newShowCommand(app),
		newApproveCommand(app),
		newRejectCommand(app),
		newServeCommand(app),
		newValidateCommand(app),
	)

	return rootCmd
}

// ExecuteResult is the outcome of [RunWithConfig].
type ExecuteResult struct {
	ExitCode int
	Err      error
}

// RunWithConfig builds the application from cfg and runs the command line
// in os.Args without exiting the process.
func RunWithConfig(cfg *config.Config) ExecuteResult {
	app, err := NewApp(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return ExecuteResult{ExitCode: 1, Err: err}
	}

	rootCmd := NewRootCommand(app)
	if err := rootCmd.Execute(); err != nil {
		if code, ok := IsExitError(err); ok {
			return ExecuteResult{ExitCode: code, Err: err}
		}
		// Usage errors from cobra arrive here unprinted.
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return ExecuteResult{ExitCode: 2, Err: err}
	}
	return ExecuteResult{}
}

// Execute loads configuration, runs the command line and exits the process
// with the resulting code.
func Execute() {
	cfg, err := config.NewLoader().Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	result := RunWithConfig(cfg)
	os.Exit(result.ExitCode)
}
