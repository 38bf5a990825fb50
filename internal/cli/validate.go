package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"rscapproval/internal/registry"
)

func newValidateCommand(app *App) *cobra.Command {
	var registryPath string

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Check a registry file for configuration errors",
		Long: `Load a registry file and report every broken reference: unknown
decision or form kinds, option targets outside the path, redirects to
unknown paths and options with the wrong number of directives.

Without --registry the active registry is checked.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if registryPath == "" {
				registryPath = app.Config.RegistryPath
			}

			reg := app.Registry
			if registryPath != "" {
				loaded, err := registry.LoadFile(registryPath)
				if err != nil {
					for _, line := range strings.Split(err.Error(), "\n") {
						app.Printer.Failure("%s", line)
					}
					return NewExitError(1)
				}
				reg = loaded
			} else if err := reg.Validate(); err != nil {
				app.Printer.Failure("%v", err)
				return NewExitError(1)
			}

			app.Printer.Success("Registry is valid: %d paths.", len(reg.Paths()))
			return nil
		},
	}

	cmd.Flags().StringVar(&registryPath, "registry", "", "registry YAML file to check")

	return cmd
}
