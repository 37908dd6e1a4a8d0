// Package config implements the config command.
package config

import (
	"github.com/spf13/cobra"

	"github.com/agentstation/shelfmark/internal/cmd/application"
	"github.com/agentstation/shelfmark/internal/cmd/output"
)

// NewCommand creates the config command using app context.
func NewCommand(app application.Application) *cobra.Command {
	return &cobra.Command{
		Use:     "config",
		GroupID: "management",
		Short:   "Print the effective library settings",
		Long: `Config prints the settings every sync runs with, after defaults, the
config file and environment overrides are applied. The output can be pasted
under the "library" key of .shelfmark.yaml.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f := output.FormatYAML
			if app.OutputFormat() == string(output.FormatJSON) {
				f = output.FormatJSON
			}
			return output.NewFormatter(f).Format(cmd.OutOrStdout(), app.Settings())
		},
	}
}
