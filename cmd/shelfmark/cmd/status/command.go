// Package status implements the status command.
package status

import (
	"github.com/spf13/cobra"

	"github.com/agentstation/shelfmark/internal/cmd/application"
	"github.com/agentstation/shelfmark/internal/cmd/output"
	"github.com/agentstation/shelfmark/internal/cmd/table"
)

// NewCommand creates the status command using app context.
func NewCommand(app application.Application) *cobra.Command {
	return &cobra.Command{
		Use:     "status",
		GroupID: "core",
		Short:   "Show the stored sync state",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := app.OpenState()
			if err != nil {
				return err
			}
			defer st.Close()

			current, err := st.Load()
			if err != nil {
				return err
			}

			f := output.DetectFormat(app.OutputFormat())
			formatter := output.NewFormatter(f)
			if f == output.FormatJSON || f == output.FormatYAML {
				return formatter.Format(cmd.OutOrStdout(), current)
			}
			return formatter.Format(cmd.OutOrStdout(), table.StateToTableData(current, st.Path()))
		},
	}
}
