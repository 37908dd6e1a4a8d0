// Package reset implements the reset command.
package reset

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/agentstation/shelfmark/internal/cmd/application"
)

// NewCommand creates the reset command using app context.
func NewCommand(app application.Application) *cobra.Command {
	return &cobra.Command{
		Use:     "reset",
		GroupID: "management",
		Short:   "Clear the watermark so the next sync is a full sync",
		Long: `Reset clears the stored watermark and the cached account id. Notes are
left alone; the next sync re-fetches the whole library and rewrites them.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := app.OpenState()
			if err != nil {
				return err
			}
			defer st.Close()

			if err := st.Reset(); err != nil {
				return err
			}
			app.Logger().Info().Str("state", st.Path()).Msg("Sync state reset")
			fmt.Fprintln(cmd.OutOrStdout(), "Sync state reset. The next sync will fetch your whole library.")
			return nil
		},
	}
}
