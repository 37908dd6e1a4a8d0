// Package sync implements the sync command.
package sync

import (
	"github.com/spf13/cobra"

	"github.com/agentstation/shelfmark/internal/cmd/application"
)

// Flags holds the sync command flags.
type Flags struct {
	Limit  int
	Full   bool
	DryRun bool
}

// NewCommand creates the sync command using app context.
func NewCommand(app application.Application) *cobra.Command {
	flags := &Flags{}

	cmd := &cobra.Command{
		Use:     "sync",
		GroupID: "core",
		Short:   "Sync the library into notes",
		Args:    cobra.NoArgs,
		Long: `Sync fetches the books changed since the last successful sync and
creates, updates or renames their notes. Author and series notes are
rebuilt from their members.

Text after a note's closing marker is never touched. When any note fails
the watermark stays put, so the next sync retries everything that changed.`,
		Example: `  shelfmark sync                  # Incremental sync
  shelfmark sync --full           # Re-fetch the whole library
  shelfmark sync --limit 10       # Process at most 10 books
  shelfmark sync --dry-run        # Reconcile in memory without writing`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return Execute(cmd, app, flags)
		},
	}

	cmd.Flags().IntVar(&flags.Limit, "limit", 0, "process at most this many books (debug); the watermark does not advance when the limit cuts the run short")
	cmd.Flags().BoolVar(&flags.Full, "full", false, "ignore the stored watermark and fetch every book")
	cmd.Flags().BoolVar(&flags.DryRun, "dry-run", false, "reconcile against an in-memory copy of the vault and keep sync state unchanged")

	return cmd
}
