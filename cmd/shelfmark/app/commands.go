package app

import (
	"github.com/spf13/cobra"

	"github.com/agentstation/shelfmark/cmd/shelfmark/cmd/config"
	"github.com/agentstation/shelfmark/cmd/shelfmark/cmd/reset"
	"github.com/agentstation/shelfmark/cmd/shelfmark/cmd/status"
	"github.com/agentstation/shelfmark/cmd/shelfmark/cmd/sync"
)

// CreateSyncCommand creates the sync command with app dependencies.
func (a *App) CreateSyncCommand() *cobra.Command {
	return sync.NewCommand(a)
}

// CreateStatusCommand creates the status command with app dependencies.
func (a *App) CreateStatusCommand() *cobra.Command {
	return status.NewCommand(a)
}

// CreateConfigCommand creates the config command with app dependencies.
func (a *App) CreateConfigCommand() *cobra.Command {
	return config.NewCommand(a)
}

// CreateResetCommand creates the reset command with app dependencies.
func (a *App) CreateResetCommand() *cobra.Command {
	return reset.NewCommand(a)
}

// CreateVersionCommand creates the version command.
func (a *App) CreateVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			cmd.Printf("shelfmark %s\n", a.version)
			if a.config.Verbose {
				cmd.Printf("  commit:   %s\n", a.commit)
				cmd.Printf("  built:    %s\n", a.date)
				cmd.Printf("  built by: %s\n", a.builtBy)
			}
		},
	}
}
