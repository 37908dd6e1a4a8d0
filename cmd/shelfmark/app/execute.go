package app

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/agentstation/shelfmark/pkg/errors"
)

// Execute runs the shelfmark CLI application with the given arguments.
// This is the main entry point called from main.go.
func (a *App) Execute(ctx context.Context, args []string) error {
	rootCmd := a.createRootCommand()
	rootCmd.SetArgs(args)
	return rootCmd.ExecuteContext(ctx)
}

// createRootCommand creates the root cobra command with all subcommands.
func (a *App) createRootCommand() *cobra.Command {
	var vault string

	rootCmd := &cobra.Command{
		Use:     "shelfmark",
		Short:   "Sync your Hardcover library into markdown notes",
		Version: a.version,
		Long: `Shelfmark keeps a folder of markdown notes in step with your Hardcover
reading library: one note per book plus one note per author and series.

Everything you write after a note's closing marker is yours and is kept
across every sync. Syncs are incremental; only books changed since the last
successful sync are fetched.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			a.config.SetVault(vault)
			return a.setupCommand(cmd, args)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddGroup(&cobra.Group{
		ID:    "core",
		Title: "Core Commands:",
	})
	rootCmd.AddGroup(&cobra.Group{
		ID:    "management",
		Title: "Management Commands:",
	})

	// Global flags
	rootCmd.PersistentFlags().StringVar(&a.config.ConfigFile, "config", "", "config file (default is ./.shelfmark.yaml or $HOME/.shelfmark.yaml)")
	rootCmd.PersistentFlags().StringVar(&vault, "vault", "", "vault root directory (default from config, else the current directory)")
	rootCmd.PersistentFlags().BoolVarP(&a.config.Verbose, "verbose", "v", a.config.Verbose, "verbose output (shortcut for --log-level=debug)")
	rootCmd.PersistentFlags().BoolVarP(&a.config.Quiet, "quiet", "q", a.config.Quiet, "minimal output (shortcut for --log-level=warn)")
	rootCmd.PersistentFlags().BoolVar(&a.config.NoColor, "no-color", a.config.NoColor, "disable colored output")
	rootCmd.PersistentFlags().StringVarP(&a.config.Format, "format", "o", a.config.Format, "output format: table, json, yaml")
	rootCmd.PersistentFlags().StringVar(&a.config.LogLevel, "log-level", a.config.LogLevel, "log level: trace, debug, info, warn, error (overrides -v/-q)")

	rootCmd.SetVersionTemplate("shelfmark {{.Version}}\n")

	a.registerCommands(rootCmd)

	return rootCmd
}

// setupCommand is called before any command runs.
func (a *App) setupCommand(cmd *cobra.Command, _ []string) error {
	// An explicit --config replaces the file found during startup.
	if cmd.Flags().Changed("config") {
		config, err := LoadConfigFile(a.config.ConfigFile)
		if err != nil {
			return err
		}
		config.UpdateFromFlags(a.config.Verbose, a.config.Quiet, a.config.NoColor, a.config.Format, a.config.LogLevel)
		if cmd.Flags().Changed("vault") {
			config.SetVault(mustGetString(cmd, "vault"))
		}
		a.config = config
	}

	verbose := mustGetBool(cmd, "verbose")
	quiet := mustGetBool(cmd, "quiet")
	noColor := mustGetBool(cmd, "no-color")
	format := mustGetString(cmd, "format")
	logLevel := mustGetString(cmd, "log-level")

	a.config.UpdateFromFlags(verbose, quiet, noColor, format, logLevel)

	// Reinitialize logger with updated config
	logger := NewLogger(a.config)
	a.logger = &logger

	return nil
}

// registerCommands registers all subcommands with the root command.
func (a *App) registerCommands(rootCmd *cobra.Command) {
	// Core commands
	rootCmd.AddCommand(a.CreateSyncCommand())
	rootCmd.AddCommand(a.CreateStatusCommand())

	// Management commands
	rootCmd.AddCommand(a.CreateConfigCommand())
	rootCmd.AddCommand(a.CreateResetCommand())

	// Utility commands
	rootCmd.AddCommand(a.CreateVersionCommand())
}

// ExitOnError prints a user-facing message for err and exits with status 1.
func ExitOnError(err error) {
	if err != nil {
		msg := errors.UserMessage(err)
		if msg == errors.MessageGeneric {
			msg = err.Error()
		}
		//nolint:errcheck // Ignoring write error since we're exiting anyway
		_, _ = os.Stderr.WriteString(msg + "\n")
		os.Exit(1)
	}
}

// mustGetBool retrieves a boolean flag value or panics if the flag doesn't exist.
// This should only be used for flags defined in this package.
func mustGetBool(cmd *cobra.Command, name string) bool {
	val, err := cmd.Flags().GetBool(name)
	if err != nil {
		panic("programming error: failed to get flag " + name + ": " + err.Error())
	}
	return val
}

// mustGetString retrieves a string flag value or panics if the flag doesn't exist.
// This should only be used for flags defined in this package.
func mustGetString(cmd *cobra.Command, name string) string {
	val, err := cmd.Flags().GetString(name)
	if err != nil {
		panic("programming error: failed to get flag " + name + ": " + err.Error())
	}
	return val
}
