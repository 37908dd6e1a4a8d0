package sync

import (
	"fmt"
	"io"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/agentstation/shelfmark"
	"github.com/agentstation/shelfmark/internal/cmd/application"
	"github.com/agentstation/shelfmark/internal/cmd/output"
	"github.com/agentstation/shelfmark/internal/cmd/table"
	"github.com/agentstation/shelfmark/internal/vault"
	"github.com/agentstation/shelfmark/pkg/constants"
)

// Execute runs one sync with the given flags.
func Execute(cmd *cobra.Command, app application.Application, flags *Flags) error {
	ctx := cmd.Context()
	logger := app.Logger()

	st, err := app.OpenState()
	if err != nil {
		return err
	}
	defer st.Close()

	store := vault.Open(app.VaultDir())
	if flags.DryRun {
		store = vault.DryRun(app.VaultDir())
	}

	client, err := app.Client(store, st)
	if err != nil {
		return err
	}

	opts := []shelfmark.SyncOption{
		shelfmark.WithDebugLimit(flags.Limit),
		shelfmark.WithFull(flags.Full),
		shelfmark.WithDryRun(flags.DryRun),
		shelfmark.WithTimeout(constants.SyncTimeout),
	}
	stderr := cmd.ErrOrStderr()
	if isTerminal(stderr) {
		opts = append(opts, shelfmark.WithProgress(progressPrinter(stderr)))
	}

	logger.Debug().
		Str("vault", app.VaultDir()).
		Int("limit", flags.Limit).
		Bool("full", flags.Full).
		Bool("dry_run", flags.DryRun).
		Msg("Starting sync command")

	result, err := client.Sync(ctx, opts...)
	if isTerminal(stderr) {
		fmt.Fprint(stderr, "\r\033[K")
	}
	if err != nil {
		return err
	}

	if err := printResult(cmd.OutOrStdout(), app.OutputFormat(), result); err != nil {
		return err
	}
	fmt.Fprintln(stderr, result.Summary())

	if result.HasFailures() {
		return fmt.Errorf("%d notes failed to sync; the next sync will retry them", result.Failed)
	}
	return nil
}

// view is the serializable form of a sync result.
type view struct {
	RunID             string        `json:"run_id" yaml:"run_id"`
	Created           int           `json:"created" yaml:"created"`
	Updated           int           `json:"updated" yaml:"updated"`
	Renamed           int           `json:"renamed" yaml:"renamed"`
	Failed            int           `json:"failed" yaml:"failed"`
	Fetched           int           `json:"fetched" yaml:"fetched"`
	Full              bool          `json:"full" yaml:"full"`
	DryRun            bool          `json:"dry_run" yaml:"dry_run"`
	Debug             bool          `json:"debug" yaml:"debug"`
	WatermarkAdvanced bool          `json:"watermark_advanced" yaml:"watermark_advanced"`
	Watermark         string        `json:"watermark" yaml:"watermark"`
	Failures          []failureView `json:"failures,omitempty" yaml:"failures,omitempty"`
}

type failureView struct {
	Kind  string `json:"kind" yaml:"kind"`
	ID    int    `json:"id" yaml:"id"`
	Name  string `json:"name" yaml:"name"`
	Error string `json:"error" yaml:"error"`
}

func printResult(w io.Writer, format string, result *shelfmark.Result) error {
	f := output.DetectFormat(format)
	formatter := output.NewFormatter(f)

	if f == output.FormatJSON || f == output.FormatYAML {
		v := view{
			RunID:             result.RunID,
			Created:           result.Created,
			Updated:           result.Updated,
			Renamed:           result.Renamed,
			Failed:            result.Failed,
			Fetched:           result.Fetched,
			Full:              result.Full,
			DryRun:            result.DryRun,
			Debug:             result.Debug,
			WatermarkAdvanced: result.WatermarkAdvanced,
			Watermark:         result.Watermark,
		}
		for _, fl := range result.Failures {
			v.Failures = append(v.Failures, failureView{Kind: fl.Kind, ID: fl.ID, Name: fl.Name, Error: fl.Err.Error()})
		}
		return formatter.Format(w, v)
	}

	if err := formatter.Format(w, table.ResultToTableData(result)); err != nil {
		return err
	}
	if len(result.Failures) > 0 {
		return formatter.Format(w, table.FailuresToTableData(result.Failures))
	}
	return nil
}

// progressPrinter redraws a one-line progress indicator.
func progressPrinter(w io.Writer) func(shelfmark.Progress) {
	return func(p shelfmark.Progress) {
		fmt.Fprintf(w, "\r\033[KSyncing %s... %d%%", p.Phase, p.Percent())
	}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && (isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd()))
}
