package shelfmark

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/agentstation/shelfmark/pkg/catalog"
	"github.com/agentstation/shelfmark/pkg/constants"
	"github.com/agentstation/shelfmark/pkg/errors"
	"github.com/agentstation/shelfmark/pkg/group"
	"github.com/agentstation/shelfmark/pkg/logging"
	"github.com/agentstation/shelfmark/pkg/metadata"
	"github.com/agentstation/shelfmark/pkg/reconcile"
	"github.com/agentstation/shelfmark/pkg/settings"
	"github.com/agentstation/shelfmark/pkg/sources"
	"github.com/agentstation/shelfmark/pkg/sync"
)

// Sync fetches changed records and reconciles their notes.
func (s *shelfmark) Sync(ctx context.Context, opts ...SyncOption) (*Result, error) {
	// Step 0: Set context
	if ctx == nil {
		ctx = context.Background()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Step 1: Parse options
	options := sync.Defaults().Apply(opts...)
	if err := options.Validate(); err != nil {
		return nil, err
	}

	// Step 2: Setup context with timeout
	var cancel context.CancelFunc
	if options.Timeout > 0 {
		ctx, cancel = context.WithTimeout(ctx, options.Timeout)
	} else {
		cancel = func() {} // No-op cancel if no timeout
	}
	defer cancel()

	// Step 3: Validate settings and stored state before any I/O
	cfg := s.config
	if err := cfg.settings.Validate(); err != nil {
		return nil, err
	}
	st, err := cfg.state.Load()
	if err != nil {
		return nil, err
	}
	if err := settings.ValidateWatermark(st.Watermark); err != nil {
		return nil, err
	}

	start := cfg.now()
	run := &runner{
		shelfmark: s,
		options:   options,
		state:     st,
		result: &Result{
			RunID:  uuid.NewString(),
			DryRun: options.DryRun,
		},
		updatedAfter: st.Watermark,
	}
	if options.Full {
		run.updatedAfter = ""
	}
	run.result.Full = run.updatedAfter == ""
	ctx = logging.WithRequestID(ctx, run.result.RunID)

	logging.Ctx(ctx).Info().
		Bool("full", run.result.Full).
		Bool("dry_run", options.DryRun).
		Str("watermark", run.updatedAfter).
		Msg("Starting sync")

	// Step 4: Resolve the account once
	ownerID, err := run.identity(ctx)
	if err != nil {
		return nil, err
	}

	// Step 5: Count the library and apply the debug cap
	options.Report(sync.Progress{Phase: sync.PhaseCount})
	total, err := cfg.library.Count(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	run.state.RecordCount = total
	limit := total
	if options.DebugLimit > 0 && options.DebugLimit < limit {
		limit = options.DebugLimit
		run.result.Debug = true
	}
	run.result.Total = limit

	// Step 6: Page through changed records
	records, truncated, err := run.fetch(ctx, ownerID, total, limit)
	if err != nil {
		return nil, err
	}
	run.result.Fetched = len(records)

	// Step 7: Reconcile every note
	if err := run.reconcile(ctx, records, truncated); err != nil {
		return nil, err
	}

	// Step 8: Advance the watermark and persist state
	options.Report(sync.Progress{Phase: sync.PhaseFinalize, Completed: run.completed, Total: run.units})
	run.result.Watermark = run.state.Watermark
	switch {
	case run.result.Failed > 0:
		logging.Ctx(ctx).Warn().
			Int("failed", run.result.Failed).
			Msg("Some notes failed; watermark left unchanged so the next sync retries them")
	case truncated:
		logging.Ctx(ctx).Info().
			Int("limit", limit).
			Msg("Debug limit truncated the run; watermark left unchanged")
	default:
		run.state.Watermark = start.UTC().Format(constants.TimestampFormat)
		run.result.Watermark = run.state.Watermark
		run.result.WatermarkAdvanced = true
	}
	run.state.LastRun = start.UTC()

	if options.DryRun {
		logging.Ctx(ctx).Info().Bool("dry_run", true).Msg("Dry run completed - sync state not saved")
	} else if err := cfg.state.Save(run.state); err != nil {
		return nil, err
	}

	run.result.Duration = cfg.now().Sub(start)
	logging.Ctx(ctx).Info().
		Int("fetched", run.result.Fetched).
		Int("created", run.result.Created).
		Int("updated", run.result.Updated).
		Int("renamed", run.result.Renamed).
		Int("failed", run.result.Failed).
		Bool("watermark_advanced", run.result.WatermarkAdvanced).
		Msg("Sync completed")

	return run.result, nil
}

// ============================================================================
// Helper Methods for Sync
// ============================================================================

// runner carries the mutable state of one Sync call.
type runner struct {
	*shelfmark
	options      *sync.Options
	state        State
	result       *Result
	updatedAfter string

	// progress accounting
	completed int
	units     int
}

// identity returns the cached account id, resolving and persisting it on
// first use.
func (r *runner) identity(ctx context.Context) (int, error) {
	r.options.Report(sync.Progress{Phase: sync.PhaseIdentity})
	if r.state.AccountID > 0 {
		return r.state.AccountID, nil
	}

	id, err := r.config.library.Identity(ctx)
	if err != nil {
		return 0, err
	}
	r.state.AccountID = id
	logging.Ctx(ctx).Debug().Int("account_id", id).Msg("Resolved library account")

	if !r.options.DryRun {
		if err := r.config.state.Save(r.state); err != nil {
			return 0, err
		}
	}
	return id, nil
}

// fetch pages through up to limit records. It reports truncated when the
// limit, rather than the end of the data, stopped paging.
func (r *runner) fetch(ctx context.Context, ownerID, total, limit int) ([]catalog.Record, bool, error) {
	r.units = limit * 2
	records := make([]catalog.Record, 0, limit)
	delay := r.config.pageDelay(total)

	for offset := 0; offset < limit; {
		if err := ctx.Err(); err != nil {
			return nil, false, canceled(err)
		}

		size := min(constants.DefaultPageSize, limit-offset)
		page, err := r.config.library.Page(ctx, sources.PageParams{
			OwnerID:      ownerID,
			Offset:       offset,
			Limit:        size,
			UpdatedAfter: r.updatedAfter,
		})
		if err != nil {
			return nil, false, err
		}
		records = append(records, page...)
		offset += len(page)

		r.completed = len(records)
		r.options.Report(sync.Progress{Phase: sync.PhaseFetch, Completed: r.completed, Total: r.units})
		logging.Ctx(ctx).Debug().
			Int("offset", offset).
			Int("page_size", len(page)).
			Msg("Fetched page")

		if len(page) < size {
			return records, false, nil
		}
		if offset < limit && delay > 0 {
			if err := pause(ctx, delay); err != nil {
				return nil, false, err
			}
		}
	}
	return records, r.result.Debug && len(records) >= limit, nil
}

// reconcile normalizes records and writes book notes followed by series
// and author notes. Per-note failures are recorded and never abort the run.
// Group members are only pruned when a full sync saw the whole library.
func (r *runner) reconcile(ctx context.Context, records []catalog.Record, truncated bool) error {
	s := r.config.settings
	grouping := s.Group.Enabled

	items := make([]metadata.Metadata, len(records))
	for i, rec := range records {
		items[i] = metadata.Normalize(rec, s, grouping)
		items[i].Seq = i
	}

	var buckets group.Result
	if grouping {
		buckets = group.Group(items)
	}

	r.units = len(records)
	if s.SingleNotes {
		r.units += len(items)
	}
	r.units += len(buckets.Series) + len(buckets.Authors)
	r.options.Report(sync.Progress{Phase: sync.PhaseReconcile, Completed: r.completed, Total: r.units})

	var store reconcile.Store = r.config.store
	if r.options.DryRun {
		store = reconcile.NewOverlay(store)
	}
	engine := reconcile.New(store, s,
		reconcile.WithClock(r.config.now),
		reconcile.WithFullSync(r.result.Full && !truncated))

	if s.SingleNotes {
		for _, m := range items {
			if err := ctx.Err(); err != nil {
				return canceled(err)
			}
			out, err := engine.Single(logging.WithItem(ctx, string(metadata.KindBook), m.ItemID), m)
			r.record(ctx, out, err, Failure{Kind: string(metadata.KindBook), ID: m.ItemID, Name: m.Title})
		}
	}

	for _, set := range []struct {
		kind    metadata.Kind
		buckets []group.Bucket
	}{
		{metadata.KindSeries, buckets.Series},
		{metadata.KindAuthor, buckets.Authors},
	} {
		for _, b := range set.buckets {
			if err := ctx.Err(); err != nil {
				return canceled(err)
			}
			g := metadata.BuildGroup(set.kind, b.ID, b.Name, b.Members, s)
			out, err := engine.Grouped(logging.WithItem(ctx, string(set.kind), b.ID), g)
			r.record(ctx, out, err, Failure{Kind: string(set.kind), ID: b.ID, Name: b.Name})
		}
	}
	return nil
}

// record folds one reconciliation outcome into the result and fires hooks.
func (r *runner) record(ctx context.Context, out reconcile.Outcome, err error, f Failure) {
	r.completed++
	r.options.Report(sync.Progress{Phase: sync.PhaseReconcile, Completed: r.completed, Total: r.units})

	if err != nil {
		f.Err = err
		r.result.Failed++
		r.result.Failures = append(r.result.Failures, f)
		logging.Ctx(ctx).Error().Err(err).
			Str("kind", f.Kind).
			Int("id", f.ID).
			Str("name", f.Name).
			Msg("Failed to reconcile note")
		r.hooks.triggerFailure(f)
		return
	}

	switch out.Action {
	case reconcile.ActionCreated:
		r.result.Created++
	case reconcile.ActionUpdated:
		r.result.Updated++
	case reconcile.ActionRenamed:
		r.result.Renamed++
	}
	logging.Ctx(ctx).Debug().
		Str("action", string(out.Action)).
		Str("path", out.Path).
		Msg("Reconciled note")
	r.hooks.triggerOutcome(out)
}

// pause waits d or until ctx is done.
func pause(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return canceled(ctx.Err())
	}
}

func canceled(err error) error {
	return fmt.Errorf("%w: %w", errors.ErrCanceled, err)
}
