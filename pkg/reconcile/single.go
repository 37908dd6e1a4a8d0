package reconcile

import (
	"context"
	"strconv"
	"strings"

	"github.com/agentstation/shelfmark/pkg/logging"
	"github.com/agentstation/shelfmark/pkg/metadata"
	"github.com/agentstation/shelfmark/pkg/render"
	"github.com/agentstation/shelfmark/pkg/settings"
)

// SinglePath returns where the book note for m belongs.
func (e *Engine) SinglePath(m metadata.Metadata) string {
	vars := map[string]string{
		"title":   m.Title,
		"authors": strings.Join(m.Authors, ", "),
	}
	if m.ReleaseYear > 0 {
		vars["year"] = strconv.Itoa(m.ReleaseYear)
	}
	name := render.Filename(e.settings.FilenameTemplate, vars, m.Body.Title)
	return joinPath(e.settings.TargetFolder, name)
}

// Single creates or updates the book note for m.
func (e *Engine) Single(ctx context.Context, m metadata.Metadata) (Outcome, error) {
	ctx = logging.WithItem(ctx, string(metadata.KindBook), m.ItemID)
	folder := e.settings.TargetFolder
	want := e.SinglePath(m)

	current, found, err := e.locate(ctx, folder, settings.BookIDProperty, m.ItemID)
	if err != nil {
		return Outcome{}, failure(metadata.KindBook, m.ItemID, want, err)
	}

	if !found {
		target, err := e.placement(ctx, want, m.ItemID)
		if err != nil {
			return Outcome{}, failure(metadata.KindBook, m.ItemID, want, err)
		}
		content := e.renderer.Single(m, render.NewPreamble, render.NewTrailer)
		if err := e.create(ctx, folder, settings.BookIDProperty, m.ItemID, target, content); err != nil {
			return Outcome{}, failure(metadata.KindBook, m.ItemID, target, err)
		}
		logging.Ctx(ctx).Debug().Str("path", target).Msg("Created note")
		return Outcome{Action: ActionCreated, Kind: metadata.KindBook, ID: m.ItemID, Path: target}, nil
	}

	existing, err := e.parseExisting(ctx, current, true)
	if err != nil {
		return Outcome{}, failure(metadata.KindBook, m.ItemID, current, err)
	}
	// a note with only the end marker gets its whole machine zone rebuilt
	preamble := existing.Preamble
	if !existing.HasBody {
		preamble = render.NewPreamble
	}
	content := e.renderer.Single(m, preamble, existing.Trailer)

	out, err := e.commit(ctx, folder, settings.BookIDProperty, m.ItemID, current, want, content)
	if err != nil {
		return Outcome{}, failure(metadata.KindBook, m.ItemID, current, err)
	}
	out.Kind, out.ID = metadata.KindBook, m.ItemID
	logging.Ctx(ctx).Debug().Str("path", out.Path).Str("action", string(out.Action)).Msg("Reconciled note")
	return out, nil
}
