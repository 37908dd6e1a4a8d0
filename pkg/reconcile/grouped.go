package reconcile

import (
	"context"
	"sort"

	"github.com/agentstation/shelfmark/pkg/document"
	"github.com/agentstation/shelfmark/pkg/fields"
	"github.com/agentstation/shelfmark/pkg/logging"
	"github.com/agentstation/shelfmark/pkg/metadata"
	"github.com/agentstation/shelfmark/pkg/render"
	"github.com/agentstation/shelfmark/pkg/settings"
)

// GroupPath returns where the note for g belongs.
func (e *Engine) GroupPath(g metadata.Group) string {
	folder, template := e.groupLocation(g.Kind)
	vars := map[string]string{"name": g.Name, "authorName": g.Name}
	return joinPath(folder, render.Filename(template, vars, g.Name))
}

func (e *Engine) groupLocation(kind metadata.Kind) (folder, template string) {
	if kind == metadata.KindSeries {
		return e.settings.Group.SeriesFolder, e.settings.Group.SeriesFilenameTemplate
	}
	return e.settings.Group.AuthorFolder, e.settings.Group.AuthorFilenameTemplate
}

// Grouped creates or updates the author or series note for g. Members must
// be in display order.
func (e *Engine) Grouped(ctx context.Context, g metadata.Group) (Outcome, error) {
	ctx = logging.WithItem(ctx, string(g.Kind), g.ID)
	folder, _ := e.groupLocation(g.Kind)
	prop := g.Kind.IDProperty()
	want := e.GroupPath(g)

	current, found, err := e.locate(ctx, folder, prop, g.ID)
	if err != nil {
		return Outcome{}, failure(g.Kind, g.ID, want, err)
	}

	if !found {
		target, err := e.placement(ctx, want, g.ID)
		if err != nil {
			return Outcome{}, failure(g.Kind, g.ID, want, err)
		}
		stamp := e.timestamp()
		content := e.renderer.Group(g, render.GroupStamps{Created: stamp, Modified: stamp})
		if err := e.create(ctx, folder, prop, g.ID, target, content); err != nil {
			return Outcome{}, failure(g.Kind, g.ID, target, err)
		}
		logging.Ctx(ctx).Debug().Str("path", target).Int("members", len(g.Members)).Msg("Created group note")
		return Outcome{Action: ActionCreated, Kind: g.Kind, ID: g.ID, Path: target}, nil
	}

	existing, err := e.parseExisting(ctx, current, false)
	if err != nil {
		return Outcome{}, failure(g.Kind, g.ID, current, err)
	}
	content := e.mergeGroup(g, existing)

	out, err := e.commit(ctx, folder, prop, g.ID, current, want, content)
	if err != nil {
		return Outcome{}, failure(g.Kind, g.ID, current, err)
	}
	out.Kind, out.ID = g.Kind, g.ID
	logging.Ctx(ctx).Debug().Str("path", out.Path).Str("action", string(out.Action)).Msg("Reconciled group note")
	return out, nil
}

// mergeGroup folds g into an existing grouped note.
//
// Status lists, aliases and series genres from the existing header seed the
// merge so that members missing from an incremental fetch keep their entry.
// Incoming members then overwrite what they touch. With pruning on, only
// incoming members survive; aliases are always kept.
func (e *Engine) mergeGroup(g metadata.Group, existing *document.Parsed) string {
	h := existing.Header
	prune := e.pruning()
	seriesGenres := g.Kind == metadata.KindSeries && e.settings.Fields.Enabled(fields.SeriesGenres)

	tally := make(metadata.Tally)
	aliases := h.Strings(settings.AliasesProperty)
	var genres []string
	if !prune {
		for _, k := range []fields.Key{fields.BooksToRead, fields.BooksReading, fields.BooksRead, fields.BooksDNF} {
			tally.Seed(k, h.Ints(e.renderer.Property(k)))
		}
		if seriesGenres {
			genres = append(genres, h.Strings(e.renderer.Property(fields.SeriesGenres))...)
		}
	}

	// existing blocks in document order, then new members appended
	var blocks []render.Block
	pos := make(map[int]int)
	if !prune {
		for _, m := range existing.Members {
			if _, dup := pos[m.ID]; dup {
				continue
			}
			pos[m.ID] = len(blocks)
			blocks = append(blocks, render.Block{ID: m.ID, SortKey: m.SortKey, Content: m.Content})
		}
	}

	for _, m := range g.Members {
		var personal string
		if prior, ok := existing.Member(m.ItemID); ok {
			personal = prior.Personal
		}
		b := e.renderer.Member(g.Kind, m, personal)
		if i, ok := pos[m.ItemID]; ok {
			blocks[i] = b
		} else {
			pos[m.ItemID] = len(blocks)
			blocks = append(blocks, b)
		}

		tally.Set(m.ItemID, m.StatusID)
		if m.Title != "" {
			aliases = append(aliases, m.Title)
		}
		if seriesGenres {
			genres = append(genres, m.Genres...)
		}
	}
	sort.SliceStable(blocks, func(i, j int) bool { return blocks[i].SortKey < blocks[j].SortKey })

	values := tally.Values(e.settings.Fields)
	genres = metadata.Dedupe(genres)
	if seriesGenres {
		values[fields.SeriesGenres] = metadata.List(genres)
	}
	for _, d := range fields.Definitions {
		if v, ok := values[d.Key]; ok {
			h.Set(e.renderer.Property(d.Key), e.renderer.FormatValue(d.Key, v))
		}
	}
	if p := e.settings.Group.DateModifiedProperty; p != "" {
		h.Set(p, document.QuoteString(e.timestamp()))
	}
	if e.settings.Group.AddAliases && h.Has(settings.AliasesProperty) {
		h.Set(settings.AliasesProperty, document.FormatList(metadata.Dedupe(aliases)))
	}

	body := e.renderer.GroupBody(g.Kind, g.Name, genres, blocks)
	return render.Assemble(h, existing.Preamble, body, existing.Trailer)
}
