package render

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/agentstation/shelfmark/pkg/document"
	"github.com/agentstation/shelfmark/pkg/fields"
	"github.com/agentstation/shelfmark/pkg/metadata"
	"github.com/agentstation/shelfmark/pkg/settings"
)

// Block is a rendered member block awaiting placement.
type Block struct {
	ID      int
	SortKey float64
	Content string
}

// String wraps the block content in its markers.
func (b Block) String() string {
	return document.MemberStart(b.ID, b.SortKey) + "\n" + b.Content + "\n" + document.MemberEnd(b.ID, b.SortKey)
}

// GroupStamps are the timestamps written into a grouped header.
type GroupStamps struct {
	Created  string
	Modified string
}

// GroupHeader builds the header of a new author or series note.
func (r *Renderer) GroupHeader(g metadata.Group, stamps GroupStamps) document.Header {
	var h document.Header
	h.Set(g.Kind.IDProperty(), strconv.Itoa(g.ID))
	r.writeValues(&h, g.Values, nil)
	if p := r.settings.Group.DateCreatedProperty; p != "" && stamps.Created != "" {
		h.Set(p, document.QuoteString(stamps.Created))
	}
	if p := r.settings.Group.DateModifiedProperty; p != "" && stamps.Modified != "" {
		h.Set(p, document.QuoteString(stamps.Modified))
	}
	if r.settings.Group.AddAliases && len(g.Aliases) > 0 {
		h.Set(settings.AliasesProperty, document.FormatList(g.Aliases))
	}
	return h
}

// MemberContent renders the inside of one member block, carrying personal
// through into the nested personal sub-zone.
func (r *Renderer) MemberContent(kind metadata.Kind, m metadata.Metadata, personal string) string {
	title := m.Body.Title

	var cover, desc, review, link string
	if m.Body.CoverURL != "" {
		cover = fmt.Sprintf("![%s Cover|150](%s)", EscapeMarkdown(title), m.Body.CoverURL)
	}
	if d := m.Str(fields.Description); d != "" {
		desc = Blockquote(d)
	}

	var facts []string
	if kind == metadata.KindSeries && m.Group != nil && m.Group.Series != nil && m.Group.Series.Position != 0 {
		facts = append(facts, "**Position:** "+metadata.FormatNumber(m.Group.Series.Position))
	}
	if kind == metadata.KindAuthor && m.ReleaseYear > 0 {
		facts = append(facts, "**Released:** "+strconv.Itoa(m.ReleaseYear))
	}
	if genres := r.FormatGenres(m.Genres); len(genres) > 0 {
		facts = append(facts, "**Genres:** "+strings.Join(genres, ", "))
	}
	if m.StatusID != 0 {
		facts = append(facts, "**Status:** "+r.settings.StatusLabel(m.StatusID))
	}
	if m.Body.Review != "" {
		review = "### My Review\n\n" + FormatReview(m.Body.Review)
	}
	if m.URL != "" {
		link = fmt.Sprintf("[Hardcover.app](%s)", m.URL)
	}

	content := blocks("## "+EscapeMarkdown(title), cover, desc, strings.Join(facts, "\n"), review, link)
	content += "\n\n" + document.PersonalStart
	if p := strings.TrimSpace(personal); p != "" {
		content += "\n" + p
	}
	return content
}

// Member renders a complete member block.
func (r *Renderer) Member(kind metadata.Kind, m metadata.Metadata, personal string) Block {
	return Block{ID: m.ItemID, SortKey: m.SortKey(kind), Content: r.MemberContent(kind, m, personal)}
}

// GroupBody renders the machine-owned body of a grouped note from blocks
// already in display order. Series notes list their combined genres.
func (r *Renderer) GroupBody(kind metadata.Kind, name string, genres []string, members []Block) string {
	var genreLine string
	if kind == metadata.KindSeries && r.settings.Fields.Enabled(fields.SeriesGenres) && len(genres) > 0 {
		genreLine = "**Genres:** " + strings.Join(r.FormatGenres(genres), ", ")
	}
	rendered := make([]string, len(members))
	for i, b := range members {
		rendered[i] = b.String()
	}
	return blocks("# "+EscapeMarkdown(name), genreLine, strings.Join(rendered, "\n\n"))
}

// Group renders a complete new grouped note. Members must already be in
// display order.
func (r *Renderer) Group(g metadata.Group, stamps GroupStamps) string {
	members := make([]Block, len(g.Members))
	for i, m := range g.Members {
		members[i] = r.Member(g.Kind, m, "")
	}
	var genres []string
	if v, ok := g.Values[fields.SeriesGenres]; ok {
		genres = v.List
	}
	body := r.GroupBody(g.Kind, g.Name, genres, members)
	return Assemble(r.GroupHeader(g, stamps), NewPreamble, body, NewTrailer)
}

// FormatGenres applies the genre tag template, if one is configured.
func (r *Renderer) FormatGenres(genres []string) []string {
	tmpl := r.settings.GenresAsTags
	if tmpl == "" {
		return genres
	}
	out := make([]string, len(genres))
	for i, g := range genres {
		out[i] = strings.ReplaceAll(tmpl, "{{genre}}", KebabCase(g))
	}
	return out
}
