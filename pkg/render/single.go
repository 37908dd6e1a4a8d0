package render

import (
	"fmt"
	"strconv"

	"github.com/agentstation/shelfmark/pkg/document"
	"github.com/agentstation/shelfmark/pkg/fields"
	"github.com/agentstation/shelfmark/pkg/metadata"
	"github.com/agentstation/shelfmark/pkg/settings"
)

// SingleHeader builds the header of a book note: the book id first, then
// every present value in definition order.
func (r *Renderer) SingleHeader(m metadata.Metadata) document.Header {
	var h document.Header
	h.Set(settings.BookIDProperty, strconv.Itoa(m.ItemID))
	r.writeValues(&h, m.Values, m.Activity)
	return h
}

// SingleBody renders the machine-owned body of a book note.
func (r *Renderer) SingleBody(m metadata.Metadata) string {
	title := EscapeMarkdown(m.Body.Title)

	var cover, desc, review string
	if m.Body.CoverURL != "" {
		cover = fmt.Sprintf("![%s Cover|300](%s)", title, m.Body.CoverURL)
	}
	if d := m.Str(fields.Description); d != "" {
		desc = Blockquote(d)
	}
	if m.Body.Review != "" {
		review = "## My Review\n\n" + FormatReview(m.Body.Review)
	}

	return blocks("# "+title, cover, desc, review)
}

// Single renders a complete book note around the given zones.
func (r *Renderer) Single(m metadata.Metadata, preamble, trailer string) string {
	return Assemble(r.SingleHeader(m), preamble, r.SingleBody(m), trailer)
}
