// Package render turns metadata into note text: a header block, a
// machine-owned body wrapped in content markers and, for grouped notes, one
// member block per book.
//
// The renderer never writes past the closing content marker; the caller
// supplies the personal zone that follows it.
package render

import (
	"strconv"
	"strings"

	"github.com/agentstation/shelfmark/pkg/document"
	"github.com/agentstation/shelfmark/pkg/fields"
	"github.com/agentstation/shelfmark/pkg/metadata"
	"github.com/agentstation/shelfmark/pkg/settings"
)

// NewPreamble and NewTrailer are the zones written around the machine body
// of a freshly created note.
const (
	NewPreamble = "\n"
	NewTrailer  = "\n\n"
)

// Renderer renders notes for one settings snapshot.
type Renderer struct {
	settings settings.Settings
	props    fields.Properties
}

// New returns a renderer bound to s.
func New(s settings.Settings) *Renderer {
	return &Renderer{settings: s, props: s.Fields.Resolve()}
}

// Assemble joins the zones of a note.
func Assemble(h document.Header, preamble, body, trailer string) string {
	var b strings.Builder
	b.WriteString(h.String())
	b.WriteString(preamble)
	b.WriteString(document.ContentStart)
	b.WriteByte('\n')
	if body != "" {
		b.WriteString(body)
		b.WriteByte('\n')
	}
	b.WriteString(document.ContentEnd)
	b.WriteString(trailer)
	return b.String()
}

// formatValue renders one header value. The description is folded onto a
// single line.
func formatValue(k fields.Key, v metadata.Value) string {
	switch v.Kind {
	case metadata.ListValue:
		return document.FormatList(v.List)
	case metadata.IntValue:
		return strconv.Itoa(v.Int)
	default:
		if k == fields.Description {
			return document.QuoteString(document.CollapseLines(v.Str))
		}
		return document.QuoteString(v.Str)
	}
}

// writeValues appends values and activity intervals in definition order.
func (r *Renderer) writeValues(h *document.Header, values map[fields.Key]metadata.Value, activity map[fields.Key]metadata.Interval) {
	for _, d := range fields.Definitions {
		if d.IsActivityDate {
			iv, ok := activity[d.Key]
			if !ok {
				continue
			}
			if iv.Start != "" {
				h.Set(r.props.Start(d.Key), document.QuoteString(iv.Start))
			}
			if iv.End != "" {
				h.Set(r.props.End(d.Key), document.QuoteString(iv.End))
			}
			continue
		}
		if v, ok := values[d.Key]; ok {
			h.Set(r.props.Name(d.Key), formatValue(d.Key, v))
		}
	}
}

// Property returns the configured header name of k.
func (r *Renderer) Property(k fields.Key) string {
	return r.props.Name(k)
}

// FormatValue renders a header value the way the renderer writes it.
func (r *Renderer) FormatValue(k fields.Key, v metadata.Value) string {
	return formatValue(k, v)
}

// blocks joins non-empty paragraphs with blank lines.
func blocks(parts ...string) string {
	out := parts[:0:0]
	for _, p := range parts {
		if strings.TrimSpace(p) != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, "\n\n")
}
