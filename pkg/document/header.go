package document

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/goccy/go-yaml"

	"github.com/agentstation/shelfmark/pkg/errors"
)

// Entry is one top-level header property. Text holds the entry's original
// lines, including any indented continuation lines, so that untouched
// entries round-trip unchanged. Entries with an empty Key carry comments or
// blank lines.
type Entry struct {
	Key  string
	Text string
}

// Header is an ordered list of entries.
type Header struct {
	Entries []Entry
}

func parseHeader(lines []line) (Header, error) {
	var h Header
	for _, l := range lines {
		t := l.text
		if isContinuation(t) && len(h.Entries) > 0 {
			last := &h.Entries[len(h.Entries)-1]
			last.Text += "\n" + t
			continue
		}
		key, _, ok := strings.Cut(t, ":")
		if !ok || strings.TrimSpace(t) == "" || strings.HasPrefix(strings.TrimSpace(t), "#") {
			h.Entries = append(h.Entries, Entry{Text: t})
			continue
		}
		key = strings.TrimSpace(key)
		if key == "" {
			return Header{}, errors.NewParseError("header", "", fmt.Sprintf("empty key in line %q", t), nil)
		}
		h.Entries = append(h.Entries, Entry{Key: key, Text: t})
	}
	return h, nil
}

func isContinuation(t string) bool {
	return strings.HasPrefix(t, " ") || strings.HasPrefix(t, "\t") || strings.HasPrefix(t, "- ") || t == "-"
}

// Has reports whether key is present.
func (h Header) Has(key string) bool {
	return h.index(key) >= 0
}

func (h Header) index(key string) int {
	for i, e := range h.Entries {
		if e.Key == key {
			return i
		}
	}
	return -1
}

// Value decodes the value of key. Values are read as YAML, which covers the
// JSON list literals this package writes as well as block lists written by
// other editors.
func (h Header) Value(key string) (any, bool) {
	i := h.index(key)
	if i < 0 {
		return nil, false
	}
	var m map[string]any
	if err := yaml.Unmarshal([]byte(h.Entries[i].Text), &m); err != nil {
		return nil, false
	}
	v, ok := m[key]
	return v, ok && v != nil
}

// Int decodes key as an integer.
func (h Header) Int(key string) (int, bool) {
	v, ok := h.Value(key)
	if !ok {
		return 0, false
	}
	return toInt(v)
}

// Strings decodes key as a list of strings. Scalars become one-element
// lists; numbers are formatted.
func (h Header) Strings(key string) []string {
	v, ok := h.Value(key)
	if !ok {
		return nil
	}
	items, isList := v.([]any)
	if !isList {
		items = []any{v}
	}
	out := make([]string, 0, len(items))
	for _, it := range items {
		if it == nil {
			continue
		}
		out = append(out, fmt.Sprint(it))
	}
	return out
}

// Ints decodes key as a list of integers, skipping entries that are not
// numeric.
func (h Header) Ints(key string) []int {
	var out []int
	for _, s := range h.Strings(key) {
		if n, err := strconv.Atoi(strings.TrimSpace(s)); err == nil {
			out = append(out, n)
		}
	}
	return out
}

// Set replaces the value of key in place, or appends it.
func (h *Header) Set(key, value string) {
	text := key + ": " + value
	if i := h.index(key); i >= 0 {
		h.Entries[i].Text = text
		return
	}
	h.Entries = append(h.Entries, Entry{Key: key, Text: text})
}

// String renders the header block including its fences and a trailing
// newline.
func (h Header) String() string {
	var b strings.Builder
	b.WriteString(HeaderFence + "\n")
	for _, e := range h.Entries {
		b.WriteString(e.Text)
		b.WriteByte('\n')
	}
	b.WriteString(HeaderFence + "\n")
	return b.String()
}

func toInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case uint64:
		return int(n), true
	case float64:
		if n == float64(int(n)) {
			return int(n), true
		}
	case string:
		if i, err := strconv.Atoi(strings.TrimSpace(n)); err == nil {
			return i, true
		}
	}
	return 0, false
}

// QuoteString renders a double-quoted header string.
func QuoteString(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	return `"` + strings.ReplaceAll(s, `"`, `\"`) + `"`
}

// CollapseLines folds line breaks, including escaped "\n" sequences, and
// runs of whitespace into single spaces.
func CollapseLines(s string) string {
	s = strings.ReplaceAll(s, `\n`, " ")
	return strings.Join(strings.Fields(s), " ")
}

// FormatList renders a list as a JSON array literal. A nil list renders
// as [].
func FormatList(items []string) string {
	if items == nil {
		items = []string{}
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	// encoding a []string cannot fail
	_ = enc.Encode(items)
	return strings.TrimSuffix(buf.String(), "\n")
}
