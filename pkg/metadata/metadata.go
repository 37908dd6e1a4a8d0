// Package metadata maps raw library records onto the canonical metadata
// shape that the renderer and reconciler consume.
package metadata

import (
	"github.com/agentstation/shelfmark/pkg/fields"
	"github.com/agentstation/shelfmark/pkg/settings"
)

// Kind distinguishes the three note types.
type Kind string

// Kinds.
const (
	KindBook   Kind = "book"
	KindAuthor Kind = "author"
	KindSeries Kind = "series"
)

// IDProperty returns the header key holding the note's identifier.
func (k Kind) IDProperty() string {
	switch k {
	case KindAuthor:
		return settings.AuthorIDProperty
	case KindSeries:
		return settings.SeriesIDProperty
	default:
		return settings.BookIDProperty
	}
}

// ValueKind tags the payload of a Value.
type ValueKind int

// Value kinds.
const (
	StringValue ValueKind = iota
	ListValue
	IntValue
)

// Value is a header-bound scalar or list.
type Value struct {
	Kind ValueKind
	Str  string
	List []string
	Int  int
}

// String wraps s.
func String(s string) Value { return Value{Kind: StringValue, Str: s} }

// List wraps l.
func List(l []string) Value { return Value{Kind: ListValue, List: l} }

// Int wraps n.
func Int(n int) Value { return Value{Kind: IntValue, Int: n} }

// Interval is a read activity date range. Either bound may be empty.
type Interval struct {
	Start string
	End   string
}

// Body is the non-header content of a note.
type Body struct {
	Title    string
	CoverURL string
	Review   string
}

// AuthorLink ties a record to an author for grouping.
type AuthorLink struct {
	ID          *int
	Name        string
	ReleaseYear int
}

// SeriesLink ties a record to a series for grouping.
type SeriesLink struct {
	ID       *int
	Name     string
	Position float64
}

// GroupInfo is computed in grouping mode only.
type GroupInfo struct {
	Author *AuthorLink
	Series *SeriesLink
}

// Metadata is the canonical form of one record.
//
// Values only ever holds enabled keys with data. Title, Authors, ReleaseYear,
// Genres and URL are carried regardless of field toggles because filenames,
// aliases and grouped bodies need them.
type Metadata struct {
	ItemID      int
	Seq         int
	StatusID    int
	Values      map[fields.Key]Value
	Activity    map[fields.Key]Interval
	Body        Body
	Title       string
	Authors     []string
	ReleaseYear int
	Genres      []string
	URL         string
	Rereads     int
	Group       *GroupInfo
}

// Has reports whether k carries a value.
func (m Metadata) Has(k fields.Key) bool {
	_, ok := m.Values[k]
	return ok
}

// Str returns the string value of k, or "".
func (m Metadata) Str(k fields.Key) string {
	return m.Values[k].Str
}

// SortKey returns the member ordering key inside a group of kind k.
func (m Metadata) SortKey(k Kind) float64 {
	if m.Group == nil {
		return 0
	}
	switch k {
	case KindSeries:
		if m.Group.Series != nil {
			return m.Group.Series.Position
		}
	case KindAuthor:
		if m.Group.Author != nil {
			return float64(m.Group.Author.ReleaseYear)
		}
	}
	return 0
}
