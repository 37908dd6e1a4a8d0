package metadata

import (
	"sort"
	"strconv"

	"github.com/agentstation/shelfmark/pkg/catalog"
	"github.com/agentstation/shelfmark/pkg/fields"
	"github.com/agentstation/shelfmark/pkg/settings"
)

// Group is the aggregate metadata of an author or series note.
type Group struct {
	Kind    Kind
	ID      int
	Name    string
	Members []Metadata
	Values  map[fields.Key]Value
	Aliases []string
}

// StatusKey maps a status code to the header list that tracks it. The
// codes are fixed; status label remapping never affects bucketing.
func StatusKey(statusID int) (fields.Key, bool) {
	switch statusID {
	case catalog.StatusWantToRead:
		return fields.BooksToRead, true
	case catalog.StatusReading:
		return fields.BooksReading, true
	case catalog.StatusRead:
		return fields.BooksRead, true
	case catalog.StatusDNF:
		return fields.BooksDNF, true
	default:
		return "", false
	}
}

var statusKeys = []fields.Key{fields.BooksToRead, fields.BooksReading, fields.BooksRead, fields.BooksDNF}

// Tally records the latest known status of every member id of a group.
type Tally map[int]int

// Set records status for id.
func (t Tally) Set(id, status int) {
	t[id] = status
}

// Seed loads ids listed under key in a previous header.
func (t Tally) Seed(key fields.Key, ids []int) {
	status := 0
	switch key {
	case fields.BooksToRead:
		status = catalog.StatusWantToRead
	case fields.BooksReading:
		status = catalog.StatusReading
	case fields.BooksRead:
		status = catalog.StatusRead
	case fields.BooksDNF:
		status = catalog.StatusDNF
	default:
		return
	}
	for _, id := range ids {
		t[id] = status
	}
}

// Values computes the enabled count and per-status id lists. Ids are listed
// in ascending numeric order; every tallied id counts toward the total.
func (t Tally) Values(cfg fields.Set) map[fields.Key]Value {
	ids := make([]int, 0, len(t))
	for id := range t {
		ids = append(ids, id)
	}
	sort.Ints(ids)

	lists := make(map[fields.Key][]string, len(statusKeys))
	for _, k := range statusKeys {
		lists[k] = []string{}
	}
	for _, id := range ids {
		if k, ok := StatusKey(t[id]); ok {
			lists[k] = append(lists[k], strconv.Itoa(id))
		}
	}

	out := make(map[fields.Key]Value)
	if cfg.Enabled(fields.BookCount) {
		out[fields.BookCount] = Int(len(ids))
	}
	for _, k := range statusKeys {
		if cfg.Enabled(k) {
			out[k] = List(lists[k])
		}
	}
	return out
}

// BuildGroup aggregates the members of one bucket into group metadata.
func BuildGroup(kind Kind, id int, name string, members []Metadata, s settings.Settings) Group {
	g := Group{Kind: kind, ID: id, Name: name, Members: members}

	tally := make(Tally, len(members))
	var aliases, genres []string
	for _, m := range members {
		tally.Set(m.ItemID, m.StatusID)
		if m.Title != "" {
			aliases = append(aliases, m.Title)
		}
		genres = append(genres, m.Genres...)
	}

	g.Values = tally.Values(s.Fields)
	if s.Group.AddAliases {
		g.Aliases = Dedupe(aliases)
	}
	if kind == KindSeries && s.Fields.Enabled(fields.SeriesGenres) {
		g.Values[fields.SeriesGenres] = List(Dedupe(genres))
	}
	return g
}

// Dedupe removes repeated entries, keeping first occurrences in order.
func Dedupe(in []string) []string {
	seen := make(map[string]bool, len(in))
	out := make([]string, 0, len(in))
	for _, v := range in {
		if seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out
}
