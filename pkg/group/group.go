// Package group partitions normalized records into author and series
// buckets with a deterministic order.
package group

import (
	"sort"

	"github.com/agentstation/shelfmark/pkg/catalog"
	"github.com/agentstation/shelfmark/pkg/metadata"
)

// UnknownID is the bucket id used when a record has no linking id.
const UnknownID = -1

// Display names of the unknown buckets.
const (
	UnknownSeries = "Unknown Series"
	UnknownAuthor = "Unknown Author"
)

// Bucket is one author or series with its ordered members.
type Bucket struct {
	ID      int
	Name    string
	Members []metadata.Metadata
}

// Result holds the series and author buckets.
type Result struct {
	Series  []Bucket
	Authors []Bucket
}

// Group partitions records into buckets. Records the user has not started
// are left out. A record with a series membership joins its series bucket;
// everything else joins the bucket of its first author.
//
// Members are ordered by sort key with ties broken by fetch sequence, and
// buckets by their earliest member, so the result depends only on the set
// of records and never on slice order.
func Group(records []metadata.Metadata) Result {
	series := make(map[int]*Bucket)
	authors := make(map[int]*Bucket)

	for _, m := range records {
		if m.StatusID == catalog.StatusWantToRead {
			continue
		}
		if link := seriesLink(m); link != nil {
			add(series, idOrUnknown(link.ID), nameOr(link.Name, UnknownSeries), m)
			continue
		}
		id, name := UnknownID, UnknownAuthor
		if m.Group != nil && m.Group.Author != nil {
			id = idOrUnknown(m.Group.Author.ID)
			name = nameOr(m.Group.Author.Name, UnknownAuthor)
		}
		add(authors, id, name, m)
	}

	return Result{
		Series:  finish(series, metadata.KindSeries),
		Authors: finish(authors, metadata.KindAuthor),
	}
}

func seriesLink(m metadata.Metadata) *metadata.SeriesLink {
	if m.Group == nil || m.Group.Series == nil || m.Group.Series.Name == "" {
		return nil
	}
	return m.Group.Series
}

func add(buckets map[int]*Bucket, id int, name string, m metadata.Metadata) {
	b, ok := buckets[id]
	if !ok {
		b = &Bucket{ID: id, Name: name}
		buckets[id] = b
	}
	b.Members = append(b.Members, m)
}

func finish(buckets map[int]*Bucket, kind metadata.Kind) []Bucket {
	out := make([]Bucket, 0, len(buckets))
	for _, b := range buckets {
		SortMembers(b.Members, kind)
		// the display name comes from the earliest fetched member
		b.Name = nameFor(b, kind)
		out = append(out, *b)
	}
	sort.Slice(out, func(i, j int) bool {
		si, sj := minSeq(out[i]), minSeq(out[j])
		if si != sj {
			return si < sj
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// SortMembers orders members by sort key for kind, then by fetch sequence.
func SortMembers(members []metadata.Metadata, kind metadata.Kind) {
	sort.SliceStable(members, func(i, j int) bool {
		ki, kj := members[i].SortKey(kind), members[j].SortKey(kind)
		if ki != kj {
			return ki < kj
		}
		return members[i].Seq < members[j].Seq
	})
}

func nameFor(b *Bucket, kind metadata.Kind) string {
	var first *metadata.Metadata
	for i := range b.Members {
		if first == nil || b.Members[i].Seq < first.Seq {
			first = &b.Members[i]
		}
	}
	if kind == metadata.KindSeries {
		if first != nil && first.Group != nil && first.Group.Series != nil {
			return nameOr(first.Group.Series.Name, UnknownSeries)
		}
		return UnknownSeries
	}
	if first != nil && first.Group != nil && first.Group.Author != nil {
		return nameOr(first.Group.Author.Name, UnknownAuthor)
	}
	return UnknownAuthor
}

func minSeq(b Bucket) int {
	lowest := 0
	for i, m := range b.Members {
		if i == 0 || m.Seq < lowest {
			lowest = m.Seq
		}
	}
	return lowest
}

func idOrUnknown(id *int) int {
	if id == nil {
		return UnknownID
	}
	return *id
}

func nameOr(name, fallback string) string {
	if name == "" {
		return fallback
	}
	return name
}
