package hardcover

import (
	"strings"

	"github.com/agentstation/shelfmark/pkg/fields"
	"github.com/agentstation/shelfmark/pkg/settings"
)

const identityQuery = `query GetUserId {
  me {
    id
  }
}`

const countQuery = `query GetBooksCount($userId: Int!) {
  user_books_aggregate(where: {user_id: {_eq: $userId}}) {
    aggregate {
      count
    }
  }
}`

// QueryBuilder builds the library query for one settings snapshot. Only
// the attributes the snapshot needs are selected.
type QueryBuilder struct {
	settings settings.Settings
}

// NewQueryBuilder returns a builder for s.
func NewQueryBuilder(s settings.Settings) *QueryBuilder {
	return &QueryBuilder{settings: s}
}

// LibraryQuery returns the paged library query. The updated_at filter and
// its variable are only present when incremental is true.
func (q *QueryBuilder) LibraryQuery(incremental bool) string {
	var b strings.Builder
	b.WriteString("query GetUserLibrary($userId: Int!, $offset: Int!, $limit: Int!")
	if incremental {
		b.WriteString(", $updatedAfter: timestamptz!")
	}
	b.WriteString(") {\n  user_books(\n    where: {user_id: {_eq: $userId}")
	if incremental {
		b.WriteString(", updated_at: {_gt: $updatedAfter}")
	}
	b.WriteString("}\n    order_by: {book_id: asc}\n    offset: $offset\n    limit: $limit\n  ) {\n")

	writeFields(&b, "    ", append([]string{"book_id", "updated_at"}, q.recordFields()...))
	b.WriteString("    book {\n")
	writeFields(&b, "      ", q.sourceFields(settings.SourceBook))
	b.WriteString("    }\n    edition {\n")
	writeFields(&b, "      ", q.sourceFields(settings.SourceEdition))
	b.WriteString("    }\n")
	if reads := q.readsField(); reads != "" {
		writeFields(&b, "    ", []string{reads})
	}
	b.WriteString("  }\n}")
	return b.String()
}

func writeFields(b *strings.Builder, indent string, list []string) {
	for _, f := range list {
		for _, line := range strings.Split(f, "\n") {
			b.WriteString(indent)
			b.WriteString(line)
			b.WriteByte('\n')
		}
	}
}

func (q *QueryBuilder) enabled(k fields.Key) bool {
	return q.settings.Fields.Enabled(k)
}

// grouping reports whether group notes are built, which needs data the
// field toggles may not ask for.
func (q *QueryBuilder) grouping() bool {
	return q.settings.Group.Enabled
}

func (q *QueryBuilder) recordFields() []string {
	var out []string
	if q.enabled(fields.Rating) {
		out = append(out, "rating")
	}
	// status drives grouping and member labels even when the header omits it
	if q.enabled(fields.Status) || q.grouping() {
		out = append(out, "status_id")
	}
	if q.enabled(fields.Review) {
		out = append(out, "review", "review_raw")
	}
	return out
}

// sourceFields lists the selection for the book or edition record.
// Attributes with a source preference are only requested from the
// preferred record.
func (q *QueryBuilder) sourceFields(src settings.Source) []string {
	prefs := q.settings.Sources
	primary := src == settings.SourceBook
	out := []string{"title"}

	// filename templates and group ordering use the year and authors
	if prefs.ReleaseDate == src {
		out = append(out, "release_date")
	}
	if q.enabled(fields.Cover) && prefs.Cover == src {
		out = append(out, "cached_image")
	}
	if prefs.Authors == src || q.enabled(fields.Contributors) && prefs.Contributors == src {
		out = append(out, "cached_contributors")
	}

	if primary {
		if q.enabled(fields.Description) {
			out = append(out, "description")
		}
		// group member blocks link to the book page and list its genres
		if q.enabled(fields.URL) || q.grouping() {
			out = append(out, "slug")
		}
		if q.enabled(fields.Genres) || q.grouping() {
			out = append(out, "cached_tags")
		}
		if q.enabled(fields.Series) || q.grouping() {
			out = append(out, "book_series {\n  series {\n    id\n    name\n  }\n  position\n}")
		}
	} else if q.enabled(fields.Publisher) {
		out = append(out, "publisher {\n  name\n}")
	}
	return out
}

func (q *QueryBuilder) readsField() string {
	if !q.enabled(fields.FirstRead) && !q.enabled(fields.LastRead) &&
		!q.enabled(fields.TotalReads) && !q.enabled(fields.ReadYears) {
		return ""
	}
	return "user_book_reads(order_by: {started_at: asc}) {\n  started_at\n  finished_at\n}"
}
