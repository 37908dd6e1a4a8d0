// Package catalog defines the raw library records delivered by a library
// source. Records are fetched per sync and never persisted as-is.
package catalog

import "strings"

// Status codes carried on Record.StatusID.
const (
	StatusWantToRead = 1
	StatusReading    = 2
	StatusRead       = 3
	StatusPaused     = 4
	StatusDNF        = 5
	StatusIgnored    = 6
)

// RoleAuthor is the contribution role that marks an author.
const RoleAuthor = "Author"

// Record is one entry of the user's library.
type Record struct {
	ItemID    int      `json:"book_id"`
	UpdatedAt string   `json:"updated_at"`
	Rating    *float64 `json:"rating"`
	StatusID  int      `json:"status_id"`
	Review    *string  `json:"review"`
	ReviewRaw *string  `json:"review_raw"`
	Book      Source   `json:"book"`
	Edition   Source   `json:"edition"`
	Reads     []Read   `json:"user_book_reads"`
}

// Source is one of the two alternate nested records of an item. Book is the
// primary source and Edition the secondary one.
type Source struct {
	Title        string             `json:"title"`
	ReleaseDate  string             `json:"release_date"`
	Image        *Image             `json:"cached_image"`
	Contributors []Contribution     `json:"cached_contributors"`
	Description  *string            `json:"description"`
	Slug         string             `json:"slug"`
	Series       []SeriesMembership `json:"book_series"`
	Tags         *Tags              `json:"cached_tags"`
	Publisher    *Publisher         `json:"publisher"`
}

// Image is a cached cover image.
type Image struct {
	URL string `json:"url"`
}

// Contribution links a person to a source with an optional role.
type Contribution struct {
	Author Person  `json:"author"`
	Role   *string `json:"contribution"`
}

// IsAuthor reports whether the contribution denotes an author. An absent or
// empty role counts as an author.
func (c Contribution) IsAuthor() bool {
	return c.Role == nil || *c.Role == "" || *c.Role == RoleAuthor
}

// Person is a contributor.
type Person struct {
	ID   *int   `json:"id"`
	Name string `json:"name"`
}

// SeriesMembership places a source within a series.
type SeriesMembership struct {
	Series   SeriesRef `json:"series"`
	Position *float64  `json:"position"`
}

// SeriesRef identifies a series.
type SeriesRef struct {
	ID   *int   `json:"id"`
	Name string `json:"name"`
}

// Tags holds the categorized tags of a source.
type Tags struct {
	Genre []Tag `json:"Genre"`
}

// Tag is a single tag.
type Tag struct {
	Tag string `json:"tag"`
}

// Publisher of an edition.
type Publisher struct {
	Name string `json:"name"`
}

// Read is one reading interval. Either bound may be absent.
type Read struct {
	StartedAt  *string `json:"started_at"`
	FinishedAt *string `json:"finished_at"`
}

// ReviewText returns the rich review when present, else the raw one.
func (r Record) ReviewText() string {
	if r.Review != nil && strings.TrimSpace(*r.Review) != "" {
		return *r.Review
	}
	if r.ReviewRaw != nil {
		return *r.ReviewRaw
	}
	return ""
}

// Genres returns the distinct genre tag names in order.
func (s Source) Genres() []string {
	if s.Tags == nil {
		return nil
	}
	seen := make(map[string]bool, len(s.Tags.Genre))
	var out []string
	for _, t := range s.Tags.Genre {
		name := strings.TrimSpace(t.Tag)
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		out = append(out, name)
	}
	return out
}

// Ptr returns a pointer to v. Used for building records in tests and fixtures.
func Ptr[T any](v T) *T {
	return &v
}
