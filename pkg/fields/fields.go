// Package fields describes the optional note attributes shelfmark can emit
// and the property names they are written under.
//
// The set of keys is closed and ordered; header blocks are always written in
// Definitions order so that the output never depends on map iteration.
package fields

import (
	"fmt"
	"strings"
)

// Key identifies an emittable attribute.
type Key string

// Keys in definition order.
const (
	Title        Key = "title"
	Description  Key = "description"
	Cover        Key = "cover"
	ReleaseDate  Key = "releaseDate"
	Series       Key = "series"
	Authors      Key = "authors"
	Contributors Key = "contributors"
	Publisher    Key = "publisher"
	URL          Key = "url"
	Genres       Key = "genres"
	Status       Key = "status"
	Rating       Key = "rating"
	Review       Key = "review"
	FirstRead    Key = "firstRead"
	LastRead     Key = "lastRead"
	TotalReads   Key = "totalReads"
	ReadYears    Key = "readYears"
	BookCount    Key = "bookCount"
	BooksToRead  Key = "booksToRead"
	BooksReading Key = "booksReading"
	BooksRead    Key = "booksRead"
	BooksDNF     Key = "booksDNF"
	SeriesGenres Key = "seriesGenres"
)

// Definition describes one key.
type Definition struct {
	Key            Key
	Name           string
	Description    string
	HasDataSource  bool
	IsActivityDate bool
	Grouped        bool
}

// Definitions lists every key in the fixed header order.
var Definitions = []Definition{
	{Key: Title, Name: "Title", Description: "Book title", HasDataSource: true},
	{Key: Description, Name: "Description", Description: "Book description"},
	{Key: Cover, Name: "Cover", Description: "Book cover image", HasDataSource: true},
	{Key: ReleaseDate, Name: "Release Date", Description: "Publication date", HasDataSource: true},
	{Key: Series, Name: "Series", Description: "Series information"},
	{Key: Authors, Name: "Authors", Description: "Book authors", HasDataSource: true},
	{Key: Contributors, Name: "Contributors", Description: "Other contributors (translators, narrators, etc.)", HasDataSource: true},
	{Key: Publisher, Name: "Publisher", Description: "Publisher name"},
	{Key: URL, Name: "URL", Description: "Library page URL"},
	{Key: Genres, Name: "Genres", Description: "Book genres"},
	{Key: Status, Name: "Status", Description: "Reading status"},
	{Key: Rating, Name: "Rating", Description: "Your rating"},
	{Key: Review, Name: "Review", Description: "Your review of the book"},
	{Key: FirstRead, Name: "First Read", Description: "Start and end date of first read", IsActivityDate: true},
	{Key: LastRead, Name: "Last Read", Description: "Start and end date of last read", IsActivityDate: true},
	{Key: TotalReads, Name: "Total Reads", Description: "Times read"},
	{Key: ReadYears, Name: "Read Years", Description: "Years in which the book was read"},
	{Key: BookCount, Name: "Book Count", Description: "Total books for author/series", Grouped: true},
	{Key: BooksToRead, Name: "Books To Read", Description: "Books to read for author/series", Grouped: true},
	{Key: BooksReading, Name: "Books Reading", Description: "Books reading for author/series", Grouped: true},
	{Key: BooksRead, Name: "Books Read", Description: "Books read for author/series", Grouped: true},
	{Key: BooksDNF, Name: "Books DNF", Description: "Books not finished for author/series", Grouped: true},
	{Key: SeriesGenres, Name: "Series Genres", Description: "Combined genres of a series", Grouped: true},
}

var index = func() map[Key]int {
	m := make(map[Key]int, len(Definitions))
	for i, d := range Definitions {
		m[d.Key] = i
	}
	return m
}()

// Lookup returns the definition of k.
func Lookup(k Key) (Definition, bool) {
	i, ok := index[k]
	if !ok {
		return Definition{}, false
	}
	return Definitions[i], true
}

// ParseKey resolves a key name case-insensitively, ignoring '_' and '-'.
// Config loaders lowercase map keys, so "releasedate" and "release_date"
// both resolve to ReleaseDate.
func ParseKey(name string) (Key, error) {
	want := squash(name)
	for _, d := range Definitions {
		if squash(string(d.Key)) == want {
			return d.Key, nil
		}
	}
	return "", fmt.Errorf("unknown field %q", name)
}

func squash(s string) string {
	s = strings.ToLower(s)
	s = strings.ReplaceAll(s, "_", "")
	return strings.ReplaceAll(s, "-", "")
}

// Config is the per-key user configuration.
type Config struct {
	Enabled           bool   `mapstructure:"enabled" yaml:"enabled" json:"enabled"`
	PropertyName      string `mapstructure:"property" yaml:"property,omitempty" json:"property,omitempty"`
	StartPropertyName string `mapstructure:"start_property" yaml:"start_property,omitempty" json:"start_property,omitempty"`
	EndPropertyName   string `mapstructure:"end_property" yaml:"end_property,omitempty" json:"end_property,omitempty"`
}

// Set maps every key to its configuration.
type Set map[Key]Config

// DefaultSet returns the out-of-the-box configuration.
func DefaultSet() Set {
	s := make(Set, len(Definitions))
	for _, d := range Definitions {
		c := Config{Enabled: true, PropertyName: string(d.Key)}
		if d.IsActivityDate {
			c.StartPropertyName = string(d.Key) + "Start"
			c.EndPropertyName = string(d.Key) + "End"
		}
		s[d.Key] = c
	}
	s[Series] = Config{Enabled: true, PropertyName: "seriesName"}
	s[ReadYears] = Config{Enabled: false, PropertyName: string(ReadYears)}
	return s
}

// Clone returns a copy that shares nothing with s.
func (s Set) Clone() Set {
	out := make(Set, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}

// Enabled reports whether k is switched on. Unknown keys are off.
func (s Set) Enabled(k Key) bool {
	return s[k].Enabled
}

// Property returns the header property name for k, never empty.
func (s Set) Property(k Key) string {
	if name := strings.TrimSpace(s[k].PropertyName); name != "" {
		return name
	}
	return string(k)
}

// StartProperty returns the start property of an activity key.
func (s Set) StartProperty(k Key) string {
	if name := strings.TrimSpace(s[k].StartPropertyName); name != "" {
		return name
	}
	return string(k) + "Start"
}

// EndProperty returns the end property of an activity key.
func (s Set) EndProperty(k Key) string {
	if name := strings.TrimSpace(s[k].EndPropertyName); name != "" {
		return name
	}
	return string(k) + "End"
}

// Properties is the resolved key to property-name table of one sync.
type Properties struct {
	names map[Key]string
	start map[Key]string
	end   map[Key]string
}

// Resolve computes the property table for s.
func (s Set) Resolve() Properties {
	p := Properties{
		names: make(map[Key]string, len(Definitions)),
		start: make(map[Key]string),
		end:   make(map[Key]string),
	}
	for _, d := range Definitions {
		p.names[d.Key] = s.Property(d.Key)
		if d.IsActivityDate {
			p.start[d.Key] = s.StartProperty(d.Key)
			p.end[d.Key] = s.EndProperty(d.Key)
		}
	}
	return p
}

// Name returns the property name of k.
func (p Properties) Name(k Key) string {
	if n, ok := p.names[k]; ok {
		return n
	}
	return string(k)
}

// Start returns the start property of an activity key.
func (p Properties) Start(k Key) string { return p.start[k] }

// End returns the end property of an activity key.
func (p Properties) End(k Key) string { return p.end[k] }
