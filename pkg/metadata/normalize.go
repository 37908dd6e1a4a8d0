package metadata

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/agentstation/shelfmark/pkg/catalog"
	"github.com/agentstation/shelfmark/pkg/fields"
	"github.com/agentstation/shelfmark/pkg/settings"
)

// MaxPeople caps the author and contributor lists.
const MaxPeople = 5

// Untitled is used when no source carries a title.
const Untitled = "Untitled"

// Normalize maps rec onto Metadata using the field toggles and source
// preferences in s. It never fails: missing optional data omits the key.
// In group mode the author and series links used for bucketing are filled.
func Normalize(rec catalog.Record, s settings.Settings, groupMode bool) Metadata {
	cfg := s.Fields
	prefs := s.Sources

	m := Metadata{
		ItemID:   rec.ItemID,
		StatusID: rec.StatusID,
		Values:   make(map[fields.Key]Value),
		Activity: make(map[fields.Key]Interval),
	}

	m.Title = prefs.Pick(fields.Title, rec).Title
	if m.Title != "" && cfg.Enabled(fields.Title) {
		m.Values[fields.Title] = String(m.Title)
	}
	m.Body.Title = m.Title
	if m.Body.Title == "" {
		m.Body.Title = Untitled
	}

	if desc := rec.Book.Description; desc != nil && strings.TrimSpace(*desc) != "" && cfg.Enabled(fields.Description) {
		m.Values[fields.Description] = String(*desc)
	}

	if img := prefs.Pick(fields.Cover, rec).Image; img != nil && img.URL != "" && cfg.Enabled(fields.Cover) {
		m.Values[fields.Cover] = String(img.URL)
		m.Body.CoverURL = img.URL
	}

	releaseDate := prefs.Pick(fields.ReleaseDate, rec).ReleaseDate
	m.ReleaseYear = ReleaseYear(releaseDate)
	if releaseDate != "" && cfg.Enabled(fields.ReleaseDate) {
		m.Values[fields.ReleaseDate] = String(releaseDate)
	}

	var series *catalog.SeriesMembership
	if len(rec.Book.Series) > 0 {
		series = &rec.Book.Series[0]
	}
	if series != nil && series.Series.Name != "" && cfg.Enabled(fields.Series) {
		m.Values[fields.Series] = String(formatSeries(*series))
	}

	authors, firstAuthor := extractAuthors(prefs.Pick(fields.Authors, rec).Contributors)
	m.Authors = authors
	if len(authors) > 0 && cfg.Enabled(fields.Authors) {
		m.Values[fields.Authors] = List(authors)
	}

	if others := extractContributors(prefs.Pick(fields.Contributors, rec).Contributors); len(others) > 0 && cfg.Enabled(fields.Contributors) {
		m.Values[fields.Contributors] = List(others)
	}

	if pub := rec.Edition.Publisher; pub != nil && pub.Name != "" && cfg.Enabled(fields.Publisher) {
		m.Values[fields.Publisher] = String(pub.Name)
	}

	if rec.Book.Slug != "" {
		m.URL = fmt.Sprintf("%s/books/%s", s.BaseURL, rec.Book.Slug)
		if cfg.Enabled(fields.URL) {
			m.Values[fields.URL] = String(m.URL)
		}
	}

	m.Genres = rec.Book.Genres()
	if len(m.Genres) > 0 && cfg.Enabled(fields.Genres) {
		m.Values[fields.Genres] = List(m.Genres)
	}

	if rec.StatusID != 0 && cfg.Enabled(fields.Status) {
		m.Values[fields.Status] = List([]string{s.StatusLabel(rec.StatusID)})
	}

	if rec.Rating != nil && cfg.Enabled(fields.Rating) {
		m.Values[fields.Rating] = String(FormatRating(*rec.Rating))
	}

	if cfg.Enabled(fields.Review) {
		m.Body.Review = strings.TrimSpace(rec.ReviewText())
	}

	normalizeActivity(&m, rec.Reads, cfg)

	if groupMode {
		m.Group = &GroupInfo{}
		if series != nil && series.Series.Name != "" {
			link := &SeriesLink{ID: series.Series.ID, Name: series.Series.Name}
			if series.Position != nil {
				link.Position = *series.Position
			}
			m.Group.Series = link
		}
		if firstAuthor != nil {
			m.Group.Author = &AuthorLink{ID: firstAuthor.ID, Name: firstAuthor.Name, ReleaseYear: m.ReleaseYear}
		}
	}

	return m
}

func normalizeActivity(m *Metadata, reads []catalog.Read, cfg fields.Set) {
	if len(reads) == 0 {
		return
	}

	sorted := make([]catalog.Read, len(reads))
	copy(sorted, reads)
	sort.SliceStable(sorted, func(i, j int) bool {
		return readStart(sorted[i]).Before(readStart(sorted[j]))
	})

	first, last := sorted[0], sorted[len(sorted)-1]
	m.Rereads = max(0, len(sorted)-1)

	if cfg.Enabled(fields.FirstRead) {
		if iv := interval(first); iv != (Interval{}) {
			m.Activity[fields.FirstRead] = iv
		}
	}
	if cfg.Enabled(fields.LastRead) {
		if iv := interval(last); iv != (Interval{}) {
			m.Activity[fields.LastRead] = iv
		}
	}
	if cfg.Enabled(fields.TotalReads) {
		m.Values[fields.TotalReads] = Int(len(sorted))
	}

	if cfg.Enabled(fields.ReadYears) {
		seen := make(map[string]bool)
		var years []string
		for _, r := range sorted {
			ts := deref(r.FinishedAt)
			if ts == "" {
				ts = deref(r.StartedAt)
			}
			t, ok := parseDate(ts)
			if !ok {
				continue
			}
			y := strconv.Itoa(t.Year())
			if !seen[y] {
				seen[y] = true
				years = append(years, y)
			}
		}
		sort.Strings(years)
		if len(years) > 0 {
			m.Values[fields.ReadYears] = List(years)
		}
	}
}

// extractAuthors returns up to MaxPeople author names and the first author
// carrying an id (or the first author at all when none has one).
func extractAuthors(contribs []catalog.Contribution) ([]string, *catalog.Person) {
	var names []string
	var link *catalog.Person
	for i := range contribs {
		c := contribs[i]
		if !c.IsAuthor() || c.Author.Name == "" {
			continue
		}
		if c.Author.ID != nil && (link == nil || link.ID == nil) {
			link = &contribs[i].Author
		}
		if link == nil {
			link = &contribs[i].Author
		}
		if len(names) < MaxPeople {
			names = append(names, c.Author.Name)
		}
	}
	return names, link
}

func extractContributors(contribs []catalog.Contribution) []string {
	var out []string
	for _, c := range contribs {
		if c.IsAuthor() || c.Author.Name == "" {
			continue
		}
		out = append(out, fmt.Sprintf("%s (%s)", c.Author.Name, capitalize(*c.Role)))
		if len(out) == MaxPeople {
			break
		}
	}
	return out
}

// capitalize title-cases a contribution role. Casers are stateful, so one is
// built per call.
func capitalize(role string) string {
	return cases.Title(language.English).String(role)
}

func formatSeries(sm catalog.SeriesMembership) string {
	if sm.Position == nil {
		return sm.Series.Name
	}
	return fmt.Sprintf("%s #%s", sm.Series.Name, FormatNumber(*sm.Position))
}

// FormatRating renders a rating as "n/5".
func FormatRating(r float64) string {
	return FormatNumber(r) + "/5"
}

// FormatNumber renders n without a trailing ".0".
func FormatNumber(n float64) string {
	return strconv.FormatFloat(n, 'f', -1, 64)
}

// ReleaseYear extracts the year from a release date; invalid dates yield 0.
func ReleaseYear(date string) int {
	t, ok := parseDate(date)
	if !ok {
		return 0
	}
	return t.Year()
}

var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01",
	"2006",
}

func parseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// readStart orders reads; a missing or unparsable start sorts first.
func readStart(r catalog.Read) time.Time {
	if t, ok := parseDate(deref(r.StartedAt)); ok {
		return t
	}
	return time.Time{}
}

func interval(r catalog.Read) Interval {
	return Interval{Start: dateOnly(deref(r.StartedAt)), End: dateOnly(deref(r.FinishedAt))}
}

// dateOnly trims a timestamp to its calendar date.
func dateOnly(s string) string {
	if t, ok := parseDate(s); ok {
		return t.Format("2006-01-02")
	}
	return strings.TrimSpace(s)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
