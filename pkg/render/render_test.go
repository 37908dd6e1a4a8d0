package render_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/shelfmark/pkg/catalog"
	"github.com/agentstation/shelfmark/pkg/document"
	"github.com/agentstation/shelfmark/pkg/fields"
	"github.com/agentstation/shelfmark/pkg/metadata"
	"github.com/agentstation/shelfmark/pkg/render"
	"github.com/agentstation/shelfmark/pkg/settings"
)

func bookMetadata() metadata.Metadata {
	return metadata.Metadata{
		ItemID:   42,
		StatusID: catalog.StatusRead,
		Values: map[fields.Key]metadata.Value{
			fields.Rating:      metadata.String("4/5"),
			fields.Title:       metadata.String(`The "Dispossessed"`),
			fields.Authors:     metadata.List([]string{"Ursula K. Le Guin"}),
			fields.Description: metadata.String("Line one\nLine two"),
			fields.Status:      metadata.List([]string{"Read"}),
			fields.TotalReads:  metadata.Int(2),
		},
		Activity: map[fields.Key]metadata.Interval{
			fields.FirstRead: {Start: "2020-01-01", End: "2020-02-01"},
			fields.LastRead:  {Start: "2023-05-05"},
		},
		Body:  metadata.Body{Title: `The "Dispossessed"`, CoverURL: "https://img/c.jpg", Review: "<p>Great &amp; bold.</p><p>Again<br/>and again</p>"},
		Title: `The "Dispossessed"`,
	}
}

func TestSingleHeaderOrder(t *testing.T) {
	r := render.New(settings.Default())
	h := r.SingleHeader(bookMetadata())

	want := "---\n" +
		"hardcoverBookId: 42\n" +
		"title: \"The \\\"Dispossessed\\\"\"\n" +
		"description: \"Line one Line two\"\n" +
		"authors: [\"Ursula K. Le Guin\"]\n" +
		"status: [\"Read\"]\n" +
		"rating: \"4/5\"\n" +
		"firstReadStart: \"2020-01-01\"\n" +
		"firstReadEnd: \"2020-02-01\"\n" +
		"lastReadStart: \"2023-05-05\"\n" +
		"totalReads: 2\n" +
		"---\n"
	assert.Equal(t, want, h.String())
}

func TestSingleHeaderCustomPropertyNames(t *testing.T) {
	s := settings.Default()
	s.Fields[fields.Title] = fields.Config{Enabled: true, PropertyName: "name"}
	s.Fields[fields.FirstRead] = fields.Config{Enabled: true, StartPropertyName: "began", EndPropertyName: "ended"}

	h := render.New(s).SingleHeader(bookMetadata())
	assert.True(t, h.Has("name"))
	assert.False(t, h.Has("title"))
	assert.True(t, h.Has("began"))
	assert.True(t, h.Has("ended"))
}

func TestSingleBody(t *testing.T) {
	r := render.New(settings.Default())
	body := r.SingleBody(bookMetadata())

	want := "# The \"Dispossessed\"\n\n" +
		"![The \"Dispossessed\" Cover|300](https://img/c.jpg)\n\n" +
		"> Line one\n> Line two\n\n" +
		"## My Review\n\n" +
		"Great & bold.\n\nAgain\nand again"
	assert.Equal(t, want, body)
}

func TestSingleDocumentParsesBack(t *testing.T) {
	r := render.New(settings.Default())
	doc := r.Single(bookMetadata(), render.NewPreamble, render.NewTrailer)

	p, err := document.Parse(doc)
	require.NoError(t, err)
	assert.True(t, p.HasBody)
	assert.Equal(t, render.NewTrailer, p.Trailer)
	id, ok := p.Header.Int(settings.BookIDProperty)
	require.True(t, ok)
	assert.Equal(t, 42, id)
	assert.True(t, strings.HasSuffix(doc, document.ContentEnd+"\n\n"))
}

func TestSingleBodyMinimal(t *testing.T) {
	m := metadata.Metadata{ItemID: 1, Body: metadata.Body{Title: "[Draft] Notes"}}
	assert.Equal(t, `# \[Draft\] Notes`, render.New(settings.Default()).SingleBody(m))
}

func TestFormatReview(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", ""},
		{"paragraphs", "<p>One</p><p>Two</p>", "One\n\nTwo"},
		{"breaks", "a<br>b<br />c", "a\nb\nc"},
		{"entities", "<p>&quot;x&quot; &lt;y&gt; &amp; z</p>", `"x" <y> & z`},
		{"plain escaped quotes", `He said \"no\"  `, `He said "no"`},
		{"plain keeps entities", "a &amp; b", "a &amp; b"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, render.FormatReview(tt.in))
		})
	}
}

func TestFilename(t *testing.T) {
	vars := map[string]string{"title": "Dune: Messiah?", "authors": "Frank Herbert", "year": "1969"}

	assert.Equal(t, "Dune Messiah (1969).md", render.Filename("${title} (${year})", vars, "x"))
	assert.Equal(t, "Frank Herbert - Dune Messiah.md", render.Filename("${authors} - ${title}", vars, "x"))
	assert.Equal(t, "Dune Messiah.md", render.Filename("${title}${unknown}", vars, "x"))
	assert.Equal(t, "Dune Messiah ().md", render.Filename("${title} (${missing})", vars, "x"))
	assert.Equal(t, "Untitled.md", render.Filename("${nothing}", vars, "Untitled"))
	assert.Equal(t, "ab c.md", render.Filename(`a/b   <c>`, nil, "x"))
}

func TestKebabCase(t *testing.T) {
	assert.Equal(t, "science-fiction", render.KebabCase("Science Fiction"))
	assert.Equal(t, "lgbtq", render.KebabCase("LGBTQ+"))
	assert.Equal(t, "young-adult", render.KebabCase("  Young-Adult  "))
}

func TestBlockquote(t *testing.T) {
	assert.Equal(t, "> a\n>\n> b", render.Blockquote("a\n\nb"))
}

func seriesGroup(s settings.Settings) metadata.Group {
	members := []metadata.Metadata{
		{ItemID: 1, StatusID: catalog.StatusRead, Title: "One", Body: metadata.Body{Title: "One"},
			Genres: []string{"Science Fiction"}, URL: "https://hardcover.app/books/one",
			Group: &metadata.GroupInfo{Series: &metadata.SeriesLink{Name: "Saga", Position: 1}}},
		{ItemID: 2, StatusID: catalog.StatusReading, Title: "Two", Body: metadata.Body{Title: "Two", Review: "ok"},
			Group: &metadata.GroupInfo{Series: &metadata.SeriesLink{Name: "Saga", Position: 2}}},
	}
	return metadata.BuildGroup(metadata.KindSeries, 50, "Saga", members, s)
}

func TestGroupDocument(t *testing.T) {
	s := settings.Default()
	s.GenresAsTags = "#{{genre}}"
	s.Group.DateCreatedProperty = "dateCreated"
	r := render.New(s)

	doc := r.Group(seriesGroup(s), render.GroupStamps{Created: "2025-01-01T00:00:00Z", Modified: "2025-01-01T00:00:00Z"})

	p, err := document.Parse(doc)
	require.NoError(t, err)

	keys := make([]string, 0, len(p.Header.Entries))
	for _, e := range p.Header.Entries {
		keys = append(keys, e.Key)
	}
	assert.Equal(t, []string{
		"hardcoverSeriesId", "bookCount", "booksToRead", "booksReading", "booksRead", "booksDNF",
		"seriesGenres", "dateCreated", "dateModified", "aliases",
	}, keys)
	assert.Equal(t, []string{"One", "Two"}, p.Header.Strings("aliases"))

	require.Len(t, p.Members, 2)
	assert.Equal(t, 1, p.Members[0].ID)
	assert.Equal(t, 2, p.Members[1].ID)
	assert.Contains(t, p.Members[0].Content, "**Genres:** #science-fiction")
	assert.Contains(t, p.Members[0].Content, "**Status:** Read")
	assert.Contains(t, p.Members[0].Content, "[Hardcover.app](https://hardcover.app/books/one)")
	assert.Contains(t, p.Members[1].Content, "### My Review\n\nok")
	assert.Contains(t, p.Body, "# Saga\n\n**Genres:** #science-fiction\n\n%%shelfmark-book-start-1-1%%")
	assert.Equal(t, render.NewTrailer, p.Trailer)
}

func TestMemberContentCarriesPersonal(t *testing.T) {
	r := render.New(settings.Default())
	m := metadata.Metadata{ItemID: 3, Body: metadata.Body{Title: "Three"}}

	content := r.MemberContent(metadata.KindAuthor, m, "\n  my thoughts\n")
	assert.True(t, strings.HasSuffix(content, document.PersonalStart+"\nmy thoughts"))

	empty := r.MemberContent(metadata.KindAuthor, m, "")
	assert.True(t, strings.HasSuffix(empty, document.PersonalStart))
}
