package document_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/shelfmark/pkg/document"
	pkgerrors "github.com/agentstation/shelfmark/pkg/errors"
)

const grouped = `---
hardcoverSeriesId: 50
booksRead: ["3","5"]
aliases:
  - Book One
  - "Book \"Two\""
tags: [mine]
---
Intro written by hand.
%%shelfmark-content-start%%
# Saga

%%shelfmark-book-start-3-1%%
## Book One
%%shelfmark-personal%%
my notes on one
%%shelfmark-book-end-3-1%%

%%shelfmark-book-start-5-2.5%%
## Book Two
%%shelfmark-book-end-5-2.5%%
<!-- shelfmark-end -->
trailing personal text

  with odd spacing `

func TestParseGrouped(t *testing.T) {
	p, err := document.Parse(grouped)
	require.NoError(t, err)

	assert.True(t, p.HasBody)
	assert.Equal(t, "Intro written by hand.\n", p.Preamble)
	assert.Equal(t, "\ntrailing personal text\n\n  with odd spacing ", p.Trailer)

	require.Len(t, p.Members, 2)
	assert.Equal(t, 3, p.Members[0].ID)
	assert.InDelta(t, 1.0, p.Members[0].SortKey, 0.0001)
	assert.Equal(t, "## Book One\n%%shelfmark-personal%%\nmy notes on one", p.Members[0].Content)
	assert.Equal(t, "my notes on one", p.Members[0].Personal)

	m, ok := p.Member(5)
	require.True(t, ok)
	assert.InDelta(t, 2.5, m.SortKey, 0.0001)
	assert.Empty(t, m.Personal)

	_, ok = p.Member(99)
	assert.False(t, ok)
}

func TestHeaderAccessors(t *testing.T) {
	p, err := document.Parse(grouped)
	require.NoError(t, err)
	h := p.Header

	id, ok := h.Int("hardcoverSeriesId")
	require.True(t, ok)
	assert.Equal(t, 50, id)

	assert.Equal(t, []int{3, 5}, h.Ints("booksRead"))
	assert.Equal(t, []string{"Book One", `Book "Two"`}, h.Strings("aliases"))
	assert.Equal(t, []string{"mine"}, h.Strings("tags"))
	assert.Nil(t, h.Strings("missing"))
	assert.True(t, h.Has("tags"))
	assert.False(t, h.Has("booksDNF"))
}

func TestHeaderSetPreservesOthers(t *testing.T) {
	p, err := document.Parse(grouped)
	require.NoError(t, err)

	p.Header.Set("booksRead", document.FormatList([]string{"3"}))
	p.Header.Set("bookCount", "2")

	want := "---\n" +
		"hardcoverSeriesId: 50\n" +
		"booksRead: [\"3\"]\n" +
		"aliases:\n  - Book One\n  - \"Book \\\"Two\\\"\"\n" +
		"tags: [mine]\n" +
		"bookCount: 2\n" +
		"---\n"
	assert.Equal(t, want, p.Header.String())
}

func TestParseWithoutMarkers(t *testing.T) {
	p, err := document.Parse("---\nhardcoverBookId: 7\n---\n\nhand written")
	require.NoError(t, err)
	assert.False(t, p.HasBody)
	assert.False(t, p.HasEnd)
	assert.Equal(t, "\nhand written", p.Preamble)
	id, ok := p.Header.Int("hardcoverBookId")
	assert.True(t, ok)
	assert.Equal(t, 7, id)
}

func TestParseEndMarkerOnly(t *testing.T) {
	p, err := document.Parse("---\nhardcoverBookId: 7\n---\n# Old body\n<!-- shelfmark-end -->\nMy notes")
	require.NoError(t, err)
	assert.False(t, p.HasBody)
	assert.True(t, p.HasEnd)
	assert.Empty(t, p.Preamble)
	assert.Equal(t, "# Old body\n", p.Body)
	assert.Equal(t, "\nMy notes", p.Trailer)
	id, ok := p.Header.Int("hardcoverBookId")
	assert.True(t, ok)
	assert.Equal(t, 7, id)
}

func TestParseNoHeader(t *testing.T) {
	p, err := document.Parse("just text")
	require.NoError(t, err)
	assert.Empty(t, p.Header.Entries)
	_, ok := p.Header.Int("hardcoverBookId")
	assert.False(t, ok)
}

func TestParseErrors(t *testing.T) {
	tests := map[string]string{
		"unterminated header": "---\ntitle: x\n",
		"open member":         "%%shelfmark-content-start%%\n%%shelfmark-book-start-1-1%%\nx\n<!-- shelfmark-end -->\n",
		"bad member key":      "%%shelfmark-content-start%%\n%%shelfmark-book-start-x-1%%\n%%shelfmark-book-end-x-1%%\n<!-- shelfmark-end -->\n",
	}
	for name, content := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := document.Parse(content)
			var pe *pkgerrors.ParseError
			assert.ErrorAs(t, err, &pe)
		})
	}
}

func TestMarkers(t *testing.T) {
	assert.Equal(t, "%%shelfmark-book-start-12-3%%", document.MemberStart(12, 3))
	assert.Equal(t, "%%shelfmark-book-end-12-1.5%%", document.MemberEnd(12, 1.5))
}

func TestValueFormatting(t *testing.T) {
	assert.Equal(t, `"She said \"hi\""`, document.QuoteString(`She said "hi"`))
	assert.Equal(t, `"a\\b"`, document.QuoteString(`a\b`))
	assert.Equal(t, "Line one Line two", document.CollapseLines("Line one\nLine two"))
	assert.Equal(t, "a b c", document.CollapseLines(`a\n b  `+"\n\tc"))
	assert.Equal(t, `["A & B","<i>"]`, document.FormatList([]string{"A & B", "<i>"}))
	assert.Equal(t, `[]`, document.FormatList(nil))
}

func TestQuotedValuesRoundTrip(t *testing.T) {
	var h document.Header
	h.Set("title", document.QuoteString(`The "Best" \ Book: Part 1`))
	h.Set("authors", document.FormatList([]string{`O"Brien`, "Ann"}))

	p, err := document.Parse(h.String())
	require.NoError(t, err)
	assert.Equal(t, []string{`The "Best" \ Book: Part 1`}, p.Header.Strings("title"))
	assert.Equal(t, []string{`O"Brien`, "Ann"}, p.Header.Strings("authors"))
}
