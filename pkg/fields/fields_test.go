package fields_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/shelfmark/pkg/fields"
)

func TestDefinitionsOrder(t *testing.T) {
	want := []fields.Key{
		fields.Title, fields.Description, fields.Cover, fields.ReleaseDate, fields.Series,
		fields.Authors, fields.Contributors, fields.Publisher, fields.URL, fields.Genres,
		fields.Status, fields.Rating, fields.Review, fields.FirstRead, fields.LastRead,
		fields.TotalReads, fields.ReadYears, fields.BookCount, fields.BooksToRead,
		fields.BooksReading, fields.BooksRead, fields.BooksDNF, fields.SeriesGenres,
	}
	require.Len(t, fields.Definitions, len(want))
	for i, d := range fields.Definitions {
		assert.Equal(t, want[i], d.Key)
	}
}

func TestDefaultSet(t *testing.T) {
	s := fields.DefaultSet()
	assert.Equal(t, "seriesName", s.Property(fields.Series))
	assert.False(t, s.Enabled(fields.ReadYears))
	assert.True(t, s.Enabled(fields.Title))
	assert.Equal(t, "firstReadStart", s.StartProperty(fields.FirstRead))
	assert.Equal(t, "lastReadEnd", s.EndProperty(fields.LastRead))
}

func TestPropertyNeverEmpty(t *testing.T) {
	s := fields.Set{
		fields.Title:     {Enabled: true, PropertyName: "  "},
		fields.FirstRead: {Enabled: true},
	}
	assert.Equal(t, "title", s.Property(fields.Title))
	assert.Equal(t, "rating", s.Property(fields.Rating))
	assert.Equal(t, "firstReadStart", s.StartProperty(fields.FirstRead))
	assert.Equal(t, "firstReadEnd", s.EndProperty(fields.FirstRead))
	assert.False(t, s.Enabled(fields.Rating))
}

func TestResolve(t *testing.T) {
	s := fields.DefaultSet()
	s[fields.Title] = fields.Config{Enabled: true, PropertyName: "bookTitle"}
	s[fields.FirstRead] = fields.Config{Enabled: true, StartPropertyName: "began"}

	p := s.Resolve()
	assert.Equal(t, "bookTitle", p.Name(fields.Title))
	assert.Equal(t, "began", p.Start(fields.FirstRead))
	assert.Equal(t, "firstReadEnd", p.End(fields.FirstRead))
	assert.Empty(t, p.Start(fields.Title))

	// the table is a snapshot
	s[fields.Title] = fields.Config{Enabled: true, PropertyName: "changed"}
	assert.Equal(t, "bookTitle", p.Name(fields.Title))
}

func TestParseKey(t *testing.T) {
	tests := map[string]fields.Key{
		"title":         fields.Title,
		"releasedate":   fields.ReleaseDate,
		"release_date":  fields.ReleaseDate,
		"booksDNF":      fields.BooksDNF,
		"series-genres": fields.SeriesGenres,
	}
	for in, want := range tests {
		t.Run(in, func(t *testing.T) {
			got, err := fields.ParseKey(in)
			require.NoError(t, err)
			assert.Equal(t, want, got)
		})
	}

	_, err := fields.ParseKey("isbn")
	assert.Error(t, err)
}

func TestCloneIsIndependent(t *testing.T) {
	s := fields.DefaultSet()
	c := s.Clone()
	c[fields.Title] = fields.Config{Enabled: false}
	assert.True(t, s.Enabled(fields.Title))
}
