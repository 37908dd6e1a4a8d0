package catalog_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/shelfmark/pkg/catalog"
)

func TestContributionIsAuthor(t *testing.T) {
	tests := []struct {
		name string
		role *string
		want bool
	}{
		{"nil role", nil, true},
		{"empty role", catalog.Ptr(""), true},
		{"author role", catalog.Ptr("Author"), true},
		{"narrator", catalog.Ptr("Narrator"), false},
		{"lowercase author is a role", catalog.Ptr("author"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := catalog.Contribution{Author: catalog.Person{Name: "A"}, Role: tt.role}
			assert.Equal(t, tt.want, c.IsAuthor())
		})
	}
}

func TestReviewText(t *testing.T) {
	assert.Equal(t, "", catalog.Record{}.ReviewText())
	assert.Equal(t, "raw", catalog.Record{ReviewRaw: catalog.Ptr("raw")}.ReviewText())
	assert.Equal(t, "<p>rich</p>", catalog.Record{Review: catalog.Ptr("<p>rich</p>"), ReviewRaw: catalog.Ptr("raw")}.ReviewText())
	assert.Equal(t, "raw", catalog.Record{Review: catalog.Ptr("  "), ReviewRaw: catalog.Ptr("raw")}.ReviewText())
}

func TestSourceGenres(t *testing.T) {
	s := catalog.Source{Tags: &catalog.Tags{Genre: []catalog.Tag{{Tag: "Fantasy"}, {Tag: ""}, {Tag: "Fiction"}, {Tag: "Fantasy"}}}}
	assert.Equal(t, []string{"Fantasy", "Fiction"}, s.Genres())
	assert.Nil(t, catalog.Source{}.Genres())
}

func TestRecordDecodesWireNames(t *testing.T) {
	payload := `{
		"book_id": 435731,
		"updated_at": "2025-01-02T03:04:05Z",
		"rating": 4.5,
		"status_id": 3,
		"review_raw": "Loved it",
		"book": {
			"title": "Ghostwritten",
			"slug": "ghostwritten",
			"book_series": [{"series": {"id": 9, "name": "Standalone"}, "position": 1}],
			"cached_tags": {"Genre": [{"tag": "Fiction"}]}
		},
		"edition": {
			"title": "Ghostwritten (Paperback)",
			"release_date": "1999-08-19",
			"cached_image": {"url": "https://img/x.jpg"},
			"cached_contributors": [{"author": {"id": 1, "name": "David Mitchell"}, "contribution": null}],
			"publisher": {"name": "Sceptre"}
		},
		"user_book_reads": [{"started_at": "2024-01-01", "finished_at": null}]
	}`

	var rec catalog.Record
	require.NoError(t, json.Unmarshal([]byte(payload), &rec))

	assert.Equal(t, 435731, rec.ItemID)
	require.NotNil(t, rec.Rating)
	assert.InDelta(t, 4.5, *rec.Rating, 0.0001)
	assert.Equal(t, "Ghostwritten", rec.Book.Title)
	assert.Equal(t, "Sceptre", rec.Edition.Publisher.Name)
	require.Len(t, rec.Edition.Contributors, 1)
	assert.True(t, rec.Edition.Contributors[0].IsAuthor())
	require.Len(t, rec.Book.Series, 1)
	assert.Equal(t, 9, *rec.Book.Series[0].Series.ID)
	require.Len(t, rec.Reads, 1)
	assert.Nil(t, rec.Reads[0].FinishedAt)
}
