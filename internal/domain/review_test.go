package domain

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestApprovedValue(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want bool
	}{
		{"bool true", `true`, true},
		{"string true", `"true"`, true},
		{"number one", `1`, true},
		{"string one", `"1"`, true},
		{"bool false", `false`, false},
		{"string false", `"false"`, false},
		{"zero", `0`, false},
		{"string zero", `"0"`, false},
		{"capitalized", `"True"`, false},
		{"null", `null`, false},
		{"empty", ``, false},
		{"garbage", `"yes"`, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ApprovedValue(json.RawMessage(tt.raw)))
		})
	}
}

func TestNormalizeReviewDefaults(t *testing.T) {
	created := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	raw := RawReview{
		ID:        uuid.New(),
		Name:      "  ",
		Rating:    0,
		Body:      "",
		Approved:  json.RawMessage(`"1"`),
		CreatedAt: created,
	}

	r := NormalizeReview(raw)

	assert.Equal(t, "Anonymous", r.Name)
	assert.Equal(t, "Great service!", r.Body)
	assert.Equal(t, 5, r.Rating)
	assert.True(t, r.Approved)
	assert.Equal(t, created, r.Date, "missing date falls back to created_at")
}

func TestNormalizeReviewIdempotent(t *testing.T) {
	date := time.Date(2024, 5, 2, 9, 0, 0, 0, time.UTC)
	raw := RawReview{
		ID:        uuid.New(),
		Name:      "Jess",
		Rating:    4,
		Body:      "Solid work",
		Date:      &date,
		Approved:  json.RawMessage(`true`),
		CreatedAt: date,
	}

	first := NormalizeReview(raw)

	// Re-normalizing the normalized shape changes nothing.
	again := NormalizeReview(RawReview{
		ID:        first.ID,
		Name:      first.Name,
		Rating:    first.Rating,
		Body:      first.Body,
		Date:      &first.Date,
		Approved:  json.RawMessage(`true`),
		CreatedAt: first.CreatedAt,
	})
	assert.Equal(t, first, again)
}

func TestSortReviews(t *testing.T) {
	older := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	newer := older.AddDate(0, 2, 0)

	reviews := []Review{
		{Name: "plain-new", Date: newer},
		{Name: "featured-late", Featured: true, Position: 2, Date: older},
		{Name: "plain-old", Date: older},
		{Name: "featured-early", Featured: true, Position: 1, Date: older},
	}

	SortReviews(reviews)

	got := make([]string, len(reviews))
	for i, r := range reviews {
		got[i] = r.Name
	}
	assert.Equal(t, []string{"featured-early", "featured-late", "plain-new", "plain-old"}, got)
}

func TestPublicReviewsFiltersUnapproved(t *testing.T) {
	reviews := []Review{
		{Name: "a", Approved: true},
		{Name: "b", Approved: false},
		{Name: "c", Approved: true},
	}

	public := PublicReviews(reviews)

	assert.Len(t, public, 2)
	for _, r := range public {
		assert.True(t, r.Approved)
	}
}
