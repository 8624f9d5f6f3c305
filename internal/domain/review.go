package domain

import (
	"encoding/json"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Review is a customer review. Only approved reviews are visible on the
// public site; rejected reviews are retained, never deleted.
type Review struct {
	ID        uuid.UUID  `json:"id"`
	Name      string     `json:"name"`
	Rating    int        `json:"rating"`
	Body      string     `json:"review"`
	Date      time.Time  `json:"date"`
	Approved  bool       `json:"approved"`
	Featured  bool       `json:"featured"`
	Position  int        `json:"position"`
	Company   string     `json:"company,omitempty"`
	AvatarURL string     `json:"avatar,omitempty"`
	UserID    *uuid.UUID `json:"user_id,omitempty"`
	UserEmail string     `json:"user_email,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

// RawReview is the boundary shape of a stored review. Legacy writers
// encoded the approved flag as a bool, a string, or a number, so it is
// decoded untyped here and normalized before anything else sees it.
type RawReview struct {
	ID        uuid.UUID       `json:"id"`
	Name      string          `json:"name"`
	Rating    int             `json:"rating"`
	Body      string          `json:"review"`
	Date      *time.Time      `json:"date"`
	Approved  json.RawMessage `json:"approved"`
	Featured  bool            `json:"featured"`
	Position  int             `json:"position"`
	Company   string          `json:"company"`
	AvatarURL string          `json:"avatar"`
	UserID    *uuid.UUID      `json:"user_id"`
	UserEmail string          `json:"user_email"`
	CreatedAt time.Time       `json:"created_at"`
}

// Deterministic defaults used when repairing incomplete reviews.
const (
	defaultReviewName   = "Anonymous"
	defaultReviewBody   = "Great service!"
	defaultReviewRating = 5
)

// ApprovedValue reports whether a legacy-encoded approval flag is truthy.
// Historically accepted encodings are true, "true", 1 and "1"; anything
// else, including absent values, is treated as not approved.
func ApprovedValue(raw json.RawMessage) bool {
	if len(raw) == 0 {
		return false
	}
	switch strings.TrimSpace(string(raw)) {
	case "true", `"true"`, "1", `"1"`:
		return true
	}
	return false
}

// NormalizeReview maps a raw stored review to the strict internal type,
// coercing legacy encodings and filling absent fields with deterministic
// defaults. Running it on an already-normalized review changes nothing.
func NormalizeReview(raw RawReview) Review {
	r := Review{
		ID:        raw.ID,
		Name:      strings.TrimSpace(raw.Name),
		Rating:    raw.Rating,
		Body:      strings.TrimSpace(raw.Body),
		Approved:  ApprovedValue(raw.Approved),
		Featured:  raw.Featured,
		Position:  raw.Position,
		Company:   raw.Company,
		AvatarURL: raw.AvatarURL,
		UserID:    raw.UserID,
		UserEmail: raw.UserEmail,
		CreatedAt: raw.CreatedAt,
	}

	if r.Name == "" {
		r.Name = defaultReviewName
	}
	if r.Body == "" {
		r.Body = defaultReviewBody
	}
	if r.Rating < 1 || r.Rating > 5 {
		r.Rating = defaultReviewRating
	}
	if raw.Date != nil && !raw.Date.IsZero() {
		r.Date = *raw.Date
	} else {
		r.Date = raw.CreatedAt
	}

	return r
}

// SortReviews orders reviews for display: featured entries first, then by
// explicit position, then newest first.
func SortReviews(reviews []Review) {
	sort.SliceStable(reviews, func(i, j int) bool {
		a, b := reviews[i], reviews[j]
		if a.Featured != b.Featured {
			return a.Featured
		}
		if a.Position != b.Position {
			return a.Position < b.Position
		}
		return a.Date.After(b.Date)
	})
}

// PublicReviews filters to the approved subset and sorts for display.
func PublicReviews(reviews []Review) []Review {
	public := make([]Review, 0, len(reviews))
	for _, r := range reviews {
		if r.Approved {
			public = append(public, r)
		}
	}
	SortReviews(public)
	return public
}
