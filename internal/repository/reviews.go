package repository

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/pixeldesk/backend/internal/domain"
)

// The approved column is text, not boolean: records imported from the
// legacy store carry encodings like "true", 1 and "1", and the repair
// routine is what rewrites them to canonical booleans. Reads hand the
// raw value to domain.NormalizeReview.

// ListRawReviews returns every stored review in boundary shape.
func (r *PostgresRepository) ListRawReviews(ctx context.Context) ([]domain.RawReview, error) {
	query := `
		SELECT id, name, rating, body, date, approved, featured, position, company, avatar_url, user_id, user_email, created_at
		FROM reviews
	`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reviews []domain.RawReview
	for rows.Next() {
		raw, err := scanRawReview(rows)
		if err != nil {
			return nil, err
		}
		reviews = append(reviews, *raw)
	}
	return reviews, rows.Err()
}

// GetRawReview returns one stored review, or nil when absent.
func (r *PostgresRepository) GetRawReview(ctx context.Context, id uuid.UUID) (*domain.RawReview, error) {
	query := `
		SELECT id, name, rating, body, date, approved, featured, position, company, avatar_url, user_id, user_email, created_at
		FROM reviews WHERE id = $1
	`
	raw, err := scanRawReview(r.db.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return raw, err
}

// CreateReview inserts a new review with a canonical approval flag.
func (r *PostgresRepository) CreateReview(ctx context.Context, review domain.Review) error {
	query := `
		INSERT INTO reviews (id, name, rating, body, date, approved, featured, position, company, avatar_url, user_id, user_email, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`
	return r.execWithRetry(ctx, query,
		review.ID, review.Name, review.Rating, review.Body, review.Date,
		strconv.FormatBool(review.Approved), review.Featured, review.Position,
		review.Company, review.AvatarURL, review.UserID, review.UserEmail, review.CreatedAt,
	)
}

// UpsertReview overwrites the full review row, creating it if absent.
func (r *PostgresRepository) UpsertReview(ctx context.Context, review domain.Review) error {
	query := `
		INSERT INTO reviews (id, name, rating, body, date, approved, featured, position, company, avatar_url, user_id, user_email, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			rating = EXCLUDED.rating,
			body = EXCLUDED.body,
			date = EXCLUDED.date,
			approved = EXCLUDED.approved,
			featured = EXCLUDED.featured,
			position = EXCLUDED.position,
			company = EXCLUDED.company,
			avatar_url = EXCLUDED.avatar_url,
			user_id = EXCLUDED.user_id,
			user_email = EXCLUDED.user_email
	`
	return r.execWithRetry(ctx, query,
		review.ID, review.Name, review.Rating, review.Body, review.Date,
		strconv.FormatBool(review.Approved), review.Featured, review.Position,
		review.Company, review.AvatarURL, review.UserID, review.UserEmail, review.CreatedAt,
	)
}

// DeleteReview removes a review row.
func (r *PostgresRepository) DeleteReview(ctx context.Context, id uuid.UUID) error {
	return r.execWithRetry(ctx, `DELETE FROM reviews WHERE id = $1`, id)
}

func scanRawReview(row pgx.Row) (*domain.RawReview, error) {
	var raw domain.RawReview
	var date *time.Time
	var approved, company, avatarURL, userEmail *string

	err := row.Scan(
		&raw.ID,
		&raw.Name,
		&raw.Rating,
		&raw.Body,
		&date,
		&approved,
		&raw.Featured,
		&raw.Position,
		&company,
		&avatarURL,
		&raw.UserID,
		&userEmail,
		&raw.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	raw.Date = date
	if approved != nil {
		raw.Approved = json.RawMessage(*approved)
	}
	if company != nil {
		raw.Company = *company
	}
	if avatarURL != nil {
		raw.AvatarURL = *avatarURL
	}
	if userEmail != nil {
		raw.UserEmail = *userEmail
	}
	return &raw, nil
}
