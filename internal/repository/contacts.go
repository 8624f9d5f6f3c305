package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/pixeldesk/backend/internal/domain"
)

// CreateContact inserts a new contact form submission.
func (r *PostgresRepository) CreateContact(ctx context.Context, submission domain.ContactSubmission) error {
	query := `
		INSERT INTO contact_submissions (id, name, email, subject, message, status, submitted_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	return r.execWithRetry(ctx, query,
		submission.ID, submission.Name, submission.Email, submission.Subject,
		submission.Message, string(submission.Status), submission.SubmittedAt,
	)
}

// GetContact returns one submission, or nil when absent.
func (r *PostgresRepository) GetContact(ctx context.Context, id uuid.UUID) (*domain.ContactSubmission, error) {
	query := `
		SELECT id, name, email, subject, message, status, submitted_at
		FROM contact_submissions WHERE id = $1
	`
	submission, err := scanContact(r.db.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return submission, err
}

// ListContacts returns submissions newest first.
func (r *PostgresRepository) ListContacts(ctx context.Context) ([]domain.ContactSubmission, error) {
	query := `
		SELECT id, name, email, subject, message, status, submitted_at
		FROM contact_submissions ORDER BY submitted_at DESC
	`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var submissions []domain.ContactSubmission
	for rows.Next() {
		submission, err := scanContact(rows)
		if err != nil {
			return nil, err
		}
		submissions = append(submissions, *submission)
	}
	return submissions, rows.Err()
}

// UpsertContact overwrites the full submission row, creating it if absent.
func (r *PostgresRepository) UpsertContact(ctx context.Context, submission domain.ContactSubmission) error {
	query := `
		INSERT INTO contact_submissions (id, name, email, subject, message, status, submitted_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			email = EXCLUDED.email,
			subject = EXCLUDED.subject,
			message = EXCLUDED.message,
			status = EXCLUDED.status
	`
	return r.execWithRetry(ctx, query,
		submission.ID, submission.Name, submission.Email, submission.Subject,
		submission.Message, string(submission.Status), submission.SubmittedAt,
	)
}

func scanContact(row pgx.Row) (*domain.ContactSubmission, error) {
	var c domain.ContactSubmission
	var status string
	var subject *string

	err := row.Scan(&c.ID, &c.Name, &c.Email, &subject, &c.Message, &status, &c.SubmittedAt)
	if err != nil {
		return nil, err
	}

	c.Status = domain.ContactStatus(status)
	if subject != nil {
		c.Subject = *subject
	}
	return &c, nil
}
