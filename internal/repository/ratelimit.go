package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/pixeldesk/backend/internal/ratelimit"
)

// GetCounter returns the rate counter for a (user, operation) pair, or
// nil when none exists.
func (r *PostgresRepository) GetCounter(ctx context.Context, userID uuid.UUID, operation string) (*ratelimit.Counter, error) {
	query := `
		SELECT user_id, operation, count, window_start
		FROM rate_limits WHERE user_id = $1 AND operation = $2
	`
	var c ratelimit.Counter
	err := r.db.QueryRow(ctx, query, userID, operation).Scan(&c.UserID, &c.Operation, &c.Count, &c.WindowStart)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// PutCounter writes the counter, creating the row if absent.
func (r *PostgresRepository) PutCounter(ctx context.Context, counter ratelimit.Counter) error {
	query := `
		INSERT INTO rate_limits (user_id, operation, count, window_start)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id, operation) DO UPDATE SET
			count = EXCLUDED.count,
			window_start = EXCLUDED.window_start
	`
	return r.execWithRetry(ctx, query, counter.UserID, counter.Operation, counter.Count, counter.WindowStart)
}
