package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresRepository implements every domain repository interface over a
// single pgx pool.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository creates a new PostgreSQL repository.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const (
	writeAttempts = 3
	writeBackoff  = 100 * time.Millisecond
)

// execWithRetry is the one write policy for state-changing statements:
// up to three attempts with a short backoff, retrying only errors that
// look transient. Update operations are phrased as idempotent upserts so
// a retry after an ambiguous failure is safe.
func (r *PostgresRepository) execWithRetry(ctx context.Context, query string, args ...interface{}) error {
	var err error
	for attempt := 0; attempt < writeAttempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(writeBackoff):
			}
		}
		_, err = r.db.Exec(ctx, query, args...)
		if err == nil {
			return nil
		}
		if !isTransient(err) {
			return err
		}
	}
	return err
}

// isTransient reports whether a write error is worth retrying.
func isTransient(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		// Class 08 (connection), 40001 (serialization), 40P01 (deadlock).
		switch {
		case len(pgErr.Code) >= 2 && pgErr.Code[:2] == "08":
			return true
		case pgErr.Code == "40001" || pgErr.Code == "40P01":
			return true
		}
		return false
	}
	// Network-level failures reach here without a PgError.
	return true
}
