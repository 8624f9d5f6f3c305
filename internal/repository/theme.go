package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/pixeldesk/backend/internal/domain"
)

// Theme settings live in a single row with a fixed id.

// GetTheme returns the stored theme settings, or nil when none exist yet.
func (r *PostgresRepository) GetTheme(ctx context.Context) (*domain.ThemeSettings, error) {
	var settings domain.ThemeSettings
	err := r.db.QueryRow(ctx, `SELECT settings FROM theme_settings WHERE id = 1`).Scan(&settings)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &settings, nil
}

// SaveTheme writes the singleton theme row.
func (r *PostgresRepository) SaveTheme(ctx context.Context, settings domain.ThemeSettings) error {
	query := `
		INSERT INTO theme_settings (id, settings, updated_at)
		VALUES (1, $1, NOW())
		ON CONFLICT (id) DO UPDATE SET settings = EXCLUDED.settings, updated_at = NOW()
	`
	return r.execWithRetry(ctx, query, settings)
}
