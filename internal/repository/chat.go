package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/pixeldesk/backend/internal/domain"
)

// CreateChatMessage inserts a chat message.
func (r *PostgresRepository) CreateChatMessage(ctx context.Context, message domain.ChatMessage) error {
	query := `
		INSERT INTO chat_messages (id, author, body, created_at)
		VALUES ($1, $2, $3, $4)
	`
	return r.execWithRetry(ctx, query, message.ID, message.Author, message.Body, message.CreatedAt)
}

// ListChatMessages returns the most recent messages, oldest first.
func (r *PostgresRepository) ListChatMessages(ctx context.Context, limit int) ([]domain.ChatMessage, error) {
	query := `
		SELECT id, author, body, created_at FROM (
			SELECT id, author, body, created_at
			FROM chat_messages ORDER BY created_at DESC LIMIT $1
		) recent ORDER BY created_at ASC
	`
	rows, err := r.db.Query(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var messages []domain.ChatMessage
	for rows.Next() {
		var m domain.ChatMessage
		if err := rows.Scan(&m.ID, &m.Author, &m.Body, &m.CreatedAt); err != nil {
			return nil, err
		}
		messages = append(messages, m)
	}
	return messages, rows.Err()
}

// DeleteChatMessage removes one message.
func (r *PostgresRepository) DeleteChatMessage(ctx context.Context, id uuid.UUID) error {
	return r.execWithRetry(ctx, `DELETE FROM chat_messages WHERE id = $1`, id)
}
