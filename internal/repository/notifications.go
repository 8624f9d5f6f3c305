package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/pixeldesk/backend/internal/domain"
)

// CreateNotification inserts an admin notification.
func (r *PostgresRepository) CreateNotification(ctx context.Context, n domain.Notification) error {
	query := `
		INSERT INTO notifications (id, type, title, message, source_id, user_name, read, timestamp)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	return r.execWithRetry(ctx, query,
		n.ID, string(n.Type), n.Title, n.Message, n.SourceID, n.UserName, n.Read, n.Timestamp,
	)
}

// ListNotifications returns notifications newest first.
func (r *PostgresRepository) ListNotifications(ctx context.Context, limit, offset int) ([]domain.Notification, error) {
	query := `
		SELECT id, type, title, message, source_id, user_name, read, timestamp
		FROM notifications ORDER BY timestamp DESC LIMIT $1 OFFSET $2
	`
	rows, err := r.db.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var notifications []domain.Notification
	for rows.Next() {
		var n domain.Notification
		var kind string
		var userName *string
		if err := rows.Scan(&n.ID, &kind, &n.Title, &n.Message, &n.SourceID, &userName, &n.Read, &n.Timestamp); err != nil {
			return nil, err
		}
		n.Type = domain.NotificationType(kind)
		if userName != nil {
			n.UserName = *userName
		}
		notifications = append(notifications, n)
	}
	return notifications, rows.Err()
}

// MarkNotificationRead flags one notification as read.
func (r *PostgresRepository) MarkNotificationRead(ctx context.Context, id uuid.UUID) error {
	return r.execWithRetry(ctx, `UPDATE notifications SET read = true WHERE id = $1`, id)
}

// DeleteNotification removes one notification.
func (r *PostgresRepository) DeleteNotification(ctx context.Context, id uuid.UUID) error {
	return r.execWithRetry(ctx, `DELETE FROM notifications WHERE id = $1`, id)
}

// UnreadNotificationCount returns the number of unread notifications.
func (r *PostgresRepository) UnreadNotificationCount(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM notifications WHERE read = false`).Scan(&count)
	return count, err
}

// AdminPushTokens returns the FCM push tokens registered by admin and
// moderator accounts.
func (r *PostgresRepository) AdminPushTokens(ctx context.Context) ([]string, error) {
	query := `
		SELECT push_token FROM profiles
		WHERE role IN ('admin', 'moderator') AND push_token IS NOT NULL AND push_token <> ''
	`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tokens []string
	for rows.Next() {
		var token string
		if err := rows.Scan(&token); err != nil {
			return nil, err
		}
		tokens = append(tokens, token)
	}
	return tokens, rows.Err()
}
