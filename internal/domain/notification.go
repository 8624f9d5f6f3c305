package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// NotificationType identifies which submission flow produced a notification.
type NotificationType string

const (
	NotificationReview  NotificationType = "review"
	NotificationContact NotificationType = "contact"
	NotificationBooking NotificationType = "booking"
)

// Notification is an admin-facing record created as a side effect of a
// review, contact, or booking submission. SourceID points at the record
// that produced it.
type Notification struct {
	ID        uuid.UUID        `json:"id"`
	Type      NotificationType `json:"type"`
	Title     string           `json:"title"`
	Message   string           `json:"message"`
	SourceID  uuid.UUID        `json:"source_id"`
	UserName  string           `json:"user_name,omitempty"`
	Read      bool             `json:"read"`
	Timestamp time.Time        `json:"timestamp"`
}

// NotificationRepository defines notification data access.
type NotificationRepository interface {
	CreateNotification(ctx context.Context, n Notification) error
	ListNotifications(ctx context.Context, limit, offset int) ([]Notification, error)
	MarkNotificationRead(ctx context.Context, id uuid.UUID) error
	DeleteNotification(ctx context.Context, id uuid.UUID) error
	UnreadNotificationCount(ctx context.Context) (int, error)
	AdminPushTokens(ctx context.Context) ([]string, error)
}
