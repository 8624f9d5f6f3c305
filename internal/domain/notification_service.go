package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/pixeldesk/backend/internal/events"
	"github.com/pixeldesk/backend/internal/fcm"
)

// NotificationService persists admin notifications and pushes them to
// admin devices. Creation is always best-effort: a failed notification
// never fails the submission that produced it.
type NotificationService struct {
	repo      NotificationRepository
	fcmClient *fcm.Client
	publisher EventPublisher
	logger    *zap.Logger
}

// NewNotificationService creates a new notification service.
func NewNotificationService(repo NotificationRepository, fcmClient *fcm.Client, publisher EventPublisher, logger *zap.Logger) *NotificationService {
	return &NotificationService{
		repo:      repo,
		fcmClient: fcmClient,
		publisher: publisher,
		logger:    logger,
	}
}

// Notify records a notification for the admin console. Errors are logged
// and swallowed.
func (s *NotificationService) Notify(ctx context.Context, typ NotificationType, title, message string, sourceID uuid.UUID, userName string) {
	n := Notification{
		ID:        uuid.New(),
		Type:      typ,
		Title:     title,
		Message:   message,
		SourceID:  sourceID,
		UserName:  userName,
		Timestamp: time.Now(),
	}

	if err := s.repo.CreateNotification(ctx, n); err != nil {
		s.logger.Warn("create notification", zap.String("type", string(typ)), zap.Error(err))
		return
	}

	s.publisher.Publish(ctx, events.Event{Topic: events.TopicCollection, Collection: events.CollectionNotifications})

	if s.fcmClient == nil {
		return
	}
	tokens, err := s.repo.AdminPushTokens(ctx)
	if err != nil {
		s.logger.Warn("load admin push tokens", zap.Error(err))
		return
	}
	for _, token := range tokens {
		if token == "" {
			continue
		}
		go func(t string) {
			_ = s.fcmClient.Send(context.Background(), t, title, message, map[string]string{
				"type":      string(typ),
				"source_id": sourceID.String(),
			})
		}(token)
	}
}

// List returns notifications newest first.
func (s *NotificationService) List(ctx context.Context, limit, offset int) ([]Notification, error) {
	if limit <= 0 {
		limit = 50
	}
	return s.repo.ListNotifications(ctx, limit, offset)
}

// MarkRead flags a notification as read.
func (s *NotificationService) MarkRead(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.MarkNotificationRead(ctx, id); err != nil {
		return err
	}
	s.publisher.Publish(ctx, events.Event{Topic: events.TopicCollection, Collection: events.CollectionNotifications})
	return nil
}

// Delete removes a notification.
func (s *NotificationService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.DeleteNotification(ctx, id); err != nil {
		return err
	}
	s.publisher.Publish(ctx, events.Event{Topic: events.TopicCollection, Collection: events.CollectionNotifications})
	return nil
}

// UnreadCount reports how many notifications are unread.
func (s *NotificationService) UnreadCount(ctx context.Context) (int, error) {
	return s.repo.UnreadNotificationCount(ctx)
}
