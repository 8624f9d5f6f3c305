package api

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/pixeldesk/backend/internal/domain"
	"github.com/pixeldesk/backend/pkg/response"
)

// NotificationHandler handles admin notification endpoints
type NotificationHandler struct {
	notifications *domain.NotificationService
	logger        *zap.Logger
}

// NewNotificationHandler creates a new notification handler
func NewNotificationHandler(notifications *domain.NotificationService, logger *zap.Logger) *NotificationHandler {
	return &NotificationHandler{
		notifications: notifications,
		logger:        logger,
	}
}

// List returns notifications newest first
func (h *NotificationHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

	notifications, err := h.notifications.List(r.Context(), limit, offset)
	if err != nil {
		h.logger.Error("list notifications failed", zap.Error(err))
		response.InternalError(w, "failed to list notifications")
		return
	}
	response.OK(w, notifications)
}

// UnreadCount reports the unread badge count
func (h *NotificationHandler) UnreadCount(w http.ResponseWriter, r *http.Request) {
	count, err := h.notifications.UnreadCount(r.Context())
	if err != nil {
		h.logger.Error("count notifications failed", zap.Error(err))
		response.InternalError(w, "failed to count notifications")
		return
	}
	response.OK(w, map[string]int{"unread": count})
}

// MarkRead flags a notification as read
func (h *NotificationHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "notificationId"))
	if err != nil {
		response.BadRequest(w, "invalid notification id")
		return
	}

	if err := h.notifications.MarkRead(r.Context(), id); err != nil {
		h.logger.Error("mark notification read failed", zap.Error(err))
		response.InternalError(w, "failed to update notification")
		return
	}
	response.NoContent(w)
}

// Delete removes a notification
func (h *NotificationHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "notificationId"))
	if err != nil {
		response.BadRequest(w, "invalid notification id")
		return
	}

	if err := h.notifications.Delete(r.Context(), id); err != nil {
		h.logger.Error("delete notification failed", zap.Error(err))
		response.InternalError(w, "failed to delete notification")
		return
	}
	response.NoContent(w)
}
