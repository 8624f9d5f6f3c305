package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/pixeldesk/backend/internal/domain"
	"github.com/pixeldesk/backend/internal/middleware"
	"github.com/pixeldesk/backend/internal/ratelimit"
	"github.com/pixeldesk/backend/pkg/response"
)

// ChatHandler handles the public desktop chat endpoints
type ChatHandler struct {
	chat     *domain.ChatService
	profiles *domain.ProfileService
	limiter  *ratelimit.Limiter
	logger   *zap.Logger
}

// NewChatHandler creates a new chat handler
func NewChatHandler(chat *domain.ChatService, profiles *domain.ProfileService, limiter *ratelimit.Limiter, logger *zap.Logger) *ChatHandler {
	return &ChatHandler{
		chat:     chat,
		profiles: profiles,
		limiter:  limiter,
		logger:   logger,
	}
}

// SendMessageRequest represents the chat message body
type SendMessageRequest struct {
	Body string `json:"body"`
}

// Send posts a message to the chat window
func (h *ChatHandler) Send(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "not authenticated")
		return
	}
	email, _ := middleware.GetEmail(r.Context())

	result, err := h.limiter.Check(r.Context(), userID, ratelimit.OpSendChat)
	if err != nil {
		h.logger.Warn("rate limit check failed", zap.Error(err))
	} else if result.Limited {
		response.TooManyRequests(w, result.Message)
		return
	}

	var req SendMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}

	author := domain.AuthorRef{ID: userID, Name: email}
	if profile, err := h.profiles.GetOrCreate(r.Context(), userID, "", email, ""); err == nil {
		if profile.DisplayName != "" {
			author.Name = profile.DisplayName
		}
		author.PhotoURL = profile.PhotoURL
	}

	id, err := h.chat.Send(r.Context(), author, req.Body)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidMessage) {
			response.BadRequest(w, "message body is required")
			return
		}
		h.logger.Error("send chat message failed", zap.Error(err))
		response.InternalError(w, "failed to send message")
		return
	}

	response.Created(w, map[string]string{"id": id.String()})
}

// List returns recent chat messages, oldest first. A failed read renders
// as an empty window, not a 5xx.
func (h *ChatHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	messages, err := h.chat.List(r.Context(), limit)
	if err != nil {
		h.logger.Error("list chat messages failed", zap.Error(err))
		messages = []domain.ChatMessage{}
	}
	response.OK(w, messages)
}

// Delete removes a message. Moderator only.
func (h *ChatHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "messageId"))
	if err != nil {
		response.BadRequest(w, "invalid message id")
		return
	}

	if err := h.chat.Delete(r.Context(), id); err != nil {
		h.logger.Error("delete chat message failed", zap.Error(err))
		response.InternalError(w, "failed to delete message")
		return
	}
	response.NoContent(w)
}
