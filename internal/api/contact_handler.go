package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/pixeldesk/backend/internal/domain"
	"github.com/pixeldesk/backend/internal/middleware"
	"github.com/pixeldesk/backend/internal/ratelimit"
	"github.com/pixeldesk/backend/pkg/response"
)

// ContactHandler handles contact form endpoints
type ContactHandler struct {
	contacts *domain.ContactService
	limiter  *ratelimit.Limiter
	logger   *zap.Logger
}

// NewContactHandler creates a new contact handler
func NewContactHandler(contacts *domain.ContactService, limiter *ratelimit.Limiter, logger *zap.Logger) *ContactHandler {
	return &ContactHandler{
		contacts: contacts,
		limiter:  limiter,
		logger:   logger,
	}
}

// CreateContactRequest represents the contact form body
type CreateContactRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Subject string `json:"subject"`
	Message string `json:"message"`
}

// Create handles a contact form submission
func (h *ContactHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "not authenticated")
		return
	}

	result, err := h.limiter.Check(r.Context(), userID, ratelimit.OpCreateContact)
	if err != nil {
		h.logger.Warn("rate limit check failed", zap.Error(err))
	} else if result.Limited {
		response.TooManyRequests(w, result.Message)
		return
	}

	var req CreateContactRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}

	id, err := h.contacts.AddContact(r.Context(), domain.AddContactInput{
		Name:    req.Name,
		Email:   req.Email,
		Subject: req.Subject,
		Message: req.Message,
	})
	if err != nil {
		if errors.Is(err, domain.ErrInvalidContact) {
			response.BadRequest(w, "name, email and message are required")
			return
		}
		h.logger.Error("create contact failed", zap.Error(err))
		response.InternalError(w, "failed to send message")
		return
	}

	response.Created(w, map[string]string{"id": id.String()})
}

// List returns every submission for the admin console
func (h *ContactHandler) List(w http.ResponseWriter, r *http.Request) {
	submissions, err := h.contacts.List(r.Context())
	if err != nil {
		h.logger.Error("list contacts failed", zap.Error(err))
		response.InternalError(w, "failed to list messages")
		return
	}
	response.OK(w, submissions)
}

// UpdateStatus moves a submission through the triage states. Admin only.
func (h *ContactHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "contactId"))
	if err != nil {
		response.BadRequest(w, "invalid contact id")
		return
	}

	var req UpdateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}

	err = h.contacts.UpdateStatus(r.Context(), id, domain.ContactStatus(req.Status))
	if err != nil {
		if errors.Is(err, domain.ErrContactNotFound) {
			response.NotFound(w, "message not found")
			return
		}
		if errors.Is(err, domain.ErrInvalidContact) {
			response.BadRequest(w, "status must be new, read or replied")
			return
		}
		h.logger.Error("update contact status failed", zap.Error(err))
		response.InternalError(w, "failed to update message")
		return
	}

	response.NoContent(w)
}
