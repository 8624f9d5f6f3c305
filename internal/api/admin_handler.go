package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/pixeldesk/backend/internal/auth"
	"github.com/pixeldesk/backend/internal/domain"
	"github.com/pixeldesk/backend/internal/middleware"
	"github.com/pixeldesk/backend/pkg/response"
)

// AdminHandler handles the admin console endpoints: legacy console
// unlock, user management, and the sign-in audit log.
type AdminHandler struct {
	authService *domain.AuthService
	profiles    *domain.ProfileService
	gate        *auth.ConsoleGate
	logger      *zap.Logger
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(authService *domain.AuthService, profiles *domain.ProfileService, gate *auth.ConsoleGate, logger *zap.Logger) *AdminHandler {
	return &AdminHandler{
		authService: authService,
		profiles:    profiles,
		gate:        gate,
		logger:      logger,
	}
}

// ConsoleLoginRequest represents the legacy console password body
type ConsoleLoginRequest struct {
	Password string `json:"password"`
}

// ConsoleLogin verifies the legacy shared console password. Attempts are
// tracked per caller; five failures lock the caller out for the
// configured window.
func (h *AdminHandler) ConsoleLogin(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "not authenticated")
		return
	}

	var req ConsoleLoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}

	caller := userID.String()
	if err := h.gate.Attempt(caller, req.Password); err != nil {
		switch {
		case errors.Is(err, auth.ErrConsoleLocked):
			_, wait := h.gate.RemainingAttempts(caller)
			response.Locked(w, "too many failed attempts, try again in "+wait.Round(time.Second).String())
		case errors.Is(err, auth.ErrConsoleDisabled):
			response.Forbidden(w, "console access is disabled")
		case errors.Is(err, auth.ErrPasswordMismatch):
			remaining, _ := h.gate.RemainingAttempts(caller)
			role, _ := middleware.GetRole(r.Context())
			h.logger.Warn("console password rejected",
				zap.String("user_id", caller),
				zap.String("role", role),
				zap.Int("attempts_remaining", remaining))
			response.Unauthorized(w, "incorrect password, "+strconv.Itoa(remaining)+" attempts remaining")
		default:
			h.logger.Error("console login failed", zap.Error(err))
			response.InternalError(w, "console login failed")
		}
		return
	}

	response.OK(w, map[string]bool{"console_authenticated": true})
}

// ListUsers returns every profile for the admin console
func (h *AdminHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	profiles, err := h.profiles.List(r.Context())
	if err != nil {
		h.logger.Error("list users failed", zap.Error(err))
		response.InternalError(w, "failed to list users")
		return
	}
	response.OK(w, profiles)
}

// SetRoleRequest represents the role change body
type SetRoleRequest struct {
	Role string `json:"role"`
}

// SetRole elevates or demotes a user
func (h *AdminHandler) SetRole(w http.ResponseWriter, r *http.Request) {
	uid, err := uuid.Parse(chi.URLParam(r, "userId"))
	if err != nil {
		response.BadRequest(w, "invalid user id")
		return
	}

	var req SetRoleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}

	err = h.profiles.SetRole(r.Context(), uid, domain.Role(req.Role))
	if err != nil {
		if errors.Is(err, domain.ErrInvalidRole) {
			response.BadRequest(w, "role must be user, moderator or admin")
			return
		}
		if errors.Is(err, domain.ErrProfileNotFound) {
			response.NotFound(w, "user not found")
			return
		}
		h.logger.Error("set role failed", zap.Error(err))
		response.InternalError(w, "failed to update role")
		return
	}

	response.NoContent(w)
}

// SetPermissionRequest represents a per-user permission override
type SetPermissionRequest struct {
	Permission string `json:"permission"`
	Allowed    bool   `json:"allowed"`
}

// SetPermission writes a per-user permission override
func (h *AdminHandler) SetPermission(w http.ResponseWriter, r *http.Request) {
	uid, err := uuid.Parse(chi.URLParam(r, "userId"))
	if err != nil {
		response.BadRequest(w, "invalid user id")
		return
	}

	var req SetPermissionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}
	if req.Permission == "" {
		response.BadRequest(w, "permission is required")
		return
	}

	err = h.profiles.SetPermission(r.Context(), uid, req.Permission, req.Allowed)
	if err != nil {
		if errors.Is(err, domain.ErrProfileNotFound) {
			response.NotFound(w, "user not found")
			return
		}
		h.logger.Error("set permission failed", zap.Error(err))
		response.InternalError(w, "failed to update permission")
		return
	}

	response.NoContent(w)
}

// LoginRecords returns recent sign-in audit entries
func (h *AdminHandler) LoginRecords(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	records, err := h.authService.LoginRecords(r.Context(), limit)
	if err != nil {
		h.logger.Error("list login records failed", zap.Error(err))
		response.InternalError(w, "failed to list login records")
		return
	}
	response.OK(w, records)
}
