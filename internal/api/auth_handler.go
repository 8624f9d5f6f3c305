package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/pixeldesk/backend/internal/auth"
	"github.com/pixeldesk/backend/internal/domain"
	"github.com/pixeldesk/backend/internal/middleware"
	"github.com/pixeldesk/backend/pkg/response"
	"github.com/pixeldesk/backend/pkg/validator"
)

// AuthHandler handles authentication endpoints
type AuthHandler struct {
	authService *domain.AuthService
	profiles    *domain.ProfileService
	logger      *zap.Logger
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService *domain.AuthService, profiles *domain.ProfileService, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		profiles:    profiles,
		logger:      logger,
	}
}

// RegisterRequest represents the registration request body
type RegisterRequest struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	DisplayName string `json:"display_name"`
}

// LoginRequest represents the login request body
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RefreshRequest represents the token refresh request body
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// GoogleLoginRequest represents the Google sign-in request body
type GoogleLoginRequest struct {
	IDToken string `json:"id_token"`
}

// Register handles user registration
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}

	req.Email = validator.SanitizeEmail(req.Email)
	if !validator.ValidateEmail(req.Email) {
		response.BadRequest(w, "invalid email address")
		return
	}

	req.DisplayName = validator.SanitizeString(req.DisplayName, 100)
	if !validator.ValidateName(req.DisplayName) {
		response.BadRequest(w, "display name must be 2-100 characters")
		return
	}

	result, err := h.authService.Register(r.Context(), req.Email, req.Password, req.DisplayName)
	if err != nil {
		if errors.Is(err, domain.ErrUserAlreadyExists) {
			response.Conflict(w, "user with this email already exists")
			return
		}
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			response.BadRequest(w, verrs.Error())
			return
		}
		h.logger.Error("registration failed", zap.Error(err))
		response.InternalError(w, "registration failed")
		return
	}

	response.Created(w, result)
}

// Login handles email/password login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}

	if req.Password == "" {
		response.BadRequest(w, "password is required")
		return
	}

	result, err := h.authService.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidCredentials) {
			response.Unauthorized(w, "invalid email or password")
			return
		}
		h.logger.Error("login failed", zap.Error(err))
		response.InternalError(w, "login failed")
		return
	}

	response.OK(w, result)
}

// GoogleLogin exchanges a Google ID token for a session
func (h *AuthHandler) GoogleLogin(w http.ResponseWriter, r *http.Request) {
	var req GoogleLoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}

	if req.IDToken == "" {
		response.BadRequest(w, "id_token is required")
		return
	}

	result, err := h.authService.GoogleLogin(r.Context(), req.IDToken)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidGoogleToken) {
			response.Unauthorized(w, "invalid Google token")
			return
		}
		h.logger.Error("Google login failed", zap.Error(err))
		response.InternalError(w, "Google login failed")
		return
	}

	response.OK(w, result)
}

// Refresh handles token refresh with rotation
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req RefreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}

	if req.RefreshToken == "" {
		response.BadRequest(w, "refresh_token is required")
		return
	}

	result, err := h.authService.Refresh(r.Context(), req.RefreshToken)
	if err != nil {
		if errors.Is(err, auth.ErrExpiredToken) {
			response.Unauthorized(w, "refresh token has expired")
			return
		}
		if errors.Is(err, auth.ErrInvalidToken) || errors.Is(err, domain.ErrTokenRevoked) {
			response.Unauthorized(w, "invalid refresh token")
			return
		}
		h.logger.Error("token refresh failed", zap.Error(err))
		response.InternalError(w, "token refresh failed")
		return
	}

	response.OK(w, result)
}

// Logout revokes one refresh token
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	var req RefreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}

	if req.RefreshToken == "" {
		response.BadRequest(w, "refresh_token is required")
		return
	}

	if err := h.authService.Logout(r.Context(), req.RefreshToken); err != nil {
		// Token may already be revoked; logout still succeeds.
		h.logger.Warn("logout failed", zap.Error(err))
	}

	response.NoContent(w)
}

// LogoutAll revokes every refresh token for the caller
func (h *AuthHandler) LogoutAll(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "not authenticated")
		return
	}

	if err := h.authService.LogoutAll(r.Context(), userID); err != nil {
		h.logger.Error("logout all failed", zap.Error(err))
		response.InternalError(w, "logout failed")
		return
	}

	response.NoContent(w)
}

// MeResponse carries the caller's profile and resolved access
type MeResponse struct {
	Profile     *domain.Profile `json:"profile"`
	Role        domain.Role     `json:"role"`
	IsAdmin     bool            `json:"is_admin"`
	Permissions map[string]bool `json:"permissions"`
}

// Me returns the caller's profile with its resolved role and permissions
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "not authenticated")
		return
	}
	email, _ := middleware.GetEmail(r.Context())

	profile, err := h.profiles.GetOrCreate(r.Context(), userID, "", email, "")
	if err != nil {
		h.logger.Error("load profile failed", zap.Error(err))
		response.InternalError(w, "failed to load profile")
		return
	}

	access := h.profiles.Resolve(r.Context(), userID, email)
	response.OK(w, MeResponse{
		Profile:     profile,
		Role:        access.Role,
		IsAdmin:     access.IsAdmin,
		Permissions: access.Permissions,
	})
}

// UpdateProfileRequest represents the profile update request body
type UpdateProfileRequest struct {
	DisplayName string `json:"display_name"`
	PhoneNumber string `json:"phone_number"`
	PhotoURL    string `json:"photo_url"`
}

// UpdateProfile changes the caller's user-editable profile fields
func (h *AuthHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "not authenticated")
		return
	}

	var req UpdateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}

	profile, err := h.profiles.UpdateProfile(r.Context(), userID, req.DisplayName, req.PhoneNumber, req.PhotoURL)
	if err != nil {
		if errors.Is(err, domain.ErrProfileNotFound) {
			response.NotFound(w, "profile not found")
			return
		}
		h.logger.Error("update profile failed", zap.Error(err))
		response.InternalError(w, "failed to update profile")
		return
	}

	response.OK(w, profile)
}

// PushTokenRequest represents the push token registration body
type PushTokenRequest struct {
	Token string `json:"token"`
}

// UpdatePushToken registers the caller's device token for admin alerts
func (h *AuthHandler) UpdatePushToken(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "not authenticated")
		return
	}

	var req PushTokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}

	if err := h.profiles.UpdatePushToken(r.Context(), userID, req.Token); err != nil {
		h.logger.Error("update push token failed", zap.Error(err))
		response.InternalError(w, "failed to update push token")
		return
	}

	response.NoContent(w)
}
