package api

import (
	"fmt"
	"net/http"
	"net/url"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"github.com/pixeldesk/backend/internal/config"
	"github.com/pixeldesk/backend/internal/domain"
)

// oauthStateCookie carries the per-login CSRF state between the consent
// redirect and the callback.
const oauthStateCookie = "oauth_state"

// GoogleOAuthHandler handles the browser-based Google OAuth flow. The
// SPA normally posts ID tokens directly; this flow exists for clients
// without a Google SDK.
type GoogleOAuthHandler struct {
	config      *oauth2.Config
	authService *domain.AuthService
	logger      *zap.Logger
	frontendURL string
}

// NewGoogleOAuthHandler creates a new Google OAuth handler
func NewGoogleOAuthHandler(cfg *config.Config, authService *domain.AuthService, logger *zap.Logger) *GoogleOAuthHandler {
	clientID := ""
	if len(cfg.Google.ClientIDs) > 0 {
		clientID = cfg.Google.ClientIDs[0]
	}

	conf := &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: cfg.Google.ClientSecret,
		RedirectURL:  cfg.Google.RedirectURL,
		Scopes: []string{
			"https://www.googleapis.com/auth/userinfo.email",
			"https://www.googleapis.com/auth/userinfo.profile",
		},
		Endpoint: google.Endpoint,
	}

	return &GoogleOAuthHandler{
		config:      conf,
		authService: authService,
		logger:      logger,
		frontendURL: cfg.Server.PublicURL,
	}
}

// Login redirects the browser to Google's consent screen. The random
// state rides along in a short-lived cookie so Callback can verify the
// redirect really started here.
func (h *GoogleOAuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	state := uuid.NewString()
	http.SetCookie(w, &http.Cookie{
		Name:     oauthStateCookie,
		Value:    state,
		Path:     "/api/v1/auth/google",
		MaxAge:   600,
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteLaxMode,
	})
	authURL := h.config.AuthCodeURL(state, oauth2.AccessTypeOffline)
	http.Redirect(w, r, authURL, http.StatusTemporaryRedirect)
}

// Callback handles the redirect back from Google
func (h *GoogleOAuthHandler) Callback(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	state := r.URL.Query().Get("state")
	cookie, err := r.Cookie(oauthStateCookie)
	if err != nil || state == "" || cookie.Value != state {
		h.redirectWithError(w, r, "state mismatch")
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     oauthStateCookie,
		Value:    "",
		Path:     "/api/v1/auth/google",
		MaxAge:   -1,
		HttpOnly: true,
	})

	code := r.URL.Query().Get("code")
	if code == "" {
		h.redirectWithError(w, r, "authorization code missing")
		return
	}

	token, err := h.config.Exchange(ctx, code)
	if err != nil {
		h.logger.Error("exchange oauth code", zap.Error(err))
		h.redirectWithError(w, r, "failed to authenticate with Google")
		return
	}

	idToken, ok := token.Extra("id_token").(string)
	if !ok {
		h.redirectWithError(w, r, "no ID token in Google response")
		return
	}

	result, err := h.authService.GoogleLogin(ctx, idToken)
	if err != nil {
		h.logger.Error("google oauth login", zap.Error(err))
		h.redirectWithError(w, r, "failed to sign in")
		return
	}

	redirect := fmt.Sprintf("%s/auth/callback?access_token=%s&refresh_token=%s",
		h.frontendURL,
		url.QueryEscape(result.AccessToken),
		url.QueryEscape(result.RefreshToken),
	)
	http.Redirect(w, r, redirect, http.StatusTemporaryRedirect)
}

func (h *GoogleOAuthHandler) redirectWithError(w http.ResponseWriter, r *http.Request, msg string) {
	redirect := fmt.Sprintf("%s/auth/callback?error=%s", h.frontendURL, url.QueryEscape(msg))
	http.Redirect(w, r, redirect, http.StatusTemporaryRedirect)
}
