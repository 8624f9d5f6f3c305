package api

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/pixeldesk/backend/internal/config"
)

func newOAuthFixture() *GoogleOAuthHandler {
	cfg := &config.Config{}
	cfg.Google.ClientIDs = []string{"client-id"}
	cfg.Google.ClientSecret = "client-secret"
	cfg.Google.RedirectURL = "http://localhost:8080/api/v1/auth/google/callback"
	cfg.Server.PublicURL = "http://localhost:5173"
	return NewGoogleOAuthHandler(cfg, nil, zap.NewNop())
}

func TestOAuthLoginSetsStateCookie(t *testing.T) {
	h := newOAuthFixture()

	rec := httptest.NewRecorder()
	h.Login(rec, httptest.NewRequest(http.MethodGet, "/api/v1/auth/google/login", nil))

	require.Equal(t, http.StatusTemporaryRedirect, rec.Code)

	var state string
	for _, c := range rec.Result().Cookies() {
		if c.Name == oauthStateCookie {
			state = c.Value
			assert.True(t, c.HttpOnly)
		}
	}
	require.NotEmpty(t, state, "login must set the state cookie")

	loc, err := url.Parse(rec.Header().Get("Location"))
	require.NoError(t, err)
	assert.Equal(t, state, loc.Query().Get("state"), "consent URL carries the cookie's state")
}

func TestOAuthCallbackRejectsMissingState(t *testing.T) {
	h := newOAuthFixture()

	rec := httptest.NewRecorder()
	h.Callback(rec, httptest.NewRequest(http.MethodGet, "/api/v1/auth/google/callback?code=abc", nil))

	require.Equal(t, http.StatusTemporaryRedirect, rec.Code)
	assert.Contains(t, rec.Header().Get("Location"), "error=", "callback without state must not proceed")
}

func TestOAuthCallbackRejectsMismatchedState(t *testing.T) {
	h := newOAuthFixture()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/auth/google/callback?code=abc&state=forged", nil)
	req.AddCookie(&http.Cookie{Name: oauthStateCookie, Value: "issued"})

	rec := httptest.NewRecorder()
	h.Callback(rec, req)

	require.Equal(t, http.StatusTemporaryRedirect, rec.Code)
	loc := rec.Header().Get("Location")
	assert.Contains(t, loc, "error=")
	assert.NotContains(t, loc, "access_token", "forged state must never yield tokens")
}
