package api

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/pixeldesk/backend/internal/domain"
	"github.com/pixeldesk/backend/pkg/response"
)

// ThemeHandler handles the desktop theme endpoints
type ThemeHandler struct {
	theme  *domain.ThemeService
	logger *zap.Logger
}

// NewThemeHandler creates a new theme handler
func NewThemeHandler(theme *domain.ThemeService, logger *zap.Logger) *ThemeHandler {
	return &ThemeHandler{theme: theme, logger: logger}
}

// Get returns the theme settings, installing defaults on first read. A
// failed load answers with the defaults so the desktop always renders.
func (h *ThemeHandler) Get(w http.ResponseWriter, r *http.Request) {
	settings, err := h.theme.Get(r.Context())
	if err != nil {
		h.logger.Error("load theme failed", zap.Error(err))
		settings = domain.DefaultThemeSettings()
	}
	response.OK(w, settings)
}

// Update replaces the theme settings. Admin only.
func (h *ThemeHandler) Update(w http.ResponseWriter, r *http.Request) {
	var settings domain.ThemeSettings
	if err := json.NewDecoder(r.Body).Decode(&settings); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}

	saved, err := h.theme.Update(r.Context(), settings)
	if err != nil {
		h.logger.Error("save theme failed", zap.Error(err))
		response.InternalError(w, "failed to save theme")
		return
	}
	response.OK(w, saved)
}
