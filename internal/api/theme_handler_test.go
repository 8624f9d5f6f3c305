package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/pixeldesk/backend/internal/domain"
)

type failingThemeRepo struct{}

func (failingThemeRepo) GetTheme(ctx context.Context) (*domain.ThemeSettings, error) {
	return nil, errStoreDown
}
func (failingThemeRepo) SaveTheme(ctx context.Context, settings domain.ThemeSettings) error {
	return errStoreDown
}

func TestThemeGetServesDefaultsOnStoreFailure(t *testing.T) {
	theme := domain.NewThemeService(failingThemeRepo{}, nopPublisher{}, zap.NewNop())
	h := NewThemeHandler(theme, zap.NewNop())

	rec := httptest.NewRecorder()
	h.Get(rec, httptest.NewRequest(http.MethodGet, "/api/v1/theme", nil))

	require.Equal(t, http.StatusOK, rec.Code, "theme read never answers 5xx")

	var body struct {
		Data domain.ThemeSettings `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, domain.DefaultThemeSettings(), body.Data)
}
