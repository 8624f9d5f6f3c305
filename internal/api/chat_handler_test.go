package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/pixeldesk/backend/internal/domain"
)

type failingChatRepo struct{}

func (failingChatRepo) CreateChatMessage(ctx context.Context, message domain.ChatMessage) error {
	return errStoreDown
}
func (failingChatRepo) ListChatMessages(ctx context.Context, limit int) ([]domain.ChatMessage, error) {
	return nil, errStoreDown
}
func (failingChatRepo) DeleteChatMessage(ctx context.Context, id uuid.UUID) error {
	return errStoreDown
}

func TestChatListServesEmptyOnStoreFailure(t *testing.T) {
	chat := domain.NewChatService(failingChatRepo{}, nopPublisher{})
	h := NewChatHandler(chat, nil, nil, zap.NewNop())

	rec := httptest.NewRecorder()
	h.List(rec, httptest.NewRequest(http.MethodGet, "/api/v1/chat/messages", nil))

	require.Equal(t, http.StatusOK, rec.Code, "chat read never answers 5xx")

	var body struct {
		Data []domain.ChatMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.NotNil(t, body.Data)
	assert.Empty(t, body.Data)
}
