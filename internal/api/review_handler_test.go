package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/pixeldesk/backend/internal/domain"
	"github.com/pixeldesk/backend/internal/events"
)

var errStoreDown = errors.New("store unavailable")

type nopPublisher struct{}

func (nopPublisher) Publish(ctx context.Context, event events.Event) {}

type stubNotificationRepo struct{}

func (stubNotificationRepo) CreateNotification(ctx context.Context, n domain.Notification) error {
	return nil
}
func (stubNotificationRepo) ListNotifications(ctx context.Context, limit, offset int) ([]domain.Notification, error) {
	return nil, nil
}
func (stubNotificationRepo) MarkNotificationRead(ctx context.Context, id uuid.UUID) error {
	return nil
}
func (stubNotificationRepo) DeleteNotification(ctx context.Context, id uuid.UUID) error {
	return nil
}
func (stubNotificationRepo) UnreadNotificationCount(ctx context.Context) (int, error) {
	return 0, nil
}
func (stubNotificationRepo) AdminPushTokens(ctx context.Context) ([]string, error) {
	return nil, nil
}

type failingReviewRepo struct{}

func (failingReviewRepo) ListRawReviews(ctx context.Context) ([]domain.RawReview, error) {
	return nil, errStoreDown
}
func (failingReviewRepo) GetRawReview(ctx context.Context, id uuid.UUID) (*domain.RawReview, error) {
	return nil, errStoreDown
}
func (failingReviewRepo) CreateReview(ctx context.Context, review domain.Review) error {
	return errStoreDown
}
func (failingReviewRepo) UpsertReview(ctx context.Context, review domain.Review) error {
	return errStoreDown
}
func (failingReviewRepo) DeleteReview(ctx context.Context, id uuid.UUID) error {
	return errStoreDown
}

func newFailingReviewHandler() *ReviewHandler {
	notifications := domain.NewNotificationService(stubNotificationRepo{}, nil, nopPublisher{}, zap.NewNop())
	reviews := domain.NewReviewService(failingReviewRepo{}, notifications, nopPublisher{})
	return NewReviewHandler(reviews, nil, zap.NewNop())
}

func TestListPublicServesEmptyOnStoreFailure(t *testing.T) {
	h := newFailingReviewHandler()

	rec := httptest.NewRecorder()
	h.ListPublic(rec, httptest.NewRequest(http.MethodGet, "/api/v1/reviews", nil))

	require.Equal(t, http.StatusOK, rec.Code, "public reads never answer 5xx")

	var body struct {
		Success bool            `json:"success"`
		Data    []domain.Review `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.True(t, body.Success)
	require.NotNil(t, body.Data, "payload carries an empty list, not null")
	assert.Empty(t, body.Data)
}

func TestListAllReportsStoreFailure(t *testing.T) {
	h := newFailingReviewHandler()

	rec := httptest.NewRecorder()
	h.ListAll(rec, httptest.NewRequest(http.MethodGet, "/api/v1/reviews/all", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code,
		"moderation listings surface failures to the console")
}
