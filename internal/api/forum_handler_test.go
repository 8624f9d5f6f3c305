package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/pixeldesk/backend/internal/domain"
)

// fakeForumRepo keeps topics in memory; failLists makes read listings fail.
type fakeForumRepo struct {
	failLists         bool
	topics            map[uuid.UUID]domain.ForumTopic
	posts             map[uuid.UUID][]domain.ForumPost
	deletedCategories []uuid.UUID
}

func newFakeForumRepo() *fakeForumRepo {
	return &fakeForumRepo{
		topics: make(map[uuid.UUID]domain.ForumTopic),
		posts:  make(map[uuid.UUID][]domain.ForumPost),
	}
}

func (f *fakeForumRepo) ListCategories(ctx context.Context) ([]domain.ForumCategory, error) {
	if f.failLists {
		return nil, errStoreDown
	}
	return nil, nil
}

func (f *fakeForumRepo) CreateCategory(ctx context.Context, category domain.ForumCategory) error {
	return nil
}

func (f *fakeForumRepo) DeleteCategory(ctx context.Context, id uuid.UUID) error {
	f.deletedCategories = append(f.deletedCategories, id)
	return nil
}

func (f *fakeForumRepo) CreateTopic(ctx context.Context, topic domain.ForumTopic) error {
	f.topics[topic.ID] = topic
	return nil
}

func (f *fakeForumRepo) GetTopic(ctx context.Context, id uuid.UUID) (*domain.ForumTopic, error) {
	topic, ok := f.topics[id]
	if !ok {
		return nil, nil
	}
	return &topic, nil
}

func (f *fakeForumRepo) ListTopics(ctx context.Context, categoryID uuid.UUID) ([]domain.ForumTopic, error) {
	if f.failLists {
		return nil, errStoreDown
	}
	return nil, nil
}

func (f *fakeForumRepo) UpsertTopic(ctx context.Context, topic domain.ForumTopic) error {
	f.topics[topic.ID] = topic
	return nil
}

func (f *fakeForumRepo) DeleteTopic(ctx context.Context, id uuid.UUID) error {
	delete(f.topics, id)
	return nil
}

func (f *fakeForumRepo) IncrementTopicViews(ctx context.Context, id uuid.UUID) error {
	return nil
}

func (f *fakeForumRepo) CreatePost(ctx context.Context, post domain.ForumPost) error {
	f.posts[post.TopicID] = append(f.posts[post.TopicID], post)
	return nil
}

func (f *fakeForumRepo) ListPosts(ctx context.Context, topicID uuid.UUID) ([]domain.ForumPost, error) {
	return f.posts[topicID], nil
}

func (f *fakeForumRepo) DeletePost(ctx context.Context, id uuid.UUID) error {
	return nil
}

func newForumFixture(repo *fakeForumRepo) (*ForumHandler, chi.Router) {
	forum := domain.NewForumService(repo, nopPublisher{})
	h := NewForumHandler(forum, nil, nil, nil, zap.NewNop())

	r := chi.NewRouter()
	r.Get("/forum/categories", h.ListCategories)
	r.Get("/forum/categories/{categoryId}/topics", h.ListTopics)
	r.Get("/forum/topics/{topicId}", h.GetTopic)
	r.Delete("/forum/categories/{categoryId}", h.DeleteCategory)
	return h, r
}

func TestForumListCategoriesServesEmptyOnStoreFailure(t *testing.T) {
	repo := newFakeForumRepo()
	repo.failLists = true
	_, router := newForumFixture(repo)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/forum/categories", nil))

	require.Equal(t, http.StatusOK, rec.Code, "board reads never answer 5xx")

	var body struct {
		Data []domain.ForumCategory `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.NotNil(t, body.Data)
	assert.Empty(t, body.Data)
}

func TestForumListTopicsServesEmptyOnStoreFailure(t *testing.T) {
	repo := newFakeForumRepo()
	repo.failLists = true
	_, router := newForumFixture(repo)

	url := "/forum/categories/" + uuid.NewString() + "/topics"
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, url, nil))

	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Data []domain.ForumTopic `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.NotNil(t, body.Data)
	assert.Empty(t, body.Data)
}

func TestGetTopicReportsLoveCount(t *testing.T) {
	repo := newFakeForumRepo()
	topic := domain.ForumTopic{
		ID:        uuid.New(),
		Title:     "Retro wallpapers",
		Content:   "Share yours",
		Loves:     map[string]bool{"a": true, "b": false, "c": true},
		CreatedAt: time.Now(),
	}
	repo.topics[topic.ID] = topic
	_, router := newForumFixture(repo)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/forum/topics/"+topic.ID.String(), nil))

	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Data TopicResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 2, body.Data.LoveCount, "only active loves count")
	require.NotNil(t, body.Data.Topic)
	assert.Equal(t, topic.ID, body.Data.Topic.ID)
}

func TestDeleteCategory(t *testing.T) {
	repo := newFakeForumRepo()
	_, router := newForumFixture(repo)

	id := uuid.New()
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/forum/categories/"+id.String(), nil))

	assert.Equal(t, http.StatusNoContent, rec.Code)
	require.Len(t, repo.deletedCategories, 1)
	assert.Equal(t, id, repo.deletedCategories[0])
}
