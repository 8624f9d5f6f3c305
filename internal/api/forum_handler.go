package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/pixeldesk/backend/internal/domain"
	"github.com/pixeldesk/backend/internal/middleware"
	"github.com/pixeldesk/backend/internal/ratelimit"
	"github.com/pixeldesk/backend/internal/storage"
	"github.com/pixeldesk/backend/pkg/response"
)

const maxForumImageSize = 5 << 20 // 5 MB

// ForumHandler handles community board endpoints
type ForumHandler struct {
	forum    *domain.ForumService
	profiles *domain.ProfileService
	limiter  *ratelimit.Limiter
	files    storage.FileStorage
	logger   *zap.Logger
}

// NewForumHandler creates a new forum handler
func NewForumHandler(forum *domain.ForumService, profiles *domain.ProfileService, limiter *ratelimit.Limiter, files storage.FileStorage, logger *zap.Logger) *ForumHandler {
	return &ForumHandler{
		forum:    forum,
		profiles: profiles,
		limiter:  limiter,
		files:    files,
		logger:   logger,
	}
}

// authorRef snapshots the caller's identity for denormalized storage.
func (h *ForumHandler) authorRef(r *http.Request) (domain.AuthorRef, bool) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		return domain.AuthorRef{}, false
	}
	email, _ := middleware.GetEmail(r.Context())

	profile, err := h.profiles.GetOrCreate(r.Context(), userID, "", email, "")
	if err != nil {
		h.logger.Warn("load author profile failed", zap.Error(err))
		return domain.AuthorRef{ID: userID, Name: email}, true
	}

	name := profile.DisplayName
	if name == "" {
		name = profile.Email
	}
	return domain.AuthorRef{ID: userID, Name: name, PhotoURL: profile.PhotoURL}, true
}

// ListCategories returns the board's categories in display order. A
// failed read renders as an empty board, not a 5xx.
func (h *ForumHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.forum.ListCategories(r.Context())
	if err != nil {
		h.logger.Error("list categories failed", zap.Error(err))
		categories = []domain.ForumCategory{}
	}
	response.OK(w, categories)
}

// CreateCategoryRequest represents the category creation body
type CreateCategoryRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Order       int    `json:"order"`
}

// CreateCategory adds a category. Admin only.
func (h *ForumHandler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var req CreateCategoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}

	id, err := h.forum.CreateCategory(r.Context(), req.Name, req.Description, req.Order)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidPost) {
			response.BadRequest(w, "category name is required")
			return
		}
		h.logger.Error("create category failed", zap.Error(err))
		response.InternalError(w, "failed to create category")
		return
	}

	response.Created(w, map[string]string{"id": id.String()})
}

// DeleteCategory removes a category and everything under it. Admin only.
func (h *ForumHandler) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "categoryId"))
	if err != nil {
		response.BadRequest(w, "invalid category id")
		return
	}

	if err := h.forum.DeleteCategory(r.Context(), id); err != nil {
		h.logger.Error("delete category failed", zap.Error(err))
		response.InternalError(w, "failed to delete category")
		return
	}
	response.NoContent(w)
}

// CreateTopicRequest represents the topic creation body
type CreateTopicRequest struct {
	Title    string `json:"title"`
	Content  string `json:"content"`
	ImageURL string `json:"image_url"`
}

// CreateTopic opens a thread in a category
func (h *ForumHandler) CreateTopic(w http.ResponseWriter, r *http.Request) {
	categoryID, err := uuid.Parse(chi.URLParam(r, "categoryId"))
	if err != nil {
		response.BadRequest(w, "invalid category id")
		return
	}

	author, ok := h.authorRef(r)
	if !ok {
		response.Unauthorized(w, "not authenticated")
		return
	}

	result, err := h.limiter.Check(r.Context(), author.ID, ratelimit.OpCreateTopic)
	if err != nil {
		h.logger.Warn("rate limit check failed", zap.Error(err))
	} else if result.Limited {
		response.TooManyRequests(w, result.Message)
		return
	}

	var req CreateTopicRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}

	id, err := h.forum.CreateTopic(r.Context(), categoryID, author, req.Title, req.Content, req.ImageURL)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidPost) {
			response.BadRequest(w, "title and content are required")
			return
		}
		h.logger.Error("create topic failed", zap.Error(err))
		response.InternalError(w, "failed to create topic")
		return
	}

	response.Created(w, map[string]string{"id": id.String()})
}

// ListTopics returns a category's topics, pinned first
func (h *ForumHandler) ListTopics(w http.ResponseWriter, r *http.Request) {
	categoryID, err := uuid.Parse(chi.URLParam(r, "categoryId"))
	if err != nil {
		response.BadRequest(w, "invalid category id")
		return
	}

	topics, err := h.forum.ListTopics(r.Context(), categoryID)
	if err != nil {
		h.logger.Error("list topics failed", zap.Error(err))
		topics = []domain.ForumTopic{}
	}
	response.OK(w, topics)
}

// TopicResponse carries a topic with its replies and the love tally the
// topic window shows in its title bar.
type TopicResponse struct {
	Topic     *domain.ForumTopic `json:"topic"`
	Posts     []domain.ForumPost `json:"posts"`
	LoveCount int                `json:"love_count"`
}

// GetTopic returns one topic with its replies and bumps the view counter
func (h *ForumHandler) GetTopic(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "topicId"))
	if err != nil {
		response.BadRequest(w, "invalid topic id")
		return
	}

	topic, posts, err := h.forum.GetTopic(r.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrTopicNotFound) {
			response.NotFound(w, "topic not found")
			return
		}
		h.logger.Error("get topic failed", zap.Error(err))
		response.InternalError(w, "failed to load topic")
		return
	}
	response.OK(w, TopicResponse{Topic: topic, Posts: posts, LoveCount: topic.LoveCount()})
}

// CreatePostRequest represents the reply body
type CreatePostRequest struct {
	Content  string `json:"content"`
	ImageURL string `json:"image_url"`
}

// CreatePost replies to a topic
func (h *ForumHandler) CreatePost(w http.ResponseWriter, r *http.Request) {
	topicID, err := uuid.Parse(chi.URLParam(r, "topicId"))
	if err != nil {
		response.BadRequest(w, "invalid topic id")
		return
	}

	author, ok := h.authorRef(r)
	if !ok {
		response.Unauthorized(w, "not authenticated")
		return
	}

	result, err := h.limiter.Check(r.Context(), author.ID, ratelimit.OpCreatePost)
	if err != nil {
		h.logger.Warn("rate limit check failed", zap.Error(err))
	} else if result.Limited {
		response.TooManyRequests(w, result.Message)
		return
	}

	var req CreatePostRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}

	id, err := h.forum.CreatePost(r.Context(), topicID, author, req.Content, req.ImageURL)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrTopicNotFound):
			response.NotFound(w, "topic not found")
		case errors.Is(err, domain.ErrTopicLocked):
			response.Forbidden(w, "topic is locked")
		case errors.Is(err, domain.ErrInvalidPost):
			response.BadRequest(w, "content is required")
		default:
			h.logger.Error("create post failed", zap.Error(err))
			response.InternalError(w, "failed to create post")
		}
		return
	}

	response.Created(w, map[string]string{"id": id.String()})
}

// LoveRequest represents the love toggle body
type LoveRequest struct {
	Loved bool `json:"loved"`
}

// SetLove toggles the caller's love mark on a topic
func (h *ForumHandler) SetLove(w http.ResponseWriter, r *http.Request) {
	topicID, err := uuid.Parse(chi.URLParam(r, "topicId"))
	if err != nil {
		response.BadRequest(w, "invalid topic id")
		return
	}

	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "not authenticated")
		return
	}

	var req LoveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}

	if err := h.forum.SetLove(r.Context(), topicID, userID, req.Loved); err != nil {
		if errors.Is(err, domain.ErrTopicNotFound) {
			response.NotFound(w, "topic not found")
			return
		}
		h.logger.Error("set love failed", zap.Error(err))
		response.InternalError(w, "failed to update topic")
		return
	}

	response.NoContent(w)
}

// SetPinned pins or unpins a topic. Moderator only.
func (h *ForumHandler) SetPinned(w http.ResponseWriter, r *http.Request) {
	h.setFlag(w, r, h.forum.SetPinned)
}

// SetLocked locks or unlocks a topic. Moderator only.
func (h *ForumHandler) SetLocked(w http.ResponseWriter, r *http.Request) {
	h.setFlag(w, r, h.forum.SetLocked)
}

func (h *ForumHandler) setFlag(w http.ResponseWriter, r *http.Request, apply func(ctx context.Context, id uuid.UUID, value bool) error) {
	topicID, err := uuid.Parse(chi.URLParam(r, "topicId"))
	if err != nil {
		response.BadRequest(w, "invalid topic id")
		return
	}

	value, err := strconv.ParseBool(r.URL.Query().Get("value"))
	if err != nil {
		response.BadRequest(w, "value query parameter must be true or false")
		return
	}

	if err := apply(r.Context(), topicID, value); err != nil {
		if errors.Is(err, domain.ErrTopicNotFound) {
			response.NotFound(w, "topic not found")
			return
		}
		h.logger.Error("update topic flag failed", zap.Error(err))
		response.InternalError(w, "failed to update topic")
		return
	}

	response.NoContent(w)
}

// DeleteTopic removes a topic and its replies. Moderator only.
func (h *ForumHandler) DeleteTopic(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "topicId"))
	if err != nil {
		response.BadRequest(w, "invalid topic id")
		return
	}

	if err := h.forum.DeleteTopic(r.Context(), id); err != nil {
		h.logger.Error("delete topic failed", zap.Error(err))
		response.InternalError(w, "failed to delete topic")
		return
	}
	response.NoContent(w)
}

// DeletePost removes a single reply. Moderator only.
func (h *ForumHandler) DeletePost(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "postId"))
	if err != nil {
		response.BadRequest(w, "invalid post id")
		return
	}

	if err := h.forum.DeletePost(r.Context(), id); err != nil {
		h.logger.Error("delete post failed", zap.Error(err))
		response.InternalError(w, "failed to delete post")
		return
	}
	response.NoContent(w)
}

// UploadImage stores a forum image attachment and returns its URL
func (h *ForumHandler) UploadImage(w http.ResponseWriter, r *http.Request) {
	if _, ok := middleware.GetUserID(r.Context()); !ok {
		response.Unauthorized(w, "not authenticated")
		return
	}

	if err := r.ParseMultipartForm(maxForumImageSize); err != nil {
		response.BadRequest(w, "image too large or malformed form")
		return
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		response.BadRequest(w, "image field is required")
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	switch contentType {
	case "image/jpeg", "image/png", "image/gif", "image/webp":
	default:
		response.BadRequest(w, "unsupported image type")
		return
	}

	filename := fmt.Sprintf("forum/%s%s", uuid.New().String(), filepath.Ext(header.Filename))
	url, err := h.files.SaveFile(r.Context(), file, filename, contentType)
	if err != nil {
		h.logger.Error("save forum image failed", zap.Error(err))
		response.InternalError(w, "failed to save image")
		return
	}

	response.Created(w, map[string]string{"url": url})
}
