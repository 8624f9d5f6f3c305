package domain

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/pixeldesk/backend/internal/events"
	"github.com/pixeldesk/backend/pkg/validator"
)

var (
	ErrCategoryNotFound = errors.New("category not found")
	ErrTopicNotFound    = errors.New("topic not found")
	ErrTopicLocked      = errors.New("topic is locked")
	ErrInvalidPost      = errors.New("invalid post")
)

// ForumRepository defines community board data access.
type ForumRepository interface {
	ListCategories(ctx context.Context) ([]ForumCategory, error)
	CreateCategory(ctx context.Context, category ForumCategory) error
	DeleteCategory(ctx context.Context, id uuid.UUID) error

	CreateTopic(ctx context.Context, topic ForumTopic) error
	GetTopic(ctx context.Context, id uuid.UUID) (*ForumTopic, error)
	ListTopics(ctx context.Context, categoryID uuid.UUID) ([]ForumTopic, error)
	UpsertTopic(ctx context.Context, topic ForumTopic) error
	DeleteTopic(ctx context.Context, id uuid.UUID) error
	IncrementTopicViews(ctx context.Context, id uuid.UUID) error

	CreatePost(ctx context.Context, post ForumPost) error
	ListPosts(ctx context.Context, topicID uuid.UUID) ([]ForumPost, error)
	DeletePost(ctx context.Context, id uuid.UUID) error
}

// ForumService owns the community board: categories, topics, replies,
// loves, and moderation.
type ForumService struct {
	repo      ForumRepository
	publisher EventPublisher
}

// NewForumService creates a new forum service.
func NewForumService(repo ForumRepository, publisher EventPublisher) *ForumService {
	return &ForumService{repo: repo, publisher: publisher}
}

// ListCategories returns the board's categories in display order.
func (s *ForumService) ListCategories(ctx context.Context) ([]ForumCategory, error) {
	return s.repo.ListCategories(ctx)
}

// CreateCategory adds a category. Admin only, enforced at the router.
func (s *ForumService) CreateCategory(ctx context.Context, name, description string, order int) (uuid.UUID, error) {
	name = validator.SanitizeString(name, 100)
	if name == "" {
		return uuid.Nil, ErrInvalidPost
	}

	category := ForumCategory{
		ID:          uuid.New(),
		Name:        name,
		Description: validator.SanitizeString(description, 500),
		Order:       order,
		CreatedAt:   time.Now(),
	}
	if err := s.repo.CreateCategory(ctx, category); err != nil {
		return uuid.Nil, err
	}

	s.publisher.Publish(ctx, events.Event{Topic: events.TopicCollection, Collection: events.CollectionForum})
	return category.ID, nil
}

// DeleteCategory removes a category and every topic under it. Admin only.
func (s *ForumService) DeleteCategory(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.DeleteCategory(ctx, id); err != nil {
		return err
	}
	s.publisher.Publish(ctx, events.Event{Topic: events.TopicCollection, Collection: events.CollectionForum})
	return nil
}

// CreateTopic opens a thread. The author identity is snapshotted at write
// time so later profile edits do not rewrite history.
func (s *ForumService) CreateTopic(ctx context.Context, categoryID uuid.UUID, author AuthorRef, title, content, imageURL string) (uuid.UUID, error) {
	title = validator.SanitizeString(title, 200)
	content = validator.SanitizeString(content, 10000)
	if title == "" || content == "" {
		return uuid.Nil, ErrInvalidPost
	}

	now := time.Now()
	topic := ForumTopic{
		ID:         uuid.New(),
		CategoryID: categoryID,
		Title:      title,
		Content:    content,
		Author:     author,
		ImageURL:   imageURL,
		Loves:      map[string]bool{},
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.repo.CreateTopic(ctx, topic); err != nil {
		return uuid.Nil, err
	}

	s.publisher.Publish(ctx, events.Event{Topic: events.TopicCollection, Collection: events.CollectionForum})
	return topic.ID, nil
}

// ListTopics returns a category's topics, pinned threads first, then
// newest activity first.
func (s *ForumService) ListTopics(ctx context.Context, categoryID uuid.UUID) ([]ForumTopic, error) {
	return s.repo.ListTopics(ctx, categoryID)
}

// GetTopic returns a topic with its replies and bumps the view counter.
func (s *ForumService) GetTopic(ctx context.Context, id uuid.UUID) (*ForumTopic, []ForumPost, error) {
	topic, err := s.repo.GetTopic(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	if topic == nil {
		return nil, nil, ErrTopicNotFound
	}

	// Counter bump is fire-and-forget; a lost view is not worth an error.
	_ = s.repo.IncrementTopicViews(ctx, id)
	topic.Views++

	posts, err := s.repo.ListPosts(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	return topic, posts, nil
}

// CreatePost replies to a topic. Locked topics refuse new replies.
func (s *ForumService) CreatePost(ctx context.Context, topicID uuid.UUID, author AuthorRef, content, imageURL string) (uuid.UUID, error) {
	content = validator.SanitizeString(content, 10000)
	if content == "" {
		return uuid.Nil, ErrInvalidPost
	}

	topic, err := s.repo.GetTopic(ctx, topicID)
	if err != nil {
		return uuid.Nil, err
	}
	if topic == nil {
		return uuid.Nil, ErrTopicNotFound
	}
	if topic.Locked {
		return uuid.Nil, ErrTopicLocked
	}

	post := ForumPost{
		ID:        uuid.New(),
		TopicID:   topicID,
		Content:   content,
		Author:    author,
		ImageURL:  imageURL,
		Loves:     map[string]bool{},
		CreatedAt: time.Now(),
	}
	if err := s.repo.CreatePost(ctx, post); err != nil {
		return uuid.Nil, err
	}

	topic.Replies++
	topic.UpdatedAt = post.CreatedAt
	if err := s.repo.UpsertTopic(ctx, *topic); err != nil {
		return uuid.Nil, err
	}

	s.publisher.Publish(ctx, events.Event{Topic: events.TopicCollection, Collection: events.CollectionForum})
	return post.ID, nil
}

// SetLove toggles the caller's love mark on a topic.
func (s *ForumService) SetLove(ctx context.Context, topicID, userID uuid.UUID, loved bool) error {
	topic, err := s.repo.GetTopic(ctx, topicID)
	if err != nil {
		return err
	}
	if topic == nil {
		return ErrTopicNotFound
	}

	if topic.Loves == nil {
		topic.Loves = map[string]bool{}
	}
	if loved {
		topic.Loves[userID.String()] = true
	} else {
		delete(topic.Loves, userID.String())
	}

	if err := s.repo.UpsertTopic(ctx, *topic); err != nil {
		return err
	}
	s.publisher.Publish(ctx, events.Event{Topic: events.TopicCollection, Collection: events.CollectionForum})
	return nil
}

// SetPinned pins or unpins a topic. Moderator only.
func (s *ForumService) SetPinned(ctx context.Context, topicID uuid.UUID, pinned bool) error {
	return s.setTopicFlag(ctx, topicID, func(t *ForumTopic) { t.Pinned = pinned })
}

// SetLocked locks or unlocks a topic. Moderator only.
func (s *ForumService) SetLocked(ctx context.Context, topicID uuid.UUID, locked bool) error {
	return s.setTopicFlag(ctx, topicID, func(t *ForumTopic) { t.Locked = locked })
}

func (s *ForumService) setTopicFlag(ctx context.Context, topicID uuid.UUID, apply func(*ForumTopic)) error {
	topic, err := s.repo.GetTopic(ctx, topicID)
	if err != nil {
		return err
	}
	if topic == nil {
		return ErrTopicNotFound
	}

	apply(topic)
	if err := s.repo.UpsertTopic(ctx, *topic); err != nil {
		return err
	}
	s.publisher.Publish(ctx, events.Event{Topic: events.TopicCollection, Collection: events.CollectionForum})
	return nil
}

// DeleteTopic removes a topic and its replies. Moderator only.
func (s *ForumService) DeleteTopic(ctx context.Context, topicID uuid.UUID) error {
	if err := s.repo.DeleteTopic(ctx, topicID); err != nil {
		return err
	}
	s.publisher.Publish(ctx, events.Event{Topic: events.TopicCollection, Collection: events.CollectionForum})
	return nil
}

// DeletePost removes a single reply. Moderator only.
func (s *ForumService) DeletePost(ctx context.Context, postID uuid.UUID) error {
	if err := s.repo.DeletePost(ctx, postID); err != nil {
		return err
	}
	s.publisher.Publish(ctx, events.Event{Topic: events.TopicCollection, Collection: events.CollectionForum})
	return nil
}
