package domain

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/pixeldesk/backend/internal/events"
	"github.com/pixeldesk/backend/pkg/validator"
)

var ErrInvalidMessage = errors.New("invalid chat message")

// ChatRepository defines chat message data access.
type ChatRepository interface {
	CreateChatMessage(ctx context.Context, message ChatMessage) error
	ListChatMessages(ctx context.Context, limit int) ([]ChatMessage, error)
	DeleteChatMessage(ctx context.Context, id uuid.UUID) error
}

// ChatService owns the public desktop chat window.
type ChatService struct {
	repo      ChatRepository
	publisher EventPublisher
}

// NewChatService creates a new chat service.
func NewChatService(repo ChatRepository, publisher EventPublisher) *ChatService {
	return &ChatService{repo: repo, publisher: publisher}
}

// Send persists a message and fans out the change. Returns the id.
func (s *ChatService) Send(ctx context.Context, author AuthorRef, body string) (uuid.UUID, error) {
	body = validator.SanitizeString(body, 1000)
	if body == "" {
		return uuid.Nil, ErrInvalidMessage
	}

	message := ChatMessage{
		ID:        uuid.New(),
		Author:    author,
		Body:      body,
		CreatedAt: time.Now(),
	}
	if err := s.repo.CreateChatMessage(ctx, message); err != nil {
		return uuid.Nil, err
	}

	s.publisher.Publish(ctx, events.Event{Topic: events.TopicCollection, Collection: events.CollectionChatMessages})
	return message.ID, nil
}

// List returns the most recent messages, oldest first.
func (s *ChatService) List(ctx context.Context, limit int) ([]ChatMessage, error) {
	if limit <= 0 || limit > 200 {
		limit = 100
	}
	return s.repo.ListChatMessages(ctx, limit)
}

// Delete removes a message. Moderator only.
func (s *ChatService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.DeleteChatMessage(ctx, id); err != nil {
		return err
	}
	s.publisher.Publish(ctx, events.Event{Topic: events.TopicCollection, Collection: events.CollectionChatMessages})
	return nil
}
