package domain

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/pixeldesk/backend/internal/events"
	"github.com/pixeldesk/backend/pkg/validator"
)

var (
	ErrContactNotFound = errors.New("contact submission not found")
	ErrInvalidContact  = errors.New("invalid contact submission")
)

// ContactRepository defines contact submission data access.
type ContactRepository interface {
	CreateContact(ctx context.Context, submission ContactSubmission) error
	GetContact(ctx context.Context, id uuid.UUID) (*ContactSubmission, error)
	ListContacts(ctx context.Context) ([]ContactSubmission, error)
	UpsertContact(ctx context.Context, submission ContactSubmission) error
}

// ContactService owns the contact form flow and admin triage.
type ContactService struct {
	repo          ContactRepository
	notifications *NotificationService
	publisher     EventPublisher
}

// NewContactService creates a new contact service.
func NewContactService(repo ContactRepository, notifications *NotificationService, publisher EventPublisher) *ContactService {
	return &ContactService{
		repo:          repo,
		notifications: notifications,
		publisher:     publisher,
	}
}

// AddContactInput is a submission from the contact form.
type AddContactInput struct {
	Name    string
	Email   string
	Subject string
	Message string
}

// AddContact persists a new submission and enqueues a notification.
// Returns the generated id.
func (s *ContactService) AddContact(ctx context.Context, input AddContactInput) (uuid.UUID, error) {
	name := validator.SanitizeString(input.Name, 100)
	message := validator.SanitizeString(input.Message, 5000)
	if name == "" || message == "" || !validator.ValidateEmail(input.Email) {
		return uuid.Nil, ErrInvalidContact
	}

	submission := ContactSubmission{
		ID:          uuid.New(),
		Name:        name,
		Email:       validator.SanitizeEmail(input.Email),
		Subject:     validator.SanitizeString(input.Subject, 200),
		Message:     message,
		Status:      ContactNew,
		SubmittedAt: time.Now(),
	}

	if err := s.repo.CreateContact(ctx, submission); err != nil {
		return uuid.Nil, err
	}

	s.notifications.Notify(ctx, NotificationContact, "New contact message",
		fmt.Sprintf("%s: %s", submission.Name, submission.Subject),
		submission.ID, submission.Name)

	s.publisher.Publish(ctx, events.Event{Topic: events.TopicCollection, Collection: events.CollectionContacts})
	return submission.ID, nil
}

// List returns every submission for the admin console.
func (s *ContactService) List(ctx context.Context) ([]ContactSubmission, error) {
	return s.repo.ListContacts(ctx)
}

// UpdateStatus moves a submission through the triage states.
func (s *ContactService) UpdateStatus(ctx context.Context, id uuid.UUID, status ContactStatus) error {
	if !status.Valid() {
		return ErrInvalidContact
	}

	submission, err := s.repo.GetContact(ctx, id)
	if err != nil {
		return err
	}
	if submission == nil {
		return ErrContactNotFound
	}

	submission.Status = status
	if err := s.repo.UpsertContact(ctx, *submission); err != nil {
		return err
	}

	s.publisher.Publish(ctx, events.Event{Topic: events.TopicCollection, Collection: events.CollectionContacts})
	return nil
}
