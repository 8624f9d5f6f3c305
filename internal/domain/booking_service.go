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
	ErrBookingNotFound = errors.New("booking not found")
	ErrInvalidBooking  = errors.New("invalid booking")
)

// BookingRepository defines booking data access.
type BookingRepository interface {
	CreateBooking(ctx context.Context, booking Booking) error
	GetBooking(ctx context.Context, id uuid.UUID) (*Booking, error)
	ListBookings(ctx context.Context, userID *uuid.UUID) ([]Booking, error)
	UpsertBooking(ctx context.Context, booking Booking) error
}

// BookingService owns appointment submission and moderation.
type BookingService struct {
	repo          BookingRepository
	notifications *NotificationService
	publisher     EventPublisher
}

// NewBookingService creates a new booking service.
func NewBookingService(repo BookingRepository, notifications *NotificationService, publisher EventPublisher) *BookingService {
	return &BookingService{
		repo:          repo,
		notifications: notifications,
		publisher:     publisher,
	}
}

// AddBookingInput is a submission from the booking form.
type AddBookingInput struct {
	Name        string
	Email       string
	Phone       string
	ServiceType string
	Date        string
	Time        string
	Description string
	Package     string
	UserID      *uuid.UUID
}

// AddBooking persists a new pending booking and enqueues a notification.
// Returns the generated id.
func (s *BookingService) AddBooking(ctx context.Context, input AddBookingInput) (uuid.UUID, error) {
	name := validator.SanitizeString(input.Name, 100)
	if name == "" || !validator.ValidateEmail(input.Email) || input.ServiceType == "" || input.Date == "" || input.Time == "" {
		return uuid.Nil, ErrInvalidBooking
	}

	booking := Booking{
		ID:          uuid.New(),
		Name:        name,
		Email:       validator.SanitizeEmail(input.Email),
		Phone:       validator.SanitizeString(input.Phone, 30),
		ServiceType: validator.SanitizeString(input.ServiceType, 100),
		Date:        input.Date,
		Time:        input.Time,
		Description: validator.SanitizeString(input.Description, 2000),
		Package:     validator.SanitizeString(input.Package, 100),
		Status:      BookingPending,
		UserID:      input.UserID,
		SubmittedAt: time.Now(),
	}

	if err := s.repo.CreateBooking(ctx, booking); err != nil {
		return uuid.Nil, err
	}

	s.notifications.Notify(ctx, NotificationBooking, "New booking request",
		fmt.Sprintf("%s requested %s on %s at %s", booking.Name, booking.ServiceType, booking.Date, booking.Time),
		booking.ID, booking.Name)

	s.publisher.Publish(ctx, events.Event{Topic: events.TopicCollection, Collection: events.CollectionBookings})
	return booking.ID, nil
}

// ListAll returns every booking for the moderation console.
func (s *BookingService) ListAll(ctx context.Context) ([]Booking, error) {
	return s.repo.ListBookings(ctx, nil)
}

// ListForUser returns only the user's own bookings.
func (s *BookingService) ListForUser(ctx context.Context, userID uuid.UUID) ([]Booking, error) {
	return s.repo.ListBookings(ctx, &userID)
}

// UpdateStatus moves a booking through the moderation states. Rejected
// bookings are kept, never deleted.
func (s *BookingService) UpdateStatus(ctx context.Context, id uuid.UUID, status BookingStatus) error {
	if !status.Valid() {
		return ErrInvalidBooking
	}

	booking, err := s.repo.GetBooking(ctx, id)
	if err != nil {
		return err
	}
	if booking == nil {
		return ErrBookingNotFound
	}

	booking.Status = status
	if err := s.repo.UpsertBooking(ctx, *booking); err != nil {
		return err
	}

	s.publisher.Publish(ctx, events.Event{Topic: events.TopicCollection, Collection: events.CollectionBookings})
	return nil
}
