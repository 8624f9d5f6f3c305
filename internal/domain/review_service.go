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
	ErrReviewNotFound = errors.New("review not found")
	ErrInvalidReview  = errors.New("invalid review")
)

// ReviewRepository defines review data access. List reads return the raw
// boundary shape so legacy approval encodings survive until normalization.
type ReviewRepository interface {
	ListRawReviews(ctx context.Context) ([]RawReview, error)
	GetRawReview(ctx context.Context, id uuid.UUID) (*RawReview, error)
	CreateReview(ctx context.Context, review Review) error
	UpsertReview(ctx context.Context, review Review) error
	DeleteReview(ctx context.Context, id uuid.UUID) error
}

// EventPublisher dispatches typed events to in-process subscribers and,
// through the Redis bridge, to the other instances.
type EventPublisher interface {
	Publish(ctx context.Context, event events.Event)
}

// ReviewService owns review submission, moderation, and repair.
type ReviewService struct {
	repo          ReviewRepository
	notifications *NotificationService
	publisher     EventPublisher
}

// NewReviewService creates a new review service.
func NewReviewService(repo ReviewRepository, notifications *NotificationService, publisher EventPublisher) *ReviewService {
	return &ReviewService{
		repo:          repo,
		notifications: notifications,
		publisher:     publisher,
	}
}

// ListAll returns every review, normalized and sorted, for moderation.
func (s *ReviewService) ListAll(ctx context.Context) ([]Review, error) {
	raws, err := s.repo.ListRawReviews(ctx)
	if err != nil {
		return nil, err
	}
	reviews := make([]Review, 0, len(raws))
	for _, raw := range raws {
		reviews = append(reviews, NormalizeReview(raw))
	}
	SortReviews(reviews)
	return reviews, nil
}

// ListPublic returns the approved subset visible on the site.
func (s *ReviewService) ListPublic(ctx context.Context) ([]Review, error) {
	raws, err := s.repo.ListRawReviews(ctx)
	if err != nil {
		return nil, err
	}
	reviews := make([]Review, 0, len(raws))
	for _, raw := range raws {
		reviews = append(reviews, NormalizeReview(raw))
	}
	return PublicReviews(reviews), nil
}

// AddReviewInput is a submission from the review form.
type AddReviewInput struct {
	Name      string
	Rating    int
	Body      string
	Company   string
	AvatarURL string
	UserID    *uuid.UUID
	UserEmail string
}

// AddReview persists a new, unapproved review and enqueues a notification.
// The notification is best-effort: the review's persistence alone decides
// success. Returns the generated id.
func (s *ReviewService) AddReview(ctx context.Context, input AddReviewInput) (uuid.UUID, error) {
	if !validator.ValidateRating(input.Rating) || validator.SanitizeString(input.Body, 2000) == "" {
		return uuid.Nil, ErrInvalidReview
	}

	now := time.Now()
	review := Review{
		ID:        uuid.New(),
		Name:      validator.SanitizeString(input.Name, 100),
		Rating:    input.Rating,
		Body:      validator.SanitizeString(input.Body, 2000),
		Date:      now,
		Approved:  false,
		Company:   validator.SanitizeString(input.Company, 100),
		AvatarURL: input.AvatarURL,
		UserID:    input.UserID,
		UserEmail: validator.SanitizeEmail(input.UserEmail),
		CreatedAt: now,
	}
	if review.Name == "" {
		review.Name = defaultReviewName
	}

	if err := s.repo.CreateReview(ctx, review); err != nil {
		return uuid.Nil, err
	}

	s.notifications.Notify(ctx, NotificationReview, "New review submitted",
		fmt.Sprintf("%s left a %d-star review", review.Name, review.Rating),
		review.ID, review.Name)

	s.publisher.Publish(ctx, events.Event{Topic: events.TopicCollection, Collection: events.CollectionReviews})
	return review.ID, nil
}

// UpdateApproval sets the canonical approval flag. A successful change
// broadcasts review_approved so other mounted views refresh without
// re-subscribing.
func (s *ReviewService) UpdateApproval(ctx context.Context, id uuid.UUID, approved bool) error {
	review, err := s.getNormalized(ctx, id)
	if err != nil {
		return err
	}

	review.Approved = approved
	if err := s.repo.UpsertReview(ctx, *review); err != nil {
		return err
	}

	s.publisher.Publish(ctx, events.Event{Topic: events.TopicReviewApproved, ReviewID: id, Approved: approved})
	s.publisher.Publish(ctx, events.Event{Topic: events.TopicCollection, Collection: events.CollectionReviews})
	return nil
}

// UpdateFeatured toggles the featured flag.
func (s *ReviewService) UpdateFeatured(ctx context.Context, id uuid.UUID, featured bool) error {
	review, err := s.getNormalized(ctx, id)
	if err != nil {
		return err
	}

	review.Featured = featured
	if err := s.repo.UpsertReview(ctx, *review); err != nil {
		return err
	}

	s.publisher.Publish(ctx, events.Event{Topic: events.TopicReviewFeatured, ReviewID: id})
	s.publisher.Publish(ctx, events.Event{Topic: events.TopicCollection, Collection: events.CollectionReviews})
	return nil
}

// UpdatePosition sets the explicit sort position.
func (s *ReviewService) UpdatePosition(ctx context.Context, id uuid.UUID, position int) error {
	review, err := s.getNormalized(ctx, id)
	if err != nil {
		return err
	}

	review.Position = position
	if err := s.repo.UpsertReview(ctx, *review); err != nil {
		return err
	}

	s.publisher.Publish(ctx, events.Event{Topic: events.TopicReviewUpdated, ReviewID: id})
	s.publisher.Publish(ctx, events.Event{Topic: events.TopicCollection, Collection: events.CollectionReviews})
	return nil
}

// DeleteReview removes a review entirely. Moderation normally rejects
// instead; deletion exists for spam.
func (s *ReviewService) DeleteReview(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.DeleteReview(ctx, id); err != nil {
		return err
	}
	s.publisher.Publish(ctx, events.Event{Topic: events.TopicReviewDeleted, ReviewID: id})
	s.publisher.Publish(ctx, events.Event{Topic: events.TopicCollection, Collection: events.CollectionReviews})
	return nil
}

// FixAllReviewIssues normalizes legacy approval encodings to canonical
// booleans and backfills missing fields with deterministic defaults.
// Returns the number of reviews rewritten. Idempotent: a second run
// rewrites nothing.
func (s *ReviewService) FixAllReviewIssues(ctx context.Context) (int, error) {
	raws, err := s.repo.ListRawReviews(ctx)
	if err != nil {
		return 0, err
	}

	fixed := 0
	for _, raw := range raws {
		normalized := NormalizeReview(raw)
		if reviewNeedsRepair(raw, normalized) {
			if err := s.repo.UpsertReview(ctx, normalized); err != nil {
				return fixed, err
			}
			fixed++
		}
	}

	if fixed > 0 {
		s.publisher.Publish(ctx, events.Event{Topic: events.TopicReviewsRefreshed})
		s.publisher.Publish(ctx, events.Event{Topic: events.TopicCollection, Collection: events.CollectionReviews})
	}
	return fixed, nil
}

func (s *ReviewService) getNormalized(ctx context.Context, id uuid.UUID) (*Review, error) {
	raw, err := s.repo.GetRawReview(ctx, id)
	if err != nil {
		return nil, err
	}
	if raw == nil {
		return nil, ErrReviewNotFound
	}
	review := NormalizeReview(*raw)
	return &review, nil
}

// reviewNeedsRepair compares the stored shape against its normalization.
func reviewNeedsRepair(raw RawReview, normalized Review) bool {
	if string(raw.Approved) != "true" && string(raw.Approved) != "false" {
		return true
	}
	if raw.Name != normalized.Name || raw.Body != normalized.Body || raw.Rating != normalized.Rating {
		return true
	}
	if raw.Date == nil || !raw.Date.Equal(normalized.Date) {
		return true
	}
	return false
}
