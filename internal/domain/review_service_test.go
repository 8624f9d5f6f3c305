package domain

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/pixeldesk/backend/internal/events"
)

// fakeReviewRepo keeps reviews in memory in the raw boundary shape.
type fakeReviewRepo struct {
	raws    map[uuid.UUID]RawReview
	upserts int
}

func newFakeReviewRepo() *fakeReviewRepo {
	return &fakeReviewRepo{raws: make(map[uuid.UUID]RawReview)}
}

func rawFromReview(r Review) RawReview {
	approved := "false"
	if r.Approved {
		approved = "true"
	}
	date := r.Date
	return RawReview{
		ID: r.ID, Name: r.Name, Rating: r.Rating, Body: r.Body,
		Date: &date, Approved: json.RawMessage(approved),
		Featured: r.Featured, Position: r.Position, Company: r.Company,
		AvatarURL: r.AvatarURL, UserID: r.UserID, UserEmail: r.UserEmail,
		CreatedAt: r.CreatedAt,
	}
}

func (f *fakeReviewRepo) ListRawReviews(ctx context.Context) ([]RawReview, error) {
	out := make([]RawReview, 0, len(f.raws))
	for _, raw := range f.raws {
		out = append(out, raw)
	}
	return out, nil
}

func (f *fakeReviewRepo) GetRawReview(ctx context.Context, id uuid.UUID) (*RawReview, error) {
	raw, ok := f.raws[id]
	if !ok {
		return nil, nil
	}
	return &raw, nil
}

func (f *fakeReviewRepo) CreateReview(ctx context.Context, review Review) error {
	f.raws[review.ID] = rawFromReview(review)
	return nil
}

func (f *fakeReviewRepo) UpsertReview(ctx context.Context, review Review) error {
	f.upserts++
	f.raws[review.ID] = rawFromReview(review)
	return nil
}

func (f *fakeReviewRepo) DeleteReview(ctx context.Context, id uuid.UUID) error {
	delete(f.raws, id)
	return nil
}

// fakeNotificationRepo records notifications and can be made to fail.
type fakeNotificationRepo struct {
	created []Notification
	fail    bool
}

func (f *fakeNotificationRepo) CreateNotification(ctx context.Context, n Notification) error {
	if f.fail {
		return errors.New("notification store down")
	}
	f.created = append(f.created, n)
	return nil
}

func (f *fakeNotificationRepo) ListNotifications(ctx context.Context, limit, offset int) ([]Notification, error) {
	return f.created, nil
}
func (f *fakeNotificationRepo) MarkNotificationRead(ctx context.Context, id uuid.UUID) error {
	return nil
}
func (f *fakeNotificationRepo) DeleteNotification(ctx context.Context, id uuid.UUID) error {
	return nil
}
func (f *fakeNotificationRepo) UnreadNotificationCount(ctx context.Context) (int, error) {
	return len(f.created), nil
}
func (f *fakeNotificationRepo) AdminPushTokens(ctx context.Context) ([]string, error) {
	return nil, nil
}

// fakePublisher records published events.
type fakePublisher struct {
	published []events.Event
}

func (f *fakePublisher) Publish(ctx context.Context, event events.Event) {
	f.published = append(f.published, event)
}

func (f *fakePublisher) topics() []events.Topic {
	out := make([]events.Topic, 0, len(f.published))
	for _, e := range f.published {
		out = append(out, e.Topic)
	}
	return out
}

func newReviewFixture(notifyFail bool) (*ReviewService, *fakeReviewRepo, *fakeNotificationRepo, *fakePublisher) {
	repo := newFakeReviewRepo()
	notifyRepo := &fakeNotificationRepo{fail: notifyFail}
	pub := &fakePublisher{}
	notifications := NewNotificationService(notifyRepo, nil, pub, zap.NewNop())
	svc := NewReviewService(repo, notifications, pub)
	return svc, repo, notifyRepo, pub
}

func TestAddReviewStartsUnapproved(t *testing.T) {
	svc, repo, notifyRepo, pub := newReviewFixture(false)

	id, err := svc.AddReview(context.Background(), AddReviewInput{
		Name: "Sam", Rating: 5, Body: "Fantastic desktop vibes",
	})
	require.NoError(t, err)

	raw, err := repo.GetRawReview(context.Background(), id)
	require.NoError(t, err)
	require.NotNil(t, raw)
	assert.False(t, ApprovedValue(raw.Approved), "new reviews must start unapproved")

	require.Len(t, notifyRepo.created, 1)
	assert.Equal(t, NotificationReview, notifyRepo.created[0].Type)

	assert.Contains(t, pub.topics(), events.TopicCollection)
}

func TestAddReviewSucceedsWhenNotificationFails(t *testing.T) {
	svc, repo, _, _ := newReviewFixture(true)

	id, err := svc.AddReview(context.Background(), AddReviewInput{
		Name: "Sam", Rating: 4, Body: "Still good",
	})
	require.NoError(t, err, "notification failure must not fail the submission")

	raw, _ := repo.GetRawReview(context.Background(), id)
	assert.NotNil(t, raw)
}

func TestAddReviewRejectsInvalidInput(t *testing.T) {
	svc, _, _, _ := newReviewFixture(false)

	_, err := svc.AddReview(context.Background(), AddReviewInput{Rating: 6, Body: "x"})
	assert.ErrorIs(t, err, ErrInvalidReview)

	_, err = svc.AddReview(context.Background(), AddReviewInput{Rating: 3, Body: "   "})
	assert.ErrorIs(t, err, ErrInvalidReview)
}

func TestUpdateApprovalBroadcasts(t *testing.T) {
	svc, _, _, pub := newReviewFixture(false)

	id, err := svc.AddReview(context.Background(), AddReviewInput{Rating: 5, Body: "Great"})
	require.NoError(t, err)

	pub.published = nil
	require.NoError(t, svc.UpdateApproval(context.Background(), id, true))

	require.NotEmpty(t, pub.published)
	assert.Equal(t, events.TopicReviewApproved, pub.published[0].Topic)
	assert.Equal(t, id, pub.published[0].ReviewID)
	assert.True(t, pub.published[0].Approved)

	public, err := svc.ListPublic(context.Background())
	require.NoError(t, err)
	assert.Len(t, public, 1)
}

func TestUpdateApprovalMissingReview(t *testing.T) {
	svc, _, _, _ := newReviewFixture(false)

	err := svc.UpdateApproval(context.Background(), uuid.New(), true)
	assert.ErrorIs(t, err, ErrReviewNotFound)
}

func TestFixAllReviewIssuesIdempotent(t *testing.T) {
	svc, repo, _, _ := newReviewFixture(false)

	created := time.Date(2023, 11, 5, 8, 0, 0, 0, time.UTC)
	legacy := RawReview{
		ID:        uuid.New(),
		Name:      "",
		Rating:    0,
		Body:      "",
		Approved:  json.RawMessage(`"1"`),
		CreatedAt: created,
	}
	clean := rawFromReview(Review{
		ID: uuid.New(), Name: "Kim", Rating: 3, Body: "Fine",
		Date: created, Approved: true, CreatedAt: created,
	})
	repo.raws[legacy.ID] = legacy
	repo.raws[clean.ID] = clean

	fixed, err := svc.FixAllReviewIssues(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, fixed, "only the legacy record needs repair")

	repaired := repo.raws[legacy.ID]
	assert.Equal(t, "true", string(repaired.Approved))
	assert.Equal(t, "Anonymous", repaired.Name)
	assert.Equal(t, 5, repaired.Rating)

	fixed, err = svc.FixAllReviewIssues(context.Background())
	require.NoError(t, err)
	assert.Zero(t, fixed, "second run must rewrite nothing")
}
