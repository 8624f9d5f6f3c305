package ratelimit

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memStore struct {
	counters map[string]Counter
	getErr   error
}

func newMemStore() *memStore {
	return &memStore{counters: make(map[string]Counter)}
}

func key(userID uuid.UUID, operation string) string {
	return userID.String() + "/" + operation
}

func (m *memStore) GetCounter(ctx context.Context, userID uuid.UUID, operation string) (*Counter, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	c, ok := m.counters[key(userID, operation)]
	if !ok {
		return nil, nil
	}
	return &c, nil
}

func (m *memStore) PutCounter(ctx context.Context, counter Counter) error {
	m.counters[key(counter.UserID, counter.Operation)] = counter
	return nil
}

func newTestLimiter(store Store, at time.Time) (*Limiter, *time.Time) {
	clock := at
	l := NewLimiter(store)
	l.now = func() time.Time { return clock }
	return l, &clock
}

func TestCheckInitializesAtOne(t *testing.T) {
	store := newMemStore()
	l, _ := newTestLimiter(store, time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC))
	userID := uuid.New()

	res, err := l.Check(context.Background(), userID, OpCreateReview)
	require.NoError(t, err)
	assert.False(t, res.Limited)
	assert.Equal(t, 2, res.Remaining)

	stored := store.counters[key(userID, OpCreateReview)]
	assert.Equal(t, 1, stored.Count)
}

func TestCheckRefusesAtLimit(t *testing.T) {
	store := newMemStore()
	l, _ := newTestLimiter(store, time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC))
	userID := uuid.New()

	for i := 0; i < 3; i++ {
		res, err := l.Check(context.Background(), userID, OpCreateReview)
		require.NoError(t, err)
		assert.False(t, res.Limited, "request %d is inside the budget", i+1)
	}

	res, err := l.Check(context.Background(), userID, OpCreateReview)
	require.NoError(t, err)
	assert.True(t, res.Limited)
	assert.Equal(t, PolicyFor(OpCreateReview).Message, res.Message)

	// A refusal does not consume budget.
	assert.Equal(t, 3, store.counters[key(userID, OpCreateReview)].Count)
}

func TestCheckResetsExpiredWindow(t *testing.T) {
	store := newMemStore()
	l, clock := newTestLimiter(store, time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC))
	userID := uuid.New()

	for i := 0; i < 3; i++ {
		_, err := l.Check(context.Background(), userID, OpCreateReview)
		require.NoError(t, err)
	}
	res, err := l.Check(context.Background(), userID, OpCreateReview)
	require.NoError(t, err)
	require.True(t, res.Limited)

	*clock = clock.Add(time.Hour + time.Second)

	res, err = l.Check(context.Background(), userID, OpCreateReview)
	require.NoError(t, err)
	assert.False(t, res.Limited)
	assert.Equal(t, 2, res.Remaining)

	stored := store.counters[key(userID, OpCreateReview)]
	assert.Equal(t, 1, stored.Count)
	assert.Equal(t, *clock, stored.WindowStart)
}

func TestCheckIsolatesOperationsAndUsers(t *testing.T) {
	store := newMemStore()
	l, _ := newTestLimiter(store, time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC))
	alice, bob := uuid.New(), uuid.New()

	for i := 0; i < 3; i++ {
		_, err := l.Check(context.Background(), alice, OpCreateReview)
		require.NoError(t, err)
	}

	res, err := l.Check(context.Background(), alice, OpCreateContact)
	require.NoError(t, err)
	assert.False(t, res.Limited, "budgets are per operation")

	res, err = l.Check(context.Background(), bob, OpCreateReview)
	require.NoError(t, err)
	assert.False(t, res.Limited, "budgets are per user")
}

func TestCheckPropagatesStoreErrors(t *testing.T) {
	store := newMemStore()
	store.getErr = errors.New("connection refused")
	l, _ := newTestLimiter(store, time.Now())

	_, err := l.Check(context.Background(), uuid.New(), OpSendChat)
	assert.Error(t, err)
}

func TestPolicyForUnknownOperation(t *testing.T) {
	p := PolicyFor("somethingElse")
	assert.Equal(t, defaultPolicy, p)
}
