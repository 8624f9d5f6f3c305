package ratelimit

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Counter is the stored state for one (user, operation) pair.
type Counter struct {
	UserID      uuid.UUID
	Operation   string
	Count       int
	WindowStart time.Time
}

// Store persists counters. The read-then-write sequence in Check is not
// transactional; concurrent callers for the same user can overshoot the
// limit by one, which is accepted for an advisory limiter.
type Store interface {
	GetCounter(ctx context.Context, userID uuid.UUID, operation string) (*Counter, error)
	PutCounter(ctx context.Context, counter Counter) error
}

// Policy bounds one operation inside a window.
type Policy struct {
	MaxRequests int
	Window      time.Duration
	Message     string
}

// Operation names with dedicated policies.
const (
	OpCreateBooking = "createBooking"
	OpCreateReview  = "createReview"
	OpCreateContact = "createContact"
	OpSendChat      = "sendChatMessage"
	OpCreateTopic   = "createTopic"
	OpCreatePost    = "createPost"
)

var policies = map[string]Policy{
	OpCreateBooking: {MaxRequests: 5, Window: time.Hour, Message: "You can request at most 5 bookings per hour. Please try again later."},
	OpCreateReview:  {MaxRequests: 3, Window: time.Hour, Message: "You can submit at most 3 reviews per hour. Please try again later."},
	OpCreateContact: {MaxRequests: 5, Window: time.Hour, Message: "You can send at most 5 messages per hour. Please try again later."},
	OpSendChat:      {MaxRequests: 30, Window: time.Minute, Message: "Slow down a little before sending more chat messages."},
	OpCreateTopic:   {MaxRequests: 5, Window: time.Hour, Message: "You can open at most 5 topics per hour. Please try again later."},
	OpCreatePost:    {MaxRequests: 20, Window: time.Hour, Message: "You are replying too quickly. Please try again later."},
}

var defaultPolicy = Policy{
	MaxRequests: 10,
	Window:      time.Hour,
	Message:     "Too many requests. Please try again later.",
}

// PolicyFor returns the policy for an operation, falling back to the
// default for unmapped operations.
func PolicyFor(operation string) Policy {
	if p, ok := policies[operation]; ok {
		return p
	}
	return defaultPolicy
}

// Result is the outcome of a limit check.
type Result struct {
	Limited   bool
	Message   string
	Remaining int
}

// Limiter enforces per-(user, operation) request budgets.
type Limiter struct {
	store Store
	now   func() time.Time
}

// NewLimiter creates a limiter over the given store.
func NewLimiter(store Store) *Limiter {
	return &Limiter{store: store, now: time.Now}
}

// Check consumes one request from the user's budget for the operation.
// A missing counter initializes at one; an expired window resets; an
// active window at the limit refuses with the policy message.
func (l *Limiter) Check(ctx context.Context, userID uuid.UUID, operation string) (Result, error) {
	policy := PolicyFor(operation)
	now := l.now()

	counter, err := l.store.GetCounter(ctx, userID, operation)
	if err != nil {
		return Result{}, err
	}

	if counter == nil || now.Sub(counter.WindowStart) > policy.Window {
		fresh := Counter{UserID: userID, Operation: operation, Count: 1, WindowStart: now}
		if err := l.store.PutCounter(ctx, fresh); err != nil {
			return Result{}, err
		}
		return Result{Remaining: policy.MaxRequests - 1}, nil
	}

	if counter.Count >= policy.MaxRequests {
		return Result{Limited: true, Message: policy.Message}, nil
	}

	counter.Count++
	if err := l.store.PutCounter(ctx, *counter); err != nil {
		return Result{}, err
	}
	return Result{Remaining: policy.MaxRequests - counter.Count}, nil
}
