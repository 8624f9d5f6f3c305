package events

import (
	"sync"

	"github.com/google/uuid"
)

// Topic names the kind of change an event describes.
type Topic string

const (
	TopicReviewApproved   Topic = "review_approved"
	TopicReviewFeatured   Topic = "review_featured"
	TopicReviewUpdated    Topic = "review_updated"
	TopicReviewDeleted    Topic = "review_deleted"
	TopicReviewsRefreshed Topic = "reviews_refreshed"
	TopicCollection       Topic = "collection_changed"
)

// Collection names used by the subscription layer. Clients subscribe to
// these and receive a fresh snapshot whenever the collection changes.
const (
	CollectionBookings      = "bookings"
	CollectionReviews       = "reviews"
	CollectionContacts      = "contactSubmissions"
	CollectionChatMessages  = "chatMessages"
	CollectionNotifications = "notifications"
	CollectionTheme         = "theme"
	CollectionForum         = "community"
)

// Event is a single typed message on the bus. Collection is set for
// collection-change events; ReviewID and Approved for review events.
// Origin identifies the publishing instance so the Redis bridge can drop
// its own echoes.
type Event struct {
	Topic      Topic     `json:"topic"`
	Collection string    `json:"collection,omitempty"`
	ReviewID   uuid.UUID `json:"review_id,omitempty"`
	Approved   bool      `json:"approved,omitempty"`
	Origin     string    `json:"origin,omitempty"`
}

// Subscription is a handle on a bus subscription. Events arrive on C;
// Close detaches the subscriber and closes the channel.
type Subscription struct {
	C     <-chan Event
	c     chan Event
	close func()
	once  sync.Once
}

// Close detaches the subscription. Safe to call more than once.
func (s *Subscription) Close() {
	s.once.Do(s.close)
}

// Bus is an in-process publish/subscribe dispatcher. A slow subscriber
// never blocks publishers: events it cannot take are dropped.
type Bus struct {
	mu   sync.RWMutex
	subs map[Topic]map[*Subscription]bool
}

// NewBus creates an empty bus.
func NewBus() *Bus {
	return &Bus{subs: make(map[Topic]map[*Subscription]bool)}
}

// Subscribe attaches a subscriber to one or more topics.
func (b *Bus) Subscribe(topics ...Topic) *Subscription {
	c := make(chan Event, 16)
	sub := &Subscription{C: c, c: c}
	sub.close = func() {
		b.mu.Lock()
		for _, topic := range topics {
			delete(b.subs[topic], sub)
		}
		b.mu.Unlock()
		close(c)
	}

	b.mu.Lock()
	for _, topic := range topics {
		if b.subs[topic] == nil {
			b.subs[topic] = make(map[*Subscription]bool)
		}
		b.subs[topic][sub] = true
	}
	b.mu.Unlock()

	return sub
}

// Publish delivers the event to every subscriber of its topic.
func (b *Bus) Publish(event Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for sub := range b.subs[event.Topic] {
		select {
		case sub.c <- event:
		default:
		}
	}
}
