package events

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBusDeliversToTopicSubscribers(t *testing.T) {
	bus := NewBus()
	sub := bus.Subscribe(TopicReviewApproved)
	defer sub.Close()

	other := bus.Subscribe(TopicCollection)
	defer other.Close()

	id := uuid.New()
	bus.Publish(Event{Topic: TopicReviewApproved, ReviewID: id, Approved: true})

	select {
	case got := <-sub.C:
		assert.Equal(t, id, got.ReviewID)
		assert.True(t, got.Approved)
	default:
		t.Fatal("subscriber received nothing")
	}

	select {
	case got := <-other.C:
		t.Fatalf("unrelated topic received %v", got)
	default:
	}
}

func TestBusMultiTopicSubscription(t *testing.T) {
	bus := NewBus()
	sub := bus.Subscribe(TopicCollection, TopicReviewsRefreshed)
	defer sub.Close()

	bus.Publish(Event{Topic: TopicCollection, Collection: CollectionBookings})
	bus.Publish(Event{Topic: TopicReviewsRefreshed})

	first := <-sub.C
	second := <-sub.C
	assert.Equal(t, TopicCollection, first.Topic)
	assert.Equal(t, CollectionBookings, first.Collection)
	assert.Equal(t, TopicReviewsRefreshed, second.Topic)
}

func TestBusUnsubscribeStopsDelivery(t *testing.T) {
	bus := NewBus()
	sub := bus.Subscribe(TopicCollection)

	sub.Close()
	sub.Close() // repeated close is safe

	bus.Publish(Event{Topic: TopicCollection, Collection: CollectionTheme})

	_, open := <-sub.C
	assert.False(t, open, "channel closes on unsubscribe")
}

func TestBusDropsWhenSubscriberIsFull(t *testing.T) {
	bus := NewBus()
	sub := bus.Subscribe(TopicCollection)
	defer sub.Close()

	// Fill the buffer and keep publishing; extra events are dropped
	// rather than blocking the publisher.
	for i := 0; i < 50; i++ {
		bus.Publish(Event{Topic: TopicCollection, Collection: CollectionChatMessages})
	}

	received := 0
	for {
		select {
		case <-sub.C:
			received++
			continue
		default:
		}
		break
	}
	require.Equal(t, 16, received)
}
