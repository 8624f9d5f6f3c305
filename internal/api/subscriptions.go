package api

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/pixeldesk/backend/internal/auth"
	"github.com/pixeldesk/backend/internal/domain"
	"github.com/pixeldesk/backend/internal/events"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

const snapshotTimeout = 5 * time.Second

// SubscriptionHub pushes live collection snapshots over websockets.
// Clients subscribe to named collections and receive a fresh snapshot
// immediately and again whenever the collection changes, on this
// instance or any other via the Redis bridge.
type SubscriptionHub struct {
	bus      *events.Bus
	jwt      *auth.JWTManager
	profiles *domain.ProfileService

	bookings      *domain.BookingService
	reviews       *domain.ReviewService
	contacts      *domain.ContactService
	notifications *domain.NotificationService
	chat          *domain.ChatService
	theme         *domain.ThemeService
	forum         *domain.ForumService

	logger *zap.Logger
}

// NewSubscriptionHub creates a new subscription hub.
func NewSubscriptionHub(
	bus *events.Bus,
	jwt *auth.JWTManager,
	profiles *domain.ProfileService,
	bookings *domain.BookingService,
	reviews *domain.ReviewService,
	contacts *domain.ContactService,
	notifications *domain.NotificationService,
	chat *domain.ChatService,
	theme *domain.ThemeService,
	forum *domain.ForumService,
	logger *zap.Logger,
) *SubscriptionHub {
	return &SubscriptionHub{
		bus:           bus,
		jwt:           jwt,
		profiles:      profiles,
		bookings:      bookings,
		reviews:       reviews,
		contacts:      contacts,
		notifications: notifications,
		chat:          chat,
		theme:         theme,
		forum:         forum,
		logger:        logger,
	}
}

// subscriber is one websocket connection and its collection set.
type subscriber struct {
	conn *websocket.Conn
	send chan []byte

	mu          sync.Mutex
	collections map[string]bool

	userID uuid.UUID
	email  string
	authed bool
}

func (c *subscriber) subscribed(collection string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.collections[collection]
}

// clientMessage is what subscribers send over the socket.
type clientMessage struct {
	Action     string `json:"action"` // "subscribe" or "unsubscribe"
	Collection string `json:"collection"`
}

// serverMessage is what the hub pushes to subscribers.
type serverMessage struct {
	Type       string      `json:"type"` // "snapshot" or "event"
	Collection string      `json:"collection,omitempty"`
	Data       interface{} `json:"data,omitempty"`
	Topic      string      `json:"topic,omitempty"`
	ReviewID   string      `json:"review_id,omitempty"`
	Approved   bool        `json:"approved,omitempty"`
}

// ServeWS upgrades the connection and runs it until the client leaves.
// Authentication is optional and carried in the token query parameter;
// unauthenticated subscribers only see the public collections.
func (h *SubscriptionHub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	client := &subscriber{
		conn:        conn,
		send:        make(chan []byte, 32),
		collections: make(map[string]bool),
	}

	if token := r.URL.Query().Get("token"); token != "" {
		if claims, err := h.jwt.ValidateAccessToken(token); err == nil {
			client.userID = claims.UserID
			client.email = claims.Email
			client.authed = true
		}
	}

	sub := h.bus.Subscribe(
		events.TopicCollection,
		events.TopicReviewApproved,
		events.TopicReviewFeatured,
		events.TopicReviewUpdated,
		events.TopicReviewDeleted,
		events.TopicReviewsRefreshed,
	)

	go h.writePump(client)
	go h.eventPump(client, sub)
	h.readPump(client, sub)
}

// readPump consumes subscribe/unsubscribe messages until the connection
// closes, then detaches the bus subscription. Closing the subscription
// ends eventPump, which in turn closes the send channel; readPump must
// not close it directly or eventPump could send on a closed channel.
func (h *SubscriptionHub) readPump(client *subscriber, sub *events.Subscription) {
	defer func() {
		sub.Close()
		client.conn.Close()
	}()

	for {
		_, data, err := client.conn.ReadMessage()
		if err != nil {
			return
		}

		var msg clientMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			continue
		}

		switch msg.Action {
		case "subscribe":
			client.mu.Lock()
			client.collections[msg.Collection] = true
			client.mu.Unlock()
			h.pushSnapshot(client, msg.Collection)
		case "unsubscribe":
			client.mu.Lock()
			delete(client.collections, msg.Collection)
			client.mu.Unlock()
		}
	}
}

// eventPump refreshes snapshots as bus events arrive. When the bus
// subscription closes it also closes the send channel, ending writePump.
func (h *SubscriptionHub) eventPump(client *subscriber, sub *events.Subscription) {
	defer close(client.send)

	for event := range sub.C {
		switch event.Topic {
		case events.TopicCollection:
			if client.subscribed(event.Collection) {
				h.pushSnapshot(client, event.Collection)
			}
		default:
			// Review moderation events go to review subscribers as-is so
			// mounted views can react without a full refetch.
			if client.subscribed(events.CollectionReviews) {
				h.enqueue(client, serverMessage{
					Type:     "event",
					Topic:    string(event.Topic),
					ReviewID: event.ReviewID.String(),
					Approved: event.Approved,
				})
			}
		}
	}
}

func (h *SubscriptionHub) writePump(client *subscriber) {
	defer client.conn.Close()

	for message := range client.send {
		w, err := client.conn.NextWriter(websocket.TextMessage)
		if err != nil {
			return
		}
		w.Write(message)

		n := len(client.send)
		for i := 0; i < n; i++ {
			w.Write(<-client.send)
		}

		if err := w.Close(); err != nil {
			return
		}
	}
	client.conn.WriteMessage(websocket.CloseMessage, []byte{})
}

func (h *SubscriptionHub) enqueue(client *subscriber, msg serverMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		h.logger.Error("marshal subscription message", zap.Error(err))
		return
	}
	select {
	case client.send <- data:
	default:
		// Slow consumer; drop rather than block the hub.
	}
}

// pushSnapshot loads and sends the current state of a collection. A
// failed load sends an empty snapshot so the client renders an empty
// window instead of hanging.
func (h *SubscriptionHub) pushSnapshot(client *subscriber, collection string) {
	ctx, cancel := context.WithTimeout(context.Background(), snapshotTimeout)
	defer cancel()

	data, err := h.loadSnapshot(ctx, client, collection)
	if err != nil {
		h.logger.Warn("load snapshot failed",
			zap.String("collection", collection), zap.Error(err))
		data = []interface{}{}
	}

	h.enqueue(client, serverMessage{Type: "snapshot", Collection: collection, Data: data})
}

func (h *SubscriptionHub) loadSnapshot(ctx context.Context, client *subscriber, collection string) (interface{}, error) {
	var access domain.ResolvedAccess
	if client.authed {
		access = h.profiles.Resolve(ctx, client.userID, client.email)
	}

	switch collection {
	case events.CollectionReviews:
		if access.HasPermission(domain.PermModerateReviews) {
			return h.reviews.ListAll(ctx)
		}
		return h.reviews.ListPublic(ctx)

	case events.CollectionBookings:
		if access.HasPermission(domain.PermManageBookings) {
			return h.bookings.ListAll(ctx)
		}
		if !client.authed {
			return []domain.Booking{}, nil
		}
		return h.bookings.ListForUser(ctx, client.userID)

	case events.CollectionContacts:
		if !access.IsAdmin {
			return []domain.ContactSubmission{}, nil
		}
		return h.contacts.List(ctx)

	case events.CollectionNotifications:
		if !access.IsAdmin {
			return []domain.Notification{}, nil
		}
		return h.notifications.List(ctx, 50, 0)

	case events.CollectionChatMessages:
		return h.chat.List(ctx, 0)

	case events.CollectionTheme:
		return h.theme.Get(ctx)

	case events.CollectionForum:
		return h.forum.ListCategories(ctx)

	default:
		return []interface{}{}, nil
	}
}
