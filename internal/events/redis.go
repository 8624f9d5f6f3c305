package events

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const redisChannel = "pixeldesk-events"

// Bridge fans events out across instances over Redis pub/sub. Outgoing
// events are stamped with this instance's origin id; incoming events with
// the same origin are echoes of our own publishes and are dropped.
type Bridge struct {
	bus    *Bus
	rdb    *redis.Client
	origin string
	logger *zap.Logger
}

// NewBridge creates a bridge between the local bus and Redis.
func NewBridge(bus *Bus, rdb *redis.Client, logger *zap.Logger) *Bridge {
	return &Bridge{
		bus:    bus,
		rdb:    rdb,
		origin: uuid.New().String(),
		logger: logger,
	}
}

// Publish dispatches locally and to the other instances.
func (b *Bridge) Publish(ctx context.Context, event Event) {
	b.bus.Publish(event)

	event.Origin = b.origin
	data, err := json.Marshal(event)
	if err != nil {
		b.logger.Error("marshal event", zap.Error(err))
		return
	}
	if err := b.rdb.Publish(ctx, redisChannel, data).Err(); err != nil {
		b.logger.Warn("publish event to redis", zap.Error(err))
	}
}

// Run consumes remote events until the context is cancelled, replaying
// them onto the local bus.
func (b *Bridge) Run(ctx context.Context) {
	sub := b.rdb.Subscribe(ctx, redisChannel)
	defer sub.Close()

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			var event Event
			if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
				b.logger.Warn("unmarshal remote event", zap.Error(err))
				continue
			}
			if event.Origin == b.origin {
				continue
			}
			b.bus.Publish(event)
		}
	}
}
