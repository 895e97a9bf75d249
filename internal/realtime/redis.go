package realtime

import (
	"context"
	"encoding/json"

	"github.com/codrift/codrift/backend/go-services/pkg/logger"
	"github.com/redis/go-redis/v9"
)

// Bridge relays events through a Redis pub/sub channel so every service
// instance observes every mutation. Published events come back through the
// subscription, local instance included, and are re-delivered via the hub.
type Bridge struct {
	client  *redis.Client
	hub     *Hub
	channel string
}

type bridgeFrame struct {
	Topic string `json:"topic"`
	Event Event  `json:"event"`
}

func NewBridge(client *redis.Client, hub *Hub, channel string) *Bridge {
	if channel == "" {
		channel = "realtime:events"
	}
	return &Bridge{client: client, hub: hub, channel: channel}
}

// Publish sends the event through Redis. Delivery to local subscribers
// happens when Run receives it back.
func (b *Bridge) Publish(topic string, ev Event) {
	payload, err := json.Marshal(bridgeFrame{Topic: topic, Event: ev})
	if err != nil {
		logger.Errorf("realtime: marshal event: %v", err)
		return
	}
	if err := b.client.Publish(context.Background(), b.channel, payload).Err(); err != nil {
		// degrade to local-only delivery rather than dropping the event
		logger.Warnf("realtime: redis publish failed, delivering locally: %v", err)
		b.hub.Publish(topic, ev)
	}
}

// Run consumes the Redis channel until ctx is cancelled, re-publishing every
// frame into the local hub.
func (b *Bridge) Run(ctx context.Context) {
	sub := b.client.Subscribe(ctx, b.channel)
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
			var f bridgeFrame
			if err := json.Unmarshal([]byte(msg.Payload), &f); err != nil {
				logger.Warnf("realtime: bad frame: %v", err)
				continue
			}
			b.hub.Publish(f.Topic, f.Event)
		}
	}
}
