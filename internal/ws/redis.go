package ws

import (
	"context"
	"log"

	"github.com/redis/go-redis/v9"

	"github.com/playmatatu/poolsim/internal/events"
)

// StartEventSubscriber relays match events published on channel to the hub,
// so every server instance can stream every match.
func StartEventSubscriber(ctx context.Context, rdb *redis.Client, channel string, hub *Hub) {
	if rdb == nil {
		log.Println("[WS] Redis client not set; event subscriber not started")
		return
	}

	pubsub := rdb.Subscribe(ctx, channel)
	ch := pubsub.Channel()
	go func() {
		defer pubsub.Close()
		log.Printf("[WS] %s subscriber started", channel)
		for {
			select {
			case <-ctx.Done():
				log.Printf("[WS] %s subscriber stopped", channel)
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				ev, err := events.Decode(msg.Payload)
				if err != nil {
					log.Printf("[WS] %v", err)
					continue
				}
				hub.OnEvent(ctx, ev)
			}
		}
	}()
}
