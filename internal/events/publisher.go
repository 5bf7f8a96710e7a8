package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/redis/go-redis/v9"

	"github.com/playmatatu/poolsim/internal/game"
)

// publisher is the subset of *redis.Client the publisher needs.
type publisher interface {
	Publish(ctx context.Context, channel string, message interface{}) *redis.IntCmd
}

// Publisher fans match events out over Redis pub/sub as JSON.
type Publisher struct {
	rdb     publisher
	channel string
}

// NewPublisher publishes on channel through rdb.
func NewPublisher(rdb publisher, channel string) *Publisher {
	return &Publisher{rdb: rdb, channel: channel}
}

func (p *Publisher) Channel() string {
	return p.channel
}

// OnEvent publishes ev. Failures are logged and otherwise ignored.
func (p *Publisher) OnEvent(ctx context.Context, ev game.Event) {
	if err := p.Publish(ctx, ev); err != nil {
		log.Printf("[EVENTS] Failed to publish %s for match %s: %v", ev.Type, ev.MatchID, err)
	}
}

// Publish sends one event and returns the publish error, if any.
func (p *Publisher) Publish(ctx context.Context, ev game.Event) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	if err := p.rdb.Publish(ctx, p.channel, data).Err(); err != nil {
		return fmt.Errorf("publish to %s: %w", p.channel, err)
	}
	return nil
}

// Decode parses a payload produced by Publish.
func Decode(payload string) (game.Event, error) {
	var ev game.Event
	if err := json.Unmarshal([]byte(payload), &ev); err != nil {
		return game.Event{}, fmt.Errorf("invalid event payload: %w", err)
	}
	if ev.MatchID == "" {
		return game.Event{}, fmt.Errorf("event payload has no match_id")
	}
	return ev, nil
}
