//go:build integration

package ws

import (
	"context"
	"testing"
	"time"

	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/playmatatu/poolsim/internal/events"
	"github.com/playmatatu/poolsim/internal/game"
	"github.com/playmatatu/poolsim/internal/redis"
)

const (
	redisPort       = "6379/tcp"
	expireDuration  = 120
	maxWaitDuration = 120 * time.Second
)

func newRedis(t *testing.T) *goredis.Client {
	t.Helper()

	pool, err := dockertest.NewPool("")
	if err != nil {
		t.Fatalf("could not connect to docker: %v", err)
	}

	resource, err := pool.RunWithOptions(&dockertest.RunOptions{
		Repository: "redis",
		Tag:        "alpine",
	}, func(config *docker.HostConfig) {
		config.AutoRemove = true
		config.RestartPolicy = docker.RestartPolicy{Name: "no"}
	})
	if err != nil {
		t.Fatalf("could not start resource: %v", err)
	}
	_ = resource.Expire(expireDuration)

	pool.MaxWait = maxWaitDuration
	var rdb *goredis.Client
	if err = pool.Retry(func() error {
		rdb, err = redis.Connect(context.Background(), "redis://" + resource.GetHostPort(redisPort))
		return err
	}); err != nil {
		_ = pool.Purge(resource)
		t.Fatalf("could not connect to redis: %v", err)
	}

	t.Cleanup(func() {
		rdb.Close()
		if err := pool.Purge(resource); err != nil {
			t.Fatalf("could not purge resource: %v", err)
		}
	})
	return rdb
}

func TestEventsRelayThroughRedis(t *testing.T) {
	rdb := newRedis(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	hub := NewHub()
	client := &Client{matchID: "m-1", format: FormatJSON, send: make(chan []byte, 4)}
	hub.rooms["m-1"] = map[*Client]struct{}{client: {}}

	StartEventSubscriber(ctx, rdb, "match_events_test", hub)
	pub := events.NewPublisher(rdb, "match_events_test")

	// The subscription is asynchronous; publish until it is live.
	require.Eventually(t, func() bool {
		pub.OnEvent(ctx, game.Event{Type: game.EventPocket, MatchID: "m-1", BallID: 5})
		return len(client.send) > 0
	}, 10*time.Second, 100*time.Millisecond)

	var msg Message
	require.NoError(t, FormatJSON.Unmarshal(<-client.send, &msg))
	assert.Equal(t, MessageEvent, msg.Type)
	assert.Equal(t, game.EventPocket, msg.Event.Type)
	assert.Equal(t, 5, msg.Event.BallID)
}
