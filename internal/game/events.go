package game

import (
	"context"
	"time"
)

// EventType names a match event.
type EventType string

const (
	EventShot          EventType = "shot"
	EventPocket        EventType = "pocket"
	EventScratch       EventType = "scratch"
	EventSuitsAssigned EventType = "suits_assigned"
	EventTurn          EventType = "turn"
	EventGameOver      EventType = "game_over"
	EventReset         EventType = "reset"
)

// Event is emitted by a Match as it is played. Observers receive events in
// emission order.
type Event struct {
	Type     EventType   `json:"type" msgpack:"type"`
	MatchID  string      `json:"match_id" msgpack:"match_id"`
	Rack     int         `json:"rack" msgpack:"rack"`
	Shot     int         `json:"shot" msgpack:"shot"`
	Player   int         `json:"player,omitempty" msgpack:"player,omitempty"`
	BallID   int         `json:"ball_id" msgpack:"ball_id"`
	PocketID int         `json:"pocket_id" msgpack:"pocket_id"`
	Message  string      `json:"message,omitempty" msgpack:"message,omitempty"`
	Angle    float64     `json:"angle,omitempty" msgpack:"angle,omitempty"`
	Power    float64     `json:"power,omitempty" msgpack:"power,omitempty"`
	Scores   [2]int      `json:"scores" msgpack:"scores"`
	Result   *ShotResult `json:"result,omitempty" msgpack:"result,omitempty"`
	Time     time.Time   `json:"time" msgpack:"time"`
}

// Observer receives match events. Implementations must not block for long;
// sessions deliver events from a dedicated goroutine.
type Observer interface {
	OnEvent(ctx context.Context, ev Event)
}

// ObserverFunc adapts a function to the Observer interface.
type ObserverFunc func(ctx context.Context, ev Event)

func (f ObserverFunc) OnEvent(ctx context.Context, ev Event) {
	f(ctx, ev)
}
