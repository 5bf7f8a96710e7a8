package game

import (
	"context"
	"errors"
	"log"
	"sync"
	"sync/atomic"
	"time"
)

var (
	ErrIntentQueueFull = errors.New("intent queue is full")
	ErrSessionClosed   = errors.New("session is closed")
)

// IntentKind names a presentation-layer request.
type IntentKind string

const (
	IntentAim       IntentKind = "aim"
	IntentAimAt     IntentKind = "aim_at"
	IntentBeginDrag IntentKind = "drag"
	IntentShoot     IntentKind = "shoot"
	IntentReset     IntentKind = "reset"
)

// Intent is queued by handlers and applied by the session owner.
type Intent struct {
	Kind     IntentKind `json:"kind" msgpack:"kind"`
	Angle    float64    `json:"angle,omitempty" msgpack:"angle,omitempty"`
	Distance float64    `json:"distance,omitempty" msgpack:"distance,omitempty"`
	X        float64    `json:"x,omitempty" msgpack:"x,omitempty"`
	Y        float64    `json:"y,omitempty" msgpack:"y,omitempty"`
}

const eventBufferSize = 256

// Session owns one Match. Only the goroutine running Run (or a test calling
// Step) touches the match; everyone else goes through intents and snapshots.
type Session struct {
	match     *Match
	intents   chan Intent
	events    chan Event
	observers []Observer
	created   time.Time

	mu   sync.RWMutex
	snap Snapshot

	subsMu sync.Mutex
	subs   map[chan Snapshot]struct{}

	lastActive atomic.Int64
	closed     atomic.Bool
	done       chan struct{}
}

// NewSession wraps m. queueSize bounds the pending intents.
func NewSession(m *Match, queueSize int, observers ...Observer) *Session {
	if queueSize <= 0 {
		queueSize = 1
	}
	s := &Session{
		match:     m,
		intents:   make(chan Intent, queueSize),
		events:    make(chan Event, eventBufferSize),
		observers: observers,
		created:   time.Now(),
		snap:      m.Snapshot(),
		subs:      make(map[chan Snapshot]struct{}),
		done:      make(chan struct{}),
	}
	s.touch()
	return s
}

func (s *Session) ID() string {
	return s.match.ID
}

func (s *Session) Created() time.Time {
	return s.created
}

// LastActive is the time of the last accepted intent.
func (s *Session) LastActive() time.Time {
	return time.Unix(0, s.lastActive.Load())
}

func (s *Session) touch() {
	s.lastActive.Store(time.Now().UnixNano())
}

// Done is closed once Run has returned.
func (s *Session) Done() <-chan struct{} {
	return s.done
}

// Submit queues an intent for the next tick without blocking.
func (s *Session) Submit(in Intent) error {
	if s.closed.Load() {
		return ErrSessionClosed
	}
	select {
	case s.intents <- in:
		s.touch()
		return nil
	default:
		return ErrIntentQueueFull
	}
}

// Snapshot returns the state published after the last tick.
func (s *Session) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap
}

// Subscribe returns a channel that always holds the latest snapshot. Slow
// readers skip frames. The channel is closed by cancel or when Run returns.
func (s *Session) Subscribe() (<-chan Snapshot, func()) {
	ch := make(chan Snapshot, 1)
	ch <- s.Snapshot()

	s.subsMu.Lock()
	if s.closed.Load() {
		s.subsMu.Unlock()
		close(ch)
		return ch, func() {}
	}
	s.subs[ch] = struct{}{}
	s.subsMu.Unlock()

	cancel := func() {
		s.subsMu.Lock()
		defer s.subsMu.Unlock()
		if _, ok := s.subs[ch]; ok {
			delete(s.subs, ch)
			close(ch)
		}
	}
	return ch, cancel
}

// Step applies queued intents in arrival order, advances the match one tick
// and publishes the new snapshot.
func (s *Session) Step() TickResult {
	s.applyIntents()
	res := s.match.Tick()
	s.publish(s.match.Snapshot())
	return res
}

func (s *Session) applyIntents() {
	for {
		select {
		case in := <-s.intents:
			s.apply(in)
		default:
			return
		}
	}
}

func (s *Session) apply(in Intent) {
	m := s.match
	switch in.Kind {
	case IntentAim:
		m.SetAim(in.Angle, in.Distance)
	case IntentAimAt:
		m.AimAt(in.X, in.Y)
	case IntentBeginDrag:
		m.BeginDrag()
	case IntentShoot:
		m.CommitShot()
	case IntentReset:
		m.Reset()
	default:
		log.Printf("[MATCH] %s: ignoring unknown intent %q", m.ID, in.Kind)
	}
}

func (s *Session) publish(snap Snapshot) {
	s.mu.Lock()
	s.snap = snap
	s.mu.Unlock()

	s.subsMu.Lock()
	defer s.subsMu.Unlock()
	for ch := range s.subs {
		// Replace whatever the reader has not consumed yet.
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- snap:
		default:
		}
	}
}

// Run drives the match at tickRate ticks per second until ctx is cancelled.
// Observers are called from a separate goroutine in event order.
func (s *Session) Run(ctx context.Context, tickRate int) {
	if tickRate <= 0 {
		tickRate = 60
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		s.dispatch(context.WithoutCancel(ctx))
	}()

	ticker := time.NewTicker(time.Second / time.Duration(tickRate))
	defer ticker.Stop()

	log.Printf("[MATCH] %s: session started at %d Hz", s.ID(), tickRate)

	for {
		select {
		case <-ctx.Done():
			s.shutdown()
			close(s.events)
			wg.Wait()
			close(s.done)
			log.Printf("[MATCH] %s: session stopped", s.ID())
			return
		case <-ticker.C:
			res := s.Step()
			if res.Result != nil {
				logShot(res.Result)
			}
			for _, ev := range res.Events {
				s.announce(ev)
			}
		}
	}
}

// announce queues ev for the observers without blocking. Events queued
// before Run starts are delivered first.
func (s *Session) announce(ev Event) {
	select {
	case s.events <- ev:
	default:
		log.Printf("[MATCH] %s: event buffer full, dropping %s", s.ID(), ev.Type)
	}
}

func (s *Session) dispatch(ctx context.Context) {
	for ev := range s.events {
		for _, o := range s.observers {
			o.OnEvent(ctx, ev)
		}
	}
}

func (s *Session) shutdown() {
	s.closed.Store(true)

	s.subsMu.Lock()
	defer s.subsMu.Unlock()
	for ch := range s.subs {
		delete(s.subs, ch)
		close(ch)
	}
}

func logShot(r *ShotResult) {
	foul := r.Foul != nil
	log.Printf("[POOL] Shot #%d by player %d, pocketed=%v, foul=%v, gameOver=%v, nextTurn=%d",
		r.ShotNumber, r.Player, r.PocketedBalls, foul, r.GameOver, r.NextTurn)
}
