package game

import (
	"context"
	"errors"
	"log"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/playmatatu/poolsim/internal/config"
)

var (
	ErrMatchNotFound  = errors.New("match not found")
	ErrTooManyMatches = errors.New("too many active matches")
)

type runningSession struct {
	session *Session
	cancel  context.CancelFunc
	seq     uint64
}

// Manager owns every running Session and its goroutine.
type Manager struct {
	mu       sync.RWMutex
	sessions map[string]*runningSession
	nextSeq  uint64

	physics    config.Physics
	maxMatches int
	queueSize  int
	tickRate   int
	observers  []Observer

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewManager creates a manager whose sessions live until ctx is cancelled or
// Shutdown is called.
func NewManager(ctx context.Context, cfg *config.Config, physics config.Physics, observers ...Observer) *Manager {
	ctx, cancel := context.WithCancel(ctx)
	return &Manager{
		sessions:   make(map[string]*runningSession),
		physics:    physics,
		maxMatches: cfg.MaxMatches,
		queueSize:  cfg.IntentQueueSize,
		tickRate:   cfg.TickRate,
		observers:  observers,
		ctx:        ctx,
		cancel:     cancel,
	}
}

// Create racks a new match and starts its owner goroutine.
func (gm *Manager) Create() (*Session, error) {
	gm.mu.Lock()
	defer gm.mu.Unlock()

	if gm.maxMatches > 0 && len(gm.sessions) >= gm.maxMatches {
		return nil, ErrTooManyMatches
	}

	m := NewMatch(uuid.NewString(), gm.physics)
	s := NewSession(m, gm.queueSize, gm.observers...)

	ctx, cancel := context.WithCancel(gm.ctx)
	gm.nextSeq++
	gm.sessions[m.ID] = &runningSession{session: s, cancel: cancel, seq: gm.nextSeq}

	// The first rack goes out through the session's dispatcher ahead of
	// any shot, so observer I/O never runs under gm.mu.
	s.announce(Event{Type: EventReset, MatchID: m.ID, Rack: m.Rack, Player: m.CurrentPlayer, Message: m.Message, Time: s.Created()})

	gm.wg.Add(1)
	go func() {
		defer gm.wg.Done()
		s.Run(ctx, gm.tickRate)
	}()

	log.Printf("[MATCH] Created match %s (%d active)", m.ID, len(gm.sessions))
	return s, nil
}

// Get returns the running session for id.
func (gm *Manager) Get(id string) (*Session, error) {
	gm.mu.RLock()
	defer gm.mu.RUnlock()

	rs, ok := gm.sessions[id]
	if !ok {
		return nil, ErrMatchNotFound
	}
	return rs.session, nil
}

// List returns the running sessions, oldest first.
func (gm *Manager) List() []*Session {
	gm.mu.RLock()
	running := make([]*runningSession, 0, len(gm.sessions))
	for _, rs := range gm.sessions {
		running = append(running, rs)
	}
	gm.mu.RUnlock()

	sort.Slice(running, func(i, j int) bool {
		return running[i].seq < running[j].seq
	})

	list := make([]*Session, len(running))
	for i, rs := range running {
		list[i] = rs.session
	}
	return list
}

// Count returns the number of running sessions.
func (gm *Manager) Count() int {
	gm.mu.RLock()
	defer gm.mu.RUnlock()
	return len(gm.sessions)
}

// Close stops a session and waits for its goroutine to finish.
func (gm *Manager) Close(id string) error {
	gm.mu.Lock()
	rs, ok := gm.sessions[id]
	if ok {
		delete(gm.sessions, id)
	}
	gm.mu.Unlock()

	if !ok {
		return ErrMatchNotFound
	}

	rs.cancel()
	<-rs.session.Done()
	log.Printf("[MATCH] Closed match %s", id)
	return nil
}

// Shutdown stops every session and waits for them to exit.
func (gm *Manager) Shutdown() {
	gm.cancel()
	gm.wg.Wait()

	gm.mu.Lock()
	gm.sessions = make(map[string]*runningSession)
	gm.mu.Unlock()

	log.Println("[MATCH] All sessions stopped")
}
