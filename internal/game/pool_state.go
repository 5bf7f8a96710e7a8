package game

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/playmatatu/poolsim/internal/config"
)

// SuitAssignment records which player owns which suit.
type SuitAssignment struct {
	Assigned bool  `json:"assigned" msgpack:"assigned"`
	Player1  Group `json:"player1,omitempty" msgpack:"player1,omitempty"`
	Player2  Group `json:"player2,omitempty" msgpack:"player2,omitempty"`
}

// GroupOf returns the suit owned by player, or "" before assignment.
func (s SuitAssignment) GroupOf(player int) Group {
	if !s.Assigned {
		return ""
	}
	if player == Player1 {
		return s.Player1
	}
	return s.Player2
}

// OwnerOf returns the player owning suit g, or NoPlayer.
func (s SuitAssignment) OwnerOf(g Group) int {
	switch {
	case !s.Assigned || !g.IsSuit():
		return NoPlayer
	case s.Player1 == g:
		return Player1
	default:
		return Player2
	}
}

func (s SuitAssignment) String() string {
	if !s.Assigned {
		return "Suits open"
	}
	return fmt.Sprintf("Player 1: %s, Player 2: %s", suitName(s.Player1), suitName(s.Player2))
}

func suitName(g Group) string {
	n := strings.ToLower(string(g))
	return strings.ToUpper(n[:1]) + n[1:]
}

// Cue is the aiming state of the current player.
type Cue struct {
	Angle    float64 `json:"angle" msgpack:"angle"` // radians, (-Pi, Pi]
	Power    float64 `json:"power" msgpack:"power"` // [0, MaxPower]
	Dragging bool    `json:"dragging" msgpack:"dragging"`
}

// FoulInfo describes a foul that occurred during a turn.
type FoulInfo struct {
	Type    string `json:"type" msgpack:"type"` // "scratch", "illegal_8ball"
	Message string `json:"message" msgpack:"message"`
}

// ShotResult summarises a turn once every ball is at rest.
type ShotResult struct {
	ShotNumber    int            `json:"shot_number" msgpack:"shot_number"`
	Player        int            `json:"player" msgpack:"player"`
	PocketedBalls []int          `json:"pocketed_balls" msgpack:"pocketed_balls"`
	Foul          *FoulInfo      `json:"foul,omitempty" msgpack:"foul,omitempty"`
	GroupAssigned bool           `json:"group_assigned" msgpack:"group_assigned"`
	Suits         SuitAssignment `json:"suits" msgpack:"suits"`
	Scores        [2]int         `json:"scores" msgpack:"scores"`
	TurnChange    bool           `json:"turn_change" msgpack:"turn_change"`
	NextTurn      int            `json:"next_turn" msgpack:"next_turn"`
	GameOver      bool           `json:"game_over" msgpack:"game_over"`
	Winner        int            `json:"winner,omitempty" msgpack:"winner,omitempty"`
	WinType       string         `json:"win_type,omitempty" msgpack:"win_type,omitempty"`
	Message       string         `json:"message" msgpack:"message"`
}

// TickResult is what one simulation step produced.
type TickResult struct {
	Collisions []CollisionEvent
	Events     []Event
	Result     *ShotResult // set on the tick the turn resolved
}

// Match is the complete state of one 8-ball match. It is not safe for
// concurrent use; a Session owns it.
type Match struct {
	ID      string
	Table   *Table
	Balls   []*Ball // indexed by ball ID
	Phase   Phase
	Cue     Cue
	Rack    int

	CurrentPlayer int
	Scores        [2]int
	ShotCount     int
	Suits         SuitAssignment
	GameOver      bool
	Winner        int
	WinType       string
	Message       string

	// Per-turn state, cleared at resolution.
	PottedOwn             bool
	Foul                  bool
	Pocketed              []int
	foulInfo              *FoulInfo
	suitsAssignedThisTurn bool
	events                []Event

	physics config.Physics
}

// NewMatch creates a racked match with player 1 to break.
func NewMatch(id string, p config.Physics) *Match {
	m := &Match{ID: id, physics: p}
	m.rack()
	return m
}

// Physics returns the tunables the match was created with.
func (m *Match) Physics() config.Physics {
	return m.physics
}

// rack rebuilds table, balls and turn state.
func (m *Match) rack() {
	m.Table = NewTable(m.physics)

	positions := Rack(m.physics)
	m.Balls = make([]*Ball, NumBalls)
	for id := range m.Balls {
		m.Balls[id] = newBall(id, positions[id], m.physics.BallRadius)
	}

	m.Rack++
	m.Phase = PhaseAiming
	m.Cue = Cue{}
	m.CurrentPlayer = Player1
	m.Scores = [2]int{}
	m.ShotCount = 0
	m.Suits = SuitAssignment{}
	m.GameOver = false
	m.Winner = NoPlayer
	m.WinType = ""
	m.Message = "Player 1's turn"
	m.clearTurn()
}

func (m *Match) clearTurn() {
	m.PottedOwn = false
	m.Foul = false
	m.Pocketed = nil
	m.foulInfo = nil
	m.suitsAssignedThisTurn = false
}

// SetAim points the cue. Power follows pointerDistance only while dragging.
// Ignored outside Aiming.
func (m *Match) SetAim(angle, pointerDistance float64) {
	if !m.Phase.AcceptsAim() {
		return
	}
	m.Cue.Angle = wrapAngle(angle)
	if m.Cue.Dragging {
		m.Cue.Power = clampPower(pointerDistance, m.physics.MaxPower)
	}
}

// AimAt aims from the cue ball towards the table point (x, y).
func (m *Match) AimAt(x, y float64) {
	d := NewVec2(x, y).Minus(m.Balls[CueBallID].Position)
	m.SetAim(d.Angle(), d.Magnitude())
}

// BeginDrag starts the power gesture.
func (m *Match) BeginDrag() {
	if !m.Phase.AcceptsAim() || !m.Balls[CueBallID].Active {
		return
	}
	m.Cue.Dragging = true
}

// CommitShot fires the cue ball opposite to the aim direction. It reports
// whether a shot was taken; a commit with zero power only ends the drag.
func (m *Match) CommitShot() bool {
	if !m.Phase.AcceptsAim() || !m.Cue.Dragging {
		return false
	}
	m.Cue.Dragging = false

	cue := m.Balls[CueBallID]
	if m.Cue.Power <= 0 || !cue.Active {
		return false
	}

	cue.Velocity = FromAngle(m.Cue.Angle+math.Pi, m.Cue.Power*m.physics.VelocityFactor)
	if cue.Velocity.IsZero() {
		return false
	}

	m.ShotCount++
	m.Phase = PhaseBallsInMotion
	m.emit(Event{Type: EventShot, Player: m.CurrentPlayer, Angle: m.Cue.Angle, Power: m.Cue.Power})
	return true
}

// Reset re-racks the match. Accepted in any phase.
func (m *Match) Reset() {
	m.rack()
	m.emit(Event{Type: EventReset, Player: m.CurrentPlayer, Message: m.Message})
}

// Tick advances the simulation by one step. Outside BallsInMotion it does
// nothing.
func (m *Match) Tick() TickResult {
	var res TickResult
	if m.Phase != PhaseBallsInMotion {
		res.Events = m.drainEvents()
		return res
	}

	Integrate(m.Balls, m.physics.Friction, m.physics.MinVelocity)
	res.Collisions = ResolveBallCollisions(m.Balls, m.physics.BallRestitution)
	res.Collisions = append(res.Collisions, ResolveCushionCollisions(m.Balls, m.Table, m.physics.CushionRestitution)...)
	m.evaluatePockets()

	if AllStopped(m.Balls, m.physics.MinVelocity) {
		res.Result = m.resolveTurn()
	}

	res.Events = m.drainEvents()
	return res
}

// resolveTurn consumes the per-turn flags once every ball is at rest.
func (m *Match) resolveTurn() *ShotResult {
	m.Phase = PhaseTurnResolution
	m.settle()

	player := m.CurrentPlayer
	result := &ShotResult{
		ShotNumber:    m.ShotCount,
		Player:        player,
		PocketedBalls: append([]int{}, m.Pocketed...),
		Foul:          m.foulInfo,
		GroupAssigned: m.suitsAssignedThisTurn,
		Suits:         m.Suits,
	}

	if m.GameOver {
		m.Phase = PhaseGameOver
		result.GameOver = true
		result.Winner = m.Winner
		result.WinType = m.WinType
	} else {
		if !m.PottedOwn || m.Foul {
			m.switchPlayer()
			result.TurnChange = true
		} else {
			m.Message = "Good shot! Go again"
		}
		result.NextTurn = m.CurrentPlayer
		m.Phase = PhaseAiming
	}

	result.Scores = m.Scores
	result.Message = m.Message

	m.clearTurn()
	m.Cue.Power = 0
	m.Cue.Dragging = false

	if result.GameOver {
		m.emit(Event{Type: EventGameOver, Player: m.Winner, Message: m.Message, Result: result})
	} else {
		m.emit(Event{Type: EventTurn, Player: m.CurrentPlayer, Message: m.Message, Result: result})
	}
	return result
}

func (m *Match) switchPlayer() {
	fouled := m.Foul
	m.CurrentPlayer = opponent(m.CurrentPlayer)
	if fouled {
		m.Message = fmt.Sprintf("Foul! Player %d's turn", m.CurrentPlayer)
		return
	}
	m.Message = fmt.Sprintf("Player %d's turn", m.CurrentPlayer)
}

// settle zeroes the sub-threshold velocities left on balls at rest.
func (m *Match) settle() {
	for _, b := range m.Balls {
		b.Velocity = Vec2{}
	}
}

func (m *Match) emit(ev Event) {
	ev.MatchID = m.ID
	ev.Rack = m.Rack
	ev.Shot = m.ShotCount
	ev.Scores = m.Scores
	ev.Time = time.Now()
	m.events = append(m.events, ev)
}

func (m *Match) drainEvents() []Event {
	if len(m.events) == 0 {
		return nil
	}
	evs := m.events
	m.events = nil
	return evs
}

func clampPower(p, limit float64) float64 {
	if math.IsNaN(p) || p < 0 {
		return 0
	}
	if p > limit {
		return limit
	}
	return p
}

// Snapshot copies the state a renderer needs.
func (m *Match) Snapshot() Snapshot {
	balls := make([]BallView, len(m.Balls))
	for i, b := range m.Balls {
		balls[i] = BallView{
			ID:       b.ID,
			Position: b.Position,
			Radius:   b.Radius,
			Color:    b.Color,
			Active:   b.Active,
			Group:    b.Group,
			Owner:    b.Owner,
		}
	}

	pockets := make([]Pocket, len(m.Table.Pockets))
	copy(pockets, m.Table.Pockets)

	return Snapshot{
		MatchID:       m.ID,
		Rack:          m.Rack,
		Phase:         m.Phase,
		Balls:         balls,
		Pockets:       pockets,
		Table:         TableView{Width: m.Table.Width, Height: m.Table.Height, CushionThickness: m.Table.CushionThickness},
		CurrentPlayer: m.CurrentPlayer,
		Scores:        m.Scores,
		ShotCount:     m.ShotCount,
		Message:       m.Message,
		GameOver:      m.GameOver,
		Winner:        m.Winner,
		WinType:       m.WinType,
		Suits:         m.Suits,
		AimAngle:      m.Cue.Angle,
		AimPower:      m.Cue.Power,
		ShowCue:       m.Phase == PhaseAiming && m.Balls[CueBallID].Active,
	}
}

// BallView is the render-facing copy of a ball.
type BallView struct {
	ID       int     `json:"id" msgpack:"id"`
	Position Vec2    `json:"position" msgpack:"position"`
	Radius   float64 `json:"radius" msgpack:"radius"`
	Color    Color   `json:"color" msgpack:"color"`
	Active   bool    `json:"active" msgpack:"active"`
	Group    Group   `json:"group" msgpack:"group"`
	Owner    int     `json:"owner" msgpack:"owner"`
}

type TableView struct {
	Width            float64 `json:"width" msgpack:"width"`
	Height           float64 `json:"height" msgpack:"height"`
	CushionThickness float64 `json:"cushion_thickness" msgpack:"cushion_thickness"`
}

// Snapshot is an immutable copy of match state, published once per tick.
type Snapshot struct {
	MatchID       string         `json:"match_id" msgpack:"match_id"`
	Rack          int            `json:"rack" msgpack:"rack"`
	Phase         Phase          `json:"phase" msgpack:"phase"`
	Balls         []BallView     `json:"balls" msgpack:"balls"`
	Pockets       []Pocket       `json:"pockets" msgpack:"pockets"`
	Table         TableView      `json:"table" msgpack:"table"`
	CurrentPlayer int            `json:"current_player" msgpack:"current_player"`
	Scores        [2]int         `json:"scores" msgpack:"scores"`
	ShotCount     int            `json:"shot_count" msgpack:"shot_count"`
	Message       string         `json:"message" msgpack:"message"`
	GameOver      bool           `json:"game_over" msgpack:"game_over"`
	Winner        int            `json:"winner" msgpack:"winner"`
	WinType       string         `json:"win_type,omitempty" msgpack:"win_type,omitempty"`
	Suits         SuitAssignment `json:"suits" msgpack:"suits"`
	AimAngle      float64        `json:"aim_angle" msgpack:"aim_angle"`
	AimPower      float64        `json:"aim_power" msgpack:"aim_power"`
	ShowCue       bool           `json:"show_cue" msgpack:"show_cue"`
}
