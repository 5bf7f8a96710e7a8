package game

import "math"

// Group is the fixed family a ball belongs to.
type Group string

const (
	GroupCue     Group = "CUE"
	GroupSolids  Group = "SOLIDS"
	GroupStripes Group = "STRIPES"
	GroupNeutral Group = "NEUTRAL" // the 8-ball
)

// IsSuit reports whether balls of g can be claimed by a player.
func (g Group) IsSuit() bool {
	return g == GroupSolids || g == GroupStripes
}

// Complement returns the other suit. Non-suit groups map to themselves.
func (g Group) Complement() Group {
	switch g {
	case GroupSolids:
		return GroupStripes
	case GroupStripes:
		return GroupSolids
	}
	return g
}

// Color is a display colour, 0-255 per channel.
type Color struct {
	R uint8 `json:"r" msgpack:"r"`
	G uint8 `json:"g" msgpack:"g"`
	B uint8 `json:"b" msgpack:"b"`
}

var ballColors = [NumBalls]Color{
	{255, 255, 255}, // cue
	{255, 255, 0},   // yellow
	{0, 0, 255},     // blue
	{255, 0, 0},     // red
	{128, 0, 128},   // purple
	{255, 165, 0},   // orange
	{0, 128, 0},     // green
	{128, 0, 0},     // maroon
	{0, 0, 0},       // 8-ball
	{255, 255, 0},   // stripes repeat the solid palette
	{0, 0, 255},
	{255, 0, 0},
	{128, 0, 128},
	{255, 165, 0},
	{0, 128, 0},
	{128, 0, 0},
}

// Ball represents a single pool ball's physics state.
type Ball struct {
	ID       int     `json:"id"`
	Position Vec2    `json:"position"`
	Velocity Vec2    `json:"velocity"`
	Radius   float64 `json:"radius"`
	Active   bool    `json:"active"`
	Group    Group   `json:"group"`
	Owner    int     `json:"owner"` // NoPlayer until suits are assigned
	Color    Color   `json:"color"`
}

// ballGroup returns the group for a ball ID.
func ballGroup(id int) Group {
	switch {
	case id == CueBallID:
		return GroupCue
	case id == EightBallID:
		return GroupNeutral
	case id >= 1 && id <= 7:
		return GroupSolids
	default:
		return GroupStripes
	}
}

// newBall creates an active ball at rest.
func newBall(id int, pos Vec2, radius float64) *Ball {
	return &Ball{
		ID:       id,
		Position: pos,
		Radius:   radius,
		Active:   true,
		Group:    ballGroup(id),
		Owner:    NoPlayer,
		Color:    ballColors[id],
	}
}

// Integrate advances every active ball by one step: move by the current
// velocity, apply multiplicative friction, then snap any velocity component
// below minVelocity to exactly zero.
func Integrate(balls []*Ball, friction, minVelocity float64) {
	for _, b := range balls {
		if !b.Active {
			continue
		}

		b.Position = b.Position.Plus(b.Velocity)
		b.Velocity = b.Velocity.Times(friction)

		if math.Abs(b.Velocity.X) < minVelocity {
			b.Velocity.X = 0
		}
		if math.Abs(b.Velocity.Y) < minVelocity {
			b.Velocity.Y = 0
		}
	}
}

// IsMoving reports whether either velocity component is above the rest threshold.
func (b *Ball) IsMoving(minVelocity float64) bool {
	return math.Abs(b.Velocity.X) > minVelocity || math.Abs(b.Velocity.Y) > minVelocity
}

// AllStopped returns true if no active ball is moving.
func AllStopped(balls []*Ball, minVelocity float64) bool {
	for _, b := range balls {
		if b.Active && b.IsMoving(minVelocity) {
			return false
		}
	}
	return true
}
