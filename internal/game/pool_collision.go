package game

// CollisionEvent records a resolved contact for rule checking and sound playback.
type CollisionEvent struct {
	Type     string  `json:"type"`      // "ball" or "cushion"
	BallID   int     `json:"ball_id"`   // lower ball id for ball-ball contacts
	TargetID int     `json:"target_id"` // other ball id, or cushion index
	Speed    float64 `json:"speed"`     // approach speed along the contact normal
}

// Cushion indices used as CollisionEvent.TargetID.
const (
	CushionLeft = iota
	CushionRight
	CushionBottom
	CushionTop
)

// defaultNormal is used when two centres coincide and the contact normal is undefined.
var defaultNormal = Vec2{X: 1, Y: 0}

// ResolveBallCollisions resolves every overlapping pair of active balls once,
// in ascending (i, j) order. Overlaps created by a resolution are left for the
// next tick.
func ResolveBallCollisions(balls []*Ball, restitution float64) []CollisionEvent {
	var events []CollisionEvent

	for i := 0; i < len(balls); i++ {
		a := balls[i]
		if !a.Active {
			continue
		}
		for j := i + 1; j < len(balls); j++ {
			b := balls[j]
			if !b.Active {
				continue
			}
			if ev, ok := resolvePair(a, b, restitution); ok {
				events = append(events, ev)
			}
		}
	}

	return events
}

func resolvePair(a, b *Ball, restitution float64) (CollisionEvent, bool) {
	delta := b.Position.Minus(a.Position)
	dist := delta.Magnitude()
	minDist := a.Radius + b.Radius
	if dist >= minDist {
		return CollisionEvent{}, false
	}

	n := defaultNormal
	if dist > 0 {
		n = delta.Times(1 / dist)
	}

	velAlongNormal := b.Velocity.Minus(a.Velocity).Dot(n)
	if velAlongNormal >= 0 {
		// Already separating: neither velocity nor position is touched.
		return CollisionEvent{}, false
	}

	// Equal masses: each ball takes half of the impulse.
	impulse := -(1 + restitution) * velAlongNormal
	half := n.Times(impulse / 2)
	a.Velocity = a.Velocity.Minus(half)
	b.Velocity = b.Velocity.Plus(half)

	overlap := (minDist - dist) / 2
	a.Position = a.Position.Minus(n.Times(overlap))
	b.Position = b.Position.Plus(n.Times(overlap))

	return CollisionEvent{
		Type:     "ball",
		BallID:   a.ID,
		TargetID: b.ID,
		Speed:    -velAlongNormal,
	}, true
}

// ResolveCushionCollisions clamps balls back inside the playing area and
// reflects the velocity component that drove them into a cushion.
func ResolveCushionCollisions(balls []*Ball, table *Table, restitution float64) []CollisionEvent {
	bounds := table.Bounds()
	var events []CollisionEvent

	hit := func(b *Ball, cushion int, speed float64) {
		events = append(events, CollisionEvent{Type: "cushion", BallID: b.ID, TargetID: cushion, Speed: speed})
	}

	for _, b := range balls {
		if !b.Active {
			continue
		}
		r := b.Radius

		if b.Position.X-r < bounds.Left {
			b.Position.X = bounds.Left + r
			if b.Velocity.X < 0 {
				hit(b, CushionLeft, -b.Velocity.X)
				b.Velocity.X = -b.Velocity.X * restitution
			}
		}
		if b.Position.X+r > bounds.Right {
			b.Position.X = bounds.Right - r
			if b.Velocity.X > 0 {
				hit(b, CushionRight, b.Velocity.X)
				b.Velocity.X = -b.Velocity.X * restitution
			}
		}
		if b.Position.Y-r < bounds.Bottom {
			b.Position.Y = bounds.Bottom + r
			if b.Velocity.Y < 0 {
				hit(b, CushionBottom, -b.Velocity.Y)
				b.Velocity.Y = -b.Velocity.Y * restitution
			}
		}
		if b.Position.Y+r > bounds.Top {
			b.Position.Y = bounds.Top - r
			if b.Velocity.Y > 0 {
				hit(b, CushionTop, b.Velocity.Y)
				b.Velocity.Y = -b.Velocity.Y * restitution
			}
		}
	}

	return events
}
