package game

import (
	"math"
	"testing"

	"github.com/playmatatu/poolsim/internal/config"
)

// Helper to create a set of balls where only the given ones are active.
func setupBalls(active ...*Ball) []*Ball {
	balls := make([]*Ball, NumBalls)
	for i := range balls {
		balls[i] = &Ball{ID: i, Radius: 0.03, Group: ballGroup(i)}
	}
	for _, b := range active {
		b.Radius = 0.03
		b.Active = true
		b.Group = ballGroup(b.ID)
		balls[b.ID] = b
	}
	return balls
}

func TestFrictionReducesSpeedUntilStop(t *testing.T) {
	p := config.DefaultPhysics()
	cue := &Ball{ID: 0, Velocity: NewVec2(0.02, 0.01)}
	balls := setupBalls(cue)

	prev := cue.Velocity.Magnitude()
	for i := 0; i < 5000 && prev > 0; i++ {
		Integrate(balls, p.Friction, p.MinVelocity)
		speed := cue.Velocity.Magnitude()
		if speed >= prev {
			t.Fatalf("step %d: speed did not decrease: before=%v after=%v", i, prev, speed)
		}
		prev = speed
	}

	if !cue.Velocity.IsZero() {
		t.Errorf("Ball never came to rest: velocity=%+v", cue.Velocity)
	}
}

func TestIntegrateMovesByVelocity(t *testing.T) {
	p := config.DefaultPhysics()
	cue := &Ball{ID: 0, Position: NewVec2(0.1, -0.1), Velocity: NewVec2(0.02, 0.03)}
	Integrate(setupBalls(cue), p.Friction, p.MinVelocity)

	if math.Abs(cue.Position.X-0.12) > 1e-12 || math.Abs(cue.Position.Y-(-0.07)) > 1e-12 {
		t.Errorf("Unexpected position after one step: %+v", cue.Position)
	}
	if math.Abs(cue.Velocity.X-0.02*p.Friction) > 1e-12 {
		t.Errorf("Friction not applied: vx=%v", cue.Velocity.X)
	}
}

func TestIntegrateSnapsSmallComponents(t *testing.T) {
	p := config.DefaultPhysics()
	cue := &Ball{ID: 0, Velocity: NewVec2(0.008, 0.02)}
	Integrate(setupBalls(cue), p.Friction, p.MinVelocity)

	if cue.Velocity.X != 0 {
		t.Errorf("Expected x velocity to snap to zero, got %v", cue.Velocity.X)
	}
	if cue.Velocity.Y == 0 {
		t.Errorf("Y velocity should still be moving")
	}
}

func TestIntegrateSkipsInactiveBalls(t *testing.T) {
	p := config.DefaultPhysics()
	balls := setupBalls()
	balls[5].Position = NewVec2(0.2, 0.2)
	balls[5].Velocity = NewVec2(0.05, 0)

	Integrate(balls, p.Friction, p.MinVelocity)

	if balls[5].Position != NewVec2(0.2, 0.2) || balls[5].Velocity != NewVec2(0.05, 0) {
		t.Errorf("Inactive ball was touched: %+v", balls[5])
	}
}

func TestAllStoppedLogic(t *testing.T) {
	p := config.DefaultPhysics()
	cue := &Ball{ID: 0}
	balls := setupBalls(cue)

	if !AllStopped(balls, p.MinVelocity) {
		t.Errorf("Balls at rest reported as moving")
	}

	cue.Velocity = NewVec2(0, p.MinVelocity)
	if !AllStopped(balls, p.MinVelocity) {
		t.Errorf("Velocity equal to the threshold should count as rest")
	}

	cue.Velocity = NewVec2(0, 0.01)
	if AllStopped(balls, p.MinVelocity) {
		t.Errorf("Moving ball reported as stopped")
	}

	cue.Active = false
	if !AllStopped(balls, p.MinVelocity) {
		t.Errorf("Inactive ball should not count as moving")
	}
}

func TestHeadOnCollisionConservesMomentum(t *testing.T) {
	e := 0.94
	a := &Ball{ID: 0, Position: NewVec2(0, 0), Velocity: NewVec2(0.02, 0)}
	b := &Ball{ID: 1, Position: NewVec2(0.05, 0)}

	events := ResolveBallCollisions(setupBalls(a, b), e)

	if len(events) != 1 || events[0].Type != "ball" || events[0].BallID != 0 || events[0].TargetID != 1 {
		t.Fatalf("Expected one ball contact 0->1, got %+v", events)
	}

	momentum := a.Velocity.X + b.Velocity.X
	if math.Abs(momentum-0.02) > 1e-12 {
		t.Errorf("Momentum not conserved: %v", momentum)
	}

	separation := b.Velocity.X - a.Velocity.X
	if math.Abs(separation-e*0.02) > 1e-12 {
		t.Errorf("Separation speed = %v, want %v", separation, e*0.02)
	}

	if math.Abs(a.Position.X-(-0.005)) > 1e-12 || math.Abs(b.Position.X-0.055) > 1e-12 {
		t.Errorf("Overlap not split evenly: a=%v b=%v", a.Position.X, b.Position.X)
	}
}

func TestCoincidentBallsStayFinite(t *testing.T) {
	a := &Ball{ID: 0, Velocity: NewVec2(0.01, 0)}
	b := &Ball{ID: 1}

	events := ResolveBallCollisions(setupBalls(a, b), 0.94)

	for _, ball := range []*Ball{a, b} {
		if !ball.Position.IsFinite() || !ball.Velocity.IsFinite() {
			t.Fatalf("NaN entered ball %d: %+v", ball.ID, ball)
		}
	}
	if len(events) != 1 {
		t.Errorf("Expected the default normal to resolve the contact, got %d events", len(events))
	}
	if math.Abs(b.Position.X-a.Position.X-0.06) > 1e-12 {
		t.Errorf("Balls not separated along +x: a=%+v b=%+v", a.Position, b.Position)
	}
}

func TestSeparatingPairIsSkipped(t *testing.T) {
	a := &Ball{ID: 0, Position: NewVec2(0, 0), Velocity: NewVec2(-0.01, 0)}
	b := &Ball{ID: 1, Position: NewVec2(0.05, 0), Velocity: NewVec2(0.01, 0)}

	events := ResolveBallCollisions(setupBalls(a, b), 0.94)

	if len(events) != 0 {
		t.Errorf("Separating balls produced events: %+v", events)
	}
	if a.Velocity.X != -0.01 || b.Velocity.X != 0.01 {
		t.Errorf("Velocities changed for separating pair: a=%v b=%v", a.Velocity, b.Velocity)
	}
	if a.Position != NewVec2(0, 0) || b.Position != NewVec2(0.05, 0) {
		t.Errorf("Separating pair was repositioned: a=%+v b=%+v", a.Position, b.Position)
	}
}

func TestStationaryOverlapIsLeftInPlace(t *testing.T) {
	a := &Ball{ID: 0, Position: NewVec2(0, 0)}
	b := &Ball{ID: 1, Position: NewVec2(0.04, 0)}

	if events := ResolveBallCollisions(setupBalls(a, b), 0.94); len(events) != 0 {
		t.Errorf("Resting overlap produced events: %+v", events)
	}
	if a.Position.X != 0 || b.Position.X != 0.04 {
		t.Errorf("Resting overlap was repositioned: a=%v b=%v", a.Position.X, b.Position.X)
	}
}

func TestCollisionsIgnoreInactiveBalls(t *testing.T) {
	a := &Ball{ID: 0, Velocity: NewVec2(0.01, 0)}
	balls := setupBalls(a)
	balls[3].Position = NewVec2(0.01, 0)

	if events := ResolveBallCollisions(balls, 0.94); len(events) != 0 {
		t.Errorf("Inactive ball took part in a collision: %+v", events)
	}
	if a.Velocity.X != 0.01 {
		t.Errorf("Active ball velocity changed: %v", a.Velocity)
	}
}

func TestCushionBounceLosesEnergy(t *testing.T) {
	p := config.DefaultPhysics()
	table := NewTable(p)

	cases := []struct {
		name string
		pos  Vec2
		vel  Vec2
	}{
		{"right", NewVec2(0.78, 0), NewVec2(0.01, 0)},
		{"left", NewVec2(-0.78, 0), NewVec2(-0.01, 0)},
		{"top", NewVec2(0, 0.38), NewVec2(0, 0.02)},
		{"bottom", NewVec2(0.3, -0.38), NewVec2(0.005, -0.02)},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cue := &Ball{ID: 0, Position: tc.pos, Velocity: tc.vel}
			events := ResolveCushionCollisions(setupBalls(cue), table, p.CushionRestitution)

			if len(events) != 1 || events[0].Type != "cushion" {
				t.Fatalf("Expected one cushion event, got %+v", events)
			}
			if !table.Contains(cue.Position, cue.Radius) {
				t.Errorf("Ball left the playing area: %+v", cue.Position)
			}
			in := math.Max(math.Abs(tc.vel.X), math.Abs(tc.vel.Y))
			out := math.Max(math.Abs(cue.Velocity.X), math.Abs(cue.Velocity.Y))
			if tc.name == "bottom" {
				out = math.Abs(cue.Velocity.Y)
			}
			if out > in*p.CushionRestitution+1e-12 {
				t.Errorf("Reflected speed %v exceeds %v", out, in*p.CushionRestitution)
			}
		})
	}
}

func TestCushionClampsWithoutReflectingWhenLeaving(t *testing.T) {
	p := config.DefaultPhysics()
	cue := &Ball{ID: 0, Position: NewVec2(0.78, 0), Velocity: NewVec2(-0.01, 0)}

	events := ResolveCushionCollisions(setupBalls(cue), NewTable(p), p.CushionRestitution)

	if len(events) != 0 {
		t.Errorf("Expected no bounce for a ball moving away, got %+v", events)
	}
	if math.Abs(cue.Position.X-0.77) > 1e-12 {
		t.Errorf("Ball not clamped to the rail: %v", cue.Position.X)
	}
	if cue.Velocity.X != -0.01 {
		t.Errorf("Velocity changed: %v", cue.Velocity.X)
	}
}
