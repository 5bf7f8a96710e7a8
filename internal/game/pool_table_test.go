package game

import (
	"math"
	"testing"

	"github.com/playmatatu/poolsim/internal/config"
)

func TestNewTablePockets(t *testing.T) {
	table := NewTable(config.DefaultPhysics())

	want := []Vec2{
		NewVec2(-0.825, 0.425),
		NewVec2(0, 0.425),
		NewVec2(0.825, 0.425),
		NewVec2(0.825, -0.425),
		NewVec2(0, -0.425),
		NewVec2(-0.825, -0.425),
	}

	if len(table.Pockets) != NumPockets {
		t.Fatalf("Expected %d pockets, got %d", NumPockets, len(table.Pockets))
	}
	for i, pk := range table.Pockets {
		if pk.ID != i {
			t.Errorf("Pocket %d has ID %d", i, pk.ID)
		}
		if pk.Position.Minus(want[i]).Magnitude() > 1e-9 {
			t.Errorf("Pocket %d at %+v, want %+v", i, pk.Position, want[i])
		}
	}
}

func TestPocketAtReturnsLowestID(t *testing.T) {
	p := config.DefaultPhysics()
	p.PocketRadius = 1 // every pocket overlaps the centre
	table := NewTable(p)

	pk, ok := table.PocketAt(NewVec2(0, 0))
	if !ok || pk.ID != 0 {
		t.Errorf("Expected pocket 0, got %+v ok=%v", pk, ok)
	}

	table = NewTable(config.DefaultPhysics())
	if _, ok := table.PocketAt(NewVec2(0, 0)); ok {
		t.Errorf("Table centre should not be inside a pocket")
	}
}

func TestRackLayout(t *testing.T) {
	p := config.DefaultPhysics()
	table := NewTable(p)
	pos := Rack(p)

	if pos[CueBallID] != BreakSpot(p) {
		t.Errorf("Cue ball not on the break spot: %+v", pos[CueBallID])
	}

	// Apex ball sits on the apex, the 8-ball in the middle of the third row.
	if pos[1] != NewVec2(p.RackApexX, p.RackApexY) {
		t.Errorf("Apex ball at %+v", pos[1])
	}
	rowStep := p.BallRadius * p.RackSpacing * math.Sqrt(3) / 2
	if math.Abs(pos[EightBallID].X-(p.RackApexX+2*rowStep)) > 1e-12 || math.Abs(pos[EightBallID].Y) > 1e-12 {
		t.Errorf("8-ball at %+v", pos[EightBallID])
	}

	for i := 0; i < NumBalls; i++ {
		if !table.Contains(pos[i], p.BallRadius) {
			t.Errorf("Ball %d outside the table: %+v", i, pos[i])
		}
		if _, ok := table.PocketAt(pos[i]); ok {
			t.Errorf("Ball %d racked inside a pocket", i)
		}
		for j := i + 1; j < NumBalls; j++ {
			if d := pos[i].Minus(pos[j]).Magnitude(); d < 2*p.BallRadius {
				t.Errorf("Balls %d and %d overlap (d=%v)", i, j, d)
			}
		}
	}
}

func TestWrapAngle(t *testing.T) {
	cases := []struct {
		in, want float64
	}{
		{0, 0},
		{math.Pi / 2, math.Pi / 2},
		{3 * math.Pi / 2, -math.Pi / 2},
		{-5 * math.Pi / 2, -math.Pi / 2},
		{math.NaN(), 0},
		{math.Inf(1), 0},
	}

	for _, tc := range cases {
		if got := wrapAngle(tc.in); math.Abs(got-tc.want) > 1e-9 {
			t.Errorf("wrapAngle(%v) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestVec2Normalize(t *testing.T) {
	if !(Vec2{}).Normalize().IsZero() {
		t.Errorf("Zero vector should normalize to zero")
	}
	n := NewVec2(3, 4).Normalize()
	if math.Abs(n.Magnitude()-1) > 1e-12 || math.Abs(n.X-0.6) > 1e-12 {
		t.Errorf("Unexpected unit vector %+v", n)
	}
}
