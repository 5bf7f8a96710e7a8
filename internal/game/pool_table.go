package game

import (
	"math"

	"github.com/playmatatu/poolsim/internal/config"
)

// Pocket represents one of the 6 pockets on the table.
type Pocket struct {
	ID       int     `json:"id" msgpack:"id"`
	Position Vec2    `json:"position" msgpack:"position"`
	Radius   float64 `json:"radius" msgpack:"radius"` // capture radius
}

// Bounds is the playing area inside the cushions.
type Bounds struct {
	Left   float64 `json:"left" msgpack:"left"`
	Right  float64 `json:"right" msgpack:"right"`
	Bottom float64 `json:"bottom" msgpack:"bottom"`
	Top    float64 `json:"top" msgpack:"top"`
}

// Table holds the complete table geometry. It is centred on the origin and
// never changes after construction.
type Table struct {
	Width            float64  `json:"width" msgpack:"width"`
	Height           float64  `json:"height" msgpack:"height"`
	CushionThickness float64  `json:"cushion_thickness" msgpack:"cushion_thickness"`
	Pockets          []Pocket `json:"pockets" msgpack:"pockets"`
}

// NewTable creates the table and derives its six pockets: four corners and two
// side-middles, each centred half a cushion outside the playing area.
func NewTable(p config.Physics) *Table {
	hw := p.TableWidth / 2
	hh := p.TableHeight / 2
	off := p.CushionThickness / 2
	pr := p.PocketRadius

	pockets := []Pocket{
		{ID: 0, Position: NewVec2(-hw-off, hh+off), Radius: pr},  // top-left
		{ID: 1, Position: NewVec2(0, hh+off), Radius: pr},        // top-middle
		{ID: 2, Position: NewVec2(hw+off, hh+off), Radius: pr},   // top-right
		{ID: 3, Position: NewVec2(hw+off, -hh-off), Radius: pr},  // bottom-right
		{ID: 4, Position: NewVec2(0, -hh-off), Radius: pr},       // bottom-middle
		{ID: 5, Position: NewVec2(-hw-off, -hh-off), Radius: pr}, // bottom-left
	}

	return &Table{
		Width:            p.TableWidth,
		Height:           p.TableHeight,
		CushionThickness: p.CushionThickness,
		Pockets:          pockets,
	}
}

func (t *Table) Bounds() Bounds {
	return Bounds{
		Left:   -t.Width / 2,
		Right:  t.Width / 2,
		Bottom: -t.Height / 2,
		Top:    t.Height / 2,
	}
}

// Contains reports whether a ball of the given radius centred at p lies fully
// inside the playing area.
func (t *Table) Contains(p Vec2, radius float64) bool {
	b := t.Bounds()
	return p.X-radius >= b.Left && p.X+radius <= b.Right &&
		p.Y-radius >= b.Bottom && p.Y+radius <= b.Top
}

// PocketAt returns the first pocket (ascending ID) whose capture radius holds p.
func (t *Table) PocketAt(p Vec2) (Pocket, bool) {
	for _, pk := range t.Pockets {
		if p.Minus(pk.Position).Magnitude() < pk.Radius {
			return pk, true
		}
	}
	return Pocket{}, false
}

// rackOrder maps triangle slots (apex first, row by row) to ball ids.
// The 8-ball sits in the centre of the third row.
var rackOrder = [NumBalls - 1]int{1, 9, 2, 10, 8, 3, 11, 4, 12, 5, 6, 13, 14, 7, 15}

// Rack returns the initial positions for all 16 balls: cue ball on the break
// spot and a five-row triangle pointing at it from the apex.
func Rack(p config.Physics) [NumBalls]Vec2 {
	var pos [NumBalls]Vec2

	pos[CueBallID] = BreakSpot(p)

	spacing := p.BallRadius * p.RackSpacing
	rowStep := spacing * math.Sqrt(3) / 2

	slot := 0
	for row := 0; row < 5; row++ {
		for col := 0; col <= row; col++ {
			pos[rackOrder[slot]] = NewVec2(
				p.RackApexX+float64(row)*rowStep,
				p.RackApexY+(float64(col)-float64(row)/2)*spacing,
			)
			slot++
		}
	}

	return pos
}

// BreakSpot is where the cue ball starts and respawns after a scratch.
func BreakSpot(p config.Physics) Vec2 {
	return NewVec2(p.BreakSpotX, p.BreakSpotY)
}
