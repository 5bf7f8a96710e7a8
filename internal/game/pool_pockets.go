package game

import "fmt"

// evaluatePockets captures every active ball whose centre lies inside a
// pocket, then applies the pocket rules. Balls are tested in ascending ID
// order against pockets in ascending ID order; a ball is captured at most
// once. The 8-ball rule runs after the other captures of the same tick so
// a suit ball dropped alongside it counts as cleared.
func (m *Match) evaluatePockets() {
	var eight *Ball
	var eightPocket Pocket

	for _, b := range m.Balls {
		if !b.Active {
			continue
		}
		pk, ok := m.Table.PocketAt(b.Position)
		if !ok {
			continue
		}

		b.Active = false
		b.Velocity = Vec2{}
		m.Pocketed = append(m.Pocketed, b.ID)

		if b.ID == EightBallID {
			eight, eightPocket = b, pk
			continue
		}
		m.pocketBall(b, pk)
	}

	if eight != nil {
		m.pocketBall(eight, eightPocket)
	}
}

func (m *Match) pocketBall(b *Ball, pk Pocket) {
	m.emit(Event{Type: EventPocket, Player: m.CurrentPlayer, BallID: b.ID, PocketID: pk.ID})

	switch b.Group {
	case GroupCue:
		m.scratch(pk)
	case GroupNeutral:
		m.pocketEight()
	default:
		m.pocketSuit(b)
	}
}

// scratch respawns the cue ball on the break spot and flags the foul.
func (m *Match) scratch(pk Pocket) {
	cue := m.Balls[CueBallID]
	cue.Position = BreakSpot(m.physics)
	cue.Velocity = Vec2{}
	cue.Active = true

	if m.GameOver {
		// A scratch after a winning 8-ball pot in the same turn still loses.
		if m.WinType == WinPocket8 && m.Winner == m.CurrentPlayer {
			m.Foul = true
			m.foulInfo = &FoulInfo{Type: FoulScratch, Message: "Cue ball pocketed"}
			m.loseOnEight(WinScratchOn8)
			m.emit(Event{Type: EventScratch, Player: m.CurrentPlayer, BallID: CueBallID, PocketID: pk.ID, Message: m.Message})
		}
		return
	}

	m.Foul = true
	if m.foulInfo == nil {
		m.foulInfo = &FoulInfo{Type: FoulScratch, Message: "Cue ball pocketed"}
	}
	m.Message = "Foul! Scratched the cue ball"
	m.emit(Event{Type: EventScratch, Player: m.CurrentPlayer, BallID: CueBallID, PocketID: pk.ID, Message: m.Message})
}

// pocketEight ends the match. The acting player wins only with suits
// assigned, their suit cleared and no foul this turn.
func (m *Match) pocketEight() {
	if m.GameOver {
		return
	}

	player := m.CurrentPlayer
	switch {
	case m.Foul:
		m.loseOnEight(WinScratchOn8)
	case !m.Suits.Assigned || !m.clearedSuit(player):
		m.foulInfo = &FoulInfo{Type: FoulIllegal8Ball, Message: "8-ball pocketed illegally"}
		m.loseOnEight(WinIllegal8Ball)
	default:
		m.GameOver = true
		m.Winner = player
		m.WinType = WinPocket8
		m.Message = fmt.Sprintf("Player %d wins by potting the black ball!", player)
	}
}

func (m *Match) loseOnEight(winType string) {
	player := m.CurrentPlayer
	m.GameOver = true
	m.Winner = opponent(player)
	m.WinType = winType
	if winType == WinScratchOn8 {
		m.Message = fmt.Sprintf("Player %d loses! Scratched on the black ball.", player)
		return
	}
	m.Message = fmt.Sprintf("Player %d loses! Potted the black ball too early.", player)
}

func (m *Match) pocketSuit(b *Ball) {
	if m.GameOver {
		return
	}

	if !m.Suits.Assigned {
		m.assignSuits(m.CurrentPlayer, b.Group)
	}

	owner := m.Suits.OwnerOf(b.Group)
	m.addScore(owner)
	if owner == m.CurrentPlayer {
		m.PottedOwn = true
		m.Message = "Good shot! Go again"
	} else {
		m.Message = "Potted opponent's ball"
	}
}

// assignSuits gives player the group g and the opponent its complement, and
// tags every suit ball with its owner. It runs once per rack.
func (m *Match) assignSuits(player int, g Group) {
	if m.Suits.Assigned || !g.IsSuit() {
		return
	}

	if player == Player1 {
		m.Suits = SuitAssignment{Assigned: true, Player1: g, Player2: g.Complement()}
	} else {
		m.Suits = SuitAssignment{Assigned: true, Player1: g.Complement(), Player2: g}
	}

	for _, b := range m.Balls {
		if b.Group.IsSuit() {
			b.Owner = m.Suits.OwnerOf(b.Group)
		}
	}

	m.suitsAssignedThisTurn = true
	m.Message = m.Suits.String()
	m.emit(Event{Type: EventSuitsAssigned, Player: player, Message: m.Message})
}

// clearedSuit reports whether player has no active ball of their suit left.
func (m *Match) clearedSuit(player int) bool {
	g := m.Suits.GroupOf(player)
	if !g.IsSuit() {
		return false
	}
	for _, b := range m.Balls {
		if b.Active && b.Group == g {
			return false
		}
	}
	return true
}

func (m *Match) addScore(player int) {
	if player == Player1 || player == Player2 {
		m.Scores[player-1]++
	}
}
