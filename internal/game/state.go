package game

// Phase is the turn state of a match.
type Phase string

const (
	PhaseAiming         Phase = "AIMING"
	PhaseBallsInMotion  Phase = "BALLS_IN_MOTION"
	PhaseTurnResolution Phase = "TURN_RESOLUTION" // transient, never observed in a snapshot
	PhaseGameOver       Phase = "GAME_OVER"
)

// AcceptsAim reports whether aim and shot intents are honoured in this phase.
func (p Phase) AcceptsAim() bool {
	return p == PhaseAiming
}
