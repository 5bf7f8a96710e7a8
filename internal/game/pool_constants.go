package game

// Ball and pocket layout for 8-ball. Physical tunables live in config.Physics.
const (
	NumBalls   = 16 // 0=cue, 1-7=solids, 8=eight, 9-15=stripes
	NumPockets = 6

	CueBallID   = 0
	EightBallID = 8

	NoPlayer = 0
	Player1  = 1
	Player2  = 2
)

// Win types reported in ShotResult and Snapshot.
const (
	WinPocket8      = "pocket_8"
	WinIllegal8Ball = "illegal_8ball"
	WinScratchOn8   = "scratch_on_8"
)

// Foul types.
const (
	FoulScratch      = "scratch"
	FoulIllegal8Ball = "illegal_8ball"
)

// opponent returns the other player id.
func opponent(player int) int {
	if player == Player1 {
		return Player2
	}
	return Player1
}
