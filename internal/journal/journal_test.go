package journal

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/playmatatu/poolsim/internal/config"
	"github.com/playmatatu/poolsim/internal/database"
	"github.com/playmatatu/poolsim/internal/game"
	"github.com/playmatatu/poolsim/internal/migrations"
)

func newTestDB(t *testing.T) *sqlx.DB {
	t.Helper()
	db, err := database.Connect("sqlite3://:memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, migrations.Run(db))
	return db
}

// playRack feeds a two-shot rack that player 2 loses on an early 8-ball.
func playRack(t *testing.T, ctx context.Context, j *Journal, matchID string, rack int) {
	t.Helper()
	start := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	events := []game.Event{
		{Type: game.EventReset, MatchID: matchID, Rack: rack, Player: game.Player1, Time: start},
		{Type: game.EventShot, MatchID: matchID, Rack: rack, Shot: 1, Player: game.Player1, Angle: 0.25, Power: 0.04, Time: start.Add(time.Second)},
		{Type: game.EventPocket, MatchID: matchID, Rack: rack, Shot: 1, BallID: 3},
		{Type: game.EventTurn, MatchID: matchID, Rack: rack, Shot: 1, Player: game.Player2, Time: start.Add(3 * time.Second),
			Result: &game.ShotResult{ShotNumber: 1, Player: game.Player1, PocketedBalls: []int{3}, TurnChange: true, NextTurn: game.Player2, Scores: [2]int{1, 0}}},
		{Type: game.EventShot, MatchID: matchID, Rack: rack, Shot: 2, Player: game.Player2, Angle: -1.5, Power: 0.05, Time: start.Add(5 * time.Second)},
		{Type: game.EventGameOver, MatchID: matchID, Rack: rack, Shot: 2, Player: game.Player1, Time: start.Add(8 * time.Second),
			Result: &game.ShotResult{ShotNumber: 2, Player: game.Player2, PocketedBalls: []int{8}, GameOver: true, Winner: game.Player1, WinType: game.WinIllegal8Ball, Scores: [2]int{1, 0}}},
	}

	for _, ev := range events {
		require.NoError(t, j.Record(ctx, ev), "event %s", ev.Type)
	}
}

func TestJournalRecordsMatch(t *testing.T) {
	ctx := context.Background()
	j := New(newTestDB(t))

	playRack(t, ctx, j, "m-1", 1)

	rec, err := j.Match(ctx, "m-1")
	require.NoError(t, err)
	assert.Equal(t, 1, rec.Racks)
	assert.Equal(t, 2, rec.Shots)
	assert.True(t, rec.CompletedAt.Valid)
	assert.Equal(t, int64(game.Player1), rec.Winner.Int64)
	require.NotNil(t, rec.WinType)
	assert.Equal(t, game.WinIllegal8Ball, *rec.WinType)
	assert.Equal(t, 1, rec.Player1Score)

	shots, err := j.Shots(ctx, "m-1")
	require.NoError(t, err)
	require.Len(t, shots, 2)
	assert.Equal(t, 1, shots[0].ShotNumber)
	assert.Equal(t, game.Player1, shots[0].Player)
	assert.InDelta(t, 0.25, shots[0].Angle, 1e-12)
	assert.True(t, shots[0].ResolvedAt.Valid)

	require.NotNil(t, shots[1].Result)
	var result game.ShotResult
	require.NoError(t, json.Unmarshal([]byte(*shots[1].Result), &result))
	assert.True(t, result.GameOver)
	assert.Equal(t, []int{8}, result.PocketedBalls)

	racks, err := j.Racks(ctx, "m-1")
	require.NoError(t, err)
	require.Len(t, racks, 1)
	assert.Equal(t, 2, racks[0].Shots)
	assert.True(t, racks[0].CompletedAt.Valid)
}

func TestJournalNewRackReopensMatch(t *testing.T) {
	ctx := context.Background()
	j := New(newTestDB(t))

	playRack(t, ctx, j, "m-2", 1)
	require.NoError(t, j.Record(ctx, game.Event{Type: game.EventReset, MatchID: "m-2", Rack: 2, Time: time.Now()}))

	rec, err := j.Match(ctx, "m-2")
	require.NoError(t, err)
	assert.Equal(t, 2, rec.Racks)
	assert.False(t, rec.CompletedAt.Valid)
	assert.False(t, rec.Winner.Valid)
	assert.Equal(t, 2, rec.Shots, "shot total spans racks")

	racks, err := j.Racks(ctx, "m-2")
	require.NoError(t, err)
	assert.Len(t, racks, 2)
}

func TestJournalIsIdempotentForRepeatedEvents(t *testing.T) {
	ctx := context.Background()
	j := New(newTestDB(t))

	reset := game.Event{Type: game.EventReset, MatchID: "m-3", Rack: 1, Time: time.Now()}
	require.NoError(t, j.Record(ctx, reset))
	require.NoError(t, j.Record(ctx, reset))

	shot := game.Event{Type: game.EventShot, MatchID: "m-3", Rack: 1, Shot: 1, Player: 1, Power: 0.01}
	require.NoError(t, j.Record(ctx, shot))
	require.NoError(t, j.Record(ctx, shot))

	shots, err := j.Shots(ctx, "m-3")
	require.NoError(t, err)
	assert.Len(t, shots, 1)

	rec, err := j.Match(ctx, "m-3")
	require.NoError(t, err)
	assert.Equal(t, 1, rec.Shots, "replayed shot counted twice")

	racks, err := j.Racks(ctx, "m-3")
	require.NoError(t, err)
	require.Len(t, racks, 1)
	assert.Equal(t, 1, racks[0].Shots)
}

func TestJournalMatchNotFound(t *testing.T) {
	j := New(newTestDB(t))

	_, err := j.Match(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	shots, err := j.Shots(context.Background(), "missing")
	require.NoError(t, err)
	assert.Empty(t, shots)
}

func TestJournalRecordsLiveMatch(t *testing.T) {
	ctx := context.Background()
	j := New(newTestDB(t))

	m := game.NewMatch("live", config.DefaultPhysics())
	j.OnEvent(ctx, game.Event{Type: game.EventReset, MatchID: m.ID, Rack: m.Rack, Time: time.Now()})

	m.BeginDrag()
	m.SetAim(0, 0.05)
	require.True(t, m.CommitShot())
	for i := 0; i < 20000; i++ {
		res := m.Tick()
		for _, ev := range res.Events {
			j.OnEvent(ctx, ev)
		}
		if res.Result != nil {
			break
		}
	}

	shots, err := j.Shots(ctx, "live")
	require.NoError(t, err)
	require.Len(t, shots, 1)
	assert.NotNil(t, shots[0].Result, "break shot should be resolved")
}
