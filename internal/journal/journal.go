package journal

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/playmatatu/poolsim/internal/game"
	"github.com/playmatatu/poolsim/internal/models"
)

var ErrNotFound = errors.New("match not found in journal")

// Journal is an audit log of matches, racks and shots. It is a game.Observer;
// it never feeds state back into a match.
type Journal struct {
	db *sqlx.DB
}

func New(db *sqlx.DB) *Journal {
	return &Journal{db: db}
}

// OnEvent records ev. Failures are logged and otherwise ignored.
func (j *Journal) OnEvent(ctx context.Context, ev game.Event) {
	if err := j.Record(ctx, ev); err != nil {
		log.Printf("[DB] Failed to journal %s for match %s: %v", ev.Type, ev.MatchID, err)
	}
}

// Record writes the rows affected by one match event.
func (j *Journal) Record(ctx context.Context, ev game.Event) error {
	switch ev.Type {
	case game.EventReset:
		return j.inTx(ctx, func(tx *sqlx.Tx) error { return j.startRack(ctx, tx, ev) })
	case game.EventShot:
		return j.inTx(ctx, func(tx *sqlx.Tx) error { return j.recordShot(ctx, tx, ev) })
	case game.EventTurn, game.EventGameOver:
		if ev.Result == nil {
			return nil
		}
		return j.inTx(ctx, func(tx *sqlx.Tx) error { return j.resolveShot(ctx, tx, ev) })
	}
	// Pocket, scratch and suit events are carried in the shot result.
	return nil
}

func (j *Journal) inTx(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	tx, err := j.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}
	return tx.Commit()
}

func (j *Journal) exec(ctx context.Context, tx *sqlx.Tx, query string, args ...interface{}) error {
	_, err := tx.ExecContext(ctx, j.db.Rebind(query), args...)
	return err
}

func (j *Journal) startRack(ctx context.Context, tx *sqlx.Tx, ev game.Event) error {
	at := eventTime(ev)

	if err := j.exec(ctx, tx,
		`INSERT INTO matches (id, created_at, racks) VALUES (?, ?, ?) ON CONFLICT (id) DO NOTHING`,
		ev.MatchID, at, ev.Rack,
	); err != nil {
		return fmt.Errorf("insert match: %w", err)
	}

	if err := j.exec(ctx, tx,
		`INSERT INTO match_racks (match_id, rack, started_at) VALUES (?, ?, ?) ON CONFLICT (match_id, rack) DO NOTHING`,
		ev.MatchID, ev.Rack, at,
	); err != nil {
		return fmt.Errorf("insert rack: %w", err)
	}

	// A new rack reopens the match.
	if err := j.exec(ctx, tx,
		`UPDATE matches SET racks = ?, completed_at = NULL, winner = NULL, win_type = NULL,
		 player1_score = 0, player2_score = 0 WHERE id = ? AND racks < ?`,
		ev.Rack, ev.MatchID, ev.Rack,
	); err != nil {
		return fmt.Errorf("update match racks: %w", err)
	}
	return nil
}

func (j *Journal) recordShot(ctx context.Context, tx *sqlx.Tx, ev game.Event) error {
	res, err := tx.ExecContext(ctx, j.db.Rebind(
		`INSERT INTO match_shots (match_id, rack, shot_number, player, angle, power, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?) ON CONFLICT (match_id, rack, shot_number) DO NOTHING`),
		ev.MatchID, ev.Rack, ev.Shot, ev.Player, ev.Angle, ev.Power, eventTime(ev),
	)
	if err != nil {
		return fmt.Errorf("insert shot: %w", err)
	}
	inserted, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("insert shot: %w", err)
	}
	if inserted == 0 {
		// Replayed event; the counters already include it.
		return nil
	}

	if err := j.exec(ctx, tx,
		`UPDATE match_racks SET shots = ? WHERE match_id = ? AND rack = ?`,
		ev.Shot, ev.MatchID, ev.Rack,
	); err != nil {
		return fmt.Errorf("update rack shots: %w", err)
	}

	if err := j.exec(ctx, tx,
		`UPDATE matches SET shots = shots + 1 WHERE id = ?`,
		ev.MatchID,
	); err != nil {
		return fmt.Errorf("update match shots: %w", err)
	}
	return nil
}

func (j *Journal) resolveShot(ctx context.Context, tx *sqlx.Tx, ev game.Event) error {
	r := ev.Result
	at := eventTime(ev)

	data, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("marshal result: %w", err)
	}

	resultParam := "?"
	if j.db.DriverName() == "postgres" {
		resultParam = "CAST(? AS JSONB)"
	}
	if err := j.exec(ctx, tx,
		`UPDATE match_shots SET result = `+resultParam+`, resolved_at = ?
		 WHERE match_id = ? AND rack = ? AND shot_number = ?`,
		string(data), at, ev.MatchID, ev.Rack, r.ShotNumber,
	); err != nil {
		return fmt.Errorf("update shot result: %w", err)
	}

	if !r.GameOver {
		return j.exec(ctx, tx,
			`UPDATE match_racks SET player1_score = ?, player2_score = ? WHERE match_id = ? AND rack = ?`,
			r.Scores[0], r.Scores[1], ev.MatchID, ev.Rack,
		)
	}

	if err := j.exec(ctx, tx,
		`UPDATE match_racks SET player1_score = ?, player2_score = ?, completed_at = ?, winner = ?, win_type = ?
		 WHERE match_id = ? AND rack = ?`,
		r.Scores[0], r.Scores[1], at, r.Winner, r.WinType, ev.MatchID, ev.Rack,
	); err != nil {
		return fmt.Errorf("complete rack: %w", err)
	}

	if err := j.exec(ctx, tx,
		`UPDATE matches SET player1_score = ?, player2_score = ?, completed_at = ?, winner = ?, win_type = ?
		 WHERE id = ?`,
		r.Scores[0], r.Scores[1], at, r.Winner, r.WinType, ev.MatchID,
	); err != nil {
		return fmt.Errorf("complete match: %w", err)
	}

	log.Printf("[DB] Match %s rack %d completed: winner=%d (%s)", ev.MatchID, ev.Rack, r.Winner, r.WinType)
	return nil
}

// Match returns the journal row for id.
func (j *Journal) Match(ctx context.Context, id string) (*models.MatchRecord, error) {
	var rec models.MatchRecord
	err := j.db.GetContext(ctx, &rec, j.db.Rebind(
		`SELECT id, created_at, completed_at, racks, shots, winner, win_type, player1_score, player2_score
		 FROM matches WHERE id = ?`), id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// Racks returns every rack of a match in order.
func (j *Journal) Racks(ctx context.Context, matchID string) ([]models.RackRecord, error) {
	racks := []models.RackRecord{}
	err := j.db.SelectContext(ctx, &racks, j.db.Rebind(
		`SELECT match_id, rack, started_at, completed_at, shots, winner, win_type, player1_score, player2_score
		 FROM match_racks WHERE match_id = ? ORDER BY rack`), matchID)
	if err != nil {
		return nil, err
	}
	return racks, nil
}

// Shots returns every recorded shot of a match in play order.
func (j *Journal) Shots(ctx context.Context, matchID string) ([]models.ShotRecord, error) {
	shots := []models.ShotRecord{}
	err := j.db.SelectContext(ctx, &shots, j.db.Rebind(
		`SELECT id, match_id, rack, shot_number, player, angle, power, result, created_at, resolved_at
		 FROM match_shots WHERE match_id = ? ORDER BY rack, shot_number`), matchID)
	if err != nil {
		return nil, err
	}
	return shots, nil
}

func eventTime(ev game.Event) time.Time {
	if ev.Time.IsZero() {
		return time.Now().UTC()
	}
	return ev.Time.UTC()
}
