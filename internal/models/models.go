package models

import (
	"database/sql"
	"time"
)

// MatchRecord is one simulated match in the journal
type MatchRecord struct {
	ID           string        `db:"id" json:"id"`
	CreatedAt    time.Time     `db:"created_at" json:"created_at"`
	CompletedAt  sql.NullTime  `db:"completed_at" json:"-"`
	Racks        int           `db:"racks" json:"racks"`
	Shots        int           `db:"shots" json:"shots"`
	Winner       sql.NullInt64 `db:"winner" json:"-"`
	WinType      *string       `db:"win_type" json:"win_type,omitempty"`
	Player1Score int           `db:"player1_score" json:"player1_score"`
	Player2Score int           `db:"player2_score" json:"player2_score"`
}

// RackRecord is one rack (a reset starts a new one) of a match
type RackRecord struct {
	MatchID      string        `db:"match_id" json:"match_id"`
	Rack         int           `db:"rack" json:"rack"`
	StartedAt    time.Time     `db:"started_at" json:"started_at"`
	CompletedAt  sql.NullTime  `db:"completed_at" json:"-"`
	Shots        int           `db:"shots" json:"shots"`
	Winner       sql.NullInt64 `db:"winner" json:"-"`
	WinType      *string       `db:"win_type" json:"win_type,omitempty"`
	Player1Score int           `db:"player1_score" json:"player1_score"`
	Player2Score int           `db:"player2_score" json:"player2_score"`
}

// ShotRecord is a committed shot and, once the balls stopped, its outcome
type ShotRecord struct {
	ID         int64        `db:"id" json:"id"`
	MatchID    string       `db:"match_id" json:"match_id"`
	Rack       int          `db:"rack" json:"rack"`
	ShotNumber int          `db:"shot_number" json:"shot_number"`
	Player     int          `db:"player" json:"player"`
	Angle      float64      `db:"angle" json:"angle"`
	Power      float64      `db:"power" json:"power"`
	Result     *string      `db:"result" json:"-"`
	CreatedAt  time.Time    `db:"created_at" json:"created_at"`
	ResolvedAt sql.NullTime `db:"resolved_at" json:"-"`
}
