package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/playmatatu/poolsim/internal/game"
	"github.com/playmatatu/poolsim/internal/journal"
	"github.com/playmatatu/poolsim/internal/models"
)

type matchSummary struct {
	ID            string     `json:"id"`
	CreatedAt     time.Time  `json:"created_at"`
	LastActive    time.Time  `json:"last_active"`
	Rack          int        `json:"rack"`
	Phase         game.Phase `json:"phase"`
	CurrentPlayer int        `json:"current_player"`
	Scores        [2]int     `json:"scores"`
	ShotCount     int        `json:"shot_count"`
	GameOver      bool       `json:"game_over"`
	Winner        int        `json:"winner,omitempty"`
}

func summarize(s *game.Session) matchSummary {
	snap := s.Snapshot()
	return matchSummary{
		ID:            s.ID(),
		CreatedAt:     s.Created(),
		LastActive:    s.LastActive(),
		Rack:          snap.Rack,
		Phase:         snap.Phase,
		CurrentPlayer: snap.CurrentPlayer,
		Scores:        snap.Scores,
		ShotCount:     snap.ShotCount,
		GameOver:      snap.GameOver,
		Winner:        snap.Winner,
	}
}

// CreateMatch racks a new match and returns its first snapshot
func CreateMatch(gm *game.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		s, err := gm.Create()
		if err != nil {
			respondError(c, err)
			return
		}
		c.Header("X-Match-ID", s.ID())
		c.JSON(http.StatusCreated, s.Snapshot())
	}
}

// ListMatches returns a summary of every running match, oldest first
func ListMatches(gm *game.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		sessions := gm.List()
		out := make([]matchSummary, len(sessions))
		for i, s := range sessions {
			out[i] = summarize(s)
		}
		c.JSON(http.StatusOK, gin.H{"matches": out})
	}
}

// GetMatch returns the latest snapshot of a match
func GetMatch(gm *game.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		s, err := gm.Get(c.Param("id"))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, s.Snapshot())
	}
}

// DeleteMatch stops a match and discards it
func DeleteMatch(gm *game.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := gm.Close(c.Param("id")); err != nil {
			respondError(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}

type aimRequest struct {
	Angle    float64 `json:"angle"`
	Distance float64 `json:"distance" binding:"gte=0"`
}

type aimAtRequest struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Aim sets the cue angle and, while dragging, the pointer distance
func Aim(gm *game.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req aimRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid aim"})
			return
		}
		submit(c, gm, game.Intent{Kind: game.IntentAim, Angle: req.Angle, Distance: req.Distance})
	}
}

// AimAt points the cue from the cue ball toward a table position
func AimAt(gm *game.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req aimAtRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid aim point"})
			return
		}
		submit(c, gm, game.Intent{Kind: game.IntentAimAt, X: req.X, Y: req.Y})
	}
}

// BeginDrag starts pulling the cue back
func BeginDrag(gm *game.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		submit(c, gm, game.Intent{Kind: game.IntentBeginDrag})
	}
}

// Shoot releases the cue at the current angle and power
func Shoot(gm *game.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		submit(c, gm, game.Intent{Kind: game.IntentShoot})
	}
}

// ResetMatch re-racks the table
func ResetMatch(gm *game.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		submit(c, gm, game.Intent{Kind: game.IntentReset})
	}
}

type shotView struct {
	models.ShotRecord
	Result     json.RawMessage `json:"result,omitempty"`
	ResolvedAt *time.Time      `json:"resolved_at,omitempty"`
}

type matchView struct {
	models.MatchRecord
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	Winner      int64      `json:"winner,omitempty"`
}

// GetMatchShots returns the journal of a match, including finished ones
func GetMatchShots(j *journal.Journal) gin.HandlerFunc {
	return func(c *gin.Context) {
		if j == nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "match journal is not enabled"})
			return
		}

		ctx := c.Request.Context()
		id := c.Param("id")

		rec, err := j.Match(ctx, id)
		if errors.Is(err, journal.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		if err != nil {
			log.Printf("[DB] Match lookup failed for %s: %v", id, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to read journal"})
			return
		}

		shots, err := j.Shots(ctx, id)
		if err != nil {
			log.Printf("[DB] Shots lookup failed for %s: %v", id, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to read journal"})
			return
		}

		views := make([]shotView, len(shots))
		for i, s := range shots {
			views[i] = shotView{ShotRecord: s}
			if s.Result != nil {
				views[i].Result = json.RawMessage(*s.Result)
			}
			if s.ResolvedAt.Valid {
				t := s.ResolvedAt.Time
				views[i].ResolvedAt = &t
			}
		}

		match := matchView{MatchRecord: *rec, Winner: rec.Winner.Int64}
		if rec.CompletedAt.Valid {
			t := rec.CompletedAt.Time
			match.CompletedAt = &t
		}

		c.JSON(http.StatusOK, gin.H{"match": match, "shots": views})
	}
}
