package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/playmatatu/poolsim/internal/game"
)

// respondError maps a game error to an HTTP status and JSON body.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, game.ErrMatchNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, game.ErrIntentQueueFull), errors.Is(err, game.ErrTooManyMatches):
		c.JSON(http.StatusTooManyRequests, gin.H{"error": err.Error()})
	case errors.Is(err, game.ErrSessionClosed):
		c.JSON(http.StatusGone, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

// submit queues in on the match named by the :id path parameter.
func submit(c *gin.Context, gm *game.Manager, in game.Intent) {
	s, err := gm.Get(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	if err := s.Submit(in); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"status": "queued", "intent": in.Kind})
}
