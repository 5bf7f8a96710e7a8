package handlers

import (
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/playmatatu/poolsim/internal/auth"
	"github.com/playmatatu/poolsim/internal/config"
)

type createSessionRequest struct {
	ControlKey string `json:"control_key" binding:"required"`
}

// CreateSession exchanges the control key for a bearer token
func CreateSession(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !cfg.ControlAuthEnabled() {
			c.JSON(http.StatusNotFound, gin.H{"error": "control auth is not enabled"})
			return
		}

		var req createSessionRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "control_key required"})
			return
		}

		if err := auth.VerifyControlKey(cfg.ControlKeyHash, req.ControlKey); err != nil {
			log.Printf("[AUTH] Rejected control key from %s", c.ClientIP())
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid control key"})
			return
		}

		ttl := time.Duration(cfg.SessionTokenTTLMin) * time.Minute
		token, exp, err := auth.IssueToken(cfg.JWTSecret, ttl, time.Now())
		if err != nil {
			log.Printf("[AUTH] IssueToken error: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to issue token"})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"token":      token,
			"expires_at": exp.Format(time.RFC3339),
		})
	}
}
