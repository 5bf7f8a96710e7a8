package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/playmatatu/poolsim/internal/config"
)

// GetConfig returns the values a renderer needs to draw and pace a match
func GetConfig(cfg *config.Config, physics config.Physics) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"tick_rate":    cfg.TickRate,
			"control_auth": cfg.ControlAuthEnabled(),
			"physics":      physics,
		})
	}
}
