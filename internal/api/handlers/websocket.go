package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/playmatatu/poolsim/internal/game"
	"github.com/playmatatu/poolsim/internal/ws"
)

// HandleMatchWebSocket streams snapshots and events of one match
func HandleMatchWebSocket(hub *ws.Hub, gm *game.Manager) gin.HandlerFunc {
	return hub.HandleWebSocket(gm)
}
