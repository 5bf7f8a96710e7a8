package api

import (
	"log"

	"github.com/gin-gonic/gin"

	"github.com/playmatatu/poolsim/internal/api/handlers"
	"github.com/playmatatu/poolsim/internal/config"
	"github.com/playmatatu/poolsim/internal/game"
	"github.com/playmatatu/poolsim/internal/journal"
	"github.com/playmatatu/poolsim/internal/middleware"
	"github.com/playmatatu/poolsim/internal/ws"
)

// Deps are the services the routes are served from. Journal may be nil.
type Deps struct {
	Config  *config.Config
	Physics config.Physics
	Manager *game.Manager
	Hub     *ws.Hub
	Journal *journal.Journal
}

// SetupRoutes configures all API routes
func SetupRoutes(router *gin.Engine, d Deps) {
	cfg := d.Config
	router.Use(middleware.CORSMiddleware(cfg))

	if cfg.Environment != "production" {
		router.Use(func(c *gin.Context) {
			c.Header("Cache-Control", "no-store, no-cache, must-revalidate, max-age=0")
			c.Header("Pragma", "no-cache")
			c.Header("Expires", "0")
			c.Next()
		})
		log.Println("[DEV MODE] No-cache headers enabled for all routes")
	}

	control := middleware.ControlAuth(cfg)

	// API v1 group
	v1 := router.Group("/api/v1")
	{
		v1.GET("/health", handlers.HealthCheck(d.Manager))
		v1.GET("/config", handlers.GetConfig(cfg, d.Physics))
		v1.POST("/session", handlers.CreateSession(cfg))

		matches := v1.Group("/matches")
		{
			matches.GET("", handlers.ListMatches(d.Manager))
			matches.GET("/:id", handlers.GetMatch(d.Manager))
			matches.GET("/:id/shots", handlers.GetMatchShots(d.Journal))
			matches.GET("/:id/ws", middleware.WebSocketCORSCheck(cfg), control, handlers.HandleMatchWebSocket(d.Hub, d.Manager))

			matches.POST("", control, handlers.CreateMatch(d.Manager))
			matches.DELETE("/:id", control, handlers.DeleteMatch(d.Manager))
			matches.POST("/:id/aim", control, handlers.Aim(d.Manager))
			matches.POST("/:id/aim-at", control, handlers.AimAt(d.Manager))
			matches.POST("/:id/drag", control, handlers.BeginDrag(d.Manager))
			matches.POST("/:id/shoot", control, handlers.Shoot(d.Manager))
			matches.POST("/:id/reset", control, handlers.ResetMatch(d.Manager))
		}
	}
}
