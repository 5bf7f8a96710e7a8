package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/playmatatu/poolsim/internal/api"
	"github.com/playmatatu/poolsim/internal/config"
	"github.com/playmatatu/poolsim/internal/database"
	"github.com/playmatatu/poolsim/internal/events"
	"github.com/playmatatu/poolsim/internal/game"
	"github.com/playmatatu/poolsim/internal/journal"
	"github.com/playmatatu/poolsim/internal/migrations"
	"github.com/playmatatu/poolsim/internal/redis"
	"github.com/playmatatu/poolsim/internal/ws"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	// Initialize configuration
	cfg := config.Load()

	physics, err := config.LoadPhysics(cfg.PhysicsConfigPath)
	if err != nil {
		log.Fatalf("Failed to load physics config: %v", err)
	}
	log.Printf("[CONFIG] Table %.2fx%.2f, friction=%v, tick rate %d Hz", physics.TableWidth, physics.TableHeight, physics.Friction, cfg.TickRate)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	hub := ws.NewHub()
	go hub.Run(ctx)

	var observers []game.Observer

	// Match journal (optional)
	var j *journal.Journal
	if cfg.DatabaseURL != "" {
		db, err := database.Connect(cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("Failed to connect to database: %v", err)
		}
		defer db.Close()

		if cfg.MigrateOnStart {
			log.Println("[MIGRATE] Running DB migrations on startup...")
			if err := migrations.Run(db); err != nil {
				log.Fatalf("Failed to run migrations: %v", err)
			}
		}

		j = journal.New(db)
		observers = append(observers, j)
		log.Printf("[DB] Match journal enabled (%s)", db.DriverName())
	} else {
		log.Println("[DB] DATABASE_URL not set; match journal disabled")
	}

	// Match events over Redis (optional). With Redis, sockets are fed from the
	// channel so every instance sees every match; without it the hub listens
	// to sessions directly.
	if cfg.RedisURL != "" {
		rdb, err := redis.Connect(ctx, cfg.RedisURL)
		if err != nil {
			log.Fatalf("Failed to connect to Redis: %v", err)
		}
		defer rdb.Close()

		observers = append(observers, events.NewPublisher(rdb, cfg.EventsChannel))
		ws.StartEventSubscriber(ctx, rdb, cfg.EventsChannel, hub)
		log.Printf("[EVENTS] Publishing match events to %s", cfg.EventsChannel)
	} else {
		observers = append(observers, hub)
		log.Println("[EVENTS] REDIS_URL not set; events stay in process")
	}

	gm := game.NewManager(ctx, cfg, physics, observers...)
	game.StartIdleWorker(ctx, gm, cfg)

	// Set up Gin router
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.Default()
	api.SetupRoutes(router, api.Deps{
		Config:  cfg,
		Physics: physics,
		Manager: gm,
		Hub:     hub,
		Journal: j,
	})

	port := cfg.Port
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{Addr: ":" + port, Handler: router}

	go func() {
		log.Printf("Starting poolsim server on port %s", port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("HTTP shutdown error: %v", err)
	}
	gm.Shutdown()
}
