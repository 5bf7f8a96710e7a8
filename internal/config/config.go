package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	// Environment
	Environment string

	// Database (postgres:// or sqlite3://). Empty disables the match journal.
	DatabaseURL    string
	MigrateOnStart bool

	// Redis. Empty disables match event publishing.
	RedisURL      string
	EventsChannel string

	// Server
	Port        string
	FrontendURL string

	// Simulation
	TickRate          int
	MaxMatches        int
	IntentQueueSize   int
	PhysicsConfigPath string

	// Idle reaper
	IdleMatchTimeoutMin int
	IdleSweepSeconds    int

	// Security
	JWTSecret          string
	ControlKeyHash     string
	SessionTokenTTLMin int
}

func Load() *Config {
	// Load .env file if it exists
	godotenv.Load()

	return &Config{
		// Environment
		Environment: getEnv("APP_ENV", "development"),

		// Database
		DatabaseURL:    getEnv("DATABASE_URL", ""),
		MigrateOnStart: getEnvBool("MIGRATE_ON_START", false),

		// Redis
		RedisURL:      getEnv("REDIS_URL", ""),
		EventsChannel: getEnv("EVENTS_CHANNEL", "match_events"),

		// Server
		Port:        getEnv("APP_PORT", "8080"),
		FrontendURL: getEnv("FRONTEND_URL", "http://localhost:5173"),

		// Simulation
		TickRate:          getEnvInt("TICK_RATE", 60),
		MaxMatches:        getEnvInt("MAX_MATCHES", 16),
		IntentQueueSize:   getEnvInt("INTENT_QUEUE_SIZE", 64),
		PhysicsConfigPath: getEnv("PHYSICS_CONFIG", ""),

		// Idle reaper
		IdleMatchTimeoutMin: getEnvInt("IDLE_MATCH_TIMEOUT_MINUTES", 30),
		IdleSweepSeconds:    getEnvInt("IDLE_SWEEP_SECONDS", 60),

		// Security
		JWTSecret:          getEnv("JWT_SECRET", "change-me-in-production"),
		ControlKeyHash:     getEnv("CONTROL_KEY_HASH", ""),
		SessionTokenTTLMin: getEnvInt("SESSION_TOKEN_TTL_MINUTES", 720),
	}
}

// ControlAuthEnabled reports whether intent routes require a bearer token.
func (c *Config) ControlAuthEnabled() bool {
	return c.ControlKeyHash != ""
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}
