package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the application configuration.
type Config struct {
	ServerPort   int
	DatabasePath string
	JWTSecret    string
	TokenTTL     time.Duration
	CORSOrigin   string
	RolloverCron string // empty disables the budget rollover job
}

// Load loads configuration from the environment (and a .env file when
// present) or sets defaults.
func Load() (*Config, error) {
	// Missing .env is fine; real env vars win either way.
	_ = godotenv.Load()

	port, err := strconv.Atoi(getEnv("PORT", "8080"))
	if err != nil {
		return nil, err
	}

	ttlHours, err := strconv.Atoi(getEnv("TOKEN_TTL_HOURS", "720"))
	if err != nil {
		return nil, err
	}

	return &Config{
		ServerPort:   port,
		DatabasePath: getEnv("DATABASE_PATH", "./fintrack.db"),
		JWTSecret:    getEnv("JWT_SECRET", "dev-secret-change-me"),
		TokenTTL:     time.Duration(ttlHours) * time.Hour,
		CORSOrigin:   getEnv("CORS_ORIGIN", "http://localhost:3000"),
		RolloverCron: getEnv("BUDGET_ROLLOVER", ""),
	}, nil
}

// Helper to get an environment variable with a default value.
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}
