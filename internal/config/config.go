package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

type Config struct {
	// Database
	DatabaseURL string

	// Local progress checkpoint store (device-scoped, never synced)
	ProgressDBPath string

	// Web Server
	WebBind string

	// Session
	JWTSecret string

	// Discord leaderboard announcements (optional)
	DiscordToken           string
	DiscordAnnounceChannel string
}

func Load() (*Config, error) {
	// Load environment variables from .env if present (non-fatal if missing)
	_ = godotenv.Load()

	cfg := &Config{
		DatabaseURL:            os.Getenv("DATABASE_URL"),
		ProgressDBPath:         getEnvDefault("PROGRESS_DB_PATH", "progress.db"),
		WebBind:                getEnvDefault("WEB_BIND", "0.0.0.0:3000"),
		JWTSecret:              getEnvDefault("JWT_SECRET", "dev-only-change-me"),
		DiscordToken:           os.Getenv("DISCORD_TOKEN"),
		DiscordAnnounceChannel: os.Getenv("DISCORD_ANNOUNCE_CHANNEL"),
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	return cfg, nil
}

func getEnvDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
