package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	defaultPort          = "8080"
	defaultSweepInterval = 1 * time.Hour
	defaultRetention     = 24 * time.Hour
)

// loads configuration from environment variables
func LoadEnvironmentVariables() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		_ = err // not an error - production environments may not have .env file
	}

	cfg := &Config{
		Port:          os.Getenv("PORT"),
		Environment:   os.Getenv("ENVIRONMENT"),
		SweepInterval: defaultSweepInterval,
		Retention:     defaultRetention,
	}

	if cfg.Port == "" {
		cfg.Port = defaultPort
	}

	if cfg.Environment == "" {
		cfg.Environment = "development"
	}

	if origins := os.Getenv("ALLOWED_ORIGINS"); origins != "" {
		for _, origin := range strings.Split(origins, ",") {
			cfg.AllowedOrigins = append(cfg.AllowedOrigins, strings.TrimSpace(origin))
		}
	}

	if raw := os.Getenv("CHAT_SWEEP_INTERVAL"); raw != "" {
		interval, err := time.ParseDuration(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid CHAT_SWEEP_INTERVAL: %w", err)
		}

		cfg.SweepInterval = interval
	}

	if raw := os.Getenv("CHAT_RETENTION"); raw != "" {
		retention, err := time.ParseDuration(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid CHAT_RETENTION: %w", err)
		}

		cfg.Retention = retention
	}

	if cfg.Environment == "production" && len(cfg.AllowedOrigins) == 0 {
		return nil, fmt.Errorf("ALLOWED_ORIGINS environment variable is required in production")
	}

	return cfg, nil
}
