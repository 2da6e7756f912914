package ratelimit

import (
	"os"
	"strconv"
	"time"
)

// Config holds rate limiting configuration.
type Config struct {
	Enabled         bool
	Limit           int           // requests per Window
	Window          time.Duration // refill window
	Burst           int           // bucket capacity; defaults to Limit
	CleanupInterval time.Duration
}

func defaultConfig() *Config {
	return &Config{
		Enabled:         true,
		Limit:           120,
		Window:          time.Minute,
		Burst:           120,
		CleanupInterval: 5 * time.Minute,
	}
}

// LoadConfig loads rate limiting configuration from environment variables:
// RATE_LIMIT_ENABLED, RATE_LIMIT_REQUESTS, RATE_LIMIT_WINDOW_SECONDS and
// RATE_LIMIT_BURST.
func LoadConfig() *Config {
	cfg := defaultConfig()

	cfg.Enabled = getEnvBool("RATE_LIMIT_ENABLED", cfg.Enabled)
	if !cfg.Enabled {
		return cfg
	}

	cfg.Limit = getEnvInt("RATE_LIMIT_REQUESTS", cfg.Limit)
	if seconds := getEnvInt("RATE_LIMIT_WINDOW_SECONDS", 0); seconds > 0 {
		cfg.Window = time.Duration(seconds) * time.Second
	}
	cfg.Burst = getEnvInt("RATE_LIMIT_BURST", cfg.Limit)

	return cfg
}

func getEnvBool(key string, fallback bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil || parsed <= 0 {
		return fallback
	}
	return parsed
}
