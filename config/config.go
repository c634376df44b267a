package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds everything the service reads from the environment. Loaded
// once at startup and treated as immutable afterwards.
type Config struct {
	// Server
	Port string

	// Database
	PostgresURI string

	// Redis (optional; session-status caching is skipped when unset)
	RedisAddr string

	// Auth
	JWTSecret string
	JWTTTL    time.Duration

	// Workflow webhook
	WebhookURL      string
	WebhookTimeout  time.Duration
	WebhookMaxTries int
	CallbackSecret  string

	// Outbox dispatcher
	DispatchWorkers  int
	DispatchInterval time.Duration

	// Resume uploads (optional; upload route disabled when bucket is unset)
	ResumeBucket string
}

// Load reads the environment. Missing required variables are reported
// together so a broken deployment fails with one actionable error.
func Load() (*Config, error) {
	cfg := &Config{}

	var missing []string
	required := func(key string) string {
		v := os.Getenv(key)
		if v == "" {
			missing = append(missing, key)
		}
		return v
	}

	cfg.PostgresURI = required("POSTGRES_URI")
	cfg.JWTSecret = required("JWT_SECRET")
	cfg.WebhookURL = required("N8N_WEBHOOK_URL")
	cfg.CallbackSecret = required("CALLBACK_SECRET")

	if len(missing) > 0 {
		return nil, fmt.Errorf("required environment variables are not set: %v", missing)
	}

	cfg.Port = os.Getenv("PORT")
	if cfg.Port == "" {
		cfg.Port = "8080"
	}

	cfg.RedisAddr = os.Getenv("REDIS_ADDR")
	cfg.ResumeBucket = os.Getenv("RESUME_BUCKET")

	cfg.JWTTTL = getEnvDuration("JWT_TTL", 24*time.Hour)
	cfg.WebhookTimeout = getEnvDuration("WEBHOOK_TIMEOUT", 30*time.Second)
	cfg.WebhookMaxTries = getEnvInt("WEBHOOK_MAX_TRIES", 5)
	cfg.DispatchWorkers = getEnvInt("DISPATCH_WORKERS", 2)
	cfg.DispatchInterval = getEnvDuration("DISPATCH_INTERVAL", 5*time.Second)

	return cfg, nil
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return def
}

func getEnvDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			return d
		}
	}
	return def
}
