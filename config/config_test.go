package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("POSTGRES_URI", "postgres://localhost:5432/mockly")
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("N8N_WEBHOOK_URL", "http://workflow.local/webhook")
	t.Setenv("CALLBACK_SECRET", "callback-secret")
}

func TestLoadDefaults(t *testing.T) {
	setRequired(t)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, 24*time.Hour, cfg.JWTTTL)
	assert.Equal(t, 30*time.Second, cfg.WebhookTimeout)
	assert.Equal(t, 5, cfg.WebhookMaxTries)
	assert.Equal(t, 2, cfg.DispatchWorkers)
	assert.Equal(t, 5*time.Second, cfg.DispatchInterval)
	assert.Empty(t, cfg.RedisAddr)
	assert.Empty(t, cfg.ResumeBucket)
}

func TestLoadReportsAllMissingVars(t *testing.T) {
	t.Setenv("POSTGRES_URI", "")
	t.Setenv("JWT_SECRET", "")
	t.Setenv("N8N_WEBHOOK_URL", "http://workflow.local/webhook")
	t.Setenv("CALLBACK_SECRET", "")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "POSTGRES_URI")
	assert.Contains(t, err.Error(), "JWT_SECRET")
	assert.Contains(t, err.Error(), "CALLBACK_SECRET")
	assert.NotContains(t, err.Error(), "N8N_WEBHOOK_URL")
}

func TestLoadOverrides(t *testing.T) {
	setRequired(t)
	t.Setenv("PORT", "9090")
	t.Setenv("JWT_TTL", "1h")
	t.Setenv("WEBHOOK_MAX_TRIES", "8")
	t.Setenv("DISPATCH_INTERVAL", "250ms")
	t.Setenv("REDIS_ADDR", "localhost:6379")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, time.Hour, cfg.JWTTTL)
	assert.Equal(t, 8, cfg.WebhookMaxTries)
	assert.Equal(t, 250*time.Millisecond, cfg.DispatchInterval)
	assert.Equal(t, "localhost:6379", cfg.RedisAddr)
}

func TestLoadIgnoresGarbageNumbers(t *testing.T) {
	setRequired(t)
	t.Setenv("WEBHOOK_MAX_TRIES", "not-a-number")
	t.Setenv("JWT_TTL", "-5m")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 5, cfg.WebhookMaxTries)
	assert.Equal(t, 24*time.Hour, cfg.JWTTTL)
}
