package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "0.0.0.0:8080", cfg.HTTP.Addr())
	assert.Equal(t, 15*time.Second, cfg.HTTP.Timeout)
	assert.Equal(t, "5432", cfg.Postgres.Port)
	assert.False(t, cfg.Kafka.Enabled())
	assert.False(t, cfg.S3.Enabled())
	assert.Equal(t, "secret", cfg.JWTSecret())
	assert.Equal(t, 40, cfg.RateLimit.Burst)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("HTTP_PORT", "9000")
	t.Setenv("KAFKA_HOST", "kafka")
	t.Setenv("KAFKA_TOPIC", "comments")
	t.Setenv("S3_BUCKET", "files")
	t.Setenv("RATE_LIMIT_RPS", "2.5")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "0.0.0.0:9000", cfg.HTTP.Addr())
	assert.True(t, cfg.Kafka.Enabled())
	assert.Equal(t, "comments", cfg.Kafka.Topic)
	assert.True(t, cfg.S3.Enabled())
	assert.InDelta(t, 2.5, cfg.RateLimit.RPS, 0.0001)
}

func TestValidate(t *testing.T) {
	cfg := &Config{
		HTTP:      HTTPConfig{Port: "8080"},
		Postgres:  PostgresConfig{Host: "db", Database: "backoffice"},
		RateLimit: RateLimitConfig{RPS: 1, Burst: 1},
	}
	assert.ErrorContains(t, cfg.Validate(), "JWT_SECRET")

	cfg.Debug = true
	assert.NoError(t, cfg.Validate())
	assert.Equal(t, DebugJWTSecret, cfg.JWTSecret())

	cfg.RateLimit.Burst = 0
	assert.ErrorContains(t, cfg.Validate(), "RATE_LIMIT")
}
