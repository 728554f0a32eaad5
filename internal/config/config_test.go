package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{
		"HTTP_ADDR", "ALLOWED_ORIGINS", "DATABASE_URL", "REDIS_URL",
		"JWT_SECRET", "JWT_EXPIRY", "APP_ENV", "OPENAI_API_KEY", "OPENAI_MODEL",
	} {
		t.Setenv(key, "")
	}

	cfg := Load()

	assert.Equal(t, ":4000", cfg.Address)
	assert.Equal(t, 7*24*time.Hour, cfg.JWTExpiry)
	assert.Equal(t, "gpt-4o-mini", cfg.OpenAIModel)
	assert.Empty(t, cfg.AllowedOrigins)
	assert.False(t, cfg.Production())
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("HTTP_ADDR", ":9090")
	t.Setenv("JWT_EXPIRY", "1h")
	t.Setenv("APP_ENV", "production")
	t.Setenv("ALLOWED_ORIGINS", "https://finmon.app, http://localhost:5173 ,")

	cfg := Load()

	assert.Equal(t, ":9090", cfg.Address)
	assert.Equal(t, time.Hour, cfg.JWTExpiry)
	assert.True(t, cfg.Production())
	assert.Equal(t, []string{"https://finmon.app", "http://localhost:5173"}, cfg.AllowedOrigins)
}

func TestLoad_InvalidExpiryFallsBack(t *testing.T) {
	t.Setenv("JWT_EXPIRY", "whenever")

	cfg := Load()
	assert.Equal(t, 7*24*time.Hour, cfg.JWTExpiry)
}

func TestUsingDefaultSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", defaultJWTSecret)
	assert.True(t, Load().UsingDefaultSecret())

	t.Setenv("JWT_SECRET", "some-other-properly-random-secret-value!")
	assert.False(t, Load().UsingDefaultSecret())
}
