package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aegis-safety/backend/internal/config"
)

const testKey = "0123456789abcdef0123456789abcdef"

func TestLoadAuth(t *testing.T) {
	t.Run("fails without a signing key", func(t *testing.T) {
		t.Setenv("JWT_SIGNING_KEY", "")

		_, err := config.LoadAuth()
		assert.Error(t, err)
	})

	t.Run("rejects a short signing key", func(t *testing.T) {
		t.Setenv("JWT_SIGNING_KEY", "too-short")

		_, err := config.LoadAuth()
		assert.Error(t, err)
	})

	t.Run("applies defaults", func(t *testing.T) {
		t.Setenv("JWT_SIGNING_KEY", testKey)

		cfg, err := config.LoadAuth()
		require.NoError(t, err)

		assert.Equal(t, time.Hour, cfg.AccessTTL)
		assert.Equal(t, 7*24*time.Hour, cfg.RefreshTTL)
		assert.Equal(t, 24*time.Hour, cfg.VerificationTTL)
		assert.Equal(t, 5, cfg.MaxAttempts)
		assert.Equal(t, 30*time.Minute, cfg.LockoutDuration)
		assert.Equal(t, "aegis-safety", cfg.Issuer)
	})

	t.Run("reads overrides", func(t *testing.T) {
		t.Setenv("JWT_SIGNING_KEY", testKey)
		t.Setenv("JWT_ACCESS_TTL", "15m")
		t.Setenv("JWT_REFRESH_TTL", "48h")
		t.Setenv("MAX_LOGIN_ATTEMPTS", "3")

		cfg, err := config.LoadAuth()
		require.NoError(t, err)

		assert.Equal(t, 15*time.Minute, cfg.AccessTTL)
		assert.Equal(t, 48*time.Hour, cfg.RefreshTTL)
		assert.Equal(t, 3, cfg.MaxAttempts)
	})

	t.Run("rejects a refresh window shorter than access", func(t *testing.T) {
		t.Setenv("JWT_SIGNING_KEY", testKey)
		t.Setenv("JWT_ACCESS_TTL", "2h")
		t.Setenv("JWT_REFRESH_TTL", "1h")

		_, err := config.LoadAuth()
		assert.Error(t, err)
	})
}

func TestLoadGateway(t *testing.T) {
	t.Setenv("JWT_SIGNING_KEY", testKey)

	t.Run("applies defaults", func(t *testing.T) {
		cfg, err := config.LoadGateway()
		require.NoError(t, err)

		assert.Equal(t, ":8080", cfg.Listen)
		assert.Equal(t, "http://localhost:8081", cfg.UserServiceURL)
		assert.Equal(t, "http://localhost:8082", cfg.AlertServiceURL)
		assert.Contains(t, cfg.AllowPaths, "/api/auth/login")
		assert.Contains(t, cfg.AllowPaths, "/health")
	})

	t.Run("parses the allow-list override", func(t *testing.T) {
		t.Setenv("GATEWAY_ALLOW_PATHS", "/api/auth/login, /public ,")

		cfg, err := config.LoadGateway()
		require.NoError(t, err)

		assert.Equal(t, []string{"/api/auth/login", "/public"}, cfg.AllowPaths)
	})
}

func TestLoadUserService(t *testing.T) {
	t.Setenv("JWT_SIGNING_KEY", testKey)

	cfg, err := config.LoadUserService()
	require.NoError(t, err)

	assert.Equal(t, ":8081", cfg.Server.Listen)
	assert.Equal(t, "no-reply@aegis-safety.io", cfg.SMTP.From)
}
