package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("APP_ENV", "")
	t.Setenv("JWT_SECRET", "")
	cfg := Load()

	assert.Equal(t, "development", cfg.Env)
	assert.Equal(t, "postgres", cfg.StorageDriver)
	assert.Equal(t, 15*time.Minute, cfg.AccessTTL)
	assert.Equal(t, 168*time.Hour, cfg.RefreshTTL)
	assert.False(t, cfg.RefreshReuseRevokes)
	assert.Equal(t, 10, cfg.RateContactsMax)
	assert.False(t, cfg.RateBypassPrivate)
	require.NoError(t, cfg.Validate())
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("STORAGE_DRIVER", "Memory")
	t.Setenv("JWT_ACCESS_TTL", "5m")
	t.Setenv("RATE_LOGIN_MAX", "abc")
	t.Setenv("REFRESH_REUSE_REVOKES", "true")
	t.Setenv("CORS_ALLOWED_ORIGINS", " http://a.test, ,http://b.test")
	t.Setenv("TRUST_PROXY_HEADERS", "1")
	t.Setenv("LOG_LEVEL", "warn")
	t.Setenv("RATE_BYPASS_PRIVATE", "true")
	cfg := Load()

	assert.Equal(t, "memory", cfg.StorageDriver)
	assert.Equal(t, 5*time.Minute, cfg.AccessTTL)
	assert.Equal(t, 5, cfg.RateLoginMax)
	assert.True(t, cfg.RefreshReuseRevokes)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.CORSOrigins())
	assert.True(t, cfg.TrustProxyHeaders)
	assert.Equal(t, "warn", cfg.LogLevel)
	assert.True(t, cfg.RateBypassPrivate)
}

func TestValidate(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	base := func() *Config {
		c := Load()
		c.Env = "production"
		c.JWTSecret = "a-real-secret"
		return c
	}

	require.NoError(t, base().Validate())

	c := base()
	c.JWTSecret = devJWTSecret
	assert.ErrorContains(t, c.Validate(), "outside development")

	c = base()
	c.JWTSecret = ""
	assert.ErrorContains(t, c.Validate(), "JWT_SECRET is required")

	c = base()
	c.AccessTTL = 200 * time.Hour
	assert.ErrorContains(t, c.Validate(), "shorter")

	c = base()
	c.StorageDriver = "sqlite"
	assert.ErrorContains(t, c.Validate(), "STORAGE_DRIVER")
}
