package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("APP_ADDR", "")
	t.Setenv("AUTH_ACCESS_TTL", "")
	t.Setenv("CORS_ALLOWED_ORIGINS", "")

	c := Load()
	assert.Equal(t, ":8080", c.Addr)
	assert.Equal(t, 15*time.Minute, c.AccessTTL)
	assert.Equal(t, []string{"http://localhost:5173"}, c.CORSOrigins)
	assert.False(t, c.IsProduction())
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("APP_ENV", "Production")
	t.Setenv("AUTH_ACCESS_TTL", "5m")
	t.Setenv("RATE_LIMIT_BURST", "not-a-number")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, ,https://b.example")
	t.Setenv("AUTO_MIGRATE", "1")

	c := Load()
	assert.True(t, c.IsProduction())
	assert.Equal(t, 5*time.Minute, c.AccessTTL)
	assert.Equal(t, 40, c.RateLimitBurst)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, c.CORSOrigins)
	assert.True(t, c.AutoMigrate)
}

func TestLoadOptionalFeatures(t *testing.T) {
	t.Setenv("STATS_WARM_INTERVAL", "")
	t.Setenv("TLS_CERT_FILE", "")
	c := Load()
	assert.Zero(t, c.StatsWarmInterval)
	assert.Empty(t, c.TLSCertFile)

	t.Setenv("STATS_WARM_INTERVAL", "20s")
	t.Setenv("TLS_CERT_FILE", "cert.pem")
	t.Setenv("LOGIN_MAX_ATTEMPTS", "3")
	c = Load()
	assert.Equal(t, 20*time.Second, c.StatsWarmInterval)
	assert.Equal(t, "cert.pem", c.TLSCertFile)
	assert.Equal(t, 3, c.LoginMaxAttempts)
}
