package validate

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/5w1tchy/library-api/internal/config"
)

// Env validates configuration required for auth and storage.
// Fail-fast on bad config.
func Env(c config.Config) error {
	if len(c.JWTSecret) < 32 {
		return errors.New("AUTH_JWT_SECRET must be at least 32 characters")
	}
	if strings.TrimSpace(c.DatabaseURL) == "" {
		return errors.New("DATABASE_URL must be set")
	}
	if c.AccessTTL >= c.RefreshTTL {
		return fmt.Errorf("AUTH_ACCESS_TTL (%s) must be shorter than AUTH_REFRESH_TTL (%s)", c.AccessTTL, c.RefreshTTL)
	}
	return nil
}

// HardeningWarnings returns non-fatal warnings worth logging on startup.
func HardeningWarnings(c config.Config) []string {
	var warns []string

	if c.AccessTTL > time.Hour {
		warns = append(warns, fmt.Sprintf("AUTH_ACCESS_TTL=%s is > 1h; consider shorter access tokens", c.AccessTTL))
	}
	if c.RedisURL == "" {
		warns = append(warns, "REDIS_URL not set; statistics cache and refresh-token rotation denylist are disabled")
	}

	if c.IsProduction() {
		if strings.HasPrefix(c.RedisURL, "redis://") {
			warns = append(warns, "REDIS_URL uses redis:// (no TLS). Prefer rediss:// for TLS")
		}
		if strings.Contains(c.DatabaseURL, "sslmode=disable") {
			warns = append(warns, "DATABASE_URL disables TLS in production")
		}
		for _, o := range c.CORSOrigins {
			if strings.HasPrefix(o, "http://localhost") || strings.HasPrefix(o, "http://127.0.0.1") {
				warns = append(warns, "CORS_ALLOWED_ORIGINS contains a localhost origin in production")
				break
			}
		}
	}
	return warns
}
