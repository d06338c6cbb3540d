package app

import (
	"testing"
	"time"

	"github.com/aussiebroadwan/passgate/pkg/httpx"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("AUTH_EPHEMERAL_KEYS", "true")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	require.Equal(t, 12*time.Hour, cfg.AccessTokenTTL())
	require.Equal(t, 24*time.Hour, cfg.RefreshTokenTTL())
	require.Equal(t, []string{"user", "admin"}, cfg.ClientScopes)
	require.Equal(t, "public", cfg.ClientID)
	require.Equal(t, 2048, cfg.RSABits)
	require.Equal(t, time.Hour, cfg.HousekeepingInterval)
}

func TestLoadConfigOverrides(t *testing.T) {
	t.Setenv("AUTH_EPHEMERAL_KEYS", "true")
	t.Setenv("AUTH_ACCESS_TOKEN_TTL_SECONDS", "60")
	t.Setenv("AUTH_CLIENT_SCOPES", "read,write,admin")
	t.Setenv("SHUTDOWN_GRACE_PERIOD", "3s")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	require.Equal(t, time.Minute, cfg.AccessTokenTTL())
	require.Equal(t, []string{"read", "write", "admin"}, cfg.ClientScopes)
	require.Equal(t, 3*time.Second, cfg.ShutdownGracePeriod)
}

func TestLoadConfigRejectsMissingKeys(t *testing.T) {
	_, err := LoadConfig()
	require.ErrorContains(t, err, "AUTH_ENCRYPTION_PRIVATE_KEY")
	require.ErrorContains(t, err, "AUTH_SIGNING_PRIVATE_KEY")
}

func TestValidate(t *testing.T) {
	valid := func() Config {
		return Config{
			Issuer:                 "passgate",
			EphemeralKeys:          true,
			RSABits:                2048,
			AccessTokenTTLSeconds:  60,
			RefreshTokenTTLSeconds: 120,
			Workers:                2,
			ClientID:               "public",
			ClientScopes:           []string{"user"},
		}
	}
	require.NoError(t, valid().Validate())

	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"empty issuer", func(c *Config) { c.Issuer = "" }, "AUTH_ISSUER"},
		{"zero access ttl", func(c *Config) { c.AccessTokenTTLSeconds = 0 }, "AUTH_ACCESS_TOKEN_TTL_SECONDS"},
		{"negative refresh ttl", func(c *Config) { c.RefreshTokenTTLSeconds = -1 }, "AUTH_REFRESH_TOKEN_TTL_SECONDS"},
		{"weak rsa", func(c *Config) { c.RSABits = 1024 }, "AUTH_RSA_BITS"},
		{"no workers", func(c *Config) { c.Workers = 0 }, "AUTH_WORKERS"},
		{"no client id", func(c *Config) { c.ClientID = "" }, "AUTH_CLIENT_ID"},
		{"no client scopes", func(c *Config) { c.ClientScopes = nil }, "AUTH_CLIENT_SCOPES"},
		{"seed email only", func(c *Config) { c.SeedEmail = "a@example.com" }, "AUTH_SEED_EMAIL"},
		{"public key only", func(c *Config) { c.SigningPublicKey = "abc" }, "AUTH_SIGNING_PUBLIC_KEY"},
		{"negative rate limit", func(c *Config) { c.RateLimits.Moderate.Burst = -1 }, "RATELIMIT_MODERATE_"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)
			require.ErrorContains(t, cfg.Validate(), tt.want)
		})
	}
}

func TestLoadConfigRateLimits(t *testing.T) {
	t.Setenv("AUTH_EPHEMERAL_KEYS", "true")
	t.Setenv("RATELIMIT_STRICT_REQUESTS", "1000")
	t.Setenv("RATELIMIT_STRICT_BURST", "1000")
	t.Setenv("RATELIMIT_PUBLIC_WINDOW_SEC", "30")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	limits := cfg.Limits()
	require.Equal(t, httpx.RateLimitConfig{RequestsPerWindow: 1000, Window: httpx.StrictLimit.Window, Burst: 1000}, limits.Strict)
	require.Equal(t, httpx.ModerateLimit, limits.Moderate)
	require.Equal(t, httpx.LenientLimit, limits.Lenient)
	require.Equal(t, 30*time.Second, limits.Public.Window)
	require.Equal(t, httpx.PublicLimit.RequestsPerWindow, limits.Public.RequestsPerWindow)
}
