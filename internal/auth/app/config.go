package app

import (
	"errors"
	"fmt"
	"time"

	"github.com/aussiebroadwan/passgate/pkg/cryptox"
	"github.com/aussiebroadwan/passgate/pkg/httpx"
	"github.com/caarlos0/env/v11"
)

type Config struct {
	Issuer string `env:"AUTH_ISSUER" envDefault:"https://dev.nobrain.cc"`

	// Password encryption pair (Base64 PKCS8 / PKIX). Kept apart from the
	// signing pair.
	EncryptionPrivateKey string `env:"AUTH_ENCRYPTION_PRIVATE_KEY"`
	EncryptionPublicKey  string `env:"AUTH_ENCRYPTION_PUBLIC_KEY"`

	// JWT signing pair (Base64 PKCS8 / PKIX).
	SigningPrivateKey string `env:"AUTH_SIGNING_PRIVATE_KEY"`
	SigningPublicKey  string `env:"AUTH_SIGNING_PUBLIC_KEY"`

	EphemeralKeys bool `env:"AUTH_EPHEMERAL_KEYS" envDefault:"false"`
	RSABits       int  `env:"AUTH_RSA_BITS"       envDefault:"2048"`

	AccessTokenTTLSeconds  int `env:"AUTH_ACCESS_TOKEN_TTL_SECONDS"  envDefault:"43200"`
	RefreshTokenTTLSeconds int `env:"AUTH_REFRESH_TOKEN_TTL_SECONDS" envDefault:"86400"`

	DatabaseFile string `env:"AUTH_DATABASE_FILE" envDefault:"auth.db"`
	PepperFile   string `env:"AUTH_PEPPER_FILE"   envDefault:"pepper"`
	Workers      int    `env:"AUTH_WORKERS"       envDefault:"4"`

	ClientID     string   `env:"AUTH_CLIENT_ID"     envDefault:"public"`
	ClientSecret string   `env:"AUTH_CLIENT_SECRET" envDefault:"public"`
	ClientScopes []string `env:"AUTH_CLIENT_SCOPES" envDefault:"user,admin" envSeparator:","`

	SeedEmail    string `env:"AUTH_SEED_EMAIL"`
	SeedPassword string `env:"AUTH_SEED_PASSWORD"`
	SeedName     string `env:"AUTH_SEED_NAME"`

	Env                  string        `env:"ENV"                   envDefault:"dev"`
	LogLevel             string        `env:"LOG_LEVEL"             envDefault:"info"`
	LogFormat            string        `env:"LOG_FORMAT"            envDefault:"json"`
	Port                 int           `env:"PORT"                  envDefault:"8080"`
	ShutdownGracePeriod  time.Duration `env:"SHUTDOWN_GRACE_PERIOD" envDefault:"10s"`
	HousekeepingInterval time.Duration `env:"HOUSEKEEPING_INTERVAL" envDefault:"1h"`

	RateLimits RateLimitsConfig `envPrefix:"RATELIMIT_"`
}

// RateLimitsConfig overrides the httpx profiles. Unset or zero values keep
// the profile default.
type RateLimitsConfig struct {
	Strict   RateLimitConfig `envPrefix:"STRICT_"`
	Moderate RateLimitConfig `envPrefix:"MODERATE_"`
	Lenient  RateLimitConfig `envPrefix:"LENIENT_"`
	Public   RateLimitConfig `envPrefix:"PUBLIC_"`
}

type RateLimitConfig struct {
	Requests  int `env:"REQUESTS"`
	WindowSec int `env:"WINDOW_SEC"`
	Burst     int `env:"BURST"`
}

func (c RateLimitConfig) apply(def httpx.RateLimitConfig) httpx.RateLimitConfig {
	return def.Override(c.Requests, time.Duration(c.WindowSec)*time.Second, c.Burst)
}

func (c RateLimitConfig) validate(name string) error {
	if c.Requests < 0 || c.WindowSec < 0 || c.Burst < 0 {
		return fmt.Errorf("RATELIMIT_%s_* values must not be negative", name)
	}
	return nil
}

// Limits returns the rate limit profiles the router applies.
func (c Config) Limits() httpx.RateLimits {
	def := httpx.DefaultRateLimits()
	return httpx.RateLimits{
		Strict:   c.RateLimits.Strict.apply(def.Strict),
		Moderate: c.RateLimits.Moderate.apply(def.Moderate),
		Lenient:  c.RateLimits.Lenient.apply(def.Lenient),
		Public:   c.RateLimits.Public.apply(def.Public),
	}
}

// LoadConfig reads the environment and validates the result.
func LoadConfig() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) AccessTokenTTL() time.Duration {
	return time.Duration(c.AccessTokenTTLSeconds) * time.Second
}

func (c Config) RefreshTokenTTL() time.Duration {
	return time.Duration(c.RefreshTokenTTLSeconds) * time.Second
}

// Validate rejects configurations the service must not start with.
func (c Config) Validate() error {
	var errs []error

	if c.Issuer == "" {
		errs = append(errs, errors.New("AUTH_ISSUER must not be empty"))
	}
	if c.AccessTokenTTLSeconds <= 0 {
		errs = append(errs, fmt.Errorf("AUTH_ACCESS_TOKEN_TTL_SECONDS must be positive, got %d", c.AccessTokenTTLSeconds))
	}
	if c.RefreshTokenTTLSeconds <= 0 {
		errs = append(errs, fmt.Errorf("AUTH_REFRESH_TOKEN_TTL_SECONDS must be positive, got %d", c.RefreshTokenTTLSeconds))
	}
	if c.RSABits < cryptox.MinRSABits {
		errs = append(errs, fmt.Errorf("AUTH_RSA_BITS must be at least %d", cryptox.MinRSABits))
	}
	if c.Workers < 1 {
		errs = append(errs, errors.New("AUTH_WORKERS must be at least 1"))
	}
	if c.ClientID == "" {
		errs = append(errs, errors.New("AUTH_CLIENT_ID must not be empty"))
	}
	if len(c.ClientScopes) == 0 {
		errs = append(errs, errors.New("AUTH_CLIENT_SCOPES must not be empty"))
	}
	if (c.SeedEmail == "") != (c.SeedPassword == "") {
		errs = append(errs, errors.New("AUTH_SEED_EMAIL and AUTH_SEED_PASSWORD must be set together"))
	}

	if !c.EphemeralKeys {
		if c.EncryptionPrivateKey == "" {
			errs = append(errs, errors.New("AUTH_ENCRYPTION_PRIVATE_KEY is required unless AUTH_EPHEMERAL_KEYS=true"))
		}
		if c.SigningPrivateKey == "" {
			errs = append(errs, errors.New("AUTH_SIGNING_PRIVATE_KEY is required unless AUTH_EPHEMERAL_KEYS=true"))
		}
	}
	for name, l := range map[string]RateLimitConfig{
		"STRICT":   c.RateLimits.Strict,
		"MODERATE": c.RateLimits.Moderate,
		"LENIENT":  c.RateLimits.Lenient,
		"PUBLIC":   c.RateLimits.Public,
	} {
		if err := l.validate(name); err != nil {
			errs = append(errs, err)
		}
	}
	if c.EncryptionPublicKey != "" && c.EncryptionPrivateKey == "" {
		errs = append(errs, errors.New("AUTH_ENCRYPTION_PUBLIC_KEY set without AUTH_ENCRYPTION_PRIVATE_KEY"))
	}
	if c.SigningPublicKey != "" && c.SigningPrivateKey == "" {
		errs = append(errs, errors.New("AUTH_SIGNING_PUBLIC_KEY set without AUTH_SIGNING_PRIVATE_KEY"))
	}

	return errors.Join(errs...)
}
