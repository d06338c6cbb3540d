package domain

import (
	"slices"
	"time"

	"github.com/aussiebroadwan/passgate/pkg/jwtx"
)

// Client authentication methods.
const (
	AuthMethodSecretPost  = "client_secret_post"
	AuthMethodSecretBasic = "client_secret_basic"
	AuthMethodNone        = "none"
)

type Client struct {
	ID                string
	Name              string
	SecretHash        string // empty for public clients
	AuthMethods       []string
	GrantTypes        []string
	Scopes            []string
	AccessTokenTTL    time.Duration
	RefreshTokenTTL   time.Duration
	AccessTokenFormat jwtx.TokenFormat
	Protected         bool // seeded clients cannot be deleted
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// AllowsGrant reports whether the client may use the given grant.
func (c Client) AllowsGrant(kind GrantKind) bool {
	return slices.Contains(c.GrantTypes, kind.String())
}

// AllowsAuthMethod reports whether the client may authenticate with method.
func (c Client) AllowsAuthMethod(method string) bool {
	return slices.Contains(c.AuthMethods, method)
}
