package jwtx

import (
	"crypto/rand"
	"encoding/base64"
	"slices"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Default lifetimes, matching the service configuration defaults.
const (
	DefaultAccessTokenTTL  = 12 * time.Hour
	DefaultRefreshTokenTTL = 24 * time.Hour
)

// Claims are the access-token claims. sub is the account id, aud the client.
type Claims struct {
	jwt.RegisteredClaims

	// Session ID, shared by every token of one login lineage.
	SID string `json:"sid,omitempty"`

	// Granted scopes, e.g. ["user"].
	Scopes []string `json:"scope,omitempty"`

	// Authorities of the account, e.g. ["ROLE_MEMBER"].
	Authorities []string `json:"authorities,omitempty"`

	ClientID string `json:"client_id,omitempty"`

	// Login name (email).
	Username string `json:"username,omitempty"`

	// Display name.
	Name string `json:"name,omitempty"`
}

// AccessClaimsParams is the input to NewAccessClaims.
type AccessClaimsParams struct {
	Subject     string
	SessionID   string
	ClientID    string
	Username    string
	Name        string
	Scopes      []string
	Authorities []string
	Issuer      string
	TTL         time.Duration
	Now         time.Time
}

// NewAccessClaims builds minimally-correct claims.
func NewAccessClaims(p AccessClaimsParams) Claims {
	var aud jwt.ClaimStrings
	if p.ClientID != "" {
		aud = jwt.ClaimStrings{p.ClientID}
	}

	return Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    p.Issuer,
			Subject:   p.Subject,
			Audience:  aud,
			IssuedAt:  jwt.NewNumericDate(p.Now),
			NotBefore: jwt.NewNumericDate(p.Now),
			ExpiresAt: jwt.NewNumericDate(p.Now.Add(p.TTL)),
			ID:        NewJTI(),
		},
		SID:         p.SessionID,
		Scopes:      slices.Clone(p.Scopes),
		Authorities: slices.Clone(p.Authorities),
		ClientID:    p.ClientID,
		Username:    p.Username,
		Name:        p.Name,
	}
}

// NewJTI returns a URL-safe random identifier for the "jti" claim.
func NewJTI() string {
	var b [20]byte
	_, _ = rand.Read(b[:])
	return base64.RawURLEncoding.EncodeToString(b[:])
}

// HasScope reports whether scope was granted.
func (c *Claims) HasScope(scope string) bool {
	return slices.Contains(c.Scopes, scope)
}

// ValidateIssuer checks if the issuer matches expected value.
func (c *Claims) ValidateIssuer(expected string) error {
	if expected == "" {
		return nil
	}
	if c.Issuer != expected {
		return ErrIssuer
	}
	return nil
}

// ValidateAudience checks if at least one expected audience is present.
func (c *Claims) ValidateAudience(expected []string) error {
	if len(expected) == 0 {
		return nil
	}
	for _, want := range expected {
		if slices.Contains(c.Audience, want) {
			return nil
		}
	}
	return ErrAudience
}

// ValidateExpiry ensures the token hasn't expired (exp) and isn't before nbf.
func (c *Claims) ValidateExpiry() error {
	return c.ValidateExpiryWithLeeway(0)
}

// ValidateExpiryWithLeeway adds a grace period for clock skew.
func (c *Claims) ValidateExpiryWithLeeway(leeway time.Duration) error {
	now := time.Now().UTC()

	if c.ExpiresAt != nil && now.After(c.ExpiresAt.Add(leeway)) {
		return ErrExpired
	}
	if c.NotBefore != nil && now.Before(c.NotBefore.Add(-leeway)) {
		return ErrNotYetValid
	}
	return nil
}
