package jwtx

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aussiebroadwan/passgate/pkg/cryptox"
)

// TokenType selects which token a generator is asked for.
type TokenType int

const (
	TokenTypeAccess TokenType = iota + 1
	TokenTypeRefresh
)

func (t TokenType) String() string {
	switch t {
	case TokenTypeAccess:
		return "access_token"
	case TokenTypeRefresh:
		return "refresh_token"
	default:
		return "unknown"
	}
}

// TokenFormat is the access-token format a client is registered for.
type TokenFormat string

const (
	FormatSelfContained TokenFormat = "self-contained" // JWT
	FormatReference     TokenFormat = "reference"      // opaque
)

// TokenContext is everything a generator needs to mint one token.
type TokenContext struct {
	Type        TokenType
	Format      TokenFormat
	Subject     string
	Username    string
	Name        string
	ClientID    string
	SessionID   string
	Scopes      []string
	Authorities []string
	TTL         time.Duration
	Now         time.Time
}

// IssuedToken is a minted token value with its lifetime. Claims is set only
// for self-contained access tokens.
type IssuedToken struct {
	Value     string
	IssuedAt  time.Time
	ExpiresAt time.Time
	Claims    *Claims
}

// HasClaims reports whether the token exposes a claim set.
func (t *IssuedToken) HasClaims() bool {
	return t != nil && t.Claims != nil
}

// TokenGenerator mints a token for tc. A nil token with a nil error means
// the generator does not handle tc.
type TokenGenerator interface {
	Generate(ctx context.Context, tc TokenContext) (*IssuedToken, error)
}

// JWTGenerator mints self-contained RS256 access tokens.
type JWTGenerator struct {
	km *KeyManager
}

func NewJWTGenerator(km *KeyManager) *JWTGenerator { return &JWTGenerator{km: km} }

func (g *JWTGenerator) Generate(_ context.Context, tc TokenContext) (*IssuedToken, error) {
	if tc.Type != TokenTypeAccess || tc.Format != FormatSelfContained {
		return nil, nil
	}

	claims := NewAccessClaims(AccessClaimsParams{
		Subject:     tc.Subject,
		SessionID:   tc.SessionID,
		ClientID:    tc.ClientID,
		Username:    tc.Username,
		Name:        tc.Name,
		Scopes:      tc.Scopes,
		Authorities: tc.Authorities,
		Issuer:      g.km.Issuer(),
		TTL:         tc.TTL,
		Now:         tc.Now,
	})

	value, err := g.km.Signer().Sign(claims)
	if err != nil {
		return nil, fmt.Errorf("jwtx: sign access token: %w", err)
	}

	return &IssuedToken{
		Value:     value,
		IssuedAt:  claims.IssuedAt.Time,
		ExpiresAt: claims.ExpiresAt.Time,
		Claims:    &claims,
	}, nil
}

// OpaqueAccessGenerator mints reference access tokens for clients that are
// not registered for JWTs. They carry no claims and are resolved through
// introspection.
type OpaqueAccessGenerator struct{}

func (OpaqueAccessGenerator) Generate(_ context.Context, tc TokenContext) (*IssuedToken, error) {
	if tc.Type != TokenTypeAccess || tc.Format != FormatReference {
		return nil, nil
	}
	return opaque(tc)
}

// RefreshGenerator mints opaque refresh tokens.
type RefreshGenerator struct{}

func (RefreshGenerator) Generate(_ context.Context, tc TokenContext) (*IssuedToken, error) {
	if tc.Type != TokenTypeRefresh {
		return nil, nil
	}
	return opaque(tc)
}

func opaque(tc TokenContext) (*IssuedToken, error) {
	value, err := cryptox.GenerateToken(cryptox.TokenSize256)
	if err != nil {
		return nil, err
	}
	return &IssuedToken{
		Value:     value,
		IssuedAt:  tc.Now,
		ExpiresAt: tc.Now.Add(tc.TTL),
	}, nil
}

// DelegatingGenerator asks each generator in turn; the first non-nil token
// wins. It returns nil, nil when none handles the context.
type DelegatingGenerator struct {
	generators []TokenGenerator
}

// ErrNoTTL is returned for a token context without a positive lifetime.
var ErrNoTTL = errors.New("jwtx: token TTL must be positive")

func NewDelegatingGenerator(gens ...TokenGenerator) *DelegatingGenerator {
	return &DelegatingGenerator{generators: gens}
}

// NewTokenGenerator composes the JWT, opaque access and refresh generators.
func NewTokenGenerator(km *KeyManager) *DelegatingGenerator {
	return NewDelegatingGenerator(NewJWTGenerator(km), OpaqueAccessGenerator{}, RefreshGenerator{})
}

func (d *DelegatingGenerator) Generate(ctx context.Context, tc TokenContext) (*IssuedToken, error) {
	if tc.TTL <= 0 {
		return nil, ErrNoTTL
	}
	if tc.Now.IsZero() {
		tc.Now = time.Now().UTC()
	}
	// JWT numeric dates have second precision; keep the record in step.
	tc.Now = tc.Now.Truncate(time.Second)

	for _, g := range d.generators {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		tok, err := g.Generate(ctx, tc)
		if err != nil {
			return nil, err
		}
		if tok != nil {
			return tok, nil
		}
	}
	return nil, nil
}
