package domain

import (
	"github.com/aussiebroadwan/passgate/pkg/jwtx"
	"github.com/aussiebroadwan/passgate/pkg/secctx"
)

// TokenResult is the outcome of a successful grant. Tokens are all or
// nothing: a TokenResult always carries both.
type TokenResult struct {
	Client       *secctx.Principal
	AccessToken  *jwtx.IssuedToken
	RefreshToken *jwtx.IssuedToken
	Scopes       []string

	// AdditionalParameters is merged into the token response body.
	AdditionalParameters map[string]any
}

// Introspection is the RFC 7662 view of a token.
type Introspection struct {
	Active    bool
	Scopes    []string
	ClientID  string
	Username  string
	TokenType jwtx.TokenType
	Subject   string
	SessionID string
	IssuedAt  int64
	ExpiresAt int64
}
