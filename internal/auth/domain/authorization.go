package domain

import (
	"time"

	"github.com/aussiebroadwan/passgate/pkg/jwtx"
)

// AuthorizationRecord binds an issued token pair to the client and account
// it was issued for. Token values are stored as fingerprints only.
type AuthorizationRecord struct {
	ID            string
	ClientID      string
	AccountID     string
	PrincipalName string
	GrantType     GrantKind
	Scopes        []string
	SessionID     string
	AccessToken   TokenMetadata
	RefreshToken  TokenMetadata
	CreatedAt     time.Time
}

// TokenMetadata describes one issued token.
type TokenMetadata struct {
	Hash      string
	IssuedAt  time.Time
	ExpiresAt time.Time

	// Claims is set only for self-contained tokens.
	Claims *jwtx.Claims

	Invalidated bool
}

// Active reports whether the token is neither invalidated nor expired.
func (m TokenMetadata) Active(now time.Time) bool {
	return !m.Invalidated && now.Before(m.ExpiresAt)
}

// Lookup returns the metadata and type of the token with the given
// fingerprint, if it belongs to this record.
func (r *AuthorizationRecord) Lookup(hash string) (TokenMetadata, jwtx.TokenType, bool) {
	switch hash {
	case "":
		return TokenMetadata{}, 0, false
	case r.AccessToken.Hash:
		return r.AccessToken, jwtx.TokenTypeAccess, true
	case r.RefreshToken.Hash:
		return r.RefreshToken, jwtx.TokenTypeRefresh, true
	default:
		return TokenMetadata{}, 0, false
	}
}
