package domain

import (
	"github.com/aussiebroadwan/passgate/pkg/secctx"
)

// GrantKind is the closed set of grants the token endpoint understands.
type GrantKind int

const (
	GrantUnknown GrantKind = iota
	GrantPassword
	GrantRefreshToken
)

// ParseGrantKind maps a grant_type form value onto a GrantKind.
func ParseGrantKind(s string) GrantKind {
	switch s {
	case "password":
		return GrantPassword
	case "refresh_token":
		return GrantRefreshToken
	default:
		return GrantUnknown
	}
}

// String returns the grant_type wire value.
func (k GrantKind) String() string {
	switch k {
	case GrantPassword:
		return "password"
	case GrantRefreshToken:
		return "refresh_token"
	default:
		return "unknown"
	}
}

// GrantRequest is a parsed token request. It is built once per request and
// never mutated afterwards.
type GrantRequest struct {
	Kind GrantKind

	// Client is the principal resolved by client authentication. It may be
	// nil or unauthenticated; the authenticator decides what that means.
	Client *secctx.Principal

	// Params holds every form field except grant_type and refresh_token.
	// Single values are strings, repeated values are []string.
	Params map[string]any

	RefreshToken string
}

// Param returns a single-valued parameter, or "" when it is absent or
// repeated.
func (r *GrantRequest) Param(name string) string {
	s, _ := r.Params[name].(string)
	return s
}
