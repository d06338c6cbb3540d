package authsdk

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/oauth2"
)

// expiryBuffer refreshes access tokens this long before they expire.
const expiryBuffer = 30 * time.Second

// Session represents an authenticated session with automatic token refresh.
// It is safe for concurrent use.
type Session struct {
	client *SDKClient
	ts     oauth2.TokenSource

	mu     sync.RWMutex
	user   *MemberSummary
	scopes map[string]bool
}

func newSession(ctx context.Context, client *SDKClient, tok *oauth2.Token) *Session {
	// The token source outlives the call that created it.
	octx := client.oauth2Context(context.WithoutCancel(ctx))
	src := client.oauth2Config(nil).TokenSource(octx, tok)

	resp := tokenResponse(tok)
	return &Session{
		client: client,
		ts:     oauth2.ReuseTokenSourceWithExpiry(tok, src, expiryBuffer),
		user:   resp.User,
		scopes: parseScopes(resp.Scope),
	}
}

// parseScopes parses a space-delimited scope string into a map for fast lookup.
func parseScopes(scopeStr string) map[string]bool {
	parts := strings.Fields(scopeStr)
	scopes := make(map[string]bool, len(parts))
	for _, scope := range parts {
		scopes[scope] = true
	}
	return scopes
}

// token returns a valid token, rotating the refresh token when the access
// token has expired.
func (s *Session) token() (*oauth2.Token, error) {
	tok, err := s.ts.Token()
	if err != nil {
		return nil, fmt.Errorf("failed to refresh token: %w", fromRetrieveError(err))
	}

	if scope, ok := tok.Extra("scope").(string); ok {
		s.mu.Lock()
		s.scopes = parseScopes(scope)
		s.mu.Unlock()
	}
	return tok, nil
}

// AccessToken returns a valid access token, refreshing it if needed.
func (s *Session) AccessToken() (string, error) {
	tok, err := s.token()
	if err != nil {
		return "", err
	}
	return tok.AccessToken, nil
}

// RefreshToken returns the current refresh token.
func (s *Session) RefreshToken() (string, error) {
	tok, err := s.token()
	if err != nil {
		return "", err
	}
	return tok.RefreshToken, nil
}

// User returns the member summary from the password grant, or nil for
// sessions started from a refresh token.
func (s *Session) User() *MemberSummary {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user
}

// HasScope returns true if the session has the specified scope.
func (s *Session) HasScope(scope string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.scopes[scope]
}

// HTTPClient returns a client that adds the bearer token to every request.
func (s *Session) HTTPClient(ctx context.Context) *http.Client {
	return oauth2.NewClient(s.client.oauth2Context(ctx), s.ts)
}

// Me returns the account behind the access token. Requires the user scope.
func (s *Session) Me(ctx context.Context) (*MemberSummary, error) {
	resp, err := s.doAuthRequest(ctx, http.MethodGet, "/auth/me", nil, nil)
	if err != nil {
		return nil, err
	}

	var out MemberSummary
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.user = &out
	s.mu.Unlock()
	return &out, nil
}

// Revoke revokes the current refresh token, invalidating this session.
func (s *Session) Revoke(ctx context.Context) error {
	refreshToken, err := s.RefreshToken()
	if err != nil {
		return err
	}
	if refreshToken == "" {
		return fmt.Errorf("no refresh token to revoke")
	}

	return s.client.RevokeToken(ctx, refreshToken, "refresh_token")
}
