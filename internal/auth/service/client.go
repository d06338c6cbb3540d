package service

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/aussiebroadwan/passgate/internal/auth/domain"
	"github.com/aussiebroadwan/passgate/internal/auth/store"
	"github.com/aussiebroadwan/passgate/pkg/cryptox"
	"github.com/aussiebroadwan/passgate/pkg/secctx"
	"github.com/aussiebroadwan/passgate/pkg/slogx"
)

type ClientService struct {
	Store store.Store
}

// Authenticate checks client credentials presented with method and returns
// the authenticated client principal. Every failure is ErrInvalidClient.
func (s *ClientService) Authenticate(ctx context.Context, clientID, secret, method string) (*secctx.Principal, error) {
	l := slogx.FromContext(ctx)

	client, err := s.Store.Clients().GetClientByID(ctx, clientID)
	if errors.Is(err, store.ErrNotFound) {
		l.Info("unknown client", "client_id", clientID)
		return nil, ErrInvalidClient
	}
	if err != nil {
		return nil, err
	}

	if !client.AllowsAuthMethod(method) {
		l.Info("client authentication method not allowed", "client_id", clientID, "method", method)
		return nil, ErrInvalidClient
	}

	switch method {
	case domain.AuthMethodNone:
		if client.SecretHash != "" {
			return nil, ErrInvalidClient
		}
	default:
		if secret == "" || client.SecretHash == "" || cryptox.VerifyPassword(secret, client.SecretHash) != nil {
			l.Info("client authentication failed", "client_id", clientID, "method", method)
			return nil, ErrInvalidClient
		}
	}

	return ClientPrincipal(client), nil
}

// ClientPrincipal wraps an authenticated client. The client record rides in
// Details for the grant authenticator.
func ClientPrincipal(c domain.Client) *secctx.Principal {
	authorities := make([]string, 0, len(c.Scopes))
	for _, scope := range c.Scopes {
		authorities = append(authorities, "SCOPE_"+scope)
	}

	return &secctx.Principal{
		Kind:          secctx.KindClient,
		ID:            c.ID,
		Name:          c.Name,
		Authorities:   authorities,
		Authenticated: true,
		Details:       c,
	}
}

// EnsureClient creates c with secret, or brings an existing client's secret
// and scopes in line with it.
func (s *ClientService) EnsureClient(ctx context.Context, c domain.Client, secret string) error {
	l := slogx.FromContext(ctx)

	existing, err := s.Store.Clients().GetClientByID(ctx, c.ID)
	switch {
	case errors.Is(err, store.ErrNotFound):
		if secret != "" {
			if c.SecretHash, err = cryptox.HashPassword(secret); err != nil {
				return fmt.Errorf("hash client secret: %w", err)
			}
		}
		if err := s.Store.Clients().CreateClient(ctx, c); err != nil {
			return err
		}
		l.Info("client created", "client_id", c.ID, "has_secret", secret != "")
		return nil
	case err != nil:
		return err
	}

	if secret != "" && (existing.SecretHash == "" || cryptox.VerifyPassword(secret, existing.SecretHash) != nil) {
		hash, err := cryptox.HashPassword(secret)
		if err != nil {
			return fmt.Errorf("hash client secret: %w", err)
		}
		if err := s.Store.Clients().UpdateClientSecretHash(ctx, c.ID, hash); err != nil {
			return err
		}
		l.Info("client secret updated", "client_id", c.ID)
	}

	if !slices.Equal(existing.Scopes, c.Scopes) {
		if err := s.Store.Clients().UpdateClientScopes(ctx, c.ID, c.Scopes); err != nil {
			return err
		}
		l.Info("client scopes updated", "client_id", c.ID, "scopes", c.Scopes)
	}
	return nil
}
