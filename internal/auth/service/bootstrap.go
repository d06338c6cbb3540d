package service

import (
	"context"
	"errors"
	"time"

	"github.com/aussiebroadwan/passgate/internal/auth/domain"
	"github.com/aussiebroadwan/passgate/internal/auth/store"
	"github.com/aussiebroadwan/passgate/pkg/jwtx"
	"github.com/aussiebroadwan/passgate/pkg/slogx"
)

// SeedConfig describes the client, and optionally the account, that must
// exist when the service starts.
type SeedConfig struct {
	ClientID     string
	ClientName   string
	ClientSecret string
	ClientScopes []string
	AccessTTL    time.Duration
	RefreshTTL   time.Duration
	TokenFormat  jwtx.TokenFormat

	AccountEmail    string
	AccountName     string
	AccountPassword string
}

type BootstrapService struct {
	Clients  *ClientService
	Accounts *AccountService
}

// Seed makes sure the configured client exists and, when AccountEmail is
// set, that the seed account exists. It is safe to run on every start.
func (s *BootstrapService) Seed(ctx context.Context, cfg SeedConfig) error {
	l := slogx.FromContext(ctx)

	methods := []string{domain.AuthMethodSecretPost, domain.AuthMethodSecretBasic}
	if cfg.ClientSecret == "" {
		methods = []string{domain.AuthMethodNone}
	}

	client := domain.Client{
		ID:                cfg.ClientID,
		Name:              cfg.ClientName,
		AuthMethods:       methods,
		GrantTypes:        []string{GrantPassword.String(), GrantRefreshToken.String()},
		Scopes:            cfg.ClientScopes,
		AccessTokenTTL:    cfg.AccessTTL,
		RefreshTokenTTL:   cfg.RefreshTTL,
		AccessTokenFormat: cfg.TokenFormat,
		Protected:         true,
	}
	if client.Name == "" {
		client.Name = client.ID
	}
	if client.AccessTokenFormat == "" {
		client.AccessTokenFormat = jwtx.FormatSelfContained
	}
	if err := s.Clients.EnsureClient(ctx, client, cfg.ClientSecret); err != nil {
		return err
	}

	if cfg.AccountEmail == "" {
		return nil
	}

	_, err := s.Accounts.Store.Accounts().GetAccountByEmail(ctx, cfg.AccountEmail)
	if err == nil {
		return nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return err
	}

	account, err := s.Accounts.CreateAccount(ctx, cfg.AccountEmail, cfg.AccountName, cfg.AccountPassword, true, []string{"ROLE_MEMBER"})
	if err != nil {
		return err
	}
	l.Info("seed account created", "account_id", account.ID)
	return nil
}
