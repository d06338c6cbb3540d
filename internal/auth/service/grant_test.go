package service_test

import (
	"context"
	"net/url"
	"testing"

	"github.com/aussiebroadwan/passgate/internal/auth/domain"
	"github.com/aussiebroadwan/passgate/internal/auth/service"
	"github.com/aussiebroadwan/passgate/pkg/secctx"
	"github.com/stretchr/testify/require"
)

func TestParseGrantKind(t *testing.T) {
	require.Equal(t, service.GrantPassword, service.ParseGrantKind("password"))
	require.Equal(t, service.GrantRefreshToken, service.ParseGrantKind("refresh_token"))
	require.Equal(t, service.GrantUnknown, service.ParseGrantKind("authorization_code"))
	require.Equal(t, service.GrantUnknown, service.ParseGrantKind("PASSWORD"))
	require.Equal(t, "refresh_token", service.GrantRefreshToken.String())
}

func TestExtractorChain(t *testing.T) {
	client := &secctx.Principal{Kind: secctx.KindClient, ID: "public", Authenticated: true}
	ctx := secctx.WithPrincipal(context.Background(), client)
	chain := service.DefaultExtractors()

	tests := []struct {
		name    string
		form    url.Values
		want    *domain.GrantRequest
		wantErr error
	}{
		{
			name: "password",
			form: url.Values{
				"grant_type": {"password"},
				"username":   {"member@example.com"},
				"password":   {"ciphertext"},
				"scope":      {"user"},
				"client_id":  {"public"},
			},
			want: &domain.GrantRequest{
				Kind:   service.GrantPassword,
				Client: client,
				Params: map[string]any{
					"username":  "member@example.com",
					"password":  "ciphertext",
					"scope":     "user",
					"client_id": "public",
				},
			},
		},
		{
			name: "password with blank username is left to the authenticator",
			form: url.Values{"grant_type": {"password"}, "username": {""}, "password": {"x"}},
			want: &domain.GrantRequest{
				Kind:   service.GrantPassword,
				Client: client,
				Params: map[string]any{"username": "", "password": "x"},
			},
		},
		{
			name:    "password without username",
			form:    url.Values{"grant_type": {"password"}, "password": {"x"}},
			wantErr: service.ErrInvalidRequest,
		},
		{
			name:    "password without password",
			form:    url.Values{"grant_type": {"password"}, "username": {"u"}},
			wantErr: service.ErrInvalidRequest,
		},
		{
			name: "refresh",
			form: url.Values{
				"grant_type":    {"refresh_token"},
				"refresh_token": {" abc "},
				"scope":         {"a", "b"},
			},
			want: &domain.GrantRequest{
				Kind:         service.GrantRefreshToken,
				Client:       client,
				Params:       map[string]any{"scope": []string{"a", "b"}},
				RefreshToken: "abc",
			},
		},
		{
			name:    "refresh without token",
			form:    url.Values{"grant_type": {"refresh_token"}, "refresh_token": {"  "}},
			wantErr: service.ErrInvalidRequest,
		},
		{
			name:    "unsupported grant",
			form:    url.Values{"grant_type": {"client_credentials"}},
			wantErr: service.ErrUnsupportedGrantType,
		},
		{
			name:    "missing grant_type",
			form:    url.Values{"username": {"u"}, "password": {"p"}},
			wantErr: service.ErrInvalidRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := chain.Extract(ctx, tt.form)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				require.Nil(t, got)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestExtractorIgnoresOtherGrants(t *testing.T) {
	ctx := context.Background()

	req, err := service.PasswordGrantExtractor{}.Extract(ctx, url.Values{"grant_type": {"refresh_token"}})
	require.NoError(t, err)
	require.Nil(t, req)

	req, err = service.RefreshGrantExtractor{}.Extract(ctx, url.Values{"grant_type": {"password"}})
	require.NoError(t, err)
	require.Nil(t, req)
}
