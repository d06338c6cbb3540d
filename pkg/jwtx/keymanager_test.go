package jwtx_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/aussiebroadwan/passgate/pkg/cryptox"
	"github.com/aussiebroadwan/passgate/pkg/jwtx"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestNewKeyManager(t *testing.T) {
	priv, pub, err := cryptox.GenerateRSAKeyPairBase64(2048)
	require.NoError(t, err)

	km, err := jwtx.NewKeyManager(jwtx.KeyManagerOptions{
		Issuer:     exampleIssuer,
		PrivateKey: priv,
		PublicKey:  pub,
	})
	require.NoError(t, err)
	require.True(t, km.IsReady())
	require.Equal(t, exampleIssuer, km.Issuer())

	_, err = uuid.Parse(km.KID())
	require.NoError(t, err, "kid is a random UUID")

	jwks := km.JWKS()
	require.Len(t, jwks.Keys, 1)
	require.Equal(t, km.KID(), jwks.Keys[0].Kid)
	require.Equal(t, "RS256", jwks.Keys[0].Alg)

	// Two managers over the same key still get distinct kids.
	km2, err := jwtx.NewKeyManager(jwtx.KeyManagerOptions{Issuer: exampleIssuer, PrivateKey: priv})
	require.NoError(t, err)
	require.NotEqual(t, km.KID(), km2.KID())
}

func TestNewKeyManagerRejectsBadMaterial(t *testing.T) {
	priv, _, err := cryptox.GenerateRSAKeyPairBase64(2048)
	require.NoError(t, err)
	_, otherPub, err := cryptox.GenerateRSAKeyPairBase64(2048)
	require.NoError(t, err)

	tests := []struct {
		name string
		opts jwtx.KeyManagerOptions
		msg  string
	}{
		{"no issuer", jwtx.KeyManagerOptions{PrivateKey: priv}, "Issuer is required"},
		{"no key", jwtx.KeyManagerOptions{Issuer: exampleIssuer}, "private key is required"},
		{"bad base64", jwtx.KeyManagerOptions{Issuer: exampleIssuer, PrivateKey: "@@@"}, "base64"},
		{"mismatched public", jwtx.KeyManagerOptions{Issuer: exampleIssuer, PrivateKey: priv, PublicKey: otherPub}, "does not match"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			km, err := jwtx.NewKeyManager(tt.opts)
			require.ErrorContains(t, err, tt.msg)
			require.Nil(t, km)
		})
	}
}

func TestEphemeralKeyManagerRoundTrip(t *testing.T) {
	km, err := jwtx.NewEphemeralKeyManager(jwtx.KeyManagerOptions{Issuer: exampleIssuer, KID: "fixed"}, 2048)
	require.NoError(t, err)
	require.Equal(t, "fixed", km.KID())

	gen := jwtx.NewTokenGenerator(km)
	tok, err := gen.Generate(context.Background(), jwtx.TokenContext{
		Type:     jwtx.TokenTypeAccess,
		Format:   jwtx.FormatSelfContained,
		Subject:  "acc-1",
		ClientID: "public",
		Scopes:   []string{"user"},
		TTL:      time.Hour,
	})
	require.NoError(t, err)

	claims, err := km.Verifier().Verify(tok.Value)
	require.NoError(t, err)
	require.Equal(t, "acc-1", claims.Subject)

	// A consumer that only has the published JWKS verifies the same token.
	ks, err := jwtx.NewKeySetFromJWKS(km.JWKS())
	require.NoError(t, err)
	_, err = jwtx.NewVerifierRS256(ks, exampleIssuer, []string{"public"}).Verify(tok.Value)
	require.NoError(t, err)

	// Tokens from another process's key do not verify.
	other, err := jwtx.NewEphemeralKeyManager(jwtx.KeyManagerOptions{Issuer: exampleIssuer, KID: "fixed"}, 2048)
	require.NoError(t, err)
	_, err = other.Verifier().Verify(tok.Value)
	require.ErrorIs(t, err, jwtx.ErrInvalidSig)
}

func TestTokenGeneratorDispatch(t *testing.T) {
	km, err := jwtx.NewEphemeralKeyManager(jwtx.KeyManagerOptions{Issuer: exampleIssuer}, 2048)
	require.NoError(t, err)
	gen := jwtx.NewTokenGenerator(km)

	now := time.Date(2025, 6, 1, 12, 0, 0, 500, time.UTC)
	base := jwtx.TokenContext{Subject: "acc-1", ClientID: "public", TTL: time.Minute, Now: now}

	t.Run("self-contained access", func(t *testing.T) {
		tc := base
		tc.Type, tc.Format = jwtx.TokenTypeAccess, jwtx.FormatSelfContained

		tok, err := gen.Generate(context.Background(), tc)
		require.NoError(t, err)
		require.True(t, tok.HasClaims())
		require.Len(t, strings.Split(tok.Value, "."), 3)
		require.Equal(t, now.Truncate(time.Second), tok.IssuedAt)
		require.Equal(t, tok.IssuedAt.Add(time.Minute), tok.ExpiresAt)
	})

	t.Run("reference access", func(t *testing.T) {
		tc := base
		tc.Type, tc.Format = jwtx.TokenTypeAccess, jwtx.FormatReference

		tok, err := gen.Generate(context.Background(), tc)
		require.NoError(t, err)
		require.False(t, tok.HasClaims())
		require.NotContains(t, tok.Value, ".")
		require.Len(t, tok.Value, 43)
	})

	t.Run("refresh", func(t *testing.T) {
		tc := base
		tc.Type = jwtx.TokenTypeRefresh

		a, err := gen.Generate(context.Background(), tc)
		require.NoError(t, err)
		b, err := gen.Generate(context.Background(), tc)
		require.NoError(t, err)
		require.False(t, a.HasClaims())
		require.NotEqual(t, a.Value, b.Value)
	})

	t.Run("unhandled", func(t *testing.T) {
		tc := base
		tc.Type = jwtx.TokenType(99)

		tok, err := gen.Generate(context.Background(), tc)
		require.NoError(t, err)
		require.Nil(t, tok)
		require.False(t, tok.HasClaims())
	})

	t.Run("non-positive ttl", func(t *testing.T) {
		tc := base
		tc.Type, tc.TTL = jwtx.TokenTypeRefresh, 0

		_, err := gen.Generate(context.Background(), tc)
		require.ErrorIs(t, err, jwtx.ErrNoTTL)
	})

	t.Run("cancelled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		tc := base
		tc.Type = jwtx.TokenTypeRefresh
		_, err := gen.Generate(ctx, tc)
		require.ErrorIs(t, err, context.Canceled)
	})
}
