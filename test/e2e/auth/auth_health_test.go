//go:build e2e

package auth_test

import (
	"testing"

	"github.com/aussiebroadwan/passgate/pkg/authsdk"
	"github.com/aussiebroadwan/passgate/pkg/cryptox"
	"github.com/aussiebroadwan/passgate/pkg/jwtx"
	"github.com/stretchr/testify/require"
)

func TestHealthEndpoints(t *testing.T) {
	baseURL := setupAuthContainer(t, nil)
	client := authsdk.NewSDKClient(baseURL, clientID, clientSecret)

	live, err := client.GetLiveness(t.Context())
	require.NoError(t, err)
	require.Equal(t, "ok", live.Status)

	ready, err := client.GetReadiness(t.Context())
	require.NoError(t, err)
	require.Equal(t, "ok", ready.Status)
	require.NotNil(t, ready.Checks)
	require.Equal(t, "ok", ready.Checks.Database)
	require.Equal(t, "ok", ready.Checks.Encryption)
}

// TestAccessTokenVerifiesAgainstJWKS checks a resource server can validate
// access tokens with nothing but the published key set.
func TestAccessTokenVerifiesAgainstJWKS(t *testing.T) {
	baseURL := setupAuthContainer(t, nil)
	client := authsdk.NewSDKClient(baseURL, clientID, clientSecret)

	resp := performLogin(t, client, "user")

	set, err := client.GetJWKS(t.Context())
	require.NoError(t, err)
	require.Len(t, set.Keys, 1)

	keys, err := jwtx.NewKeySetFromJWKS(jwtx.JWKS(*set))
	require.NoError(t, err)

	claims, err := jwtx.NewVerifierRS256(keys, "passgate-e2e", nil).Verify(resp.AccessToken)
	require.NoError(t, err)
	require.Equal(t, resp.User.ID, claims.Subject)
	require.Equal(t, memberEmail, claims.Username)
	require.Equal(t, clientID, claims.ClientID)
	require.Equal(t, []string{"user"}, claims.Scopes)
}

func TestEncryptionKeyDiffersFromSigningKey(t *testing.T) {
	baseURL := setupAuthContainer(t, nil)
	client := authsdk.NewSDKClient(baseURL, clientID, clientSecret)

	pub, err := client.PublicKey(t.Context())
	require.NoError(t, err)
	require.NotEmpty(t, pub)

	set, err := client.GetJWKS(t.Context())
	require.NoError(t, err)
	signing, err := set.Keys[0].RSAPublicKey()
	require.NoError(t, err)
	signingPub, err := cryptox.EncodeRSAPublicKeyBase64(signing)
	require.NoError(t, err)
	require.NotEqual(t, pub, signingPub)
}
