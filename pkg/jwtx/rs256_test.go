package jwtx_test

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"testing"
	"time"

	"github.com/aussiebroadwan/passgate/pkg/jwtx"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

const exampleIssuer = "https://auth.example.test"

func newSigner(t *testing.T, kid string) *jwtx.RS256Signer {
	t.Helper()

	privKey, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	privPEM := pem.EncodeToMemory(&pem.Block{
		Type:  "RSA PRIVATE KEY",
		Bytes: x509.MarshalPKCS1PrivateKey(privKey),
	})

	signer, err := jwtx.NewSignerRS256(kid, privPEM)
	require.NoError(t, err)
	require.NoError(t, signer.Validate())
	return signer
}

func sampleClaims(ttl time.Duration) jwtx.Claims {
	return jwtx.NewAccessClaims(jwtx.AccessClaimsParams{
		Subject:     "01HZX0000000000000000000AC",
		SessionID:   "session-abc",
		ClientID:    "public",
		Username:    "member@example.com",
		Name:        "Member",
		Scopes:      []string{"user"},
		Authorities: []string{"ROLE_MEMBER"},
		Issuer:      exampleIssuer,
		TTL:         ttl,
		Now:         time.Now().UTC(),
	})
}

func TestRS256SignAndVerify(t *testing.T) {
	signer := newSigner(t, "test-key")
	claims := sampleClaims(2 * time.Minute)

	token, err := signer.Sign(claims)
	require.NoError(t, err)

	keyset := jwtx.NewKeySet()
	require.NoError(t, keyset.AddSigner(signer))

	verifier := jwtx.NewVerifierRS256(keyset, exampleIssuer, []string{"public"})

	parsed, err := verifier.Verify(token)
	require.NoError(t, err)

	require.Equal(t, claims.Issuer, parsed.Issuer)
	require.Equal(t, claims.Subject, parsed.Subject)
	require.ElementsMatch(t, claims.Audience, parsed.Audience)
	require.Equal(t, []string{"user"}, parsed.Scopes)
	require.Equal(t, []string{"ROLE_MEMBER"}, parsed.Authorities)
	require.Equal(t, claims.SID, parsed.SID)
	require.Equal(t, "public", parsed.ClientID)
	require.Equal(t, "member@example.com", parsed.Username)
	require.Equal(t, "Member", parsed.Name)
	require.NotEmpty(t, parsed.ID)
	require.True(t, parsed.HasScope("user"))
}

func TestRS256VerifyFailures(t *testing.T) {
	signer := newSigner(t, "k1")
	other := newSigner(t, "k2")

	keyset := jwtx.NewKeySet()
	require.NoError(t, keyset.AddSigner(signer))

	good, err := signer.Sign(sampleClaims(time.Minute))
	require.NoError(t, err)

	foreign, err := other.Sign(sampleClaims(time.Minute))
	require.NoError(t, err)

	expired, err := signer.Sign(sampleClaims(-time.Minute))
	require.NoError(t, err)

	// HS256 must be refused even with a known kid.
	hs := jwt.NewWithClaims(jwt.SigningMethodHS256, sampleClaims(time.Minute))
	hs.Header["kid"] = "k1"
	hsToken, err := hs.SignedString([]byte("secret"))
	require.NoError(t, err)

	// RS256 without a kid header.
	noKid, err := jwt.NewWithClaims(jwt.SigningMethodRS256, sampleClaims(time.Minute)).
		SignedString(mustKey(t))
	require.NoError(t, err)

	tests := []struct {
		name     string
		verifier *jwtx.RS256Verifier
		token    string
		want     error
	}{
		{"wrong issuer", jwtx.NewVerifierRS256(keyset, "wrong-issuer", nil), good, jwtx.ErrIssuer},
		{"wrong audience", jwtx.NewVerifierRS256(keyset, exampleIssuer, []string{"admin"}), good, jwtx.ErrAudience},
		{"unknown kid", jwtx.NewVerifierRS256(keyset, exampleIssuer, nil), foreign, jwtx.ErrNoKey},
		{"expired", jwtx.NewVerifierRS256(keyset, exampleIssuer, nil), expired, jwtx.ErrExpired},
		{"hs256", jwtx.NewVerifierRS256(keyset, exampleIssuer, nil), hsToken, jwtx.ErrInvalidSig},
		{"missing kid", jwtx.NewVerifierRS256(keyset, exampleIssuer, nil), noKid, jwtx.ErrMissingKID},
		{"garbage", jwtx.NewVerifierRS256(keyset, exampleIssuer, nil), "not.a.jwt", jwtx.ErrMalformed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.verifier.Verify(tt.token)
			require.ErrorIs(t, err, tt.want)
		})
	}
}

func TestRS256VerifyLeeway(t *testing.T) {
	signer := newSigner(t, "k1")
	keyset := jwtx.NewKeySet()
	require.NoError(t, keyset.AddSigner(signer))

	token, err := signer.Sign(sampleClaims(-10 * time.Second))
	require.NoError(t, err)

	v := jwtx.NewVerifierRS256(keyset, exampleIssuer, nil)
	_, err = v.Verify(token)
	require.ErrorIs(t, err, jwtx.ErrExpired)

	_, err = v.WithLeeway(time.Minute).Verify(token)
	require.NoError(t, err)
}

func mustKey(t *testing.T) *rsa.PrivateKey {
	t.Helper()
	k, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	return k
}
