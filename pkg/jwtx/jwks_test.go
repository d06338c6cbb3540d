package jwtx

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/json"
	"encoding/pem"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestJWK_PEM_RSA(t *testing.T) {
	privateKey, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	jwk := NewRSAJWK("test-key-id", "sig", AlgorithmRS256, &privateKey.PublicKey)

	pemStr, err := jwk.PEM()
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(pemStr, "-----BEGIN PUBLIC KEY-----"))
	require.True(t, strings.HasSuffix(strings.TrimSpace(pemStr), "-----END PUBLIC KEY-----"))

	block, _ := pem.Decode([]byte(pemStr))
	require.NotNil(t, block)
	require.Equal(t, "PUBLIC KEY", block.Type)

	parsed, err := x509.ParsePKIXPublicKey(block.Bytes)
	require.NoError(t, err)

	rsaPub, ok := parsed.(*rsa.PublicKey)
	require.True(t, ok)
	require.True(t, privateKey.PublicKey.Equal(rsaPub))
}

func TestJWK_RSAPublicKeyErrors(t *testing.T) {
	tests := []struct {
		name string
		jwk  JWK
		msg  string
	}{
		{"unsupported kty", JWK{Kty: "OKP", Kid: "k"}, "unsupported kty"},
		{"invalid base64", JWK{Kty: "RSA", Kid: "k", N: "!!!invalid!!!", E: "AQAB"}, "illegal base64"},
		{"empty modulus", JWK{Kty: "RSA", Kid: "k", E: "AQAB"}, "empty RSA modulus"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.jwk.RSAPublicKey()
			require.ErrorContains(t, err, tt.msg)

			_, err = tt.jwk.PEM()
			require.Error(t, err)
		})
	}
}

func TestJWKS_JSONShape(t *testing.T) {
	privateKey, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	set := JWKS{Keys: []JWK{NewRSAJWK("kid-1", "sig", AlgorithmRS256, &privateKey.PublicKey)}}
	raw, err := json.Marshal(set)
	require.NoError(t, err)

	var decoded map[string][]map[string]string
	require.NoError(t, json.Unmarshal(raw, &decoded))
	require.Len(t, decoded["keys"], 1)

	k := decoded["keys"][0]
	require.Equal(t, "RSA", k["kty"])
	require.Equal(t, "sig", k["use"])
	require.Equal(t, "RS256", k["alg"])
	require.Equal(t, "kid-1", k["kid"])
	require.Equal(t, "AQAB", k["e"])
	require.NotEmpty(t, k["n"])
}

func TestKeySetFromJWKS(t *testing.T) {
	privateKey, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	ks, err := NewKeySetFromJWKS(JWKS{Keys: []JWK{
		NewRSAJWK("kid-1", "sig", AlgorithmRS256, &privateKey.PublicKey),
	}})
	require.NoError(t, err)
	require.True(t, ks.IsReady())

	pub, err := ks.Get("kid-1")
	require.NoError(t, err)
	require.True(t, privateKey.PublicKey.Equal(pub))

	_, err = ks.Get("missing")
	require.ErrorIs(t, err, ErrNoKey)

	_, err = NewKeySetFromJWKS(JWKS{Keys: []JWK{{Kty: "RSA", N: "AQAB", E: "AQAB"}}})
	require.ErrorContains(t, err, "without kid")
}
