package cryptox_test

import (
	"crypto/rsa"
	"crypto/x509"
	"encoding/base64"
	"encoding/pem"
	"sync"
	"testing"

	"github.com/aussiebroadwan/passgate/pkg/cryptox"
	"github.com/stretchr/testify/require"
)

var (
	pairOnce          sync.Once
	testPriv, testPub string
	otherPub          string
)

func keyPairs(t *testing.T) {
	t.Helper()
	pairOnce.Do(func() {
		var err error
		testPriv, testPub, err = cryptox.GenerateRSAKeyPairBase64(2048)
		if err != nil {
			panic(err)
		}
		_, otherPub, err = cryptox.GenerateRSAKeyPairBase64(2048)
		if err != nil {
			panic(err)
		}
	})
}

func TestGenerateRSAKeyPairPEM(t *testing.T) {
	privPEM, pubPEM, err := cryptox.GenerateRSAKeyPairPEM(2048)
	require.NoError(t, err)

	block, rest := pem.Decode(privPEM)
	require.NotNil(t, block)
	require.Empty(t, rest)
	require.Equal(t, "PRIVATE KEY", block.Type)

	parsed, err := x509.ParsePKCS8PrivateKey(block.Bytes)
	require.NoError(t, err)
	key, ok := parsed.(*rsa.PrivateKey)
	require.True(t, ok)
	require.Equal(t, 2048, key.N.BitLen())

	block, _ = pem.Decode(pubPEM)
	require.NotNil(t, block)
	require.Equal(t, "PUBLIC KEY", block.Type)

	pub, err := x509.ParsePKIXPublicKey(block.Bytes)
	require.NoError(t, err)
	require.True(t, key.PublicKey.Equal(pub))
}

func TestGenerateRejectsSmallKeys(t *testing.T) {
	_, _, err := cryptox.GenerateRSAKeyPairPEM(1024)
	require.ErrorContains(t, err, "at least 2048 bits")

	_, _, err = cryptox.GenerateRSAKeyPairBase64(1024)
	require.ErrorContains(t, err, "at least 2048 bits")
}

func TestRSACipherRoundTrip(t *testing.T) {
	keyPairs(t)

	c, err := cryptox.NewRSACipher(testPriv, testPub)
	require.NoError(t, err)
	require.Equal(t, testPub, c.PublicKey())

	tests := []struct {
		name      string
		plaintext string
	}{
		{"ascii", "correct-password"},
		{"empty", ""},
		{"symbols", "P@ssw0rd!#$%^&*()"},
		{"korean", "비밀번호123"},
		{"emoji", "pässwörd🔒密码"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ct, err := c.Encrypt(tt.plaintext)
			require.NoError(t, err)

			pt, err := c.Decrypt(ct)
			require.NoError(t, err)
			require.Equal(t, tt.plaintext, pt)

			// Clients only hold the public key string.
			ct2, err := cryptox.EncryptWithPublicKey(c.PublicKey(), tt.plaintext)
			require.NoError(t, err)
			require.NotEqual(t, ct, ct2, "PKCS1 v1.5 padding is randomised")

			pt, err = c.Decrypt(ct2)
			require.NoError(t, err)
			require.Equal(t, tt.plaintext, pt)
		})
	}
}

func TestRSACipherDerivesPublicKey(t *testing.T) {
	keyPairs(t)

	c, err := cryptox.NewRSACipher(testPriv, "")
	require.NoError(t, err)
	require.Equal(t, testPub, c.PublicKey())
}

func TestRSACipherDecryptFailuresAreUniform(t *testing.T) {
	keyPairs(t)

	c, err := cryptox.NewRSACipher(testPriv, testPub)
	require.NoError(t, err)

	foreign, err := cryptox.EncryptWithPublicKey(otherPub, "correct-password")
	require.NoError(t, err)

	// Raw 0xff bytes are not UTF-8.
	notUTF8, err := cryptox.EncryptWithPublicKey(testPub, string([]byte{0xff, 0xfe, 0xfd}))
	require.NoError(t, err)

	tests := []struct {
		name       string
		ciphertext string
	}{
		{"not base64", "%%%not-base64%%%"},
		{"empty", ""},
		{"too short", base64.StdEncoding.EncodeToString([]byte("short"))},
		{"wrong key", foreign},
		{"invalid utf8", notUTF8},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pt, err := c.Decrypt(tt.ciphertext)
			require.Empty(t, pt)
			require.Equal(t, cryptox.ErrDecrypt, err, "cause must not be attached")
		})
	}
}

func TestNewRSACipherRejectsBadKeys(t *testing.T) {
	keyPairs(t)

	tests := []struct {
		name      string
		priv, pub string
	}{
		{"bad base64 private", "***", ""},
		{"garbage private", base64.StdEncoding.EncodeToString([]byte("nope")), ""},
		{"bad public", testPriv, "***"},
		{"mismatched pair", testPriv, otherPub},
		{"public as private", testPub, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := cryptox.NewRSACipher(tt.priv, tt.pub)
			require.Error(t, err)
			require.Nil(t, c)
		})
	}
}

func TestParseRSAKeysBase64(t *testing.T) {
	keyPairs(t)

	priv, err := cryptox.ParseRSAPrivateKeyBase64(testPriv)
	require.NoError(t, err)

	pub, err := cryptox.ParseRSAPublicKeyBase64(testPub)
	require.NoError(t, err)
	require.True(t, priv.PublicKey.Equal(pub))

	encoded, err := cryptox.EncodeRSAPublicKeyBase64(pub)
	require.NoError(t, err)
	require.Equal(t, testPub, encoded)
}
