package app

import (
	"log/slog"
	"testing"

	"github.com/aussiebroadwan/passgate/pkg/cryptox"
	"github.com/stretchr/testify/require"
)

func keyConfig() Config {
	return Config{Issuer: "passgate", RSABits: 2048}
}

func TestInitKeysFromConfig(t *testing.T) {
	encPriv, encPub, err := cryptox.GenerateRSAKeyPairBase64(2048)
	require.NoError(t, err)
	sigPriv, sigPub, err := cryptox.GenerateRSAKeyPairBase64(2048)
	require.NoError(t, err)

	cfg := keyConfig()
	cfg.EncryptionPrivateKey, cfg.EncryptionPublicKey = encPriv, encPub
	cfg.SigningPrivateKey, cfg.SigningPublicKey = sigPriv, sigPub

	keys, err := InitKeys(cfg, slog.New(slog.DiscardHandler))
	require.NoError(t, err)
	require.Equal(t, encPub, keys.Cipher.PublicKey())
	require.Equal(t, sigPub, signingPublicKey(keys.Signing))
	require.Equal(t, "passgate", keys.Signing.Issuer())
}

func TestInitKeysRejectsSharedPair(t *testing.T) {
	priv, pub, err := cryptox.GenerateRSAKeyPairBase64(2048)
	require.NoError(t, err)

	cfg := keyConfig()
	cfg.EncryptionPrivateKey, cfg.EncryptionPublicKey = priv, pub
	cfg.SigningPrivateKey, cfg.SigningPublicKey = priv, pub

	_, err = InitKeys(cfg, slog.New(slog.DiscardHandler))
	require.ErrorContains(t, err, "must differ")
}

func TestInitKeysEphemeral(t *testing.T) {
	cfg := keyConfig()
	cfg.EphemeralKeys = true

	keys, err := InitKeys(cfg, slog.New(slog.DiscardHandler))
	require.NoError(t, err)
	require.NotEqual(t, keys.Cipher.PublicKey(), signingPublicKey(keys.Signing))
}

func TestInitKeysMissing(t *testing.T) {
	_, err := InitKeys(keyConfig(), slog.New(slog.DiscardHandler))
	require.ErrorContains(t, err, "encryption key")
}

func TestInitKeysMalformed(t *testing.T) {
	cfg := keyConfig()
	cfg.EphemeralKeys = true
	cfg.SigningPrivateKey = "not-base64!"

	_, err := InitKeys(cfg, slog.New(slog.DiscardHandler))
	require.ErrorContains(t, err, "signing key")
}
