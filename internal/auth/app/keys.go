package app

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/aussiebroadwan/passgate/pkg/cryptox"
	"github.com/aussiebroadwan/passgate/pkg/jwtx"
)

// Keys holds the password encryption pair and the token signing pair.
// They are never the same key.
type Keys struct {
	Cipher  *cryptox.RSACipher
	Signing *jwtx.KeyManager
}

// InitKeys parses the configured key pairs. With AUTH_EPHEMERAL_KEYS a
// missing pair is generated in memory; tokens and ciphertexts then do not
// survive a restart.
func InitKeys(cfg Config, logger *slog.Logger) (*Keys, error) {
	cipher, err := initCipher(cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("encryption key: %w", err)
	}

	signing, err := initSigning(cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("signing key: %w", err)
	}

	if cipher.PublicKey() == signingPublicKey(signing) {
		return nil, errors.New("encryption and signing keys must differ")
	}

	logger.Info("keys loaded", "kid", signing.KID(), "issuer", signing.Issuer())
	return &Keys{Cipher: cipher, Signing: signing}, nil
}

func initCipher(cfg Config, logger *slog.Logger) (*cryptox.RSACipher, error) {
	if cfg.EncryptionPrivateKey != "" {
		return cryptox.NewRSACipher(cfg.EncryptionPrivateKey, cfg.EncryptionPublicKey)
	}
	if !cfg.EphemeralKeys {
		return nil, errors.New("no key configured")
	}

	logger.Warn("generating ephemeral password encryption key", "bits", cfg.RSABits)
	priv, pub, err := cryptox.GenerateRSAKeyPairBase64(cfg.RSABits)
	if err != nil {
		return nil, err
	}
	return cryptox.NewRSACipher(priv, pub)
}

func initSigning(cfg Config, logger *slog.Logger) (*jwtx.KeyManager, error) {
	opts := jwtx.KeyManagerOptions{
		Issuer: cfg.Issuer,
		// Audience is not enforced; tokens carry the client id instead.
		PrivateKey: cfg.SigningPrivateKey,
		PublicKey:  cfg.SigningPublicKey,
	}
	if cfg.SigningPrivateKey != "" {
		return jwtx.NewKeyManager(opts)
	}
	if !cfg.EphemeralKeys {
		return nil, errors.New("no key configured")
	}

	logger.Warn("generating ephemeral signing key, tokens will not survive a restart", "bits", cfg.RSABits)
	return jwtx.NewEphemeralKeyManager(opts, cfg.RSABits)
}

func signingPublicKey(km *jwtx.KeyManager) string {
	jwks := km.JWKS()
	if len(jwks.Keys) == 0 {
		return ""
	}
	pub, err := jwks.Keys[0].RSAPublicKey()
	if err != nil {
		return ""
	}
	b64, err := cryptox.EncodeRSAPublicKeyBase64(pub)
	if err != nil {
		return ""
	}
	return b64
}
