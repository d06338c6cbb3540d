package jwtx

import (
	"crypto/rsa"
	"errors"
	"fmt"

	"github.com/aussiebroadwan/passgate/pkg/cryptox"
	"github.com/google/uuid"
)

// KeyManager owns the single RS256 signing key of the process together with
// the KeySet and Verifier derived from it. It is built once at startup and
// never changes afterwards, so it is safe to share without locking.
type KeyManager struct {
	signer   *RS256Signer
	keys     *KeySet
	verifier *RS256Verifier
	issuer   string
}

// KeyManagerOptions configures NewKeyManager.
type KeyManagerOptions struct {
	// Issuer is set as iss on minted tokens and enforced by the verifier.
	Issuer string

	// Audience enforced by the verifier. Empty means not enforced.
	Audience []string

	// PrivateKey is a Base64 PKCS8 RSA key. PublicKey is the matching
	// Base64 PKIX key; when empty it is derived.
	PrivateKey string
	PublicKey  string

	// KID overrides the random UUID key id. Tests use it.
	KID string
}

// NewKeyManager parses the configured signing key. Any parse failure is
// returned; the caller is expected to refuse to start.
func NewKeyManager(opts KeyManagerOptions) (*KeyManager, error) {
	if opts.Issuer == "" {
		return nil, errors.New("jwtx: Issuer is required")
	}
	if opts.PrivateKey == "" {
		return nil, errors.New("jwtx: signing private key is required")
	}

	priv, err := cryptox.ParseRSAPrivateKeyBase64(opts.PrivateKey)
	if err != nil {
		return nil, fmt.Errorf("jwtx: signing key: %w", err)
	}
	if opts.PublicKey != "" {
		pub, err := cryptox.ParseRSAPublicKeyBase64(opts.PublicKey)
		if err != nil {
			return nil, fmt.Errorf("jwtx: signing public key: %w", err)
		}
		if !priv.PublicKey.Equal(pub) {
			return nil, errors.New("jwtx: signing public key does not match private key")
		}
	}

	return newKeyManager(opts, priv)
}

// NewEphemeralKeyManager generates a fresh in-memory key. Tokens signed by it
// do not survive a restart.
func NewEphemeralKeyManager(opts KeyManagerOptions, rsaBits int) (*KeyManager, error) {
	if opts.Issuer == "" {
		return nil, errors.New("jwtx: Issuer is required")
	}
	if rsaBits == 0 {
		rsaBits = cryptox.MinRSABits
	}

	privB64, _, err := cryptox.GenerateRSAKeyPairBase64(rsaBits)
	if err != nil {
		return nil, fmt.Errorf("jwtx: generate signing key: %w", err)
	}
	priv, err := cryptox.ParseRSAPrivateKeyBase64(privB64)
	if err != nil {
		return nil, err
	}
	return newKeyManager(opts, priv)
}

func newKeyManager(opts KeyManagerOptions, priv *rsa.PrivateKey) (*KeyManager, error) {
	kid := opts.KID
	if kid == "" {
		kid = uuid.NewString()
	}

	signer, err := NewSignerRS256FromKey(kid, priv)
	if err != nil {
		return nil, err
	}

	keys := NewKeySet()
	if err := keys.AddSigner(signer); err != nil {
		return nil, fmt.Errorf("jwtx: failed to add signer to keyset: %w", err)
	}

	return &KeyManager{
		signer:   signer,
		keys:     keys,
		verifier: NewVerifierRS256(keys, opts.Issuer, opts.Audience),
		issuer:   opts.Issuer,
	}, nil
}

func (km *KeyManager) Signer() Signer     { return km.signer }
func (km *KeyManager) KeySet() *KeySet    { return km.keys }
func (km *KeyManager) Verifier() Verifier { return km.verifier }
func (km *KeyManager) Issuer() string     { return km.issuer }
func (km *KeyManager) KID() string        { return km.signer.KID() }

// JWKS is the signing key source published at /auth/jwks.
func (km *KeyManager) JWKS() JWKS { return km.keys.PublicJWKS() }

// IsReady returns true if a verification key is loaded.
func (km *KeyManager) IsReady() bool {
	return km != nil && km.keys.IsReady()
}
