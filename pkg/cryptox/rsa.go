package cryptox

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/base64"
	"encoding/pem"
	"errors"
	"fmt"
	"unicode/utf8"
)

// ErrDecrypt is the only error RSACipher.Decrypt returns. The cause is
// dropped on purpose so callers cannot leak it.
var ErrDecrypt = errors.New("cryptox: decryption failed")

// MinRSABits is the smallest key size accepted anywhere in this package.
const MinRSABits = 2048

// GenerateRSAKeyPairPEM returns a fresh key pair as PEM blocks: PKCS8
// "PRIVATE KEY" and PKIX "PUBLIC KEY". Use it for tools that expect PEM
// files; the service itself reads GenerateRSAKeyPairBase64's form.
func GenerateRSAKeyPairPEM(bits int) (privatePEM, publicPEM []byte, err error) {
	key, err := generateRSA(bits)
	if err != nil {
		return nil, nil, err
	}

	privDER, err := x509.MarshalPKCS8PrivateKey(key)
	if err != nil {
		return nil, nil, fmt.Errorf("cryptox: failed to marshal PKCS8 key: %w", err)
	}
	pubDER, err := x509.MarshalPKIXPublicKey(&key.PublicKey)
	if err != nil {
		return nil, nil, fmt.Errorf("cryptox: failed to marshal PKIX key: %w", err)
	}

	return pem.EncodeToMemory(&pem.Block{Type: "PRIVATE KEY", Bytes: privDER}),
		pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: pubDER}),
		nil
}

// GenerateRSAKeyPairBase64 returns a fresh key pair as Base64 (standard
// alphabet) DER: PKCS8 for the private half, PKIX for the public half. This
// is the form the service reads from its environment.
func GenerateRSAKeyPairBase64(bits int) (privateB64, publicB64 string, err error) {
	key, err := generateRSA(bits)
	if err != nil {
		return "", "", err
	}

	der, err := x509.MarshalPKCS8PrivateKey(key)
	if err != nil {
		return "", "", fmt.Errorf("cryptox: failed to marshal PKCS8 key: %w", err)
	}

	publicB64, err = EncodeRSAPublicKeyBase64(&key.PublicKey)
	if err != nil {
		return "", "", err
	}

	return base64.StdEncoding.EncodeToString(der), publicB64, nil
}

func generateRSA(bits int) (*rsa.PrivateKey, error) {
	if bits < MinRSABits {
		return nil, fmt.Errorf("cryptox: RSA key size must be at least %d bits", MinRSABits)
	}

	key, err := rsa.GenerateKey(rand.Reader, bits)
	if err != nil {
		return nil, fmt.Errorf("cryptox: failed to generate RSA key: %w", err)
	}
	return key, nil
}

// ParseRSAPrivateKeyBase64 decodes a Base64 PKCS8 RSA private key.
func ParseRSAPrivateKeyBase64(s string) (*rsa.PrivateKey, error) {
	der, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("cryptox: private key is not valid base64: %w", err)
	}

	parsed, err := x509.ParsePKCS8PrivateKey(der)
	if err != nil {
		return nil, fmt.Errorf("cryptox: failed to parse PKCS8 private key: %w", err)
	}

	key, ok := parsed.(*rsa.PrivateKey)
	if !ok {
		return nil, fmt.Errorf("cryptox: private key is %T, not RSA", parsed)
	}
	if key.N.BitLen() < MinRSABits {
		return nil, fmt.Errorf("cryptox: RSA key size must be at least %d bits", MinRSABits)
	}
	return key, nil
}

// ParseRSAPublicKeyBase64 decodes a Base64 PKIX RSA public key.
func ParseRSAPublicKeyBase64(s string) (*rsa.PublicKey, error) {
	der, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("cryptox: public key is not valid base64: %w", err)
	}

	parsed, err := x509.ParsePKIXPublicKey(der)
	if err != nil {
		return nil, fmt.Errorf("cryptox: failed to parse PKIX public key: %w", err)
	}

	key, ok := parsed.(*rsa.PublicKey)
	if !ok {
		return nil, fmt.Errorf("cryptox: public key is %T, not RSA", parsed)
	}
	if key.N.BitLen() < MinRSABits {
		return nil, fmt.Errorf("cryptox: RSA key size must be at least %d bits", MinRSABits)
	}
	return key, nil
}

// EncodeRSAPublicKeyBase64 encodes pub as Base64 PKIX DER.
func EncodeRSAPublicKeyBase64(pub *rsa.PublicKey) (string, error) {
	der, err := x509.MarshalPKIXPublicKey(pub)
	if err != nil {
		return "", fmt.Errorf("cryptox: failed to marshal public key: %w", err)
	}
	return base64.StdEncoding.EncodeToString(der), nil
}

// RSACipher decrypts passwords that clients encrypted with the published
// public key (RSA PKCS#1 v1.5). Key material is parsed once and is safe for
// concurrent use.
type RSACipher struct {
	private   *rsa.PrivateKey
	publicB64 string
}

// NewRSACipher parses the key pair. An empty publicKeyB64 derives the public
// half from the private key; a non-empty one must match it.
func NewRSACipher(privateKeyB64, publicKeyB64 string) (*RSACipher, error) {
	priv, err := ParseRSAPrivateKeyBase64(privateKeyB64)
	if err != nil {
		return nil, err
	}

	if publicKeyB64 != "" {
		pub, err := ParseRSAPublicKeyBase64(publicKeyB64)
		if err != nil {
			return nil, err
		}
		if !priv.PublicKey.Equal(pub) {
			return nil, errors.New("cryptox: public key does not match private key")
		}
	}

	// Re-encode so PublicKey always returns the canonical form.
	publicB64, err := EncodeRSAPublicKeyBase64(&priv.PublicKey)
	if err != nil {
		return nil, err
	}

	return &RSACipher{private: priv, publicB64: publicB64}, nil
}

// PublicKey returns the Base64 PKIX public key clients encrypt with.
func (c *RSACipher) PublicKey() string {
	return c.publicB64
}

// Decrypt reverses Encrypt. Any failure (bad base64, bad padding, plaintext
// that is not UTF-8) yields ErrDecrypt.
//
// Malformed input still goes through one private key operation, so the time
// taken does not reveal which check failed.
func (c *RSACipher) Decrypt(ciphertextB64 string) (string, error) {
	ct, err := base64.StdEncoding.DecodeString(ciphertextB64)
	malformed := err != nil || len(ct) != c.private.Size()
	if malformed {
		ct = make([]byte, c.private.Size())
	}

	pt, err := rsa.DecryptPKCS1v15(rand.Reader, c.private, ct)
	if malformed || err != nil || !utf8.Valid(pt) {
		return "", ErrDecrypt
	}
	return string(pt), nil
}

// Encrypt encrypts plaintext with the cipher's public key.
func (c *RSACipher) Encrypt(plaintext string) (string, error) {
	return encryptPKCS1(&c.private.PublicKey, plaintext)
}

// EncryptWithPublicKey encrypts plaintext for the holder of the private half
// of publicKeyB64. Clients use it after fetching /auth/key.
func EncryptWithPublicKey(publicKeyB64, plaintext string) (string, error) {
	pub, err := ParseRSAPublicKeyBase64(publicKeyB64)
	if err != nil {
		return "", err
	}
	return encryptPKCS1(pub, plaintext)
}

func encryptPKCS1(pub *rsa.PublicKey, plaintext string) (string, error) {
	ct, err := rsa.EncryptPKCS1v15(rand.Reader, pub, []byte(plaintext))
	if err != nil {
		return "", fmt.Errorf("cryptox: encrypt: %w", err)
	}
	return base64.StdEncoding.EncodeToString(ct), nil
}
