package jwtx

import (
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

// AlgorithmRS256 is the only signing algorithm issued or accepted.
const AlgorithmRS256 = "RS256"

// Signer is our interface for anything that can sign JWTs.
type Signer interface {
	Alg() string
	KID() string
	Sign(Claims) (string, error)
	PublicJWK() JWK
	Validate() error
}

// RS256Signer implements Signer using RSA SHA-256.
type RS256Signer struct {
	kid string
	key *rsa.PrivateKey
}

// NewSignerRS256 creates an RS256 signer from PEM bytes. Handles both
// PKCS1 and PKCS8.
func NewSignerRS256(kid string, pemKey []byte) (*RS256Signer, error) {
	block, _ := pem.Decode(pemKey)
	if block == nil {
		return nil, errors.New("jwtx: invalid PEM for RSA key")
	}

	var key *rsa.PrivateKey
	switch block.Type {
	case "RSA PRIVATE KEY":
		k, err := x509.ParsePKCS1PrivateKey(block.Bytes)
		if err != nil {
			return nil, fmt.Errorf("jwtx: parse RSA key: %w", err)
		}
		key = k
	case "PRIVATE KEY":
		priv, err := x509.ParsePKCS8PrivateKey(block.Bytes)
		if err != nil {
			return nil, fmt.Errorf("jwtx: parse PKCS8: %w", err)
		}
		k, ok := priv.(*rsa.PrivateKey)
		if !ok {
			return nil, errors.New("jwtx: not RSA private key")
		}
		key = k
	default:
		return nil, fmt.Errorf("jwtx: unsupported PEM type %q", block.Type)
	}

	return NewSignerRS256FromKey(kid, key)
}

// NewSignerRS256FromKey wraps an already parsed key.
func NewSignerRS256FromKey(kid string, key *rsa.PrivateKey) (*RS256Signer, error) {
	s := &RS256Signer{kid: kid, key: key}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *RS256Signer) Alg() string { return AlgorithmRS256 }
func (s *RS256Signer) KID() string { return s.kid }

// Sign turns claims into a compact JWS with the kid header set.
func (s *RS256Signer) Sign(claims Claims) (string, error) {
	t := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	t.Header["kid"] = s.kid
	return t.SignedString(s.key)
}

// PublicJWK returns the JWK published in the JWKS.
func (s *RS256Signer) PublicJWK() JWK {
	return NewRSAJWK(s.kid, "sig", AlgorithmRS256, &s.key.PublicKey)
}

// Validate does a quick sanity check to make sure we actually have a key.
func (s *RS256Signer) Validate() error {
	if s.key == nil {
		return errors.New("jwtx: nil RSA key")
	}
	if s.kid == "" {
		return errors.New("jwtx: signer needs a kid")
	}
	return nil
}
