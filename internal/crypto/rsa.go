package crypto

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"crypto/x509"
	"fmt"

	"anonchat/internal/domain"
	"anonchat/internal/util/memzero"
)

const rsaBits = 2048

// GenerateKeyPair returns a fresh RSA-2048 key pair for OAEP key wrapping.
func GenerateKeyPair() (*rsa.PrivateKey, error) {
	priv, err := rsa.GenerateKey(rand.Reader, rsaBits)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrKeyGeneration, err)
	}
	return priv, nil
}

// ExportPublicKey serialises a public key as SPKI DER, base64 no padding.
func ExportPublicKey(pub *rsa.PublicKey) (string, error) {
	der, err := x509.MarshalPKIXPublicKey(pub)
	if err != nil {
		return "", fmt.Errorf("export public key: %w", err)
	}
	return B64(der), nil
}

// ExportPrivateKey serialises a private key as PKCS8 DER, base64 no padding.
func ExportPrivateKey(priv *rsa.PrivateKey) (string, error) {
	der, err := x509.MarshalPKCS8PrivateKey(priv)
	if err != nil {
		return "", fmt.Errorf("export private key: %w", err)
	}
	return B64(der), nil
}

// ImportPublicKey is the inverse of ExportPublicKey. Truncated base64,
// wrong DER format, or a non-RSA key all fail with ErrKeyImport.
func ImportPublicKey(s string) (*rsa.PublicKey, error) {
	der, err := UnB64(s)
	if err != nil {
		return nil, fmt.Errorf("%w: bad encoding: %v", domain.ErrKeyImport, err)
	}
	any, err := x509.ParsePKIXPublicKey(der)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrKeyImport, err)
	}
	pub, ok := any.(*rsa.PublicKey)
	if !ok {
		return nil, fmt.Errorf("%w: not an RSA public key", domain.ErrKeyImport)
	}
	return pub, nil
}

// ImportPrivateKey is the inverse of ExportPrivateKey.
func ImportPrivateKey(s string) (*rsa.PrivateKey, error) {
	der, err := UnB64(s)
	if err != nil {
		return nil, fmt.Errorf("%w: bad encoding: %v", domain.ErrKeyImport, err)
	}
	defer memzero.Zero(der)
	any, err := x509.ParsePKCS8PrivateKey(der)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrKeyImport, err)
	}
	priv, ok := any.(*rsa.PrivateKey)
	if !ok {
		return nil, fmt.Errorf("%w: not an RSA private key", domain.ErrKeyImport)
	}
	return priv, nil
}

// WrapGroupKey encrypts the raw group key bytes for the recipient with
// RSA-OAEP/SHA-256 and returns the base64 envelope.
func WrapGroupKey(key domain.GroupKey, recipient *rsa.PublicKey) (string, error) {
	ct, err := rsa.EncryptOAEP(sha256.New(), rand.Reader, recipient, key.Slice(), nil)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrWrap, err)
	}
	return B64(ct), nil
}

// UnwrapGroupKey recovers the group key from an envelope wrapped for our
// public key. Any mismatch (wrong private key, corrupted envelope, wrong
// plaintext size) fails with ErrUnwrap and returns the zero key.
func UnwrapGroupKey(envelope string, priv *rsa.PrivateKey) (domain.GroupKey, error) {
	var key domain.GroupKey
	ct, err := UnB64(envelope)
	if err != nil {
		return key, fmt.Errorf("%w: bad encoding: %v", domain.ErrUnwrap, err)
	}
	raw, err := rsa.DecryptOAEP(sha256.New(), rand.Reader, priv, ct, nil)
	if err != nil {
		return key, fmt.Errorf("%w: %v", domain.ErrUnwrap, err)
	}
	defer memzero.Zero(raw)
	if len(raw) != len(key) {
		return key, fmt.Errorf("%w: unexpected key length %d", domain.ErrUnwrap, len(raw))
	}
	copy(key[:], raw)
	return key, nil
}
