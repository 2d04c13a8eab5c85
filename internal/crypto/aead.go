package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"fmt"
	"io"

	"anonchat/internal/domain"
)

// GCMNonceBytes is the nonce size for message encryption.
const GCMNonceBytes = 12

// GenerateGroupKey returns a fresh AES-256 group key. The key is plain
// bytes rather than an opaque handle so it can be wrapped for
// distribution; wrapping is the distribution mechanism.
func GenerateGroupKey() (domain.GroupKey, error) {
	var key domain.GroupKey
	if _, err := rand.Read(key[:]); err != nil {
		return key, fmt.Errorf("%w: %v", domain.ErrKeyGeneration, err)
	}
	return key, nil
}

// EncryptMessage seals the UTF-8 bytes of plaintext under the group key
// with AES-256-GCM. A fresh 12-byte nonce is drawn per call; callers
// never supply nonces. Ciphertext and nonce must travel together.
func EncryptMessage(plaintext string, key domain.GroupKey) (domain.Sealed, error) {
	aead, err := newGCM(key)
	if err != nil {
		return domain.Sealed{}, err
	}
	nonce := make([]byte, GCMNonceBytes)
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return domain.Sealed{}, fmt.Errorf("generate nonce: %w", err)
	}
	ct := aead.Seal(nil, nonce, []byte(plaintext), nil)
	return domain.Sealed{Ciphertext: B64(ct), Nonce: B64(nonce)}, nil
}

// DecryptMessage opens a sealed message. Authentication failure or a
// corrupted encoding fails with ErrDecrypt; the caller treats that as
// fatal for this message only, not for the session.
func DecryptMessage(sealed domain.Sealed, key domain.GroupKey) (string, error) {
	aead, err := newGCM(key)
	if err != nil {
		return "", err
	}
	ct, err := UnB64(sealed.Ciphertext)
	if err != nil {
		return "", fmt.Errorf("%w: bad ciphertext encoding: %v", domain.ErrDecrypt, err)
	}
	nonce, err := UnB64(sealed.Nonce)
	if err != nil {
		return "", fmt.Errorf("%w: bad nonce encoding: %v", domain.ErrDecrypt, err)
	}
	if len(nonce) != GCMNonceBytes {
		return "", fmt.Errorf("%w: nonce length %d", domain.ErrDecrypt, len(nonce))
	}
	pt, err := aead.Open(nil, nonce, ct, nil)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrDecrypt, err)
	}
	return string(pt), nil
}

func newGCM(key domain.GroupKey) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key.Slice())
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}
