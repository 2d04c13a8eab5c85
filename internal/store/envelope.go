package store

import (
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/chacha20poly1305"
)

// The current supported version of the encrypted blob format stored on disk.
const envelopeFormatVersion = 1

// ErrWrongPassphrase is returned when the passphrase is incorrect or the
// ciphertext has been modified / corrupted.
var ErrWrongPassphrase = errors.New("wrong passphrase or corrupted descriptor")

// envelope is the on-disk JSON structure holding the ciphertext and KDF
// parameters.
type envelope struct {
	V      int    `json:"v"`
	Salt   []byte `json:"salt"`
	Nonce  []byte `json:"nonce"`
	Time   uint32 `json:"argon2_t"`
	Memory uint32 `json:"argon2_m"`
	Lanes  uint8  `json:"argon2_p"`
	Cipher []byte `json:"cipher"`
}

// seal derives a key from passphrase with argon2id and seals raw into a
// JSON envelope.
func seal(passphrase string, raw []byte, time, memory uint32, lanes uint8) ([]byte, error) {
	var salt [16]byte
	if _, err := rand.Read(salt[:]); err != nil {
		return nil, err
	}
	key := argon2.IDKey([]byte(passphrase), salt[:], time, memory, lanes, chacha20poly1305.KeySize)
	aead, err := chacha20poly1305.New(key)
	if err != nil {
		return nil, err
	}
	nonce := make([]byte, aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return nil, err
	}
	ct := aead.Seal(nil, nonce, raw, salt[:])

	return json.Marshal(envelope{
		V:      envelopeFormatVersion,
		Salt:   salt[:],
		Nonce:  nonce,
		Time:   time,
		Memory: memory,
		Lanes:  lanes,
		Cipher: ct,
	})
}

// open unseals a JSON envelope using a key derived from passphrase.
func open(passphrase string, b []byte) ([]byte, error) {
	var env envelope
	if err := json.Unmarshal(b, &env); err != nil {
		return nil, ErrWrongPassphrase
	}
	if env.V > envelopeFormatVersion {
		return nil, fmt.Errorf("unsupported descriptor version %d", env.V)
	}
	if env.Time == 0 || env.Memory == 0 || env.Lanes == 0 {
		return nil, ErrWrongPassphrase
	}

	key := argon2.IDKey([]byte(passphrase), env.Salt, env.Time, env.Memory, env.Lanes, chacha20poly1305.KeySize)
	aead, err := chacha20poly1305.New(key)
	if err != nil {
		return nil, err
	}
	pt, err := aead.Open(nil, env.Nonce, env.Cipher, env.Salt)
	if err != nil {
		return nil, ErrWrongPassphrase
	}
	return pt, nil
}

// Tunables for argon2id key derivation.
func argonParamsDefault() (time, memory uint32, lanes uint8) {
	return 1, 64 * 1024, 4
}
