package crypto

import (
	"crypto/sha256"
	"encoding/hex"
)

// Fingerprint returns a short hex fingerprint of key material, for
// comparing room keys out of band.
//
// It hashes with SHA-256 and truncates to 10 bytes (20 hex chars).
func Fingerprint(key []byte) string {
	sum := sha256.Sum256(key)
	return hex.EncodeToString(sum[:10])
}
