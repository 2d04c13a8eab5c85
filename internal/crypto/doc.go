// Package crypto exposes the minimal primitives used by anonchat.
//
// Contents
//
//   - RSA-2048 key pair generation plus SPKI/PKCS8 export and import
//     (GenerateKeyPair, ExportPublicKey, ImportPrivateKey, ...)
//   - RSA-OAEP/SHA-256 wrapping and unwrapping of the room group key
//     (WrapGroupKey, UnwrapGroupKey)
//   - AES-256-GCM message encryption under the group key with fresh
//     per-call nonces (GenerateGroupKey, EncryptMessage, DecryptMessage)
//   - Short key fingerprints for out-of-band comparison (Fingerprint)
//
// # Notes
//
// All wire encodings use base64 without padding (B64/UnB64). Failures map
// onto the sentinel errors in internal/domain so callers can discriminate
// session-fatal key errors from per-message decrypt errors with errors.Is.
// Callers should treat raw key bytes as sensitive and rely on
// internal/util/memzero when practical to reduce lifetime in memory.
package crypto
