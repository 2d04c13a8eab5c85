package domain

import "errors"

// Crypto error taxonomy. Key establishment errors are fatal to encrypted
// messaging for the session; ErrDecrypt is fatal only to the one message.
var (
	// ErrKeyGeneration indicates the platform could not produce key material.
	ErrKeyGeneration = errors.New("key generation failed")

	// ErrKeyImport indicates a malformed or mismatched serialised key.
	ErrKeyImport = errors.New("key import failed")

	// ErrWrap indicates the group key could not be encrypted for a recipient.
	ErrWrap = errors.New("group key wrap failed")

	// ErrUnwrap indicates a ciphertext/key mismatch recovering the group key.
	ErrUnwrap = errors.New("group key unwrap failed")

	// ErrDecrypt indicates authentication failure on a single message.
	ErrDecrypt = errors.New("message decryption failed")
)

// Session/channel errors.
var (
	// ErrNotOpen is returned when sending while the channel is not open.
	// Sends are rejected, never queued.
	ErrNotOpen = errors.New("channel not open")

	// ErrNoIdentity is returned when connecting before the participant
	// identity has been resolved.
	ErrNoIdentity = errors.New("participant identity not resolved")

	// ErrNoKey is returned when the message pipeline runs without an
	// established group key.
	ErrNoKey = errors.New("group key not established")
)
