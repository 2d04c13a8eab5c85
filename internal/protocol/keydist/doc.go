// Package keydist implements per-room group key distribution.
//
// The room creator generates the group key and holds it; a joiner
// publishes a fresh RSA public key at join time, receives the group key
// wrapped for that key, and unwraps it locally. The unwrapped key and the
// joiner's private key never leave the process; only the exported public
// key crosses the network.
//
// State machine:
//
//	NoKey -> KeyEstablished            (host: EstablishAsHost)
//	NoKey -> AwaitingEnvelope          (joiner: PrepareJoin)
//	AwaitingEnvelope -> KeyEstablished (joiner: CompleteJoin)
//
// A failed CompleteJoin keeps the exchange in AwaitingEnvelope; the
// caller must treat it as fatal for encrypted messaging in this session,
// never as a cue to fall back to plaintext.
package keydist
