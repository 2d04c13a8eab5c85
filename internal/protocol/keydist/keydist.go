package keydist

import (
	"crypto/rsa"
	"fmt"
	"sync"

	"anonchat/internal/crypto"
	"anonchat/internal/domain"
)

// State is the exchange's position in the distribution protocol.
type State string

const (
	// StateNoKey is the initial state before create or join.
	StateNoKey State = "no_key"
	// StateAwaitingEnvelope is a joiner that has published its public key
	// and is waiting to unwrap the group key.
	StateAwaitingEnvelope State = "awaiting_envelope"
	// StateKeyEstablished means the group key is sealed and usable.
	StateKeyEstablished State = "key_established"
)

// Exchange runs the group key distribution for one session.
type Exchange struct {
	mu      sync.Mutex
	state   State
	priv    *rsa.PrivateKey
	keyring *Keyring
}

// NewExchange returns an exchange in StateNoKey with an empty keyring.
func NewExchange() *Exchange {
	return &Exchange{state: StateNoKey, keyring: NewKeyring()}
}

// State returns the current protocol state.
func (e *Exchange) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// Keyring exposes the sealed group key for the message pipeline.
func (e *Exchange) Keyring() *Keyring { return e.keyring }

// EstablishAsHost generates the room's group key. The host needs no
// envelope for itself; the key is sealed and the exchange is established
// immediately.
func (e *Exchange) EstablishAsHost() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state != StateNoKey {
		return fmt.Errorf("establish as host: state %s", e.state)
	}
	key, err := crypto.GenerateGroupKey()
	if err != nil {
		return err
	}
	e.keyring.Seal(key)
	e.state = StateKeyEstablished
	return nil
}

// PrepareJoin generates the joiner's RSA pair and returns the exported
// public key for the join-room request. The private key stays here.
func (e *Exchange) PrepareJoin() (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state != StateNoKey {
		return "", fmt.Errorf("prepare join: state %s", e.state)
	}
	priv, err := crypto.GenerateKeyPair()
	if err != nil {
		return "", err
	}
	pub, err := crypto.ExportPublicKey(&priv.PublicKey)
	if err != nil {
		return "", err
	}
	e.priv = priv
	e.state = StateAwaitingEnvelope
	return pub, nil
}

// CompleteJoin unwraps the envelope the join-room response carried and
// seals the recovered group key. On failure the exchange stays in
// AwaitingEnvelope and the session must not proceed to encrypted
// messaging.
func (e *Exchange) CompleteJoin(envelope string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state != StateAwaitingEnvelope {
		return fmt.Errorf("complete join: state %s", e.state)
	}
	key, err := crypto.UnwrapGroupKey(envelope, e.priv)
	if err != nil {
		return err
	}
	e.keyring.Seal(key)
	e.state = StateKeyEstablished
	return nil
}

// ExportKeyPair serialises the joiner's RSA pair for the session
// descriptor. Hosts have no pair and get a zero export.
func (e *Exchange) ExportKeyPair() (domain.KeyPairExport, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.priv == nil {
		return domain.KeyPairExport{}, nil
	}
	pub, err := crypto.ExportPublicKey(&e.priv.PublicKey)
	if err != nil {
		return domain.KeyPairExport{}, err
	}
	priv, err := crypto.ExportPrivateKey(e.priv)
	if err != nil {
		return domain.KeyPairExport{}, err
	}
	return domain.KeyPairExport{Public: pub, Private: priv}, nil
}

// Restore rebuilds an established exchange from a persisted descriptor
// (the page-reload path). The descriptor's group key is required; the
// key pair is present only for members.
func Restore(d domain.RoomDescriptor) (*Exchange, error) {
	raw, err := crypto.UnB64(d.GroupKey)
	if err != nil {
		return nil, fmt.Errorf("%w: bad group key encoding: %v", domain.ErrKeyImport, err)
	}
	var key domain.GroupKey
	if len(raw) != len(key) {
		return nil, fmt.Errorf("%w: group key length %d", domain.ErrKeyImport, len(raw))
	}
	copy(key[:], raw)

	e := NewExchange()
	if d.KeyPair.Private != "" {
		priv, err := crypto.ImportPrivateKey(d.KeyPair.Private)
		if err != nil {
			return nil, err
		}
		e.priv = priv
	}
	e.keyring.Seal(key)
	e.state = StateKeyEstablished
	return e, nil
}
