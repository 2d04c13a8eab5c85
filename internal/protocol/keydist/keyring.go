package keydist

import (
	"fmt"

	"github.com/awnumar/memguard"

	"anonchat/internal/crypto"
	"anonchat/internal/domain"
)

// Keyring holds the room's group key sealed in a memguard enclave so the
// raw bytes stay encrypted in memory between uses.
type Keyring struct {
	enclave *memguard.Enclave
}

// NewKeyring returns an empty keyring.
func NewKeyring() *Keyring { return &Keyring{} }

// Seal stores the group key. The plaintext copy handed in is wiped by
// memguard as part of enclave construction.
func (k *Keyring) Seal(key domain.GroupKey) {
	buf := make([]byte, len(key))
	copy(buf, key.Slice())
	k.enclave = memguard.NewEnclave(buf)
}

// Established reports whether a group key has been sealed.
func (k *Keyring) Established() bool { return k.enclave != nil }

// Use opens the enclave, hands the group key to f, and destroys the
// plaintext buffer again when f returns.
func (k *Keyring) Use(f func(domain.GroupKey) error) error {
	if k.enclave == nil {
		return domain.ErrNoKey
	}
	lb, err := k.enclave.Open()
	if err != nil {
		return fmt.Errorf("open keyring: %w", err)
	}
	defer lb.Destroy()

	var key domain.GroupKey
	copy(key[:], lb.Bytes())
	return f(key)
}

// Export returns the group key base64-encoded for descriptor persistence.
// Persisting exported key material is the accepted reload tradeoff.
func (k *Keyring) Export() (string, error) {
	var out string
	err := k.Use(func(key domain.GroupKey) error {
		out = crypto.B64(key.Slice())
		return nil
	})
	return out, err
}
