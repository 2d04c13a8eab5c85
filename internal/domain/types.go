package domain

// RoomCode identifies a chat room.
type RoomCode string

// String returns the string form of the room code.
func (c RoomCode) String() string { return string(c) }

// ParticipantID is the opaque identifier the room API assigns on create/join.
type ParticipantID string

// String returns the string form of the participant id.
func (id ParticipantID) String() string { return string(id) }

// Role distinguishes the room creator from everyone else.
type Role string

const (
	// RoleHost is the participant that created the room and owns the group key.
	RoleHost Role = "host"
	// RoleMember is any participant that joined an existing room.
	RoleMember Role = "member"
)

// String returns the string form of the role.
func (r Role) String() string { return string(r) }

// Participant is one entry in a room's member roster.
type Participant struct {
	ID       ParticipantID `json:"id"`
	Nickname string        `json:"nickname"`
	Role     Role          `json:"role"`
}

// GroupKey is the single AES-256 key encrypting all messages in a room.
// It is generated once by the host and only ever crosses the network
// wrapped for a recipient's RSA public key.
type GroupKey [32]byte

// Slice returns the key as a []byte.
func (k GroupKey) Slice() []byte { return k[:] }

// IsZero reports whether the key is unset.
func (k GroupKey) IsZero() bool { return k == GroupKey{} }

// Sealed is one authenticated-encrypted payload: base64 ciphertext plus
// the base64 nonce it was sealed under. The nonce is not secret but must
// be unique per key; both travel together on the wire.
type Sealed struct {
	Ciphertext string `json:"ciphertext"`
	Nonce      string `json:"nonce"`
}

// RoomInfo describes a room's configured lifetime.
type RoomInfo struct {
	ExpirationDuration int `json:"expiration_duration"` // minutes
}
