package domain

import "context"

// RoomClient is how we talk to the room HTTP API.
type RoomClient interface {
	CreateRoom(ctx context.Context, req CreateRoomRequest) (CreateRoomResponse, error)
	JoinRoom(ctx context.Context, req JoinRoomRequest) (JoinRoomResponse, error)
	RoomMessages(ctx context.Context, code RoomCode) ([]MessageRecord, error)
	RoomParticipants(ctx context.Context, code RoomCode) (map[ParticipantID]Participant, error)
	RoomInfo(ctx context.Context, code RoomCode) (RoomInfo, error)
}

// DescriptorStore persists per-room session descriptors encrypted at rest.
type DescriptorStore interface {
	SaveDescriptor(passphrase string, d RoomDescriptor) error
	LoadDescriptor(passphrase string, code RoomCode) (RoomDescriptor, bool, error)
	DeleteDescriptor(code RoomCode) error
	ListRooms() ([]RoomCode, error)
}

// RoomService drives room membership for the CLI: create and join run
// the key distribution protocol and persist the resulting descriptor.
type RoomService interface {
	Create(ctx context.Context, passphrase, nickname string, code RoomCode, expirationMinutes int) (RoomDescriptor, error)
	Join(ctx context.Context, passphrase, nickname string, code RoomCode) (RoomDescriptor, error)
	Load(passphrase string, code RoomCode) (RoomDescriptor, bool, error)
	Leave(code RoomCode) error
	Rooms() ([]RoomCode, error)
}

// Channel is the realtime connection the message pipeline writes to.
// Implemented by the session connection manager.
type Channel interface {
	Send(frame ClientFrame) error
	Open() bool
}

// CreateRoomRequest creates a room; code and nickname are optional and
// assigned by the server when empty.
type CreateRoomRequest struct {
	RoomCode           RoomCode `json:"room_code,omitempty"`
	Nickname           string   `json:"nickname,omitempty"`
	ExpirationDuration int      `json:"expiration_duration"`
}

// CreateRoomResponse is the server's answer to a successful create.
type CreateRoomResponse struct {
	RoomCode      RoomCode      `json:"room_code"`
	Nickname      string        `json:"nickname"`
	ParticipantID ParticipantID `json:"participant_id"`
	Role          Role          `json:"role"`
}

// JoinRoomRequest joins an existing room. RSAPublicKey is the joiner's
// exported public key; the server wraps the group key for it.
type JoinRoomRequest struct {
	RoomCode     RoomCode `json:"room_code"`
	Nickname     string   `json:"nickname,omitempty"`
	RSAPublicKey string   `json:"rsa_public_key"`
}

// JoinRoomResponse carries the wrapped group key alongside the assigned
// identity. EncryptedGroupKey is consumed once by the joiner to recover
// the group key, then discarded.
type JoinRoomResponse struct {
	RoomCode          RoomCode      `json:"room_code"`
	Nickname          string        `json:"nickname"`
	ParticipantID     ParticipantID `json:"participant_id"`
	Role              Role          `json:"role"`
	EncryptedGroupKey string        `json:"encrypted_group_key"`
}
