package domain

// KeyPairExport is an RSA key pair serialised for storage: SPKI public and
// PKCS8 private DER, each base64-encoded without padding.
type KeyPairExport struct {
	Public  string `json:"public"`
	Private string `json:"private"`
}

// RoomDescriptor is the minimal per-room session state persisted so a
// participant can re-enter a room after process restart. It necessarily
// carries exported key material, a residual-exposure tradeoff the design
// accepts; the store keeps it encrypted at rest.
type RoomDescriptor struct {
	RoomCode      RoomCode      `json:"room_code"`
	Nickname      string        `json:"nickname"`
	ParticipantID ParticipantID `json:"participant_id"`
	Role          Role          `json:"role"`
	GroupKey      string        `json:"group_key"` // raw key, base64 no padding
	KeyPair       KeyPairExport `json:"rsa_key_pair,omitempty"`
}

// Self returns the descriptor's owner as a roster participant.
func (d RoomDescriptor) Self() Participant {
	return Participant{ID: d.ParticipantID, Nickname: d.Nickname, Role: d.Role}
}
