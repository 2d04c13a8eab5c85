package domain

// Commands the client sends over the realtime channel.
const (
	CommandSendMessage = "send_message"
	CommandLeaveRoom   = "leave_room"
)

// Response types the server emits over the realtime channel.
const (
	EventNewMessage       = "new_message"
	EventJoinParticipant  = "join_participant"
	EventLeaveParticipant = "leave_participant"
	EventHostDismissRoom  = "host_dismiss_room"
)

// ClientFrame is one JSON frame from client to server.
type ClientFrame struct {
	Command      string   `json:"command"`
	RoomCode     RoomCode `json:"room_code,omitempty"`
	Message      *Sealed  `json:"message,omitempty"`
	MessageTmpID string   `json:"message_tmp_id,omitempty"`
}

// ServerEvent is one JSON frame from server to client, discriminated by
// ResponseType. Fields not relevant to a given type stay zero.
type ServerEvent struct {
	ResponseType string        `json:"response_type"`
	ID           string        `json:"id,omitempty"`
	Sender       Participant   `json:"sender,omitempty"`
	Ciphertext   string        `json:"ciphertext,omitempty"`
	Nonce        string        `json:"nonce,omitempty"`
	CreatedAt    string        `json:"created_at,omitempty"`
	MessageTmpID string        `json:"message_tmp_id,omitempty"`
	Status       MessageStatus `json:"status,omitempty"`
	Participant  *Participant  `json:"participant,omitempty"`
}
