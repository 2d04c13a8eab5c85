package domain

// MessageStatus tracks an outbound message through optimistic delivery.
type MessageStatus string

const (
	// StatusPending marks a locally appended message awaiting the server echo.
	StatusPending MessageStatus = "pending"
	// StatusDelivered marks a message the server has persisted and echoed.
	StatusDelivered MessageStatus = "delivered"
)

// Message is one entry in the session's in-memory message list.
//
// Outbound messages start with a client-generated TmpID, StatusPending and
// an empty ID; the server echo carrying the same TmpID promotes them to
// StatusDelivered with the server-assigned ID. Inbound messages from other
// participants arrive delivered. Text holds the decrypted plaintext, or is
// empty with Undecryptable set when authentication failed for this one
// message.
type Message struct {
	ID            string        `json:"id"`
	TmpID         string        `json:"tmp_id,omitempty"`
	Sender        Participant   `json:"sender"`
	Sealed        Sealed        `json:"sealed"`
	Text          string        `json:"text"`
	CreatedAt     string        `json:"created_at"`
	Status        MessageStatus `json:"status"`
	Undecryptable bool          `json:"undecryptable,omitempty"`
}

// MessageRecord is one row of the history returned by the room API.
type MessageRecord struct {
	ID         string `json:"id"`
	SenderID   string `json:"sender_id"`
	SenderNick string `json:"sender_nickname"`
	SenderRole Role   `json:"sender_role"`
	Ciphertext string `json:"ciphertext"`
	Nonce      string `json:"nonce"`
	CreatedAt  string `json:"created_at"`
}
