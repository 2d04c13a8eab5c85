package pipeline

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"anonchat/internal/crypto"
	"anonchat/internal/domain"
	"anonchat/internal/protocol/keydist"
)

// Pipeline routes messages between the user, the cipher, and the channel
// for one session.
type Pipeline struct {
	self    domain.Participant
	keyring *keydist.Keyring
	channel domain.Channel
	log     zerolog.Logger

	mu    sync.Mutex
	state *State
}

// New wires a pipeline for the given participant. The keyring must be
// established before Send or Apply see any ciphertext.
func New(self domain.Participant, keyring *keydist.Keyring, channel domain.Channel, log zerolog.Logger) *Pipeline {
	return &Pipeline{
		self:    self,
		keyring: keyring,
		channel: channel,
		log:     log.With().Str("participant", self.ID.String()).Logger(),
		state:   NewState(),
	}
}

// Messages returns a snapshot of the session's message list.
func (p *Pipeline) Messages() []domain.Message {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state.Messages()
}

// Roster returns a snapshot of the member roster.
func (p *Pipeline) Roster() map[domain.ParticipantID]domain.Participant {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state.Roster()
}

// Send encrypts text, appends it optimistically as pending, and writes
// the frame. The channel is checked first: while it is not open the send
// is rejected with ErrNotOpen and nothing is appended or queued.
func (p *Pipeline) Send(text string) (domain.Message, error) {
	if !p.channel.Open() {
		p.log.Error().Msg("send while channel not open")
		return domain.Message{}, domain.ErrNotOpen
	}

	var sealed domain.Sealed
	err := p.keyring.Use(func(key domain.GroupKey) error {
		var err error
		sealed, err = crypto.EncryptMessage(text, key)
		return err
	})
	if err != nil {
		return domain.Message{}, fmt.Errorf("encrypt outbound: %w", err)
	}

	msg := domain.Message{
		TmpID:  uuid.NewString(),
		Sender: p.self,
		Sealed: sealed,
		Text:   text,
		Status: domain.StatusPending,
	}

	p.mu.Lock()
	p.state.append(msg)
	p.mu.Unlock()

	err = p.channel.Send(domain.ClientFrame{
		Command:      domain.CommandSendMessage,
		Message:      &sealed,
		MessageTmpID: msg.TmpID,
	})
	if err != nil {
		return msg, fmt.Errorf("send message: %w", err)
	}
	return msg, nil
}

// Preload seeds the state with decrypted history fetched from the room
// API before the channel opens. Undecryptable rows are kept as
// placeholders; one bad record never aborts the preload.
func (p *Pipeline) Preload(records []domain.MessageRecord) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, r := range records {
		p.state.append(p.decryptRecord(r))
	}
}

// SetRoster replaces the member roster, normally from the participants
// endpoint at session start.
func (p *Pipeline) SetRoster(roster map[domain.ParticipantID]domain.Participant) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for id, participant := range roster {
		if participant.ID == "" {
			participant.ID = id
		}
		p.state.addParticipant(participant)
	}
}

// Apply folds one server event into the state and returns the effect the
// driver must carry out. It is the only inbound mutation path.
func (p *Pipeline) Apply(ev domain.ServerEvent) Effect {
	p.mu.Lock()
	defer p.mu.Unlock()

	switch ev.ResponseType {
	case domain.EventNewMessage:
		p.applyNewMessage(ev)
	case domain.EventJoinParticipant:
		if ev.Participant != nil {
			p.state.addParticipant(*ev.Participant)
		}
	case domain.EventLeaveParticipant:
		if ev.Participant != nil {
			p.state.removeParticipant(*ev.Participant)
		}
	case domain.EventHostDismissRoom:
		return EffectNavigate
	default:
		p.log.Warn().Str("response_type", ev.ResponseType).Msg("unknown server event")
	}
	return EffectNone
}

func (p *Pipeline) applyNewMessage(ev domain.ServerEvent) {
	status := ev.Status
	if status == "" {
		status = domain.StatusDelivered
	}

	// Our own echo: reconcile the pending entry in place. Duplicate
	// echoes match the already-delivered entry and fall through without
	// appending a second copy.
	if ev.Sender.ID == p.self.ID && p.state.reconcile(ev.MessageTmpID, ev.ID, status, ev.CreatedAt) {
		return
	}

	sealed := domain.Sealed{Ciphertext: ev.Ciphertext, Nonce: ev.Nonce}
	msg := domain.Message{
		ID:        ev.ID,
		Sender:    ev.Sender,
		Sealed:    sealed,
		CreatedAt: ev.CreatedAt,
		Status:    status,
	}

	text, err := p.decrypt(sealed)
	if err != nil {
		// Fatal for this message only; the session keeps processing.
		p.log.Warn().Err(err).Str("id", ev.ID).Msg("undecryptable message")
		msg.Undecryptable = true
	} else {
		msg.Text = text
	}
	p.state.append(msg)
}

func (p *Pipeline) decrypt(sealed domain.Sealed) (string, error) {
	var text string
	err := p.keyring.Use(func(key domain.GroupKey) error {
		var err error
		text, err = crypto.DecryptMessage(sealed, key)
		return err
	})
	return text, err
}

func (p *Pipeline) decryptRecord(r domain.MessageRecord) domain.Message {
	msg := domain.Message{
		ID: r.ID,
		Sender: domain.Participant{
			ID:       domain.ParticipantID(r.SenderID),
			Nickname: r.SenderNick,
			Role:     r.SenderRole,
		},
		Sealed:    domain.Sealed{Ciphertext: r.Ciphertext, Nonce: r.Nonce},
		CreatedAt: r.CreatedAt,
		Status:    domain.StatusDelivered,
	}
	text, err := p.decrypt(msg.Sealed)
	if err != nil {
		p.log.Warn().Err(err).Str("id", r.ID).Msg("history decrypt failed")
		msg.Undecryptable = true
		return msg
	}
	msg.Text = text
	return msg
}

// Leave sends the leave_room command if the channel is still open. Used
// by every teardown path; a closed channel is not an error here.
func (p *Pipeline) Leave(code domain.RoomCode) {
	if !p.channel.Open() {
		return
	}
	if err := p.channel.Send(domain.ClientFrame{
		Command:  domain.CommandLeaveRoom,
		RoomCode: code,
	}); err != nil {
		p.log.Warn().Err(err).Msg("leave command failed")
	}
}
