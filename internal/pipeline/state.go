package pipeline

import (
	"anonchat/internal/domain"
)

// Effect tells the session driver what to do beyond state mutation.
type Effect int

const (
	// EffectNone means the event was absorbed into state.
	EffectNone Effect = iota
	// EffectNavigate means the session is over (host dismissed the room)
	// and the driver should tear down and navigate away.
	EffectNavigate
)

// State is the single-writer session state: the in-memory message list
// and the member roster. Mutations happen only through Pipeline.Apply and
// Pipeline.Send so interleaved inbound and outbound updates cannot
// clobber each other; reads take snapshots.
type State struct {
	messages []domain.Message
	roster   map[domain.ParticipantID]domain.Participant
}

// NewState returns an empty session state.
func NewState() *State {
	return &State{roster: make(map[domain.ParticipantID]domain.Participant)}
}

// Messages returns a snapshot of the message list.
func (s *State) Messages() []domain.Message {
	out := make([]domain.Message, len(s.messages))
	copy(out, s.messages)
	return out
}

// Roster returns a snapshot of the member roster.
func (s *State) Roster() map[domain.ParticipantID]domain.Participant {
	out := make(map[domain.ParticipantID]domain.Participant, len(s.roster))
	for id, p := range s.roster {
		out[id] = p
	}
	return out
}

func (s *State) append(m domain.Message) { s.messages = append(s.messages, m) }

// reconcile promotes the pending message carrying tmpID to delivered with
// the server-assigned id. It reports whether a pending entry matched; a
// second call with the same tmpID finds the entry already delivered and
// reports true without changing anything, keeping reconciliation
// idempotent.
func (s *State) reconcile(tmpID, serverID string, status domain.MessageStatus, createdAt string) bool {
	for i := range s.messages {
		if s.messages[i].TmpID != tmpID || tmpID == "" {
			continue
		}
		if s.messages[i].Status != domain.StatusDelivered {
			s.messages[i].ID = serverID
			s.messages[i].Status = status
			// The server clock owns message timestamps; pending entries
			// have none until the echo supplies it.
			if createdAt != "" {
				s.messages[i].CreatedAt = createdAt
			}
		}
		return true
	}
	return false
}

func (s *State) addParticipant(p domain.Participant)    { s.roster[p.ID] = p }
func (s *State) removeParticipant(p domain.Participant) { delete(s.roster, p.ID) }
