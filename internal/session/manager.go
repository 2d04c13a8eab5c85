package session

import (
	"context"
	"fmt"
	"net/url"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"anonchat/internal/domain"
)

// State is the connection manager's lifecycle position.
type State string

const (
	// StateIdle is before the first Connect.
	StateIdle State = "idle"
	// StateConnecting means a dial is in flight.
	StateConnecting State = "connecting"
	// StateOpen means frames can be sent and received.
	StateOpen State = "open"
	// StateReconnecting means the channel dropped and a redial is scheduled.
	StateReconnecting State = "reconnecting"
	// StateClosed is terminal; only explicit Close reaches it.
	StateClosed State = "closed"
)

// Config wires a Manager.
type Config struct {
	// URL is the websocket endpoint base, e.g. ws://127.0.0.1:8000/ws/chat.
	URL string
	// RoomCode and ParticipantID authenticate the channel. Connect fails
	// with ErrNoIdentity until ParticipantID is resolved.
	RoomCode      domain.RoomCode
	ParticipantID domain.ParticipantID

	Backoff Backoff
	Dialer  *websocket.Dialer
	Log     zerolog.Logger
}

// Manager owns the realtime channel lifecycle: dial, read, detect
// disconnect, redial with capped exponential backoff, and teardown.
// Inbound frames surface on Events; outbound sends are guarded and fail
// with ErrNotOpen rather than queueing while the channel is down.
type Manager struct {
	cfg    Config
	log    zerolog.Logger
	events chan domain.ServerEvent

	mu           sync.Mutex
	state        State
	conn         *websocket.Conn
	retries      int
	disconnected bool
	redial       *time.Timer
	done         chan struct{}
	ctx          context.Context
	cancel       context.CancelFunc
}

// NewManager returns an idle manager. Call Connect to bring the channel up.
func NewManager(cfg Config) *Manager {
	if cfg.Backoff == (Backoff{}) {
		cfg.Backoff = DefaultBackoff()
	}
	if cfg.Dialer == nil {
		cfg.Dialer = websocket.DefaultDialer
	}
	return &Manager{
		cfg:    cfg,
		log:    cfg.Log.With().Str("room", cfg.RoomCode.String()).Logger(),
		events: make(chan domain.ServerEvent, 64),
		done:   make(chan struct{}),
		state:  StateIdle,
	}
}

// Events delivers inbound server frames. Consumers should select on
// Events and Done together; Events is never closed.
func (m *Manager) Events() <-chan domain.ServerEvent { return m.events }

// Done is closed when the manager reaches StateClosed.
func (m *Manager) Done() <-chan struct{} { return m.done }

// State returns the current lifecycle state.
func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Open reports whether sends are currently possible.
func (m *Manager) Open() bool { return m.State() == StateOpen }

// Disconnected reports whether the channel is down and retrying; drives
// the transient reconnect indicator.
func (m *Manager) Disconnected() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.disconnected
}

// Connect dials the channel and starts the read loop. It requires a
// resolved participant id. The context governs the whole session: when
// it is cancelled, pending redials stop.
func (m *Manager) Connect(ctx context.Context) error {
	if m.cfg.ParticipantID == "" {
		return domain.ErrNoIdentity
	}
	m.mu.Lock()
	if m.state == StateClosed {
		m.mu.Unlock()
		return fmt.Errorf("connect: %s", StateClosed)
	}
	if m.ctx == nil {
		m.ctx, m.cancel = context.WithCancel(ctx)
	}
	m.state = StateConnecting
	m.mu.Unlock()

	return m.dial()
}

func (m *Manager) endpoint() string {
	return fmt.Sprintf("%s/%s/?participant_id=%s",
		m.cfg.URL,
		url.PathEscape(m.cfg.RoomCode.String()),
		url.QueryEscape(m.cfg.ParticipantID.String()))
}

func (m *Manager) dial() error {
	conn, _, err := m.cfg.Dialer.DialContext(m.ctx, m.endpoint(), nil)
	if err != nil {
		m.log.Warn().Err(err).Msg("dial failed")
		m.scheduleRedial()
		return err
	}

	m.mu.Lock()
	if m.state == StateClosed {
		m.mu.Unlock()
		conn.Close()
		return fmt.Errorf("connect: %s", StateClosed)
	}
	m.conn = conn
	m.state = StateOpen
	m.retries = 0
	m.disconnected = false
	m.mu.Unlock()

	m.log.Info().Msg("channel open")
	go m.readLoop(conn)
	return nil
}

// readLoop pushes inbound frames onto the events channel until the
// connection drops, then hands off to the reconnect path.
func (m *Manager) readLoop(conn *websocket.Conn) {
	for {
		var ev domain.ServerEvent
		if err := conn.ReadJSON(&ev); err != nil {
			m.mu.Lock()
			closed := m.state == StateClosed
			m.mu.Unlock()
			if closed {
				return
			}
			m.log.Warn().Err(err).Msg("channel dropped")
			m.scheduleRedial()
			return
		}
		select {
		case m.events <- ev:
		case <-m.done:
			return
		}
	}
}

// scheduleRedial arms the backoff timer for the next attempt. Attempts
// are unbounded; only Close or context cancellation stops the cycle.
func (m *Manager) scheduleRedial() {
	m.mu.Lock()
	if m.state == StateClosed {
		m.mu.Unlock()
		return
	}
	m.state = StateReconnecting
	m.disconnected = true
	m.retries++
	delay := m.cfg.Backoff.Delay(m.retries)
	retry := m.retries
	m.redial = time.AfterFunc(delay, func() {
		select {
		case <-m.ctx.Done():
			return
		default:
		}
		m.mu.Lock()
		if m.state != StateReconnecting {
			m.mu.Unlock()
			return
		}
		m.state = StateConnecting
		m.mu.Unlock()
		m.dial()
	})
	m.mu.Unlock()

	m.log.Info().Int("retry", retry).Dur("delay", delay).Msg("reconnect scheduled")
}

// Send writes one frame. It is synchronous-guarded: sending while the
// channel is not open fails loudly with ErrNotOpen, it never queues.
func (m *Manager) Send(frame domain.ClientFrame) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state != StateOpen || m.conn == nil {
		m.log.Error().Str("command", frame.Command).Str("state", string(m.state)).Msg("send rejected")
		return fmt.Errorf("send %s: %w", frame.Command, domain.ErrNotOpen)
	}
	return m.conn.WriteJSON(frame)
}

// Close tears the channel down: cancels any pending redial, closes the
// socket, and signals Done. Idempotent; every exit path (explicit leave,
// room expiry, teardown) must reach it so no reconnect races an
// intentional close.
func (m *Manager) Close() {
	m.mu.Lock()
	if m.state == StateClosed {
		m.mu.Unlock()
		return
	}
	m.state = StateClosed
	m.disconnected = false
	if m.redial != nil {
		m.redial.Stop()
		m.redial = nil
	}
	conn := m.conn
	m.conn = nil
	cancel := m.cancel
	m.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if conn != nil {
		conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(time.Second))
		conn.Close()
	}
	close(m.done)
	m.log.Info().Msg("channel closed")
}

var _ domain.Channel = (*Manager)(nil)
