package session_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"anonchat/internal/domain"
	"anonchat/internal/session"
)

// chatServer is a minimal websocket endpoint recording connections and
// echoing frames it is told to.
type chatServer struct {
	t        *testing.T
	upgrader websocket.Upgrader

	mu    sync.Mutex
	conns []*websocket.Conn
	dials int
}

func newChatServer(t *testing.T) (*chatServer, *httptest.Server) {
	t.Helper()
	cs := &chatServer{t: t}
	srv := httptest.NewServer(http.HandlerFunc(cs.handle))
	t.Cleanup(srv.Close)
	return cs, srv
}

func (cs *chatServer) handle(w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Get("participant_id") == "" {
		http.Error(w, "missing participant_id", http.StatusForbidden)
		return
	}
	conn, err := cs.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	cs.mu.Lock()
	cs.conns = append(cs.conns, conn)
	cs.dials++
	cs.mu.Unlock()

	// Keep the connection alive; discard client frames.
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

func (cs *chatServer) dialCount() int {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	return cs.dials
}

func (cs *chatServer) push(ev domain.ServerEvent) {
	cs.mu.Lock()
	conn := cs.conns[len(cs.conns)-1]
	cs.mu.Unlock()
	if err := conn.WriteJSON(ev); err != nil {
		cs.t.Errorf("server write: %v", err)
	}
}

func (cs *chatServer) dropAll() {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	for _, c := range cs.conns {
		c.Close()
	}
	cs.conns = nil
}

func wsURL(srv *httptest.Server) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

func newManager(t *testing.T, srv *httptest.Server, backoff session.Backoff) *session.Manager {
	t.Helper()
	m := session.NewManager(session.Config{
		URL:           wsURL(srv),
		RoomCode:      "AB12",
		ParticipantID: "p-1",
		Backoff:       backoff,
		Log:           zerolog.Nop(),
	})
	t.Cleanup(m.Close)
	return m
}

func waitFor(t *testing.T, cond func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal(msg)
}

func TestConnect_RequiresIdentity(t *testing.T) {
	m := session.NewManager(session.Config{URL: "ws://127.0.0.1:1", RoomCode: "AB12", Log: zerolog.Nop()})
	if err := m.Connect(context.Background()); !errors.Is(err, domain.ErrNoIdentity) {
		t.Fatalf("got %v, want ErrNoIdentity", err)
	}
}

func TestConnect_OpensAndReceives(t *testing.T) {
	cs, srv := newChatServer(t)
	m := newManager(t, srv, session.Backoff{})

	if err := m.Connect(context.Background()); err != nil {
		t.Fatalf("Connect: %v", err)
	}
	if m.State() != session.StateOpen {
		t.Fatalf("state %s, want open", m.State())
	}
	if m.Disconnected() {
		t.Fatal("disconnected flag set on open channel")
	}

	cs.push(domain.ServerEvent{ResponseType: domain.EventNewMessage, ID: "m-1"})
	select {
	case ev := <-m.Events():
		if ev.ResponseType != domain.EventNewMessage || ev.ID != "m-1" {
			t.Fatalf("event %+v", ev)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("no event received")
	}
}

func TestSend_WhileNotOpen_Rejected(t *testing.T) {
	m := session.NewManager(session.Config{
		URL: "ws://127.0.0.1:1", RoomCode: "AB12", ParticipantID: "p-1", Log: zerolog.Nop(),
	})
	defer m.Close()

	err := m.Send(domain.ClientFrame{Command: domain.CommandSendMessage})
	if !errors.Is(err, domain.ErrNotOpen) {
		t.Fatalf("got %v, want ErrNotOpen", err)
	}
}

// A failed first dial is not terminal: the manager arms its backoff
// timer just like after a drop, so callers can carry on and let the
// retry cycle bring the channel up.
func TestConnect_InitialDialFailure_RetriesWithBackoff(t *testing.T) {
	m := session.NewManager(session.Config{
		URL:           "ws://127.0.0.1:1",
		RoomCode:      "AB12",
		ParticipantID: "p-1",
		Backoff:       session.Backoff{Base: 10 * time.Millisecond, Cap: 20 * time.Millisecond},
		Log:           zerolog.Nop(),
	})
	defer m.Close()

	if err := m.Connect(context.Background()); err == nil {
		t.Fatal("Connect to an unreachable endpoint succeeded")
	}
	waitFor(t, func() bool { return m.Disconnected() }, "disconnected flag not set")
	waitFor(t, func() bool { return m.State() != session.StateIdle }, "manager gave up after first dial")

	m.Close()
	if m.State() != session.StateClosed {
		t.Fatalf("state %s, want closed", m.State())
	}
}

func TestDrop_ReconnectsWithBackoff(t *testing.T) {
	cs, srv := newChatServer(t)
	m := newManager(t, srv, session.Backoff{Base: 5 * time.Millisecond, Cap: 20 * time.Millisecond})

	if err := m.Connect(context.Background()); err != nil {
		t.Fatalf("Connect: %v", err)
	}
	waitFor(t, func() bool { return cs.dialCount() == 1 }, "no initial connection")

	cs.dropAll()
	waitFor(t, func() bool { return cs.dialCount() >= 2 }, "no reconnect after drop")
	waitFor(t, func() bool { return m.State() == session.StateOpen }, "channel did not reopen")
	if m.Disconnected() {
		t.Fatal("disconnected flag still set after reopen")
	}

	// Retry counter reset on open: a second drop reconnects promptly again.
	cs.dropAll()
	waitFor(t, func() bool { return cs.dialCount() >= 3 }, "no reconnect after second drop")
}

func TestClose_CancelsPendingReconnect(t *testing.T) {
	cs, srv := newChatServer(t)
	m := newManager(t, srv, session.Backoff{Base: 50 * time.Millisecond, Cap: 100 * time.Millisecond})

	if err := m.Connect(context.Background()); err != nil {
		t.Fatalf("Connect: %v", err)
	}
	waitFor(t, func() bool { return cs.dialCount() == 1 }, "no initial connection")

	cs.dropAll()
	waitFor(t, func() bool { return m.Disconnected() }, "drop not detected")

	m.Close()
	if m.State() != session.StateClosed {
		t.Fatalf("state %s, want closed", m.State())
	}
	select {
	case <-m.Done():
	default:
		t.Fatal("Done not signalled after Close")
	}

	// The armed redial must not fire after teardown.
	dials := cs.dialCount()
	time.Sleep(200 * time.Millisecond)
	if cs.dialCount() != dials {
		t.Fatal("reconnect fired after Close")
	}

	m.Close() // idempotent
}

func TestClose_TerminatesState(t *testing.T) {
	_, srv := newChatServer(t)
	m := newManager(t, srv, session.Backoff{})

	if err := m.Connect(context.Background()); err != nil {
		t.Fatalf("Connect: %v", err)
	}
	m.Close()

	if err := m.Connect(context.Background()); err == nil {
		t.Fatal("Connect after Close should fail")
	}
	if err := m.Send(domain.ClientFrame{Command: domain.CommandLeaveRoom}); !errors.Is(err, domain.ErrNotOpen) {
		t.Fatalf("got %v, want ErrNotOpen", err)
	}
}
