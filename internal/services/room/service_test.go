package room_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"

	"anonchat/internal/crypto"
	"anonchat/internal/domain"
	"anonchat/internal/protocol/keydist"
	"anonchat/internal/relay"
	roomsvc "anonchat/internal/services/room"
	"anonchat/internal/store"
)

func writeData(t *testing.T, w http.ResponseWriter, v any) {
	t.Helper()
	if err := json.NewEncoder(w).Encode(map[string]any{"data": v}); err != nil {
		t.Fatalf("encode response: %v", err)
	}
}

// newService wires a Service against srv the way the app does, with a
// fresh store home per test.
func newService(t *testing.T, srv *httptest.Server) *roomsvc.Service {
	t.Helper()
	return roomsvc.New(
		store.NewFileStore(t.TempDir()),
		relay.NewHTTP(srv.URL, srv.Client()),
		zerolog.Nop(),
	)
}

func TestCreate_PersistsDescriptor(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/create-room/" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		var req domain.CreateRoomRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if req.ExpirationDuration != 10 {
			t.Fatalf("ExpirationDuration = %d, want 10", req.ExpirationDuration)
		}
		writeData(t, w, domain.CreateRoomResponse{
			RoomCode:      "QX7P2M",
			Nickname:      req.Nickname,
			ParticipantID: "host-1",
			Role:          domain.RoleHost,
		})
	}))
	defer srv.Close()

	svc := newService(t, srv)
	d, err := svc.Create(context.Background(), "pass", "ShadowFox", "", 10)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if d.RoomCode != "QX7P2M" || d.Role != domain.RoleHost {
		t.Fatalf("descriptor = %+v", d)
	}
	if d.GroupKey == "" {
		t.Fatal("descriptor has no group key")
	}

	got, ok, err := svc.Load("pass", "QX7P2M")
	if err != nil || !ok {
		t.Fatalf("load after create: ok=%v err=%v", ok, err)
	}
	if got != d {
		t.Fatalf("reloaded descriptor differs: %+v vs %+v", got, d)
	}

	// The persisted key must restore into an established exchange.
	ex, err := keydist.Restore(got)
	if err != nil {
		t.Fatalf("restore: %v", err)
	}
	if ex.State() != keydist.StateKeyEstablished {
		t.Fatalf("state after restore = %s", ex.State())
	}
}

func TestJoin_UnwrapsGroupKey(t *testing.T) {
	groupKey, err := crypto.GenerateGroupKey()
	if err != nil {
		t.Fatalf("group key: %v", err)
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/join-room/" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		var req domain.JoinRoomRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		pub, err := crypto.ImportPublicKey(req.RSAPublicKey)
		if err != nil {
			t.Fatalf("joiner sent unusable public key: %v", err)
		}
		envelope, err := crypto.WrapGroupKey(groupKey, pub)
		if err != nil {
			t.Fatalf("wrap: %v", err)
		}
		writeData(t, w, domain.JoinRoomResponse{
			RoomCode:          req.RoomCode,
			Nickname:          "QuietOwl",
			ParticipantID:     "member-2",
			Role:              domain.RoleMember,
			EncryptedGroupKey: envelope,
		})
	}))
	defer srv.Close()

	svc := newService(t, srv)
	d, err := svc.Join(context.Background(), "pass", "QuietOwl", "QX7P2M")
	if err != nil {
		t.Fatalf("join: %v", err)
	}
	if d.Role != domain.RoleMember || d.KeyPair.Private == "" {
		t.Fatalf("descriptor = %+v", d)
	}

	// The joiner's recovered key is the room's key: something sealed
	// under the host key must decrypt after restore.
	sealed, err := crypto.EncryptMessage("hello", groupKey)
	if err != nil {
		t.Fatalf("encrypt: %v", err)
	}
	ex, err := keydist.Restore(d)
	if err != nil {
		t.Fatalf("restore: %v", err)
	}
	err = ex.Keyring().Use(func(key domain.GroupKey) error {
		text, err := crypto.DecryptMessage(sealed, key)
		if err != nil {
			return err
		}
		if text != "hello" {
			t.Fatalf("decrypted %q", text)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("decrypt with joined key: %v", err)
	}
}

func TestJoin_BadEnvelope_NoDescriptor(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeData(t, w, domain.JoinRoomResponse{
			RoomCode:          "QX7P2M",
			ParticipantID:     "member-2",
			Role:              domain.RoleMember,
			EncryptedGroupKey: "bm90LWEtcmVhbC1lbnZlbG9wZQ",
		})
	}))
	defer srv.Close()

	svc := newService(t, srv)
	if _, err := svc.Join(context.Background(), "pass", "QuietOwl", "QX7P2M"); err == nil {
		t.Fatal("join with a bad envelope succeeded")
	}
	if _, ok, _ := svc.Load("pass", "QX7P2M"); ok {
		t.Fatal("descriptor written despite failed key exchange")
	}
}

func TestLeave_RemovesDescriptor(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeData(t, w, domain.CreateRoomResponse{
			RoomCode: "QX7P2M", ParticipantID: "host-1", Role: domain.RoleHost,
		})
	}))
	defer srv.Close()

	svc := newService(t, srv)
	if _, err := svc.Create(context.Background(), "pass", "", "", 10); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := svc.Leave("QX7P2M"); err != nil {
		t.Fatalf("leave: %v", err)
	}
	if _, ok, _ := svc.Load("pass", "QX7P2M"); ok {
		t.Fatal("descriptor survived leave")
	}
}
