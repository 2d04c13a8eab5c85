package relay_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"anonchat/internal/domain"
	"anonchat/internal/relay"
)

func TestCreateRoom_OK(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/create-room/" || r.Method != http.MethodPost {
			t.Fatalf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		var req domain.CreateRoomRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if req.ExpirationDuration != 10 {
			t.Fatalf("expiration %d, want 10", req.ExpirationDuration)
		}
		json.NewEncoder(w).Encode(map[string]any{"data": domain.CreateRoomResponse{
			RoomCode:      "AB12",
			Nickname:      "alice",
			ParticipantID: "p-1",
			Role:          domain.RoleHost,
		}})
	}))
	defer srv.Close()

	c := relay.NewHTTP(srv.URL, nil)
	resp, err := c.CreateRoom(context.Background(), domain.CreateRoomRequest{
		Nickname: "alice", ExpirationDuration: 10,
	})
	if err != nil {
		t.Fatalf("CreateRoom: %v", err)
	}
	if resp.RoomCode != "AB12" || resp.Role != domain.RoleHost {
		t.Fatalf("unexpected response %+v", resp)
	}
}

func TestJoinRoom_CarriesWrappedKey(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req domain.JoinRoomRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if req.RSAPublicKey == "" {
			t.Fatal("join without public key")
		}
		json.NewEncoder(w).Encode(map[string]any{"data": domain.JoinRoomResponse{
			RoomCode:          req.RoomCode,
			Nickname:          "bob",
			ParticipantID:     "p-2",
			Role:              domain.RoleMember,
			EncryptedGroupKey: "d3JhcHBlZA",
		}})
	}))
	defer srv.Close()

	c := relay.NewHTTP(srv.URL, nil)
	resp, err := c.JoinRoom(context.Background(), domain.JoinRoomRequest{
		RoomCode: "AB12", RSAPublicKey: "cHVibGlj",
	})
	if err != nil {
		t.Fatalf("JoinRoom: %v", err)
	}
	if resp.EncryptedGroupKey != "d3JhcHBlZA" || resp.Role != domain.RoleMember {
		t.Fatalf("unexpected response %+v", resp)
	}
}

func TestJoinRoom_FieldErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]string{"room_code": "Room not found."},
		})
	}))
	defer srv.Close()

	c := relay.NewHTTP(srv.URL, nil)
	_, err := c.JoinRoom(context.Background(), domain.JoinRoomRequest{RoomCode: "NOPE"})
	var apiErr *relay.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("got %v, want *APIError", err)
	}
	if apiErr.Fields["room_code"] != "Room not found." {
		t.Fatalf("fields %v", apiErr.Fields)
	}
}

func TestRoomEndpoints_BareResponses(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/room-messages/AB12/":
			json.NewEncoder(w).Encode([]domain.MessageRecord{
				{ID: "m-1", SenderNick: "alice", Ciphertext: "Y3Q", Nonce: "bm9uY2U"},
			})
		case "/room-participants/AB12/":
			json.NewEncoder(w).Encode(map[domain.ParticipantID]domain.Participant{
				"p-1": {ID: "p-1", Nickname: "alice", Role: domain.RoleHost},
			})
		case "/room-info/AB12/":
			json.NewEncoder(w).Encode(domain.RoomInfo{ExpirationDuration: 5})
		default:
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
	}))
	defer srv.Close()

	c := relay.NewHTTP(srv.URL, nil)
	ctx := context.Background()

	msgs, err := c.RoomMessages(ctx, "AB12")
	if err != nil {
		t.Fatalf("RoomMessages: %v", err)
	}
	if len(msgs) != 1 || msgs[0].ID != "m-1" {
		t.Fatalf("messages %+v", msgs)
	}

	roster, err := c.RoomParticipants(ctx, "AB12")
	if err != nil {
		t.Fatalf("RoomParticipants: %v", err)
	}
	if roster["p-1"].Nickname != "alice" {
		t.Fatalf("roster %+v", roster)
	}

	info, err := c.RoomInfo(ctx, "AB12")
	if err != nil {
		t.Fatalf("RoomInfo: %v", err)
	}
	if info.ExpirationDuration != 5 {
		t.Fatalf("info %+v", info)
	}
}
