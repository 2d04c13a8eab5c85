package relay

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"anonchat/internal/domain"
)

// HTTP talks to the room chat API. The API wraps successful payloads in
// a {"data": ...} envelope and failures in {"error": {field: message}}.
type HTTP struct {
	Base string
	HTTP *http.Client
}

// NewHTTP returns a client for the API at base, e.g.
// http://127.0.0.1:8000/chat-api.
func NewHTTP(base string, client *http.Client) *HTTP {
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTP{Base: base, HTTP: client}
}

// APIError carries the field-level validation messages the API returns on
// non-2xx responses (room not found, room full, invalid code). These are
// surfaced per field and never affect an established session.
type APIError struct {
	Status string
	Fields map[string]string
}

func (e *APIError) Error() string {
	if len(e.Fields) == 0 {
		return fmt.Sprintf("room api: %s", e.Status)
	}
	return fmt.Sprintf("room api: %s: %v", e.Status, e.Fields)
}

func (c *HTTP) CreateRoom(ctx context.Context, req domain.CreateRoomRequest) (domain.CreateRoomResponse, error) {
	var out domain.CreateRoomResponse
	err := c.post(ctx, "/create-room/", req, &out)
	return out, err
}

func (c *HTTP) JoinRoom(ctx context.Context, req domain.JoinRoomRequest) (domain.JoinRoomResponse, error) {
	var out domain.JoinRoomResponse
	err := c.post(ctx, "/join-room/", req, &out)
	return out, err
}

func (c *HTTP) RoomMessages(ctx context.Context, code domain.RoomCode) ([]domain.MessageRecord, error) {
	var out []domain.MessageRecord
	err := c.getJSON(ctx, "/room-messages/"+url.PathEscape(code.String())+"/", &out)
	return out, err
}

func (c *HTTP) RoomParticipants(ctx context.Context, code domain.RoomCode) (map[domain.ParticipantID]domain.Participant, error) {
	var out map[domain.ParticipantID]domain.Participant
	err := c.getJSON(ctx, "/room-participants/"+url.PathEscape(code.String())+"/", &out)
	return out, err
}

func (c *HTTP) RoomInfo(ctx context.Context, code domain.RoomCode) (domain.RoomInfo, error) {
	var out domain.RoomInfo
	err := c.getJSON(ctx, "/room-info/"+url.PathEscape(code.String())+"/", &out)
	return out, err
}

func (c *HTTP) post(ctx context.Context, path string, in any, out any) error {
	buf := new(bytes.Buffer)
	if err := json.NewEncoder(buf).Encode(in); err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.Base+path, buf)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, path, out)
}

func (c *HTTP) getJSON(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.Base+path, nil)
	if err != nil {
		return err
	}
	return c.do(req, path, out)
}

func (c *HTTP) do(req *http.Request, path string, out any) error {
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode/100 != 2 {
		return decodeAPIError(resp)
	}
	if out == nil {
		return nil
	}
	var envelope struct {
		Data json.RawMessage `json:"data"`
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, &envelope); err == nil && len(envelope.Data) > 0 {
		return json.Unmarshal(envelope.Data, out)
	}
	// History and roster endpoints respond bare, without the data wrapper.
	return json.Unmarshal(body, out)
}

func decodeAPIError(resp *http.Response) error {
	apiErr := &APIError{Status: resp.Status}
	var body struct {
		Error map[string]string `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err == nil {
		apiErr.Fields = body.Error
	}
	return apiErr
}

var _ domain.RoomClient = (*HTTP)(nil)
