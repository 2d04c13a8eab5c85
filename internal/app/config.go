package app

import (
	"net/http"

	"github.com/rs/zerolog"
)

// Config holds runtime wiring options for building the app.
type Config struct {
	Home   string         // config directory, e.g. $HOME/.anonchat
	APIURL string         // room API base URL, e.g. http://127.0.0.1:8000/chat-api
	WSURL  string         // realtime base URL, e.g. ws://127.0.0.1:8000/chat
	HTTP   *http.Client   // optional; defaults to http.DefaultClient
	Log    zerolog.Logger // defaults to a disabled logger
}
