package app

import (
	"net/http"

	"github.com/rs/zerolog"

	"anonchat/internal/domain"
	"anonchat/internal/relay"
	roomsvc "anonchat/internal/services/room"
	"anonchat/internal/store"
)

// Wire bundles the stores, services, and clients for the CLI.
type Wire struct {
	Descriptors domain.DescriptorStore
	Rooms       domain.RoomService
	API         domain.RoomClient
	HTTP        *http.Client
	WSURL       string
	Log         zerolog.Logger
}

// NewWire constructs the dependency graph from cfg.
func NewWire(cfg Config) (*Wire, error) {
	descriptors := store.NewFileStore(cfg.Home)

	// Ensure an HTTP client is available for outbound calls
	httpClient := cfg.HTTP
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	api := relay.NewHTTP(cfg.APIURL, httpClient)
	rooms := roomsvc.New(descriptors, api, cfg.Log)

	return &Wire{
		Descriptors: descriptors,
		Rooms:       rooms,
		API:         api,
		HTTP:        httpClient,
		WSURL:       cfg.WSURL,
		Log:         cfg.Log,
	}, nil
}
