package room

import (
	"context"

	"github.com/rs/zerolog"

	"anonchat/internal/domain"
	"anonchat/internal/protocol/keydist"
)

// Service binds the descriptor store, the room API client, and the key
// distribution protocol behind the room membership operations.
type Service struct {
	descriptors domain.DescriptorStore
	rooms       domain.RoomClient
	log         zerolog.Logger
}

// New constructs a room Service.
func New(descriptors domain.DescriptorStore, rooms domain.RoomClient, log zerolog.Logger) *Service {
	return &Service{descriptors: descriptors, rooms: rooms, log: log}
}

// Create makes a new room and establishes its group key as host.
//
// Steps:
//  1. Generate the group key locally; the host needs no envelope.
//  2. Register the room with the API; the server assigns code, nickname
//     and participant id where the request left them empty.
//  3. Persist the descriptor (encrypted under passphrase) so chat can
//     restore the session.
func (s *Service) Create(ctx context.Context, passphrase, nickname string, code domain.RoomCode, expirationMinutes int) (domain.RoomDescriptor, error) {
	ex := keydist.NewExchange()
	if err := ex.EstablishAsHost(); err != nil {
		return domain.RoomDescriptor{}, err
	}

	resp, err := s.rooms.CreateRoom(ctx, domain.CreateRoomRequest{
		RoomCode:           code,
		Nickname:           nickname,
		ExpirationDuration: expirationMinutes,
	})
	if err != nil {
		return domain.RoomDescriptor{}, err
	}

	groupKey, err := ex.Keyring().Export()
	if err != nil {
		return domain.RoomDescriptor{}, err
	}
	d := domain.RoomDescriptor{
		RoomCode:      resp.RoomCode,
		Nickname:      resp.Nickname,
		ParticipantID: resp.ParticipantID,
		Role:          resp.Role,
		GroupKey:      groupKey,
	}
	if err := s.descriptors.SaveDescriptor(passphrase, d); err != nil {
		return domain.RoomDescriptor{}, err
	}

	s.log.Info().
		Str("room", resp.RoomCode.String()).
		Str("participant", resp.ParticipantID.String()).
		Msg("room created")
	return d, nil
}

// Join enters an existing room as a member.
//
// Steps:
//  1. Generate an RSA pair and send the exported public key with the
//     join request.
//  2. Unwrap the group key envelope from the response. Unwrap failure is
//     session-fatal: no descriptor is written and the caller must not
//     proceed to encrypted messaging.
//  3. Persist the descriptor, key pair included, for the restore path.
func (s *Service) Join(ctx context.Context, passphrase, nickname string, code domain.RoomCode) (domain.RoomDescriptor, error) {
	ex := keydist.NewExchange()
	pub, err := ex.PrepareJoin()
	if err != nil {
		return domain.RoomDescriptor{}, err
	}

	resp, err := s.rooms.JoinRoom(ctx, domain.JoinRoomRequest{
		RoomCode:     code,
		Nickname:     nickname,
		RSAPublicKey: pub,
	})
	if err != nil {
		return domain.RoomDescriptor{}, err
	}
	if err := ex.CompleteJoin(resp.EncryptedGroupKey); err != nil {
		return domain.RoomDescriptor{}, err
	}

	groupKey, err := ex.Keyring().Export()
	if err != nil {
		return domain.RoomDescriptor{}, err
	}
	pair, err := ex.ExportKeyPair()
	if err != nil {
		return domain.RoomDescriptor{}, err
	}
	d := domain.RoomDescriptor{
		RoomCode:      resp.RoomCode,
		Nickname:      resp.Nickname,
		ParticipantID: resp.ParticipantID,
		Role:          resp.Role,
		GroupKey:      groupKey,
		KeyPair:       pair,
	}
	if err := s.descriptors.SaveDescriptor(passphrase, d); err != nil {
		return domain.RoomDescriptor{}, err
	}

	s.log.Info().
		Str("room", resp.RoomCode.String()).
		Str("participant", resp.ParticipantID.String()).
		Msg("room joined")
	return d, nil
}

// Load retrieves a stored descriptor for the given room.
func (s *Service) Load(passphrase string, code domain.RoomCode) (domain.RoomDescriptor, bool, error) {
	return s.descriptors.LoadDescriptor(passphrase, code)
}

// Leave discards the room's descriptor. The room itself lives on the
// server until it expires or the host dismisses it.
func (s *Service) Leave(code domain.RoomCode) error {
	if err := s.descriptors.DeleteDescriptor(code); err != nil {
		return err
	}
	s.log.Info().Str("room", code.String()).Msg("room left")
	return nil
}

// Rooms lists the rooms with a stored descriptor.
func (s *Service) Rooms() ([]domain.RoomCode, error) {
	return s.descriptors.ListRooms()
}

// Compile-time assertion that Service implements domain.RoomService.
var _ domain.RoomService = (*Service)(nil)
