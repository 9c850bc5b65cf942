package room

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/watchparty/server/internal/domain"
	"github.com/watchparty/server/internal/repository/presence"
	roomRepo "github.com/watchparty/server/internal/repository/room"
)

// Connect registers a fresh connection and assigns it the opaque client id
// everything else keys on.
func (s service) Connect(conn *websocket.Conn) (string, error) {
	clientId := uuid.NewString()
	if err := s.connRepo.Add(conn, clientId); err != nil {
		return "", fmt.Errorf("failed to register connection: %w", err)
	}

	return clientId, nil
}

type CreateRoomParams struct {
	ClientId string
	RoomName string
	Username string
}

type CreateRoomResponse struct {
	Room domain.RoomState
}

func (s service) CreateRoom(ctx context.Context, params *CreateRoomParams) (CreateRoomResponse, error) {
	username := params.Username
	if username == "" {
		username = "Host"
	}

	now := s.clock()

	var newRoom *domain.Room
	for {
		code := s.generator.GenerateRandomString(roomCodeLength)
		newRoom = domain.NewRoom(code, params.RoomName, params.ClientId, s.messagesLimit, now)
		if err := s.roomRepo.Create(newRoom); err != nil {
			if errors.Is(err, roomRepo.ErrRoomAlreadyExists) {
				continue
			}
			return CreateRoomResponse{}, fmt.Errorf("failed to store room: %w", err)
		}
		break
	}

	newRoom.AddParticipant(domain.Participant{
		Id:     params.ClientId,
		Name:   username,
		IsHost: true,
	})
	s.presenceRepo.Bind(params.ClientId, presence.Binding{
		RoomCode:    newRoom.Code(),
		DisplayName: username,
	})

	s.logger.InfoContext(ctx, "room created", "room_code", newRoom.Code(), "client_id", params.ClientId)

	return CreateRoomResponse{Room: newRoom.Snapshot()}, nil
}

type JoinRoomParams struct {
	ClientId string
	RoomCode string
	Username string
}

type JoinRoomResponse struct {
	Room domain.RoomState
	// Rejoined marks an idempotent re-ack: the client was already a
	// participant and nobody else gets notified.
	Rejoined      bool
	JoinedUser    domain.Participant
	SystemMessage domain.ChatMessage
	// OthersConns are the participants to notify about the join.
	OthersConns []*websocket.Conn
	// Sync is the private drift-reconciliation payload for the joiner,
	// present when media is active.
	Sync *domain.SyncState
}

func (s service) JoinRoom(ctx context.Context, params *JoinRoomParams) (JoinRoomResponse, error) {
	code := strings.ToUpper(params.RoomCode)

	joinedRoom, err := s.roomRepo.Get(code)
	if err != nil {
		return JoinRoomResponse{}, ErrRoomNotFound
	}

	if existing, ok := joinedRoom.Participant(params.ClientId); ok {
		s.presenceRepo.Bind(params.ClientId, presence.Binding{
			RoomCode:    code,
			DisplayName: existing.Name,
		})

		return JoinRoomResponse{
			Room:     joinedRoom.Snapshot(),
			Rejoined: true,
		}, nil
	}

	username := params.Username
	if username == "" {
		username = "User " + shortId(params.ClientId)
	}

	now := s.clock()
	joiner := domain.Participant{
		Id:   params.ClientId,
		Name: username,
	}
	joinedRoom.AddParticipant(joiner)
	s.presenceRepo.Bind(params.ClientId, presence.Binding{
		RoomCode:    code,
		DisplayName: username,
	})

	systemMessage := domain.NewSystemMessage(domain.SystemMessageJoined, username, now)
	joinedRoom.AppendMessage(systemMessage)

	state := joinedRoom.Snapshot()

	resp := JoinRoomResponse{
		Room:          state,
		JoinedUser:    joiner,
		SystemMessage: systemMessage,
		OthersConns:   s.getConns(state.Participants, params.ClientId),
	}

	if sync, ok := joinedRoom.SyncState(now); ok {
		resp.Sync = &sync
	}

	s.logger.InfoContext(ctx, "client joined room", "room_code", code, "client_id", params.ClientId)

	return resp, nil
}

type LeaveRoomParams struct {
	ClientId string
}

type LeaveRoomResponse struct {
	// RoomDeleted means the leaver was the last participant; there is no one
	// left to notify.
	RoomDeleted   bool
	LeftClientId  string
	SystemMessage domain.ChatMessage
	Conns         []*websocket.Conn
}

func (s service) LeaveRoom(ctx context.Context, params *LeaveRoomParams) (LeaveRoomResponse, error) {
	binding, err := s.presenceRepo.Lookup(params.ClientId)
	if err != nil {
		return LeaveRoomResponse{}, ErrNotInRoom
	}
	s.presenceRepo.Unbind(params.ClientId)

	leftRoom, err := s.roomRepo.Get(binding.RoomCode)
	if err != nil {
		return LeaveRoomResponse{}, ErrNotInRoom
	}

	left, remaining, ok := leftRoom.RemoveParticipant(params.ClientId)
	if !ok {
		return LeaveRoomResponse{}, ErrNotInRoom
	}

	if remaining == 0 {
		s.roomRepo.Delete(binding.RoomCode)
		s.logger.InfoContext(ctx, "room deleted", "room_code", binding.RoomCode)

		return LeaveRoomResponse{
			RoomDeleted:  true,
			LeftClientId: params.ClientId,
		}, nil
	}

	systemMessage := domain.NewSystemMessage(domain.SystemMessageLeft, left.Name, s.clock())
	leftRoom.AppendMessage(systemMessage)

	state := leftRoom.Snapshot()

	return LeaveRoomResponse{
		LeftClientId:  params.ClientId,
		SystemMessage: systemMessage,
		Conns:         s.getConns(state.Participants, ""),
	}, nil
}

// Disconnect handles a closed connection: it unregisters the connection and
// runs the same leave path as an explicit leave-room.
func (s service) Disconnect(ctx context.Context, conn *websocket.Conn) (LeaveRoomResponse, error) {
	clientId, err := s.connRepo.RemoveByConn(conn)
	if err != nil {
		return LeaveRoomResponse{}, ErrNotInRoom
	}

	return s.LeaveRoom(ctx, &LeaveRoomParams{ClientId: clientId})
}

type RoomPreview struct {
	RoomCode         string `json:"room_code"`
	Name             string `json:"name"`
	ParticipantCount int    `json:"participant_count"`
	HasActiveMedia   bool   `json:"has_active_media"`
}

// PreviewRoom resolves a room code without joining, so a client can validate
// an invite before opening the socket.
func (s service) PreviewRoom(ctx context.Context, roomCode string) (RoomPreview, error) {
	previewRoom, err := s.roomRepo.Get(strings.ToUpper(roomCode))
	if err != nil {
		return RoomPreview{}, ErrRoomNotFound
	}

	state := previewRoom.Snapshot()

	return RoomPreview{
		RoomCode:         state.Code,
		Name:             state.Name,
		ParticipantCount: len(state.Participants),
		HasActiveMedia:   state.CurrentIndex >= 0,
	}, nil
}

func shortId(id string) string {
	if len(id) > 4 {
		return id[:4]
	}
	return id
}
