// Package room is the session orchestrator: it receives inbound events
// resolved to a client id, validates them against the presence tracker,
// mutates room state through the domain core and reports which connections
// each outbound event targets. The controller does the actual writes.
package room

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/gorilla/websocket"

	"github.com/watchparty/server/internal/domain"
	"github.com/watchparty/server/internal/repository/presence"
	roomRepo "github.com/watchparty/server/internal/repository/room"
	"github.com/watchparty/server/pkg/randstr"
	"github.com/watchparty/server/pkg/ytmedia"
)

var (
	ErrRoomNotFound  = roomRepo.ErrRoomNotFound
	ErrNotInRoom     = errors.New("client is not in a room")
	ErrNoActiveMedia = errors.New("no active media")
)

const roomCodeLength = 6

type iRoomRepo interface {
	Create(*domain.Room) error
	Get(code string) (*domain.Room, error)
	Delete(code string)
	All() []*domain.Room
}

type iPresenceRepo interface {
	Bind(clientId string, binding presence.Binding)
	Lookup(clientId string) (presence.Binding, error)
	Unbind(clientId string)
}

type iConnRepo interface {
	Add(conn *websocket.Conn, clientId string) error
	RemoveByConn(conn *websocket.Conn) (string, error)
	GetClientId(conn *websocket.Conn) (string, error)
	GetConn(clientId string) (*websocket.Conn, error)
}

type iMediaProvider interface {
	Search(ctx context.Context, query string) ([]ytmedia.SearchResult, error)
	Details(ctx context.Context, videoId string) (ytmedia.VideoDetails, error)
}

type iGenerator interface {
	GenerateRandomString(length int) string
}

type Config struct {
	MessagesLimit int
	SyncInterval  time.Duration
	LookupTimeout time.Duration
}

type service struct {
	roomRepo      iRoomRepo
	presenceRepo  iPresenceRepo
	connRepo      iConnRepo
	media         iMediaProvider
	generator     iGenerator
	logger        *slog.Logger
	clock         func() time.Time
	messagesLimit int
	syncInterval  time.Duration
	lookupTimeout time.Duration
}

func NewService(roomRepo iRoomRepo, presenceRepo iPresenceRepo, connRepo iConnRepo, media iMediaProvider, logger *slog.Logger, cfg *Config) *service {
	s := service{
		roomRepo:      roomRepo,
		presenceRepo:  presenceRepo,
		connRepo:      connRepo,
		media:         media,
		logger:        logger,
		clock:         time.Now,
		messagesLimit: cfg.MessagesLimit,
		syncInterval:  cfg.SyncInterval,
		lookupTimeout: cfg.LookupTimeout,
	}

	letterBytes := []byte("ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789")
	s.generator = randstr.New(letterBytes)

	return &s
}

// resolve maps a client id to its room, the gate every room-scoped event
// except create-room and join-room passes through. ErrNotInRoom means the
// event raced a leave and must be silently ignored.
func (s service) resolve(clientId string) (presence.Binding, *domain.Room, error) {
	binding, err := s.presenceRepo.Lookup(clientId)
	if err != nil {
		return presence.Binding{}, nil, ErrNotInRoom
	}

	room, err := s.roomRepo.Get(binding.RoomCode)
	if err != nil {
		return presence.Binding{}, nil, ErrNotInRoom
	}

	return binding, room, nil
}

// getConns resolves the connections of the given participants, skipping any
// whose connection is already gone. exceptClientId of "" excludes no one.
func (s service) getConns(participants []domain.Participant, exceptClientId string) []*websocket.Conn {
	conns := make([]*websocket.Conn, 0, len(participants))
	for _, p := range participants {
		if p.Id == exceptClientId {
			continue
		}

		conn, err := s.connRepo.GetConn(p.Id)
		if err != nil {
			continue
		}

		conns = append(conns, conn)
	}

	return conns
}
