package controller

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/watchparty/server/internal/service/room"
	"github.com/watchparty/server/pkg/validator"
	"github.com/watchparty/server/pkg/wsrouter"
)

type iRoomService interface {
	Connect(*websocket.Conn) (string, error)
	Disconnect(context.Context, *websocket.Conn) (room.LeaveRoomResponse, error)
	CreateRoom(context.Context, *room.CreateRoomParams) (room.CreateRoomResponse, error)
	JoinRoom(context.Context, *room.JoinRoomParams) (room.JoinRoomResponse, error)
	PreviewRoom(ctx context.Context, roomCode string) (room.RoomPreview, error)
	LeaveRoom(context.Context, *room.LeaveRoomParams) (room.LeaveRoomResponse, error)
	SendMessage(context.Context, *room.SendMessageParams) (room.SendMessageResponse, error)
	SendEmoji(context.Context, *room.SendEmojiParams) (room.SendEmojiResponse, error)
	Play(context.Context, *room.PlayParams) (room.PlayResponse, error)
	Pause(context.Context, *room.PlayParams) (room.PlayResponse, error)
	Seek(context.Context, *room.SeekParams) (room.SeekResponse, error)
	ChangeVolume(context.Context, *room.ChangeVolumeParams) (room.ChangeVolumeResponse, error)
	RequestSync(context.Context, *room.RequestSyncParams) (room.RequestSyncResponse, error)
	AddToQueue(context.Context, *room.AddToQueueParams) (room.AddToQueueResponse, error)
	RemoveFromQueue(context.Context, *room.RemoveFromQueueParams) (room.RemoveFromQueueResponse, error)
	SelectFromQueue(context.Context, *room.SelectFromQueueParams) (room.SelectFromQueueResponse, error)
	SearchMedia(context.Context, *room.SearchMediaParams) (room.SearchMediaResponse, error)
	MediaDetails(context.Context, *room.MediaDetailsParams) (room.MediaDetailsResponse, error)
}

type controller struct {
	roomService iRoomService
	upgrader    websocket.Upgrader
	validate    *validator.Validator
	wsRouter    *wsrouter.WSRouter
	logger      *slog.Logger
}

func NewController(roomService iRoomService, logger *slog.Logger) *controller {
	c := &controller{
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
		roomService: roomService,
		validate:    validator.NewValidator(),
		logger:      logger,
	}
	c.wsRouter = c.getWSRouter()

	return c
}
