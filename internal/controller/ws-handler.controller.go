package controller

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/gorilla/websocket"

	"github.com/watchparty/server/internal/service/room"
)

type Output struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

func (c controller) writeToConn(ctx context.Context, conn *websocket.Conn, output *Output) {
	if err := conn.WriteJSON(output); err != nil {
		c.logger.InfoContext(ctx, "failed to write message", "type", output.Type, "error", err)
	}
}

func (c controller) broadcast(ctx context.Context, conns []*websocket.Conn, output *Output) {
	for _, conn := range conns {
		c.writeToConn(ctx, conn, output)
	}
}

// readInput unmarshals and validates an event payload. A malformed payload
// gets an error output back and the event becomes a no-op.
func (c controller) readInput(ctx context.Context, conn *websocket.Conn, payload json.RawMessage, dst any) bool {
	if len(payload) > 0 {
		if err := json.Unmarshal(payload, dst); err != nil {
			c.logger.InfoContext(ctx, "failed to unmarshal payload", "error", err)
			c.writeToConn(ctx, conn, &Output{
				Type:    "error",
				Payload: map[string]any{"message": "malformed payload"},
			})
			return false
		}
	}

	if validationErrors, ok := c.validate.Validate(dst); !ok {
		c.logger.InfoContext(ctx, "payload validation failed", "errors", validationErrors)
		c.writeToConn(ctx, conn, &Output{
			Type:    "error",
			Payload: map[string]any{"errors": validationErrors},
		})
		return false
	}

	return true
}

// ignorable reports errors that mark stale or racy client requests, dropped
// without surfacing anything: the client either already left the room or is
// about to receive a fresher state update anyway.
func ignorable(err error) bool {
	return errors.Is(err, room.ErrNotInRoom) ||
		errors.Is(err, room.ErrIndexOutOfRange) ||
		errors.Is(err, room.ErrNoActiveMedia)
}

type CreateRoomInput struct {
	RoomName string `json:"room_name" validate:"required,max=64"`
	Username string `json:"username" validate:"max=32"`
}

func (c controller) handleCreateRoom(ctx context.Context, conn *websocket.Conn, payload json.RawMessage) {
	var input CreateRoomInput
	if !c.readInput(ctx, conn, payload, &input) {
		return
	}

	createRoomResp, err := c.roomService.CreateRoom(ctx, &room.CreateRoomParams{
		ClientId: c.getClientIdFromCtx(ctx),
		RoomName: input.RoomName,
		Username: input.Username,
	})
	if err != nil {
		c.logger.WarnContext(ctx, "failed to create room", "error", err)
		return
	}

	c.writeToConn(ctx, conn, &Output{
		Type: "room-created",
		Payload: map[string]any{
			"room_code": createRoomResp.Room.Code,
			"room":      createRoomResp.Room,
		},
	})
}

type JoinRoomInput struct {
	RoomCode string `json:"room_code" validate:"required,len=6,alphanum"`
	Username string `json:"username" validate:"max=32"`
}

func (c controller) handleJoinRoom(ctx context.Context, conn *websocket.Conn, payload json.RawMessage) {
	var input JoinRoomInput
	if !c.readInput(ctx, conn, payload, &input) {
		return
	}

	joinRoomResp, err := c.roomService.JoinRoom(ctx, &room.JoinRoomParams{
		ClientId: c.getClientIdFromCtx(ctx),
		RoomCode: input.RoomCode,
		Username: input.Username,
	})
	if err != nil {
		if errors.Is(err, room.ErrRoomNotFound) {
			c.writeToConn(ctx, conn, &Output{
				Type:    "room-error",
				Payload: map[string]any{"message": "room not found"},
			})
			return
		}
		c.logger.WarnContext(ctx, "failed to join room", "error", err)
		return
	}

	c.writeToConn(ctx, conn, &Output{
		Type:    "room-joined",
		Payload: joinRoomResp.Room,
	})

	if joinRoomResp.Rejoined {
		return
	}

	c.broadcast(ctx, joinRoomResp.OthersConns, &Output{
		Type:    "user-joined",
		Payload: joinRoomResp.JoinedUser,
	})
	c.broadcast(ctx, joinRoomResp.OthersConns, &Output{
		Type:    "new-message",
		Payload: joinRoomResp.SystemMessage,
	})

	if joinRoomResp.Sync != nil {
		c.writeToConn(ctx, conn, &Output{
			Type:    "sync-playback",
			Payload: joinRoomResp.Sync,
		})
	}
}

func (c controller) handleLeaveRoom(ctx context.Context, conn *websocket.Conn, _ json.RawMessage) {
	leaveRoomResp, err := c.roomService.LeaveRoom(ctx, &room.LeaveRoomParams{
		ClientId: c.getClientIdFromCtx(ctx),
	})
	if err != nil {
		if !ignorable(err) {
			c.logger.WarnContext(ctx, "failed to leave room", "error", err)
		}
		return
	}

	if leaveRoomResp.RoomDeleted {
		return
	}

	c.broadcast(ctx, leaveRoomResp.Conns, &Output{
		Type:    "user-left",
		Payload: map[string]any{"client_id": leaveRoomResp.LeftClientId},
	})
	c.broadcast(ctx, leaveRoomResp.Conns, &Output{
		Type:    "new-message",
		Payload: leaveRoomResp.SystemMessage,
	})
}

type ChatMessageInput struct {
	Text string `json:"text" validate:"required,max=500"`
}

func (c controller) handleChatMessage(ctx context.Context, conn *websocket.Conn, payload json.RawMessage) {
	var input ChatMessageInput
	if !c.readInput(ctx, conn, payload, &input) {
		return
	}

	sendMessageResp, err := c.roomService.SendMessage(ctx, &room.SendMessageParams{
		ClientId: c.getClientIdFromCtx(ctx),
		Text:     input.Text,
	})
	if err != nil {
		if !ignorable(err) {
			c.logger.WarnContext(ctx, "failed to send message", "error", err)
		}
		return
	}

	c.broadcast(ctx, sendMessageResp.Conns, &Output{
		Type:    "new-message",
		Payload: sendMessageResp.Message,
	})
}

type SendEmojiInput struct {
	Emoji string   `json:"emoji" validate:"required,max=16"`
	X     *float64 `json:"x"`
	Y     *float64 `json:"y"`
}

func (c controller) handleSendEmoji(ctx context.Context, conn *websocket.Conn, payload json.RawMessage) {
	var input SendEmojiInput
	if !c.readInput(ctx, conn, payload, &input) {
		return
	}

	sendEmojiResp, err := c.roomService.SendEmoji(ctx, &room.SendEmojiParams{
		ClientId: c.getClientIdFromCtx(ctx),
		Emoji:    input.Emoji,
		X:        input.X,
		Y:        input.Y,
	})
	if err != nil {
		if !ignorable(err) {
			c.logger.WarnContext(ctx, "failed to send emoji", "error", err)
		}
		return
	}

	c.broadcast(ctx, sendEmojiResp.Conns, &Output{
		Type:    "emoji-reaction",
		Payload: sendEmojiResp.Reaction,
	})
}

func (c controller) handlePlay(ctx context.Context, _ *websocket.Conn, _ json.RawMessage) {
	playResp, err := c.roomService.Play(ctx, &room.PlayParams{
		ClientId: c.getClientIdFromCtx(ctx),
	})
	if err != nil {
		if !ignorable(err) {
			c.logger.WarnContext(ctx, "failed to play", "error", err)
		}
		return
	}

	if playResp.Changed {
		c.broadcast(ctx, playResp.Conns, &Output{Type: "play"})
	}
}

func (c controller) handlePause(ctx context.Context, _ *websocket.Conn, _ json.RawMessage) {
	pauseResp, err := c.roomService.Pause(ctx, &room.PlayParams{
		ClientId: c.getClientIdFromCtx(ctx),
	})
	if err != nil {
		if !ignorable(err) {
			c.logger.WarnContext(ctx, "failed to pause", "error", err)
		}
		return
	}

	if pauseResp.Changed {
		c.broadcast(ctx, pauseResp.Conns, &Output{Type: "pause"})
	}
}

type SeekInput struct {
	Time float64 `json:"time"`
}

func (c controller) handleSeek(ctx context.Context, conn *websocket.Conn, payload json.RawMessage) {
	var input SeekInput
	if !c.readInput(ctx, conn, payload, &input) {
		return
	}

	seekResp, err := c.roomService.Seek(ctx, &room.SeekParams{
		ClientId: c.getClientIdFromCtx(ctx),
		Time:     input.Time,
	})
	if err != nil {
		if !ignorable(err) {
			c.logger.WarnContext(ctx, "failed to seek", "error", err)
		}
		return
	}

	c.broadcast(ctx, seekResp.Conns, &Output{
		Type:    "seek",
		Payload: map[string]any{"time": seekResp.Time},
	})
}

type VolumeChangeInput struct {
	Volume int `json:"volume"`
}

func (c controller) handleVolumeChange(ctx context.Context, conn *websocket.Conn, payload json.RawMessage) {
	var input VolumeChangeInput
	if !c.readInput(ctx, conn, payload, &input) {
		return
	}

	volumeResp, err := c.roomService.ChangeVolume(ctx, &room.ChangeVolumeParams{
		ClientId: c.getClientIdFromCtx(ctx),
		Volume:   input.Volume,
	})
	if err != nil {
		if !ignorable(err) {
			c.logger.WarnContext(ctx, "failed to change volume", "error", err)
		}
		return
	}

	c.broadcast(ctx, volumeResp.Conns, &Output{
		Type:    "volume-change",
		Payload: map[string]any{"volume": volumeResp.Volume},
	})
}

func (c controller) handleRequestSync(ctx context.Context, conn *websocket.Conn, _ json.RawMessage) {
	syncResp, err := c.roomService.RequestSync(ctx, &room.RequestSyncParams{
		ClientId: c.getClientIdFromCtx(ctx),
	})
	if err != nil {
		if !ignorable(err) {
			c.logger.WarnContext(ctx, "failed to sync", "error", err)
		}
		return
	}

	c.writeToConn(ctx, conn, &Output{
		Type:    "sync-playback",
		Payload: syncResp.Sync,
	})
}

type AddToQueueInput struct {
	Id           string `json:"id" validate:"required,max=64"`
	Title        string `json:"title" validate:"max=200"`
	ChannelTitle string `json:"channel_title" validate:"max=100"`
	Thumbnail    string `json:"thumbnail" validate:"max=500"`
	Duration     int    `json:"duration" validate:"min=0"`
}

func (c controller) handleAddToQueue(ctx context.Context, conn *websocket.Conn, payload json.RawMessage) {
	var input AddToQueueInput
	if !c.readInput(ctx, conn, payload, &input) {
		return
	}

	addResp, err := c.roomService.AddToQueue(ctx, &room.AddToQueueParams{
		ClientId:     c.getClientIdFromCtx(ctx),
		MediaId:      input.Id,
		Title:        input.Title,
		ChannelTitle: input.ChannelTitle,
		Thumbnail:    input.Thumbnail,
		Duration:     input.Duration,
	})
	if err != nil {
		if !ignorable(err) {
			c.logger.WarnContext(ctx, "failed to add to queue", "error", err)
		}
		return
	}

	if addResp.MediaChanged {
		c.broadcast(ctx, addResp.Conns, &Output{
			Type:    "media-changed",
			Payload: addResp.Current,
		})
	}
	c.broadcast(ctx, addResp.Conns, &Output{
		Type:    "queue-updated",
		Payload: addResp.Queue,
	})
}

type QueueIndexInput struct {
	Index int `json:"index" validate:"min=0"`
}

func (c controller) handleRemoveFromQueue(ctx context.Context, conn *websocket.Conn, payload json.RawMessage) {
	var input QueueIndexInput
	if !c.readInput(ctx, conn, payload, &input) {
		return
	}

	removeResp, err := c.roomService.RemoveFromQueue(ctx, &room.RemoveFromQueueParams{
		ClientId: c.getClientIdFromCtx(ctx),
		Index:    input.Index,
	})
	if err != nil {
		if !ignorable(err) {
			c.logger.WarnContext(ctx, "failed to remove from queue", "error", err)
		}
		return
	}

	if removeResp.MediaChanged {
		c.broadcast(ctx, removeResp.Conns, &Output{
			Type:    "media-changed",
			Payload: removeResp.Current,
		})
	}
	if removeResp.IndexChanged {
		c.broadcast(ctx, removeResp.Conns, &Output{
			Type:    "queue-index-changed",
			Payload: map[string]any{"index": removeResp.CurrentIndex},
		})
	}
	c.broadcast(ctx, removeResp.Conns, &Output{
		Type:    "queue-updated",
		Payload: removeResp.Queue,
	})
}

func (c controller) handleSelectFromQueue(ctx context.Context, conn *websocket.Conn, payload json.RawMessage) {
	var input QueueIndexInput
	if !c.readInput(ctx, conn, payload, &input) {
		return
	}

	selectResp, err := c.roomService.SelectFromQueue(ctx, &room.SelectFromQueueParams{
		ClientId: c.getClientIdFromCtx(ctx),
		Index:    input.Index,
	})
	if err != nil {
		if !ignorable(err) {
			c.logger.WarnContext(ctx, "failed to select from queue", "error", err)
		}
		return
	}

	c.broadcast(ctx, selectResp.Conns, &Output{
		Type:    "media-changed",
		Payload: selectResp.Current,
	})
	c.broadcast(ctx, selectResp.Conns, &Output{
		Type:    "queue-index-changed",
		Payload: map[string]any{"index": selectResp.CurrentIndex},
	})
	c.broadcast(ctx, selectResp.Conns, &Output{
		Type:    "seek",
		Payload: map[string]any{"time": 0},
	})
	c.broadcast(ctx, selectResp.Conns, &Output{Type: "play"})
}

type SearchMediaInput struct {
	Query string `json:"query" validate:"required,max=100"`
}

func (c controller) handleSearchMedia(ctx context.Context, conn *websocket.Conn, payload json.RawMessage) {
	var input SearchMediaInput
	if !c.readInput(ctx, conn, payload, &input) {
		return
	}

	searchResp, err := c.roomService.SearchMedia(ctx, &room.SearchMediaParams{
		Query: input.Query,
	})
	if err != nil {
		c.logger.WarnContext(ctx, "media search failed", "error", err)
		c.writeToConn(ctx, conn, &Output{
			Type:    "youtube-search-error",
			Payload: map[string]any{"message": "failed to search"},
		})
		return
	}

	c.writeToConn(ctx, conn, &Output{
		Type:    "youtube-search-results",
		Payload: searchResp.Results,
	})
}

type MediaDetailsInput struct {
	VideoId string `json:"video_id" validate:"required,len=11"`
}

func (c controller) handleMediaDetails(ctx context.Context, conn *websocket.Conn, payload json.RawMessage) {
	var input MediaDetailsInput
	if !c.readInput(ctx, conn, payload, &input) {
		return
	}

	detailsResp, err := c.roomService.MediaDetails(ctx, &room.MediaDetailsParams{
		MediaId: input.VideoId,
	})
	if err != nil {
		c.logger.WarnContext(ctx, "media details lookup failed", "error", err)
		c.writeToConn(ctx, conn, &Output{
			Type:    "video-details-error",
			Payload: map[string]any{"video_id": input.VideoId, "message": "failed to get video details"},
		})
		return
	}

	c.writeToConn(ctx, conn, &Output{
		Type:    "video-details-result",
		Payload: detailsResp.Details,
	})
}
