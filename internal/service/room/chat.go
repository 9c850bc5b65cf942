package room

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/watchparty/server/internal/domain"
)

type SendMessageParams struct {
	ClientId string
	Text     string
}

type SendMessageResponse struct {
	Message domain.ChatMessage
	Conns   []*websocket.Conn
}

func (s service) SendMessage(ctx context.Context, params *SendMessageParams) (SendMessageResponse, error) {
	binding, chatRoom, err := s.resolve(params.ClientId)
	if err != nil {
		return SendMessageResponse{}, err
	}

	message := domain.ChatMessage{
		Id:         uuid.NewString(),
		AuthorId:   params.ClientId,
		AuthorName: binding.DisplayName,
		Text:       params.Text,
		Timestamp:  s.clock(),
	}
	chatRoom.AppendMessage(message)

	return SendMessageResponse{
		Message: message,
		Conns:   s.getConns(chatRoom.Snapshot().Participants, ""),
	}, nil
}

// EmojiReaction is transient: broadcast to the whole room, never stored.
type EmojiReaction struct {
	Id         string    `json:"id"`
	Emoji      string    `json:"emoji"`
	AuthorId   string    `json:"author_id"`
	AuthorName string    `json:"author_name"`
	Timestamp  time.Time `json:"timestamp"`
	X          *float64  `json:"x,omitempty"`
	Y          *float64  `json:"y,omitempty"`
}

type SendEmojiParams struct {
	ClientId string
	Emoji    string
	X        *float64
	Y        *float64
}

type SendEmojiResponse struct {
	Reaction EmojiReaction
	Conns    []*websocket.Conn
}

func (s service) SendEmoji(ctx context.Context, params *SendEmojiParams) (SendEmojiResponse, error) {
	binding, emojiRoom, err := s.resolve(params.ClientId)
	if err != nil {
		return SendEmojiResponse{}, err
	}

	reaction := EmojiReaction{
		Id:         "emoji-" + uuid.NewString(),
		Emoji:      params.Emoji,
		AuthorId:   params.ClientId,
		AuthorName: binding.DisplayName,
		Timestamp:  s.clock(),
		X:          params.X,
		Y:          params.Y,
	}

	return SendEmojiResponse{
		Reaction: reaction,
		Conns:    s.getConns(emojiRoom.Snapshot().Participants, ""),
	}, nil
}
