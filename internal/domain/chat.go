package domain

import (
	"fmt"
	"time"
)

// SystemAuthorId is the reserved author id for messages the server
// synthesizes itself. System messages are stored like any other message and
// are distinguishable only by this id.
const SystemAuthorId = "system"

const systemAuthorName = "System"

type ChatMessage struct {
	Id         string    `json:"id"`
	AuthorId   string    `json:"author_id"`
	AuthorName string    `json:"author_name"`
	Text       string    `json:"text"`
	Timestamp  time.Time `json:"timestamp"`
}

type SystemMessageKind int

const (
	SystemMessageJoined SystemMessageKind = iota
	SystemMessageLeft
)

func NewSystemMessage(kind SystemMessageKind, participantName string, now time.Time) ChatMessage {
	var text string
	switch kind {
	case SystemMessageJoined:
		text = fmt.Sprintf("%s joined the room", participantName)
	case SystemMessageLeft:
		text = fmt.Sprintf("%s left the room", participantName)
	}

	return ChatMessage{
		Id:         fmt.Sprintf("system-%d", now.UnixMilli()),
		AuthorId:   SystemAuthorId,
		AuthorName: systemAuthorName,
		Text:       text,
		Timestamp:  now,
	}
}
