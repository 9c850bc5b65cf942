package controller

import (
	"github.com/watchparty/server/pkg/wsrouter"
)

func (c *controller) getWSRouter() *wsrouter.WSRouter {
	mux := wsrouter.New()

	// room
	mux.Handle("create-room", c.handleCreateRoom)
	mux.Handle("join-room", c.handleJoinRoom)
	mux.Handle("leave-room", c.handleLeaveRoom)

	// chat
	mux.Handle("chat-message", c.handleChatMessage)
	mux.Handle("send-emoji", c.handleSendEmoji)

	// playback
	mux.Handle("play", c.handlePlay)
	mux.Handle("pause", c.handlePause)
	mux.Handle("seek", c.handleSeek)
	mux.Handle("volume-change", c.handleVolumeChange)
	mux.Handle("request-sync", c.handleRequestSync)

	// queue
	mux.Handle("add-to-queue", c.handleAddToQueue)
	mux.Handle("remove-from-queue", c.handleRemoveFromQueue)
	mux.Handle("select-from-queue", c.handleSelectFromQueue)

	// media lookup
	mux.Handle("search-youtube", c.handleSearchMedia)
	mux.Handle("get-video-details", c.handleMediaDetails)

	return mux
}
