package controller

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/watchparty/server/internal/service/room"
	"github.com/watchparty/server/pkg/rest"
)

func (c controller) getHealthz(w http.ResponseWriter, r *http.Request) {
	rest.WriteJSON(w, http.StatusOK, rest.Envelope{"status": "ok"})
}

// getRoomPreview lets a client validate an invite code over plain HTTP before
// opening the websocket.
func (c controller) getRoomPreview(w http.ResponseWriter, r *http.Request) {
	preview, err := c.roomService.PreviewRoom(r.Context(), chi.URLParam(r, "roomCode"))
	if err != nil {
		if errors.Is(err, room.ErrRoomNotFound) {
			rest.WriteError(w, http.StatusNotFound, "room not found")
			return
		}

		c.logger.WarnContext(r.Context(), "failed to preview room", "error", err)
		rest.WriteError(w, http.StatusInternalServerError, "internal error")
		return
	}

	rest.WriteJSON(w, http.StatusOK, rest.Envelope{"room": preview})
}
