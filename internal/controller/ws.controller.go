package controller

import (
	"log/slog"
	"net/http"

	"github.com/watchparty/server/pkg/ctxlogger"
)

// serveWS upgrades the request, assigns the connection its opaque client id
// and pumps inbound events until the connection dies. A read failure is a
// disconnect: the client is removed from its room exactly as with an
// explicit leave-room.
func (c controller) serveWS(w http.ResponseWriter, r *http.Request) {
	conn, err := c.upgrader.Upgrade(w, r, nil)
	if err != nil {
		c.logger.InfoContext(r.Context(), "failed to upgrade connection", "error", err)
		return
	}
	defer conn.Close()

	clientId, err := c.roomService.Connect(conn)
	if err != nil {
		c.logger.InfoContext(r.Context(), "failed to register connection", "error", err)
		return
	}

	ctx := withClientId(r.Context(), clientId)
	ctx = ctxlogger.AppendCtx(ctx, slog.String("client_id", clientId))

	if err := c.wsRouter.ServeConn(ctx, conn); err != nil {
		c.logger.DebugContext(ctx, "connection closed", "error", err)
	}

	disconnectResp, err := c.roomService.Disconnect(ctx, conn)
	if err != nil {
		// connection was never in a room
		return
	}

	if !disconnectResp.RoomDeleted {
		c.broadcast(ctx, disconnectResp.Conns, &Output{
			Type:    "user-left",
			Payload: map[string]any{"client_id": disconnectResp.LeftClientId},
		})
		c.broadcast(ctx, disconnectResp.Conns, &Output{
			Type:    "new-message",
			Payload: disconnectResp.SystemMessage,
		})
	}
}
