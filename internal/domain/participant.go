package domain

// Participant is one connected user bound to a room, identified by the
// opaque per-connection id the transport assigned. IsHost marks the room's
// creator and is advisory only: no operation is host-gated.
type Participant struct {
	Id     string `json:"id"`
	Name   string `json:"name"`
	IsHost bool   `json:"is_host"`
}
