package presence

import "errors"

var ErrNotFound = errors.New("client not bound to a room")

// Binding is the inverse index entry resolving a connection's client id to
// the room it belongs to.
type Binding struct {
	RoomCode    string
	DisplayName string
}
