// Package inmemory holds the room registry: the process-lifetime mapping
// from room code to room entity. The registry's lock covers only map
// insert/lookup/delete; mutation of a room's fields is linearized by the
// room's own lock.
package inmemory

import (
	"sync"

	"github.com/watchparty/server/internal/domain"
	"github.com/watchparty/server/internal/repository/room"
)

type repo struct {
	rooms map[string]*domain.Room
	mu    sync.RWMutex
}

func NewRepo() *repo {
	return &repo{
		rooms: make(map[string]*domain.Room),
	}
}

// Create stores the room under its code. ErrRoomAlreadyExists signals a code
// collision; the caller regenerates and retries rather than failing.
func (r *repo) Create(newRoom *domain.Room) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.rooms[newRoom.Code()]; ok {
		return room.ErrRoomAlreadyExists
	}

	r.rooms[newRoom.Code()] = newRoom
	return nil
}

func (r *repo) Get(code string) (*domain.Room, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	found, ok := r.rooms[code]
	if !ok {
		return nil, room.ErrRoomNotFound
	}

	return found, nil
}

// Delete is idempotent: removing an absent code is a no-op.
func (r *repo) Delete(code string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.rooms, code)
}

// All returns a snapshot of the registered rooms, for the playback tick. A
// room deleted after the snapshot is taken simply advances into the void,
// which is harmless.
func (r *repo) All() []*domain.Room {
	r.mu.RLock()
	defer r.mu.RUnlock()

	all := make([]*domain.Room, 0, len(r.rooms))
	for _, found := range r.rooms {
		all = append(all, found)
	}

	return all
}
