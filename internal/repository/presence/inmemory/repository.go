package inmemory

import (
	"sync"

	"github.com/watchparty/server/internal/repository/presence"
)

type repo struct {
	bindings map[string]presence.Binding
	mu       sync.RWMutex
}

func NewRepo() *repo {
	return &repo{
		bindings: make(map[string]presence.Binding),
	}
}

// Bind overwrites any previous binding for the client id; a client belongs
// to at most one room.
func (r *repo) Bind(clientId string, binding presence.Binding) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.bindings[clientId] = binding
}

func (r *repo) Lookup(clientId string) (presence.Binding, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	binding, ok := r.bindings[clientId]
	if !ok {
		return presence.Binding{}, presence.ErrNotFound
	}

	return binding, nil
}

// Unbind is idempotent; unbinding an unknown client is a no-op because it
// can legitimately race a leave.
func (r *repo) Unbind(clientId string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.bindings, clientId)
}
