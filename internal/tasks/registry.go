package tasks

import (
	"sync"

	"github.com/elpatron68/focustasks/internal/slot"
)

// Registry hands out one Store per owner (user or session id). keyFor maps
// an owner to its slot key and must be injective, so stores for different
// owners never share state.
type Registry struct {
	mu     sync.Mutex
	slots  slot.Slots
	keyFor func(owner string) string
	stores map[string]*Store
}

func NewRegistry(slots slot.Slots, keyFor func(owner string) string) *Registry {
	return &Registry{slots: slots, keyFor: keyFor, stores: make(map[string]*Store)}
}

// For returns the store for owner, loading it from its slot on first use.
func (r *Registry) For(owner string) *Store {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.stores[owner]; ok {
		return s
	}
	s := New(r.slots, r.keyFor(owner))
	r.stores[owner] = s
	return s
}
