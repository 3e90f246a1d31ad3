// Package tasks holds the task list state. A Store owns an ordered
// sequence of tasks, mirrors it to one storage slot after every mutation and
// hands callers independent snapshots.
package tasks

import (
	"encoding/json"
	"fmt"
	"sync"

	applog "github.com/elpatron68/focustasks/internal/log"
	"github.com/elpatron68/focustasks/internal/slot"
)

type Store struct {
	mu    sync.Mutex
	slots slot.Slots
	key   string
	state []Task
	// seen is the slot text state was last loaded from or written as.
	seen string
}

// New loads the task sequence stored under key. Missing or malformed
// content starts the store empty; New never fails.
//
// Add does not check id uniqueness or title content. Use NewTask to build
// tasks that satisfy both.
func New(slots slot.Slots, key string) *Store {
	s := &Store{slots: slots, key: key, state: []Task{}}
	raw, ok, err := slots.Get(key)
	if err != nil {
		applog.Warnf("tasks: read slot %q: %v; starting empty", key, err)
		return s
	}
	if ok {
		s.state, s.seen = decode(key, raw), raw
	}
	return s
}

func decode(key, raw string) []Task {
	var list []Task
	if err := json.Unmarshal([]byte(raw), &list); err != nil {
		applog.Warnf("tasks: discarding malformed slot %q: %v", key, err)
		return []Task{}
	}
	if list == nil {
		return []Task{}
	}
	return list
}

// refresh picks up writes another process (the CLI, a second server) made
// to the slot since this store last touched it. A read error keeps the
// in-memory state. Caller holds mu.
func (s *Store) refresh() {
	raw, ok, err := s.slots.Get(s.key)
	if err != nil {
		applog.Warnf("tasks: re-read slot %q: %v; keeping cached state", s.key, err)
		return
	}
	if !ok || raw == s.seen {
		return
	}
	applog.Debugf("tasks: slot %q changed outside this store; reloading", s.key)
	s.state, s.seen = decode(s.key, raw), raw
}

func (s *Store) Key() string { return s.key }

func (s *Store) Add(t Task) ([]Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.refresh()
	s.state = append(s.state, t)
	return s.commit("add")
}

// Toggle flips Done on the task with the given id. Unknown ids leave the
// sequence unchanged.
func (s *Store) Toggle(id string) ([]Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.refresh()
	next := make([]Task, len(s.state))
	for i, t := range s.state {
		if t.ID == id {
			t.Done = !t.Done
		}
		next[i] = t
	}
	s.state = next
	return s.commit("toggle")
}

// Remove drops the task with the given id. Unknown ids are a no-op.
func (s *Store) Remove(id string) ([]Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.refresh()
	next := make([]Task, 0, len(s.state))
	for _, t := range s.state {
		if t.ID != id {
			next = append(next, t)
		}
	}
	s.state = next
	return s.commit("remove")
}

func (s *Store) List() []Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.refresh()
	return s.snapshot()
}

// commit persists the whole sequence and returns a snapshot. A failed write
// leaves the in-memory mutation in place. Caller holds mu.
func (s *Store) commit(op string) ([]Task, error) {
	if err := s.persist(); err != nil {
		return s.snapshot(), fmt.Errorf("%s: %w", op, err)
	}
	return s.snapshot(), nil
}

func (s *Store) persist() error {
	data, err := json.Marshal(s.state)
	if err != nil {
		return err
	}
	if err := s.slots.Set(s.key, string(data)); err != nil {
		return fmt.Errorf("persist %q: %w", s.key, err)
	}
	s.seen = string(data)
	return nil
}

func (s *Store) snapshot() []Task {
	out := make([]Task, len(s.state))
	copy(out, s.state)
	return out
}
