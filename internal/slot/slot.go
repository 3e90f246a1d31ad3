// Package slot provides key-value string storage slots. A slot holds one
// serialized document and is always read and written whole.
package slot

import (
	"errors"
	"fmt"
	"sync"

	"github.com/elpatron68/focustasks/internal/config"
)

// ErrQuotaExceeded is returned by Set when a value does not fit the
// configured capacity.
var ErrQuotaExceeded = errors.New("slot: quota exceeded")

// Slots is a key-value string store.
type Slots interface {
	// Get returns the stored value; ok is false when the key has never been set.
	Get(key string) (value string, ok bool, err error)
	// Set overwrites the value stored under key.
	Set(key, value string) error
}

// Memory keeps slots in a map. Values are lost when the process exits.
type Memory struct {
	mu   sync.RWMutex
	data map[string]string
}

func NewMemory() *Memory {
	return &Memory{data: make(map[string]string)}
}

func (m *Memory) Get(key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *Memory) Set(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	return nil
}

// Quota rejects writes whose value is larger than Max bytes.
type Quota struct {
	Inner Slots
	Max   int
}

func NewQuota(inner Slots, maxBytes int) *Quota {
	return &Quota{Inner: inner, Max: maxBytes}
}

func (q *Quota) Get(key string) (string, bool, error) { return q.Inner.Get(key) }

func (q *Quota) Set(key, value string) error {
	if q.Max > 0 && len(key)+len(value) > q.Max {
		return fmt.Errorf("%w: %d bytes for %q, limit %d", ErrQuotaExceeded, len(key)+len(value), key, q.Max)
	}
	return q.Inner.Set(key, value)
}

// Open builds the backend selected by cfg, wrapped in a Quota when a
// capacity is configured. The returned close func releases backend resources.
func Open(cfg config.Storage) (Slots, func() error, error) {
	var (
		s       Slots
		closeFn = func() error { return nil }
	)
	switch cfg.Backend {
	case config.BackendMemory, "":
		s = NewMemory()
	case config.BackendFile:
		f, err := NewFile(cfg.Dir)
		if err != nil {
			return nil, nil, err
		}
		s = f
	case config.BackendSQLite, config.BackendMySQL:
		db, err := OpenSQL(cfg.Backend, cfg.DSN)
		if err != nil {
			return nil, nil, err
		}
		s, closeFn = db, db.Close
	default:
		return nil, nil, fmt.Errorf("slot: unknown backend %q", cfg.Backend)
	}
	if cfg.QuotaBytes > 0 {
		s = NewQuota(s, cfg.QuotaBytes)
	}
	return s, closeFn, nil
}
