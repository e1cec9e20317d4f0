package sessionstore

import (
	"context"
	"sync"

	"github.com/ecivil/civil-portal/internal/core/domain"
)

// Memory is a SessionStore kept in process memory. It survives session
// eviction but not a restart.
type Memory struct {
	mu    sync.RWMutex
	slots map[string][]byte
}

func NewMemory() *Memory {
	return &Memory{slots: make(map[string][]byte)}
}

func (m *Memory) Save(_ context.Context, slot string, user *domain.User) error {
	raw, err := Encode(user)
	if err != nil {
		return err
	}
	m.PutRaw(slot, raw)
	return nil
}

func (m *Memory) Load(_ context.Context, slot string) (*domain.User, error) {
	m.mu.RLock()
	raw, ok := m.slots[slot]
	m.mu.RUnlock()
	if !ok {
		return nil, nil
	}
	return Decode(raw)
}

func (m *Memory) Clear(_ context.Context, slot string) error {
	m.mu.Lock()
	delete(m.slots, slot)
	m.mu.Unlock()
	return nil
}

// PutRaw writes slot content as-is, bypassing the codec.
func (m *Memory) PutRaw(slot string, raw []byte) {
	cp := make([]byte, len(raw))
	copy(cp, raw)
	m.mu.Lock()
	m.slots[slot] = cp
	m.mu.Unlock()
}

// Has reports whether slot holds any content.
func (m *Memory) Has(slot string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.slots[slot]
	return ok
}
