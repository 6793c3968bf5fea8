package auth

import (
	"context"
	"sync"
	"time"
)

// Revocations remembers signed-out session IDs until their token would have expired anyway.
// The Redis store implements it for multi-instance deployments.
type Revocations interface {
	Revoke(ctx context.Context, sessionID string, ttl time.Duration) error
	IsRevoked(ctx context.Context, sessionID string) (bool, error)
}

// MemoryRevocations is the in-process Revocations.
type MemoryRevocations struct {
	mu      sync.Mutex
	entries map[string]time.Time // session ID -> forget after
	now     func() time.Time
}

func NewMemoryRevocations() *MemoryRevocations {
	return &MemoryRevocations{
		entries: make(map[string]time.Time),
		now:     time.Now,
	}
}

func (m *MemoryRevocations) Revoke(_ context.Context, sessionID string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.entries[sessionID] = m.now().Add(ttl)
	return nil
}

func (m *MemoryRevocations) IsRevoked(_ context.Context, sessionID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	until, ok := m.entries[sessionID]
	if !ok {
		return false, nil
	}
	if !m.now().Before(until) {
		delete(m.entries, sessionID)
		return false, nil
	}
	return true, nil
}

// Collect forgets the revocations that expired before now and returns how many.
func (m *MemoryRevocations) Collect(now time.Time) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	n := 0
	for id, until := range m.entries {
		if !now.Before(until) {
			delete(m.entries, id)
			n++
		}
	}
	return n
}

// Len returns the number of remembered revocations, expired ones included.
func (m *MemoryRevocations) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	return len(m.entries)
}
