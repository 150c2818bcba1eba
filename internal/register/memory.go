package register

import (
	"context"
	"sync"
	"time"
)

// MemoryRegister is an in-process fallback used when REDIS_URL is unset
// (single-node/dev runs only — spec.md §5's cross-process guarantee does not
// hold across multiple processes using separate MemoryRegister instances).
type MemoryRegister struct {
	mu        sync.Mutex
	entries   map[string]memoryEntry
	holders   map[string]time.Time // lock key -> expiry
}

type memoryEntry struct {
	value  time.Time
	expiry time.Time // zero = no expiry
}

func NewMemoryRegister() *MemoryRegister {
	return &MemoryRegister{
		entries: make(map[string]memoryEntry),
		holders: make(map[string]time.Time),
	}
}

func (m *MemoryRegister) GetTimestamp(_ context.Context, key string) (time.Time, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries[key]
	if !ok || (!e.expiry.IsZero() && time.Now().After(e.expiry)) {
		return time.Time{}, ErrNotFound
	}
	return e.value, nil
}

func (m *MemoryRegister) SetTimestamp(_ context.Context, key string, t time.Time, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	var expiry time.Time
	if ttl > 0 {
		expiry = time.Now().Add(ttl)
	}
	m.entries[key] = memoryEntry{value: t, expiry: expiry}
	return nil
}

func (m *MemoryRegister) TryLock(_ context.Context, key string, ttl time.Duration) (func(context.Context), error) {
	lockKey := "lock:" + key
	m.mu.Lock()
	defer m.mu.Unlock()

	if expiry, held := m.holders[lockKey]; held && time.Now().Before(expiry) {
		return nil, ErrLocked
	}
	m.holders[lockKey] = time.Now().Add(ttl)

	release := func(_ context.Context) {
		m.mu.Lock()
		delete(m.holders, lockKey)
		m.mu.Unlock()
	}
	return release, nil
}

func (m *MemoryRegister) Close() error { return nil }
