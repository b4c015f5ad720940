package lock

import (
	"context"
	"sync"
	"time"
)

// MemoryLocker keeps held keys in a mutex-guarded map. The ttl is ignored:
// a key stays held until its lease is released.
type MemoryLocker struct {
	mu   sync.Mutex
	held map[string]uint64
	seq  uint64
}

func NewMemoryLocker() *MemoryLocker {
	return &MemoryLocker{held: make(map[string]uint64)}
}

func (m *MemoryLocker) TryLock(_ context.Context, key string, _ time.Duration) (Lease, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.held[key]; ok {
		return nil, false, nil
	}
	m.seq++
	m.held[key] = m.seq
	return &memoryLease{locker: m, key: key, token: m.seq}, true, nil
}

// Held reports whether key is currently locked.
func (m *MemoryLocker) Held(key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.held[key]
	return ok
}

type memoryLease struct {
	locker *MemoryLocker
	key    string
	token  uint64
	once   sync.Once
}

func (l *memoryLease) Release() {
	l.once.Do(func() {
		l.locker.mu.Lock()
		defer l.locker.mu.Unlock()
		if l.locker.held[l.key] == l.token {
			delete(l.locker.held, l.key)
		}
	})
}
