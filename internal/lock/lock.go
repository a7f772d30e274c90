package lock

import (
	"context"
	"sync"
	"time"
)

// Locker provides best-effort mutual exclusion around short critical
// sections, keyed by an arbitrary string.
type Locker interface {
	Lock(ctx context.Context, key string, ttl time.Duration) (bool, error)
	Unlock(ctx context.Context, key string) error
}

// LocalLock is the single-process fallback used when Redis is not
// configured. Held keys expire after their TTL so a crashed caller cannot
// wedge the allocator.
type LocalLock struct {
	mu   sync.Mutex
	held map[string]time.Time
}

func NewLocalLock() *LocalLock {
	return &LocalLock{held: make(map[string]time.Time)}
}

func (l *LocalLock) Lock(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if expiry, ok := l.held[key]; ok && time.Now().Before(expiry) {
		return false, nil
	}
	l.held[key] = time.Now().Add(ttl)
	return true, nil
}

func (l *LocalLock) Unlock(ctx context.Context, key string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.held, key)
	return nil
}
