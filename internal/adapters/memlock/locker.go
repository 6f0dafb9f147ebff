// Package memlock implements secondary.Locker in process memory.
// It is the lease used when no Redis address is configured.
package memlock

import (
	"context"
	"sync"
	"time"

	"github.com/example/bellhop/internal/ports/secondary"
)

// Locker implements secondary.Locker with a mutex-guarded map of expiries.
type Locker struct {
	mu     sync.Mutex
	held   map[string]holder
	now    func() time.Time
	nextID uint64
}

type holder struct {
	id      uint64
	expires time.Time
}

// New creates an empty Locker.
func New() *Locker {
	return &Locker{held: make(map[string]holder), now: time.Now}
}

// TryAcquire takes the lease for key unless an unexpired holder exists.
func (l *Locker) TryAcquire(_ context.Context, key string, ttl time.Duration) (secondary.Lease, bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if h, ok := l.held[key]; ok && now.Before(h.expires) {
		return nil, false, nil
	}

	l.nextID++
	l.held[key] = holder{id: l.nextID, expires: now.Add(ttl)}
	return &lease{locker: l, key: key, id: l.nextID}, true, nil
}

type lease struct {
	locker *Locker
	key    string
	id     uint64
}

func (le *lease) Release(context.Context) error {
	l := le.locker
	l.mu.Lock()
	defer l.mu.Unlock()

	if h, ok := l.held[le.key]; ok && h.id == le.id {
		delete(l.held, le.key)
	}
	return nil
}

// Ensure Locker implements the interface
var _ secondary.Locker = (*Locker)(nil)
