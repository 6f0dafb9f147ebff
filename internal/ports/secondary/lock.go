package secondary

import (
	"context"
	"time"
)

// Lease is a held evaluation lock.
type Lease interface {
	// Release gives the lock up. Releasing an expired lease is not an error.
	Release(ctx context.Context) error
}

// Locker defines the secondary port for short-lived evaluation leases,
// so that only one evaluator works on a tenant at a time.
type Locker interface {
	// TryAcquire takes the lock for key for at most ttl.
	// Returns false without error when someone else holds it.
	TryAcquire(ctx context.Context, key string, ttl time.Duration) (Lease, bool, error)
}
