// Package redislock implements secondary.Locker on Redis so that evaluators
// in different processes never work on the same tenant at once.
package redislock

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/example/bellhop/internal/ports/secondary"
)

// releaseScript deletes the lock only if it still holds our token.
// KEYS[1] = lock key
// ARGV[1] = token written by TryAcquire
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
    return redis.call("DEL", KEYS[1])
end
return 0
`)

// Locker implements secondary.Locker using SET NX PX.
type Locker struct {
	client redis.UniversalClient
	prefix string
}

// New creates a Locker over an existing client. Keys are namespaced by prefix.
func New(client redis.UniversalClient, prefix string) *Locker {
	if prefix == "" {
		prefix = "bellhop:lease:"
	}
	return &Locker{client: client, prefix: prefix}
}

// NewFromAddr connects to a single Redis server.
func NewFromAddr(addr, password string, db int) *Locker {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	return New(rdb, "")
}

// Ping verifies the connection.
func (l *Locker) Ping(ctx context.Context) error {
	return l.client.Ping(ctx).Err()
}

// Close closes the underlying client.
func (l *Locker) Close() error {
	return l.client.Close()
}

// TryAcquire takes the lease for key if nobody holds it.
func (l *Locker) TryAcquire(ctx context.Context, key string, ttl time.Duration) (secondary.Lease, bool, error) {
	token := uuid.NewString()
	fullKey := l.prefix + key

	ok, err := l.client.SetNX(ctx, fullKey, token, ttl).Result()
	if err != nil {
		return nil, false, fmt.Errorf("redis lease error: %w", err)
	}
	if !ok {
		return nil, false, nil
	}
	return &lease{client: l.client, key: fullKey, token: token}, true, nil
}

type lease struct {
	client redis.UniversalClient
	key    string
	token  string
}

// Release deletes the key if it is still ours. An expired lease that was
// taken over by another evaluator is left alone.
func (le *lease) Release(ctx context.Context) error {
	if err := releaseScript.Run(ctx, le.client, []string{le.key}, le.token).Err(); err != nil {
		return fmt.Errorf("redis release error: %w", err)
	}
	return nil
}

// Ensure Locker implements the interface
var _ secondary.Locker = (*Locker)(nil)
