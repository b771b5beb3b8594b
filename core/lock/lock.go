// Package lock serializes writers across goroutines and, when Redis is configured, across processes.
package lock

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const pollInterval = 50 * time.Millisecond

// Locker hands out named, expiring locks.
type Locker interface {
	// TryLock acquires key without waiting. ok is false when another holder has it.
	TryLock(ctx context.Context, key string, ttl time.Duration) (release func(), ok bool, err error)
}

// process is shared by every caller of New without Redis, so API requests,
// cron ticks and engines in one process contend on the same keys.
var process = sync.OnceValue(NewLocal)

// New returns a Redis-backed locker when client is non-nil, otherwise the
// process-wide in-process locker.
func New(client *redis.Client) Locker {
	if client == nil {
		return process()
	}
	return &redisLocker{client: client}
}

// Lock blocks until key is acquired or ctx is done.
func Lock(ctx context.Context, l Locker, key string, ttl time.Duration) (func(), error) {
	for {
		release, ok, err := l.TryLock(ctx, key, ttl)
		if err != nil {
			return nil, err
		}
		if ok {
			return release, nil
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(pollInterval):
		}
	}
}

type localLocker struct {
	mu   sync.Mutex
	held map[string]time.Time
}

// NewLocal returns an isolated in-process locker.
func NewLocal() Locker {
	return &localLocker{held: make(map[string]time.Time)}
}

func (l *localLocker) TryLock(_ context.Context, key string, ttl time.Duration) (func(), bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if exp, ok := l.held[key]; ok && (exp.IsZero() || time.Now().Before(exp)) {
		return nil, false, nil
	}
	var exp time.Time
	if ttl > 0 {
		exp = time.Now().Add(ttl)
	}
	l.held[key] = exp
	return func() {
		l.mu.Lock()
		defer l.mu.Unlock()
		if l.held[key] == exp {
			delete(l.held, key)
		}
	}, true, nil
}

var releaseScript = redis.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
end
return 0`)

type redisLocker struct {
	client *redis.Client
}

func (l *redisLocker) TryLock(ctx context.Context, key string, ttl time.Duration) (func(), bool, error) {
	token := uuid.NewString()
	ok, err := l.client.SetNX(ctx, key, token, ttl).Result()
	if err != nil || !ok {
		return nil, false, err
	}
	return func() {
		// Released with a fresh context: the caller's may already be cancelled.
		_ = releaseScript.Run(context.Background(), l.client, []string{key}, token).Err()
	}, true, nil
}
