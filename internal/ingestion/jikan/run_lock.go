package jikan

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// RunLock keeps synchronization runs from overlapping across processes.
type RunLock interface {
	// TryAcquire never blocks. release is nil when acquired is false.
	TryAcquire(ctx context.Context) (release func(), acquired bool, err error)
}

const catalogLockKey = "animeschedule:lock:catalog-sync"

// releaseScript deletes the key only while it still holds our token, so an
// expired lease taken over by another process is left alone.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

type lockClient interface {
	redis.Scripter
	SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.BoolCmd
}

// NewRedisRunLock leases the lock for ttl; a crashed holder frees it when
// the lease runs out.
func NewRedisRunLock(client redis.Cmdable, ttl time.Duration) RunLock {
	return &redisLease{client: client, key: catalogLockKey, ttl: ttl}
}

type redisLease struct {
	client lockClient
	key    string
	ttl    time.Duration
}

func (l *redisLease) TryAcquire(ctx context.Context) (func(), bool, error) {
	token := uuid.NewString()
	ok, err := l.client.SetNX(ctx, l.key, token, l.ttl).Result()
	if err != nil {
		return nil, false, fmt.Errorf("acquire sync lock: %w", err)
	}
	if !ok {
		return nil, false, nil
	}

	release := func() {
		// the run context may already be cancelled
		releaseCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = releaseScript.Run(releaseCtx, l.client, []string{l.key}, token).Err()
	}
	return release, true, nil
}

// localRunLock is used when redis is not configured; it only guards the
// current process.
type localRunLock struct {
	mu   sync.Mutex
	held bool
}

func NewLocalRunLock() RunLock {
	return &localRunLock{}
}

func (l *localRunLock) TryAcquire(_ context.Context) (func(), bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.held {
		return nil, false, nil
	}
	l.held = true

	var once sync.Once
	return func() {
		once.Do(func() {
			l.mu.Lock()
			l.held = false
			l.mu.Unlock()
		})
	}, true, nil
}
