package adapter

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"dropship-reconciler/internal/core/cache"

	"github.com/google/uuid"
)

const runLockCacheKey = "reconciler:run_lock"

// RedisRunLock implements ports.RunLock with SET NX and a TTL, so a crashed
// process cannot hold the lock forever.
type RedisRunLock struct {
	cache cache.Cache
	ttl   time.Duration

	mu    sync.Mutex
	token string
}

// NewRedisRunLock creates a new RedisRunLock.
func NewRedisRunLock(c cache.Cache, ttl time.Duration) *RedisRunLock {
	return &RedisRunLock{
		cache: c,
		ttl:   ttl,
	}
}

// Acquire takes the lock if nobody holds it.
func (l *RedisRunLock) Acquire(ctx context.Context) (bool, error) {
	token := uuid.NewString()

	ok, err := l.cache.SetNX(ctx, runLockCacheKey, []byte(token), l.ttl)
	if err != nil {
		return false, fmt.Errorf("failed to acquire run lock: %w", err)
	}
	if !ok {
		return false, nil
	}

	l.mu.Lock()
	l.token = token
	l.mu.Unlock()
	return true, nil
}

// Release drops the lock if this process still owns it.
func (l *RedisRunLock) Release(ctx context.Context) error {
	l.mu.Lock()
	token := l.token
	l.token = ""
	l.mu.Unlock()

	if token == "" {
		return nil
	}

	current, err := l.cache.Get(ctx, runLockCacheKey)
	if errors.Is(err, cache.ErrCacheMiss) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read run lock: %w", err)
	}
	if string(current) != token {
		// Expired and taken by another process.
		return nil
	}

	if err := l.cache.Delete(ctx, runLockCacheKey); err != nil {
		return fmt.Errorf("failed to release run lock: %w", err)
	}
	return nil
}
