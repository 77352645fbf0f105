package adapter

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"dropship-reconciler/internal/core/cache"
	"dropship-reconciler/internal/features/reconciliation/domain"
)

const lastRunCacheKey = "reconciler:last_run"

// RedisRunRepository implements ports.RunRepository using the cache adaptation.
type RedisRunRepository struct {
	cache cache.Cache
}

// NewRedisRunRepository creates a new RedisRunRepository.
func NewRedisRunRepository(c cache.Cache) *RedisRunRepository {
	return &RedisRunRepository{
		cache: c,
	}
}

// Save stores the report without expiration; each run overwrites the last.
func (r *RedisRunRepository) Save(ctx context.Context, report *domain.RunReport) error {
	data, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("failed to marshal run report: %w", err)
	}

	if err := r.cache.Set(ctx, lastRunCacheKey, data, 0); err != nil {
		return fmt.Errorf("failed to save run report to cache: %w", err)
	}
	return nil
}

// Last returns the most recent report, or nil if no run was recorded.
func (r *RedisRunRepository) Last(ctx context.Context) (*domain.RunReport, error) {
	data, err := r.cache.Get(ctx, lastRunCacheKey)
	if errors.Is(err, cache.ErrCacheMiss) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get run report from cache: %w", err)
	}

	var report domain.RunReport
	if err := json.Unmarshal(data, &report); err != nil {
		return nil, fmt.Errorf("failed to unmarshal run report: %w", err)
	}
	return &report, nil
}
