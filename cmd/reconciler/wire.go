package main

import (
	"context"
	"fmt"

	"dropship-reconciler/internal/core/cache"
	"dropship-reconciler/internal/core/config"
	"dropship-reconciler/internal/core/logger"
	"dropship-reconciler/internal/core/proxy"
	"dropship-reconciler/internal/core/resilience"
	ledgeradapter "dropship-reconciler/internal/features/ledger/adapters"
	provideradapter "dropship-reconciler/internal/features/provider/adapters"
	providerservice "dropship-reconciler/internal/features/provider/service"
	runadapter "dropship-reconciler/internal/features/reconciliation/adapters"
	runhandler "dropship-reconciler/internal/features/reconciliation/handler"
	"dropship-reconciler/internal/features/reconciliation/ports"
	"dropship-reconciler/internal/features/reconciliation/service"
	storefrontadapter "dropship-reconciler/internal/features/storefront/adapters"

	"go.uber.org/zap"
)

// appEnv holds the wired collaborators shared by the subcommands.
type appEnv struct {
	Runner    *service.Runner
	Scheduler *service.Scheduler
	Runs      ports.RunRepository
	Provider  *provideradapter.SMMAdapter
	Placement *providerservice.PlacementService

	redis *cache.RedisAdapter
}

// pinger returns the Redis adapter for health checks, or nil when Redis is
// not configured.
func (e *appEnv) pinger() runhandler.Pinger {
	if e.redis == nil {
		return nil
	}
	return e.redis
}

// Close releases the Redis connection.
func (e *appEnv) Close() {
	if e.redis == nil {
		return
	}
	if err := e.redis.Close(); err != nil {
		logger.Get().Warn("Failed to close redis", zap.Error(err))
	}
}

func initApp(ctx context.Context, cfg *config.AppConfig) (*appEnv, error) {
	l := logger.Get()
	env := &appEnv{}

	store, err := newLedgerStore(ctx, cfg.Ledger)
	if err != nil {
		return nil, fmt.Errorf("init ledger: %w", err)
	}
	retry := resilience.DefaultRetryConfig()
	retry.MaxAttempts = cfg.Ledger.MaxAttempts
	ledger := ledgeradapter.NewRetryingLedger(store, retry)
	l.Info("Ledger ready", zap.String("backend", cfg.Ledger.Backend))

	env.Provider = provideradapter.NewSMMAdapter(cfg.Provider)
	env.Placement = providerservice.NewPlacementService(env.Provider, ledger)

	storefront := storefrontadapter.NewCafe24Adapter(cfg.Storefront, proxy.FromConfig(cfg.Proxy))

	var lock ports.RunLock
	if cfg.Redis.URL != "" {
		redis, err := cache.NewRedisAdapter(cfg.Redis.URL)
		if err != nil {
			return nil, fmt.Errorf("init redis: %w", err)
		}
		if err := redis.Ping(ctx); err != nil {
			_ = redis.Close()
			return nil, fmt.Errorf("redis ping: %w", err)
		}
		env.redis = redis
		env.Runs = runadapter.NewRedisRunRepository(redis)
		lock = runadapter.NewRedisRunLock(redis, cfg.Redis.LockTTL)
		l.Info("Redis connection verified")
	} else {
		env.Runs = runadapter.NewMemoryRunRepository()
		lock = runadapter.NewMemoryRunLock()
	}

	matcher := service.NewOrderMatcher(service.MatchMode(cfg.Ledger.MatchMode))
	engine := service.NewReconciliationEngine(matcher, env.Provider)
	synchronizer := service.NewLedgerSynchronizer(ledger, matcher, cfg.Ledger.RowUpdateDelay, cfg.Storefront.SelectDelay)

	env.Runner = service.NewRunner(
		ledger,
		storefront,
		engine,
		synchronizer,
		service.NewShipmentFinalizer(),
		service.WithRunRepository(env.Runs),
		service.WithRunLock(lock),
	)
	env.Scheduler = service.NewScheduler(env.Runner.Run, cfg.Schedule.Interval)

	return env, nil
}

func newLedgerStore(ctx context.Context, cfg config.LedgerConfig) (ledgeradapter.Store, error) {
	switch cfg.Backend {
	case config.LedgerBackendXLSX:
		return ledgeradapter.NewXLSXAdapter(cfg.XLSXPath, cfg.Worksheet)
	default:
		return ledgeradapter.NewSheetsAdapter(ctx, cfg)
	}
}
