package service

import (
	"context"
	"sync/atomic"
	"time"

	"dropship-reconciler/internal/core/logger"
	"dropship-reconciler/internal/features/reconciliation/domain"

	"go.uber.org/zap"
)

// RunFunc performs one reconciliation pass. *Runner.Run satisfies it.
type RunFunc func(ctx context.Context) (*domain.RunReport, error)

// Scheduler runs reconciliation passes on an interval and on demand,
// never more than one at a time.
type Scheduler struct {
	run      RunFunc
	interval time.Duration
	busy     atomic.Bool
	logger   *zap.Logger
}

// NewScheduler creates a new Scheduler. A zero interval disables the loop.
func NewScheduler(run RunFunc, interval time.Duration) *Scheduler {
	return &Scheduler{
		run:      run,
		interval: interval,
		logger:   logger.Named("scheduler"),
	}
}

// Busy reports whether a pass is in flight.
func (s *Scheduler) Busy() bool {
	return s.busy.Load()
}

// RunOnce runs a pass in the calling goroutine.
func (s *Scheduler) RunOnce(ctx context.Context) (*domain.RunReport, error) {
	if !s.busy.CompareAndSwap(false, true) {
		return nil, domain.ErrRunInProgress
	}
	defer s.busy.Store(false)

	return s.run(ctx)
}

// Trigger starts a pass in the background and returns immediately.
func (s *Scheduler) Trigger(ctx context.Context) error {
	if !s.busy.CompareAndSwap(false, true) {
		return domain.ErrRunInProgress
	}

	go func() {
		defer s.busy.Store(false)
		if _, err := s.run(ctx); err != nil {
			s.logger.Warn("Triggered run ended with error", zap.Error(err))
		}
	}()
	return nil
}

// Start blocks, running a pass immediately and then every interval, until ctx ends.
func (s *Scheduler) Start(ctx context.Context) {
	if s.interval <= 0 {
		s.logger.Info("Run interval disabled, waiting for triggers")
		<-ctx.Done()
		return
	}

	s.logger.Info("Scheduler started", zap.Duration("interval", s.interval))

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		if _, err := s.RunOnce(ctx); err != nil {
			s.logger.Warn("Scheduled run ended with error", zap.Error(err))
		}

		select {
		case <-ctx.Done():
			s.logger.Info("Scheduler stopped")
			return
		case <-ticker.C:
		}
	}
}
