package service

import (
	"context"
	"fmt"
	"time"

	"dropship-reconciler/internal/core/logger"
	"dropship-reconciler/internal/features/reconciliation/domain"
	"dropship-reconciler/internal/features/reconciliation/ports"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Runner performs one full pass: snapshot, scrape, reconcile, sync, finalize.
type Runner struct {
	ledger      ports.Ledger
	storefront  ports.Storefront
	engine      *ReconciliationEngine
	synchronize *LedgerSynchronizer
	finalizer   *ShipmentFinalizer
	runs        ports.RunRepository
	lock        ports.RunLock
	now         func() time.Time
	logger      *zap.Logger
}

// RunnerOption configures optional Runner collaborators.
type RunnerOption func(*Runner)

// WithRunRepository records each run's report.
func WithRunRepository(repo ports.RunRepository) RunnerOption {
	return func(r *Runner) { r.runs = repo }
}

// WithRunLock guards runs with a lock shared between processes.
func WithRunLock(lock ports.RunLock) RunnerOption {
	return func(r *Runner) { r.lock = lock }
}

// NewRunner creates a new Runner.
func NewRunner(
	ledger ports.Ledger,
	storefront ports.Storefront,
	engine *ReconciliationEngine,
	synchronize *LedgerSynchronizer,
	finalizer *ShipmentFinalizer,
	opts ...RunnerOption,
) *Runner {
	r := &Runner{
		ledger:      ledger,
		storefront:  storefront,
		engine:      engine,
		synchronize: synchronize,
		finalizer:   finalizer,
		now:         time.Now,
		logger:      logger.Named("runner"),
	}
	for _, o := range opts {
		o(r)
	}
	return r
}

// Run executes one reconciliation pass. The returned report is never nil;
// err is set only for failures that stopped the pass.
func (r *Runner) Run(ctx context.Context) (*domain.RunReport, error) {
	report := &domain.RunReport{ID: uuid.NewString(), StartedAt: r.now(), Completed: []string{}}

	if r.lock != nil {
		ok, err := r.lock.Acquire(ctx)
		if err != nil {
			return r.finish(ctx, report, fmt.Errorf("failed to acquire run lock: %w", err))
		}
		if !ok {
			// Another process owns this pass; its report must not be overwritten.
			report.FinishedAt = r.now()
			return report, domain.ErrRunInProgress
		}
		defer func() {
			if err := r.lock.Release(context.WithoutCancel(ctx)); err != nil {
				r.logger.Warn("Failed to release run lock", zap.Error(err))
			}
		}()
	}

	err := r.pass(ctx, report)
	return r.finish(ctx, report, err)
}

func (r *Runner) pass(ctx context.Context, report *domain.RunReport) error {
	snapshot, err := r.ledger.GetRows(ctx)
	if err != nil {
		return fmt.Errorf("failed to read ledger: %w", err)
	}
	r.logger.Info("Ledger snapshot loaded", zap.Int("rows", len(snapshot)))

	session, err := r.storefront.Open(ctx)
	if err != nil {
		return fmt.Errorf("failed to open storefront session: %w", err)
	}
	defer func() {
		if err := session.Close(); err != nil {
			r.logger.Warn("Failed to close storefront session", zap.Error(err))
		}
	}()

	if err := session.Login(ctx); err != nil {
		return fmt.Errorf("failed to log in to storefront: %w", err)
	}

	page, err := session.ScrapeInTransit(ctx)
	if err != nil {
		return fmt.Errorf("failed to scrape in-transit orders: %w", err)
	}
	r.logger.Info("In-transit orders scraped", zap.Int("orders", len(page.Orders)))

	results := r.engine.Evaluate(ctx, page.Orders, snapshot)
	report.Tally(results)

	completed := domain.CompletedOrders(results)
	if len(completed) == 0 {
		return nil
	}

	sync := r.synchronize.Apply(ctx, completed)
	report.RowsUpdated = sync.Updated
	report.RowsFailed = sync.Failed

	finalized, err := r.finalizer.Finalize(ctx, sync.AnyUpdated(), page.BulkShip)
	report.Finalized = finalized
	if err != nil {
		return fmt.Errorf("failed to finalize shipment: %w", err)
	}
	return nil
}

func (r *Runner) finish(ctx context.Context, report *domain.RunReport, err error) (*domain.RunReport, error) {
	report.FinishedAt = r.now()
	if err != nil {
		report.Error = err.Error()
		r.logger.Error("Reconciliation run failed", zap.Error(err))
	} else {
		r.logger.Info("Reconciliation run finished",
			zap.Int("scraped", report.Scraped),
			zap.Int("completed", len(report.Completed)),
			zap.Int("rows_updated", report.RowsUpdated),
			zap.Bool("finalized", report.Finalized),
			zap.Duration("duration", report.FinishedAt.Sub(report.StartedAt)),
		)
	}

	if r.runs != nil {
		if saveErr := r.runs.Save(context.WithoutCancel(ctx), report); saveErr != nil {
			r.logger.Warn("Failed to save run report", zap.Error(saveErr))
		}
	}

	return report, err
}
