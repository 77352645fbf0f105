package service

import (
	"context"
	"fmt"
	"time"

	"dropship-reconciler/internal/core/logger"
	"dropship-reconciler/internal/features/reconciliation/domain"
	"dropship-reconciler/internal/features/reconciliation/ports"

	"go.uber.org/zap"
)

// LedgerSynchronizer moves completed orders to shipped in the ledger and
// ticks their storefront checkboxes.
type LedgerSynchronizer struct {
	ledger         ports.Ledger
	matcher        *OrderMatcher
	rowUpdateDelay time.Duration
	selectDelay    time.Duration
	logger         *zap.Logger
}

// NewLedgerSynchronizer creates a new LedgerSynchronizer. The delays are
// fixed waits after each row update and each checkbox selection.
func NewLedgerSynchronizer(ledger ports.Ledger, matcher *OrderMatcher, rowUpdateDelay, selectDelay time.Duration) *LedgerSynchronizer {
	return &LedgerSynchronizer{
		ledger:         ledger,
		matcher:        matcher,
		rowUpdateDelay: rowUpdateDelay,
		selectDelay:    selectDelay,
		logger:         logger.Named("synchronizer"),
	}
}

// Apply updates the ledger for each completed order. The snapshot is
// re-read per order since other writers may append rows during a run.
func (s *LedgerSynchronizer) Apply(ctx context.Context, completed []domain.ScrapedOrder) domain.SyncResult {
	result := domain.SyncResult{Orders: completed}

	for _, order := range completed {
		if ctx.Err() != nil {
			s.logger.Warn("Ledger sync interrupted", zap.Error(ctx.Err()))
			break
		}

		log := s.logger.With(zap.String("market_order_num", order.MarketOrderNum))

		rows, err := s.ledger.GetRows(ctx)
		if err != nil {
			log.Error("Failed to refresh ledger snapshot, skipping order", zap.Error(err))
			continue
		}

		for _, row := range s.matcher.Match(order.MarketOrderNum, rows) {
			if err := s.ledger.UpdateStatusCell(ctx, row.Position, domain.LedgerStatusShipped); err != nil {
				result.Failed++
				log.Error("Ledger row update failed",
					zap.Int("row", row.Position),
					zap.Error(fmt.Errorf("%w: %w", domain.ErrRowUpdateFailed, err)),
				)
				continue
			}

			result.Updated++
			log.Info("Ledger row marked shipped",
				zap.Int("row", row.Position),
				zap.String("store_order_num", row.StoreOrderNum),
			)
			_ = pause(ctx, s.rowUpdateDelay)
		}

		if order.Marker == nil {
			log.Warn("Order has no checkbox, it will not be bulk shipped")
			continue
		}
		if err := order.Marker.Select(ctx); err != nil {
			log.Error("Failed to select order checkbox", zap.Error(err))
		}
		_ = pause(ctx, s.selectDelay)
	}

	s.logger.Info("Ledger sync finished",
		zap.Int("orders", len(completed)),
		zap.Int("rows_updated", result.Updated),
		zap.Int("rows_failed", result.Failed),
	)

	return result
}
