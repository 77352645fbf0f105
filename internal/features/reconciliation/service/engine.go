package service

import (
	"context"

	"dropship-reconciler/internal/core/logger"
	"dropship-reconciler/internal/features/reconciliation/domain"
	"dropship-reconciler/internal/features/reconciliation/ports"

	"go.uber.org/zap"
)

// ReconciliationEngine decides which scraped orders are fully complete at the provider.
// It never touches the ledger.
type ReconciliationEngine struct {
	matcher  *OrderMatcher
	provider ports.StatusProvider
	logger   *zap.Logger
}

// NewReconciliationEngine creates a new ReconciliationEngine.
func NewReconciliationEngine(matcher *OrderMatcher, provider ports.StatusProvider) *ReconciliationEngine {
	return &ReconciliationEngine{
		matcher:  matcher,
		provider: provider,
		logger:   logger.Named("engine"),
	}
}

// Reconcile returns the fully completed orders, in scrape order.
func (e *ReconciliationEngine) Reconcile(ctx context.Context, orders []domain.ScrapedOrder, snapshot []domain.LedgerRow) []domain.ScrapedOrder {
	return domain.CompletedOrders(e.Evaluate(ctx, orders, snapshot))
}

// Evaluate checks every scraped order against the snapshot and the provider,
// one order and one sub-order at a time.
func (e *ReconciliationEngine) Evaluate(ctx context.Context, orders []domain.ScrapedOrder, snapshot []domain.LedgerRow) []domain.ReconciliationResult {
	results := make([]domain.ReconciliationResult, 0, len(orders))
	completed := 0

	for _, order := range orders {
		res := e.check(ctx, order, snapshot)
		if res.Verdict == domain.VerdictComplete {
			completed++
		}
		results = append(results, res)
	}

	e.logger.Info("Reconciliation finished",
		zap.Int("in_transit_orders", len(orders)),
		zap.Int("completed_orders", completed),
	)

	return results
}

// check walks the matched sub-orders in ledger order and stops at the first
// one the provider has not completed.
func (e *ReconciliationEngine) check(ctx context.Context, order domain.ScrapedOrder, snapshot []domain.LedgerRow) domain.ReconciliationResult {
	res := domain.ReconciliationResult{Order: order}
	log := e.logger.With(zap.String("market_order_num", order.MarketOrderNum))

	matches := e.matcher.Match(order.MarketOrderNum, snapshot)
	res.Matched = len(matches)
	if res.Matched == 0 {
		res.Verdict = domain.VerdictSkipped
		log.Debug("No in-transit ledger rows for order")
		return res
	}

	completeCount := 0
	for _, row := range matches {
		res.Checked++

		status, err := e.provider.GetStatus(ctx, row.StoreOrderNum)
		if err != nil {
			log.Error("Failed to query provider status",
				zap.String("store_order_num", row.StoreOrderNum),
				zap.Error(err),
			)
			res.Verdict = domain.VerdictFailed
			res.Err = err
			return res
		}

		if !status.IsCompleted() {
			log.Info("Sub-order not completed",
				zap.String("store_order_num", row.StoreOrderNum),
				zap.String("status", status.Status),
				zap.String("provider_error", status.Error),
			)
			break
		}

		completeCount++
		log.Info("Sub-order completed", zap.String("store_order_num", row.StoreOrderNum))
	}

	if completeCount == res.Matched {
		res.Verdict = domain.VerdictComplete
	} else {
		res.Verdict = domain.VerdictNotComplete
	}
	return res
}
