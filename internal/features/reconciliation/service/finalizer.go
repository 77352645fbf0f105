package service

import (
	"context"
	"fmt"

	"dropship-reconciler/internal/core/logger"
	"dropship-reconciler/internal/features/reconciliation/domain"

	"go.uber.org/zap"
)

// confirmDialogs is how many dialogs the storefront shows after the bulk ship click.
const confirmDialogs = 2

// ShipmentFinalizer triggers the storefront bulk "mark shipped" action.
type ShipmentFinalizer struct {
	logger *zap.Logger
}

// NewShipmentFinalizer creates a new ShipmentFinalizer.
func NewShipmentFinalizer() *ShipmentFinalizer {
	return &ShipmentFinalizer{logger: logger.Named("finalizer")}
}

// Finalize activates bulk and confirms both dialogs, but only when the
// ledger actually changed. It reports whether the action fired.
func (f *ShipmentFinalizer) Finalize(ctx context.Context, anyUpdated bool, bulk domain.BulkAction) (bool, error) {
	if !anyUpdated {
		f.logger.Info("No ledger rows updated, skipping bulk ship")
		return false, nil
	}
	if bulk == nil {
		return false, domain.ErrNoBulkControl
	}

	if err := bulk.Activate(ctx); err != nil {
		return false, fmt.Errorf("failed to activate bulk ship: %w", err)
	}

	for i := 1; i <= confirmDialogs; i++ {
		if err := bulk.Confirm(ctx); err != nil {
			return false, fmt.Errorf("failed to confirm dialog %d of %d: %w", i, confirmDialogs, err)
		}
	}

	f.logger.Info("Bulk ship confirmed")
	return true, nil
}
