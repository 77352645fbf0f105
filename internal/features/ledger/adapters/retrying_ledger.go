package adapter

import (
	"context"
	"fmt"

	"dropship-reconciler/internal/core/logger"
	"dropship-reconciler/internal/core/resilience"
	"dropship-reconciler/internal/features/reconciliation/domain"
	"dropship-reconciler/internal/features/reconciliation/ports"

	"go.uber.org/zap"
)

// Store is a ledger backend that can also append rows.
type Store interface {
	ports.Ledger
	ports.LedgerAppender
}

// RetryingLedger retries transient ledger failures with exponential backoff.
// Errors that survive the retries wrap domain.ErrLedgerUnavailable.
type RetryingLedger struct {
	inner  Store
	cfg    resilience.RetryConfig
	logger *zap.Logger
}

// NewRetryingLedger wraps inner with the given retry policy.
func NewRetryingLedger(inner Store, cfg resilience.RetryConfig) *RetryingLedger {
	return &RetryingLedger{
		inner:  inner,
		cfg:    cfg,
		logger: logger.Named("ledger"),
	}
}

// GetRows implements ports.Ledger.
func (l *RetryingLedger) GetRows(ctx context.Context) ([]domain.LedgerRow, error) {
	rows, err := resilience.DoVal(ctx, l.policy("get_rows"), l.inner.GetRows)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrLedgerUnavailable, err)
	}
	return rows, nil
}

// UpdateStatusCell implements ports.Ledger.
func (l *RetryingLedger) UpdateStatusCell(ctx context.Context, position int, status domain.LedgerStatus) error {
	err := resilience.Do(ctx, l.policy("update_status_cell"), func(ctx context.Context) error {
		return l.inner.UpdateStatusCell(ctx, position, status)
	})
	if err != nil {
		return fmt.Errorf("%w: row %d: %w", domain.ErrLedgerUnavailable, position, err)
	}
	return nil
}

// AppendRow implements ports.LedgerAppender.
func (l *RetryingLedger) AppendRow(ctx context.Context, row domain.LedgerRow) error {
	err := resilience.Do(ctx, l.policy("append_row"), func(ctx context.Context) error {
		return l.inner.AppendRow(ctx, row)
	})
	if err != nil {
		return fmt.Errorf("%w: %w", domain.ErrLedgerUnavailable, err)
	}
	return nil
}

func (l *RetryingLedger) policy(operation string) resilience.RetryConfig {
	cfg := l.cfg
	if cfg.OnRetry == nil {
		cfg.OnRetry = resilience.RetryLogger(l.logger, operation)
	}
	return cfg
}
