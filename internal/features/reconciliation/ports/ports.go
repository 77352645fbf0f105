package ports

import (
	"context"

	"dropship-reconciler/internal/features/reconciliation/domain"
)

// StatusProvider answers the provider status of a single order.
// This is a Secondary Port (Driven Port).
type StatusProvider interface {
	// GetStatus issues one request and never retries.
	GetStatus(ctx context.Context, orderID string) (*domain.ProviderStatus, error)
}

// ProviderClient is the full fulfillment provider API.
type ProviderClient interface {
	StatusProvider
	// GetStatuses queries a set of orders in one request, keyed by order ID.
	GetStatuses(ctx context.Context, orderIDs []string) (map[string]domain.ProviderStatus, error)
	// GetBalance returns the account balance.
	GetBalance(ctx context.Context) (*domain.Balance, error)
	// CreateOrder places an order and returns the provider order ID.
	CreateOrder(ctx context.Context, req domain.PlacementRequest) (string, error)
}

// Ledger is the narrow view of the ledger worksheet the core depends on.
type Ledger interface {
	// GetRows returns a fresh snapshot of every data row, in sheet order.
	GetRows(ctx context.Context) ([]domain.LedgerRow, error)
	// UpdateStatusCell writes the status column of the row at position.
	UpdateStatusCell(ctx context.Context, position int, status domain.LedgerStatus) error
}

// LedgerAppender appends new mapping rows. Only order placement uses it.
type LedgerAppender interface {
	AppendRow(ctx context.Context, row domain.LedgerRow) error
}

// Storefront opens browser sessions against the storefront admin.
type Storefront interface {
	Open(ctx context.Context) (StorefrontSession, error)
}

// StorefrontSession is one logged-in (or about to be) admin browser.
type StorefrontSession interface {
	Login(ctx context.Context) error
	// ScrapeInTransit lists in-transit orders with their checkboxes and the bulk ship control.
	ScrapeInTransit(ctx context.Context) (*domain.ShippingPage, error)
	Close() error
}

// RunRepository keeps the last run report.
type RunRepository interface {
	Save(ctx context.Context, report *domain.RunReport) error
	// Last returns nil, nil when no run has been recorded.
	Last(ctx context.Context) (*domain.RunReport, error)
}

// RunLock keeps two processes from reconciling the same ledger at once.
type RunLock interface {
	Acquire(ctx context.Context) (bool, error)
	Release(ctx context.Context) error
}
