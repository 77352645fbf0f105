package domain

import "context"

// Selectable is the on-page checkbox of one storefront order. It is a
// write-only capability owned by the browser session.
type Selectable interface {
	Select(ctx context.Context) error
}

// BulkAction is the storefront's "mark shipped" button. Activating it opens
// two confirmation dialogs that must be confirmed in order.
type BulkAction interface {
	Activate(ctx context.Context) error
	Confirm(ctx context.Context) error
}

// ScrapedOrder is a storefront order listed as in transit on the shipping page.
type ScrapedOrder struct {
	// MarketOrderNum is unique within one scrape.
	MarketOrderNum string
	// Marker selects the order for the bulk action.
	Marker Selectable
}

// ShippingPage is the result of scraping the in-transit order list.
type ShippingPage struct {
	Orders   []ScrapedOrder
	BulkShip BulkAction
}

// Verdict is the reconciliation outcome for one scraped order.
type Verdict string

const (
	// VerdictSkipped means no in-transit ledger row matched the order.
	VerdictSkipped Verdict = "skipped"
	// VerdictNotComplete means a sub-order is still running at the provider.
	VerdictNotComplete Verdict = "not_complete"
	// VerdictComplete means every matched sub-order reported Completed.
	VerdictComplete Verdict = "complete"
	// VerdictFailed means the provider could not be asked; retried next run.
	VerdictFailed Verdict = "failed"
)

// ReconciliationResult tags a scraped order with its verdict.
type ReconciliationResult struct {
	Order   ScrapedOrder
	Verdict Verdict
	// Matched is the number of in-transit ledger rows found.
	Matched int
	// Checked is the number of provider calls made.
	Checked int
	Err     error
}

// CompletedOrders keeps the orders whose verdict is complete, in input order.
func CompletedOrders(results []ReconciliationResult) []ScrapedOrder {
	completed := make([]ScrapedOrder, 0, len(results))
	for _, r := range results {
		if r.Verdict == VerdictComplete {
			completed = append(completed, r.Order)
		}
	}
	return completed
}

// SyncResult is the outcome of pushing completed orders into the ledger.
type SyncResult struct {
	// Updated counts rows moved to shipped.
	Updated int
	// Failed counts row updates that errored.
	Failed int
	// Orders is the list of completed orders handed to the finalizer, unchanged.
	Orders []ScrapedOrder
}

// AnyUpdated reports whether at least one ledger row changed.
func (r SyncResult) AnyUpdated() bool {
	return r.Updated > 0
}
