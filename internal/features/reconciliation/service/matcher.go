package service

import (
	"strings"

	"dropship-reconciler/internal/features/reconciliation/domain"
)

// MatchMode selects how a ledger row's market order field is compared with a
// scraped order number.
type MatchMode string

const (
	// MatchContains matches when the field contains the order number.
	// Ledger cells sometimes hold compound identifiers, so this is the default.
	MatchContains MatchMode = "contains"
	// MatchExact matches only identical values.
	MatchExact MatchMode = "exact"
)

// OrderMatcher finds the in-transit ledger rows of a scraped order.
type OrderMatcher struct {
	mode MatchMode
}

// NewOrderMatcher creates a matcher. Unknown modes fall back to MatchContains.
func NewOrderMatcher(mode MatchMode) *OrderMatcher {
	if mode != MatchExact {
		mode = MatchContains
	}
	return &OrderMatcher{mode: mode}
}

// Mode returns the active match mode.
func (m *OrderMatcher) Mode() MatchMode {
	return m.mode
}

// Match returns the rows that identify marketOrderNum and are still in
// transit, in ledger order. An empty order number matches nothing.
func (m *OrderMatcher) Match(marketOrderNum string, rows []domain.LedgerRow) []domain.LedgerRow {
	if marketOrderNum == "" {
		return nil
	}

	var matches []domain.LedgerRow
	for _, row := range rows {
		if row.Status.IsInTransit() && m.identifies(row.MarketOrderNum, marketOrderNum) {
			matches = append(matches, row)
		}
	}
	return matches
}

func (m *OrderMatcher) identifies(field, marketOrderNum string) bool {
	if m.mode == MatchExact {
		return strings.TrimSpace(field) == marketOrderNum
	}
	return strings.Contains(field, marketOrderNum)
}
