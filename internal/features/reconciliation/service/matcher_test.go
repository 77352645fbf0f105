package service

import (
	"testing"

	"dropship-reconciler/internal/features/reconciliation/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrderMatcher_Contains(t *testing.T) {
	rows := []domain.LedgerRow{
		{MarketOrderNum: "20250105-0000216-1", StoreOrderNum: "214952", Status: domain.LedgerStatusInTransit, Position: 2},
		{MarketOrderNum: "20250105-0000216-1", StoreOrderNum: "214953", Status: domain.LedgerStatusShipped, Position: 3},
		{MarketOrderNum: "20250105-0000201-1", StoreOrderNum: "214954", Status: domain.LedgerStatusInTransit, Position: 4},
		{MarketOrderNum: "20250105-0000216-1 / 20250105-0000216-2", StoreOrderNum: "214955", Status: domain.LedgerStatusInTransit, Position: 5},
		{MarketOrderNum: "20250105-0000216-1", StoreOrderNum: "214956", Status: domain.LedgerStatusOrdered, Position: 6},
	}

	m := NewOrderMatcher(MatchContains)
	matches := m.Match("20250105-0000216-1", rows)

	require.Len(t, matches, 2)
	assert.Equal(t, 2, matches[0].Position)
	assert.Equal(t, 5, matches[1].Position, "compound identifiers match by containment, ledger order kept")
}

func TestOrderMatcher_ContainsOverMatches(t *testing.T) {
	rows := []domain.LedgerRow{inTransit("A-10", "S-10")}

	assert.Len(t, NewOrderMatcher(MatchContains).Match("A-1", rows), 1)
	assert.Empty(t, NewOrderMatcher(MatchExact).Match("A-1", rows))
}

func TestOrderMatcher_Exact(t *testing.T) {
	rows := []domain.LedgerRow{
		inTransit("A-1 ", "S-1"),
		inTransit("A-1 / A-2", "S-2"),
		inTransit("A-1", "S-3"),
	}

	matches := NewOrderMatcher(MatchExact).Match("A-1", rows)

	require.Len(t, matches, 2)
	assert.Equal(t, "S-1", matches[0].StoreOrderNum)
	assert.Equal(t, "S-3", matches[1].StoreOrderNum)
}

func TestOrderMatcher_NoMatches(t *testing.T) {
	m := NewOrderMatcher(MatchContains)

	assert.Empty(t, m.Match("A-9", []domain.LedgerRow{inTransit("A-1", "S-1")}))
	assert.Empty(t, m.Match("A-1", nil))
	assert.Empty(t, m.Match("", []domain.LedgerRow{inTransit("A-1", "S-1")}), "empty identifier must not match every row")
}

func TestNewOrderMatcher_DefaultMode(t *testing.T) {
	assert.Equal(t, MatchContains, NewOrderMatcher("").Mode())
	assert.Equal(t, MatchContains, NewOrderMatcher("fuzzy").Mode())
	assert.Equal(t, MatchExact, NewOrderMatcher(MatchExact).Mode())
}
