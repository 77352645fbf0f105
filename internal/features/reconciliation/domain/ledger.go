package domain

// LedgerStatus is the raw value of the ledger's status column.
type LedgerStatus string

const (
	// LedgerStatusOrdered marks a row whose provider order was just placed.
	LedgerStatusOrdered LedgerStatus = "주문완료"
	// LedgerStatusInTransit marks a row whose provider order is still running.
	LedgerStatusInTransit LedgerStatus = "배송중"
	// LedgerStatusShipped marks a row that has been reconciled and shipped.
	LedgerStatusShipped LedgerStatus = "배송완료"
)

// IsInTransit reports whether the row is still waiting on the provider.
func (s LedgerStatus) IsInTransit() bool {
	return s == LedgerStatusInTransit
}

// IsShipped reports whether the row has already been marked shipped.
func (s LedgerStatus) IsShipped() bool {
	return s == LedgerStatusShipped
}

// LedgerRow is one market order ↔ provider order mapping in the ledger worksheet.
// Several rows may share a MarketOrderNum when an order was split into sub-orders.
type LedgerRow struct {
	// MarketOrderNum is the storefront order number.
	MarketOrderNum string `json:"market_order_num"`
	// StoreOrderNum is the provider order ID.
	StoreOrderNum string `json:"store_order_num"`
	// Username is the storefront customer.
	Username string `json:"username"`
	// ServiceNum is the provider service ID.
	ServiceNum string `json:"service_num"`
	// OrderLink is the link submitted to the provider.
	OrderLink string `json:"order_link"`
	// EditLink is the corrected link, if the customer edited it.
	EditLink string `json:"edit_link"`
	// Quantity is the ordered quantity.
	Quantity string `json:"quantity"`
	// ServiceName is the provider service display name.
	ServiceName string `json:"service_name"`
	// OrderTime is when the storefront order was placed.
	OrderTime string `json:"order_time"`
	// Status is the last known ledger state.
	Status LedgerStatus `json:"status"`
	// Position is the 1-based worksheet row; the header occupies row 1.
	Position int `json:"row_position"`
}
