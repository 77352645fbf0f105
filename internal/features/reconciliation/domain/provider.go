package domain

import (
	"bytes"
	"encoding/json"
	"strconv"
)

// ProviderStatusCompleted is the only provider status that counts as done.
const ProviderStatusCompleted = "Completed"

// ProviderStatus is the provider's answer for one order ID.
type ProviderStatus struct {
	// Status is free-form, e.g. "Pending", "In progress", "Partial", "Completed".
	Status string `json:"status"`
	// Charge is the amount billed for the order.
	Charge FlexString `json:"charge,omitempty"`
	// StartCount is the counter value when the order started.
	StartCount FlexString `json:"start_count,omitempty"`
	// Remains is the quantity still to be delivered.
	Remains FlexString `json:"remains,omitempty"`
	// Currency of Charge.
	Currency string `json:"currency,omitempty"`
	// Error is set by the provider instead of Status for unknown IDs.
	Error string `json:"error,omitempty"`
}

// IsCompleted reports whether the provider finished the order.
func (s ProviderStatus) IsCompleted() bool {
	return s.Status == ProviderStatusCompleted
}

// Balance is the provider account balance.
type Balance struct {
	Amount   float64 `json:"balance"`
	Currency string  `json:"currency"`
}

// PlacementRequest describes a provider order to be placed for a market order.
type PlacementRequest struct {
	MarketOrderNum string `json:"market_order_num"`
	Username       string `json:"username"`
	ServiceNum     string `json:"service_num"`
	ServiceName    string `json:"service_name"`
	Link           string `json:"link"`
	EditLink       string `json:"edit_link"`
	Quantity       int    `json:"quantity"`
	OrderTime      string `json:"order_time"`
}

// FlexString accepts a JSON string or number. Panels disagree on whether
// numeric fields are quoted.
type FlexString string

// UnmarshalJSON decodes either form into its textual representation.
func (f *FlexString) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*f = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = FlexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*f = FlexString(n.String())
	return nil
}

// Float parses the value as a float64.
func (f FlexString) Float() (float64, error) {
	return strconv.ParseFloat(string(f), 64)
}
