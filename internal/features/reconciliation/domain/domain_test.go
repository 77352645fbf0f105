package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProviderStatus_IsCompleted(t *testing.T) {
	tests := []struct {
		status string
		want   bool
	}{
		{"Completed", true},
		{"completed", false},
		{"Completed ", false},
		{"Partial", false},
		{"In progress", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.status, func(t *testing.T) {
			assert.Equal(t, tt.want, ProviderStatus{Status: tt.status}.IsCompleted())
		})
	}
}

func TestProviderStatus_DecodeMixedNumericFields(t *testing.T) {
	body := `{"charge":0.27819,"start_count":"3572","status":"Partial","remains":157,"currency":"USD"}`

	var s ProviderStatus
	require.NoError(t, json.Unmarshal([]byte(body), &s))

	assert.Equal(t, "Partial", s.Status)
	assert.Equal(t, FlexString("0.27819"), s.Charge)
	assert.Equal(t, FlexString("3572"), s.StartCount)
	assert.Equal(t, FlexString("157"), s.Remains)
	assert.Equal(t, "USD", s.Currency)
}

func TestProviderStatus_DecodeError(t *testing.T) {
	var s ProviderStatus
	require.NoError(t, json.Unmarshal([]byte(`{"error":"Incorrect order ID"}`), &s))

	assert.False(t, s.IsCompleted())
	assert.Equal(t, "Incorrect order ID", s.Error)
}

func TestFlexString(t *testing.T) {
	var f FlexString
	require.NoError(t, json.Unmarshal([]byte(`null`), &f))
	assert.Equal(t, FlexString(""), f)

	require.NoError(t, json.Unmarshal([]byte(`"100.84292"`), &f))
	v, err := f.Float()
	require.NoError(t, err)
	assert.InDelta(t, 100.84292, v, 1e-9)

	assert.Error(t, json.Unmarshal([]byte(`{}`), &f))
}

func TestLedgerStatus(t *testing.T) {
	assert.True(t, LedgerStatusInTransit.IsInTransit())
	assert.False(t, LedgerStatusShipped.IsInTransit())
	assert.True(t, LedgerStatusShipped.IsShipped())
	assert.False(t, LedgerStatusOrdered.IsShipped())
	assert.False(t, LedgerStatus("").IsInTransit())
}

func TestCompletedOrders(t *testing.T) {
	results := []ReconciliationResult{
		{Order: ScrapedOrder{MarketOrderNum: "A-1"}, Verdict: VerdictComplete},
		{Order: ScrapedOrder{MarketOrderNum: "A-2"}, Verdict: VerdictNotComplete},
		{Order: ScrapedOrder{MarketOrderNum: "A-3"}, Verdict: VerdictSkipped},
		{Order: ScrapedOrder{MarketOrderNum: "A-4"}, Verdict: VerdictComplete},
		{Order: ScrapedOrder{MarketOrderNum: "A-5"}, Verdict: VerdictFailed},
	}

	completed := CompletedOrders(results)

	require.Len(t, completed, 2)
	assert.Equal(t, "A-1", completed[0].MarketOrderNum)
	assert.Equal(t, "A-4", completed[1].MarketOrderNum)
	assert.Empty(t, CompletedOrders(nil))
}

func TestRunReport_Tally(t *testing.T) {
	var r RunReport
	r.Tally([]ReconciliationResult{
		{Order: ScrapedOrder{MarketOrderNum: "A-1"}, Verdict: VerdictComplete},
		{Order: ScrapedOrder{MarketOrderNum: "A-2"}, Verdict: VerdictNotComplete},
		{Order: ScrapedOrder{MarketOrderNum: "A-3"}, Verdict: VerdictSkipped},
		{Order: ScrapedOrder{MarketOrderNum: "A-5"}, Verdict: VerdictFailed},
	})

	assert.Equal(t, 4, r.Scraped)
	assert.Equal(t, 1, r.Skipped)
	assert.Equal(t, 1, r.NotComplete)
	assert.Equal(t, 1, r.Failed)
	assert.Equal(t, []string{"A-1"}, r.Completed)
}

func TestSyncResult_AnyUpdated(t *testing.T) {
	assert.False(t, SyncResult{}.AnyUpdated())
	assert.False(t, SyncResult{Failed: 3}.AnyUpdated())
	assert.True(t, SyncResult{Updated: 1}.AnyUpdated())
}
