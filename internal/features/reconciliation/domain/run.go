package domain

import "time"

// RunReport summarizes one reconciliation run.
type RunReport struct {
	ID          string    `json:"id"`
	StartedAt   time.Time `json:"started_at"`
	FinishedAt  time.Time `json:"finished_at"`
	Scraped     int       `json:"scraped"`
	Skipped     int       `json:"skipped"`
	NotComplete int       `json:"not_complete"`
	Failed      int       `json:"failed"`
	// Completed lists market order numbers judged fully complete.
	Completed   []string `json:"completed"`
	RowsUpdated int      `json:"rows_updated"`
	RowsFailed  int      `json:"rows_failed"`
	Finalized   bool     `json:"finalized"`
	Error       string   `json:"error,omitempty"`
}

// Tally fills the verdict counters from reconciliation results.
func (r *RunReport) Tally(results []ReconciliationResult) {
	r.Scraped = len(results)
	r.Completed = make([]string, 0)
	for _, res := range results {
		switch res.Verdict {
		case VerdictSkipped:
			r.Skipped++
		case VerdictNotComplete:
			r.NotComplete++
		case VerdictFailed:
			r.Failed++
		case VerdictComplete:
			r.Completed = append(r.Completed, res.Order.MarketOrderNum)
		}
	}
}
