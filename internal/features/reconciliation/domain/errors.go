package domain

import "errors"

var (
	// ErrProviderUnavailable is returned when the provider cannot be reached or answers with a non-2xx status.
	ErrProviderUnavailable = errors.New("provider unavailable")
	// ErrProviderRejected is returned when the provider answers a request with an error message.
	ErrProviderRejected = errors.New("provider rejected request")
	// ErrLedgerUnavailable is returned when the ledger store keeps failing after retries.
	ErrLedgerUnavailable = errors.New("ledger unavailable")
	// ErrRowUpdateFailed is returned when one ledger row could not be written.
	ErrRowUpdateFailed = errors.New("ledger row update failed")
	// ErrNoBulkControl is returned when finalization has no bulk action to trigger.
	ErrNoBulkControl = errors.New("bulk ship control not found")
	// ErrRunInProgress is returned when a run is requested while another is active.
	ErrRunInProgress = errors.New("reconciliation run already in progress")
)
