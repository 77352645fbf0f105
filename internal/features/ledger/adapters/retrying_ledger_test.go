package adapter

import (
	"context"
	"errors"
	"testing"
	"time"

	"dropship-reconciler/internal/core/resilience"
	"dropship-reconciler/internal/features/reconciliation/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// flakyStore fails the first failures calls of every method with err.
type flakyStore struct {
	failures int
	err      error
	calls    int
}

func (s *flakyStore) fail() error {
	s.calls++
	if s.calls <= s.failures {
		return s.err
	}
	return nil
}

func (s *flakyStore) GetRows(ctx context.Context) ([]domain.LedgerRow, error) {
	if err := s.fail(); err != nil {
		return nil, err
	}
	return []domain.LedgerRow{{MarketOrderNum: "A-1", Position: 2}}, nil
}

func (s *flakyStore) UpdateStatusCell(ctx context.Context, position int, status domain.LedgerStatus) error {
	return s.fail()
}

func (s *flakyStore) AppendRow(ctx context.Context, row domain.LedgerRow) error {
	return s.fail()
}

func fastRetry() resilience.RetryConfig {
	return resilience.RetryConfig{
		MaxAttempts:    5,
		InitialBackoff: time.Millisecond,
		MaxBackoff:     2 * time.Millisecond,
		Multiplier:     2,
	}
}

func transient() error {
	return resilience.NewTransientError(errors.New("rate limited"), 429)
}

func TestRetryingLedger_GetRows_RecoversFromTransient(t *testing.T) {
	store := &flakyStore{failures: 3, err: transient()}

	rows, err := NewRetryingLedger(store, fastRetry()).GetRows(context.Background())

	require.NoError(t, err)
	assert.Len(t, rows, 1)
	assert.Equal(t, 4, store.calls)
}

// TestRetryingLedger_GivesUpAfterMaxAttempts verifies five attempts then ErrLedgerUnavailable.
func TestRetryingLedger_GivesUpAfterMaxAttempts(t *testing.T) {
	store := &flakyStore{failures: 10, err: transient()}

	_, err := NewRetryingLedger(store, fastRetry()).GetRows(context.Background())

	assert.ErrorIs(t, err, domain.ErrLedgerUnavailable)
	assert.ErrorIs(t, err, resilience.ErrAttemptsExhausted)
	assert.Equal(t, 5, store.calls)
}

func TestRetryingLedger_PermanentErrorNotRetried(t *testing.T) {
	store := &flakyStore{failures: 10, err: errors.New("permission denied")}

	err := NewRetryingLedger(store, fastRetry()).UpdateStatusCell(context.Background(), 2, domain.LedgerStatusShipped)

	assert.ErrorIs(t, err, domain.ErrLedgerUnavailable)
	assert.Contains(t, err.Error(), "row 2")
	assert.Equal(t, 1, store.calls)
}

func TestRetryingLedger_AppendRow(t *testing.T) {
	store := &flakyStore{failures: 1, err: transient()}

	err := NewRetryingLedger(store, fastRetry()).AppendRow(context.Background(), domain.LedgerRow{MarketOrderNum: "A-1"})

	require.NoError(t, err)
	assert.Equal(t, 2, store.calls)
}

func TestRetryingLedger_ContextCanceled(t *testing.T) {
	store := &flakyStore{failures: 10, err: transient()}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewRetryingLedger(store, fastRetry()).GetRows(ctx)

	assert.ErrorIs(t, err, domain.ErrLedgerUnavailable)
	assert.Equal(t, 1, store.calls)
}
