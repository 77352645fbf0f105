package service

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"dropship-reconciler/internal/features/reconciliation/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// blockingRun returns a RunFunc that waits on release and counts its calls.
func blockingRun(calls *atomic.Int32, started chan<- struct{}, release <-chan struct{}) RunFunc {
	return func(ctx context.Context) (*domain.RunReport, error) {
		calls.Add(1)
		if started != nil {
			started <- struct{}{}
		}
		if release != nil {
			<-release
		}
		return &domain.RunReport{}, nil
	}
}

func TestScheduler_RunOnce(t *testing.T) {
	var calls atomic.Int32
	s := NewScheduler(blockingRun(&calls, nil, nil), 0)

	report, err := s.RunOnce(context.Background())

	require.NoError(t, err)
	assert.NotNil(t, report)
	assert.Equal(t, int32(1), calls.Load())
	assert.False(t, s.Busy())
}

// TestScheduler_OneRunInFlight verifies overlapping requests are refused.
func TestScheduler_OneRunInFlight(t *testing.T) {
	var calls atomic.Int32
	started := make(chan struct{}, 1)
	release := make(chan struct{})
	s := NewScheduler(blockingRun(&calls, started, release), 0)

	require.NoError(t, s.Trigger(context.Background()))
	<-started

	assert.True(t, s.Busy())
	assert.ErrorIs(t, s.Trigger(context.Background()), domain.ErrRunInProgress)
	_, err := s.RunOnce(context.Background())
	assert.ErrorIs(t, err, domain.ErrRunInProgress)

	close(release)
	assert.Eventually(t, func() bool { return !s.Busy() }, time.Second, 5*time.Millisecond)
	assert.Equal(t, int32(1), calls.Load())
}

func TestScheduler_StartRunsImmediatelyAndOnInterval(t *testing.T) {
	var calls atomic.Int32
	s := NewScheduler(blockingRun(&calls, nil, nil), 10*time.Millisecond)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		s.Start(ctx)
		close(done)
	}()

	assert.Eventually(t, func() bool { return calls.Load() >= 2 }, time.Second, 5*time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("scheduler did not stop")
	}
}

func TestScheduler_StartDisabledInterval(t *testing.T) {
	var calls atomic.Int32
	s := NewScheduler(blockingRun(&calls, nil, nil), 0)
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	s.Start(ctx)

	assert.Zero(t, calls.Load())
}
