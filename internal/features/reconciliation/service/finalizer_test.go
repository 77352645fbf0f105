package service

import (
	"context"
	"errors"
	"testing"

	"dropship-reconciler/internal/features/reconciliation/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFinalize_NoUpdatesIsNoop(t *testing.T) {
	bulk := &fakeBulk{}

	fired, err := NewShipmentFinalizer().Finalize(context.Background(), false, bulk)

	require.NoError(t, err)
	assert.False(t, fired)
	assert.Empty(t, bulk.calls)
}

func TestFinalize_NoUpdatesWithoutControl(t *testing.T) {
	fired, err := NewShipmentFinalizer().Finalize(context.Background(), false, nil)

	require.NoError(t, err)
	assert.False(t, fired)
}

// TestFinalize_ActivatesAndConfirmsTwice verifies the dialog sequence.
func TestFinalize_ActivatesAndConfirmsTwice(t *testing.T) {
	bulk := &fakeBulk{}

	fired, err := NewShipmentFinalizer().Finalize(context.Background(), true, bulk)

	require.NoError(t, err)
	assert.True(t, fired)
	assert.Equal(t, []string{"activate", "confirm", "confirm"}, bulk.calls)
}

func TestFinalize_MissingControl(t *testing.T) {
	fired, err := NewShipmentFinalizer().Finalize(context.Background(), true, nil)

	assert.False(t, fired)
	assert.ErrorIs(t, err, domain.ErrNoBulkControl)
}

func TestFinalize_ActivateError(t *testing.T) {
	bulk := &fakeBulk{activateErr: errors.New("button not found")}

	fired, err := NewShipmentFinalizer().Finalize(context.Background(), true, bulk)

	require.Error(t, err)
	assert.False(t, fired)
	assert.Equal(t, []string{"activate"}, bulk.calls)
}

func TestFinalize_SecondConfirmError(t *testing.T) {
	bulk := &fakeBulk{confirmErrs: []error{nil, context.DeadlineExceeded}}

	fired, err := NewShipmentFinalizer().Finalize(context.Background(), true, bulk)

	assert.False(t, fired)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Contains(t, err.Error(), "dialog 2 of 2")
}
