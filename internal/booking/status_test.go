package booking

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseStatus(t *testing.T) {
	for _, s := range []Status{StatusPending, StatusConfirmed, StatusCancelled, StatusCompleted} {
		got, err := ParseStatus(string(s))
		require.NoError(t, err)
		assert.Equal(t, s, got)
	}

	_, err := ParseStatus("pending")
	assert.ErrorIs(t, err, ErrInvalidInput, "lower case is rejected")
	_, err = ParseStatus("UNKNOWN")
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestStatusTransitions(t *testing.T) {
	assert.True(t, StatusPending.CanConfirm())
	assert.False(t, StatusConfirmed.CanConfirm())
	assert.False(t, StatusCancelled.CanConfirm())
	assert.False(t, StatusCompleted.CanConfirm())

	assert.True(t, StatusPending.CanCancel())
	assert.True(t, StatusConfirmed.CanCancel())
	assert.False(t, StatusCancelled.CanCancel())
	assert.False(t, StatusCompleted.CanCancel())
}

func TestStatusActive(t *testing.T) {
	assert.True(t, StatusPending.Active())
	assert.True(t, StatusConfirmed.Active())
	assert.True(t, StatusCompleted.Active())
	assert.False(t, StatusCancelled.Active(), "cancelled reservations free the slot")
}
