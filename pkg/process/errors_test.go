package process

import (
	"fmt"
	"testing"

	"github.com/go-errors/errors"
	"github.com/stretchr/testify/assert"
)

func TestStrerror(t *testing.T) {
	type scenario struct {
		code     ErrorCode
		expected string
	}

	scenarios := []scenario{
		{EInval, "invalid argument"},
		{EPipe, "broken pipe"},
		{ETimedout, "wait timed out"},
		{ENoMem, "out of memory"},
		{ESystem, "system error"},
		{ErrorCode(99), "unknown error"},
	}

	for _, s := range scenarios {
		assert.Equal(t, s.expected, Strerror(s.code))
	}
}

func TestHasErrorCode(t *testing.T) {
	err := errTimedout("poll expired")

	assert.True(t, HasErrorCode(err, ETimedout))
	assert.False(t, HasErrorCode(err, EPipe))
	assert.False(t, HasErrorCode(nil, ETimedout))

	// Codes survive wrapping.
	wrapped := fmt.Errorf("running command: %w", err)
	assert.True(t, HasErrorCode(wrapped, ETimedout))

	stacked := errors.Wrap(err, 0)
	assert.True(t, HasErrorCode(stacked, ETimedout))
}

func TestSystemErrorUnwraps(t *testing.T) {
	cause := fmt.Errorf("no such device")
	err := systemError(cause)

	assert.True(t, HasErrorCode(err, ESystem))
	assert.ErrorIs(t, err, cause)

	assert.NoError(t, systemError(nil))
}
