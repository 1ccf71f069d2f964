package process

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestExpiry(t *testing.T) {
	assert.Equal(t, Infinite, expiry(Infinite, infiniteMS))
	assert.Equal(t, time.Second, expiry(time.Second, infiniteMS))

	// An expired deadline clamps to zero.
	assert.Equal(t, time.Duration(0), expiry(Infinite, now()-10))
	assert.Equal(t, time.Duration(0), expiry(time.Second, now()-10))

	// The smaller of timeout and remaining wins.
	deadline := now() + 10_000
	assert.Equal(t, time.Second, expiry(time.Second, deadline))
	assert.LessOrEqual(t, expiry(time.Hour, deadline), 10*time.Second)
}

func TestExpiryMonotone(t *testing.T) {
	deadline := now() + 500

	first := expiry(Infinite, deadline)
	time.Sleep(10 * time.Millisecond)
	second := expiry(Infinite, deadline)

	assert.LessOrEqual(t, second, first)
	assert.Greater(t, second, time.Duration(0))
}
