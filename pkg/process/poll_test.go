package process

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPollReadiness(t *testing.T) {
	p := New()
	defer p.Destroy()

	options := helperOptions()
	options.Input = []byte("ping")

	err := p.Start(helperArgv("io", "stdout"), options)
	assert.NoError(t, err)

	sources := []EventSource{{Process: p, Interests: EventOut | EventExit}}

	n, err := Poll(sources, Infinite)
	assert.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.NotZero(t, sources[0].Events&(EventOut|EventExit))
}

func TestPollDeadline(t *testing.T) {
	fast := New()
	defer fast.Destroy()
	slow := New()
	defer slow.Destroy()

	fastOptions := helperOptions()
	fastOptions.Deadline = 50 * time.Millisecond
	err := fast.Start(helperArgv("sleep", "1h"), fastOptions)
	assert.NoError(t, err)

	err = slow.Start(helperArgv("slowwrite", "300ms"), helperOptions())
	assert.NoError(t, err)

	sources := []EventSource{
		{Process: fast, Interests: EventExit},
		{Process: slow, Interests: EventOut},
	}

	before := time.Now()
	n, err := Poll(sources, Infinite)

	assert.NoError(t, err)
	assert.Equal(t, 0, n)
	assert.Equal(t, EventDeadline, sources[0].Events)
	assert.Zero(t, sources[1].Events)
	assert.Less(t, time.Since(before), 250*time.Millisecond)
}

func TestPollExpiredDeadlineReturnsImmediately(t *testing.T) {
	p := New()
	defer p.Destroy()

	options := helperOptions()
	options.Deadline = 20 * time.Millisecond

	err := p.Start(helperArgv("sleep", "1h"), options)
	assert.NoError(t, err)

	time.Sleep(50 * time.Millisecond)

	sources := []EventSource{{Process: p, Interests: EventOut}}

	before := time.Now()
	n, err := Poll(sources, Infinite)

	assert.NoError(t, err)
	assert.Equal(t, 0, n)
	assert.Equal(t, EventDeadline, sources[0].Events)
	assert.Less(t, time.Since(before), 20*time.Millisecond)
}

func TestPollTimeout(t *testing.T) {
	p := New()
	defer p.Destroy()

	err := p.Start(helperArgv("sleep", "1h"), helperOptions())
	assert.NoError(t, err)

	sources := []EventSource{{Process: p, Interests: EventOut | EventExit}}

	_, err = Poll(sources, 20*time.Millisecond)
	assert.True(t, HasErrorCode(err, ETimedout), "got %v", err)
}

func TestPollNoValidEndpoints(t *testing.T) {
	p := New()
	defer p.Destroy()

	err := p.Start(helperArgv("sleep", "1h"), helperOptions())
	assert.NoError(t, err)

	// No interests means no endpoints to wait on.
	sources := []EventSource{{Process: p, Interests: 0}}
	_, err = Poll(sources, Infinite)
	assert.True(t, HasErrorCode(err, EPipe), "got %v", err)

	// Same when the requested endpoints have been closed.
	assert.NoError(t, p.Close(StreamOut))
	assert.NoError(t, p.Close(StreamErr))

	sources = []EventSource{{Process: p, Interests: EventOut | EventErr}}
	_, err = Poll(sources, Infinite)
	assert.True(t, HasErrorCode(err, EPipe), "got %v", err)
}

func TestPollValidation(t *testing.T) {
	_, err := Poll(nil, Infinite)
	assert.True(t, HasErrorCode(err, EInval))

	_, err = Poll([]EventSource{{Process: nil}}, Infinite)
	assert.True(t, HasErrorCode(err, EInval))
}
