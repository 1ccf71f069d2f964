package process

import "time"

var epoch = time.Now()

// now returns a monotonic millisecond timestamp. Only differences between
// two readings are meaningful.
func now() int64 {
	return time.Since(epoch).Milliseconds()
}

const infiniteMS = int64(-1)

// expiry reconciles a per-call timeout with an absolute deadline. It
// returns Infinite only when both are infinite; otherwise the smaller of
// the timeout and the time remaining until the deadline, clamped at zero
// once the deadline has passed.
func expiry(timeout time.Duration, deadline int64) time.Duration {
	if timeout == Infinite && deadline == infiniteMS {
		return Infinite
	}

	if deadline == infiniteMS {
		return timeout
	}

	remaining := deadline - now()
	if remaining <= 0 {
		return 0
	}

	left := time.Duration(remaining) * time.Millisecond
	if timeout == Infinite || left < timeout {
		return left
	}

	return timeout
}
