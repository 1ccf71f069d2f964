//go:build !windows

package process

import (
	"time"

	"golang.org/x/sys/unix"
)

// pipeInit creates an anonymous byte pipe. Both ends are close-on-exec;
// the spawn adapter's dup onto the child's standard streams clears the
// flag on the copies the child receives.
func pipeInit() (Handle, Handle, error) {
	var fds [2]int
	if err := unix.Pipe2(fds[:], unix.O_CLOEXEC); err != nil {
		return Invalid, Invalid, systemError(err)
	}
	return Handle(fds[0]), Handle(fds[1]), nil
}

func pipeNonblocking(h Handle, enable bool) error {
	if err := unix.SetNonblock(int(h), enable); err != nil {
		return systemError(err)
	}
	return nil
}

func pipeRead(h Handle, buf []byte) (int, error) {
	for {
		n, err := unix.Read(int(h), buf)
		switch {
		case err == unix.EINTR:
			continue
		case err == unix.EAGAIN:
			return 0, errTimedout("no data available on non-blocking pipe")
		case err != nil:
			return 0, systemError(err)
		case n == 0:
			return 0, errPipe("pipe closed by peer")
		}
		return n, nil
	}
}

func pipeWrite(h Handle, buf []byte) (int, error) {
	for {
		n, err := unix.Write(int(h), buf)
		switch {
		case err == unix.EINTR:
			continue
		case err == unix.EAGAIN:
			return 0, errTimedout("non-blocking pipe is full")
		case err == unix.EPIPE:
			return 0, errPipe("peer closed the read end")
		case err != nil:
			return 0, systemError(err)
		}
		return n, nil
	}
}

type pollEntry struct {
	set   int
	event Event
}

// pipeWait blocks until at least one valid endpoint in one of the sets is
// ready, writing satisfied conditions into each set's events field. The
// stdin endpoint waits for writability; the others for readability.
// Returns ETimedout when the timeout expires and EPipe when no set holds a
// valid endpoint.
func pipeWait(sets []pipeSet, timeout time.Duration) error {
	fds := make([]unix.PollFd, 0, len(sets)*4)
	entries := make([]pollEntry, 0, len(sets)*4)

	add := func(i int, h Handle, event Event, flags int16) {
		if !h.Valid() {
			return
		}
		fds = append(fds, unix.PollFd{Fd: int32(h), Events: flags})
		entries = append(entries, pollEntry{set: i, event: event})
	}

	for i := range sets {
		add(i, sets[i].in, EventIn, unix.POLLOUT)
		add(i, sets[i].out, EventOut, unix.POLLIN)
		add(i, sets[i].err, EventErr, unix.POLLIN)
		add(i, sets[i].exit, EventExit, unix.POLLIN)
	}

	if len(fds) == 0 {
		return errPipe("no valid pipes to wait on")
	}

	deadline := infiniteMS
	if timeout >= 0 {
		deadline = now() + timeout.Milliseconds()
	}

	for {
		ms := -1
		if deadline != infiniteMS {
			if remaining := deadline - now(); remaining > 0 {
				ms = int(remaining)
			} else {
				ms = 0
			}
		}

		n, err := unix.Poll(fds, ms)
		if err == unix.EINTR {
			continue
		}
		if err != nil {
			return systemError(err)
		}
		if n == 0 {
			return errTimedout("poll expired")
		}
		break
	}

	for j := range fds {
		if fds[j].Revents == 0 {
			continue
		}
		// POLLHUP and POLLERR count as readiness so the subsequent read
		// can observe EOF or the failure.
		sets[entries[j].set].events |= entries[j].event
	}

	return nil
}
