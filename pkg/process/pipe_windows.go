package process

import (
	"time"

	"golang.org/x/sys/windows"
)

func pipeInit() (Handle, Handle, error) {
	var read, write windows.Handle
	if err := windows.CreatePipe(&read, &write, nil, 0); err != nil {
		return Invalid, Invalid, systemError(err)
	}
	return Handle(read), Handle(write), nil
}

func pipeNonblocking(h Handle, enable bool) error {
	mode := uint32(windows.PIPE_WAIT)
	if enable {
		mode = windows.PIPE_NOWAIT
	}
	err := windows.SetNamedPipeHandleState(windows.Handle(h), &mode, nil, nil)
	if err != nil {
		return systemError(err)
	}
	return nil
}

func pipeRead(h Handle, buf []byte) (int, error) {
	var done uint32
	err := windows.ReadFile(windows.Handle(h), buf, &done, nil)
	switch {
	case err == windows.ERROR_BROKEN_PIPE:
		return 0, errPipe("pipe closed by peer")
	case err == windows.ERROR_NO_DATA:
		return 0, errTimedout("no data available on non-blocking pipe")
	case err != nil:
		return 0, systemError(err)
	case done == 0:
		return 0, errPipe("pipe closed by peer")
	}
	return int(done), nil
}

func pipeWrite(h Handle, buf []byte) (int, error) {
	var done uint32
	err := windows.WriteFile(windows.Handle(h), buf, &done, nil)
	switch {
	case err == windows.ERROR_BROKEN_PIPE || err == windows.ERROR_NO_DATA:
		return 0, errPipe("peer closed the read end")
	case err != nil:
		return 0, systemError(err)
	case done == 0 && len(buf) > 0:
		// PIPE_NOWAIT writes report success with zero bytes when the pipe
		// is full.
		return 0, errTimedout("non-blocking pipe is full")
	}
	return int(done), nil
}

func pipeReadable(h Handle) bool {
	var available uint32
	err := windows.PeekNamedPipe(windows.Handle(h), nil, 0, nil, &available, nil)
	if err != nil {
		// A broken pipe is readable: the next read reports EOF.
		return true
	}
	return available > 0
}

// waitSlice bounds how long a single sampling round sleeps. Anonymous
// pipes are not waitable objects on Windows, so readiness is sampled with
// PeekNamedPipe between waits on the exit handles.
const waitSlice = 20 * time.Millisecond

func pipeWait(sets []pipeSet, timeout time.Duration) error {
	if !containsValidPipe(sets) {
		return errPipe("no valid pipes to wait on")
	}

	deadline := infiniteMS
	if timeout >= 0 {
		deadline = now() + timeout.Milliseconds()
	}

	exits := make([]windows.Handle, 0, len(sets))
	for i := range sets {
		if sets[i].exit.Valid() {
			exits = append(exits, windows.Handle(sets[i].exit))
		}
	}

	for {
		ready := false

		for i := range sets {
			s := &sets[i]
			if s.out.Valid() && pipeReadable(s.out) {
				s.events |= EventOut
				ready = true
			}
			if s.err.Valid() && pipeReadable(s.err) {
				s.events |= EventErr
				ready = true
			}
			if s.in.Valid() {
				// Anonymous pipes expose no writability query; stdin is
				// reported ready and the subsequent non-blocking write
				// resolves the race.
				s.events |= EventIn
				ready = true
			}
			if s.exit.Valid() {
				r, err := windows.WaitForSingleObject(windows.Handle(s.exit), 0)
				if err == nil && r == windows.WAIT_OBJECT_0 {
					s.events |= EventExit
					ready = true
				}
			}
		}

		if ready {
			return nil
		}

		remaining := waitSlice
		if deadline != infiniteMS {
			left := time.Duration(deadline-now()) * time.Millisecond
			if left <= 0 {
				return errTimedout("poll expired")
			}
			if left < remaining {
				remaining = left
			}
		}

		if len(exits) > 0 {
			ms := uint32(remaining.Milliseconds())
			if _, err := windows.WaitForMultipleObjects(exits, false, ms); err != nil {
				return systemError(err)
			}
		} else {
			time.Sleep(remaining)
		}
	}
}
