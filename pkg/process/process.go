// Package process launches, communicates with, and terminates child
// processes behind a uniform interface over the divergent primitives of
// POSIX and Windows. The parent talks to the child over anonymous pipes
// wired to the child's standard streams, waits for I/O readiness, child
// exit, and deadlines in a single poll, and stops stragglers with a
// configurable wait/terminate/kill sequence.
package process

import "time"

const (
	// StatusNotStarted means Start has not been called yet.
	StatusNotStarted = -1
	// StatusInProgress means the child is running.
	StatusInProgress = -2
	// StatusInChild is reserved for fork-style platforms where Start
	// returns inside the child. This implementation never produces it.
	StatusInChild = -3
)

const sigOffset = 128

const (
	// SignalKill is the exit status reported when the child was killed
	// forcefully.
	SignalKill = sigOffset + 9
	// SignalTerm is the exit status reported when the child exited from
	// the polite termination signal.
	SignalTerm = sigOffset + 15
)

const (
	// Infinite disables a timeout or deadline.
	Infinite = time.Duration(-1)
	// Deadline makes a wait use the deadline configured at Start.
	Deadline = time.Duration(-2)
)

type stdioHandles struct {
	in   Handle
	out  Handle
	err  Handle
	exit Handle
}

// Process supervises a single child process from before it is spawned
// until it has been reaped and every handle released. A Process must be
// used by at most one goroutine at a time; callers serialise externally.
type Process struct {
	handle   procHandle
	pipes    stdioHandles
	status   int
	stop     StopActions
	deadline int64
}

// New returns a Process ready to be started.
func New() *Process {
	return &Process{
		handle: procInvalid,
		pipes: stdioHandles{
			in:   Invalid,
			out:  Invalid,
			err:  Invalid,
			exit: Invalid,
		},
		status:   StatusNotStarted,
		deadline: infiniteMS,
	}
}

// Status returns the current status: StatusNotStarted, StatusInProgress,
// or the child's exit code once it has been reaped.
func (p *Process) Status() int {
	if p == nil {
		return StatusNotStarted
	}
	return p.status
}

// Start spawns argv[0] with the given options. On success the three
// child-side endpoints have been handed to the child and closed in the
// parent; only the parent-side endpoints remain reachable through p. On
// failure every allocation is rolled back and the process can be started
// again.
func (p *Process) Start(argv []string, options Options) error {
	if p == nil {
		return newError(EInval, "process is nil")
	}
	if p.status != StatusNotStarted {
		return newError(EInval, "process has already been started")
	}

	if err := parseOptions(argv, &options); err != nil {
		return err
	}

	child := stdioHandles{in: Invalid, out: Invalid, err: Invalid, exit: Invalid}

	err := func() error {
		var err error

		p.pipes.in, child.in, err = redirectInit(
			StreamIn, options.Redirect.In, options.Nonblocking, Invalid)
		if err != nil {
			return err
		}

		p.pipes.out, child.out, err = redirectInit(
			StreamOut, options.Redirect.Out, options.Nonblocking, Invalid)
		if err != nil {
			return err
		}

		p.pipes.err, child.err, err = redirectInit(
			StreamErr, options.Redirect.Err, options.Nonblocking, child.out)
		if err != nil {
			return err
		}

		p.pipes.exit, child.exit, err = pipeInit()
		if err != nil {
			return err
		}

		if err = p.setupInput(options.Input); err != nil {
			return err
		}

		env := buildEnv(options.Environment)
		p.handle, err = spawn(argv, env, options.WorkingDirectory, child)
		if err != nil {
			return err
		}

		p.pipes.exit, err = exitNotifier(p.handle, p.pipes.exit)
		return err
	}()

	// The child endpoints have either been duplicated onto the child's
	// standard streams or are no longer needed. Close them either way.
	redirectDestroy(child.in, options.Redirect.In.Mode)
	redirectDestroy(child.out, options.Redirect.Out.Mode)
	redirectDestroy(child.err, options.Redirect.Err.Mode)
	child.exit.Destroy()

	if err != nil {
		p.handle = procDestroy(p.handle)
		p.pipes.in = p.pipes.in.Destroy()
		p.pipes.out = p.pipes.out.Destroy()
		p.pipes.err = p.pipes.err.Destroy()
		p.pipes.exit = p.pipes.exit.Destroy()
		return err
	}

	p.stop = options.Stop
	if options.Deadline != Infinite {
		p.deadline = now() + options.Deadline.Milliseconds()
	}
	p.status = StatusInProgress

	return nil
}

// setupInput prewrites the configured input into the child's stdin pipe
// and closes it, so the child sees the input followed by EOF. The
// endpoint is made non-blocking first so a pipe smaller than the input
// fails with ETimedout instead of blocking forever: the child does not
// exist yet, so nothing can drain the pipe.
func (p *Process) setupInput(input []byte) error {
	if len(input) == 0 {
		return nil
	}

	if err := pipeNonblocking(p.pipes.in, true); err != nil {
		return err
	}

	written := 0
	for written < len(input) {
		n, err := pipeWrite(p.pipes.in, input[written:])
		if err != nil {
			return err
		}
		written += n
	}

	p.pipes.in = p.pipes.in.Destroy()

	return nil
}

// Read reads from the child's stdout or stderr. It returns EPipe on EOF
// (closing that endpoint so later reads keep returning EPipe) and
// ETimedout when the endpoint is non-blocking and idle, or when the
// process deadline expires before any bytes arrive.
func (p *Process) Read(stream Stream, buf []byte) (int, error) {
	if p == nil {
		return 0, newError(EInval, "process is nil")
	}
	if stream != StreamOut && stream != StreamErr {
		return 0, newError(EInval, "only stdout and stderr can be read")
	}

	pipe := &p.pipes.out
	event := EventOut
	if stream == StreamErr {
		pipe = &p.pipes.err
		event = EventErr
	}

	if !pipe.Valid() {
		return 0, errPipe("stream is closed")
	}

	if p.deadline != infiniteMS {
		if remaining := expiry(Infinite, p.deadline); remaining > 0 {
			set := invalidPipeSet()
			if event == EventOut {
				set.out = *pipe
			} else {
				set.err = *pipe
			}
			sets := []pipeSet{set}
			if err := pipeWait(sets, remaining); err != nil {
				return 0, err
			}
		}
		// Once the deadline has passed, reads fall back to plain blocking
		// I/O so EOF from an exiting child is still observed.
	}

	n, err := pipeRead(*pipe, buf)
	if HasErrorCode(err, EPipe) {
		*pipe = pipe.Destroy()
	}

	return n, err
}

// Write writes to the child's stdin. A nil or empty buffer is a permitted
// no-op. On EPipe the stdin endpoint is closed.
func (p *Process) Write(buf []byte) (int, error) {
	if p == nil {
		return 0, newError(EInval, "process is nil")
	}

	if len(buf) == 0 {
		return 0, nil
	}

	if !p.pipes.in.Valid() {
		return 0, errPipe("stdin is closed")
	}

	n, err := pipeWrite(p.pipes.in, buf)
	if HasErrorCode(err, EPipe) {
		p.pipes.in = p.pipes.in.Destroy()
	}

	return n, err
}

// Close closes the parent side of the selected stream. Closing an
// already-closed stream is a no-op.
func (p *Process) Close(stream Stream) error {
	if p == nil {
		return newError(EInval, "process is nil")
	}

	switch stream {
	case StreamIn:
		p.pipes.in = p.pipes.in.Destroy()
	case StreamOut:
		p.pipes.out = p.pipes.out.Destroy()
	case StreamErr:
		p.pipes.err = p.pipes.err.Destroy()
	default:
		return newError(EInval, "unknown stream %d", stream)
	}

	return nil
}

// Wait blocks until the child exits or the timeout expires. Once the
// child has exited its exit code is stored, so subsequent waits return it
// immediately. Pass Deadline to wait with the deadline configured at
// Start; if that deadline has already passed the wait degenerates to a
// status check.
func (p *Process) Wait(timeout time.Duration) (int, error) {
	if p == nil {
		return 0, newError(EInval, "process is nil")
	}
	if p.status == StatusNotStarted {
		return 0, newError(EInval, "process has not been started")
	}

	if p.status >= 0 {
		return p.status, nil
	}

	if timeout == Deadline {
		timeout = expiry(Infinite, p.deadline)
	}

	set := invalidPipeSet()
	set.exit = p.pipes.exit
	sets := []pipeSet{set}

	if err := pipeWait(sets, timeout); err != nil {
		return 0, err
	}

	code, err := procWait(p.handle)
	if err != nil {
		return 0, err
	}

	p.pipes.exit = p.pipes.exit.Destroy()
	p.status = code

	return code, nil
}

// Terminate sends the polite termination signal (SIGTERM on POSIX, a
// console control event on Windows). A no-op once the child has exited.
func (p *Process) Terminate() error {
	if p == nil {
		return newError(EInval, "process is nil")
	}
	if p.status == StatusNotStarted {
		return newError(EInval, "process has not been started")
	}

	if p.status >= 0 {
		return nil
	}

	return procTerminate(p.handle)
}

// Kill sends the forceful termination signal (SIGKILL on POSIX,
// TerminateProcess on Windows). A no-op once the child has exited.
func (p *Process) Kill() error {
	if p == nil {
		return newError(EInval, "process is nil")
	}
	if p.status == StatusNotStarted {
		return newError(EInval, "process has not been started")
	}

	if p.status >= 0 {
		return nil
	}

	return procKill(p.handle)
}

// Stop executes the given actions in order: perform the verb, then wait
// with the slot's timeout. The sequence breaks as soon as a wait returns
// anything other than ETimedout, which includes the child exiting. The
// final wait's result is returned.
func (p *Process) Stop(stop StopActions) (int, error) {
	if p == nil {
		return 0, newError(EInval, "process is nil")
	}
	if p.status == StatusNotStarted {
		return 0, newError(EInval, "process has not been started")
	}

	actions := []StopAction{stop.First, stop.Second, stop.Third}

	var code int
	var err error

	for _, action := range actions {
		switch action.Action {
		case StopNoop:
			continue
		case StopWait:
			// Nothing to do before the wait.
		case StopTerminate:
			if err = p.Terminate(); err != nil {
				return 0, err
			}
		case StopKill:
			if err = p.Kill(); err != nil {
				return 0, err
			}
		default:
			return 0, newError(EInval, "unknown stop action %d", action.Action)
		}

		code, err = p.Wait(action.Timeout)
		if !HasErrorCode(err, ETimedout) {
			break
		}
	}

	return code, err
}

// Destroy releases every resource the process owns, stopping the child
// first with the stop actions configured at Start if it is still running.
// Errors encountered while stopping are swallowed; there is no further
// action to take. Destroy is idempotent and safe on a nil process.
func (p *Process) Destroy() {
	if p == nil {
		return
	}

	if p.status == StatusInProgress {
		_, _ = p.Stop(p.stop)
	}

	p.handle = procDestroy(p.handle)
	p.pipes.in = p.pipes.in.Destroy()
	p.pipes.out = p.pipes.out.Destroy()
	p.pipes.err = p.pipes.err.Destroy()
	p.pipes.exit = p.pipes.exit.Destroy()
}
