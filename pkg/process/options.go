package process

import (
	"os"
	"sort"
	"time"

	"github.com/samber/lo"
)

// EnvMode selects how the provided environment entries combine with the
// parent's environment.
type EnvMode int

const (
	// EnvExtend appends the provided entries to the parent's environment.
	EnvExtend EnvMode = iota
	// EnvReplace uses only the provided entries.
	EnvReplace
)

// EnvironmentOptions configures the child's environment variables.
type EnvironmentOptions struct {
	Mode  EnvMode
	Extra map[string]string
}

// StopKind is a stop verb executed by Stop.
type StopKind int

const (
	// StopNoop skips the slot entirely.
	StopNoop StopKind = iota
	// StopWait performs no action before the wait.
	StopWait
	// StopTerminate sends the polite termination signal before the wait.
	StopTerminate
	// StopKill sends the forceful termination signal before the wait.
	StopKill
)

// StopAction pairs a stop verb with the timeout for the wait that follows
// it.
type StopAction struct {
	Action  StopKind
	Timeout time.Duration
}

// StopActions is the ordered sequence of up to three actions executed by
// Stop. Execution is a straight sequence with early termination as soon as
// a wait returns anything other than a timeout.
type StopActions struct {
	First  StopAction
	Second StopAction
	Third  StopAction
}

// StopWaitTerminateKill waits for the deadline, then terminates, then
// kills. This is the default stop sequence applied by Destroy when the
// caller configures none.
func StopWaitTerminateKill() StopActions {
	return StopActions{
		First:  StopAction{Action: StopWait, Timeout: Deadline},
		Second: StopAction{Action: StopTerminate, Timeout: Deadline},
		Third:  StopAction{Action: StopKill, Timeout: Deadline},
	}
}

// Options configures Start.
type Options struct {
	// Environment controls the child's environment variables.
	Environment EnvironmentOptions

	// WorkingDirectory is the child's working directory. When unset the
	// child inherits the parent's.
	WorkingDirectory string

	// Redirect selects how each standard stream is wired up.
	Redirect RedirectOptions

	// Nonblocking makes the parent side of each pipe non-blocking. It only
	// applies to streams redirected with RedirectPipe.
	Nonblocking bool

	// Input is written to the child's stdin before the child starts, after
	// which stdin is closed. Only valid when stdin is redirected with
	// RedirectPipe.
	Input []byte

	// Stop is the sequence Destroy applies when the child is still
	// running. Left zeroed it defaults to StopWaitTerminateKill.
	Stop StopActions

	// Deadline bounds the child's lifetime, measured from Start. Zero or
	// Infinite means no deadline.
	Deadline time.Duration

	// Timeout is an alias that sets Deadline when Deadline itself is
	// unset.
	Timeout time.Duration
}

func parseOptions(argv []string, options *Options) error {
	if len(argv) == 0 {
		return newError(EInval, "argv must not be empty")
	}
	if argv[0] == "" {
		return newError(EInval, "argv[0] must not be empty")
	}

	if len(options.Input) > 0 && options.Redirect.In.Mode != RedirectPipe {
		return newError(EInval, "input requires stdin to be redirected with a pipe")
	}

	if options.Redirect.In.Mode == RedirectStdout ||
		options.Redirect.Out.Mode == RedirectStdout {
		return newError(EInval, "only stderr can be redirected to stdout")
	}

	if options.Deadline == 0 {
		options.Deadline = options.Timeout
	}
	if options.Deadline == 0 {
		options.Deadline = Infinite
	}
	if options.Deadline != Infinite && options.Deadline < 0 {
		return newError(EInval, "deadline must be a positive duration")
	}

	zero := StopAction{}
	if options.Stop.First == zero && options.Stop.Second == zero &&
		options.Stop.Third == zero {
		options.Stop = StopWaitTerminateKill()
	}

	return nil
}

// buildEnv assembles the child's environment block. Entries are sorted so
// spawns are deterministic.
func buildEnv(options EnvironmentOptions) []string {
	extra := lo.MapToSlice(options.Extra, func(key, value string) string {
		return key + "=" + value
	})
	sort.Strings(extra)

	if options.Mode == EnvReplace {
		return extra
	}

	return append(os.Environ(), extra...)
}
