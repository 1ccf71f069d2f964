package commands

import (
	"fmt"
	"time"

	"github.com/mgutz/str"
	"github.com/samber/lo"
	"github.com/sasha-s/go-deadlock"
	"github.com/sirupsen/logrus"

	"github.com/christophe-duc/procio/pkg/config"
	"github.com/christophe-duc/procio/pkg/process"
	"github.com/christophe-duc/procio/pkg/sink"
)

// Runner runs commands given as plain strings, applying the configured
// stop sequence and deadline to each. It keeps track of every live
// process it started so CleanUp can destroy stragglers.
type Runner struct {
	Log    *logrus.Entry
	Config *config.RunnerConfig

	mutex   deadlock.Mutex
	running []*process.Process
}

// NewRunner command runner
func NewRunner(log *logrus.Entry, cfg *config.RunnerConfig) *Runner {
	return &Runner{
		Log:    log,
		Config: cfg,
	}
}

// RunCommand runs a command and just returns the error
func (r *Runner) RunCommand(command string) error {
	_, err := r.RunCommandWithOutput(command)
	return err
}

// RunCommandWithOutput runs a command and returns its stdout. A non-zero
// exit turns into an error built from the command's stderr, because
// errors like 'exit status 1' are not very useful.
func (r *Runner) RunCommandWithOutput(command string) (string, error) {
	return r.runCommand(command, nil)
}

// RunCommandWithInput is RunCommandWithOutput with the given input
// prewritten to the command's stdin.
func (r *Runner) RunCommandWithInput(command string, input string) (string, error) {
	return r.runCommand(command, []byte(input))
}

func (r *Runner) runCommand(command string, input []byte) (string, error) {
	argv := str.ToArgv(command)

	before := time.Now()
	stdout, stderr, code, err := r.run(argv, input)
	r.Log.Warn(fmt.Sprintf("'%s': %s", command, time.Since(before)))

	if err != nil {
		return stdout, WrapError(err)
	}
	if code != 0 {
		if stderr == "" {
			return stdout, fmt.Errorf("'%s' exited with status %d", command, code)
		}
		return stdout, fmt.Errorf("%s", stderr)
	}

	return stdout, nil
}

func (r *Runner) run(argv []string, input []byte) (string, string, int, error) {
	options, err := r.options(input)
	if err != nil {
		return "", "", 0, err
	}

	p := process.New()
	if err := p.Start(argv, options); err != nil {
		return "", "", 0, err
	}

	r.track(p)
	defer func() {
		r.untrack(p)
		p.Destroy()
	}()

	if len(input) == 0 {
		// Close stdin so commands that read it to EOF can finish.
		if err := p.Close(process.StreamIn); err != nil {
			return "", "", 0, err
		}
	}

	var stdout, stderr string
	if err := sink.Drain(p, sink.NewStringSink(&stdout), sink.NewStringSink(&stderr)); err != nil {
		return stdout, stderr, 0, err
	}

	code, err := p.Wait(process.Deadline)
	if err != nil {
		return stdout, stderr, 0, err
	}

	return stdout, stderr, code, nil
}

func (r *Runner) options(input []byte) (process.Options, error) {
	stop, err := r.Config.ProcessStop()
	if err != nil {
		return process.Options{}, err
	}

	return process.Options{
		Environment: process.EnvironmentOptions{
			Mode:  process.EnvExtend,
			Extra: r.Config.Environment,
		},
		WorkingDirectory: r.Config.WorkingDirectory,
		Nonblocking:      r.Config.Nonblocking,
		Input:            input,
		Stop:             stop,
		Deadline:         time.Duration(r.Config.Timeout),
	}, nil
}

func (r *Runner) track(p *process.Process) {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	r.running = append(r.running, p)
}

func (r *Runner) untrack(p *process.Process) {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	r.running = lo.Without(r.running, p)
}

// CleanUp destroys every process the runner still has in flight. Each
// destroy applies the configured stop sequence, so a stuck child is
// terminated and then killed rather than orphaned.
func (r *Runner) CleanUp() {
	r.mutex.Lock()
	running := r.running
	r.running = nil
	r.mutex.Unlock()

	for _, p := range running {
		p.Destroy()
	}
}
