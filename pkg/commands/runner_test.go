//go:build !windows

package commands

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/christophe-duc/procio/pkg/config"
	"github.com/christophe-duc/procio/pkg/process"
)

// TestRunnerRunCommandWithOutput is a function.
func TestRunnerRunCommandWithOutput(t *testing.T) {
	type scenario struct {
		command string
		test    func(string, error)
	}

	scenarios := []scenario{
		{
			"echo 123",
			func(output string, err error) {
				assert.NoError(t, err)
				assert.EqualValues(t, "123\n", output)
			},
		},
		{
			"definitely-not-a-real-command-procio",
			func(output string, err error) {
				assert.Error(t, err)
			},
		},
		{
			"false",
			func(output string, err error) {
				assert.Error(t, err)
			},
		},
	}

	for _, s := range scenarios {
		s.test(NewDummyRunner().RunCommandWithOutput(s.command))
	}
}

// TestRunnerRunCommand is a function.
func TestRunnerRunCommand(t *testing.T) {
	assert.NoError(t, NewDummyRunner().RunCommand("true"))
	assert.Error(t, NewDummyRunner().RunCommand("false"))
}

func TestRunnerRunCommandWithInput(t *testing.T) {
	output, err := NewDummyRunner().RunCommandWithInput("cat", "hello")

	assert.NoError(t, err)
	assert.EqualValues(t, "hello", output)
}

func TestRunnerTimeout(t *testing.T) {
	cfg := NewDummyRunnerConfig()
	cfg.Timeout = config.Duration(100 * time.Millisecond)

	runner := NewRunner(NewDummyLog(), cfg)

	before := time.Now()
	_, err := runner.RunCommandWithOutput("sleep 10")

	assert.Error(t, err)
	assert.True(t, process.HasErrorCode(err, process.ETimedout), "got %v", err)
	assert.Less(t, time.Since(before), 5*time.Second)
}

func TestRunnerCleanUp(t *testing.T) {
	runner := NewDummyRunner()

	// CleanUp with nothing in flight is a no-op.
	runner.CleanUp()

	assert.NoError(t, runner.RunCommand("true"))

	// Every finished command untracks itself.
	runner.mutex.Lock()
	assert.Empty(t, runner.running)
	runner.mutex.Unlock()
}
