package commands

import (
	"io"

	"github.com/sirupsen/logrus"

	"github.com/christophe-duc/procio/pkg/config"
)

// This file exports dummy constructors for use by tests in other packages

// NewDummyRunner creates a new dummy Runner for testing
func NewDummyRunner() *Runner {
	return NewRunner(NewDummyLog(), NewDummyRunnerConfig())
}

// NewDummyRunnerConfig creates a new dummy RunnerConfig for testing
func NewDummyRunnerConfig() *config.RunnerConfig {
	cfg := config.GetDefaultConfig()
	return &cfg
}

// NewDummyLog creates a new dummy Log for testing
func NewDummyLog() *logrus.Entry {
	log := logrus.New()
	log.Out = io.Discard
	return log.WithField("test", "test")
}
