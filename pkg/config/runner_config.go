// Package config handles the user-configurable defaults applied by the
// commands package. The fields here are all in PascalCase but in your
// actual config.yml they'll be in camelCase. User values are merged over
// the defaults, so a partial config file only overrides what it names.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/OpenPeeDeeP/xdg"
	"github.com/goccy/go-yaml"
	"github.com/imdario/mergo"
	"github.com/spkg/bom"

	"github.com/christophe-duc/procio/pkg/process"
)

// Duration is a time.Duration that reads from YAML as a Go duration
// string like "500ms" or "10s".
type Duration time.Duration

// UnmarshalYAML is a function
func (d *Duration) UnmarshalYAML(b []byte) error {
	var raw string
	if err := yaml.Unmarshal(b, &raw); err != nil {
		return err
	}

	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return err
	}

	*d = Duration(parsed)
	return nil
}

// MarshalYAML is a function
func (d Duration) MarshalYAML() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// RunnerConfig holds the defaults the commands package applies to every
// command it runs.
type RunnerConfig struct {
	// Timeout bounds how long a command may run before its deadline
	// expires. Zero means no deadline.
	Timeout Duration `yaml:"timeout,omitempty"`

	// Stop is the sequence applied when a still-running command is
	// destroyed
	Stop StopConfig `yaml:"stop,omitempty"`

	// Nonblocking makes the parent side of the command's pipes
	// non-blocking
	Nonblocking bool `yaml:"nonblocking,omitempty"`

	// Environment entries added to every command's environment
	Environment map[string]string `yaml:"environment,omitempty"`

	// WorkingDirectory is where commands run. When unset they inherit the
	// parent's working directory.
	WorkingDirectory string `yaml:"workingDirectory,omitempty"`
}

// StopConfig spells out the three stop slots. Valid actions are noop,
// wait, terminate and kill.
type StopConfig struct {
	First  StopActionConfig `yaml:"first,omitempty"`
	Second StopActionConfig `yaml:"second,omitempty"`
	Third  StopActionConfig `yaml:"third,omitempty"`
}

// StopActionConfig is a single stop slot.
type StopActionConfig struct {
	Action  string   `yaml:"action,omitempty"`
	Timeout Duration `yaml:"timeout,omitempty"`
}

// GetDefaultConfig returns the runner's default configuration: ask nicely,
// then insist, then give up waiting. NOTE (to contributors, not users):
// do not default a boolean to true, because false is the boolean zero
// value and this will be ignored when merging the user's config.
func GetDefaultConfig() RunnerConfig {
	return RunnerConfig{
		Stop: StopConfig{
			First:  StopActionConfig{Action: "terminate", Timeout: Duration(10 * time.Second)},
			Second: StopActionConfig{Action: "kill", Timeout: Duration(2 * time.Second)},
			Third:  StopActionConfig{Action: "noop"},
		},
	}
}

// NewRunnerConfig loads the user's config file from configDir (when empty,
// taken from $CONFIG_DIR, else resolved through XDG) and merges it over
// the defaults.
func NewRunnerConfig(name string, configDir string) (*RunnerConfig, error) {
	if configDir == "" {
		configDir = findConfigDir(name)
	}

	userConfig, err := loadUserConfig(filepath.Join(configDir, "config.yml"))
	if err != nil {
		return nil, err
	}

	defaults := GetDefaultConfig()
	if userConfig == nil {
		return &defaults, nil
	}

	if err := mergo.Merge(userConfig, defaults); err != nil {
		return nil, err
	}

	return userConfig, nil
}

func findConfigDir(name string) string {
	envConfigDir := os.Getenv("CONFIG_DIR")
	if envConfigDir != "" {
		return envConfigDir
	}

	return xdg.New("", name).ConfigHome()
}

func loadUserConfig(fileName string) (*RunnerConfig, error) {
	content, err := os.ReadFile(fileName)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	config := &RunnerConfig{}
	if err := yaml.Unmarshal(bom.Clean(content), config); err != nil {
		return nil, err
	}

	return config, nil
}

// ProcessStop translates the configured stop slots into the process
// package's representation.
func (c *RunnerConfig) ProcessStop() (process.StopActions, error) {
	first, err := parseStopAction(c.Stop.First)
	if err != nil {
		return process.StopActions{}, err
	}
	second, err := parseStopAction(c.Stop.Second)
	if err != nil {
		return process.StopActions{}, err
	}
	third, err := parseStopAction(c.Stop.Third)
	if err != nil {
		return process.StopActions{}, err
	}

	return process.StopActions{First: first, Second: second, Third: third}, nil
}

func parseStopAction(action StopActionConfig) (process.StopAction, error) {
	kind, ok := map[string]process.StopKind{
		"":          process.StopNoop,
		"noop":      process.StopNoop,
		"wait":      process.StopWait,
		"terminate": process.StopTerminate,
		"kill":      process.StopKill,
	}[action.Action]
	if !ok {
		return process.StopAction{}, fmt.Errorf("unknown stop action '%s'", action.Action)
	}

	return process.StopAction{
		Action:  kind,
		Timeout: time.Duration(action.Timeout),
	}, nil
}
