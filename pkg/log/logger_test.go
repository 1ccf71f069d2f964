package log

import (
	"io"
	"os"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

func TestNewLoggerProduction(t *testing.T) {
	entry := NewLogger(false)

	assert.Equal(t, io.Discard, entry.Logger.Out)
	assert.Equal(t, logrus.ErrorLevel, entry.Logger.GetLevel())
}

func TestNewLoggerDevelopment(t *testing.T) {
	entry := NewLogger(true)

	assert.Equal(t, os.Stderr, entry.Logger.Out)
	assert.Equal(t, "procio", entry.Data["component"])
}
