package logging

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLogger_CreatesLogger(t *testing.T) {
	logger, err := NewLogger("test")
	require.NotNil(t, logger)

	if err == nil {
		assert.NotEmpty(t, logger.LogPath())
	}

	// Should never panic regardless of fallback mode
	logger.Debugf("debug %d", 1)
	logger.Infof("info %s", "x")
	logger.Warnf("warn")
	logger.Errorf("error")

	assert.NoError(t, logger.Close())
	// Second close must be a no-op
	assert.NoError(t, logger.Close())
}

func TestLoggers_SharedProcessID(t *testing.T) {
	a, _ := NewLogger("a")
	b, _ := NewLogger("b")
	defer a.Close()
	defer b.Close()

	assert.Equal(t, a.processID, b.processID)
}

func TestLogger_Writer(t *testing.T) {
	logger, _ := NewLogger("writer")
	defer logger.Close()

	assert.NotNil(t, logger.Writer())
}

func TestFormatLogEntry(t *testing.T) {
	logger, _ := NewLogger("fmt")
	defer logger.Close()

	entry := logger.formatLogEntry("INFO", "hello")
	assert.Contains(t, entry, "[fmt]")
	assert.Contains(t, entry, "[INFO]")
	assert.Contains(t, entry, "hello")
}
