package logging

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupTestDir points the package at a temporary log directory and resets global state
func setupTestDir(t *testing.T) {
	t.Helper()

	tempDir := t.TempDir()

	origLogDir := logDir
	origInitErr := initErr
	origRunID := runID

	logDir = tempDir
	initErr = nil
	initOnce = sync.Once{}
	runID = ""
	runIDOnce = sync.Once{}

	t.Cleanup(func() {
		logDir = origLogDir
		initErr = origInitErr
		initOnce = sync.Once{}
		runID = origRunID
		runIDOnce = sync.Once{}
	})
}

func readLog(t *testing.T, l *Logger) string {
	t.Helper()

	content, err := os.ReadFile(l.LogPath())
	require.NoError(t, err)
	return string(content)
}

func TestNewLogger(t *testing.T) {
	setupTestDir(t)

	logger, err := NewLogger("registry")
	require.NoError(t, err)
	defer logger.Close()

	assert.Equal(t, "registry", logger.component)
	assert.NotEmpty(t, logger.RunID())
	assert.FileExists(t, logger.LogPath())
	assert.True(t, strings.HasSuffix(filepath.Base(logger.LogPath()), "-functest.log"))
}

func TestLoggerFormatting(t *testing.T) {
	setupTestDir(t)

	logger, err := NewLogger("test")
	require.NoError(t, err)
	defer logger.Close()

	logger.Debugf("Debug message")
	logger.Infof("Info message %d", 123)
	logger.Warnf("Warning message")
	logger.Errorf("Error message")

	content := readLog(t, logger)
	for _, pattern := range []string{
		"[test] [DEBUG] Debug message",
		"[test] [INFO] Info message 123",
		"[test] [WARN] Warning message",
		"[test] [ERROR] Error message",
	} {
		assert.Contains(t, content, pattern)
	}
}

func TestMultipleComponentsShareRunFile(t *testing.T) {
	setupTestDir(t)

	logger1, err := NewLogger("extension")
	require.NoError(t, err)
	defer logger1.Close()

	logger2, err := NewLogger("drivers")
	require.NoError(t, err)
	defer logger2.Close()

	assert.Equal(t, logger1.RunID(), logger2.RunID())
	assert.Equal(t, logger1.LogPath(), logger2.LogPath())

	logger1.Infof("from extension")
	logger2.Infof("from drivers")

	content := readLog(t, logger1)
	assert.Contains(t, content, "[extension]")
	assert.Contains(t, content, "[drivers]")
}

func TestWith(t *testing.T) {
	setupTestDir(t)

	logger, err := NewLogger("drivers")
	require.NoError(t, err)
	defer logger.Close()

	chrome := logger.With("chrome")
	chrome.Infof("launched")

	assert.Equal(t, logger.LogPath(), chrome.LogPath())
	assert.Contains(t, readLog(t, logger), "[drivers/chrome] [INFO] launched")
	assert.NoError(t, chrome.Close())
}

func TestGetRunID(t *testing.T) {
	setupTestDir(t)

	id1 := GetRunID()
	id2 := GetRunID()
	assert.Equal(t, id1, id2)
	assert.NotEmpty(t, id1)
}

func TestGetLogDirectory(t *testing.T) {
	setupTestDir(t)

	dir, err := GetLogDirectory()
	require.NoError(t, err)
	assert.DirExists(t, dir)
}

func TestLoggerClose(t *testing.T) {
	setupTestDir(t)

	logger, err := NewLogger("test")
	require.NoError(t, err)

	assert.NoError(t, logger.Close())
	assert.NoError(t, logger.Close())
}

func TestDiscard(t *testing.T) {
	logger := Discard()
	logger.Infof("dropped")
	assert.Empty(t, logger.LogPath())
	assert.NoError(t, logger.Close())
}
