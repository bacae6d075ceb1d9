package debug

import (
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, ParseLevel(" warning "))
	assert.Equal(t, slog.LevelError, ParseLevel("error"))
	assert.Equal(t, slog.LevelInfo, ParseLevel("chatty"))
}

func TestNewLoggerWritesWarningsToFile(t *testing.T) {
	reset(t)
	traceEnv = false
	Configure(false, false)

	path := filepath.Join(t.TempDir(), "logs", "error.log")
	logger, closer, err := NewLogger(path, "info")
	require.NoError(t, err)

	capture(t, &os.Stderr, func() {
		logger.Info("listing tasks", "count", 3)
		logger.With("task_id", 7).Error("shift failed", "err", "boom")
	})
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 1, "info records stay out of the error log")

	var rec map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &rec))
	assert.Equal(t, "shift failed", rec["msg"])
	assert.Equal(t, "ERROR", rec["level"])
	assert.EqualValues(t, 7, rec["task_id"])
}

func TestSetLevelAffectsConsole(t *testing.T) {
	reset(t)
	traceEnv = false
	Configure(false, false)

	logger, _, err := NewLogger("", "warn")
	require.NoError(t, err)
	defer SetLevel("info")

	out := capture(t, &os.Stderr, func() { logger.Info("hidden") })
	assert.Empty(t, out)

	SetLevel("debug")
	out = capture(t, &os.Stderr, func() { logger.Debug("visible") })
	assert.Contains(t, out, "visible")
}
