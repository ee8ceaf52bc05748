package logger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"binwatch/internal/config"
)

func newTestLogger(t *testing.T) (*Logger, string) {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "logs")
	l, err := NewLogger(&config.Config{LogDirectory: dir, LogLevel: "error"})
	require.NoError(t, err)
	t.Cleanup(func() { l.Sync() })
	return l, dir
}

func readLog(t *testing.T, dir, name string) string {
	t.Helper()
	require.NoError(t, os.MkdirAll(dir, 0755))
	data, err := os.ReadFile(filepath.Join(dir, name))
	require.NoError(t, err)
	return string(data)
}

func TestNewLogger_CreatesLevelFiles(t *testing.T) {
	_, dir := newTestLogger(t)

	for _, name := range []string{InfoFile, WarningFile, ErrorFile} {
		_, err := os.Stat(filepath.Join(dir, name))
		assert.NoError(t, err, name)
	}
}

func TestLogger_RoutesByLevel(t *testing.T) {
	l, dir := newTestLogger(t)

	l.Info("bin %s classified", "info-entry")
	l.Warning("frame %d skipped", 7)
	l.Error("source %s unreadable", "error-entry")

	info := readLog(t, dir, InfoFile)
	warning := readLog(t, dir, WarningFile)
	errs := readLog(t, dir, ErrorFile)

	assert.Contains(t, info, "info-entry")
	assert.NotContains(t, info, "frame 7 skipped")
	assert.Contains(t, warning, "frame 7 skipped")
	assert.NotContains(t, warning, "error-entry")
	assert.Contains(t, errs, "error-entry")
}

func TestLogger_CleanLogs(t *testing.T) {
	l, dir := newTestLogger(t)

	l.Warning("to be cleared")
	require.NotEmpty(t, readLog(t, dir, WarningFile))

	require.NoError(t, l.CleanLogs(WarningFile))
	assert.Empty(t, readLog(t, dir, WarningFile))

	assert.Error(t, l.CleanLogs("../passwd"))
}

func TestLogger_With(t *testing.T) {
	l, dir := newTestLogger(t)

	l.With(zap.String("upload", "bin-42.mp4")).Info("classified")

	assert.Contains(t, readLog(t, dir, InfoFile), "bin-42.mp4")
}

func TestNewNop(t *testing.T) {
	l := NewNop()
	l.Info("ignored %d", 1)
	l.Warning("ignored")
	l.Error("ignored")
	assert.NoError(t, l.CleanLogs(InfoFile))
}
