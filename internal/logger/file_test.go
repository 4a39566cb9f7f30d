package logger

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harrison/typescan/internal/models"
)

func readRunLog(t *testing.T, fl *FileLogger) string {
	t.Helper()
	require.NoError(t, fl.Close())
	data, err := os.ReadFile(fl.RunFile())
	require.NoError(t, err)
	return string(data)
}

func TestNewFileLogger(t *testing.T) {
	logDir := filepath.Join(t.TempDir(), "logs")

	fl, err := NewFileLogger(logDir)
	require.NoError(t, err)

	assert.Regexp(t, `run-\d{8}-\d{6}\.log$`, fl.RunFile())
	assert.FileExists(t, fl.RunFile())

	target, err := os.Readlink(filepath.Join(logDir, "latest.log"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Base(fl.RunFile()), target)

	content := readRunLog(t, fl)
	assert.Contains(t, content, "=== typescan Run Log ===")
	assert.Contains(t, content, "Started at:")
}

func TestNewFileLoggerReplacesLatestLink(t *testing.T) {
	logDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(logDir, "stale.log"), nil, 0644))
	require.NoError(t, os.Symlink("stale.log", filepath.Join(logDir, "latest.log")))

	fl, err := NewFileLogger(logDir)
	require.NoError(t, err)
	defer fl.Close()

	target, err := os.Readlink(filepath.Join(logDir, "latest.log"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Base(fl.RunFile()), target)
}

func TestNewFileLoggerInvalidDir(t *testing.T) {
	blocker := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(blocker, nil, 0644))

	_, err := NewFileLogger(filepath.Join(blocker, "logs"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to create log directory")
}

func TestFileLoggerScanEvents(t *testing.T) {
	fl, err := NewFileLoggerWithLevel(t.TempDir(), "info")
	require.NoError(t, err)

	failed := models.ClassificationResult{
		File:   models.FileEntry{Name: "bad.bin", Path: "/scan/bad.bin"},
		Status: models.StatusFailed,
		Err:    errors.New("permission denied"),
	}
	matched := models.ClassificationResult{
		File:         models.FileEntry{Name: "a.gif", Path: "/scan/a.gif"},
		Label:        "GIF image",
		Status:       models.StatusMatched,
		RulePriority: 5,
		RuleLine:     2,
	}

	fl.LogScanStart(2, 4)
	fl.LogFileResult(matched)
	fl.LogFileResult(failed)
	fl.LogProgress(2, 2)
	fl.LogScanComplete(models.ScanSummary{
		Total:    2,
		Matched:  1,
		Failed:   1,
		Duration: 2 * time.Second,
		Failures: []models.ClassificationResult{failed},
	})

	content := readRunLog(t, fl)
	assert.Contains(t, content, "[INFO] Scanning 2 files (workers: 4)")
	assert.Contains(t, content, "[INFO] /scan/a.gif: GIF image [matched, 0ms] rule line 2 priority 5")
	assert.Contains(t, content, "[WARN] /scan/bad.bin: failed: permission denied")
	assert.Contains(t, content, "=== Scan Summary ===")
	assert.Contains(t, content, "Total files: 2")
	assert.Contains(t, content, "Duration: 2s")
	assert.Contains(t, content, "  - /scan/bad.bin: permission denied")
	assert.NotContains(t, content, "Progress")
}

func TestFileLoggerLevelFiltering(t *testing.T) {
	fl, err := NewFileLoggerWithLevel(t.TempDir(), "warn")
	require.NoError(t, err)

	fl.LogDebug("debug line")
	fl.LogInfo("info line")
	fl.LogWarn("warn line")
	fl.LogError("error line")
	fl.LogScanComplete(models.ScanSummary{Total: 1})

	content := readRunLog(t, fl)
	assert.NotContains(t, content, "debug line")
	assert.NotContains(t, content, "info line")
	assert.Contains(t, content, "[WARN] warn line")
	assert.Contains(t, content, "[ERROR] error line")
	assert.NotContains(t, content, "Scan Summary")
}

func TestFileLoggerCloseIdempotent(t *testing.T) {
	fl, err := NewFileLogger(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, fl.Close())
	require.NoError(t, fl.Close())

	// Writes after Close are dropped.
	fl.LogInfo("late")
	data, err := os.ReadFile(fl.RunFile())
	require.NoError(t, err)
	assert.False(t, strings.Contains(string(data), "late"))
}
