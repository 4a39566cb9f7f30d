package logger

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/harrison/typescan/internal/models"
)

// FileLogger writes scan events to a timestamped run log under a log
// directory and keeps a latest.log symlink pointing at the newest run.
// It is thread-safe and implements the executor.Logger interface.
// It supports log level filtering to control message verbosity.
type FileLogger struct {
	logDir   string
	runLog   *os.File
	runFile  string
	logLevel string
	mu       sync.Mutex
}

// NewFileLogger creates a FileLogger in logDir with the default "info" level.
func NewFileLogger(logDir string) (*FileLogger, error) {
	return NewFileLoggerWithLevel(logDir, "info")
}

// NewFileLoggerWithLevel creates the log directory if needed, opens
// run-YYYYMMDD-HHMMSS.log and repoints latest.log at it.
func NewFileLoggerWithLevel(logDir string, logLevel string) (*FileLogger, error) {
	if err := os.MkdirAll(logDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	stamp := time.Now().Format("20060102-150405")
	runFile := filepath.Join(logDir, fmt.Sprintf("run-%s.log", stamp))

	file, err := os.OpenFile(runFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to create run log file: %w", err)
	}

	symlinkPath := filepath.Join(logDir, "latest.log")
	if _, err := os.Lstat(symlinkPath); err == nil {
		if err := os.Remove(symlinkPath); err != nil {
			file.Close()
			return nil, fmt.Errorf("failed to remove old symlink: %w", err)
		}
	}
	if err := os.Symlink(filepath.Base(runFile), symlinkPath); err != nil {
		file.Close()
		return nil, fmt.Errorf("failed to create symlink: %w", err)
	}

	logger := &FileLogger{
		logDir:   logDir,
		runLog:   file,
		runFile:  runFile,
		logLevel: normalizeLogLevel(logLevel),
	}

	logger.writeRunLog("=== typescan Run Log ===\n")
	logger.writeRunLog(fmt.Sprintf("Started at: %s\n\n", time.Now().Format(time.RFC3339)))

	return logger, nil
}

// RunFile returns the path of the current run log.
func (fl *FileLogger) RunFile() string {
	return fl.runFile
}

func (fl *FileLogger) shouldLog(messageLevel string) bool {
	return logLevelToInt(messageLevel) >= logLevelToInt(fl.logLevel)
}

// LogTrace logs a trace-level message (most verbose).
func (fl *FileLogger) LogTrace(message string) {
	fl.logWithLevel("TRACE", message)
}

// LogDebug logs a debug-level message.
func (fl *FileLogger) LogDebug(message string) {
	fl.logWithLevel("DEBUG", message)
}

// LogInfo logs an info-level message.
func (fl *FileLogger) LogInfo(message string) {
	fl.logWithLevel("INFO", message)
}

// LogWarn logs a warning-level message.
func (fl *FileLogger) LogWarn(message string) {
	fl.logWithLevel("WARN", message)
}

// LogError logs an error-level message.
func (fl *FileLogger) LogError(message string) {
	fl.logWithLevel("ERROR", message)
}

func (fl *FileLogger) logWithLevel(level string, message string) {
	if !fl.shouldLog(strings.ToLower(level)) {
		return
	}
	fl.writeRunLog(fmt.Sprintf("[%s] [%s] %s\n", timestamp(), level, message))
}

// LogScanStart records the run size at INFO level.
func (fl *FileLogger) LogScanStart(total, workers int) {
	fl.logWithLevel("INFO", fmt.Sprintf("Scanning %d %s (workers: %d)",
		total, plural(total, "file", "files"), workers))
}

// LogFileResult records every file at INFO level, so the run log is a
// complete record even when the console only shows warnings.
func (fl *FileLogger) LogFileResult(result models.ClassificationResult) {
	if result.Failed() {
		fl.LogWarn(fmt.Sprintf("%s: failed: %v", result.File.Path, result.Err))
		return
	}

	msg := fmt.Sprintf("%s: %s [%s, %s]", result.File.Path, result.Label, result.Status, formatDuration(result.Duration))
	if result.RuleLine > 0 {
		msg += fmt.Sprintf(" rule line %d priority %d", result.RuleLine, result.RulePriority)
	}
	fl.logWithLevel("INFO", msg)
}

// LogProgress is ignored; the run log already has one line per file.
func (fl *FileLogger) LogProgress(completed, total int) {}

// LogScanComplete records the summary and lists failed files.
func (fl *FileLogger) LogScanComplete(summary models.ScanSummary) {
	if !fl.shouldLog("info") {
		return
	}

	ts := timestamp()
	var sb strings.Builder
	fmt.Fprintf(&sb, "\n[%s] === Scan Summary ===\n", ts)
	fmt.Fprintf(&sb, "[%s] Total files: %d\n", ts, summary.Total)
	fmt.Fprintf(&sb, "[%s] Matched: %d\n", ts, summary.Matched)
	fmt.Fprintf(&sb, "[%s] Unknown: %d\n", ts, summary.Unknown)
	fmt.Fprintf(&sb, "[%s] Failed: %d\n", ts, summary.Failed)
	fmt.Fprintf(&sb, "[%s] Duration: %s\n", ts, formatDuration(summary.Duration))

	if len(summary.Failures) > 0 {
		fmt.Fprintf(&sb, "[%s] Failed files:\n", ts)
		for _, f := range summary.Failures {
			fmt.Fprintf(&sb, "[%s]   - %s: %v\n", ts, f.File.Path, f.Err)
		}
	}

	fl.writeRunLog(sb.String())
}

// Close flushes and closes the run log file.
// Safe to call more than once.
func (fl *FileLogger) Close() error {
	fl.mu.Lock()
	defer fl.mu.Unlock()

	if fl.runLog != nil {
		if err := fl.runLog.Sync(); err != nil {
			return fmt.Errorf("failed to sync run log: %w", err)
		}
		if err := fl.runLog.Close(); err != nil {
			return fmt.Errorf("failed to close run log: %w", err)
		}
		fl.runLog = nil
	}

	return nil
}

func (fl *FileLogger) writeRunLog(message string) {
	fl.mu.Lock()
	defer fl.mu.Unlock()

	if fl.runLog != nil {
		fl.runLog.WriteString(message)
	}
}
