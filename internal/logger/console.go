// Package logger provides logging implementations for typescan runs.
//
// Loggers report scan progress at the file and summary levels. Implementations
// are thread-safe and satisfy executor.Logger, so workers can report results
// directly. Console output is meant for stderr; stdout carries only results.
package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/fatih/color"

	"github.com/harrison/typescan/internal/models"
)

// Log level constants for filtering
const (
	levelTrace int = 0
	levelDebug int = 1
	levelInfo  int = 2
	levelWarn  int = 3
	levelError int = 4
)

// progressWidth is the number of cells in the rendered progress bar.
const progressWidth = 20

// ConsoleLogger logs scan progress to a writer with timestamps and thread safety.
// All output is prefixed with [HH:MM:SS] timestamps.
// It supports log level filtering to control message verbosity.
// Color output is automatically enabled for terminal output (os.Stdout/os.Stderr).
type ConsoleLogger struct {
	writer      io.Writer
	logLevel    string
	mutex       sync.Mutex
	colorOutput bool
}

// NewConsoleLogger creates a ConsoleLogger that writes to the provided io.Writer.
// If writer is nil, messages are silently discarded.
// Valid levels: trace, debug, info, warn, error (case-insensitive).
// If logLevel is empty or invalid, defaults to "info".
func NewConsoleLogger(writer io.Writer, logLevel string) *ConsoleLogger {
	return &ConsoleLogger{
		writer:      writer,
		logLevel:    normalizeLogLevel(logLevel),
		colorOutput: isTerminal(writer),
	}
}

// isTerminal checks if the writer is a terminal that supports colors.
func isTerminal(w io.Writer) bool {
	if w == nil {
		return false
	}

	if w == os.Stdout || w == os.Stderr {
		// Honors NO_COLOR and non-TTY output
		return !color.NoColor
	}

	return false
}

// normalizeLogLevel converts a log level string to lowercase and validates it.
// Returns "info" as default for empty or invalid levels.
func normalizeLogLevel(level string) string {
	normalized := strings.ToLower(strings.TrimSpace(level))

	switch normalized {
	case "trace", "debug", "info", "warn", "error":
		return normalized
	default:
		return "info"
	}
}

// logLevelToInt converts a log level string to its numeric value.
func logLevelToInt(level string) int {
	switch level {
	case "trace":
		return levelTrace
	case "debug":
		return levelDebug
	case "info":
		return levelInfo
	case "warn":
		return levelWarn
	case "error":
		return levelError
	default:
		return levelInfo
	}
}

// shouldLog checks if a message at the given level should be logged.
func (cl *ConsoleLogger) shouldLog(messageLevel string) bool {
	return logLevelToInt(messageLevel) >= logLevelToInt(cl.logLevel)
}

// LogTrace logs a trace-level message (most verbose).
func (cl *ConsoleLogger) LogTrace(message string) {
	cl.logWithLevel("TRACE", message)
}

// LogDebug logs a debug-level message.
func (cl *ConsoleLogger) LogDebug(message string) {
	cl.logWithLevel("DEBUG", message)
}

// LogInfo logs an info-level message.
// Format: "[HH:MM:SS] [INFO] <message>"
func (cl *ConsoleLogger) LogInfo(message string) {
	cl.logWithLevel("INFO", message)
}

// LogWarn logs a warning-level message.
func (cl *ConsoleLogger) LogWarn(message string) {
	cl.logWithLevel("WARN", message)
}

// LogError logs an error-level message.
func (cl *ConsoleLogger) LogError(message string) {
	cl.logWithLevel("ERROR", message)
}

func (cl *ConsoleLogger) logWithLevel(level string, message string) {
	if cl.writer == nil || !cl.shouldLog(strings.ToLower(level)) {
		return
	}

	cl.mutex.Lock()
	defer cl.mutex.Unlock()

	cl.write(level, message)
}

// write emits one formatted line. Callers hold the mutex.
func (cl *ConsoleLogger) write(level, message string) {
	tag := level
	if cl.colorOutput {
		tag = levelColor(level).Sprint(level)
	}
	fmt.Fprintf(cl.writer, "[%s] [%s] %s\n", timestamp(), tag, message)
}

func levelColor(level string) *color.Color {
	switch level {
	case "TRACE":
		return color.New(color.FgHiBlack)
	case "DEBUG":
		return color.New(color.FgCyan)
	case "WARN":
		return color.New(color.FgYellow)
	case "ERROR":
		return color.New(color.FgRed)
	default:
		return color.New(color.FgBlue)
	}
}

// LogScanStart logs the size of the run at INFO level.
// Format: "[HH:MM:SS] [INFO] Scanning <n> files with <w> workers"
func (cl *ConsoleLogger) LogScanStart(total, workers int) {
	cl.logWithLevel("INFO", fmt.Sprintf("Scanning %d %s with %d %s",
		total, plural(total, "file", "files"), workers, plural(workers, "worker", "workers")))
}

// LogFileResult logs a classified file at DEBUG level. A failed file is
// logged at WARN level with its error.
func (cl *ConsoleLogger) LogFileResult(result models.ClassificationResult) {
	if result.Failed() {
		cl.LogWarn(fmt.Sprintf("could not classify %s: %v", result.File.Path, result.Err))
		return
	}

	if cl.writer == nil || !cl.shouldLog("debug") {
		return
	}

	cl.mutex.Lock()
	defer cl.mutex.Unlock()

	status := result.Status
	if cl.colorOutput {
		status = newColorScheme().status(result.Status).Sprint(result.Status)
	}
	msg := fmt.Sprintf("%s: %s (%s", result.File.Name, result.Label, status)
	if result.RuleLine > 0 {
		msg += fmt.Sprintf(", rule line %d", result.RuleLine)
	}
	if result.Kind != "" {
		msg += ", kind " + result.Kind
	}
	msg += ")"

	cl.write("DEBUG", msg)
}

// LogProgress logs a progress bar at DEBUG level roughly every tenth of
// the run and once at completion.
// Format: "[HH:MM:SS] [DEBUG] Progress: [=====     ] 5/10 (50%)"
func (cl *ConsoleLogger) LogProgress(completed, total int) {
	if cl.writer == nil || !cl.shouldLog("debug") || !progressTick(completed, total) {
		return
	}

	pb := NewProgressBar(total, progressWidth, cl.colorOutput)
	pb.Update(completed)

	cl.mutex.Lock()
	defer cl.mutex.Unlock()
	cl.write("DEBUG", "Progress: "+pb.Render())
}

// progressTick reports whether completed lands on a reporting step.
func progressTick(completed, total int) bool {
	if total <= 0 {
		return false
	}
	step := total / 10
	if step < 1 {
		step = 1
	}
	return completed == total || completed%step == 0
}

// LogScanComplete logs the run summary at INFO level.
func (cl *ConsoleLogger) LogScanComplete(summary models.ScanSummary) {
	if cl.writer == nil || !cl.shouldLog("info") {
		return
	}

	cl.mutex.Lock()
	defer cl.mutex.Unlock()

	scheme := newColorScheme()
	counts := []struct {
		status string
		label  string
		n      int
	}{
		{models.StatusMatched, "matched", summary.Matched},
		{models.StatusUnknown, "unknown", summary.Unknown},
		{models.StatusFailed, "failed", summary.Failed},
	}

	parts := make([]string, 0, len(counts))
	for _, c := range counts {
		part := fmt.Sprintf("%s: %d", c.label, c.n)
		if cl.colorOutput && c.n > 0 {
			part = scheme.status(c.status).Sprint(part)
		}
		parts = append(parts, part)
	}

	cl.write("INFO", fmt.Sprintf("Scan complete: %d %s in %s (%s)",
		summary.Total, plural(summary.Total, "file", "files"),
		formatDuration(summary.Duration), strings.Join(parts, ", ")))
}

// timestamp returns the current time formatted as "15:04:05" (HH:MM:SS).
func timestamp() string {
	return time.Now().Format("15:04:05")
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}

// formatDuration converts a time.Duration to a human-readable string.
// Runs under a second are shown in milliseconds.
// Examples: "250ms", "5s", "1m30s", "2h15m"
func formatDuration(d time.Duration) string {
	switch {
	case d >= time.Hour:
		hours := d / time.Hour
		remainder := d % time.Hour
		if remainder == 0 {
			return fmt.Sprintf("%dh", hours)
		}
		minutes := remainder / time.Minute
		remainder = remainder % time.Minute
		if remainder == 0 {
			return fmt.Sprintf("%dh%dm", hours, minutes)
		}
		seconds := remainder / time.Second
		return fmt.Sprintf("%dh%dm%ds", hours, minutes, seconds)
	case d >= time.Minute:
		minutes := d / time.Minute
		remainder := d % time.Minute
		if remainder == 0 {
			return fmt.Sprintf("%dm", minutes)
		}
		seconds := remainder / time.Second
		return fmt.Sprintf("%dm%ds", minutes, seconds)
	case d >= time.Second:
		return fmt.Sprintf("%ds", int64(d.Seconds()))
	default:
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
}

// NoOpLogger is a Logger implementation that discards all log messages.
// Useful for testing or when logging is disabled.
type NoOpLogger struct{}

// NewNoOpLogger creates a NoOpLogger instance.
func NewNoOpLogger() *NoOpLogger {
	return &NoOpLogger{}
}

// LogScanStart is a no-op implementation.
func (n *NoOpLogger) LogScanStart(total, workers int) {}

// LogFileResult is a no-op implementation.
func (n *NoOpLogger) LogFileResult(result models.ClassificationResult) {}

// LogProgress is a no-op implementation.
func (n *NoOpLogger) LogProgress(completed, total int) {}

// LogScanComplete is a no-op implementation.
func (n *NoOpLogger) LogScanComplete(summary models.ScanSummary) {}

// LogDebug is a no-op implementation.
func (n *NoOpLogger) LogDebug(message string) {}

// LogInfo is a no-op implementation.
func (n *NoOpLogger) LogInfo(message string) {}

// LogWarn is a no-op implementation.
func (n *NoOpLogger) LogWarn(message string) {}

// LogError is a no-op implementation.
func (n *NoOpLogger) LogError(message string) {}
