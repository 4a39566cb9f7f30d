package cmd

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/harrison/typescan/internal/config"
	"github.com/harrison/typescan/internal/display"
	"github.com/harrison/typescan/internal/executor"
	"github.com/harrison/typescan/internal/filelock"
	"github.com/harrison/typescan/internal/fileutil"
	"github.com/harrison/typescan/internal/logger"
	"github.com/harrison/typescan/internal/models"
	"github.com/harrison/typescan/internal/pattern"
)

// outputLockTimeout bounds the wait for another run writing the same output file.
const outputLockTimeout = 30 * time.Second

// addScanFlags registers the flags of the scan command.
func addScanFlags(cmd *cobra.Command) {
	cmd.Flags().String("config", "", "Path to config file (default: .typescan/config.yaml)")
	cmd.Flags().String("env-file", "", "Load TYPESCAN_* variables from this .env file")
	cmd.Flags().IntP("concurrency", "c", 0, "Number of files classified at once (default 10)")
	cmd.Flags().Duration("timeout", 0, "Maximum time to classify one file, e.g. 5s (0 = no limit)")
	cmd.Flags().String("log-level", "", "Log verbosity: trace, debug, info, warn, error")
	cmd.Flags().String("log-dir", "", "Also write a run log to this directory")
	cmd.Flags().StringP("format", "f", "", "Output format: text or json")
	cmd.Flags().StringP("output", "o", "", "Write results to this file instead of stdout")
	cmd.Flags().String("unknown-label", "", "Label for files no rule matches")
	cmd.Flags().String("error-label", "", "Label printed for files that could not be read")
	cmd.Flags().Int("cache-size", 0, "Distinct file contents remembered between matches (0 disables)")
	cmd.Flags().Bool("detect-kind", false, "Report a coarse content kind (image, archive, ...) in JSON output")
	cmd.Flags().Bool("no-hidden", false, "Skip hidden directories")
	cmd.Flags().StringSlice("exclude", nil, "Directory names never entered (repeatable)")
	cmd.Flags().Bool("fail-on-error", false, "Exit non-zero when any file could not be classified")
}

// scanLogger is what a scan logs through: scheduler events plus free-form
// messages.
type scanLogger interface {
	executor.Logger
	LogDebug(message string)
	LogInfo(message string)
	LogWarn(message string)
	LogError(message string)
}

// multiLogger forwards every call to each of its loggers.
type multiLogger struct {
	loggers []scanLogger
}

func (ml *multiLogger) LogScanStart(total, workers int) {
	for _, l := range ml.loggers {
		l.LogScanStart(total, workers)
	}
}

func (ml *multiLogger) LogFileResult(result models.ClassificationResult) {
	for _, l := range ml.loggers {
		l.LogFileResult(result)
	}
}

func (ml *multiLogger) LogProgress(completed, total int) {
	for _, l := range ml.loggers {
		l.LogProgress(completed, total)
	}
}

func (ml *multiLogger) LogScanComplete(summary models.ScanSummary) {
	for _, l := range ml.loggers {
		l.LogScanComplete(summary)
	}
}

func (ml *multiLogger) LogDebug(message string) {
	for _, l := range ml.loggers {
		l.LogDebug(message)
	}
}

func (ml *multiLogger) LogInfo(message string) {
	for _, l := range ml.loggers {
		l.LogInfo(message)
	}
}

func (ml *multiLogger) LogWarn(message string) {
	for _, l := range ml.loggers {
		l.LogWarn(message)
	}
}

func (ml *multiLogger) LogError(message string) {
	for _, l := range ml.loggers {
		l.LogError(message)
	}
}

// loadScanConfig layers defaults, the config file, the environment and the
// command line flags, in increasing precedence.
func loadScanConfig(cmd *cobra.Command) (*config.Config, error) {
	configPath, _ := cmd.Flags().GetString("config")

	var cfg *config.Config
	var err error
	if configPath != "" {
		cfg, err = config.LoadConfig(configPath)
	} else {
		cfg, err = config.LoadConfigFromDir(".")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	envFile, _ := cmd.Flags().GetString("env-file")
	if envFile != "" {
		err = config.LoadDotEnv(envFile)
	} else {
		err = config.LoadDotEnv()
	}
	if err != nil {
		return nil, err
	}
	if err := cfg.ApplyEnv(); err != nil {
		return nil, fmt.Errorf("invalid environment: %w", err)
	}

	cfg.MergeWithFlags(flagOverrides(cmd))

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// flagOverrides collects the flags that were set explicitly.
func flagOverrides(cmd *cobra.Command) config.FlagOverrides {
	var f config.FlagOverrides
	flags := cmd.Flags()

	if flags.Changed("concurrency") {
		v, _ := flags.GetInt("concurrency")
		f.Concurrency = &v
	}
	if flags.Changed("timeout") {
		v, _ := flags.GetDuration("timeout")
		f.TaskTimeout = &v
	}
	if flags.Changed("cache-size") {
		v, _ := flags.GetInt("cache-size")
		f.CacheSize = &v
	}

	strs := []struct {
		name string
		dst  **string
	}{
		{"log-level", &f.LogLevel},
		{"log-dir", &f.LogDir},
		{"format", &f.Format},
		{"unknown-label", &f.UnknownLabel},
		{"error-label", &f.ErrorLabel},
	}
	for _, s := range strs {
		if flags.Changed(s.name) {
			v, _ := flags.GetString(s.name)
			*s.dst = &v
		}
	}

	if flags.Changed("no-hidden") {
		noHidden, _ := flags.GetBool("no-hidden")
		includeHidden := !noHidden
		f.IncludeHidden = &includeHidden
	}
	if flags.Changed("detect-kind") {
		v, _ := flags.GetBool("detect-kind")
		f.DetectKind = &v
	}
	if flags.Changed("fail-on-error") {
		v, _ := flags.GetBool("fail-on-error")
		f.FailOnError = &v
	}
	if flags.Changed("exclude") {
		v, _ := flags.GetStringSlice("exclude")
		f.ExcludeDirs = v
	}

	return f
}

// newScanLogger builds the console logger and, when a log directory is
// configured, a file logger next to it. The returned function closes the
// file logger.
func newScanLogger(cmd *cobra.Command, cfg *config.Config) (*multiLogger, func(), error) {
	ml := &multiLogger{
		loggers: []scanLogger{logger.NewConsoleLogger(cmd.ErrOrStderr(), cfg.LogLevel)},
	}
	if cfg.LogDir == "" {
		return ml, func() {}, nil
	}

	fileLogger, err := logger.NewFileLoggerWithLevel(cfg.LogDir, cfg.LogLevel)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create file logger: %w", err)
	}
	ml.loggers = append(ml.loggers, fileLogger)
	ml.LogDebug(fmt.Sprintf("Run log: %s", fileLogger.RunFile()))
	return ml, func() { fileLogger.Close() }, nil
}

func runScan(cmd *cobra.Command, args []string) error {
	dir, patternFile := args[0], args[1]

	cfg, err := loadScanConfig(cmd)
	if err != nil {
		return err
	}

	log, closeLog, err := newScanLogger(cmd, cfg)
	if err != nil {
		return err
	}
	defer closeLog()

	catalog, err := pattern.Load(patternFile)
	if err != nil {
		return fmt.Errorf("failed to load patterns: %w", err)
	}
	catalog = catalog.WithFallback(cfg.UnknownLabel)
	for _, w := range catalog.OrderWarnings() {
		log.LogDebug(fmt.Sprintf("%s: %s", patternFile, w))
	}

	listing, err := fileutil.ScanDirectory(dir, fileutil.ScanOptions{
		Recursive:     true,
		IncludeHidden: cfg.IncludeHidden,
		ExcludeDirs:   cfg.ExcludeDirs,
	})
	if err != nil {
		return fmt.Errorf("failed to list %s: %w", dir, err)
	}
	for _, listErr := range listing.Errors {
		log.LogWarn(listErr.Error())
	}

	runID := uuid.NewString()
	log.LogDebug(fmt.Sprintf("Run %s: %d rule(s), catalog %s", runID, catalog.Len(), catalog.Fingerprint()))

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool := executor.NewWorkerPool(cfg.Concurrency)
	defer pool.Close()

	scanner := executor.NewFileScanner(catalog,
		executor.WithDigestCache(cfg.CacheSize),
		executor.WithKindDetection(cfg.DetectKind),
	)

	start := time.Now()
	results := executor.NewScheduler(pool, scanner, log).
		WithTaskTimeout(cfg.TaskTimeout).
		Run(ctx, models.NewFileEntries(listing.Files))
	elapsed := time.Since(start)

	if err := writeResults(ctx, cmd, cfg, runID, catalog, results, elapsed); err != nil {
		return err
	}

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("scan interrupted: %w", err)
	}
	if cfg.FailOnError {
		return executor.Failures(results)
	}
	return nil
}

// writeResults renders results in the configured format to stdout or, with
// --output, to a file that concurrent runs never interleave.
func writeResults(ctx context.Context, cmd *cobra.Command, cfg *config.Config, runID string,
	catalog *pattern.Catalog, results []models.ClassificationResult, elapsed time.Duration) error {
	outputPath, _ := cmd.Flags().GetString("output")

	var data []byte
	switch cfg.Format {
	case config.FormatJSON:
		report := display.NewReport(runID, catalog.Fingerprint(), results, models.Summarize(results, elapsed))
		marshalled, err := report.Marshal()
		if err != nil {
			return err
		}
		data = marshalled
	default:
		if outputPath == "" {
			out := cmd.OutOrStdout()
			return display.NewTextSink(out, cfg.ErrorLabel).WithColor(display.ShouldColor(out)).Write(results)
		}
		var buf bytes.Buffer
		if err := display.NewTextSink(&buf, cfg.ErrorLabel).Write(results); err != nil {
			return err
		}
		data = buf.Bytes()
	}

	if outputPath == "" {
		if _, err := cmd.OutOrStdout().Write(data); err != nil {
			return fmt.Errorf("failed to write results: %w", err)
		}
		return nil
	}

	// Writing the report must finish even after an interrupt.
	writeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), outputLockTimeout)
	defer cancel()
	if err := filelock.LockAndWrite(writeCtx, outputPath, data); err != nil {
		return fmt.Errorf("failed to write %s: %w", outputPath, err)
	}
	return nil
}
