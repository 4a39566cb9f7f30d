package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/harrison/typescan/internal/display"
	"github.com/harrison/typescan/internal/executor"
	"github.com/harrison/typescan/internal/pattern"
)

// Output formats
const (
	FormatText = "text"
	FormatJSON = "json"
)

// DefaultCacheSize is the number of distinct contents the digest cache remembers.
const DefaultCacheSize = 256

// EnvPrefix prefixes every environment override, e.g. TYPESCAN_CONCURRENCY.
const EnvPrefix = "TYPESCAN_"

// Config represents typescan configuration options
type Config struct {
	// Concurrency is the worker pool size (0 = default of 10)
	Concurrency int `yaml:"concurrency"`

	// TaskTimeout bounds the classification of a single file (0 = no timeout)
	TaskTimeout time.Duration `yaml:"task_timeout"`

	// LogLevel sets the logging verbosity (trace, debug, info, warn, error)
	LogLevel string `yaml:"log_level"`

	// LogDir enables a per-run log file in this directory when set
	LogDir string `yaml:"log_dir"`

	// UnknownLabel is printed for files no rule matches
	UnknownLabel string `yaml:"unknown_label"`

	// ErrorLabel is printed for files that could not be read
	ErrorLabel string `yaml:"error_label"`

	// Format selects the output format (text, json)
	Format string `yaml:"format"`

	// IncludeHidden descends into hidden directories
	IncludeHidden bool `yaml:"include_hidden"`

	// ExcludeDirs lists directory names that are never entered
	ExcludeDirs []string `yaml:"exclude_dirs"`

	// CacheSize is the digest cache capacity (0 = disabled)
	CacheSize int `yaml:"cache_size"`

	// DetectKind records a coarse content kind next to each label
	DetectKind bool `yaml:"detect_kind"`

	// FailOnError makes the scan exit non-zero when any file failed
	FailOnError bool `yaml:"fail_on_error"`
}

// DefaultConfig returns a Config with sensible default values
func DefaultConfig() *Config {
	return &Config{
		Concurrency:   executor.DefaultPoolSize,
		TaskTimeout:   0,
		LogLevel:      "info",
		LogDir:        "",
		UnknownLabel:  pattern.UnknownLabel,
		ErrorLabel:    display.DefaultErrorLabel,
		Format:        FormatText,
		IncludeHidden: true,
		CacheSize:     DefaultCacheSize,
	}
}

// yamlConfig mirrors Config with pointers so that fields present in the
// file override defaults even when set to their zero value.
type yamlConfig struct {
	Concurrency   *int      `yaml:"concurrency"`
	TaskTimeout   *string   `yaml:"task_timeout"`
	LogLevel      *string   `yaml:"log_level"`
	LogDir        *string   `yaml:"log_dir"`
	UnknownLabel  *string   `yaml:"unknown_label"`
	ErrorLabel    *string   `yaml:"error_label"`
	Format        *string   `yaml:"format"`
	IncludeHidden *bool     `yaml:"include_hidden"`
	ExcludeDirs   *[]string `yaml:"exclude_dirs"`
	CacheSize     *int      `yaml:"cache_size"`
	DetectKind    *bool     `yaml:"detect_kind"`
	FailOnError   *bool     `yaml:"fail_on_error"`
}

// LoadConfig loads configuration from the specified file path
// If the file doesn't exist, returns default configuration without error
// If the file exists but is malformed, returns an error
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var yc yamlConfig
	if err := yaml.Unmarshal(data, &yc); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if yc.TaskTimeout != nil {
		timeout, err := time.ParseDuration(*yc.TaskTimeout)
		if err != nil {
			return nil, fmt.Errorf("invalid task_timeout format %q: %w", *yc.TaskTimeout, err)
		}
		cfg.TaskTimeout = timeout
	}

	setIf(&cfg.Concurrency, yc.Concurrency)
	setIf(&cfg.LogLevel, yc.LogLevel)
	setIf(&cfg.LogDir, yc.LogDir)
	setIf(&cfg.UnknownLabel, yc.UnknownLabel)
	setIf(&cfg.ErrorLabel, yc.ErrorLabel)
	setIf(&cfg.Format, yc.Format)
	setIf(&cfg.IncludeHidden, yc.IncludeHidden)
	setIf(&cfg.ExcludeDirs, yc.ExcludeDirs)
	setIf(&cfg.CacheSize, yc.CacheSize)
	setIf(&cfg.DetectKind, yc.DetectKind)
	setIf(&cfg.FailOnError, yc.FailOnError)

	return cfg, nil
}

// LoadConfigFromDir loads configuration from .typescan/config.yaml in the specified directory
// If the directory or file doesn't exist, returns default configuration without error
func LoadConfigFromDir(dir string) (*Config, error) {
	return LoadConfig(filepath.Join(dir, ".typescan", "config.yaml"))
}

// LoadDotEnv loads variables from .env files into the process environment
// without overriding variables that are already set. With no arguments a
// missing ./.env is ignored; explicitly named files must exist.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		_ = godotenv.Load()
		return nil
	}
	if err := godotenv.Load(files...); err != nil {
		return fmt.Errorf("failed to load env file: %w", err)
	}
	return nil
}

// ApplyEnv overrides configuration values from TYPESCAN_* environment
// variables. Call LoadDotEnv first to pick up a .env file.
func (c *Config) ApplyEnv() error {
	if v, ok := lookupEnv("CONCURRENCY"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return envError("CONCURRENCY", v, err)
		}
		c.Concurrency = n
	}
	if v, ok := lookupEnv("TASK_TIMEOUT"); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			return envError("TASK_TIMEOUT", v, err)
		}
		c.TaskTimeout = d
	}
	if v, ok := lookupEnv("CACHE_SIZE"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return envError("CACHE_SIZE", v, err)
		}
		c.CacheSize = n
	}

	bools := []struct {
		name string
		dst  *bool
	}{
		{"INCLUDE_HIDDEN", &c.IncludeHidden},
		{"DETECT_KIND", &c.DetectKind},
		{"FAIL_ON_ERROR", &c.FailOnError},
	}
	for _, b := range bools {
		if v, ok := lookupEnv(b.name); ok {
			parsed, err := strconv.ParseBool(v)
			if err != nil {
				return envError(b.name, v, err)
			}
			*b.dst = parsed
		}
	}

	strs := []struct {
		name string
		dst  *string
	}{
		{"LOG_LEVEL", &c.LogLevel},
		{"LOG_DIR", &c.LogDir},
		{"UNKNOWN_LABEL", &c.UnknownLabel},
		{"ERROR_LABEL", &c.ErrorLabel},
		{"FORMAT", &c.Format},
	}
	for _, s := range strs {
		if v, ok := lookupEnv(s.name); ok {
			*s.dst = v
		}
	}

	if v, ok := lookupEnv("EXCLUDE_DIRS"); ok {
		c.ExcludeDirs = splitList(v)
	}

	return nil
}

// FlagOverrides carries CLI flag values. Nil fields were not set on the
// command line and leave the configuration untouched.
type FlagOverrides struct {
	Concurrency   *int
	TaskTimeout   *time.Duration
	LogLevel      *string
	LogDir        *string
	UnknownLabel  *string
	ErrorLabel    *string
	Format        *string
	IncludeHidden *bool
	ExcludeDirs   []string
	CacheSize     *int
	DetectKind    *bool
	FailOnError   *bool
}

// MergeWithFlags merges CLI flags into the configuration
// Non-nil flag values override configuration values
// This allows CLI flags to take precedence over config file and environment settings
func (c *Config) MergeWithFlags(f FlagOverrides) {
	setIf(&c.Concurrency, f.Concurrency)
	setIf(&c.TaskTimeout, f.TaskTimeout)
	setIf(&c.LogLevel, f.LogLevel)
	setIf(&c.LogDir, f.LogDir)
	setIf(&c.UnknownLabel, f.UnknownLabel)
	setIf(&c.ErrorLabel, f.ErrorLabel)
	setIf(&c.Format, f.Format)
	setIf(&c.IncludeHidden, f.IncludeHidden)
	setIf(&c.CacheSize, f.CacheSize)
	setIf(&c.DetectKind, f.DetectKind)
	setIf(&c.FailOnError, f.FailOnError)
	if f.ExcludeDirs != nil {
		c.ExcludeDirs = f.ExcludeDirs
	}
}

// Validate validates the configuration values
// Returns an error if any values are invalid
func (c *Config) Validate() error {
	if c.Concurrency < 0 {
		return fmt.Errorf("concurrency must be >= 0, got %d", c.Concurrency)
	}

	validLevels := map[string]bool{
		"trace": true,
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLevels[c.LogLevel] {
		return fmt.Errorf("invalid log_level %q, must be one of: trace, debug, info, warn, error", c.LogLevel)
	}

	if c.TaskTimeout < 0 {
		return fmt.Errorf("task_timeout must be >= 0, got %v", c.TaskTimeout)
	}

	if c.Format != FormatText && c.Format != FormatJSON {
		return fmt.Errorf("invalid format %q, must be one of: %s, %s", c.Format, FormatText, FormatJSON)
	}

	if c.CacheSize < 0 {
		return fmt.Errorf("cache_size must be >= 0, got %d", c.CacheSize)
	}

	return nil
}

func setIf[T any](dst *T, src *T) {
	if src != nil {
		*dst = *src
	}
}

func lookupEnv(name string) (string, bool) {
	v, ok := os.LookupEnv(EnvPrefix + name)
	if !ok {
		return "", false
	}
	return strings.TrimSpace(v), true
}

func envError(name, value string, err error) error {
	return fmt.Errorf("invalid %s%s value %q: %w", EnvPrefix, name, value, err)
}

// splitList splits a comma separated list, dropping empty items.
func splitList(s string) []string {
	var out []string
	for _, item := range strings.Split(s, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
