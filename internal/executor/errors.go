package executor

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/harrison/typescan/internal/models"
)

// ErrPoolClosed is returned when work is submitted to a closed WorkerPool.
var ErrPoolClosed = errors.New("worker pool is closed")

// ScanError represents a failure to classify a single file.
// It is recorded in that file's result slot and never aborts sibling scans.
type ScanError struct {
	File      models.FileEntry // File that could not be classified
	Op        string           // Operation that failed (e.g. "read")
	Err       error            // Underlying error
	Timestamp time.Time        // When the error occurred
}

// NewScanError creates a new ScanError with the current timestamp.
func NewScanError(file models.FileEntry, op string, err error) *ScanError {
	return &ScanError{
		File:      file,
		Op:        op,
		Err:       err,
		Timestamp: time.Now(),
	}
}

// Error implements the error interface for ScanError.
func (e *ScanError) Error() string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("scan %s: %s failed", e.File.Path, e.Op))
	if e.Err != nil {
		sb.WriteString(fmt.Sprintf(": %v", e.Err))
	}
	return sb.String()
}

// Unwrap returns the underlying error for error wrapping support.
func (e *ScanError) Unwrap() error {
	return e.Err
}

// TimeoutError represents a scan task that exceeded its timeout.
type TimeoutError struct {
	File            models.FileEntry // File whose scan timed out
	TimeoutDuration time.Duration    // Duration after which timeout occurred
	Timestamp       time.Time        // When the timeout occurred
}

// NewTimeoutError creates a new TimeoutError with the current timestamp.
func NewTimeoutError(file models.FileEntry, duration time.Duration) *TimeoutError {
	return &TimeoutError{
		File:            file,
		TimeoutDuration: duration,
		Timestamp:       time.Now(),
	}
}

// Error implements the error interface for TimeoutError.
func (e *TimeoutError) Error() string {
	if e.TimeoutDuration > 0 {
		return fmt.Sprintf("scan %s: timeout after %v", e.File.Path, e.TimeoutDuration)
	}
	return fmt.Sprintf("scan %s: deadline exceeded", e.File.Path)
}

// Unwrap returns context.DeadlineExceeded to support error wrapping.
func (e *TimeoutError) Unwrap() error {
	return context.DeadlineExceeded
}

// BatchError aggregates the per-file failures of one scheduler run.
// The run itself completed; BatchError only reports which slots failed.
type BatchError struct {
	TotalFiles int     // Number of files in the run
	FileErrors []error // Per-file errors in submission order
}

// Error implements the error interface for BatchError.
func (e *BatchError) Error() string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("%d/%d files could not be classified", len(e.FileErrors), e.TotalFiles))
	for _, err := range e.FileErrors {
		sb.WriteString(fmt.Sprintf("\n  - %s", err.Error()))
	}

	return sb.String()
}

// Unwrap returns the file errors for error unwrapping support.
// This allows errors.Is and errors.As to traverse the error chain.
func (e *BatchError) Unwrap() []error {
	if len(e.FileErrors) == 0 {
		return nil
	}
	return e.FileErrors
}

// Failures collects the errors of failed results into a BatchError.
// It returns nil when every file was classified.
func Failures(results []models.ClassificationResult) error {
	batch := &BatchError{TotalFiles: len(results)}
	for _, r := range results {
		if !r.Failed() {
			continue
		}
		err := r.Err
		if err == nil {
			err = NewScanError(r.File, "classify", errors.New("unknown failure"))
		}
		batch.FileErrors = append(batch.FileErrors, err)
	}

	if len(batch.FileErrors) == 0 {
		return nil
	}
	return batch
}

// IsScanError checks if the error is or wraps a ScanError.
func IsScanError(err error) bool {
	if err == nil {
		return false
	}
	var se *ScanError
	return errors.As(err, &se)
}

// IsTimeoutError checks if the error is or wraps a TimeoutError or context.DeadlineExceeded.
func IsTimeoutError(err error) bool {
	if err == nil {
		return false
	}

	// Check for TimeoutError
	var te *TimeoutError
	if errors.As(err, &te) {
		return true
	}

	// Check for context.DeadlineExceeded
	return errors.Is(err, context.DeadlineExceeded)
}

// IsBatchError checks if the error is or wraps a BatchError.
func IsBatchError(err error) bool {
	if err == nil {
		return false
	}
	var be *BatchError
	return errors.As(err, &be)
}
