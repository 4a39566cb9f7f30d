package cmd

import (
	"errors"
)

// usageMessage is printed when the scan is invoked without its two arguments.
const usageMessage = "Please provide folder to search, and pattern file (2 arguments)"

// UsageError reports a command line that cannot be run. The caller prints
// Message followed by Usage and exits with status 2.
type UsageError struct {
	Message string // What was wrong with the invocation
	Usage   string // The command's usage text
}

// Error implements the error interface for UsageError.
func (e *UsageError) Error() string {
	return e.Message
}

// IsUsageError checks if the error is or wraps a UsageError.
func IsUsageError(err error) bool {
	if err == nil {
		return false
	}
	var ue *UsageError
	return errors.As(err, &ue)
}
