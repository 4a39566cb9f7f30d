package logger

import (
	"github.com/fatih/color"

	"github.com/harrison/typescan/internal/models"
)

// colorScheme defines consistent colors for classification outcomes.
// Green: matched by a rule
// Yellow: fallback label
// Red: could not be classified
type colorScheme struct {
	matched *color.Color
	unknown *color.Color
	failed  *color.Color
	plain   *color.Color
}

// newColorScheme creates the standard color scheme for result statuses.
func newColorScheme() *colorScheme {
	return &colorScheme{
		matched: color.New(color.FgGreen),
		unknown: color.New(color.FgYellow),
		failed:  color.New(color.FgRed),
		plain:   color.New(color.Reset),
	}
}

// status returns the color for a ClassificationResult status.
func (s *colorScheme) status(status string) *color.Color {
	switch status {
	case models.StatusMatched:
		return s.matched
	case models.StatusUnknown:
		return s.unknown
	case models.StatusFailed:
		return s.failed
	default:
		return s.plain
	}
}
