package display

import (
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"

	"github.com/harrison/typescan/internal/models"
)

// ShouldColor reports whether w is a terminal that should receive ANSI
// colors. NO_COLOR disables color everywhere.
func ShouldColor(w io.Writer) bool {
	if _, set := os.LookupEnv("NO_COLOR"); set {
		return false
	}
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// statusColor picks the label color for a result status.
func statusColor(status string) *color.Color {
	var c *color.Color
	switch status {
	case models.StatusMatched:
		c = color.New(color.FgGreen)
	case models.StatusUnknown:
		c = color.New(color.FgYellow)
	case models.StatusFailed:
		c = color.New(color.FgRed)
	default:
		c = color.New(color.Reset)
	}
	// The caller decides per writer; the package-level NoColor only
	// reflects stdout.
	c.EnableColor()
	return c
}
