package display

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
)

// Warning represents a user-facing warning message
type Warning struct {
	Title      string   // Main warning title
	Message    string   // Detailed explanation (optional)
	Items      []string // Related rules or paths (optional)
	Suggestion string   // Action to take (optional)
}

// Display writes the warning to out, in yellow when colorize is set.
func (w Warning) Display(out io.Writer, colorize bool) {
	var b strings.Builder

	b.WriteString("Warning: ")
	b.WriteString(w.Title)
	b.WriteString("\n")

	if w.Message != "" {
		b.WriteString("    ")
		b.WriteString(w.Message)
		b.WriteString("\n")
	}

	for i, item := range w.Items {
		fmt.Fprintf(&b, "      %d. %s\n", i+1, item)
	}

	if w.Suggestion != "" {
		b.WriteString("    Suggestion: ")
		b.WriteString(w.Suggestion)
		b.WriteString("\n")
	}

	if !colorize {
		fmt.Fprint(out, b.String())
		return
	}

	yellow := color.New(color.FgYellow)
	yellow.EnableColor()
	fmt.Fprint(out, yellow.Sprint(b.String()))
}

// OrderWarning builds the warning shown when a catalog has rules whose
// declaration order disagrees with their priorities or that can never match.
func OrderWarning(source string, problems []string) Warning {
	return Warning{
		Title:      fmt.Sprintf("%s has %d rule ordering %s", source, len(problems), pluralize(len(problems), "problem", "problems")),
		Message:    "Rules are tried from the last line to the first; the first match wins.",
		Items:      problems,
		Suggestion: "Declare more specific patterns after the general ones they overlap with.",
	}
}

func pluralize(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
