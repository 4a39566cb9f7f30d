package display

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/harrison/typescan/internal/models"
)

// DefaultErrorLabel is printed for files that could not be read.
const DefaultErrorLabel = "Unreadable file"

// TextSink writes one "fileName: label" line per result.
type TextSink struct {
	out        io.Writer
	errorLabel string
	colorize   bool
}

// NewTextSink creates a TextSink for out. Color is enabled when out is a
// terminal. An empty errorLabel uses DefaultErrorLabel.
func NewTextSink(out io.Writer, errorLabel string) *TextSink {
	if errorLabel == "" {
		errorLabel = DefaultErrorLabel
	}
	return &TextSink{
		out:        out,
		errorLabel: errorLabel,
		colorize:   ShouldColor(out),
	}
}

// WithColor overrides terminal detection.
func (s *TextSink) WithColor(enabled bool) *TextSink {
	s.colorize = enabled
	return s
}

// Line formats a single result without a trailing newline.
func (s *TextSink) Line(r models.ClassificationResult) string {
	label := r.Label
	if r.Failed() {
		label = s.errorLabel
	}
	if s.colorize {
		label = statusColor(r.Status).Sprint(label)
	}
	return fmt.Sprintf("%s: %s", r.File.Name, label)
}

// Write emits results in slice order, one line each.
func (s *TextSink) Write(results []models.ClassificationResult) error {
	var b strings.Builder
	for _, r := range results {
		b.WriteString(s.Line(r))
		b.WriteByte('\n')
	}
	if _, err := io.WriteString(s.out, b.String()); err != nil {
		return fmt.Errorf("failed to write results: %w", err)
	}
	return nil
}

// ReportEntry is one file in a JSON report.
type ReportEntry struct {
	File     string `json:"file"`
	Path     string `json:"path"`
	Label    string `json:"label"`
	Status   string `json:"status"`
	Priority *int   `json:"priority,omitempty"`
	Line     int    `json:"rule_line,omitempty"`
	Kind     string `json:"kind,omitempty"`
	Error    string `json:"error,omitempty"`
}

// ReportSummary mirrors models.ScanSummary with JSON-friendly durations.
type ReportSummary struct {
	Total      int   `json:"total"`
	Matched    int   `json:"matched"`
	Unknown    int   `json:"unknown"`
	Failed     int   `json:"failed"`
	DurationMs int64 `json:"duration_ms"`
}

// Report is the JSON form of a scan.
type Report struct {
	RunID              string        `json:"run_id"`
	CatalogFingerprint string        `json:"catalog_fingerprint"`
	Results            []ReportEntry `json:"results"`
	Summary            ReportSummary `json:"summary"`
}

// NewReport builds a report. Results keep their order. Failed entries carry
// the error text and an empty label.
func NewReport(runID, fingerprint string, results []models.ClassificationResult, summary models.ScanSummary) Report {
	entries := make([]ReportEntry, 0, len(results))
	for _, r := range results {
		e := ReportEntry{
			File:   r.File.Name,
			Path:   r.File.Path,
			Label:  r.Label,
			Status: r.Status,
			Kind:   r.Kind,
		}
		if r.Status == models.StatusMatched {
			p := r.RulePriority
			e.Priority = &p
			e.Line = r.RuleLine
		}
		if r.Err != nil {
			e.Error = r.Err.Error()
		}
		entries = append(entries, e)
	}

	return Report{
		RunID:              runID,
		CatalogFingerprint: fingerprint,
		Results:            entries,
		Summary: ReportSummary{
			Total:      summary.Total,
			Matched:    summary.Matched,
			Unknown:    summary.Unknown,
			Failed:     summary.Failed,
			DurationMs: summary.Duration.Milliseconds(),
		},
	}
}

// Marshal returns the indented JSON encoding with a trailing newline.
func (r Report) Marshal() ([]byte, error) {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode report: %w", err)
	}
	return append(data, '\n'), nil
}
