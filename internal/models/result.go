package models

import "time"

// Classification status constants
const (
	StatusMatched = "matched" // A rule's pattern occurred in the content
	StatusUnknown = "unknown" // No rule matched; the fallback label was used
	StatusFailed  = "failed"  // The file could not be classified
)

// ClassificationResult is the terminal outcome of classifying one file.
// Exactly one is produced per FileEntry.
type ClassificationResult struct {
	File         FileEntry     // The file that was classified
	Label        string        // Matched rule label or the fallback label
	Status       string        // Status: "matched", "unknown", "failed"
	RulePriority int           // Declared priority of the matching rule
	RuleLine     int           // Pattern file line of the matching rule (0 if none)
	Kind         string        // Coarse content kind hint (optional)
	Duration     time.Duration // Time taken to classify
	Err          error         // Error if classification failed
}

// Failed returns true if the file could not be classified.
func (r ClassificationResult) Failed() bool {
	return r.Status == StatusFailed
}

// ScanSummary represents the aggregate result of classifying a file set
type ScanSummary struct {
	Total    int                    // Total number of files
	Matched  int                    // Files labelled by a rule
	Unknown  int                    // Files given the fallback label
	Failed   int                    // Files that could not be read
	Duration time.Duration          // Total scan time
	Failures []ClassificationResult // Details of failed files
}

// Summarize counts results by status.
func Summarize(results []ClassificationResult, duration time.Duration) ScanSummary {
	summary := ScanSummary{
		Total:    len(results),
		Duration: duration,
	}

	for _, r := range results {
		switch r.Status {
		case StatusMatched:
			summary.Matched++
		case StatusUnknown:
			summary.Unknown++
		case StatusFailed:
			summary.Failed++
			summary.Failures = append(summary.Failures, r)
		}
	}

	return summary
}
