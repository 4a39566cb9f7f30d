// Package display formats scan output for people and machines.
//
// Results go to stdout as one "fileName: label" line per file, in the order
// the files were submitted:
//
//	sink := display.NewTextSink(os.Stdout, "Unreadable file")
//	if err := sink.Write(results); err != nil {
//	    return err
//	}
//
// Labels are colored when stdout is a terminal (see ShouldColor); redirected
// output is plain text. A JSON report carries the same results together with
// the run ID, the catalog fingerprint and a summary:
//
//	report := display.NewReport(runID, catalog.Fingerprint(), results, summary)
//	data, err := report.Marshal()
//
// Warning renders multi-line notices such as catalog ordering problems found
// by the validate command.
package display
