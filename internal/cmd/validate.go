package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/harrison/typescan/internal/display"
	"github.com/harrison/typescan/internal/pattern"
)

// NewValidateCommand creates and returns the validate subcommand
func NewValidateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <pattern-file>...",
		Short: "Validate one or more pattern files",
		Long: `Parse pattern files and report, for each one:
  - The number of rules and the catalog fingerprint
  - Rules declared after a rule with a lower priority number
  - Rules that can never match because a later rule shadows them

Exit code: 0 if valid, 1 if a file is malformed (or has warnings with --strict)`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			strict, _ := cmd.Flags().GetBool("strict")
			return validatePatternFiles(args, cmd.OutOrStdout(), strict)
		},
		SilenceUsage: true,
	}

	cmd.Flags().Bool("strict", false, "Treat rule ordering warnings as errors")

	return cmd
}

// validatePatternFiles validates every file and writes a report per file to
// output. All files are checked before an error is returned.
func validatePatternFiles(paths []string, output io.Writer, strict bool) error {
	colorize := display.ShouldColor(output)
	var invalid, warned int

	for _, path := range paths {
		catalog, err := pattern.Load(path)
		if err != nil {
			fmt.Fprintf(output, "✗ %v\n", err)
			invalid++
			continue
		}

		fingerprint := catalog.Fingerprint()
		fmt.Fprintf(output, "✓ %s: %d %s (fingerprint %s)\n",
			path, catalog.Len(), pluralize(catalog.Len(), "rule", "rules"), fingerprint[:12])

		if warnings := catalog.OrderWarnings(); len(warnings) > 0 {
			display.OrderWarning(path, warnings).Display(output, colorize)
			warned++
		}
	}

	if invalid > 0 {
		return fmt.Errorf("%d of %d pattern %s invalid", invalid, len(paths), pluralize(len(paths), "file", "files"))
	}
	if strict && warned > 0 {
		return fmt.Errorf("%d pattern %s with ordering warnings", warned, pluralize(warned, "file", "files"))
	}
	return nil
}

func pluralize(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
