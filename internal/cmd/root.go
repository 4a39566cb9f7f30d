package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// Version is injected at build time via -ldflags
var Version = "dev"

// NewRootCommand creates the typescan command. Run with a directory and a
// pattern file it scans; validate and version are subcommands.
func NewRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "typescan <directory> <pattern-file>",
		Short: "Classify files by the byte signatures they contain",
		Long: `typescan labels every file under a directory using a pattern file.

Each line of the pattern file is a rule:

    priority;"pattern";"label"

A file receives the label of the last-declared rule whose pattern occurs
anywhere in its content, or "Unknown file type" when none does. Files are
read concurrently and printed as "name: label" in a stable order.`,
		Example: `  typescan ./downloads patterns.db
  typescan --format json --output report.json ./downloads patterns.db
  typescan validate patterns.db`,
		Version: Version,
		Args:    scanArgs,
		RunE:    runScan,
		// Silence usage on errors to avoid duplicate help text
		SilenceUsage: true,
		// main prints errors with the right exit status
		SilenceErrors: true,
	}

	addScanFlags(cmd)

	cmd.SetFlagErrorFunc(func(c *cobra.Command, err error) error {
		return &UsageError{Message: err.Error(), Usage: c.UsageString()}
	})

	cmd.AddCommand(NewValidateCommand())
	cmd.AddCommand(NewVersionCommand())

	return cmd
}

// scanArgs requires exactly a directory and a pattern file.
func scanArgs(cmd *cobra.Command, args []string) error {
	switch {
	case len(args) < 2:
		return &UsageError{Message: usageMessage, Usage: cmd.UsageString()}
	case len(args) > 2:
		return &UsageError{
			Message: fmt.Sprintf("accepts 2 arguments, received %d", len(args)),
			Usage:   cmd.UsageString(),
		}
	}
	return nil
}

// NewVersionCommand prints the build version.
func NewVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the typescan version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "typescan %s\n", Version)
		},
	}
}
