package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/harrison/typescan/internal/cmd"
)

// Exit statuses
const (
	exitOK    = 0
	exitError = 1
	exitUsage = 2
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// run executes the command line and returns the process exit status.
func run(args []string, stdout, stderr io.Writer) int {
	rootCmd := cmd.NewRootCommand()
	rootCmd.SetArgs(args)
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)

	err := rootCmd.Execute()
	if err == nil {
		return exitOK
	}

	var usageErr *cmd.UsageError
	if errors.As(err, &usageErr) {
		fmt.Fprintln(stderr, usageErr.Message)
		fmt.Fprint(stderr, usageErr.Usage)
		return exitUsage
	}

	fmt.Fprintf(stderr, "Error: %v\n", err)
	return exitError
}
