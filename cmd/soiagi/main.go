// Command soiagi standardizes IRS SOI ZIP-code AGI extracts, builds the
// master tables and geocodes the energy usage table.
package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"soiagi/internal/errors"
)

func main() {
	os.Exit(execute(context.Background(), os.Args[1:], os.Stdout, os.Stderr))
}

// execute runs the CLI and returns the process exit code
func execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	root := newRootCmd()
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	err := root.ExecuteContext(ctx)
	if err == nil {
		return errors.ExitOK
	}

	_, _ = fmt.Fprintf(stderr, "Error: %v\n", err)
	if isUsageError(err) {
		return errors.ExitUsage
	}
	return errors.ExitCode(err)
}
