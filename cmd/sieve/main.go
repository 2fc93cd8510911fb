// Command sieve filters, sorts and pages records described by a CUE schema.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/roach88/sieve/internal/cli"
)

func main() {
	err := cli.NewRootCommand().Execute()
	if err != nil {
		// Commands report their own failures; only cobra's argument and
		// flag errors reach here unprinted.
		var exitErr *cli.ExitError
		if !errors.As(err, &exitErr) {
			fmt.Fprintln(os.Stderr, "Error:", err)
			os.Exit(cli.ExitCommandError)
		}
	}
	os.Exit(cli.GetExitCode(err))
}
