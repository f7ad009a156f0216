// Package main provides the recsnap CLI entrypoint.
package main

import (
	"fmt"
	"os"

	"github.com/roach88/recsnap/internal/cli"
)

func main() {
	cmd := cli.NewRootCommand()
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(cli.GetExitCode(err))
	}
}
