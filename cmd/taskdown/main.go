package main

import (
	"fmt"
	"os"

	"github.com/KeMezz/taskdown/internal/cli"
)

// Version information (set via ldflags during build)
var (
	version   = "dev"
	buildTime = "unknown"
)

func main() {
	cmd := cli.NewRootCommand(version, buildTime)
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(cli.GetExitCode(err))
	}
}
