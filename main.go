// Package main is the entry point for the tracklight CLI.
package main

import (
	"fmt"
	"os"

	"github.com/tracklight/tracklight/cmd"
	"github.com/tracklight/tracklight/internal/logging"
)

func main() {
	if err := cmd.Execute(); err != nil {
		logging.Error("command execution failed", "error", err)
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
