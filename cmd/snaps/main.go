// Command snaps is a command-line client for the Snaps gateway.
package main

import (
	"os"
)

var (
	version   = "dev"
	buildDate = "unknown"
)

func main() {
	if err := NewRootCommand(version + " (" + buildDate + ")").Execute(); err != nil {
		os.Exit(1)
	}
}
