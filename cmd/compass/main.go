package main

import (
	"os"

	"github.com/quantora/compass/cmd/compass/commands"
)

// main is the entry point for the Compass CLI
func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
