package main

import (
	"os"

	"github.com/EdgesSeeker/ma-monitor/cmd/monitor/commands"
)

// main is the entry point for the monitor CLI
func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
