// Package main is the entry point for the autoreflex CLI/TUI.
package main

import (
	"os"

	"github.com/autoreflex/autoreflex/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
