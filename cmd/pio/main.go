// Package main provides the entry point for the pio CLI.
package main

import (
	"os"

	"github.com/dorukarda/platformio/cmd/pio/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
