// Package main is the entry point for the labwatch CLI.
package main

import (
	"os"

	"github.com/watchfire-io/labwatch/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
