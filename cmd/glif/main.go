// Package main is the entry point for the glif CLI tool.
package main

import (
	"os"

	"github.com/jfschaefer/GLIFcore/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
