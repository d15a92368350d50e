// Package main is the entry point for the gtnctl offline tool.
package main

import (
	"os"

	"GtnPortal/cmd/gtnctl/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
