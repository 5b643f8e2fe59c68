// Package main is the entry point for the comps CLI.
package main

import (
	"fmt"
	"os"

	"hotel-comparables-engine/internal/cli"
)

func main() {
	if err := cli.NewRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}
