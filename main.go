// Package main is the entry point for the rlmon radio link monitor.
package main

import (
	"fmt"
	"os"

	"groundlink.io/rlmon/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
