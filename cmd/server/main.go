// Package main implements the entry point for the registry API server,
// which stores person records and serves age-derived dashboard statistics.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
