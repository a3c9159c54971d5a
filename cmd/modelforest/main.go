// Package main provides the CLI for modelforest.
package main

import (
	"os"

	"github.com/leapstack-labs/modelforest/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
