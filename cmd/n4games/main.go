// Package main is the entry point for the n4games widget catalog.
// This is a thin wrapper around the cli package.
package main

import (
	"os"

	"github.com/zot/n4games/cli"
)

func main() {
	os.Exit(cli.Run(os.Args[1:]))
}
