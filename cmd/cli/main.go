// Package main is the entry point for the uhe CLI binary.
package main

import (
	"os"

	cli "uhe-console/pkg/cli"
)

func main() {
	os.Exit(cli.Execute())
}
