// Package main is the entry point for salesload.
package main

import (
	"os"

	"github.com/retailbase/salesload/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
