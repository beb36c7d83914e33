// Package main is the entry point for the bshim CLI.
package main

import (
	"github.com/joelfokou/buildshim/cmd"
)

func main() {
	cmd.Execute()
}
