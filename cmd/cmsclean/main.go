// Package main is the entry point for the cmsclean CLI.
package main

import (
	"os"

	"github.com/jmylchreest/cmsclean/cmd/cmsclean/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
