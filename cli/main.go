package main

import (
	"os"

	"github.com/codesearchtools/seeker/cli/cmd"
)

func main() {
	if err := cmd.RootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
