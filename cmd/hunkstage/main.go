// Package main provides the entry point for the hunkstage CLI.
package main

import (
	"fmt"
	"os"

	"github.com/Sumatoshi-tech/hunkstage/cmd/hunkstage/commands"
	"github.com/Sumatoshi-tech/hunkstage/pkg/version"
)

func main() {
	version.InitBinaryVersion()

	err := commands.NewRootCommand().Execute()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
