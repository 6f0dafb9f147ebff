package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"

	"github.com/example/bellhop/internal/cli"
	"github.com/example/bellhop/internal/version"
)

func main() {
	rootCmd := cli.RootCmd(version.String())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, color.RedString("Error:"), err)
		os.Exit(1)
	}
}
