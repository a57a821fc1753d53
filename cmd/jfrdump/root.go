package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "jfrdump",
	Short: "Inspect Java Flight Recorder (.jfr) recordings",
	Long:  `jfrdump reads .jfr recordings chunk by chunk and reports what's inside them.`,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
