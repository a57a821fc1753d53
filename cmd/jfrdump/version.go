package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

// This will be set by goreleaser.
var version = "dev"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("jfrdump version %s\n", version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
