package cmd

import (
	"runtime"

	"github.com/spf13/cobra"
)

// Set with -ldflags "-X github.com/spigell/lead-scorer/cmd.version=...".
var version = "unknown"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	Run: func(cmd *cobra.Command, _ []string) {
		cmd.Printf("%s version: %s (%s)\n", app, version, runtime.Version())
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
