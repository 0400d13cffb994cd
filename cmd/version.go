package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// Overridable with -ldflags "-X .../cmd.version=..." at build time.
var version = "dev"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the jobscout version",
	Run: func(_ *cobra.Command, _ []string) {
		fmt.Printf("%s %s\n", app, version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
