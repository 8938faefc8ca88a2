package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// Version is stamped at build time via -ldflags.
var Version = "dev"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the concierge version",
	Run: func(_ *cobra.Command, _ []string) {
		fmt.Println("concierge", Version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
