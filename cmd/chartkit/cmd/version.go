package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

const version = "0.3.0"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Long:  `Display the current version of the chartkit CLI.`,
	Run: func(cmd *cobra.Command, args []string) {
		w := cmd.OutOrStdout()
		fmt.Fprintf(w, "chartkit version %s\n", version)
		fmt.Fprintln(w, "Candlestick chart analytics: indicators, patterns, drawings, viewport")
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
