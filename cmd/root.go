package cmd

import (
	"fmt"
	"os"

	"Blockbuster/server"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "blockbuster",
	Short: "Blockbuster maps NFC tags to playback on Roku players.",
	Run: func(cmd *cobra.Command, args []string) {
		server.Start()
	},
}

// Execute executes the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
