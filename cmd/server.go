package cmd

import (
	"Blockbuster/server"

	"github.com/spf13/cobra"
)

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Start the Blockbuster HTTP server",
	Long:  "Start the HTTP server that serves the management API and accepts play requests from NFC readers.",
	Run: func(cmd *cobra.Command, args []string) {
		server.Start()
	},
}

func init() {
	rootCmd.AddCommand(serverCmd)
}
