package cmd

import (
	"context"
	"fmt"
	"time"

	"Blockbuster/core/roku"

	"github.com/spf13/cobra"
)

var discoverWait int

var discoverCmd = &cobra.Command{
	Use:   "discover",
	Short: "Scan the local network for Roku players",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithTimeout(context.Background(), time.Duration(discoverWait+2)*time.Second)
		defer cancel()

		devices, err := roku.Discover(ctx, time.Duration(discoverWait)*time.Second)
		if err != nil && len(devices) == 0 {
			return err
		}
		if len(devices) == 0 {
			fmt.Println("No Roku players found.")
			return nil
		}

		client := roku.NewClient()
		for _, d := range devices {
			line := d.Addr
			if info, err := client.QueryDeviceInfo(ctx, d.Addr); err == nil {
				line = fmt.Sprintf("%s  %s (%s)", d.Addr, info.FriendlyName, info.ModelName)
			}
			fmt.Println(line)
		}
		return nil
	},
}

func init() {
	discoverCmd.Flags().IntVar(&discoverWait, "wait", 3, "seconds to wait for SSDP responses")
	rootCmd.AddCommand(discoverCmd)
}
