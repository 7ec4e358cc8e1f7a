package cmd

import (
	"context"
	"fmt"
	"time"

	"Blockbuster/config"
	"Blockbuster/core/channel"
	"Blockbuster/core/playback"
	"Blockbuster/core/roku"
	"Blockbuster/logger"

	"github.com/spf13/cobra"
)

var (
	playDevice string
	playURL    string
	playTitle  string
)

// playCmd drives a Roku directly from a pasted browser URL, bypassing the
// library. Handy for testing a channel before writing a tag.
var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Play a browser URL on a Roku",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.Load()
		logger.InitLogger(logger.Config{Level: logger.LogLevel(cfg.LogLevel)})

		device := playDevice
		if device == "" {
			device = cfg.DefaultRokuAddr
		}
		if device == "" {
			return fmt.Errorf("no device given and DEFAULT_ROKU_ADDR not set")
		}
		if playURL == "" {
			return fmt.Errorf("--url is required")
		}

		registry := channel.NewRegistry(
			channel.NewNetflix(),
			channel.NewPrimeVideo(),
			channel.NewDisneyPlus(),
		)

		for _, p := range registry.All() {
			extractor, ok := p.(channel.URLExtractor)
			if !ok {
				continue
			}
			content := extractor.ExtractFromURL(playURL, playTitle, "")
			if content == nil {
				continue
			}
			command, err := p.BuildCommand(*content)
			if err != nil {
				return err
			}
			fmt.Printf("Playing %s content %s on %s\n", p.ChannelName(), content.ContentID, device)
			executor := playback.NewExecutor(roku.NewClient())
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			return executor.Execute(ctx, device, command)
		}
		return fmt.Errorf("no channel recognizes this URL")
	},
}

func init() {
	playCmd.Flags().StringVar(&playDevice, "device", "", "Roku address (host or host:port)")
	playCmd.Flags().StringVar(&playURL, "url", "", "browser URL of the content")
	playCmd.Flags().StringVar(&playTitle, "title", "", "optional title hint for ambiguous URLs")
	rootCmd.AddCommand(playCmd)
}
