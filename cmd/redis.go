package cmd

import (
	"fmt"

	"Blockbuster/cache"
	"Blockbuster/config"

	"github.com/spf13/cobra"
)

var redisCmd = &cobra.Command{
	Use:   "redis",
	Short: "Verify the Redis connection",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.Load()
		if err := cache.ConnectRedis(cfg); err != nil {
			return err
		}
		defer cache.CloseRedis()
		if err := cache.TestRedis(); err != nil {
			return err
		}
		fmt.Println("Redis connection OK.")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(redisCmd)
}
