package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/pugetworks/healthmap-cli/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "healthmap",
	Short: "King County restaurant inspection map builder",
	Long:  "Fetches the county food-safety inspection results page, extracts per-restaurant score statistics, geocodes each address, and emits a ranked GeoJSON FeatureCollection.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
