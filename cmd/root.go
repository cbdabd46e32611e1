package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/camatlas/camatlas/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "camatlas",
	Short: "CCTV operator atlas pipeline",
	Long:  "Builds a UK CCTV operator atlas: imports the ICO register of fee payers, classifies likely camera operators, and geolocates their estates via OpenStreetMap.",
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
