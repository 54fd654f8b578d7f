package commands

import (
	"github.com/spf13/cobra"
)

var (
	// Global flags
	configFile string
	env        string
	verbose    bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "compass",
	Short: "Compass - news sentiment calibration and decision engine",
	Long: `Compass Unified CLI

Pulls classified news sentiment signals, calibrates them against realized
next-day sector moves, and answers directional queries (UP / DOWN /
NO_IMPACT) for sectors and tickers.

Usage:
  go run ./cmd/compass [command]

Examples:
  go run ./cmd/compass api
  go run ./cmd/compass calibrate --date 2025-05-14
  go run ./cmd/compass decide sector it-technology
  go run ./cmd/compass test-db`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file (default is .env)")
	rootCmd.PersistentFlags().StringVar(&env, "env", "development", "environment (development|staging|production)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
