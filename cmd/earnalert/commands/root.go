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
	Use:   "earnalert",
	Short: "EarnAlert - earnings-drop daily scan & alerting engine",
	Long: `EarnAlert Unified CLI

Daily scan engine for large single-day price drops on earnings dates.
Opens simulated positions on qualifying drops, closes them on stop-loss
or time exit, and emits exactly-once notification events.

Usage:
  go run ./cmd/earnalert [command]

Examples:
  go run ./cmd/earnalert api
  go run ./cmd/earnalert scan --as-of 2025-12-01
  go run ./cmd/earnalert alerts pending
  go run ./cmd/earnalert init-db`,
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
