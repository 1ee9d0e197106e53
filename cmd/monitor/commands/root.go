package commands

import (
	"github.com/spf13/cobra"
)

var (
	// Global flags
	verbose bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "monitor",
	Short: "Moving average position monitor",
	Long: `MA Monitor CLI

Watches open positions against their moving averages and sends an
exit alert when price crosses to the wrong side.

Usage:
  go run ./cmd/monitor [command]

Examples:
  go run ./cmd/monitor serve
  go run ./cmd/monitor check AAPL long 20
  go run ./cmd/monitor test-webhook`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
