package commands

import (
	"fmt"

	"github.com/spf13/cobra"
	"golang.org/x/time/rate"

	"github.com/EdgesSeeker/ma-monitor/internal/marketdata"
	"github.com/EdgesSeeker/ma-monitor/internal/monitor"
	"github.com/EdgesSeeker/ma-monitor/pkg/config"
	"github.com/EdgesSeeker/ma-monitor/pkg/httputil"
	"github.com/EdgesSeeker/ma-monitor/pkg/logger"
)

// checkCmd represents the check command
var checkCmd = &cobra.Command{
	Use:   "check SYMBOL DIRECTION MA_PERIOD",
	Short: "Check one symbol against its moving average",
	Long: `Fetches a snapshot for the symbol and evaluates the exit
signal once, without starting the monitor loop.

Example:
  go run ./cmd/monitor check AAPL long 20
  go run ./cmd/monitor check TSLA short 30/10`,
	Args: cobra.ExactArgs(3),
	RunE: runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)
}

func runCheck(cmd *cobra.Command, args []string) error {
	symbol := args[0]

	direction, err := monitor.ParseDirection(args[1])
	if err != nil {
		return err
	}

	period := marketdata.MAPeriod(args[2])
	if !period.Valid() {
		return fmt.Errorf("invalid ma period %q", args[2])
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if !verbose {
		cfg.LogLevel = "warn"
	}

	log := logger.New(cfg)

	httpClient := httputil.New(cfg, log).
		WithRateLimiter(rate.NewLimiter(rate.Limit(5), 5))

	yahoo := marketdata.NewYahooClient(cfg, httpClient, log)
	alphaVantage := marketdata.NewAlphaVantageClient(cfg, httpClient, log)
	cache := marketdata.NewMemoryCache(cfg.Monitor.CacheTTL)
	gateway := marketdata.NewGateway(yahoo, alphaVantage, cache, log)

	snap := gateway.FetchSnapshot(cmd.Context(), symbol, period)
	signal := monitor.Evaluate(direction, snap.CurrentPrice, snap.MAValue)

	fmt.Printf("Symbol:    %s\n", snap.Symbol)
	fmt.Printf("Direction: %s\n", direction)
	fmt.Printf("Price:     %.2f\n", snap.CurrentPrice)
	fmt.Printf("MA(%s):    %.2f\n", period, snap.MAValue)
	fmt.Printf("Source:    %s", snap.Source)
	if snap.Degraded {
		fmt.Print(" (degraded)")
	}
	if snap.Stale {
		fmt.Print(" (stale)")
	}
	fmt.Println()

	if signal {
		fmt.Println("\n🚨 Exit signal is ACTIVE")
	} else {
		fmt.Println("\n✅ No exit signal")
	}

	return nil
}
