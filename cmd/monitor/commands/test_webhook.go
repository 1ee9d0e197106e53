package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/EdgesSeeker/ma-monitor/internal/alert"
	"github.com/EdgesSeeker/ma-monitor/pkg/config"
	"github.com/EdgesSeeker/ma-monitor/pkg/httputil"
	"github.com/EdgesSeeker/ma-monitor/pkg/logger"
)

// testWebhookCmd represents the test-webhook command
var testWebhookCmd = &cobra.Command{
	Use:   "test-webhook",
	Short: "Send a test message to the alert webhook",
	Long: `Posts a test message to the configured webhook so the
channel setup can be verified before relying on real alerts.

Example:
  ALERT_WEBHOOK_URL=https://discord.com/api/webhooks/... go run ./cmd/monitor test-webhook`,
	RunE: runTestWebhook,
}

func init() {
	rootCmd.AddCommand(testWebhookCmd)
}

func runTestWebhook(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log := logger.New(cfg)
	httpClient := httputil.New(cfg, log)

	notifier, err := alert.NewDiscordNotifier(cfg, httpClient, log)
	if err != nil {
		return fmt.Errorf("create webhook notifier: %w", err)
	}

	if err := notifier.SendTest(cmd.Context()); err != nil {
		return fmt.Errorf("webhook test failed: %w", err)
	}

	fmt.Println("✅ Test message delivered")
	return nil
}
