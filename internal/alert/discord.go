package alert

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/EdgesSeeker/ma-monitor/internal/monitor"
	"github.com/EdgesSeeker/ma-monitor/pkg/config"
	"github.com/EdgesSeeker/ma-monitor/pkg/httputil"
	"github.com/EdgesSeeker/ma-monitor/pkg/logger"
)

// DiscordNotifier posts alerts to a Discord webhook. With no webhook
// URL configured it is disabled and every Notify is a no-op.
type DiscordNotifier struct {
	httpClient *httputil.Client
	webhookURL string
	username   string
	location   *time.Location
	logger     *logger.Logger
}

// NewDiscordNotifier creates a webhook notifier from config
func NewDiscordNotifier(cfg *config.Config, httpClient *httputil.Client, log *logger.Logger) (*DiscordNotifier, error) {
	loc, err := time.LoadLocation(cfg.Webhook.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid alert timezone: %w", err)
	}

	return &DiscordNotifier{
		httpClient: httpClient,
		webhookURL: cfg.Webhook.URL,
		username:   cfg.Webhook.Username,
		location:   loc,
		logger:     log,
	}, nil
}

// Enabled reports whether a webhook URL was configured
func (n *DiscordNotifier) Enabled() bool {
	return n.webhookURL != ""
}

// Notify posts the alert message to the webhook
func (n *DiscordNotifier) Notify(ctx context.Context, alert monitor.Alert) error {
	if !n.Enabled() {
		n.logger.WithField("symbol", alert.Symbol).Debug("No webhook configured, alert not delivered")
		return nil
	}

	payload := map[string]string{
		"content":  n.FormatMessage(alert),
		"username": n.username,
	}

	resp, err := n.httpClient.PostJSON(ctx, n.webhookURL, payload)
	if err != nil {
		return fmt.Errorf("webhook request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}

	n.logger.WithField("symbol", alert.Symbol).Info("Alert delivered to webhook")
	return nil
}

// FormatMessage renders the alert text posted to the webhook
func (n *DiscordNotifier) FormatMessage(alert monitor.Alert) string {
	signal := "SELL SIGNAL"
	crossed := "dropped below"
	if alert.Direction == monitor.DirectionShort {
		signal = "BUY SIGNAL"
		crossed = "rose above"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "🚨 %s: %s\n", signal, alert.Symbol)
	fmt.Fprintf(&b, "📊 Price %.2f %s the MA(%s) at %.2f\n", alert.Price, crossed, alert.MAPeriod, alert.MAValue)
	fmt.Fprintf(&b, "Source: %s\n", alert.Source)
	fmt.Fprintf(&b, "Time: %s", alert.TriggeredAt.In(n.location).Format("2006-01-02 15:04 MST"))
	return b.String()
}

// SendTest posts a test message to verify the webhook end to end
func (n *DiscordNotifier) SendTest(ctx context.Context) error {
	if !n.Enabled() {
		return fmt.Errorf("no webhook URL configured")
	}

	payload := map[string]string{
		"content":  "✅ Webhook test: the position monitor can reach this channel.",
		"username": n.username,
	}

	resp, err := n.httpClient.PostJSON(ctx, n.webhookURL, payload)
	if err != nil {
		return fmt.Errorf("webhook request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}

	return nil
}
