package alert

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/EdgesSeeker/ma-monitor/internal/monitor"
	"github.com/EdgesSeeker/ma-monitor/pkg/config"
	"github.com/EdgesSeeker/ma-monitor/pkg/httputil"
	"github.com/EdgesSeeker/ma-monitor/pkg/logger"
)

func newDiscordNotifier(t *testing.T, webhookURL string) *DiscordNotifier {
	t.Helper()
	cfg := &config.Config{
		Webhook: config.WebhookConfig{
			URL:      webhookURL,
			Username: "MA Monitor",
			Timezone: "Europe/Berlin",
		},
	}
	httpClient := httputil.New(cfg, logger.NewNop()).DisableRetry()
	n, err := NewDiscordNotifier(cfg, httpClient, logger.NewNop())
	require.NoError(t, err)
	return n
}

func testAlert() monitor.Alert {
	return monitor.Alert{
		PositionID:  "p1",
		Symbol:      "AAPL",
		Direction:   monitor.DirectionLong,
		MAPeriod:    "20",
		Price:       146.25,
		MAValue:     148.1,
		Source:      "YAHOO",
		TriggeredAt: time.Date(2026, 8, 26, 16, 30, 0, 0, time.UTC),
	}
}

func TestDiscordNotifyPostsPayload(t *testing.T) {
	var payload map[string]string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	n := newDiscordNotifier(t, server.URL)

	require.NoError(t, n.Notify(context.Background(), testAlert()))
	assert.Equal(t, "MA Monitor", payload["username"])
	assert.Contains(t, payload["content"], "SELL SIGNAL: AAPL")
	assert.Contains(t, payload["content"], "146.25")
}

func TestDiscordNotifyErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer server.Close()

	n := newDiscordNotifier(t, server.URL)

	err := n.Notify(context.Background(), testAlert())
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "400")
}

func TestDiscordDisabledWithoutURL(t *testing.T) {
	n := newDiscordNotifier(t, "")

	assert.False(t, n.Enabled())
	assert.NoError(t, n.Notify(context.Background(), testAlert()))
	assert.Error(t, n.SendTest(context.Background()))
}

func TestFormatMessage(t *testing.T) {
	n := newDiscordNotifier(t, "")

	msg := n.FormatMessage(testAlert())
	assert.Contains(t, msg, "🚨 SELL SIGNAL: AAPL")
	assert.Contains(t, msg, "📊 Price 146.25 dropped below the MA(20) at 148.10")
	assert.Contains(t, msg, "Source: YAHOO")
	// 16:30 UTC is 18:30 in Berlin during summer time
	assert.Contains(t, msg, "18:30")
}

func TestFormatMessageShort(t *testing.T) {
	n := newDiscordNotifier(t, "")

	alert := testAlert()
	alert.Direction = monitor.DirectionShort
	alert.Symbol = "TSLA"
	alert.Price = 445.5
	alert.MAValue = 440.2

	msg := n.FormatMessage(alert)
	assert.Contains(t, msg, "🚨 BUY SIGNAL: TSLA")
	assert.Contains(t, msg, "rose above")
}
