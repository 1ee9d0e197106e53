package marketdata

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/EdgesSeeker/ma-monitor/pkg/config"
	"github.com/EdgesSeeker/ma-monitor/pkg/httputil"
	"github.com/EdgesSeeker/ma-monitor/pkg/logger"
)

// AlphaVantageClient is the backup quote and SMA provider. It only
// serves daily data, so intraday periods fall through to the next
// tier in the gateway.
type AlphaVantageClient struct {
	httpClient *httputil.Client
	baseURL    string
	apiKey     string
	logger     *logger.Logger
}

// NewAlphaVantageClient creates a new Alpha Vantage client
func NewAlphaVantageClient(cfg *config.Config, httpClient *httputil.Client, log *logger.Logger) *AlphaVantageClient {
	return &AlphaVantageClient{
		httpClient: httpClient,
		baseURL:    cfg.AlphaVantage.BaseURL,
		apiKey:     cfg.AlphaVantage.APIKey,
		logger:     log,
	}
}

// Enabled reports whether an API key was configured
func (c *AlphaVantageClient) Enabled() bool {
	return c.apiKey != ""
}

// CurrentPrice fetches the latest quote via the GLOBAL_QUOTE function
func (c *AlphaVantageClient) CurrentPrice(ctx context.Context, symbol string) (float64, error) {
	if !c.Enabled() {
		return 0, fmt.Errorf("alpha vantage disabled: no API key")
	}

	target := fmt.Sprintf("%s/query?function=GLOBAL_QUOTE&symbol=%s&apikey=%s",
		c.baseURL, strings.ToUpper(symbol), c.apiKey)

	body, err := c.fetch(ctx, target)
	if err != nil {
		return 0, err
	}

	var resp struct {
		GlobalQuote map[string]string `json:"Global Quote"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return 0, fmt.Errorf("unmarshal quote response: %w", err)
	}

	priceStr, ok := resp.GlobalQuote["05. price"]
	if !ok || priceStr == "" {
		return 0, fmt.Errorf("no quote for %s", symbol)
	}

	price, err := strconv.ParseFloat(priceStr, 64)
	if err != nil || price <= 0 {
		return 0, fmt.Errorf("invalid quote %q for %s", priceStr, symbol)
	}

	return price, nil
}

// SMA fetches the latest daily simple moving average for the period.
// The response maps ISO dates to values; the lexicographically largest
// date is the most recent one.
func (c *AlphaVantageClient) SMA(ctx context.Context, symbol string, period int) (float64, error) {
	if !c.Enabled() {
		return 0, fmt.Errorf("alpha vantage disabled: no API key")
	}

	target := fmt.Sprintf("%s/query?function=SMA&symbol=%s&interval=daily&time_period=%d&series_type=close&apikey=%s",
		c.baseURL, strings.ToUpper(symbol), period, c.apiKey)

	body, err := c.fetch(ctx, target)
	if err != nil {
		return 0, err
	}

	var resp struct {
		Analysis map[string]struct {
			SMA string `json:"SMA"`
		} `json:"Technical Analysis: SMA"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return 0, fmt.Errorf("unmarshal sma response: %w", err)
	}

	if len(resp.Analysis) == 0 {
		return 0, fmt.Errorf("no sma data for %s", symbol)
	}

	latest := ""
	for date := range resp.Analysis {
		if date > latest {
			latest = date
		}
	}

	value, err := strconv.ParseFloat(resp.Analysis[latest].SMA, 64)
	if err != nil || value <= 0 {
		return 0, fmt.Errorf("invalid sma %q for %s", resp.Analysis[latest].SMA, symbol)
	}

	return value, nil
}

func (c *AlphaVantageClient) fetch(ctx context.Context, target string) ([]byte, error) {
	reqCtx, cancel := context.WithTimeout(ctx, quoteTimeout)
	defer cancel()

	resp, err := c.httpClient.Get(reqCtx, target)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}

	// The free tier returns 200 with a "Note" body when throttled
	var note struct {
		Note        string `json:"Note"`
		Information string `json:"Information"`
	}
	if err := json.Unmarshal(body, &note); err == nil {
		if note.Note != "" || note.Information != "" {
			return nil, fmt.Errorf("rate limited by alpha vantage")
		}
	}

	return body, nil
}
