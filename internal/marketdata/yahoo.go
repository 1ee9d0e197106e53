package marketdata

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"strings"
	"time"

	"github.com/EdgesSeeker/ma-monitor/pkg/config"
	"github.com/EdgesSeeker/ma-monitor/pkg/httputil"
	"github.com/EdgesSeeker/ma-monitor/pkg/logger"
)

const (
	quoteTimeout   = 10 * time.Second
	historyTimeout = 15 * time.Second

	// Yahoo rejects requests without a browser-like agent
	yahooUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"
)

// YahooClient fetches quotes and historical bars from the Yahoo
// Finance v8 chart API. Every call is tried against the direct URL
// first and then against each configured pass-through route in order,
// stopping at the first success.
type YahooClient struct {
	httpClient *httputil.Client
	baseURL    string
	routes     []string
	logger     *logger.Logger
}

// NewYahooClient creates a new Yahoo Finance client
func NewYahooClient(cfg *config.Config, httpClient *httputil.Client, log *logger.Logger) *YahooClient {
	return &YahooClient{
		httpClient: httpClient,
		baseURL:    cfg.Yahoo.BaseURL,
		routes:     cfg.Yahoo.ProxyRoutes,
		logger:     log,
	}
}

// chartResponse mirrors the subset of the v8 chart payload we need
type chartResponse struct {
	Chart struct {
		Result []struct {
			Meta struct {
				RegularMarketPrice *float64 `json:"regularMarketPrice"`
				PreviousClose      *float64 `json:"previousClose"`
			} `json:"meta"`
			Indicators struct {
				Quote []struct {
					Close []*float64 `json:"close"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
	} `json:"chart"`
}

// CurrentPrice fetches the latest regular market price for a symbol
func (c *YahooClient) CurrentPrice(ctx context.Context, symbol string) (float64, error) {
	target := fmt.Sprintf("%s/v8/finance/chart/%s", c.baseURL, strings.ToUpper(symbol))

	resp, err := c.fetchChart(ctx, target, quoteTimeout)
	if err != nil {
		return 0, err
	}

	meta := resp.Chart.Result[0].Meta
	if meta.RegularMarketPrice != nil {
		return *meta.RegularMarketPrice, nil
	}
	if meta.PreviousClose != nil {
		return *meta.PreviousClose, nil
	}

	return 0, fmt.Errorf("no price data for %s", symbol)
}

// HistoricalCloses fetches a close-price series for the symbol sized
// to at least 2x the period, so the average survives gaps and
// holidays in the series.
func (c *YahooClient) HistoricalCloses(ctx context.Context, symbol string, period int, interval Interval) ([]float64, error) {
	rangeDays := 2 * period
	if rangeDays < 30 {
		rangeDays = 30
	}

	target := fmt.Sprintf("%s/v8/finance/chart/%s?interval=%s&range=%dd",
		c.baseURL, strings.ToUpper(symbol), interval, rangeDays)

	resp, err := c.fetchChart(ctx, target, historyTimeout)
	if err != nil {
		return nil, err
	}

	quotes := resp.Chart.Result[0].Indicators.Quote
	if len(quotes) == 0 {
		return nil, fmt.Errorf("no historical data for %s", symbol)
	}

	closes := make([]float64, 0, len(quotes[0].Close))
	for _, price := range quotes[0].Close {
		if price != nil {
			closes = append(closes, *price)
		}
	}

	if len(closes) == 0 {
		return nil, fmt.Errorf("no historical data for %s", symbol)
	}

	// Keep the most recent 2x period samples
	if len(closes) > 2*period {
		closes = closes[len(closes)-2*period:]
	}

	return closes, nil
}

// fetchChart tries the direct URL and every proxy route until one
// returns a parseable chart payload with at least one result.
func (c *YahooClient) fetchChart(ctx context.Context, target string, timeout time.Duration) (*chartResponse, error) {
	var lastErr error

	for _, route := range c.buildRoutes(target) {
		resp, err := c.fetchChartOnce(ctx, route, timeout)
		if err != nil {
			c.logger.WithError(err).WithField("route", route).Debug("Chart route failed")
			lastErr = err
			continue
		}
		return resp, nil
	}

	return nil, fmt.Errorf("all routes failed for %s: %w", target, lastErr)
}

func (c *YahooClient) fetchChartOnce(ctx context.Context, route string, timeout time.Duration) (*chartResponse, error) {
	reqCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	httpResp, err := c.httpClient.GetWithHeaders(reqCtx, route, map[string]string{
		"Accept":     "application/json",
		"User-Agent": yahooUserAgent,
	})
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode != 200 {
		return nil, fmt.Errorf("unexpected status %d", httpResp.StatusCode)
	}

	body, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}

	var resp chartResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("unmarshal chart response: %w", err)
	}

	if len(resp.Chart.Result) == 0 {
		return nil, fmt.Errorf("empty chart result")
	}

	return &resp, nil
}

// buildRoutes returns the direct URL followed by each proxy route with
// the target appended URL-encoded.
func (c *YahooClient) buildRoutes(target string) []string {
	routes := make([]string, 0, len(c.routes)+1)
	routes = append(routes, target)
	for _, proxy := range c.routes {
		routes = append(routes, proxy+url.QueryEscape(target))
	}
	return routes
}
