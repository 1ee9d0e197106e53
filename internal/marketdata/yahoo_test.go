package marketdata

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/EdgesSeeker/ma-monitor/pkg/config"
	"github.com/EdgesSeeker/ma-monitor/pkg/httputil"
	"github.com/EdgesSeeker/ma-monitor/pkg/logger"
)

func newYahooTestClient(baseURL string, routes []string) *YahooClient {
	cfg := &config.Config{
		Yahoo: config.YahooConfig{BaseURL: baseURL, ProxyRoutes: routes},
	}
	httpClient := httputil.New(cfg, logger.NewNop()).DisableRetry()
	return NewYahooClient(cfg, httpClient, logger.NewNop())
}

func chartBody(price float64, closes string) string {
	return fmt.Sprintf(`{"chart":{"result":[{
		"meta":{"regularMarketPrice":%g,"previousClose":149.5},
		"indicators":{"quote":[{"close":[%s]}]}
	}]}}`, price, closes)
}

func TestYahooCurrentPrice(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v8/finance/chart/AAPL", r.URL.Path)
		fmt.Fprint(w, chartBody(150.25, ""))
	}))
	defer server.Close()

	client := newYahooTestClient(server.URL, nil)

	price, err := client.CurrentPrice(context.Background(), "aapl")
	require.NoError(t, err)
	assert.Equal(t, 150.25, price)
}

func TestYahooCurrentPriceFallsBackToPreviousClose(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"chart":{"result":[{"meta":{"previousClose":149.5}}]}}`)
	}))
	defer server.Close()

	client := newYahooTestClient(server.URL, nil)

	price, err := client.CurrentPrice(context.Background(), "AAPL")
	require.NoError(t, err)
	assert.Equal(t, 149.5, price)
}

func TestYahooHistoricalCloses(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "1d", r.URL.Query().Get("interval"))
		assert.Equal(t, "40d", r.URL.Query().Get("range"))
		fmt.Fprint(w, chartBody(150, "148.1,null,149.2,150.3"))
	}))
	defer server.Close()

	client := newYahooTestClient(server.URL, nil)

	closes, err := client.HistoricalCloses(context.Background(), "AAPL", 20, IntervalDaily)
	require.NoError(t, err)
	assert.Equal(t, []float64{148.1, 149.2, 150.3}, closes)
}

func TestYahooHistoryRangeFloor(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// 2x a 5 period window is below the 30 day floor
		assert.Equal(t, "30d", r.URL.Query().Get("range"))
		fmt.Fprint(w, chartBody(150, "148,149,150"))
	}))
	defer server.Close()

	client := newYahooTestClient(server.URL, nil)

	_, err := client.HistoricalCloses(context.Background(), "AAPL", 5, IntervalDaily)
	require.NoError(t, err)
}

func TestYahooHistoryTrimsToWindow(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, chartBody(150, "1,2,3,4,5,6,7,8,9,10"))
	}))
	defer server.Close()

	client := newYahooTestClient(server.URL, nil)

	closes, err := client.HistoricalCloses(context.Background(), "AAPL", 3, IntervalDaily)
	require.NoError(t, err)
	assert.Equal(t, []float64{5, 6, 7, 8, 9, 10}, closes)
}

func TestYahooFailsOverToProxyRoute(t *testing.T) {
	proxied := 0
	proxy := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		proxied++
		assert.NotEmpty(t, r.URL.Query().Get("url"))
		fmt.Fprint(w, chartBody(150.25, ""))
	}))
	defer proxy.Close()

	direct := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer direct.Close()

	client := newYahooTestClient(direct.URL, []string{proxy.URL + "/raw?url="})

	price, err := client.CurrentPrice(context.Background(), "AAPL")
	require.NoError(t, err)
	assert.Equal(t, 150.25, price)
	assert.Equal(t, 1, proxied)
}

func TestYahooAllRoutesFail(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	client := newYahooTestClient(server.URL, nil)

	_, err := client.CurrentPrice(context.Background(), "AAPL")
	assert.Error(t, err)
}

func TestYahooSendsBrowserUserAgent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.Header.Get("User-Agent"), "Mozilla")
		fmt.Fprint(w, chartBody(150, ""))
	}))
	defer server.Close()

	client := newYahooTestClient(server.URL, nil)

	_, err := client.CurrentPrice(context.Background(), "AAPL")
	require.NoError(t, err)
}
