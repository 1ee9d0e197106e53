package marketdata

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Interval represents the bar size of a historical price series
type Interval string

const (
	IntervalDaily Interval = "1d"
	Interval30Min Interval = "30m"
	Interval5Min  Interval = "5m"
)

// MAPeriod is the user-facing moving average period encoding. Plain
// integers ("5", "10", "20", "50") mean N daily bars. The composite
// form "bar/period" means period bars of an intraday size, e.g.
// "30/10" is a 10-period average over 30-minute bars and "5/50" is a
// 50-period average over 5-minute bars.
type MAPeriod string

// Resolve returns the effective lookback period and bar interval.
func (p MAPeriod) Resolve() (int, Interval, error) {
	s := strings.TrimSpace(string(p))

	if bar, rest, found := strings.Cut(s, "/"); found {
		period, err := strconv.Atoi(rest)
		if err != nil || period <= 0 {
			return 0, "", fmt.Errorf("invalid ma period %q", p)
		}

		switch bar {
		case "30":
			return period, Interval30Min, nil
		case "5":
			return period, Interval5Min, nil
		default:
			return 0, "", fmt.Errorf("unsupported bar size in ma period %q", p)
		}
	}

	period, err := strconv.Atoi(s)
	if err != nil || period <= 0 {
		return 0, "", fmt.Errorf("invalid ma period %q", p)
	}
	return period, IntervalDaily, nil
}

// Valid reports whether the encoding can be resolved.
func (p MAPeriod) Valid() bool {
	_, _, err := p.Resolve()
	return err == nil
}

// Source identifies where snapshot data came from
type Source string

const (
	SourceYahoo        Source = "YAHOO"
	SourceAlphaVantage Source = "ALPHAVANTAGE"
	SourceSynthetic    Source = "SYNTHETIC"
)

// Snapshot is one observation of a symbol: last traded price plus the
// trailing moving average for the requested period.
type Snapshot struct {
	Symbol       string    `json:"symbol"`
	CurrentPrice float64   `json:"current_price"`
	MAValue      float64   `json:"ma_value"`
	MAPeriod     MAPeriod  `json:"ma_period"`
	Source       Source    `json:"source"`
	Degraded     bool      `json:"degraded"` // synthesized locally, not real market data
	Stale        bool      `json:"stale"`    // served from cache past its freshness window
	FetchedAt    time.Time `json:"fetched_at"`
}

// Key returns the cache key for a symbol + period combination
func Key(symbol string, period MAPeriod) string {
	return strings.ToUpper(symbol) + "_" + string(period)
}
