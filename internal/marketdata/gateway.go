package marketdata

import (
	"context"
	"strings"
	"time"

	"github.com/EdgesSeeker/ma-monitor/internal/indicator"
	"github.com/EdgesSeeker/ma-monitor/pkg/logger"
)

// primaryProvider is the Yahoo-shaped data source
type primaryProvider interface {
	CurrentPrice(ctx context.Context, symbol string) (float64, error)
	HistoricalCloses(ctx context.Context, symbol string, period int, interval Interval) ([]float64, error)
}

// backupProvider is the Alpha Vantage-shaped data source. It can only
// serve daily averages.
type backupProvider interface {
	Enabled() bool
	CurrentPrice(ctx context.Context, symbol string) (float64, error)
	SMA(ctx context.Context, symbol string, period int) (float64, error)
}

// Gateway resolves snapshots through a fixed failover chain:
// fresh cache, primary provider, backup provider, stale cache,
// synthetic. It never returns an error; the worst case is a degraded
// snapshot flagged as such.
// SSOT: the monitor reads market data only through this gateway
type Gateway struct {
	primary primaryProvider
	backup  backupProvider
	cache   SnapshotCache
	logger  *logger.Logger
}

// NewGateway creates a gateway over the given providers and cache
func NewGateway(primary primaryProvider, backup backupProvider, cache SnapshotCache, log *logger.Logger) *Gateway {
	return &Gateway{
		primary: primary,
		backup:  backup,
		cache:   cache,
		logger:  log,
	}
}

// FetchSnapshot returns the best available snapshot for the symbol
// and period. Real data is cached; stale and synthetic results are
// never written back.
func (g *Gateway) FetchSnapshot(ctx context.Context, symbol string, period MAPeriod) Snapshot {
	symbol = strings.ToUpper(symbol)
	key := Key(symbol, period)

	if snap, ok := g.cache.Get(ctx, key); ok {
		return snap
	}

	n, interval, err := period.Resolve()
	if err != nil {
		g.logger.WithError(err).WithField("symbol", symbol).Warn("Unresolvable MA period, serving synthetic data")
		return Synthetic(symbol, period)
	}

	if snap, ok := g.fromPrimary(ctx, symbol, period, n, interval); ok {
		g.cache.Put(ctx, key, snap)
		return snap
	}

	if snap, ok := g.fromBackup(ctx, symbol, period, n, interval); ok {
		g.cache.Put(ctx, key, snap)
		return snap
	}

	if snap, ok := g.cache.GetStale(ctx, key); ok {
		g.logger.WithField("symbol", symbol).Warn("All providers failed, serving stale snapshot")
		snap.Stale = true
		return snap
	}

	g.logger.WithField("symbol", symbol).Warn("All providers failed and no cached data, serving synthetic data")
	return Synthetic(symbol, period)
}

func (g *Gateway) fromPrimary(ctx context.Context, symbol string, period MAPeriod, n int, interval Interval) (Snapshot, bool) {
	price, err := g.primary.CurrentPrice(ctx, symbol)
	if err != nil {
		g.logger.WithError(err).WithField("symbol", symbol).Debug("Primary quote failed")
		return Snapshot{}, false
	}

	closes, err := g.primary.HistoricalCloses(ctx, symbol, n, interval)
	if err != nil {
		g.logger.WithError(err).WithField("symbol", symbol).Debug("Primary history failed")
		return Snapshot{}, false
	}

	ma := indicator.MovingAverage(closes, n)
	if ma <= 0 {
		g.logger.WithField("symbol", symbol).Debug("Primary history produced no usable average")
		return Snapshot{}, false
	}

	return Snapshot{
		Symbol:       symbol,
		CurrentPrice: round2(price),
		MAValue:      round2(ma),
		MAPeriod:     period,
		Source:       SourceYahoo,
		FetchedAt:    time.Now(),
	}, true
}

func (g *Gateway) fromBackup(ctx context.Context, symbol string, period MAPeriod, n int, interval Interval) (Snapshot, bool) {
	if g.backup == nil || !g.backup.Enabled() {
		return Snapshot{}, false
	}

	// Backup only serves daily averages
	if interval != IntervalDaily {
		return Snapshot{}, false
	}

	price, err := g.backup.CurrentPrice(ctx, symbol)
	if err != nil {
		g.logger.WithError(err).WithField("symbol", symbol).Debug("Backup quote failed")
		return Snapshot{}, false
	}

	ma, err := g.backup.SMA(ctx, symbol, n)
	if err != nil {
		g.logger.WithError(err).WithField("symbol", symbol).Debug("Backup SMA failed")
		return Snapshot{}, false
	}

	return Snapshot{
		Symbol:       symbol,
		CurrentPrice: round2(price),
		MAValue:      round2(ma),
		MAPeriod:     period,
		Source:       SourceAlphaVantage,
		FetchedAt:    time.Now(),
	}, true
}
