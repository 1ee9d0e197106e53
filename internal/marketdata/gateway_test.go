package marketdata

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/EdgesSeeker/ma-monitor/pkg/logger"
)

type fakePrimary struct {
	price    float64
	closes   []float64
	err      error
	calls    int
	histErr  error
	histCall int
}

func (f *fakePrimary) CurrentPrice(ctx context.Context, symbol string) (float64, error) {
	f.calls++
	return f.price, f.err
}

func (f *fakePrimary) HistoricalCloses(ctx context.Context, symbol string, period int, interval Interval) ([]float64, error) {
	f.histCall++
	if f.histErr != nil {
		return nil, f.histErr
	}
	return f.closes, nil
}

type fakeBackup struct {
	enabled bool
	price   float64
	sma     float64
	err     error
	calls   int
}

func (f *fakeBackup) Enabled() bool { return f.enabled }

func (f *fakeBackup) CurrentPrice(ctx context.Context, symbol string) (float64, error) {
	f.calls++
	return f.price, f.err
}

func (f *fakeBackup) SMA(ctx context.Context, symbol string, period int) (float64, error) {
	return f.sma, f.err
}

func newTestGateway(primary primaryProvider, backup backupProvider) (*Gateway, *MemoryCache) {
	cache := NewMemoryCache(2 * time.Minute)
	return NewGateway(primary, backup, cache, logger.NewNop()), cache
}

func TestGatewayServesPrimary(t *testing.T) {
	primary := &fakePrimary{price: 150.456, closes: []float64{148, 149, 150}}
	gw, cache := newTestGateway(primary, &fakeBackup{})

	snap := gw.FetchSnapshot(context.Background(), "aapl", "3")

	assert.Equal(t, "AAPL", snap.Symbol)
	assert.Equal(t, SourceYahoo, snap.Source)
	assert.Equal(t, 150.46, snap.CurrentPrice)
	assert.Equal(t, 149.0, snap.MAValue)
	assert.False(t, snap.Degraded)
	assert.False(t, snap.Stale)

	cached, ok := cache.Get(context.Background(), "AAPL_3")
	require.True(t, ok)
	assert.Equal(t, snap.CurrentPrice, cached.CurrentPrice)
}

func TestGatewayServesFreshCacheWithoutFetching(t *testing.T) {
	primary := &fakePrimary{price: 150, closes: []float64{148, 149, 150}}
	gw, cache := newTestGateway(primary, &fakeBackup{})

	cache.Put(context.Background(), "AAPL_20", Snapshot{
		Symbol:       "AAPL",
		CurrentPrice: 151,
		MAValue:      149,
		Source:       SourceYahoo,
		FetchedAt:    time.Now(),
	})

	snap := gw.FetchSnapshot(context.Background(), "AAPL", "20")

	assert.Equal(t, 151.0, snap.CurrentPrice)
	assert.Equal(t, 0, primary.calls)
}

func TestGatewayFallsBackToBackup(t *testing.T) {
	primary := &fakePrimary{err: errors.New("yahoo down")}
	backup := &fakeBackup{enabled: true, price: 150.5, sma: 148.2}
	gw, _ := newTestGateway(primary, backup)

	snap := gw.FetchSnapshot(context.Background(), "AAPL", "20")

	assert.Equal(t, SourceAlphaVantage, snap.Source)
	assert.Equal(t, 150.5, snap.CurrentPrice)
	assert.Equal(t, 148.2, snap.MAValue)
	assert.False(t, snap.Degraded)
}

func TestGatewaySkipsBackupForIntradayPeriods(t *testing.T) {
	primary := &fakePrimary{err: errors.New("yahoo down")}
	backup := &fakeBackup{enabled: true, price: 150.5, sma: 148.2}
	gw, _ := newTestGateway(primary, backup)

	snap := gw.FetchSnapshot(context.Background(), "AAPL", "30/10")

	assert.Equal(t, 0, backup.calls)
	assert.Equal(t, SourceSynthetic, snap.Source)
	assert.True(t, snap.Degraded)
}

func TestGatewayServesStaleCacheBeforeSynthetic(t *testing.T) {
	primary := &fakePrimary{err: errors.New("yahoo down")}
	gw, cache := newTestGateway(primary, &fakeBackup{})

	cache.Put(context.Background(), "AAPL_20", Snapshot{
		Symbol:       "AAPL",
		CurrentPrice: 151,
		MAValue:      149,
		Source:       SourceYahoo,
		FetchedAt:    time.Now().Add(-10 * time.Minute),
	})

	snap := gw.FetchSnapshot(context.Background(), "AAPL", "20")

	assert.True(t, snap.Stale)
	assert.False(t, snap.Degraded)
	assert.Equal(t, 151.0, snap.CurrentPrice)
}

func TestGatewaySyntheticLastResort(t *testing.T) {
	primary := &fakePrimary{err: errors.New("yahoo down")}
	gw, cache := newTestGateway(primary, &fakeBackup{})

	snap := gw.FetchSnapshot(context.Background(), "AAPL", "20")

	assert.Equal(t, SourceSynthetic, snap.Source)
	assert.True(t, snap.Degraded)
	assert.Greater(t, snap.CurrentPrice, 0.0)

	// Fabricated data must never poison the cache
	_, ok := cache.GetStale(context.Background(), "AAPL_20")
	assert.False(t, ok)
}

func TestGatewayRejectsEmptyHistory(t *testing.T) {
	primary := &fakePrimary{price: 150, histErr: errors.New("no data")}
	backup := &fakeBackup{enabled: true, price: 150.5, sma: 148.2}
	gw, _ := newTestGateway(primary, backup)

	snap := gw.FetchSnapshot(context.Background(), "AAPL", "20")

	assert.Equal(t, SourceAlphaVantage, snap.Source)
}
