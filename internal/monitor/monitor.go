package monitor

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/semaphore"

	"github.com/EdgesSeeker/ma-monitor/internal/marketdata"
	"github.com/EdgesSeeker/ma-monitor/internal/scheduler"
	"github.com/EdgesSeeker/ma-monitor/pkg/config"
	"github.com/EdgesSeeker/ma-monitor/pkg/logger"
)

// Gateway provides market snapshots. It must not fail; degraded data
// is flagged on the snapshot instead.
type Gateway interface {
	FetchSnapshot(ctx context.Context, symbol string, period marketdata.MAPeriod) marketdata.Snapshot
}

// Notifier delivers fired alerts
type Notifier interface {
	Notify(ctx context.Context, alert Alert) error
}

// Alert is one fired exit signal
type Alert struct {
	PositionID  string              `json:"position_id"`
	Symbol      string              `json:"symbol"`
	Direction   Direction           `json:"direction"`
	MAPeriod    marketdata.MAPeriod `json:"ma_period"`
	Price       float64             `json:"price"`
	MAValue     float64             `json:"ma_value"`
	Source      marketdata.Source   `json:"source"`
	TriggeredAt time.Time           `json:"triggered_at"`
}

// CheckSummary is the outcome of one check pass
type CheckSummary struct {
	Skipped     bool      `json:"skipped"`
	SkipReason  string    `json:"skip_reason,omitempty"`
	Checked     int       `json:"checked"`
	AlertsFired int       `json:"alerts_fired"`
	Degraded    int       `json:"degraded"`
	StartedAt   time.Time `json:"started_at"`
	Duration    string    `json:"duration"`
}

// Status describes the engine for the status endpoint
type Status struct {
	Running       bool       `json:"running"`
	CheckInterval string     `json:"check_interval"`
	Positions     int        `json:"positions"`
	ActiveAlerts  int        `json:"active_alerts"`
	LastCheckAt   *time.Time `json:"last_check_at,omitempty"`
}

// Monitor is the position monitoring engine. It owns the set of
// watched positions, runs periodic check passes against the gateway
// and drives the alert latch on each position.
// SSOT: alert state transitions happen only inside checkPosition
type Monitor struct {
	gateway  Gateway
	notifier Notifier
	store    Store // nil when running memory-only
	logger   *logger.Logger

	interval         time.Duration
	maxConcurrent    int64
	marketHoursOnly  bool
	suppressDegraded bool
	hours            *MarketHours

	mu        sync.RWMutex
	positions map[string]*Position

	// checkMu serializes check passes; an overlapping tick is skipped
	checkMu sync.Mutex

	sched       *scheduler.Scheduler
	running     bool
	lastCheckAt time.Time
	runMu       sync.Mutex
}

// New creates a monitor. The store may be nil.
func New(cfg *config.Config, gateway Gateway, notifier Notifier, store Store, log *logger.Logger) (*Monitor, error) {
	hours, err := NewUSEquityHours()
	if err != nil {
		return nil, fmt.Errorf("failed to load market hours: %w", err)
	}

	m := &Monitor{
		gateway:          gateway,
		notifier:         notifier,
		store:            store,
		logger:           log,
		interval:         cfg.Monitor.CheckInterval,
		maxConcurrent:    int64(cfg.Monitor.MaxConcurrent),
		marketHoursOnly:  cfg.Monitor.MarketHoursOnly,
		suppressDegraded: cfg.Monitor.SuppressDegraded,
		hours:            hours,
		positions:        make(map[string]*Position),
		sched:            scheduler.New(log),
	}

	// Registered once here so Start/Stop can cycle freely; AddJob
	// rejects duplicate names.
	if err := m.sched.AddJob(NewCheckJob(m, m.interval)); err != nil {
		return nil, fmt.Errorf("failed to schedule check job: %w", err)
	}

	return m, nil
}

// LoadFromStore restores persisted positions into memory
func (m *Monitor) LoadFromStore(ctx context.Context) error {
	if m.store == nil {
		return nil
	}

	positions, err := m.store.LoadPositions(ctx)
	if err != nil {
		return err
	}

	m.mu.Lock()
	for _, p := range positions {
		m.positions[p.ID] = p
	}
	m.mu.Unlock()

	m.logger.WithField("count", len(positions)).Info("Positions restored from store")
	return nil
}

// AddPosition registers a new position and starts the check loop if
// it is not running yet.
func (m *Monitor) AddPosition(ctx context.Context, spec PositionSpec) (*Position, error) {
	if err := spec.Validate(); err != nil {
		return nil, err
	}

	direction, _ := ParseDirection(spec.Direction)

	p := &Position{
		ID:         uuid.New().String(),
		Symbol:     strings.ToUpper(strings.TrimSpace(spec.Symbol)),
		Direction:  direction,
		MAPeriod:   spec.MAPeriod,
		EntryPrice: spec.EntryPrice,
		AddedAt:    time.Now(),
	}

	if m.store != nil {
		if err := m.store.SavePosition(ctx, p); err != nil {
			return nil, err
		}
	}

	m.mu.Lock()
	m.positions[p.ID] = p
	m.mu.Unlock()

	m.logger.WithFields(map[string]interface{}{
		"id":        p.ID,
		"symbol":    p.Symbol,
		"direction": string(p.Direction),
		"ma_period": string(p.MAPeriod),
	}).Info("Position added")

	if err := m.Start(); err != nil {
		// Undo the insert so a failed add leaves no orphan behind
		m.mu.Lock()
		delete(m.positions, p.ID)
		m.mu.Unlock()
		if m.store != nil {
			if delErr := m.store.DeletePosition(ctx, p.ID); delErr != nil {
				m.logger.WithError(delErr).WithField("id", p.ID).Error("Failed to roll back position")
			}
		}
		return nil, err
	}

	return p, nil
}

// RemovePosition stops watching a position
func (m *Monitor) RemovePosition(ctx context.Context, id string) error {
	m.mu.Lock()
	p, ok := m.positions[id]
	if ok {
		delete(m.positions, id)
	}
	m.mu.Unlock()

	if !ok {
		return fmt.Errorf("position %s not found", id)
	}

	if m.store != nil {
		if err := m.store.DeletePosition(ctx, id); err != nil {
			return err
		}
	}

	m.logger.WithFields(map[string]interface{}{
		"id":     id,
		"symbol": p.Symbol,
	}).Info("Position removed")
	return nil
}

// Positions returns a copy of all watched positions ordered by age
func (m *Monitor) Positions() []Position {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]Position, 0, len(m.positions))
	for _, p := range m.positions {
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].AddedAt.Before(out[j].AddedAt)
	})
	return out
}

// Start begins periodic checking. Safe to call repeatedly.
func (m *Monitor) Start() error {
	m.runMu.Lock()
	defer m.runMu.Unlock()

	if m.running {
		return nil
	}

	m.sched.Start()
	m.running = true

	m.logger.WithField("interval", m.interval.String()).Info("Monitor started")
	return nil
}

// Stop halts periodic checking and waits for a running pass
func (m *Monitor) Stop() {
	m.runMu.Lock()
	defer m.runMu.Unlock()

	if !m.running {
		return
	}

	m.sched.Stop()
	m.running = false
	m.logger.Info("Monitor stopped")
}

// Status reports the current engine state
func (m *Monitor) Status() Status {
	m.mu.RLock()
	active := 0
	for _, p := range m.positions {
		if p.AlertActive {
			active++
		}
	}
	count := len(m.positions)
	m.mu.RUnlock()

	m.runMu.Lock()
	running := m.running
	last := m.lastCheckAt
	m.runMu.Unlock()

	status := Status{
		Running:       running,
		CheckInterval: m.interval.String(),
		Positions:     count,
		ActiveAlerts:  active,
	}
	if !last.IsZero() {
		status.LastCheckAt = &last
	}
	return status
}

// JobStats exposes scheduler statistics for the status endpoint
func (m *Monitor) JobStats() map[string]scheduler.JobStats {
	return m.sched.GetJobStats()
}

// CheckAll runs one check pass over every position. Passes never
// overlap; a tick arriving while one runs is skipped. Positions are
// checked concurrently with a bounded number of fetches in flight.
func (m *Monitor) CheckAll(ctx context.Context) CheckSummary {
	startedAt := time.Now()

	if !m.checkMu.TryLock() {
		m.logger.Warn("Check pass already running, skipping tick")
		return CheckSummary{Skipped: true, SkipReason: "previous pass still running", StartedAt: startedAt}
	}
	defer m.checkMu.Unlock()

	if m.marketHoursOnly && !m.hours.IsOpen(startedAt) {
		m.logger.Debug("Market closed, skipping check pass")
		return CheckSummary{Skipped: true, SkipReason: "market closed", StartedAt: startedAt}
	}

	positions := m.positionRefs()
	if len(positions) == 0 {
		return CheckSummary{StartedAt: startedAt, Duration: time.Since(startedAt).String()}
	}

	sem := semaphore.NewWeighted(m.maxConcurrent)
	var wg sync.WaitGroup
	var checked, alerts, degraded int
	var countMu sync.Mutex

	for _, p := range positions {
		if err := sem.Acquire(ctx, 1); err != nil {
			// Context canceled; positions not yet dispatched stay
			// uncounted so the summary reflects real work
			break
		}

		wg.Add(1)
		go func(p *Position) {
			defer wg.Done()
			defer sem.Release(1)
			defer func() {
				if r := recover(); r != nil {
					m.logger.WithFields(map[string]interface{}{
						"symbol": p.Symbol,
						"panic":  fmt.Sprintf("%v", r),
					}).Error("Check panicked")
				}
			}()

			fired, wasDegraded := m.checkPosition(ctx, p)

			countMu.Lock()
			checked++
			if fired {
				alerts++
			}
			if wasDegraded {
				degraded++
			}
			countMu.Unlock()
		}(p)
	}
	wg.Wait()

	m.runMu.Lock()
	m.lastCheckAt = startedAt
	m.runMu.Unlock()

	summary := CheckSummary{
		Checked:     checked,
		AlertsFired: alerts,
		Degraded:    degraded,
		StartedAt:   startedAt,
		Duration:    time.Since(startedAt).String(),
	}

	m.logger.WithFields(map[string]interface{}{
		"checked":  summary.Checked,
		"alerts":   summary.AlertsFired,
		"degraded": summary.Degraded,
		"duration": summary.Duration,
	}).Info("Check pass completed")

	return summary
}

// checkPosition fetches one snapshot and drives the alert latch.
// Returns whether an alert fired and whether the data was degraded.
func (m *Monitor) checkPosition(ctx context.Context, p *Position) (bool, bool) {
	snap := m.gateway.FetchSnapshot(ctx, p.Symbol, p.MAPeriod)

	fired, rearmed := m.applySnapshot(p, snap)

	if rearmed {
		m.persistLatch(ctx, p)
		m.logger.WithFields(map[string]interface{}{
			"symbol": p.Symbol,
			"id":     p.ID,
		}).Info("Signal cleared, alert re-armed")
	}

	if fired {
		m.persistLatch(ctx, p)
		m.dispatch(ctx, Alert{
			PositionID:  p.ID,
			Symbol:      p.Symbol,
			Direction:   p.Direction,
			MAPeriod:    p.MAPeriod,
			Price:       snap.CurrentPrice,
			MAValue:     snap.MAValue,
			Source:      snap.Source,
			TriggeredAt: p.LastCheckedAt,
		})
	}

	return fired, snap.Degraded
}

// applySnapshot updates the position under the lock and decides the
// latch transition. Dispatch and persistence happen outside the lock.
func (m *Monitor) applySnapshot(p *Position, snap marketdata.Snapshot) (fired, rearmed bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	p.LastCheckedAt = time.Now()
	p.CurrentPrice = snap.CurrentPrice
	p.MAValue = snap.MAValue

	// Fabricated data drives no latch transitions in either
	// direction; a synthetic price must neither fire an alert nor
	// silently re-arm one.
	if snap.Degraded && m.suppressDegraded {
		p.LastError = "degraded market data"
		return false, false
	}
	p.LastError = ""

	signal := Evaluate(p.Direction, snap.CurrentPrice, snap.MAValue)
	p.SignalActive = signal

	if signal && !p.AlertActive {
		// Latch before dispatch so a slow or failing notifier
		// cannot double-send on the next pass
		p.AlertActive = true
		return true, false
	}

	if !signal && p.AlertActive {
		p.AlertActive = false
		return false, true
	}

	return false, false
}

// dispatch sends the alert and records it. Delivery failure is logged
// and swallowed; the latch stays set either way.
func (m *Monitor) dispatch(ctx context.Context, alert Alert) {
	m.logger.WithFields(map[string]interface{}{
		"symbol":    alert.Symbol,
		"direction": string(alert.Direction),
		"price":     alert.Price,
		"ma_value":  alert.MAValue,
	}).Info("Alert fired")

	if m.notifier != nil {
		if err := m.notifier.Notify(ctx, alert); err != nil {
			m.logger.WithError(err).WithField("symbol", alert.Symbol).Error("Alert delivery failed")
		}
	}

	if m.store != nil {
		if err := m.store.RecordAlert(ctx, alert); err != nil {
			m.logger.WithError(err).WithField("symbol", alert.Symbol).Error("Failed to record alert")
		}
	}
}

func (m *Monitor) persistLatch(ctx context.Context, p *Position) {
	if m.store == nil {
		return
	}
	if err := m.store.UpdatePosition(ctx, p); err != nil {
		m.logger.WithError(err).WithField("id", p.ID).Error("Failed to persist alert state")
	}
}

func (m *Monitor) positionRefs() []*Position {
	m.mu.RLock()
	defer m.mu.RUnlock()

	refs := make([]*Position, 0, len(m.positions))
	for _, p := range m.positions {
		refs = append(refs, p)
	}
	return refs
}
