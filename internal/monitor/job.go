package monitor

import (
	"context"
	"time"
)

// CheckJob adapts the monitor's check pass to the scheduler
type CheckJob struct {
	monitor  *Monitor
	interval time.Duration
}

// NewCheckJob creates the recurring check job
func NewCheckJob(m *Monitor, interval time.Duration) *CheckJob {
	return &CheckJob{monitor: m, interval: interval}
}

// Name returns the job name
func (j *CheckJob) Name() string {
	return "position-check"
}

// Schedule returns the cron expression for the check cadence
func (j *CheckJob) Schedule() string {
	return "@every " + j.interval.String()
}

// Run executes one check pass. A skipped pass is not a failure.
func (j *CheckJob) Run(ctx context.Context) error {
	j.monitor.CheckAll(ctx)
	return nil
}
