package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/EdgesSeeker/ma-monitor/pkg/logger"
)

type testJob struct {
	name     string
	schedule string
	runs     atomic.Int32
	err      error
}

func (j *testJob) Name() string     { return j.name }
func (j *testJob) Schedule() string { return j.schedule }

func (j *testJob) Run(ctx context.Context) error {
	j.runs.Add(1)
	return j.err
}

func TestAddJobRejectsDuplicates(t *testing.T) {
	s := New(logger.NewNop())

	job := &testJob{name: "check", schedule: "@every 5m"}
	if err := s.AddJob(job); err != nil {
		t.Fatalf("AddJob() error = %v", err)
	}

	if err := s.AddJob(job); err == nil {
		t.Error("AddJob() should reject a duplicate name")
	}
}

func TestAddJobRejectsBadSchedule(t *testing.T) {
	s := New(logger.NewNop())

	job := &testJob{name: "check", schedule: "not a schedule"}
	if err := s.AddJob(job); err == nil {
		t.Error("AddJob() should reject an invalid schedule")
	}
}

func TestRunJobExecutesImmediately(t *testing.T) {
	s := New(logger.NewNop())

	job := &testJob{name: "check", schedule: "@every 5m"}
	if err := s.AddJob(job); err != nil {
		t.Fatalf("AddJob() error = %v", err)
	}

	if err := s.RunJob("check"); err != nil {
		t.Fatalf("RunJob() error = %v", err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for job.runs.Load() == 0 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}

	if job.runs.Load() != 1 {
		t.Errorf("job ran %d times, want 1", job.runs.Load())
	}
}

func TestRunJobUnknownName(t *testing.T) {
	s := New(logger.NewNop())

	if err := s.RunJob("missing"); err == nil {
		t.Error("RunJob() should fail for an unregistered job")
	}
}

func TestJobHistoryRecordsFailures(t *testing.T) {
	s := New(logger.NewNop())

	job := &testJob{name: "check", schedule: "@every 5m", err: errors.New("boom")}
	if err := s.AddJob(job); err != nil {
		t.Fatalf("AddJob() error = %v", err)
	}

	s.runJob(job)
	s.runJob(job)
	job.err = nil
	s.runJob(job)

	history, err := s.GetJobHistory("check")
	if err != nil {
		t.Fatalf("GetJobHistory() error = %v", err)
	}

	if len(history.Results) != 3 {
		t.Fatalf("history has %d results, want 3", len(history.Results))
	}
	if len(history.GetFailedResults()) != 2 {
		t.Errorf("failed results = %d, want 2", len(history.GetFailedResults()))
	}
	if rate := history.GetSuccessRate(); rate < 0.33 || rate > 0.34 {
		t.Errorf("success rate = %f, want ~0.33", rate)
	}

	stats := s.GetJobStats()
	if stats["check"].TotalRuns != 3 {
		t.Errorf("stats total runs = %d, want 3", stats["check"].TotalRuns)
	}
	if stats["check"].FailureCount != 2 {
		t.Errorf("stats failure count = %d, want 2", stats["check"].FailureCount)
	}
}

func TestJobHistoryCapped(t *testing.T) {
	h := &JobHistory{}
	for i := 0; i < 150; i++ {
		h.AddResult(JobResult{JobName: "check", Success: true})
	}

	if len(h.Results) != 100 {
		t.Errorf("history has %d results, want 100", len(h.Results))
	}
}
