package scheduler

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/earnalert/pkg/logger"
)

// testJob counts its runs and fails a configurable number of times first
type testJob struct {
	name     string
	failures int
	runs     int
}

func (j *testJob) Name() string     { return j.name }
func (j *testJob) Schedule() string { return "0 30 22 * * MON-FRI" }

func (j *testJob) Run(ctx context.Context) error {
	j.runs++
	if j.runs <= j.failures {
		return errors.New("transient failure")
	}
	return nil
}

func newTestScheduler() *Scheduler {
	s := New(logger.NewNop())
	s.retryDelay = 0
	return s
}

func TestScheduler_AddJobRejectsDuplicates(t *testing.T) {
	s := newTestScheduler()

	require.NoError(t, s.AddJob(&testJob{name: "daily_scan"}))
	assert.Error(t, s.AddJob(&testJob{name: "daily_scan"}))
}

func TestScheduler_AddJobRejectsBadSchedule(t *testing.T) {
	s := newTestScheduler()

	job := &testJob{name: "daily_scan"}
	require.NoError(t, s.AddJob(job))

	bad := &badScheduleJob{}
	assert.Error(t, s.AddJob(bad))
}

type badScheduleJob struct{}

func (badScheduleJob) Name() string                  { return "broken" }
func (badScheduleJob) Schedule() string              { return "not a cron expression" }
func (badScheduleJob) Run(ctx context.Context) error { return nil }

func TestScheduler_RunJob(t *testing.T) {
	s := newTestScheduler()

	job := &testJob{name: "daily_scan"}
	require.NoError(t, s.AddJob(job))

	require.NoError(t, s.RunJob("daily_scan"))
	assert.Equal(t, 1, job.runs)

	history := s.History("daily_scan")
	require.NotNil(t, history)
	require.Len(t, history.Results, 1)
	assert.True(t, history.Results[0].Success)
}

func TestScheduler_RunJobUnknown(t *testing.T) {
	s := newTestScheduler()

	assert.Error(t, s.RunJob("no_such_job"))
}

func TestScheduler_RetriesTransientFailures(t *testing.T) {
	s := newTestScheduler()

	// Fails twice, succeeds on the third attempt
	job := &testJob{name: "daily_scan", failures: 2}
	require.NoError(t, s.AddJob(job))

	require.NoError(t, s.RunJob("daily_scan"))
	assert.Equal(t, 3, job.runs)

	history := s.History("daily_scan")
	require.Len(t, history.Results, 1)
	assert.True(t, history.Results[0].Success)
}

func TestScheduler_ExhaustedRetriesRecordFailure(t *testing.T) {
	s := newTestScheduler()

	job := &testJob{name: "daily_scan", failures: 10}
	require.NoError(t, s.AddJob(job))

	assert.Error(t, s.RunJob("daily_scan"))
	assert.Equal(t, 4, job.runs, "initial attempt plus three retries")

	history := s.History("daily_scan")
	require.Len(t, history.Results, 1)
	assert.False(t, history.Results[0].Success)
	assert.NotEmpty(t, history.Results[0].Error)
}

func TestJobHistory(t *testing.T) {
	h := &JobHistory{}

	for i := 0; i < 150; i++ {
		h.AddResult(JobResult{JobName: fmt.Sprintf("run-%d", i), Success: i%2 == 0})
	}

	assert.Len(t, h.Results, 100, "history is capped")
	assert.Len(t, h.GetLatestResults(10), 10)
	assert.Equal(t, "run-149", h.GetLatestResults(1)[0].JobName)
	assert.InDelta(t, 0.5, h.GetSuccessRate(), 0.01)
}
