package scheduler

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeJob struct {
	name    string
	runs    atomic.Int32
	started chan struct{}
	block   chan struct{}
}

func (j *fakeJob) Name() string        { return j.name }
func (j *fakeJob) Description() string { return "fake job for tests" }

func (j *fakeJob) Run(ctx context.Context) error {
	j.runs.Add(1)
	if j.started != nil {
		close(j.started)
		j.started = nil
	}
	if j.block != nil {
		select {
		case <-j.block:
		case <-ctx.Done():
		}
	}
	return nil
}

func TestRegister_Validation(t *testing.T) {
	s := NewScheduler(nil)

	assert.ErrorIs(t, s.Register(nil, NewIntervalSchedule(time.Minute)), ErrNilJob)
	assert.ErrorIs(t, s.Register(&fakeJob{name: "a"}, nil), ErrNilSchedule)

	require.NoError(t, s.Register(&fakeJob{name: "a"}, NewIntervalSchedule(time.Minute)))
	assert.ErrorIs(t, s.Register(&fakeJob{name: "a"}, NewIntervalSchedule(time.Minute)), ErrJobAlreadyExists)
}

func TestStartStop_Lifecycle(t *testing.T) {
	s := NewScheduler(nil)
	ctx := context.Background()

	assert.ErrorIs(t, s.Stop(), ErrSchedulerNotRunning)

	require.NoError(t, s.Start(ctx))
	assert.True(t, s.IsRunning())
	assert.ErrorIs(t, s.Start(ctx), ErrSchedulerAlreadyRunning)

	require.NoError(t, s.Stop())
	assert.False(t, s.IsRunning())
}

func TestRunNow(t *testing.T) {
	s := NewScheduler(nil)
	job := &fakeJob{name: "sweep"}
	require.NoError(t, s.Register(job, NewIntervalSchedule(time.Hour)))

	require.NoError(t, s.RunNow(context.Background(), "sweep"))
	assert.Equal(t, int32(1), job.runs.Load())

	assert.ErrorIs(t, s.RunNow(context.Background(), "missing"), ErrJobNotFound)
}

func TestOverlappingRunIsSkippedNotQueued(t *testing.T) {
	s := NewScheduler(nil)
	s.ctx, s.cancel = context.WithCancel(context.Background())
	defer s.cancel()

	job := &fakeJob{
		name:    "slow",
		started: make(chan struct{}),
		block:   make(chan struct{}),
	}
	require.NoError(t, s.Register(job, NewIntervalSchedule(time.Hour)))

	// Force the job due and dispatch it; it blocks inside Run.
	s.mu.Lock()
	s.jobs["slow"].nextRun = time.Now().UTC().Add(-time.Second)
	s.mu.Unlock()
	s.checkAndRunJobs()
	<-job.started

	// Due again while still running: skipped and rescheduled, never queued.
	s.mu.Lock()
	s.jobs["slow"].nextRun = time.Now().UTC().Add(-time.Second)
	s.mu.Unlock()
	s.checkAndRunJobs()

	info := s.ListJobs()[0]
	assert.Equal(t, int64(1), info.RunCount)
	assert.Equal(t, int64(1), info.SkipCount)
	assert.True(t, info.NextRun.After(time.Now().UTC()))

	close(job.block)
	s.wg.Wait()
	assert.Equal(t, int32(1), job.runs.Load())
}

func TestIntervalSchedule(t *testing.T) {
	sched := NewIntervalSchedule(time.Minute)
	at := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	assert.Equal(t, at.Add(time.Minute), sched.Next(at))
	assert.Equal(t, "@every 1m0s", sched.String())
}
