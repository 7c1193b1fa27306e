package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type call struct {
	task      string
	requestID int64
}

func startScheduler(t *testing.T, cfg SchedulerConfig, exec JobExecutor, clock clockwork.Clock) *Scheduler {
	t.Helper()
	s := NewScheduler(cfg, exec, zap.NewNop(), clock)
	require.NoError(t, s.Start(context.Background()))
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = s.Stop(ctx)
	})
	return s
}

func TestJob_Lifecycle(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	job := NewJob("notify_new_request", 7, 1)
	assert.Equal(t, JobStatusPending, job.Status)

	job.Start(now)
	assert.Equal(t, JobStatusRunning, job.Status)

	job.Fail(now, "boom")
	assert.True(t, job.ShouldRetry())

	job.ScheduleRetry()
	assert.Equal(t, 1, job.RetryCount)
	assert.Equal(t, JobStatusPending, job.Status)
	assert.Empty(t, job.Error)

	job.Start(now)
	job.Fail(now, "boom again")
	assert.False(t, job.ShouldRetry())
}

func TestScheduler_RunsEnqueuedTasks(t *testing.T) {
	calls := make(chan call, 4)
	exec := JobExecutorFunc(func(ctx context.Context, task string, requestID int64) error {
		calls <- call{task, requestID}
		return nil
	})
	s := startScheduler(t, DefaultSchedulerConfig(), exec, nil)

	require.NoError(t, s.Enqueue(context.Background(), "notify_new_request", 42))

	select {
	case c := <-calls:
		assert.Equal(t, "notify_new_request", c.task)
		assert.Equal(t, int64(42), c.requestID)
	case <-time.After(2 * time.Second):
		t.Fatal("task was not executed")
	}
}

func TestScheduler_RejectsWhenStopped(t *testing.T) {
	s := NewScheduler(DefaultSchedulerConfig(), JobExecutorFunc(func(context.Context, string, int64) error {
		return nil
	}), zap.NewNop(), nil)

	err := s.Enqueue(context.Background(), "notify_new_request", 1)
	assert.ErrorIs(t, err, ErrSchedulerNotRunning)
	assert.False(t, s.IsRunning())
}

func TestScheduler_DisabledRunsInline(t *testing.T) {
	var runs atomic.Int32
	exec := JobExecutorFunc(func(ctx context.Context, task string, requestID int64) error {
		runs.Add(1)
		if requestID == 2 {
			return errors.New("esi down")
		}
		return nil
	})
	cfg := DefaultSchedulerConfig()
	cfg.Enabled = false
	s := NewScheduler(cfg, exec, zap.NewNop(), nil)

	require.NoError(t, s.Enqueue(context.Background(), "notify_new_request", 1))
	assert.Equal(t, int32(1), runs.Load())

	err := s.Enqueue(context.Background(), "notify_new_request", 2)
	assert.EqualError(t, err, "esi down")
	assert.Equal(t, int32(2), runs.Load(), "failed inline tasks are not retried")
	assert.False(t, s.IsRunning())
	assert.Zero(t, s.PendingRetries())
}

func TestScheduler_QueueFull(t *testing.T) {
	started := make(chan struct{}, 1)
	release := make(chan struct{})
	exec := JobExecutorFunc(func(ctx context.Context, task string, requestID int64) error {
		started <- struct{}{}
		<-release
		return nil
	})
	cfg := DefaultSchedulerConfig()
	cfg.MaxConcurrentJobs = 1
	cfg.QueueSize = 1
	s := startScheduler(t, cfg, exec, nil)
	defer close(release)

	require.NoError(t, s.Enqueue(context.Background(), "a", 1))
	<-started

	require.NoError(t, s.Enqueue(context.Background(), "b", 2))
	err := s.Enqueue(context.Background(), "c", 3)
	assert.ErrorIs(t, err, ErrJobQueueFull)
}

func TestScheduler_RetriesAfterDelay(t *testing.T) {
	clock := clockwork.NewFakeClock()
	var attempts atomic.Int32
	exec := JobExecutorFunc(func(ctx context.Context, task string, requestID int64) error {
		if attempts.Add(1) == 1 {
			return errors.New("webhook unavailable")
		}
		return nil
	})
	cfg := DefaultSchedulerConfig()
	cfg.RetryAttempts = 2
	cfg.RetryDelay = time.Minute
	s := startScheduler(t, cfg, exec, clock)

	require.NoError(t, s.Enqueue(context.Background(), "monitor_contract_status", 9))

	assert.Eventually(t, func() bool { return s.PendingRetries() == 1 }, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, int32(1), attempts.Load())

	clock.Advance(time.Minute)

	assert.Eventually(t, func() bool { return attempts.Load() == 2 }, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, 0, s.PendingRetries())
}

func TestScheduler_RecoversFromPanics(t *testing.T) {
	var attempts atomic.Int32
	exec := JobExecutorFunc(func(ctx context.Context, task string, requestID int64) error {
		attempts.Add(1)
		panic("bad task")
	})
	cfg := DefaultSchedulerConfig()
	cfg.RetryAttempts = 0
	cfg.MaxConcurrentJobs = 1
	s := startScheduler(t, cfg, exec, nil)

	require.NoError(t, s.Enqueue(context.Background(), "a", 1))
	require.NoError(t, s.Enqueue(context.Background(), "b", 2))

	assert.Eventually(t, func() bool { return attempts.Load() == 2 }, 2*time.Second, 10*time.Millisecond)
	assert.True(t, s.IsRunning())
	assert.Equal(t, 0, s.PendingRetries())
}

func TestScheduler_JobTimeout(t *testing.T) {
	deadlines := make(chan bool, 1)
	exec := JobExecutorFunc(func(ctx context.Context, task string, requestID int64) error {
		_, ok := ctx.Deadline()
		deadlines <- ok
		return nil
	})
	cfg := DefaultSchedulerConfig()
	cfg.JobTimeout = time.Second
	s := startScheduler(t, cfg, exec, nil)

	require.NoError(t, s.Enqueue(context.Background(), "a", 1))
	select {
	case ok := <-deadlines:
		assert.True(t, ok)
	case <-time.After(2 * time.Second):
		t.Fatal("task was not executed")
	}
}
