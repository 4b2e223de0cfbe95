package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"asset-report/internal/config"
	"asset-report/internal/models"
	"asset-report/internal/workflow"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type funcRunner func(ctx context.Context, task models.TaskContext) (*workflow.State, error)

func (f funcRunner) Run(ctx context.Context, task models.TaskContext) (*workflow.State, error) {
	return f(ctx, task)
}

func finishedRunner() funcRunner {
	return func(ctx context.Context, task models.TaskContext) (*workflow.State, error) {
		return workflow.NewState(task, time.Now()), nil
	}
}

func job(id string, done chan<- error) Job {
	return Job{
		Task: models.TaskContext{ReportID: id, UserID: "user-1", Kind: models.ReportKindWeekly},
		OnDone: func(state *workflow.State, err error) {
			done <- err
		},
	}
}

func waitDone(t *testing.T, done <-chan error) error {
	t.Helper()
	select {
	case err := <-done:
		return err
	case <-time.After(2 * time.Second):
		t.Fatal("job did not finish")
		return nil
	}
}

func TestTaskServiceRejectsDuplicatesAndOverflow(t *testing.T) {
	svc := NewTaskService(finishedRunner(), config.WorkerConfig{Concurrency: 1, QueueSize: 1})
	done := make(chan error, 4)

	require.NoError(t, svc.Submit(job("a", done)))
	assert.True(t, svc.InFlight("a"))
	assert.ErrorIs(t, svc.Submit(job("a", done)), ErrDuplicateReport)
	assert.ErrorIs(t, svc.Submit(job("b", done)), ErrQueueFull)
	assert.False(t, svc.InFlight("b"))
	assert.Equal(t, 1, svc.Pending())

	svc.Start()
	assert.NoError(t, waitDone(t, done))

	require.Eventually(t, func() bool { return !svc.InFlight("a") }, time.Second, 5*time.Millisecond)
	require.NoError(t, svc.Submit(job("a", done)))
	assert.NoError(t, waitDone(t, done))
	require.NoError(t, svc.Shutdown(context.Background()))
}

func TestTaskServiceRunsConcurrently(t *testing.T) {
	var mu sync.Mutex
	running, peak := 0, 0
	release := make(chan struct{})

	runner := funcRunner(func(ctx context.Context, task models.TaskContext) (*workflow.State, error) {
		mu.Lock()
		running++
		if running > peak {
			peak = running
		}
		mu.Unlock()
		<-release
		mu.Lock()
		running--
		mu.Unlock()
		return workflow.NewState(task, time.Now()), nil
	})

	svc := NewTaskService(runner, config.WorkerConfig{Concurrency: 2, QueueSize: 4})
	svc.Start()
	done := make(chan error, 4)
	for _, id := range []string{"r1", "r2", "r3", "r4"} {
		require.NoError(t, svc.Submit(job(id, done)))
	}

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return running == 2
	}, time.Second, 5*time.Millisecond)
	close(release)

	for i := 0; i < 4; i++ {
		assert.NoError(t, waitDone(t, done))
	}
	assert.Equal(t, 2, peak)
	assert.Equal(t, 0, svc.Pending())
}

func TestTaskServiceRecoversPanics(t *testing.T) {
	runner := funcRunner(func(ctx context.Context, task models.TaskContext) (*workflow.State, error) {
		panic("boom")
	})
	svc := NewTaskService(runner, config.WorkerConfig{Concurrency: 1, QueueSize: 1})
	svc.Start()

	done := make(chan error, 1)
	require.NoError(t, svc.Submit(job("p", done)))
	err := waitDone(t, done)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "panicked: boom")

	// The worker survives
	require.NoError(t, svc.Submit(job("q", done)))
	assert.Error(t, waitDone(t, done))
}

func TestTaskServicePassesRunErrors(t *testing.T) {
	persist := errors.New("store unavailable")
	runner := funcRunner(func(ctx context.Context, task models.TaskContext) (*workflow.State, error) {
		return workflow.NewState(task, time.Now()), persist
	})
	svc := NewTaskService(runner, config.WorkerConfig{Concurrency: 1, QueueSize: 1})
	svc.Start()

	done := make(chan error, 1)
	require.NoError(t, svc.Submit(job("x", done)))
	assert.ErrorIs(t, waitDone(t, done), persist)
}

func TestTaskServiceShutdownDrainsQueue(t *testing.T) {
	svc := NewTaskService(finishedRunner(), config.WorkerConfig{Concurrency: 1, QueueSize: 3})
	done := make(chan error, 3)
	for _, id := range []string{"s1", "s2", "s3"} {
		require.NoError(t, svc.Submit(job(id, done)))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, svc.Shutdown(ctx))
	assert.Len(t, done, 3)
	assert.ErrorIs(t, svc.Submit(job("late", done)), ErrPoolClosed)
	require.NoError(t, svc.Shutdown(ctx))
}
