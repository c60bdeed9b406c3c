package task

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))
}

func TestTaskRunner_Submit(t *testing.T) {
	t.Parallel()

	t.Run("successful submission", func(t *testing.T) {
		t.Parallel()

		runner := NewTaskRunner(DefaultTaskRunnerConfig(), discardLogger())

		task := NewMockTask(uuid.New(), "mock_task")
		err := runner.Submit(context.Background(), task)

		assert.NoError(t, err)
	})

	t.Run("queue full", func(t *testing.T) {
		t.Parallel()

		// Runner is never started, so submitted tasks stay queued
		config := DefaultTaskRunnerConfig()
		config.QueueSize = 1
		runner := NewTaskRunner(config, discardLogger())

		err := runner.Submit(context.Background(), NewMockTask(uuid.New(), "mock_task"))
		require.NoError(t, err)

		err = runner.Submit(context.Background(), NewMockTask(uuid.New(), "mock_task"))
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "queue is full")
	})
}

func TestTaskRunner_ProcessesTasks(t *testing.T) {
	t.Parallel()

	runner := NewTaskRunner(DefaultTaskRunnerConfig(), discardLogger())
	runner.Start()
	defer runner.Stop()

	var mu sync.Mutex
	executed := make(map[uuid.UUID]bool)
	done := make(chan struct{}, 3)

	for i := 0; i < 3; i++ {
		task := NewMockTask(uuid.New(), "mock_task")
		id := task.ID()
		task.ExecuteFn = func(ctx context.Context) error {
			mu.Lock()
			executed[id] = true
			mu.Unlock()
			done <- struct{}{}
			return nil
		}
		require.NoError(t, runner.Submit(context.Background(), task))
	}

	for i := 0; i < 3; i++ {
		select {
		case <-done:
		case <-time.After(2 * time.Second):
			t.Fatal("timed out waiting for tasks to execute")
		}
	}

	mu.Lock()
	defer mu.Unlock()
	assert.Len(t, executed, 3)
}

func TestTaskRunner_ErrorHandler(t *testing.T) {
	t.Parallel()

	runner := NewTaskRunner(DefaultTaskRunnerConfig(), discardLogger())

	handled := make(chan error, 1)
	runner.SetErrorHandler(func(task Task, err error) {
		handled <- err
	})

	runner.Start()
	defer runner.Stop()

	wantErr := errors.New("mock execution failure")
	task := NewMockTask(uuid.New(), "mock_task")
	task.ExecuteFn = func(ctx context.Context) error {
		return wantErr
	}
	require.NoError(t, runner.Submit(context.Background(), task))

	select {
	case err := <-handled:
		assert.ErrorIs(t, err, wantErr)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for error handler")
	}
}

func TestTaskRunner_StopDrainsWorkers(t *testing.T) {
	t.Parallel()

	runner := NewTaskRunner(DefaultTaskRunnerConfig(), discardLogger())
	runner.Start()

	started := make(chan struct{})
	task := NewMockTask(uuid.New(), "mock_task")
	task.ExecuteFn = func(ctx context.Context) error {
		close(started)
		time.Sleep(50 * time.Millisecond)
		return nil
	}
	require.NoError(t, runner.Submit(context.Background(), task))

	select {
	case <-started:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for task to start")
	}

	// Stop must wait for the in-flight task to finish
	runner.Stop()
}
