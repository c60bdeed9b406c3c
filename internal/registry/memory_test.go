package registry

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRegistry() *MemoryRegistry {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewMemoryRegistry(30*time.Minute, logger)
}

func TestMemoryRegistry_CreateAndGet(t *testing.T) {
	t.Parallel()

	r := newTestRegistry()
	ctx := context.Background()

	id, err := r.Create(ctx, "/images/1.jpg", "a haiku", "illustrate: a haiku")
	require.NoError(t, err)
	require.NotEmpty(t, id)

	task, err := r.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, id, task.ID)
	assert.Equal(t, "/images/1.jpg", task.SourceImagePath)
	assert.Equal(t, "a haiku", task.Haiku)
	assert.Equal(t, "illustrate: a haiku", task.Prompt)
	assert.Equal(t, StatusPending, task.Status, "a fresh task must start pending")
	assert.Empty(t, task.IllustrationPath)
	assert.Empty(t, task.ErrorDetail)
	assert.False(t, task.CreatedAt.IsZero())
}

func TestMemoryRegistry_CreateAssignsUniqueIDs(t *testing.T) {
	t.Parallel()

	r := newTestRegistry()
	ctx := context.Background()

	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id, err := r.Create(ctx, "/images/1.jpg", "a haiku", "prompt")
		require.NoError(t, err)
		assert.False(t, seen[id], "ids must never collide with a live id")
		seen[id] = true
	}
}

func TestMemoryRegistry_GetUnknownID(t *testing.T) {
	t.Parallel()

	r := newTestRegistry()

	task, err := r.Get(context.Background(), "no-such-id")
	assert.ErrorIs(t, err, ErrTaskNotFound)
	assert.Nil(t, task)
}

func TestMemoryRegistry_ConsumePendingIsIdempotent(t *testing.T) {
	t.Parallel()

	r := newTestRegistry()
	ctx := context.Background()

	id, err := r.Create(ctx, "/images/1.jpg", "a haiku", "prompt")
	require.NoError(t, err)

	// Polling a pending task must not evict it.
	for i := 0; i < 3; i++ {
		task, err := r.ConsumeIfDone(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, StatusPending, task.Status)
	}

	_, err = r.Get(ctx, id)
	assert.NoError(t, err, "pending task must still be present after polls")
}

func TestMemoryRegistry_ConsumeCompletedEvictsExactlyOnce(t *testing.T) {
	t.Parallel()

	r := newTestRegistry()
	ctx := context.Background()

	id, err := r.Create(ctx, "/images/1.jpg", "a haiku", "prompt")
	require.NoError(t, err)
	require.NoError(t, r.MarkCompleted(ctx, id, "/images/ai_1.png"))

	task, err := r.ConsumeIfDone(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, task.Status)
	assert.Equal(t, "/images/ai_1.png", task.IllustrationPath)

	// Second consume must report not found.
	_, err = r.ConsumeIfDone(ctx, id)
	assert.ErrorIs(t, err, ErrTaskNotFound)
}

func TestMemoryRegistry_ConsumeFailedEvicts(t *testing.T) {
	t.Parallel()

	r := newTestRegistry()
	ctx := context.Background()

	id, err := r.Create(ctx, "/images/1.jpg", "a haiku", "prompt")
	require.NoError(t, err)
	require.NoError(t, r.MarkFailed(ctx, id, "illustration generation failed: quota exceeded"))

	task, err := r.ConsumeIfDone(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, StatusFailed, task.Status)
	assert.Equal(t, "illustration generation failed: quota exceeded", task.ErrorDetail)

	_, err = r.ConsumeIfDone(ctx, id)
	assert.ErrorIs(t, err, ErrTaskNotFound)
}

func TestMemoryRegistry_TerminalStateIsImmutable(t *testing.T) {
	t.Parallel()

	r := newTestRegistry()
	ctx := context.Background()

	t.Run("completed then failed", func(t *testing.T) {
		id, err := r.Create(ctx, "/images/1.jpg", "a haiku", "prompt")
		require.NoError(t, err)
		require.NoError(t, r.MarkCompleted(ctx, id, "/images/ai_1.png"))

		err = r.MarkFailed(ctx, id, "late failure")
		assert.ErrorIs(t, err, ErrTaskFinalized)

		task, err := r.Get(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, StatusCompleted, task.Status, "terminal state must not change")
		assert.Equal(t, "/images/ai_1.png", task.IllustrationPath)
		assert.Empty(t, task.ErrorDetail)
	})

	t.Run("failed then completed", func(t *testing.T) {
		id, err := r.Create(ctx, "/images/1.jpg", "a haiku", "prompt")
		require.NoError(t, err)
		require.NoError(t, r.MarkFailed(ctx, id, "boom"))

		err = r.MarkCompleted(ctx, id, "/images/ai_1.png")
		assert.ErrorIs(t, err, ErrTaskFinalized)

		task, err := r.Get(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, StatusFailed, task.Status)
	})

	t.Run("double completion", func(t *testing.T) {
		id, err := r.Create(ctx, "/images/1.jpg", "a haiku", "prompt")
		require.NoError(t, err)
		require.NoError(t, r.MarkCompleted(ctx, id, "/images/ai_1.png"))

		err = r.MarkCompleted(ctx, id, "/images/ai_2.png")
		assert.ErrorIs(t, err, ErrTaskFinalized)
	})
}

func TestMemoryRegistry_MarkUnknownID(t *testing.T) {
	t.Parallel()

	r := newTestRegistry()
	ctx := context.Background()

	assert.ErrorIs(t, r.MarkCompleted(ctx, "no-such-id", "/images/ai_1.png"), ErrTaskNotFound)
	assert.ErrorIs(t, r.MarkFailed(ctx, "no-such-id", "boom"), ErrTaskNotFound)
}

func TestMemoryRegistry_GetReturnsSnapshot(t *testing.T) {
	t.Parallel()

	r := newTestRegistry()
	ctx := context.Background()

	id, err := r.Create(ctx, "/images/1.jpg", "a haiku", "prompt")
	require.NoError(t, err)

	task, err := r.Get(ctx, id)
	require.NoError(t, err)

	// Mutating the returned record must not leak into the registry.
	task.Status = StatusFailed
	task.ErrorDetail = "tampered"

	fresh, err := r.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, StatusPending, fresh.Status)
	assert.Empty(t, fresh.ErrorDetail)
}

func TestMemoryRegistry_Sweep(t *testing.T) {
	t.Parallel()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	r := NewMemoryRegistry(10*time.Minute, logger)

	base := time.Now()
	r.now = func() time.Time { return base }

	ctx := context.Background()
	oldID, err := r.Create(ctx, "/images/old.jpg", "old haiku", "prompt")
	require.NoError(t, err)

	// Advance the clock past the retention window, then create a fresh task.
	r.now = func() time.Time { return base.Add(11 * time.Minute) }
	freshID, err := r.Create(ctx, "/images/fresh.jpg", "fresh haiku", "prompt")
	require.NoError(t, err)

	evicted := r.sweep()
	assert.Equal(t, 1, evicted)

	_, err = r.Get(ctx, oldID)
	assert.ErrorIs(t, err, ErrTaskNotFound, "expired task must be evicted even if never polled")

	_, err = r.Get(ctx, freshID)
	assert.NoError(t, err, "task inside the retention window must survive the sweep")
}

func TestMemoryRegistry_SweeperLifecycle(t *testing.T) {
	t.Parallel()

	r := newTestRegistry()
	r.StartSweeper(10 * time.Millisecond)
	time.Sleep(30 * time.Millisecond)
	r.StopSweeper()

	// StopSweeper twice must not panic.
	r.StopSweeper()
}

func TestMemoryRegistry_ConcurrentConsume(t *testing.T) {
	t.Parallel()

	r := newTestRegistry()
	ctx := context.Background()

	id, err := r.Create(ctx, "/images/1.jpg", "a haiku", "prompt")
	require.NoError(t, err)
	require.NoError(t, r.MarkCompleted(ctx, id, "/images/ai_1.png"))

	const goroutines = 16
	var wg sync.WaitGroup
	results := make(chan error, goroutines)

	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := r.ConsumeIfDone(ctx, id)
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	// Exactly one goroutine must observe the completed record.
	var successes, notFound int
	for err := range results {
		switch {
		case err == nil:
			successes++
		case err == ErrTaskNotFound:
			notFound++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, successes, "eviction must be exactly-once")
	assert.Equal(t, goroutines-1, notFound)
}
