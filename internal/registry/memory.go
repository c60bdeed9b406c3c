package registry

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryRegistry is a process-local Registry backed by a mutex-guarded map.
// Tasks do not survive a restart. A background sweep evicts tasks older than
// the retention window so abandoned polls cannot grow the map without bound.
type MemoryRegistry struct {
	mu    sync.Mutex
	tasks map[string]*Task

	retention time.Duration
	logger    *slog.Logger

	stopSweep chan struct{}
	sweepDone chan struct{}

	// now is overridable for tests.
	now func() time.Time
}

// NewMemoryRegistry creates a MemoryRegistry with the given retention window.
// If logger is nil, a default logger will be used.
func NewMemoryRegistry(retention time.Duration, logger *slog.Logger) *MemoryRegistry {
	if logger == nil {
		logger = slog.Default()
	}

	return &MemoryRegistry{
		tasks:     make(map[string]*Task),
		retention: retention,
		logger:    logger.With(slog.String("component", "memory_registry")),
		now:       time.Now,
	}
}

// Ensure MemoryRegistry implements the Registry interface
var _ Registry = (*MemoryRegistry)(nil)

// Create implements Registry.Create
func (r *MemoryRegistry) Create(ctx context.Context, sourceImagePath, haiku, prompt string) (string, error) {
	task := &Task{
		ID:              uuid.New().String(),
		SourceImagePath: sourceImagePath,
		Haiku:           haiku,
		Prompt:          prompt,
		Status:          StatusPending,
		CreatedAt:       r.now().UTC(),
	}

	r.mu.Lock()
	r.tasks[task.ID] = task
	r.mu.Unlock()

	r.logger.Debug("task registered",
		"task_id", task.ID,
		"source_image_path", sourceImagePath)
	return task.ID, nil
}

// Get implements Registry.Get
func (r *MemoryRegistry) Get(ctx context.Context, id string) (*Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	task, ok := r.tasks[id]
	if !ok {
		return nil, ErrTaskNotFound
	}

	snapshot := *task
	return &snapshot, nil
}

// MarkCompleted implements Registry.MarkCompleted
func (r *MemoryRegistry) MarkCompleted(ctx context.Context, id, illustrationPath string) error {
	return r.finalize(id, func(task *Task) {
		task.Status = StatusCompleted
		task.IllustrationPath = illustrationPath
	})
}

// MarkFailed implements Registry.MarkFailed
func (r *MemoryRegistry) MarkFailed(ctx context.Context, id, errorDetail string) error {
	return r.finalize(id, func(task *Task) {
		task.Status = StatusFailed
		task.ErrorDetail = errorDetail
	})
}

// finalize applies a terminal transition under the lock, enforcing the
// pending -> terminal state machine.
func (r *MemoryRegistry) finalize(id string, transition func(*Task)) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	task, ok := r.tasks[id]
	if !ok {
		return ErrTaskNotFound
	}

	if task.Done() {
		return ErrTaskFinalized
	}

	transition(task)
	return nil
}

// ConsumeIfDone implements Registry.ConsumeIfDone
func (r *MemoryRegistry) ConsumeIfDone(ctx context.Context, id string) (*Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	task, ok := r.tasks[id]
	if !ok {
		return nil, ErrTaskNotFound
	}

	snapshot := *task
	if task.Done() {
		delete(r.tasks, id)
		r.logger.Debug("task consumed",
			"task_id", id,
			"status", string(task.Status))
	}

	return &snapshot, nil
}

// StartSweeper launches the background goroutine that evicts tasks older
// than the retention window, regardless of whether they were ever polled.
// Call StopSweeper during shutdown.
func (r *MemoryRegistry) StartSweeper(interval time.Duration) {
	r.stopSweep = make(chan struct{})
	r.sweepDone = make(chan struct{})

	go func() {
		defer close(r.sweepDone)

		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-r.stopSweep:
				return
			case <-ticker.C:
				if evicted := r.sweep(); evicted > 0 {
					r.logger.Info("evicted expired tasks", "count", evicted)
				}
			}
		}
	}()
}

// StopSweeper stops the background sweep and waits for it to exit.
// It is a no-op if the sweeper was never started.
func (r *MemoryRegistry) StopSweeper() {
	if r.stopSweep == nil {
		return
	}
	close(r.stopSweep)
	<-r.sweepDone
	r.stopSweep = nil
}

// sweep removes tasks older than the retention window and returns how many
// were evicted.
func (r *MemoryRegistry) sweep() int {
	cutoff := r.now().UTC().Add(-r.retention)

	r.mu.Lock()
	defer r.mu.Unlock()

	evicted := 0
	for id, task := range r.tasks {
		if task.CreatedAt.Before(cutoff) {
			delete(r.tasks, id)
			evicted++
		}
	}
	return evicted
}

// Len reports how many tasks are currently held. Intended for tests and
// diagnostics.
func (r *MemoryRegistry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.tasks)
}
