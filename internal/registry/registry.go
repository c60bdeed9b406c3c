package registry

import (
	"context"
	"errors"
	"time"
)

// Status represents the lifecycle state of an in-flight task.
type Status string

// Possible task status values. Pending is the only non-terminal state;
// a task transitions exactly once to completed or failed.
const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// Common errors returned by registry implementations.
var (
	// ErrTaskNotFound is returned when the task id was never registered,
	// was already consumed, or expired. Callers cannot distinguish these cases.
	ErrTaskNotFound = errors.New("task not found")

	// ErrTaskFinalized is returned when a transition is attempted on a task
	// that already reached a terminal state.
	ErrTaskFinalized = errors.New("task already finalized")
)

// Task is the record tracking one photo's captioning-to-illustration pipeline.
type Task struct {
	// ID is the opaque identifier handed to the client for polling.
	ID string `json:"id"`

	// SourceImagePath is the public path of the stored original upload.
	SourceImagePath string `json:"source_image_path"`

	// Haiku is the generated caption, immutable once set.
	Haiku string `json:"haiku"`

	// Prompt is the derived text sent to the illustration generator.
	Prompt string `json:"prompt"`

	// Status is pending, completed or failed.
	Status Status `json:"status"`

	// IllustrationPath is set only when Status is completed.
	IllustrationPath string `json:"illustration_path,omitempty"`

	// ErrorDetail is set only when Status is failed.
	ErrorDetail string `json:"error_detail,omitempty"`

	// CreatedAt drives retention-based eviction.
	CreatedAt time.Time `json:"created_at"`
}

// Done reports whether the task reached a terminal state.
func (t *Task) Done() bool {
	return t.Status == StatusCompleted || t.Status == StatusFailed
}

// Registry is the store of in-flight illustration tasks. A task is created
// after captioning succeeds and lives until a client consumes its terminal
// state or the retention window expires.
//
// All operations must be atomic with respect to a given task id: a status
// poll may race the background pipeline's completion update.
// Version: 1.0
type Registry interface {
	// Create registers a new pending task and returns its fresh unique id.
	Create(ctx context.Context, sourceImagePath, haiku, prompt string) (string, error)

	// Get returns a snapshot of the task with the given id.
	// Returns ErrTaskNotFound if the id is absent.
	Get(ctx context.Context, id string) (*Task, error)

	// MarkCompleted transitions a pending task to completed, recording the
	// illustration path. Returns ErrTaskNotFound if the id is absent and
	// ErrTaskFinalized if the task already reached a terminal state.
	MarkCompleted(ctx context.Context, id, illustrationPath string) error

	// MarkFailed transitions a pending task to failed, recording a
	// human-readable error detail. Same error contract as MarkCompleted.
	MarkFailed(ctx context.Context, id, errorDetail string) error

	// ConsumeIfDone returns the task and, if it reached a terminal state,
	// atomically evicts it so a second call with the same id returns
	// ErrTaskNotFound. Reads of a pending task are idempotent and leave the
	// record in place.
	ConsumeIfDone(ctx context.Context, id string) (*Task, error)
}
