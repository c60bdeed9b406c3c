package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/phrazzld/haiku-api/internal/content"
	"github.com/phrazzld/haiku-api/internal/generation"
	"github.com/phrazzld/haiku-api/internal/platform/logger"
	"github.com/phrazzld/haiku-api/internal/registry"
	"github.com/phrazzld/haiku-api/internal/task"
)

// illustrationPromptPrefix is prepended to the haiku to form the prompt sent
// to the illustration generator.
const illustrationPromptPrefix = "create a beautiful and poetic abstract image " +
	"based on this haiku, do not include any text in the image. Haiku: "

// SnapshotServiceError is a custom error type for snapshot service errors.
type SnapshotServiceError struct {
	Operation string
	Message   string
	Err       error
}

// Error implements the error interface for SnapshotServiceError.
func (e *SnapshotServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("snapshot service %s failed: %s: %v", e.Operation, e.Message, e.Err)
	}
	return fmt.Sprintf("snapshot service %s failed: %s", e.Operation, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *SnapshotServiceError) Unwrap() error {
	return e.Err
}

// NewSnapshotServiceError creates a new SnapshotServiceError.
func NewSnapshotServiceError(operation, message string, err error) *SnapshotServiceError {
	return &SnapshotServiceError{
		Operation: operation,
		Message:   message,
		Err:       err,
	}
}

// Snapshot is the synchronous result of a photo upload: the caption plus the
// id for polling the illustration task.
type Snapshot struct {
	Haiku  string
	TaskID string
}

// TaskSubmitter enqueues background tasks for asynchronous execution.
type TaskSubmitter interface {
	Submit(ctx context.Context, t task.Task) error
}

// TaskFactory builds the background task for a registered illustration job.
type TaskFactory interface {
	CreateTask(registryID string) (task.Task, error)
}

// SnapshotService handles the synchronous half of the pipeline: storing the
// photo, captioning it, registering the illustration task and kicking off the
// background work.
type SnapshotService interface {
	// CreateSnapshot stores the uploaded photo, generates its haiku and
	// schedules illustration generation. Returns ErrNoImage for empty data.
	// A captioning failure aborts the whole operation: no task is created.
	CreateSnapshot(ctx context.Context, originalFilename string, data []byte, mimeType string) (*Snapshot, error)

	// ConsumeStatus returns the current state of the illustration task. A
	// terminal result is evicted on read, so the same id polled again
	// returns ErrTaskNotFound.
	ConsumeStatus(ctx context.Context, taskID string) (*registry.Task, error)
}

// snapshotServiceImpl implements the SnapshotService interface
type snapshotServiceImpl struct {
	contents  content.Store
	captioner generation.CaptionGenerator
	reg       registry.Registry
	factory   TaskFactory
	submitter TaskSubmitter
	logger    *slog.Logger
}

// NewSnapshotService creates a new SnapshotService.
// It returns an error if any of the required dependencies are nil.
func NewSnapshotService(
	contents content.Store,
	captioner generation.CaptionGenerator,
	reg registry.Registry,
	factory TaskFactory,
	submitter TaskSubmitter,
	log *slog.Logger,
) (SnapshotService, error) {
	if contents == nil {
		return nil, errors.New("content store cannot be nil")
	}
	if captioner == nil {
		return nil, errors.New("caption generator cannot be nil")
	}
	if reg == nil {
		return nil, errors.New("registry cannot be nil")
	}
	if factory == nil {
		return nil, errors.New("task factory cannot be nil")
	}
	if submitter == nil {
		return nil, errors.New("task submitter cannot be nil")
	}
	if log == nil {
		log = slog.Default()
	}

	return &snapshotServiceImpl{
		contents:  contents,
		captioner: captioner,
		reg:       reg,
		factory:   factory,
		submitter: submitter,
		logger:    log.With(slog.String("component", "snapshot_service")),
	}, nil
}

// CreateSnapshot implements SnapshotService.CreateSnapshot
func (s *snapshotServiceImpl) CreateSnapshot(
	ctx context.Context,
	originalFilename string,
	data []byte,
	mimeType string,
) (*Snapshot, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if len(data) == 0 {
		return nil, ErrNoImage
	}

	imagePath, err := s.contents.SaveUpload(ctx, originalFilename, data)
	if err != nil {
		log.Error("failed to store uploaded photo", slog.String("error", err.Error()))
		return nil, NewSnapshotServiceError("create_snapshot", "failed to store photo", err)
	}

	// A captioning failure aborts here: nothing was registered, so there is
	// no task id to poll and no background work to run.
	haiku, err := s.captioner.GenerateHaiku(ctx, data, mimeType)
	if err != nil {
		log.Error("haiku generation failed",
			slog.String("error", err.Error()),
			slog.String("image_path", imagePath))
		return nil, NewSnapshotServiceError("create_snapshot", "failed to generate haiku", err)
	}

	prompt := illustrationPromptPrefix + haiku

	taskID, err := s.reg.Create(ctx, imagePath, haiku, prompt)
	if err != nil {
		log.Error("failed to register illustration task", slog.String("error", err.Error()))
		return nil, NewSnapshotServiceError("create_snapshot", "failed to register task", err)
	}

	log.Debug("registered illustration task",
		slog.String("task_id", taskID),
		slog.String("image_path", imagePath))

	// From here the response already carries a valid task id, so scheduling
	// problems surface through the status poll instead of failing the upload.
	bgTask, err := s.factory.CreateTask(taskID)
	if err != nil {
		s.failInBackground(ctx, log, taskID, "failed to build illustration task", err)
		return &Snapshot{Haiku: haiku, TaskID: taskID}, nil
	}

	if err := s.submitter.Submit(ctx, bgTask); err != nil {
		s.failInBackground(ctx, log, taskID, "failed to schedule illustration task", err)
		return &Snapshot{Haiku: haiku, TaskID: taskID}, nil
	}

	log.Info("snapshot created",
		slog.String("task_id", taskID),
		slog.String("image_path", imagePath))

	return &Snapshot{Haiku: haiku, TaskID: taskID}, nil
}

// failInBackground marks the registered task failed so the client's next
// status poll reports the scheduling problem.
func (s *snapshotServiceImpl) failInBackground(
	ctx context.Context,
	log *slog.Logger,
	taskID, summary string,
	cause error,
) {
	log.Error(summary,
		slog.String("task_id", taskID),
		slog.String("error", cause.Error()))

	detail := fmt.Sprintf("%s: %v", summary, cause)
	if err := s.reg.MarkFailed(ctx, taskID, detail); err != nil {
		log.Warn("could not mark task failed",
			slog.String("task_id", taskID),
			slog.String("error", err.Error()))
	}
}

// ConsumeStatus implements SnapshotService.ConsumeStatus
func (s *snapshotServiceImpl) ConsumeStatus(ctx context.Context, taskID string) (*registry.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	rec, err := s.reg.ConsumeIfDone(ctx, taskID)
	if err != nil {
		if errors.Is(err, registry.ErrTaskNotFound) {
			return nil, ErrTaskNotFound
		}
		log.Error("status lookup failed",
			slog.String("task_id", taskID),
			slog.String("error", err.Error()))
		return nil, NewSnapshotServiceError("consume_status", "failed to read task status", err)
	}

	return rec, nil
}
