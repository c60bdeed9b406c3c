package task

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/phrazzld/haiku-api/internal/content"
	"github.com/phrazzld/haiku-api/internal/domain"
	"github.com/phrazzld/haiku-api/internal/generation"
	"github.com/phrazzld/haiku-api/internal/registry"
	"github.com/phrazzld/haiku-api/internal/store"
)

// Common errors
var (
	ErrNilRegistry     = errors.New("registry cannot be nil")
	ErrNilIllustrator  = errors.New("illustrator cannot be nil")
	ErrNilContentStore = errors.New("content store cannot be nil")
	ErrNilPostStore    = errors.New("post store cannot be nil")
	ErrNilLogger       = errors.New("logger cannot be nil")
	ErrInvalidTaskID   = errors.New("task id must be a valid UUID")
)

// IllustrationTask implements the Task interface for generating an
// illustration from a registered haiku task. Its id is the registry task id,
// so one registry entry maps to exactly one unit of background work.
type IllustrationTask struct {
	id           uuid.UUID
	reg          registry.Registry
	illustrator  generation.IllustrationGenerator
	contentStore content.Store
	postStore    store.PostStore
	logger       *slog.Logger
	status       TaskStatus
}

// NewIllustrationTask creates a new illustration task for the given registry
// task id.
func NewIllustrationTask(
	registryID string,
	reg registry.Registry,
	illustrator generation.IllustrationGenerator,
	contentStore content.Store,
	postStore store.PostStore,
	logger *slog.Logger,
) (*IllustrationTask, error) {
	// Validate dependencies
	if reg == nil {
		return nil, ErrNilRegistry
	}
	if illustrator == nil {
		return nil, ErrNilIllustrator
	}
	if contentStore == nil {
		return nil, ErrNilContentStore
	}
	if postStore == nil {
		return nil, ErrNilPostStore
	}
	if logger == nil {
		return nil, ErrNilLogger
	}

	id, err := uuid.Parse(registryID)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidTaskID, registryID)
	}

	return &IllustrationTask{
		id:           id,
		reg:          reg,
		illustrator:  illustrator,
		contentStore: contentStore,
		postStore:    postStore,
		logger:       logger.With("task_type", TaskTypeIllustration, "task_id", registryID),
		status:       TaskStatusPending,
	}, nil
}

// ID implements Task.ID
func (t *IllustrationTask) ID() uuid.UUID {
	return t.id
}

// Type implements Task.Type
func (t *IllustrationTask) Type() string {
	return TaskTypeIllustration
}

// Status implements Task.Status
func (t *IllustrationTask) Status() TaskStatus {
	return t.status
}

// Execute implements Task.Execute
// It generates the illustration, stores the image, persists the completed
// post and finalizes the registry entry. Exactly one attempt is made; any
// failure marks the registry entry failed and writes no post row.
func (t *IllustrationTask) Execute(ctx context.Context) error {
	t.status = TaskStatusProcessing
	registryID := t.id.String()

	rec, err := t.reg.Get(ctx, registryID)
	if err != nil {
		if errors.Is(err, registry.ErrTaskNotFound) {
			// Evicted before we ran. Nothing left to produce or report.
			t.logger.Debug("registry entry gone, aborting")
			t.status = TaskStatusCompleted
			return nil
		}
		t.status = TaskStatusFailed
		return fmt.Errorf("failed to look up task: %w", err)
	}

	imageBytes, err := t.illustrator.GenerateIllustration(ctx, rec.Prompt)
	if err != nil {
		return t.fail(ctx, registryID, "illustration generation failed", err)
	}

	illustrationPath, err := t.contentStore.SaveIllustration(ctx, imageBytes)
	if err != nil {
		return t.fail(ctx, registryID, "failed to store illustration", err)
	}

	post, err := domain.NewPost(rec.SourceImagePath, rec.Haiku, illustrationPath)
	if err != nil {
		return t.fail(ctx, registryID, "invalid post data", err)
	}

	if err := t.postStore.Create(ctx, post); err != nil {
		return t.fail(ctx, registryID, "failed to persist post", err)
	}

	if err := t.reg.MarkCompleted(ctx, registryID, illustrationPath); err != nil {
		// The post row is already durable; a consumed or swept registry
		// entry only means nobody is polling anymore.
		t.logger.Warn("could not mark task completed", "error", err)
	}

	t.status = TaskStatusCompleted
	t.logger.Info("illustration pipeline finished",
		"illustration_path", illustrationPath,
		"post_id", post.ID)
	return nil
}

// fail records the failure on the registry entry so the next status poll
// reports it, then returns the wrapped error for the runner's error handler.
func (t *IllustrationTask) fail(ctx context.Context, registryID, summary string, cause error) error {
	t.status = TaskStatusFailed

	detail := fmt.Sprintf("%s: %v", summary, cause)
	if err := t.reg.MarkFailed(ctx, registryID, detail); err != nil {
		t.logger.Warn("could not mark task failed", "error", err)
	}

	return fmt.Errorf("%s: %w", summary, cause)
}
