package task

import (
	"log/slog"

	"github.com/phrazzld/haiku-api/internal/content"
	"github.com/phrazzld/haiku-api/internal/generation"
	"github.com/phrazzld/haiku-api/internal/registry"
	"github.com/phrazzld/haiku-api/internal/store"
)

// IllustrationTaskFactory creates illustration tasks bound to the service's
// shared dependencies, so callers only need the registry task id.
type IllustrationTaskFactory struct {
	reg          registry.Registry
	illustrator  generation.IllustrationGenerator
	contentStore content.Store
	postStore    store.PostStore
	logger       *slog.Logger
}

// NewIllustrationTaskFactory creates a new factory for illustration tasks.
func NewIllustrationTaskFactory(
	reg registry.Registry,
	illustrator generation.IllustrationGenerator,
	contentStore content.Store,
	postStore store.PostStore,
	logger *slog.Logger,
) *IllustrationTaskFactory {
	return &IllustrationTaskFactory{
		reg:          reg,
		illustrator:  illustrator,
		contentStore: contentStore,
		postStore:    postStore,
		logger:       logger,
	}
}

// CreateTask builds an IllustrationTask for the given registry task id.
func (f *IllustrationTaskFactory) CreateTask(registryID string) (Task, error) {
	return NewIllustrationTask(
		registryID,
		f.reg,
		f.illustrator,
		f.contentStore,
		f.postStore,
		f.logger,
	)
}
