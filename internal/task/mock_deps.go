package task

import (
	"context"
	"database/sql"
	"net/http"
	"sync"

	"github.com/google/uuid"
	"github.com/phrazzld/haiku-api/internal/domain"
	"github.com/phrazzld/haiku-api/internal/registry"
	"github.com/phrazzld/haiku-api/internal/store"
)

// MockRegistry is an in-memory implementation of registry.Registry for
// testing, with injectable function fields to simulate failures.
type MockRegistry struct {
	mu    sync.Mutex
	tasks map[string]*registry.Task

	GetFn           func(ctx context.Context, id string) (*registry.Task, error)
	MarkCompletedFn func(ctx context.Context, id, illustrationPath string) error
	MarkFailedFn    func(ctx context.Context, id, errorDetail string) error
}

// NewMockRegistry creates an empty MockRegistry
func NewMockRegistry() *MockRegistry {
	return &MockRegistry{tasks: make(map[string]*registry.Task)}
}

// Seed adds a pending task with a fresh id and returns that id
func (m *MockRegistry) Seed(sourceImagePath, haiku, prompt string) string {
	m.mu.Lock()
	defer m.mu.Unlock()

	id := uuid.New().String()
	m.tasks[id] = &registry.Task{
		ID:              id,
		SourceImagePath: sourceImagePath,
		Haiku:           haiku,
		Prompt:          prompt,
		Status:          registry.StatusPending,
	}
	return id
}

// Task returns the stored task for inspection, or nil
func (m *MockRegistry) Task(id string) *registry.Task {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.tasks[id]
}

// Create implements registry.Registry
func (m *MockRegistry) Create(ctx context.Context, sourceImagePath, haiku, prompt string) (string, error) {
	return m.Seed(sourceImagePath, haiku, prompt), nil
}

// Get implements registry.Registry
func (m *MockRegistry) Get(ctx context.Context, id string) (*registry.Task, error) {
	if m.GetFn != nil {
		return m.GetFn(ctx, id)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	t, ok := m.tasks[id]
	if !ok {
		return nil, registry.ErrTaskNotFound
	}
	snapshot := *t
	return &snapshot, nil
}

// MarkCompleted implements registry.Registry
func (m *MockRegistry) MarkCompleted(ctx context.Context, id, illustrationPath string) error {
	if m.MarkCompletedFn != nil {
		return m.MarkCompletedFn(ctx, id, illustrationPath)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	t, ok := m.tasks[id]
	if !ok {
		return registry.ErrTaskNotFound
	}
	if t.Done() {
		return registry.ErrTaskFinalized
	}
	t.Status = registry.StatusCompleted
	t.IllustrationPath = illustrationPath
	return nil
}

// MarkFailed implements registry.Registry
func (m *MockRegistry) MarkFailed(ctx context.Context, id, errorDetail string) error {
	if m.MarkFailedFn != nil {
		return m.MarkFailedFn(ctx, id, errorDetail)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	t, ok := m.tasks[id]
	if !ok {
		return registry.ErrTaskNotFound
	}
	if t.Done() {
		return registry.ErrTaskFinalized
	}
	t.Status = registry.StatusFailed
	t.ErrorDetail = errorDetail
	return nil
}

// ConsumeIfDone implements registry.Registry
func (m *MockRegistry) ConsumeIfDone(ctx context.Context, id string) (*registry.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	t, ok := m.tasks[id]
	if !ok {
		return nil, registry.ErrTaskNotFound
	}
	snapshot := *t
	if t.Done() {
		delete(m.tasks, id)
	}
	return &snapshot, nil
}

// MockIllustrator implements generation.IllustrationGenerator for testing
type MockIllustrator struct {
	GenerateIllustrationFn func(ctx context.Context, prompt string) ([]byte, error)
}

// GenerateIllustration implements generation.IllustrationGenerator
func (m *MockIllustrator) GenerateIllustration(ctx context.Context, prompt string) ([]byte, error) {
	if m.GenerateIllustrationFn != nil {
		return m.GenerateIllustrationFn(ctx, prompt)
	}
	return []byte("png-bytes"), nil
}

// MockContentStore implements content.Store for testing
type MockContentStore struct {
	SaveUploadFn       func(ctx context.Context, originalFilename string, data []byte) (string, error)
	SaveIllustrationFn func(ctx context.Context, data []byte) (string, error)
}

// SaveUpload implements content.Store
func (m *MockContentStore) SaveUpload(ctx context.Context, originalFilename string, data []byte) (string, error) {
	if m.SaveUploadFn != nil {
		return m.SaveUploadFn(ctx, originalFilename, data)
	}
	return "/images/1000.jpg", nil
}

// SaveIllustration implements content.Store
func (m *MockContentStore) SaveIllustration(ctx context.Context, data []byte) (string, error) {
	if m.SaveIllustrationFn != nil {
		return m.SaveIllustrationFn(ctx, data)
	}
	return "/images/ai_1000.png", nil
}

// FileServer implements content.Store
func (m *MockContentStore) FileServer() http.Handler {
	return http.NotFoundHandler()
}

// MockPostStore implements store.PostStore for testing
type MockPostStore struct {
	mu    sync.Mutex
	Posts []*domain.Post

	CreateFn func(ctx context.Context, post *domain.Post) error
}

// Create implements store.PostStore
func (m *MockPostStore) Create(ctx context.Context, post *domain.Post) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, post)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	post.ID = int64(len(m.Posts) + 1)
	m.Posts = append(m.Posts, post)
	return nil
}

// ListRecent implements store.PostStore
func (m *MockPostStore) ListRecent(ctx context.Context, limit int) ([]*domain.Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	posts := make([]*domain.Post, 0, limit)
	for i := len(m.Posts) - 1; i >= 0 && len(posts) < limit; i-- {
		posts = append(posts, m.Posts[i])
	}
	return posts, nil
}

// ListIllustrated implements store.PostStore
func (m *MockPostStore) ListIllustrated(ctx context.Context, limit int) ([]*domain.Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	posts := make([]*domain.Post, 0, limit)
	for i := len(m.Posts) - 1; i >= 0 && len(posts) < limit; i-- {
		if m.Posts[i].AIImagePath != nil {
			posts = append(posts, m.Posts[i])
		}
	}
	return posts, nil
}

// WithTx implements store.PostStore
func (m *MockPostStore) WithTx(tx *sql.Tx) store.PostStore {
	return m
}
