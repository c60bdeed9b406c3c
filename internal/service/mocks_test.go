package service

import (
	"context"
	"io"
	"log/slog"

	"github.com/google/uuid"
	"github.com/phrazzld/haiku-api/internal/task"
)

func uuidMust(id string) uuid.UUID {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return uuid.New()
	}
	return parsed
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))
}

// mockCaptioner implements generation.CaptionGenerator for testing
type mockCaptioner struct {
	GenerateHaikuFn func(ctx context.Context, imageData []byte, mimeType string) (string, error)
}

func (m *mockCaptioner) GenerateHaiku(ctx context.Context, imageData []byte, mimeType string) (string, error) {
	if m.GenerateHaikuFn != nil {
		return m.GenerateHaikuFn(ctx, imageData, mimeType)
	}
	return "an autumn evening\na crow settles on a branch\nbare against the sky", nil
}

// mockFactory implements TaskFactory for testing
type mockFactory struct {
	CreateTaskFn func(registryID string) (task.Task, error)
}

func (m *mockFactory) CreateTask(registryID string) (task.Task, error) {
	if m.CreateTaskFn != nil {
		return m.CreateTaskFn(registryID)
	}
	return task.NewMockTask(uuidMust(registryID), task.TaskTypeIllustration), nil
}

// mockSubmitter implements TaskSubmitter for testing
type mockSubmitter struct {
	Submitted []task.Task
	SubmitFn  func(ctx context.Context, t task.Task) error
}

func (m *mockSubmitter) Submit(ctx context.Context, t task.Task) error {
	if m.SubmitFn != nil {
		return m.SubmitFn(ctx, t)
	}
	m.Submitted = append(m.Submitted, t)
	return nil
}
