package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phrazzld/haiku-api/internal/registry"
	"github.com/phrazzld/haiku-api/internal/task"
)

func newSnapshotService(
	t *testing.T,
	reg *task.MockRegistry,
	contents *task.MockContentStore,
	captioner *mockCaptioner,
	factory *mockFactory,
	submitter *mockSubmitter,
) SnapshotService {
	t.Helper()

	svc, err := NewSnapshotService(contents, captioner, reg, factory, submitter, discardLogger())
	require.NoError(t, err)
	return svc
}

func TestNewSnapshotService_Validation(t *testing.T) {
	t.Parallel()

	reg := task.NewMockRegistry()
	contents := &task.MockContentStore{}
	captioner := &mockCaptioner{}
	factory := &mockFactory{}
	submitter := &mockSubmitter{}
	logger := discardLogger()

	cases := []struct {
		name string
		fn   func() (SnapshotService, error)
	}{
		{"nil content store", func() (SnapshotService, error) {
			return NewSnapshotService(nil, captioner, reg, factory, submitter, logger)
		}},
		{"nil captioner", func() (SnapshotService, error) {
			return NewSnapshotService(contents, nil, reg, factory, submitter, logger)
		}},
		{"nil registry", func() (SnapshotService, error) {
			return NewSnapshotService(contents, captioner, nil, factory, submitter, logger)
		}},
		{"nil factory", func() (SnapshotService, error) {
			return NewSnapshotService(contents, captioner, reg, nil, submitter, logger)
		}},
		{"nil submitter", func() (SnapshotService, error) {
			return NewSnapshotService(contents, captioner, reg, factory, nil, logger)
		}},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			svc, err := tc.fn()
			assert.Error(t, err)
			assert.Nil(t, svc)
		})
	}
}

func TestSnapshotService_CreateSnapshot(t *testing.T) {
	t.Parallel()

	t.Run("happy path stores photo, captions and schedules", func(t *testing.T) {
		t.Parallel()

		reg := task.NewMockRegistry()
		contents := &task.MockContentStore{
			SaveUploadFn: func(ctx context.Context, originalFilename string, data []byte) (string, error) {
				assert.Equal(t, "photo.jpg", originalFilename)
				return "/images/1700000000000.jpg", nil
			},
		}
		captioner := &mockCaptioner{
			GenerateHaikuFn: func(ctx context.Context, imageData []byte, mimeType string) (string, error) {
				assert.Equal(t, "image/jpeg", mimeType)
				return "soft rain on the roof", nil
			},
		}
		submitter := &mockSubmitter{}
		svc := newSnapshotService(t, reg, contents, captioner, &mockFactory{}, submitter)

		snap, err := svc.CreateSnapshot(context.Background(), "photo.jpg", []byte("jpeg-bytes"), "image/jpeg")
		require.NoError(t, err)
		assert.Equal(t, "soft rain on the roof", snap.Haiku)
		assert.NotEmpty(t, snap.TaskID)

		// Registry holds a pending task whose prompt embeds the haiku
		rec := reg.Task(snap.TaskID)
		require.NotNil(t, rec)
		assert.Equal(t, registry.StatusPending, rec.Status)
		assert.Equal(t, "/images/1700000000000.jpg", rec.SourceImagePath)
		assert.True(t, strings.HasSuffix(rec.Prompt, "soft rain on the roof"))
		assert.Contains(t, rec.Prompt, "do not include any text in the image")

		// Exactly one background task was scheduled
		require.Len(t, submitter.Submitted, 1)
		assert.Equal(t, snap.TaskID, submitter.Submitted[0].ID().String())
	})

	t.Run("rejects empty image", func(t *testing.T) {
		t.Parallel()

		reg := task.NewMockRegistry()
		svc := newSnapshotService(t, reg, &task.MockContentStore{}, &mockCaptioner{}, &mockFactory{}, &mockSubmitter{})

		snap, err := svc.CreateSnapshot(context.Background(), "photo.jpg", nil, "image/jpeg")
		assert.ErrorIs(t, err, ErrNoImage)
		assert.Nil(t, snap)
	})

	t.Run("captioning failure creates no task", func(t *testing.T) {
		t.Parallel()

		reg := task.NewMockRegistry()
		captioner := &mockCaptioner{
			GenerateHaikuFn: func(ctx context.Context, imageData []byte, mimeType string) (string, error) {
				return "", errors.New("content blocked")
			},
		}
		submitter := &mockSubmitter{}
		svc := newSnapshotService(t, reg, &task.MockContentStore{}, captioner, &mockFactory{}, submitter)

		snap, err := svc.CreateSnapshot(context.Background(), "photo.jpg", []byte("jpeg-bytes"), "image/jpeg")
		require.Error(t, err)
		assert.Nil(t, snap)
		assert.Empty(t, submitter.Submitted)

		var svcErr *SnapshotServiceError
		require.ErrorAs(t, err, &svcErr)
		assert.Equal(t, "create_snapshot", svcErr.Operation)
	})

	t.Run("storage failure aborts before captioning", func(t *testing.T) {
		t.Parallel()

		reg := task.NewMockRegistry()
		contents := &task.MockContentStore{
			SaveUploadFn: func(ctx context.Context, originalFilename string, data []byte) (string, error) {
				return "", errors.New("disk full")
			},
		}
		captioned := false
		captioner := &mockCaptioner{
			GenerateHaikuFn: func(ctx context.Context, imageData []byte, mimeType string) (string, error) {
				captioned = true
				return "haiku", nil
			},
		}
		svc := newSnapshotService(t, reg, contents, captioner, &mockFactory{}, &mockSubmitter{})

		_, err := svc.CreateSnapshot(context.Background(), "photo.jpg", []byte("jpeg-bytes"), "image/jpeg")
		assert.Error(t, err)
		assert.False(t, captioned)
	})

	t.Run("scheduling failure still returns the task id", func(t *testing.T) {
		t.Parallel()

		reg := task.NewMockRegistry()
		submitter := &mockSubmitter{
			SubmitFn: func(ctx context.Context, tk task.Task) error {
				return errors.New("task queue is full, try again later")
			},
		}
		svc := newSnapshotService(t, reg, &task.MockContentStore{}, &mockCaptioner{}, &mockFactory{}, submitter)

		snap, err := svc.CreateSnapshot(context.Background(), "photo.jpg", []byte("jpeg-bytes"), "image/jpeg")
		require.NoError(t, err)
		require.NotNil(t, snap)

		// The poll surface reports the scheduling failure
		rec := reg.Task(snap.TaskID)
		require.NotNil(t, rec)
		assert.Equal(t, registry.StatusFailed, rec.Status)
		assert.Contains(t, rec.ErrorDetail, "failed to schedule illustration task")
	})
}

func TestSnapshotService_ConsumeStatus(t *testing.T) {
	t.Parallel()

	t.Run("pending task stays polled", func(t *testing.T) {
		t.Parallel()

		reg := task.NewMockRegistry()
		id := reg.Seed("/images/1.jpg", "haiku", "prompt")
		svc := newSnapshotService(t, reg, &task.MockContentStore{}, &mockCaptioner{}, &mockFactory{}, &mockSubmitter{})

		for i := 0; i < 3; i++ {
			rec, err := svc.ConsumeStatus(context.Background(), id)
			require.NoError(t, err)
			assert.Equal(t, registry.StatusPending, rec.Status)
		}
	})

	t.Run("completed task is consumed once", func(t *testing.T) {
		t.Parallel()

		reg := task.NewMockRegistry()
		id := reg.Seed("/images/1.jpg", "haiku", "prompt")
		require.NoError(t, reg.MarkCompleted(context.Background(), id, "/images/ai_1.png"))

		svc := newSnapshotService(t, reg, &task.MockContentStore{}, &mockCaptioner{}, &mockFactory{}, &mockSubmitter{})

		rec, err := svc.ConsumeStatus(context.Background(), id)
		require.NoError(t, err)
		assert.Equal(t, registry.StatusCompleted, rec.Status)
		assert.Equal(t, "/images/ai_1.png", rec.IllustrationPath)

		_, err = svc.ConsumeStatus(context.Background(), id)
		assert.ErrorIs(t, err, ErrTaskNotFound)
	})

	t.Run("unknown id maps to ErrTaskNotFound", func(t *testing.T) {
		t.Parallel()

		reg := task.NewMockRegistry()
		svc := newSnapshotService(t, reg, &task.MockContentStore{}, &mockCaptioner{}, &mockFactory{}, &mockSubmitter{})

		_, err := svc.ConsumeStatus(context.Background(), "missing-id")
		assert.ErrorIs(t, err, ErrTaskNotFound)
	})
}
