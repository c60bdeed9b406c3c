// Package content stores uploaded photos and generated illustrations as
// files and maps them to the public /images/ paths served over HTTP.
package content

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"path"
	"strings"
	"sync/atomic"
	"time"

	"github.com/spf13/afero"
)

// publicPrefix is the URL prefix under which stored images are served.
const publicPrefix = "/images/"

// Common errors returned by the content store.
var (
	ErrEmptyImage           = errors.New("image data cannot be empty")
	ErrUnsupportedExtension = errors.New("unsupported image extension")
)

// allowedExtensions are the upload file extensions the store accepts.
var allowedExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".webp": true,
}

// Store writes image files and hands back their public paths.
// Version: 1.0
type Store interface {
	// SaveUpload stores an uploaded photo, deriving the stored name from the
	// upload time and the original file extension. Returns the public path.
	SaveUpload(ctx context.Context, originalFilename string, data []byte) (string, error)

	// SaveIllustration stores generated PNG image bytes. Returns the public path.
	SaveIllustration(ctx context.Context, data []byte) (string, error)

	// FileServer returns an http.Handler serving the stored files. The
	// handler expects the publicPrefix to already be stripped by the router.
	FileServer() http.Handler
}

// FileStore implements Store on top of an afero filesystem rooted at the
// images directory. Production uses the OS filesystem; tests use a memory map.
type FileStore struct {
	fs     afero.Fs
	logger *slog.Logger

	// seq breaks ties when two writes land in the same millisecond.
	seq atomic.Int64

	// now is overridable for tests.
	now func() time.Time
}

// NewFileStore creates a FileStore on the given filesystem, creating the
// root directory if needed. If logger is nil, a default logger will be used.
func NewFileStore(fs afero.Fs, dir string, logger *slog.Logger) (*FileStore, error) {
	if logger == nil {
		logger = slog.Default()
	}

	if err := fs.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create images directory %s: %w", dir, err)
	}
	base := afero.NewBasePathFs(fs, dir)

	return &FileStore{
		fs:     base,
		logger: logger.With(slog.String("component", "content_store")),
		now:    time.Now,
	}, nil
}

// Ensure FileStore implements the Store interface
var _ Store = (*FileStore)(nil)

// SaveUpload implements Store.SaveUpload
func (s *FileStore) SaveUpload(ctx context.Context, originalFilename string, data []byte) (string, error) {
	if len(data) == 0 {
		return "", ErrEmptyImage
	}

	ext := strings.ToLower(path.Ext(originalFilename))
	if !allowedExtensions[ext] {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedExtension, ext)
	}

	name := fmt.Sprintf("%d%s", s.stamp(), ext)
	return s.write(ctx, name, data)
}

// SaveIllustration implements Store.SaveIllustration
func (s *FileStore) SaveIllustration(ctx context.Context, data []byte) (string, error) {
	if len(data) == 0 {
		return "", ErrEmptyImage
	}

	name := fmt.Sprintf("ai_%d.png", s.stamp())
	return s.write(ctx, name, data)
}

// FileServer implements Store.FileServer
func (s *FileStore) FileServer() http.Handler {
	return http.FileServer(afero.NewHttpFs(s.fs))
}

// stamp returns a millisecond timestamp that is strictly increasing across
// calls within this process.
func (s *FileStore) stamp() int64 {
	millis := s.now().UnixMilli()
	for {
		prev := s.seq.Load()
		if millis <= prev {
			millis = prev + 1
		}
		if s.seq.CompareAndSwap(prev, millis) {
			return millis
		}
	}
}

func (s *FileStore) write(ctx context.Context, name string, data []byte) (string, error) {
	if err := afero.WriteFile(s.fs, name, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write image file %s: %w", name, err)
	}

	s.logger.Debug("image stored",
		"filename", name,
		"size_bytes", len(data))
	return publicPrefix + name, nil
}
