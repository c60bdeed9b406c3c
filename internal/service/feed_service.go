package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/phrazzld/haiku-api/internal/domain"
	"github.com/phrazzld/haiku-api/internal/platform/logger"
	"github.com/phrazzld/haiku-api/internal/store"
)

// feedLimit caps how many posts either feed returns.
const feedLimit = 20

// FeedServiceError is a custom error type for feed service errors.
type FeedServiceError struct {
	Operation string
	Message   string
	Err       error
}

// Error implements the error interface for FeedServiceError.
func (e *FeedServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("feed service %s failed: %s: %v", e.Operation, e.Message, e.Err)
	}
	return fmt.Sprintf("feed service %s failed: %s", e.Operation, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *FeedServiceError) Unwrap() error {
	return e.Err
}

// NewFeedServiceError creates a new FeedServiceError.
func NewFeedServiceError(operation, message string, err error) *FeedServiceError {
	return &FeedServiceError{
		Operation: operation,
		Message:   message,
		Err:       err,
	}
}

// FeedService serves the read-only gallery feeds.
type FeedService interface {
	// RecentPosts returns the newest posts, illustrated or not, newest first.
	RecentPosts(ctx context.Context) ([]*domain.Post, error)

	// IllustratedPosts returns the newest posts that have an AI illustration,
	// newest first.
	IllustratedPosts(ctx context.Context) ([]*domain.Post, error)
}

// feedServiceImpl implements the FeedService interface
type feedServiceImpl struct {
	posts  store.PostStore
	logger *slog.Logger
}

// NewFeedService creates a new FeedService.
// It returns an error if the post store is nil.
func NewFeedService(posts store.PostStore, log *slog.Logger) (FeedService, error) {
	if posts == nil {
		return nil, errors.New("post store cannot be nil")
	}
	if log == nil {
		log = slog.Default()
	}

	return &feedServiceImpl{
		posts:  posts,
		logger: log.With(slog.String("component", "feed_service")),
	}, nil
}

// RecentPosts implements FeedService.RecentPosts
func (s *feedServiceImpl) RecentPosts(ctx context.Context) ([]*domain.Post, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	posts, err := s.posts.ListRecent(ctx, feedLimit)
	if err != nil {
		log.Error("failed to list recent posts", slog.String("error", err.Error()))
		return nil, NewFeedServiceError("recent_posts", "failed to list posts", err)
	}

	return posts, nil
}

// IllustratedPosts implements FeedService.IllustratedPosts
func (s *feedServiceImpl) IllustratedPosts(ctx context.Context) ([]*domain.Post, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	posts, err := s.posts.ListIllustrated(ctx, feedLimit)
	if err != nil {
		log.Error("failed to list illustrated posts", slog.String("error", err.Error()))
		return nil, NewFeedServiceError("illustrated_posts", "failed to list posts", err)
	}

	return posts, nil
}
