package store

import (
	"context"
	"database/sql"

	"github.com/phrazzld/haiku-api/internal/domain"
)

// PostStore defines the interface for post data persistence.
// Version: 1.0
type PostStore interface {
	// Create saves a new post to the store and fills in the store-assigned
	// ID and CreatedAt fields on the given post.
	// It handles domain validation internally.
	// Returns validation errors from the domain Post if data is invalid.
	Create(ctx context.Context, post *domain.Post) error

	// ListRecent retrieves the most recent posts ordered by creation time
	// descending, up to the given limit.
	// Returns an empty slice if the store holds no posts.
	ListRecent(ctx context.Context, limit int) ([]*domain.Post, error)

	// ListIllustrated retrieves the most recent posts that have an AI
	// illustration, ordered by creation time descending, up to the given limit.
	// Returns an empty slice if no posts match.
	ListIllustrated(ctx context.Context, limit int) ([]*domain.Post, error)

	// WithTx returns a new PostStore instance that uses the provided transaction.
	// This allows for multiple operations to be executed within a single transaction.
	// The transaction should be created and managed by the caller.
	WithTx(tx *sql.Tx) PostStore
}
