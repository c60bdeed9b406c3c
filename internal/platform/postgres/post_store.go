package postgres

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/phrazzld/haiku-api/internal/domain"
	"github.com/phrazzld/haiku-api/internal/platform/logger"
	"github.com/phrazzld/haiku-api/internal/store"
)

// PostgresPostStore implements the store.PostStore interface
// using a PostgreSQL database as the storage backend.
type PostgresPostStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresPostStore creates a new PostgreSQL implementation of the PostStore interface.
// It accepts a database connection or transaction that should be initialized and managed by the caller.
// If logger is nil, a default logger will be used.
func NewPostgresPostStore(db store.DBTX, logger *slog.Logger) *PostgresPostStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresPostStore{
		db:     db,
		logger: logger.With(slog.String("component", "post_store")),
	}
}

// Ensure PostgresPostStore implements store.PostStore interface
var _ store.PostStore = (*PostgresPostStore)(nil)

// Create implements store.PostStore.Create
// It saves a new post to the database and fills in the store-assigned ID and
// CreatedAt fields. Returns validation errors from the domain Post if data is invalid.
func (s *PostgresPostStore) Create(ctx context.Context, post *domain.Post) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := post.Validate(); err != nil {
		log.Warn("post validation failed during create",
			slog.String("error", err.Error()))
		return err
	}

	query := `
		INSERT INTO posts (image_path, haiku, ai_image_path)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`
	err := s.db.QueryRowContext(
		ctx,
		query,
		post.ImagePath,
		post.Haiku,
		post.AIImagePath,
	).Scan(&post.ID, &post.CreatedAt)

	if err != nil {
		log.Error("failed to create post",
			slog.String("error", err.Error()),
			slog.String("image_path", post.ImagePath))
		return MapError(err)
	}

	log.Info("post created successfully",
		slog.Int64("post_id", post.ID),
		slog.String("image_path", post.ImagePath))
	return nil
}

// ListRecent implements store.PostStore.ListRecent
// It retrieves the most recent posts ordered by creation time descending.
// Returns an empty slice if the table holds no posts.
func (s *PostgresPostStore) ListRecent(ctx context.Context, limit int) ([]*domain.Post, error) {
	query := `
		SELECT id, image_path, haiku, ai_image_path, created_at
		FROM posts
		ORDER BY created_at DESC, id DESC
		LIMIT $1
	`
	return s.listPosts(ctx, query, limit)
}

// ListIllustrated implements store.PostStore.ListIllustrated
// It retrieves the most recent posts that carry an AI illustration.
func (s *PostgresPostStore) ListIllustrated(ctx context.Context, limit int) ([]*domain.Post, error) {
	query := `
		SELECT id, image_path, haiku, ai_image_path, created_at
		FROM posts
		WHERE ai_image_path IS NOT NULL
		ORDER BY created_at DESC, id DESC
		LIMIT $1
	`
	return s.listPosts(ctx, query, limit)
}

// listPosts runs a posts query with a single limit argument and scans the rows.
func (s *PostgresPostStore) listPosts(ctx context.Context, query string, limit int) ([]*domain.Post, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		log.Error("failed to query posts", slog.String("error", err.Error()))
		return nil, MapError(err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			log.Warn("failed to close rows", slog.String("error", closeErr.Error()))
		}
	}()

	posts := make([]*domain.Post, 0)
	for rows.Next() {
		var post domain.Post
		if err := rows.Scan(
			&post.ID,
			&post.ImagePath,
			&post.Haiku,
			&post.AIImagePath,
			&post.CreatedAt,
		); err != nil {
			log.Error("failed to scan post row", slog.String("error", err.Error()))
			return nil, MapError(err)
		}
		posts = append(posts, &post)
	}

	if err := rows.Err(); err != nil {
		log.Error("error iterating post rows", slog.String("error", err.Error()))
		return nil, MapError(err)
	}

	return posts, nil
}

// WithTx implements store.PostStore.WithTx
// It returns a new PostgresPostStore that uses the provided transaction.
func (s *PostgresPostStore) WithTx(tx *sql.Tx) store.PostStore {
	return &PostgresPostStore{
		db:     tx,
		logger: s.logger,
	}
}
