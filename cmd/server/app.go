package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/afero"

	"github.com/phrazzld/haiku-api/internal/config"
	"github.com/phrazzld/haiku-api/internal/content"
	"github.com/phrazzld/haiku-api/internal/platform/gemini"
	"github.com/phrazzld/haiku-api/internal/platform/postgres"
	"github.com/phrazzld/haiku-api/internal/registry"
	"github.com/phrazzld/haiku-api/internal/service"
	"github.com/phrazzld/haiku-api/internal/store"
	"github.com/phrazzld/haiku-api/internal/task"
)

// sweepInterval is how often the memory registry scans for expired tasks.
const sweepInterval = time.Minute

// application holds all the shared application dependencies to simplify
// management and ensure proper cleanup on shutdown.
type application struct {
	// Configuration
	config *config.Config

	// Core services
	logger *slog.Logger
	db     *sql.DB

	// Stores
	postStore    store.PostStore
	contentStore content.Store

	// Task registry; memoryRegistry is non-nil only for the memory backend,
	// redisRegistry only for the redis backend.
	registry       registry.Registry
	memoryRegistry *registry.MemoryRegistry
	redisRegistry  *registry.RedisRegistry

	// Background processing
	taskRunner *task.TaskRunner

	// Application services
	snapshotService service.SnapshotService
	feedService     service.FeedService
}

// newApplication wires every component in dependency order: database and
// migrations first, then generation clients, registry and runner, finally
// the services the handlers consume.
func newApplication(ctx context.Context, cfg *config.Config, appLogger *slog.Logger) (*application, error) {
	app := &application{
		config: cfg,
		logger: appLogger,
	}

	db, err := setupAppDatabase(cfg, appLogger)
	if err != nil {
		return nil, err
	}
	app.db = db

	if err := runMigrations(db, appLogger); err != nil {
		app.cleanup()
		return nil, err
	}

	app.postStore = postgres.NewPostgresPostStore(db, appLogger)

	contentStore, err := content.NewFileStore(afero.NewOsFs(), cfg.Content.ImagesDir, appLogger)
	if err != nil {
		app.cleanup()
		return nil, fmt.Errorf("failed to set up content store: %w", err)
	}
	app.contentStore = contentStore

	genaiClient, err := gemini.NewClient(ctx, cfg.LLM)
	if err != nil {
		app.cleanup()
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}

	captioner, err := gemini.NewCaptioner(genaiClient, appLogger, cfg.LLM)
	if err != nil {
		app.cleanup()
		return nil, fmt.Errorf("failed to create captioner: %w", err)
	}

	illustrator, err := gemini.NewIllustrator(genaiClient, appLogger, cfg.LLM)
	if err != nil {
		app.cleanup()
		return nil, fmt.Errorf("failed to create illustrator: %w", err)
	}

	if err := app.setupRegistry(ctx); err != nil {
		app.cleanup()
		return nil, err
	}

	app.taskRunner = task.NewTaskRunner(task.DefaultTaskRunnerConfig(), appLogger)

	taskFactory := task.NewIllustrationTaskFactory(
		app.registry,
		illustrator,
		app.contentStore,
		app.postStore,
		appLogger,
	)

	snapshotService, err := service.NewSnapshotService(
		app.contentStore,
		captioner,
		app.registry,
		taskFactory,
		app.taskRunner,
		appLogger,
	)
	if err != nil {
		app.cleanup()
		return nil, fmt.Errorf("failed to create snapshot service: %w", err)
	}
	app.snapshotService = snapshotService

	feedService, err := service.NewFeedService(app.postStore, appLogger)
	if err != nil {
		app.cleanup()
		return nil, fmt.Errorf("failed to create feed service: %w", err)
	}
	app.feedService = feedService

	app.taskRunner.Start()
	appLogger.Info("Application initialized")

	return app, nil
}

// setupRegistry builds the configured task registry backend. The memory
// backend needs the periodic sweeper; Redis handles retention with key TTLs.
func (app *application) setupRegistry(ctx context.Context) error {
	retention := time.Duration(app.config.Registry.RetentionMinutes) * time.Minute

	switch app.config.Registry.Backend {
	case "redis":
		redisRegistry, err := registry.NewRedisRegistry(
			ctx,
			app.config.Registry.RedisAddr,
			retention,
			app.logger,
		)
		if err != nil {
			return fmt.Errorf("failed to connect registry to redis: %w", err)
		}
		app.redisRegistry = redisRegistry
		app.registry = redisRegistry

	default:
		memoryRegistry := registry.NewMemoryRegistry(retention, app.logger)
		memoryRegistry.StartSweeper(sweepInterval)
		app.memoryRegistry = memoryRegistry
		app.registry = memoryRegistry
	}

	app.logger.Info("Task registry ready",
		"backend", app.config.Registry.Backend,
		"retention_minutes", app.config.Registry.RetentionMinutes)
	return nil
}

// cleanup releases application resources in reverse initialization order.
// Safe to call with partially initialized state.
func (app *application) cleanup() {
	if app.taskRunner != nil {
		app.taskRunner.Stop()
	}

	if app.memoryRegistry != nil {
		app.memoryRegistry.StopSweeper()
	}

	if app.redisRegistry != nil {
		if err := app.redisRegistry.Close(); err != nil {
			app.logger.Error("Failed to close redis registry", "error", err)
		}
	}

	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("Failed to close database", "error", err)
		}
	}
}
