package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/phrazzld/haiku-api/internal/api"
	apiMiddleware "github.com/phrazzld/haiku-api/internal/api/middleware"
)

// setupRouter creates and configures the application router with all routes and middleware.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	// Apply standard middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(apiMiddleware.TraceMiddleware) // Add trace IDs for error correlation

	snapshotHandler := api.NewSnapshotHandler(app.snapshotService, app.config.Content.MaxUploadBytes)
	feedHandler := api.NewFeedHandler(app.feedService, app.config.LLM.IllustrationModel)

	// Register routes
	r.Post("/upload", snapshotHandler.Upload)
	r.Get("/image-status/{taskID}", snapshotHandler.Status)
	r.Get("/stream", feedHandler.Stream)
	r.Get("/api/ai-haikus", feedHandler.AIHaikus)

	// Stored images (uploads and generated illustrations)
	r.Handle("/images/*", http.StripPrefix("/images/", app.contentStore.FileServer()))

	// Health check endpoint
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, err := w.Write([]byte("OK"))
		if err != nil {
			app.logger.Error("Failed to write health check response", "error", err)
		}
	})

	return r
}
