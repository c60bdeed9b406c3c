package api

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/phrazzld/haiku-api/internal/api/shared"
	"github.com/phrazzld/haiku-api/internal/registry"
	"github.com/phrazzld/haiku-api/internal/service"
)

// uploadField is the multipart form field carrying the photo.
const uploadField = "snapshot"

// SnapshotHandler handles photo upload and task status HTTP requests
type SnapshotHandler struct {
	snapshotService service.SnapshotService
	maxUploadBytes  int64
}

// NewSnapshotHandler creates a new SnapshotHandler
func NewSnapshotHandler(snapshotService service.SnapshotService, maxUploadBytes int64) *SnapshotHandler {
	return &SnapshotHandler{
		snapshotService: snapshotService,
		maxUploadBytes:  maxUploadBytes,
	}
}

// Upload handles POST /upload requests
func (h *SnapshotHandler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)

	if err := r.ParseMultipartForm(h.maxUploadBytes); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest,
			"Invalid upload", err)
		return
	}

	file, header, err := r.FormFile(uploadField)
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "No image provided")
		return
	}
	defer func() {
		if err := file.Close(); err != nil {
			slog.Warn("failed to close uploaded file", "error", err)
		}
	}()

	contentType := header.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "image/") {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Only image uploads are accepted")
		return
	}

	data, err := io.ReadAll(file)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest,
			"Failed to read upload", err)
		return
	}

	snap, err := h.snapshotService.CreateSnapshot(r.Context(), header.Filename, data, contentType)
	if err != nil {
		if errors.Is(err, service.ErrNoImage) {
			shared.RespondWithError(w, r, http.StatusBadRequest, "No image provided")
			return
		}
		shared.RespondWithErrorAndLog(w, r, http.StatusInternalServerError,
			"Failed to process snapshot", err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, UploadResponse{
		Success: true,
		Haiku:   snap.Haiku,
		TaskID:  snap.TaskID,
	})
}

// Status handles GET /image-status/{taskID} requests. Reading a terminal
// status consumes the task: the next poll with the same id returns 404.
func (h *SnapshotHandler) Status(w http.ResponseWriter, r *http.Request) {
	taskID := chi.URLParam(r, "taskID")

	rec, err := h.snapshotService.ConsumeStatus(r.Context(), taskID)
	if err != nil {
		if errors.Is(err, service.ErrTaskNotFound) {
			shared.RespondWithError(w, r, http.StatusNotFound, "Task not found")
			return
		}
		shared.RespondWithErrorAndLog(w, r, http.StatusInternalServerError,
			"Failed to read task status", err)
		return
	}

	resp := StatusResponse{Success: true, Status: string(rec.Status)}
	switch rec.Status {
	case registry.StatusCompleted:
		resp.AIImagePath = rec.IllustrationPath
	case registry.StatusFailed:
		resp.Error = rec.ErrorDetail
	}

	shared.RespondWithJSON(w, r, http.StatusOK, resp)
}
