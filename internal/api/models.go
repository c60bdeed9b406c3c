package api

import (
	"time"

	"github.com/phrazzld/haiku-api/internal/domain"
)

// Common response structures. Field names follow the wire format the
// frontend consumes, which mixes snake_case (posts) and camelCase (tasks).

// UploadResponse is the synchronous reply to a photo upload: the haiku plus
// the id for polling the illustration task.
type UploadResponse struct {
	Success bool   `json:"success"`
	Haiku   string `json:"haiku"`
	TaskID  string `json:"taskId"`
}

// StatusResponse reports the state of an illustration task.
type StatusResponse struct {
	Success bool   `json:"success"`
	Status  string `json:"status"`

	// AIImagePath is present only when Status is "completed".
	AIImagePath string `json:"aiImagePath,omitempty"`

	// Error is present only when Status is "failed".
	Error string `json:"error,omitempty"`
}

// PostResponse is one gallery entry in the /stream feed.
type PostResponse struct {
	ImagePath   string    `json:"image_path"`
	Haiku       string    `json:"haiku"`
	AIImagePath *string   `json:"ai_image_path"`
	CreatedAt   time.Time `json:"created_at"`
}

// StreamResponse is the /stream feed envelope.
type StreamResponse struct {
	Success bool           `json:"success"`
	Posts   []PostResponse `json:"posts"`
}

// AIHaikuResponse is one slideshow entry in the /api/ai-haikus feed.
type AIHaikuResponse struct {
	Text     string `json:"text"`
	ImageURL string `json:"imageUrl"`
	Prompt   string `json:"prompt"`
	Model    string `json:"model"`
}

// AIHaikusResponse is the /api/ai-haikus feed envelope.
type AIHaikusResponse struct {
	Success bool              `json:"success"`
	Haikus  []AIHaikuResponse `json:"haikus"`
}

// postToDTOResponse converts a domain.Post to a PostResponse
func postToDTOResponse(post *domain.Post) PostResponse {
	return PostResponse{
		ImagePath:   post.ImagePath,
		Haiku:       post.Haiku,
		AIImagePath: post.AIImagePath,
		CreatedAt:   post.CreatedAt,
	}
}
