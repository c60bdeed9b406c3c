package api

import (
	"fmt"
	"net/http"

	"github.com/phrazzld/haiku-api/internal/api/shared"
	"github.com/phrazzld/haiku-api/internal/service"
)

// FeedHandler handles the read-only gallery feed HTTP requests
type FeedHandler struct {
	feedService service.FeedService

	// modelName is reported in the /api/ai-haikus payload so the slideshow
	// can attribute the illustration.
	modelName string
}

// NewFeedHandler creates a new FeedHandler
func NewFeedHandler(feedService service.FeedService, modelName string) *FeedHandler {
	return &FeedHandler{
		feedService: feedService,
		modelName:   modelName,
	}
}

// Stream handles GET /stream requests
func (h *FeedHandler) Stream(w http.ResponseWriter, r *http.Request) {
	posts, err := h.feedService.RecentPosts(r.Context())
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusInternalServerError,
			"Failed to load posts", err)
		return
	}

	resp := StreamResponse{Success: true, Posts: make([]PostResponse, 0, len(posts))}
	for _, post := range posts {
		resp.Posts = append(resp.Posts, postToDTOResponse(post))
	}

	shared.RespondWithJSON(w, r, http.StatusOK, resp)
}

// AIHaikus handles GET /api/ai-haikus requests
func (h *FeedHandler) AIHaikus(w http.ResponseWriter, r *http.Request) {
	posts, err := h.feedService.IllustratedPosts(r.Context())
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusInternalServerError,
			"Failed to load haikus", err)
		return
	}

	resp := AIHaikusResponse{Success: true, Haikus: make([]AIHaikuResponse, 0, len(posts))}
	for _, post := range posts {
		if post.AIImagePath == nil {
			continue
		}
		resp.Haikus = append(resp.Haikus, AIHaikuResponse{
			Text:     post.Haiku,
			ImageURL: *post.AIImagePath,
			Prompt:   fmt.Sprintf("Created from haiku: %q", post.Haiku),
			Model:    h.modelName,
		})
	}

	shared.RespondWithJSON(w, r, http.StatusOK, resp)
}
