package gemini

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/phrazzld/haiku-api/internal/config"
	"github.com/phrazzld/haiku-api/internal/generation"
	"google.golang.org/genai"
)

// haikuInstruction is the fixed instruction sent alongside the photo.
const haikuInstruction = "Write a concise 5-7-5 haiku about this image."

// Captioner implements the generation.CaptionGenerator interface using
// Google's Gemini API to generate a haiku from a photo.
type Captioner struct {
	logger *slog.Logger
	client *genai.Client
	model  string
}

// NewCaptioner creates a new Captioner using the shared genai client.
//
// Parameters:
//   - client: an initialized genai client (see NewClient)
//   - logger: a structured logger for operation logging
//   - cfg: LLM configuration carrying the caption model name
//
// Returns a properly initialized Captioner or an error if the
// configuration is invalid.
func NewCaptioner(client *genai.Client, logger *slog.Logger, cfg config.LLMConfig) (*Captioner, error) {
	if client == nil {
		return nil, fmt.Errorf("%w: genai client cannot be nil", generation.ErrInvalidConfig)
	}
	if logger == nil {
		return nil, fmt.Errorf("%w: logger cannot be nil", generation.ErrInvalidConfig)
	}
	if cfg.CaptionModel == "" {
		return nil, fmt.Errorf("%w: caption model name cannot be empty", generation.ErrInvalidConfig)
	}

	return &Captioner{
		logger: logger.With(slog.String("component", "gemini_captioner")),
		client: client,
		model:  cfg.CaptionModel,
	}, nil
}

// Ensure Captioner implements the generation.CaptionGenerator interface
var _ generation.CaptionGenerator = (*Captioner)(nil)

// GenerateHaiku implements generation.CaptionGenerator.GenerateHaiku
// It sends the photo and the fixed haiku instruction to Gemini in a single
// multimodal request. Exactly one attempt is made; any failure is returned
// to the caller.
func (c *Captioner) GenerateHaiku(ctx context.Context, imageData []byte, mimeType string) (string, error) {
	if len(imageData) == 0 {
		return "", generation.ErrEmptyImage
	}
	if mimeType == "" {
		mimeType = "image/jpeg"
	}

	c.logger.InfoContext(ctx, "requesting haiku from Gemini",
		"model", c.model,
		"image_bytes", len(imageData),
		"mime_type", mimeType)

	contents := []*genai.Content{
		genai.NewContentFromParts([]*genai.Part{
			genai.NewPartFromText(haikuInstruction),
			genai.NewPartFromBytes(imageData, mimeType),
		}, genai.RoleUser),
	}

	resp, err := c.client.Models.GenerateContent(ctx, c.model, contents, nil)
	if err != nil {
		return "", fmt.Errorf("%w: %v", generation.ErrGenerationFailed, err)
	}

	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", fmt.Errorf("%w: no content generated", generation.ErrInvalidResponse)
	}
	if resp.Candidates[0].FinishReason == genai.FinishReasonSafety {
		return "", fmt.Errorf("%w: caption request", generation.ErrContentBlocked)
	}

	haiku := strings.TrimSpace(resp.Text())
	if haiku == "" {
		return "", fmt.Errorf("%w: empty caption text", generation.ErrInvalidResponse)
	}

	c.logger.InfoContext(ctx, "haiku generated",
		"model", c.model,
		"haiku_length", len(haiku))
	return haiku, nil
}
