package gemini

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/phrazzld/haiku-api/internal/config"
	"github.com/phrazzld/haiku-api/internal/generation"
	"google.golang.org/genai"
)

// Illustrator implements the generation.IllustrationGenerator interface
// using Google's Imagen API to render an image from a haiku prompt.
type Illustrator struct {
	logger *slog.Logger
	client *genai.Client
	model  string
}

// NewIllustrator creates a new Illustrator using the shared genai client.
func NewIllustrator(client *genai.Client, logger *slog.Logger, cfg config.LLMConfig) (*Illustrator, error) {
	if client == nil {
		return nil, fmt.Errorf("%w: genai client cannot be nil", generation.ErrInvalidConfig)
	}
	if logger == nil {
		return nil, fmt.Errorf("%w: logger cannot be nil", generation.ErrInvalidConfig)
	}
	if cfg.IllustrationModel == "" {
		return nil, fmt.Errorf("%w: illustration model name cannot be empty", generation.ErrInvalidConfig)
	}

	return &Illustrator{
		logger: logger.With(slog.String("component", "gemini_illustrator")),
		client: client,
		model:  cfg.IllustrationModel,
	}, nil
}

// Ensure Illustrator implements the generation.IllustrationGenerator interface
var _ generation.IllustrationGenerator = (*Illustrator)(nil)

// GenerateIllustration implements generation.IllustrationGenerator.GenerateIllustration
// It requests a single image for the prompt. Exactly one attempt is made;
// the caller records any failure against its task.
func (i *Illustrator) GenerateIllustration(ctx context.Context, prompt string) ([]byte, error) {
	if prompt == "" {
		return nil, generation.ErrEmptyPrompt
	}

	i.logger.InfoContext(ctx, "requesting illustration from Imagen",
		"model", i.model,
		"prompt_length", len(prompt))

	resp, err := i.client.Models.GenerateImages(ctx, i.model, prompt, &genai.GenerateImagesConfig{
		NumberOfImages: 1,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", generation.ErrGenerationFailed, err)
	}

	if resp == nil || len(resp.GeneratedImages) == 0 || resp.GeneratedImages[0].Image == nil {
		return nil, fmt.Errorf("%w: no image generated", generation.ErrInvalidResponse)
	}

	imageBytes := resp.GeneratedImages[0].Image.ImageBytes
	if len(imageBytes) == 0 {
		return nil, fmt.Errorf("%w: empty image payload", generation.ErrInvalidResponse)
	}

	i.logger.InfoContext(ctx, "illustration generated",
		"model", i.model,
		"image_bytes", len(imageBytes))
	return imageBytes, nil
}
