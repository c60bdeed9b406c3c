package gemini

import (
	"context"
	"fmt"

	"github.com/phrazzld/haiku-api/internal/config"
	"github.com/phrazzld/haiku-api/internal/generation"
	"google.golang.org/genai"
)

// NewClient initializes the genai client shared by the captioner and the
// illustrator.
//
// Parameters:
//   - ctx: Context for the operation, which can be used for cancellation
//   - cfg: LLM configuration containing the API key
//
// Returns an initialized client or an error if the configuration is invalid.
func NewClient(ctx context.Context, cfg config.LLMConfig) (*genai.Client, error) {
	if cfg.GeminiAPIKey == "" {
		return nil, fmt.Errorf("%w: gemini API key cannot be empty", generation.ErrInvalidConfig)
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.GeminiAPIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create genai client: %v", generation.ErrInvalidConfig, err)
	}

	return client, nil
}
