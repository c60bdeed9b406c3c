package generation

import "context"

// CaptionGenerator defines the interface for producing a haiku from a photo.
// This interface serves as a boundary between the application core and
// external AI/LLM services, following the hexagonal architecture pattern.
type CaptionGenerator interface {
	// GenerateHaiku produces a short haiku describing the given image.
	//
	// Parameters:
	//   - ctx: Context for the operation, which can be used for cancellation
	//   - imageData: the raw image bytes
	//   - mimeType: the image MIME type (e.g. "image/jpeg")
	//
	// Returns:
	//   - The generated haiku text, trimmed of surrounding whitespace
	//   - An error if the generation fails for any reason (see errors.go for specific types)
	GenerateHaiku(ctx context.Context, imageData []byte, mimeType string) (string, error)
}

// IllustrationGenerator defines the interface for rendering an image from a
// text prompt.
type IllustrationGenerator interface {
	// GenerateIllustration produces image bytes (PNG) for the given prompt.
	//
	// Returns an error if the generation fails; exactly one attempt is made,
	// failures are terminal for the calling task.
	GenerateIllustration(ctx context.Context, prompt string) ([]byte, error)
}
