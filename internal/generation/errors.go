package generation

import "errors"

// Common errors returned by the generation package
var (
	// ErrGenerationFailed is returned when a generation call fails for any general reason
	ErrGenerationFailed = errors.New("generation call failed")

	// ErrInvalidResponse is returned when the model response is empty or malformed
	ErrInvalidResponse = errors.New("invalid response from model")

	// ErrContentBlocked is returned when the model blocks the content due to safety filters
	ErrContentBlocked = errors.New("content blocked by model safety filters")

	// ErrInvalidConfig is returned when the generator configuration is invalid
	ErrInvalidConfig = errors.New("invalid generator configuration")

	// ErrEmptyImage is returned when caption generation is attempted with no image data
	ErrEmptyImage = errors.New("image data cannot be empty")

	// ErrEmptyPrompt is returned when illustration generation is attempted with an empty prompt
	ErrEmptyPrompt = errors.New("prompt cannot be empty")
)
