// Package gemini implements the generation interfaces against Google's
// genai API: Gemini for haiku captioning and Imagen for illustration.
package gemini
