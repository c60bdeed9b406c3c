// Package generation defines the interfaces and error types for the
// caption (haiku) and illustration generators. Concrete implementations
// backed by external model APIs live under internal/platform.
package generation
