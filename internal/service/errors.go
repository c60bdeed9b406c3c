// Package service provides application-level services orchestrating photo
// snapshots, haiku captioning and the gallery feeds.
package service

import "errors"

// Common service errors - sentinel errors used across service implementations.
// Callers check for these with errors.Is(); the API layer maps them to HTTP
// status codes.
var (
	// ErrNoImage indicates the request carried no usable image data.
	// API layer should map this to HTTP 400 Bad Request.
	ErrNoImage = errors.New("no image provided")

	// ErrTaskNotFound indicates the polled task id is unknown: never created,
	// already consumed, or expired. API layer should map this to HTTP 404.
	ErrTaskNotFound = errors.New("task not found")
)
