package domain

import (
	"errors"
	"time"
)

// Common validation errors for Post
var (
	ErrEmptyImagePath        = errors.New("post image path cannot be empty")
	ErrEmptyHaiku            = errors.New("post haiku cannot be empty")
	ErrEmptyIllustrationPath = errors.New("post illustration path cannot be empty when set")
)

// Post represents a persisted, completed triple of original photo, generated
// haiku and AI illustration. Posts are written once by the illustration
// pipeline and never updated by the core flow.
type Post struct {
	ID          int64     `json:"id"`
	ImagePath   string    `json:"image_path"`
	Haiku       string    `json:"haiku"`
	AIImagePath *string   `json:"ai_image_path"`
	CreatedAt   time.Time `json:"created_at"`
}

// NewPost creates a new Post for the given photo, haiku and illustration
// path. The ID and CreatedAt fields are assigned by the store on insert.
// Returns an error if validation fails.
func NewPost(imagePath, haiku, aiImagePath string) (*Post, error) {
	post := &Post{
		ImagePath:   imagePath,
		Haiku:       haiku,
		AIImagePath: &aiImagePath,
	}

	if err := post.Validate(); err != nil {
		return nil, err
	}

	return post, nil
}

// Validate checks if the Post has valid data.
// Returns an error if any field fails validation.
func (p *Post) Validate() error {
	if p.ImagePath == "" {
		return ErrEmptyImagePath
	}

	if p.Haiku == "" {
		return ErrEmptyHaiku
	}

	// The column is nullable, but a present pointer must carry a value.
	if p.AIImagePath != nil && *p.AIImagePath == "" {
		return ErrEmptyIllustrationPath
	}

	return nil
}
