package domain

import (
	"strings"
	"time"
)

const minTextLength = 5

type Post struct {
	ID          string
	Title       string
	Content     string
	ImageURL    string
	CreatorID   string
	CreatorName string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// OwnedBy reports whether userID created the post.
func (p Post) OwnedBy(userID string) bool {
	return p.CreatorID != "" && p.CreatorID == userID
}

// Validate checks the user supplied fields of a post.
func (p Post) Validate() []FieldError {
	var errs []FieldError
	if len(strings.TrimSpace(p.Title)) < minTextLength {
		errs = append(errs, FieldError{Field: "title", Value: p.Title, Message: "Title must be at least 5 characters long."})
	}
	if len(strings.TrimSpace(p.Content)) < minTextLength {
		errs = append(errs, FieldError{Field: "content", Value: p.Content, Message: "Content must be at least 5 characters long."})
	}
	return errs
}
