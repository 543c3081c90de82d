// Package storage keeps uploaded post images, either in a local directory or
// in a MinIO bucket. Both backends address images by the same relative key,
// "images/<uuid>-<name>", which is also the URL path they are served under.
package storage

import (
	"context"
	"errors"
	"io"
	"path"
	"regexp"
	"strings"

	"github.com/google/uuid"
)

const Prefix = "images"

var ErrNotFound = errors.New("image not found")

type ImageStore interface {
	// Save stores r under a fresh unique key and returns that key.
	Save(ctx context.Context, filename, contentType string, size int64, r io.Reader) (string, error)
	Remove(ctx context.Context, key string) error
	// Open returns the image stored under key together with its content type.
	Open(ctx context.Context, key string) (io.ReadCloser, string, error)
}

var unsafeChars = regexp.MustCompile(`[^a-zA-Z0-9._-]+`)

// NewKey builds a collision free key for an uploaded file name.
func NewKey(filename string) string {
	base := unsafeChars.ReplaceAllString(path.Base(strings.ReplaceAll(filename, "\\", "/")), "-")
	base = strings.Trim(base, "-.")
	if base == "" {
		base = "image"
	}
	return Prefix + "/" + uuid.NewString() + "-" + base
}

// CleanKey validates a key received from a client or the database and
// returns it in canonical form.
func CleanKey(key string) (string, bool) {
	key = strings.TrimPrefix(strings.ReplaceAll(key, "\\", "/"), "/")
	clean := path.Clean(key)
	if !strings.HasPrefix(clean, Prefix+"/") {
		return "", false
	}
	return clean, true
}
