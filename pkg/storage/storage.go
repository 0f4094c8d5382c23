package storage

import (
	"context"
	"io"
	"path"
	"strings"
)

// Object describes a stored asset.
type Object struct {
	Path        string
	Size        int64
	ContentType string
	URL         string
}

// Storage abstracts the asset backends.
type Storage interface {
	// Save streams the reader's contents to the given path, overwriting
	// any existing object, and returns the stored object's metadata.
	Save(ctx context.Context, objectPath string, r io.Reader, contentType string) (*Object, error)
	// Delete removes a single object. Deleting a missing object is not
	// an error on backends that cannot distinguish it (S3).
	Delete(ctx context.Context, objectPath string) error
	// Exists checks whether an object is present.
	Exists(ctx context.Context, objectPath string) bool
	// URL returns the public URL for an object path.
	URL(objectPath string) string
}

// cleanPath normalizes an object path and rejects traversal attempts.
// Returned paths are slash-separated and never absolute.
func cleanPath(objectPath string) (string, error) {
	objectPath = strings.TrimSpace(objectPath)
	if objectPath == "" {
		return "", ErrInvalidPath
	}

	cleaned := path.Clean("/" + strings.ReplaceAll(objectPath, "\\", "/"))
	cleaned = strings.TrimPrefix(cleaned, "/")
	if cleaned == "" || cleaned == "." || strings.HasPrefix(cleaned, "..") {
		return "", ErrInvalidPath
	}
	return cleaned, nil
}
