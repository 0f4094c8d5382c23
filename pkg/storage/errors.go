package storage

import "errors"

var (
	// ErrInvalidConfig is returned when a backend is misconfigured
	ErrInvalidConfig = errors.New("invalid storage config")

	// ErrInvalidPath is returned when the path contains traversal attempts
	ErrInvalidPath = errors.New("invalid path")

	// ErrObjectNotFound is returned when an object does not exist
	ErrObjectNotFound = errors.New("object not found")

	// ErrSaveFailed is returned when an object cannot be written
	ErrSaveFailed = errors.New("failed to save object")

	// ErrDeleteFailed is returned when an object cannot be deleted
	ErrDeleteFailed = errors.New("failed to delete object")
)
