package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// LocalStorage implements Storage for the local filesystem.
// It is safe for concurrent use.
type LocalStorage struct {
	baseDir string // Base directory for all file operations
	baseURL string // Base URL for generating public URLs
}

// NewLocalStorage creates a new local filesystem storage.
// baseDir is the root directory where all objects will be stored.
// baseURL is used for generating public URLs (e.g., "/assets").
// All operations are confined to baseDir to prevent path traversal.
func NewLocalStorage(baseDir, baseURL string) (*LocalStorage, error) {
	if baseDir == "" {
		return nil, ErrInvalidConfig
	}

	absBaseDir, err := filepath.Abs(baseDir)
	if err != nil {
		return nil, errors.Join(ErrInvalidConfig, err)
	}

	if err := os.MkdirAll(absBaseDir, 0755); err != nil {
		return nil, errors.Join(ErrInvalidConfig, err)
	}

	if baseURL != "" && !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}

	return &LocalStorage{
		baseDir: absBaseDir,
		baseURL: baseURL,
	}, nil
}

func (s *LocalStorage) Save(ctx context.Context, objectPath string, r io.Reader, contentType string) (*Object, error) {
	cleaned, err := cleanPath(objectPath)
	if err != nil {
		return nil, err
	}

	fullPath := filepath.Join(s.baseDir, filepath.FromSlash(cleaned))
	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return nil, errors.Join(ErrSaveFailed, err)
	}

	// Write to a temp file first so a failed copy never leaves a
	// truncated object at the target path.
	tmp, err := os.CreateTemp(filepath.Dir(fullPath), ".upload-*")
	if err != nil {
		return nil, errors.Join(ErrSaveFailed, err)
	}

	size, err := io.Copy(tmp, r)
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = os.Remove(tmp.Name())
		return nil, errors.Join(ErrSaveFailed, err)
	}

	if err := os.Rename(tmp.Name(), fullPath); err != nil {
		_ = os.Remove(tmp.Name())
		return nil, errors.Join(ErrSaveFailed, err)
	}

	return &Object{
		Path:        cleaned,
		Size:        size,
		ContentType: contentType,
		URL:         s.URL(cleaned),
	}, nil
}

func (s *LocalStorage) Delete(ctx context.Context, objectPath string) error {
	cleaned, err := cleanPath(objectPath)
	if err != nil {
		return err
	}

	fullPath := filepath.Join(s.baseDir, filepath.FromSlash(cleaned))
	if err := os.Remove(fullPath); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", ErrObjectNotFound, cleaned)
		}
		return errors.Join(ErrDeleteFailed, err)
	}
	return nil
}

func (s *LocalStorage) Exists(ctx context.Context, objectPath string) bool {
	cleaned, err := cleanPath(objectPath)
	if err != nil {
		return false
	}

	info, err := os.Stat(filepath.Join(s.baseDir, filepath.FromSlash(cleaned)))
	return err == nil && !info.IsDir()
}

func (s *LocalStorage) URL(objectPath string) string {
	cleaned, err := cleanPath(objectPath)
	if err != nil {
		return ""
	}
	return s.baseURL + cleaned
}
