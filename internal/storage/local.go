package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// localStore implements Store using the local filesystem.
// Keys are slash-separated paths relative to basePath.
type localStore struct {
	basePath  string
	folder    string
	publicURL string
}

// NewLocalStore creates a new localStore instance.
// Files are written below basePath/folder and served at publicURL.
func NewLocalStore(basePath, folder, publicURL string) (*localStore, error) {
	absPath, err := filepath.Abs(basePath)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve storage path: %w", err)
	}
	if err := os.MkdirAll(absPath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}

	return &localStore{
		basePath:  absPath,
		folder:    folder,
		publicURL: strings.TrimRight(publicURL, "/"),
	}, nil
}

// BasePath returns the directory the store writes to
func (s *localStore) BasePath() string {
	return s.basePath
}

// generatePath converts a key into a filesystem path below basePath
func (s *localStore) generatePath(key string) (string, error) {
	cleaned := path.Clean("/" + key)
	if cleaned == "/" {
		return "", fmt.Errorf("invalid storage key %q", key)
	}
	fullPath := filepath.Join(s.basePath, filepath.FromSlash(cleaned))
	if !strings.HasPrefix(fullPath, s.basePath+string(filepath.Separator)) {
		return "", fmt.Errorf("invalid storage key %q", key)
	}
	return fullPath, nil
}

// Upload writes r to a new uniquely named file
func (s *localStore) Upload(ctx context.Context, r io.Reader, meta UploadMetadata) (*Asset, error) {
	key := path.Join(s.folder, GenerateFileName(ExtensionFor(meta)))
	fullPath, err := s.generatePath(key)
	if err != nil {
		return nil, err
	}

	// Ensure the directory exists
	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	file, err := os.Create(fullPath)
	if err != nil {
		return nil, fmt.Errorf("failed to create file: %w", err)
	}

	if _, err := io.Copy(file, r); err != nil {
		file.Close()
		_ = os.Remove(fullPath)
		return nil, fmt.Errorf("failed to write file: %w", err)
	}
	if err := file.Close(); err != nil {
		_ = os.Remove(fullPath)
		return nil, fmt.Errorf("failed to close file: %w", err)
	}

	return &Asset{
		URL: s.publicURL + "/" + key,
		Key: key,
	}, nil
}

// Delete removes a file, treating a missing file as already deleted
func (s *localStore) Delete(ctx context.Context, key string) error {
	fullPath, err := s.generatePath(key)
	if err != nil {
		return err
	}
	if err := os.Remove(fullPath); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}
