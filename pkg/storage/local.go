package storage

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/assetdeck/assetdeck/pkg/types"
)

// LocalStore stores objects on the local filesystem under a base directory.
// Public URLs are derived from a configured base URL that the HTTP layer
// serves the base directory at.
type LocalStore struct {
	basePath string
	baseURL  string
}

// NewLocalStore creates a local filesystem store rooted at basePath.
func NewLocalStore(basePath, baseURL string) (*LocalStore, error) {
	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}
	return &LocalStore{
		basePath: basePath,
		baseURL:  strings.TrimRight(baseURL, "/"),
	}, nil
}

func (s *LocalStore) Store(ctx context.Context, path string, reader io.Reader) error {
	target, err := s.resolve(path)
	if err != nil {
		return err
	}

	if _, err := os.Stat(target); err == nil {
		return &types.StorageError{Op: "store", Path: path, Err: os.ErrExist}
	}

	if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
		return &types.StorageError{Op: "store", Path: path, Err: err}
	}

	tempFile, err := os.CreateTemp(s.basePath, "upload-*")
	if err != nil {
		return &types.StorageError{Op: "store", Path: path, Err: err}
	}
	defer os.Remove(tempFile.Name())

	if _, err := io.Copy(tempFile, reader); err != nil {
		tempFile.Close()
		return &types.StorageError{Op: "store", Path: path, Err: err}
	}
	tempFile.Close()

	if err := os.Rename(tempFile.Name(), target); err != nil {
		return &types.StorageError{Op: "store", Path: path, Err: err}
	}

	return nil
}

func (s *LocalStore) Retrieve(ctx context.Context, path string) (io.ReadCloser, error) {
	target, err := s.resolve(path)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(target)
	if err != nil {
		return nil, &types.StorageError{Op: "retrieve", Path: path, Err: err}
	}
	return f, nil
}

func (s *LocalStore) Delete(ctx context.Context, path string) error {
	target, err := s.resolve(path)
	if err != nil {
		return err
	}

	if err := os.Remove(target); err != nil && !os.IsNotExist(err) {
		return &types.StorageError{Op: "delete", Path: path, Err: err}
	}
	return nil
}

func (s *LocalStore) Exists(ctx context.Context, path string) (bool, error) {
	target, err := s.resolve(path)
	if err != nil {
		return false, err
	}

	_, err = os.Stat(target)
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, &types.StorageError{Op: "stat", Path: path, Err: err}
}

func (s *LocalStore) URL(path string) string {
	segments := strings.Split(path, "/")
	for i, seg := range segments {
		segments[i] = url.PathEscape(seg)
	}
	return s.baseURL + "/" + strings.Join(segments, "/")
}

// resolve maps a storage path onto the base directory, rejecting any path
// that would escape it.
func (s *LocalStore) resolve(path string) (string, error) {
	clean := filepath.Clean(filepath.FromSlash(path))
	if clean == "." || strings.HasPrefix(clean, "..") || filepath.IsAbs(clean) {
		return "", &types.StorageError{Op: "resolve", Path: path, Err: fmt.Errorf("invalid storage path")}
	}
	return filepath.Join(s.basePath, clean), nil
}
