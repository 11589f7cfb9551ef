package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/Bhupinder22500650/car-dealership-project-website/internal/apperr"
)

// FileStore persists blobs under a base directory on the local filesystem.
// Every failure to create or write the target is surfaced as a StorageError;
// a half-written listing pointing at a file that was never written would
// corrupt the data model.
type FileStore struct {
	baseDir string
}

// NewFileStore creates a FileStore rooted at baseDir. The directory is
// created eagerly so permission problems fail at startup, not mid-request.
func NewFileStore(baseDir string) (*FileStore, error) {
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, &apperr.StorageError{Op: "mkdir", Err: err}
	}
	return &FileStore{baseDir: baseDir}, nil
}

// path maps a blob key to a location under baseDir. Keys are cleaned so a
// crafted key cannot escape the base directory.
func (f *FileStore) path(key string) (string, error) {
	clean := filepath.Clean("/" + key) // Forces the key to be interpreted as rooted
	p := filepath.Join(f.baseDir, clean)
	if !strings.HasPrefix(p, filepath.Clean(f.baseDir)+string(os.PathSeparator)) {
		return "", fmt.Errorf("invalid blob key %q", key)
	}
	return p, nil
}

func (f *FileStore) Put(ctx context.Context, key, contentType string, data []byte) error {
	p, err := f.path(key)
	if err != nil {
		return &apperr.StorageError{Op: "put", Err: err}
	}
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return &apperr.StorageError{Op: "mkdir", Err: err}
	}
	// Write to a temp file and rename so readers never observe partial bytes.
	tmp, err := os.CreateTemp(filepath.Dir(p), ".upload-*")
	if err != nil {
		return &apperr.StorageError{Op: "put", Err: err}
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return &apperr.StorageError{Op: "put", Err: err}
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return &apperr.StorageError{Op: "put", Err: err}
	}
	if err := os.Rename(tmp.Name(), p); err != nil {
		os.Remove(tmp.Name())
		return &apperr.StorageError{Op: "put", Err: err}
	}
	return nil
}

func (f *FileStore) Get(ctx context.Context, key string) ([]byte, error) {
	p, err := f.path(key)
	if err != nil {
		return nil, &apperr.StorageError{Op: "get", Err: err}
	}
	data, err := os.ReadFile(p)
	if err != nil {
		return nil, &apperr.StorageError{Op: "get", Err: err}
	}
	return data, nil
}

func (f *FileStore) Delete(ctx context.Context, key string) error {
	p, err := f.path(key)
	if err != nil {
		return &apperr.StorageError{Op: "delete", Err: err}
	}
	if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
		return &apperr.StorageError{Op: "delete", Err: err}
	}
	return nil
}
