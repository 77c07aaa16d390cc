package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// LocalStorage keeps uploads on the local filesystem under a single root
// directory. This is the development backend; the storage path recorded in
// the database is relative to the root, so the root can move between runs.
type LocalStorage struct {
	root string
}

// NewLocalStorage creates a local storage rooted at dir, creating it if needed.
func NewLocalStorage(dir string) (*LocalStorage, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create storage root %s: %w", dir, err)
	}
	return &LocalStorage{root: dir}, nil
}

// Upload writes the file under the root and returns its storage path.
func (s *LocalStorage) Upload(ctx context.Context, fileID uuid.UUID, filename string, data io.Reader) (string, error) {
	key := objectKey(fileID, filename)

	fullPath, err := s.resolve(key)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return "", fmt.Errorf("failed to create upload directory: %w", err)
	}

	f, err := os.Create(fullPath)
	if err != nil {
		return "", fmt.Errorf("failed to create %s: %w", key, err)
	}

	if _, err := io.Copy(f, data); err != nil {
		f.Close()
		os.Remove(fullPath)
		return "", fmt.Errorf("failed to write %s: %w", key, err)
	}
	if err := f.Close(); err != nil {
		os.Remove(fullPath)
		return "", fmt.Errorf("failed to finalize %s: %w", key, err)
	}

	return key, nil
}

// Download opens a stored file by its storage path.
func (s *LocalStorage) Download(ctx context.Context, storagePath string) (io.ReadCloser, error) {
	fullPath, err := s.resolve(storagePath)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(fullPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("file not found: %s", storagePath)
		}
		return nil, fmt.Errorf("failed to open %s: %w", storagePath, err)
	}
	return f, nil
}

// Delete removes a stored file. A missing file is not an error: delete is
// used for cleanup paths that may run twice.
func (s *LocalStorage) Delete(ctx context.Context, storagePath string) error {
	fullPath, err := s.resolve(storagePath)
	if err != nil {
		return err
	}

	if err := os.Remove(fullPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete %s: %w", storagePath, err)
	}
	return nil
}

// resolve maps a storage path to an absolute location under the root and
// rejects anything that would escape it. Storage paths come from the
// database, but the root is the trust boundary regardless.
func (s *LocalStorage) resolve(storagePath string) (string, error) {
	full := filepath.Join(s.root, filepath.FromSlash(storagePath))
	rootPrefix := filepath.Clean(s.root) + string(filepath.Separator)
	if !strings.HasPrefix(filepath.Clean(full), rootPrefix) {
		return "", fmt.Errorf("storage path escapes root: %s", storagePath)
	}
	return full, nil
}
