package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"strings"

	"github.com/google/uuid"
)

// Storage persists uploaded source files (contracts, evidence, prior
// documents) referenced by the files table. The returned storage path is
// opaque to callers and round-trips through Download and Delete.
type Storage interface {
	// Upload stores a file and returns the storage path
	Upload(ctx context.Context, fileID uuid.UUID, filename string, data io.Reader) (string, error)

	// Download retrieves a file by storage path
	Download(ctx context.Context, storagePath string) (io.ReadCloser, error)

	// Delete removes a file by storage path
	Delete(ctx context.Context, storagePath string) error
}

// Backend selects the storage implementation.
type Backend string

const (
	BackendLocal Backend = "local"
	BackendS3    Backend = "s3"
)

// uploadPrefix namespaces every stored object so the bucket/directory can be
// shared with other artifacts (exports, backups) later.
const uploadPrefix = "uploads"

// Config holds storage configuration resolved at startup.
type Config struct {
	Backend      Backend
	LocalDir     string // for local storage
	S3Bucket     string // for S3 storage
	S3Region     string // for S3 storage
	AWSAccessKey string
	AWSSecretKey string
}

// NewStorage creates a storage instance for the configured backend.
func NewStorage(cfg Config) (Storage, error) {
	switch cfg.Backend {
	case BackendLocal:
		return NewLocalStorage(cfg.LocalDir)
	case BackendS3:
		return NewS3Storage(cfg)
	default:
		return nil, fmt.Errorf("unknown storage backend: %s", cfg.Backend)
	}
}

// NewStorageFromEnv resolves the storage configuration from environment
// variables. Local storage is the development default; S3 requires a bucket.
func NewStorageFromEnv() (Storage, error) {
	backend := Backend(os.Getenv("LAWLENS_STORAGE_BACKEND"))
	if backend == "" {
		backend = BackendLocal
	}

	cfg := Config{Backend: backend}

	switch backend {
	case BackendLocal:
		cfg.LocalDir = os.Getenv("LAWLENS_STORAGE_DIR")
		if cfg.LocalDir == "" {
			cfg.LocalDir = "./data/uploads"
		}
		return NewLocalStorage(cfg.LocalDir)

	case BackendS3:
		cfg.S3Bucket = os.Getenv("LAWLENS_S3_BUCKET")
		if cfg.S3Bucket == "" {
			return nil, errors.New("LAWLENS_S3_BUCKET environment variable is required for S3 storage")
		}
		cfg.S3Region = os.Getenv("AWS_REGION")
		if cfg.S3Region == "" {
			cfg.S3Region = "ap-east-1"
		}
		cfg.AWSAccessKey = os.Getenv("AWS_ACCESS_KEY_ID")
		cfg.AWSSecretKey = os.Getenv("AWS_SECRET_ACCESS_KEY")
		return NewS3Storage(cfg)

	default:
		return nil, fmt.Errorf("unknown storage backend: %s", backend)
	}
}

// objectKey builds the storage path for one upload:
// uploads/<id-prefix>/<id>_<sanitized-name>. The two-character fan-out keeps
// any single directory or key prefix from accumulating every upload.
func objectKey(fileID uuid.UUID, filename string) string {
	id := fileID.String()
	return path.Join(uploadPrefix, id[:2], id+"_"+sanitizeFilename(filename))
}

// sanitizeFilename keeps the original name readable (including CJK) while
// stripping anything with path or key semantics.
func sanitizeFilename(filename string) string {
	name := path.Base(strings.ReplaceAll(filename, "\\", "/"))
	name = strings.Map(func(r rune) rune {
		switch r {
		case ' ', '/', '\\', '#', '?', '%':
			return '_'
		}
		return r
	}, name)
	if name == "" || name == "." || name == ".." {
		return "file"
	}
	return name
}
