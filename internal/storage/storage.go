package storage

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"
)

// ObjectStorage is the archive for raw import payloads. Uploaded files are
// kept verbatim so a batch can be reprocessed or audited later.
type ObjectStorage interface {
	// Upload stores an object under the given key.
	Upload(ctx context.Context, key string, reader io.Reader, size int64, contentType string) error

	// Download retrieves an object. The caller closes the reader.
	Download(ctx context.Context, key string) (io.ReadCloser, error)

	// GetURL returns the public URL for an object.
	GetURL(key string) string

	// Delete removes an object.
	Delete(ctx context.Context, key string) error

	// Exists reports whether an object is present.
	Exists(ctx context.Context, key string) (bool, error)

	// EnsureBucket creates the backing bucket if it does not exist.
	EnsureBucket(ctx context.Context) error
}

// ImportKey builds the archive key for a batch's raw payload.
//
// Parameters:
//   - batchID: import batch ID.
//   - filename: original upload filename.
//
// Returns:
//   - string: object key of the form "imports/<batch-id>/<filename>".
func ImportKey(batchID, filename string) string {
	return fmt.Sprintf("imports/%s/%s", batchID, path.Base(filename))
}

// NewStorage creates an ObjectStorage instance based on the configuration.
// Parameters:
//   - cfg: storage configuration including endpoint, credentials, and bucket.
// Returns:
//   - ObjectStorage: initialized storage client implementation.
//   - error: non-nil if the storage client cannot be created.
func NewStorage(cfg *S3Config) (ObjectStorage, error) {
	if cfg.Type == "" {
		cfg.Type = detectStorageType(cfg.Endpoint)
	}
	return NewS3Storage(cfg)
}

// detectStorageType attempts to detect the storage flavor from the endpoint
func detectStorageType(endpoint string) StorageType {
	endpoint = strings.ToLower(endpoint)

	switch {
	case strings.Contains(endpoint, "r2.cloudflarestorage.com"):
		return StorageTypeR2
	case strings.Contains(endpoint, "amazonaws.com"):
		return StorageTypeS3
	default:
		return StorageTypeS3Compatible
	}
}
