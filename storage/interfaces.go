package storage

import "context"

// BlobStore provides opaque named byte storage for corpus snapshots.
// The retrieval core only requires load/save round-trip correctness, not a
// specific layout or format. Implementations must be thread-safe.
type BlobStore interface {
	// Save writes the blob under key, replacing any previous value.
	Save(ctx context.Context, key string, data []byte) error

	// Load reads the blob stored under key.
	// Returns ErrNotFound if no blob exists for the key.
	Load(ctx context.Context, key string) ([]byte, error)

	// Close closes the storage backend and releases resources.
	Close() error
}
