// Package archive defines the interface for snapshot storage backends.
//
// A snapshot is an immutable upload of introspection artifacts (the
// schema descriptor JSON and the generated model source) under a
// timestamped key prefix. All providers (MinIO, S3, …) implement the
// Store interface. Callers depend only on this package — never on a
// specific provider package.
//
// Usage:
//
//	cfg := archive.DefaultConfig("localhost:9000", "minioadmin", "minioadmin", "snapshots")
//	store, err := minio.New(ctx, cfg)
//	if err != nil { ... }
//	defer store.Close()
//
//	info, err := archive.WriteSnapshot(ctx, store, cfg.Prefix, time.Now(), artifacts)
package archive

import (
	"context"
	"io"
	"time"
)

// Store is the single interface all snapshot storage providers must implement.
type Store interface {
	// Ping verifies the storage backend is reachable and the configured
	// bucket exists.
	Ping(ctx context.Context) error

	// Close releases any held resources (connections, goroutines, etc.).
	Close() error

	// Put uploads size bytes from r to key and returns the stored object's
	// metadata. size must be the exact content length.
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) (*ObjectInfo, error)

	// Stat returns metadata for the object at key without downloading
	// its content.
	Stat(ctx context.Context, key string) (*ObjectInfo, error)

	// Presign returns a time-limited URL that allows anyone to download
	// the object at key without credentials.
	Presign(ctx context.Context, key string, ttl time.Duration) (string, error)
}

// ObjectInfo describes a single stored object.
type ObjectInfo struct {
	// Key is the full object path within the bucket
	// (e.g. "snapshots/20240131T120000Z/schema.json").
	Key string

	// Size is the byte size of the object. -1 if unknown.
	Size int64

	// ContentType is the MIME type (e.g. "application/json").
	ContentType string

	// ETag is the object's entity tag / hash, as returned by the backend.
	ETag string

	// LastModified is when the object was last written.
	LastModified time.Time
}
