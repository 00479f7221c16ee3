// Package minio provides a MinIO implementation of archive.Store.
//
// Usage:
//
//	cfg := archive.DefaultConfig("localhost:9000", "minioadmin", "minioadmin", "snapshots")
//	store, err := minio.New(ctx, cfg)
//	if err != nil { ... }
//	defer store.Close()
//
//	info, err := store.Put(ctx, key, r, size, "application/json")
package minio

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/chinspect/chinspect/internal/archive"
	"github.com/chinspect/chinspect/internal/errs"
	miniogo "github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// Driver is a MinIO implementation of archive.Store.
// It is safe for concurrent use by multiple goroutines.
type Driver struct {
	client *miniogo.Client
	bucket string
}

// New connects to MinIO using the provided Config and returns a Driver.
// It calls Ping to validate the connection and the configured bucket
// before returning.
func New(ctx context.Context, cfg *archive.Config) (*Driver, error) {
	if cfg.Bucket == "" {
		return nil, errs.New(errs.ErrKindInvalidInput, "archive bucket must not be empty")
	}

	client, err := miniogo.New(cfg.Endpoint, &miniogo.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, errs.Wrap(errs.ErrKindConnectionFailed, "failed to create minio client", err)
	}

	d := &Driver{client: client, bucket: cfg.Bucket}

	if err := d.Ping(ctx); err != nil {
		return nil, err
	}

	return d, nil
}

// --- archive.Store implementation ---

// Ping verifies the MinIO server is reachable and the configured bucket
// exists. A reachable server without the bucket reports ErrKindNotFound,
// so a misconfigured bucket name fails at startup rather than on the
// first snapshot.
func (d *Driver) Ping(ctx context.Context) error {
	ok, err := d.client.BucketExists(ctx, d.bucket)
	if err != nil {
		return mapError(err, "ping failed")
	}
	if !ok {
		return errs.New(errs.ErrKindNotFound, fmt.Sprintf("bucket %q does not exist", d.bucket))
	}
	return nil
}

// Close is a no-op for MinIO — the SDK client holds no persistent connections.
func (d *Driver) Close() error {
	return nil
}

// Put uploads size bytes from r to key inside the configured bucket.
func (d *Driver) Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) (*archive.ObjectInfo, error) {
	up, err := d.client.PutObject(ctx, d.bucket, key, r, size, miniogo.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return nil, mapError(err, "failed to put object")
	}

	return &archive.ObjectInfo{
		Key:          up.Key,
		Size:         up.Size,
		ContentType:  contentType,
		ETag:         up.ETag,
		LastModified: up.LastModified,
	}, nil
}

// Stat returns metadata for the object at key inside the configured bucket
// without downloading its content.
func (d *Driver) Stat(ctx context.Context, key string) (*archive.ObjectInfo, error) {
	stat, err := d.client.StatObject(ctx, d.bucket, key, miniogo.StatObjectOptions{})
	if err != nil {
		return nil, mapError(err, "failed to stat object")
	}

	return &archive.ObjectInfo{
		Key:          stat.Key,
		Size:         stat.Size,
		ContentType:  stat.ContentType,
		ETag:         stat.ETag,
		LastModified: stat.LastModified,
	}, nil
}

// Presign returns a time-limited public download URL for the object at key.
func (d *Driver) Presign(ctx context.Context, key string, ttl time.Duration) (string, error) {
	u, err := d.client.PresignedGetObject(ctx, d.bucket, key, ttl, nil)
	if err != nil {
		return "", mapError(err, "failed to generate presigned URL")
	}
	return u.String(), nil
}
