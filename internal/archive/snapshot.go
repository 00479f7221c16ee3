package archive

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"time"

	"github.com/chinspect/chinspect/internal/errs"
)

// stampLayout renders snapshot timestamps as compact UTC stamps.
// Keys built from it sort lexically in chronological order, so the
// newest snapshot is always the last prefix in a bucket listing.
const stampLayout = "20060102T150405Z"

// Artifact is one named file inside a snapshot.
type Artifact struct {
	// Name is the file name within the snapshot (e.g. "schema.json").
	Name string

	// ContentType is the MIME type the artifact is stored under.
	ContentType string

	// Body is the full artifact content.
	Body []byte
}

// SnapshotInfo describes a completed snapshot upload.
type SnapshotInfo struct {
	// Key is the common key prefix shared by all objects in the snapshot
	// (e.g. "chinspect/20240131T120000Z").
	Key string

	// Objects holds the stored metadata of each artifact, in upload order.
	Objects []ObjectInfo
}

// SnapshotKey returns the key prefix a snapshot taken at the given time
// is stored under.
func SnapshotKey(prefix string, at time.Time) string {
	return path.Join(prefix, at.UTC().Format(stampLayout))
}

// WriteSnapshot uploads artifacts to s under SnapshotKey(prefix, at).
//
// The upload is not atomic: if an artifact fails, artifacts uploaded
// before it remain stored, and the returned error names the failed key.
func WriteSnapshot(ctx context.Context, s Store, prefix string, at time.Time, artifacts []Artifact) (*SnapshotInfo, error) {
	if len(artifacts) == 0 {
		return nil, errs.New(errs.ErrKindInvalidInput, "snapshot needs at least one artifact")
	}

	info := &SnapshotInfo{Key: SnapshotKey(prefix, at)}

	for _, a := range artifacts {
		if a.Name == "" {
			return nil, errs.New(errs.ErrKindInvalidInput, "artifact name must not be empty")
		}

		key := path.Join(info.Key, a.Name)
		obj, err := s.Put(ctx, key, bytes.NewReader(a.Body), int64(len(a.Body)), a.ContentType)
		if err != nil {
			return nil, fmt.Errorf("upload %s: %w", key, err)
		}
		info.Objects = append(info.Objects, *obj)
	}

	return info, nil
}
