package archive

import (
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chinspect/chinspect/internal/errs"
)

type putCall struct {
	key         string
	size        int64
	contentType string
	body        string
}

// fakeStore records Put calls and can be told to fail a named artifact.
type fakeStore struct {
	puts     []putCall
	failName string
	failErr  error
}

func (f *fakeStore) Ping(context.Context) error { return nil }
func (f *fakeStore) Close() error               { return nil }

func (f *fakeStore) Put(_ context.Context, key string, r io.Reader, size int64, contentType string) (*ObjectInfo, error) {
	if f.failName != "" && strings.HasSuffix(key, "/"+f.failName) {
		return nil, f.failErr
	}
	body, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	f.puts = append(f.puts, putCall{key: key, size: size, contentType: contentType, body: string(body)})
	return &ObjectInfo{Key: key, Size: size, ContentType: contentType, ETag: "etag-" + key}, nil
}

func (f *fakeStore) Stat(_ context.Context, key string) (*ObjectInfo, error) {
	for _, p := range f.puts {
		if p.key == key {
			return &ObjectInfo{Key: p.key, Size: p.size, ContentType: p.contentType}, nil
		}
	}
	return nil, errs.New(errs.ErrKindNotFound, "no such object")
}

func (f *fakeStore) Presign(_ context.Context, key string, _ time.Duration) (string, error) {
	return "https://archive.local/" + key, nil
}

var snapAt = time.Date(2024, 1, 31, 12, 0, 0, 0, time.UTC)

func TestSnapshotKey(t *testing.T) {
	assert.Equal(t, "chinspect/20240131T120000Z", SnapshotKey("chinspect", snapAt))
	assert.Equal(t, "20240131T120000Z", SnapshotKey("", snapAt))

	// Stamps always render in UTC regardless of the input location.
	est := time.FixedZone("EST", -5*3600)
	local := time.Date(2024, 1, 31, 12, 0, 0, 0, est)
	assert.Equal(t, "chinspect/20240131T170000Z", SnapshotKey("chinspect", local))
}

func TestWriteSnapshot(t *testing.T) {
	fs := &fakeStore{}
	artifacts := []Artifact{
		{Name: "schema.json", ContentType: "application/json", Body: []byte(`{"tables":[]}`)},
		{Name: "models.go", ContentType: "text/x-go", Body: []byte("package models\n")},
	}

	info, err := WriteSnapshot(context.Background(), fs, "chinspect", snapAt, artifacts)
	require.NoError(t, err)

	assert.Equal(t, "chinspect/20240131T120000Z", info.Key)
	require.Len(t, info.Objects, 2)
	assert.Equal(t, "chinspect/20240131T120000Z/schema.json", info.Objects[0].Key)
	assert.Equal(t, "chinspect/20240131T120000Z/models.go", info.Objects[1].Key)

	require.Len(t, fs.puts, 2)
	assert.Equal(t, `{"tables":[]}`, fs.puts[0].body)
	assert.Equal(t, int64(len(`{"tables":[]}`)), fs.puts[0].size)
	assert.Equal(t, "application/json", fs.puts[0].contentType)
	assert.Equal(t, "package models\n", fs.puts[1].body)
}

func TestWriteSnapshotNoArtifacts(t *testing.T) {
	_, err := WriteSnapshot(context.Background(), &fakeStore{}, "chinspect", snapAt, nil)
	require.Error(t, err)
	assert.True(t, errs.IsInvalidInput(err))
}

func TestWriteSnapshotUnnamedArtifact(t *testing.T) {
	_, err := WriteSnapshot(context.Background(), &fakeStore{}, "chinspect", snapAt, []Artifact{
		{ContentType: "application/json", Body: []byte("{}")},
	})
	require.Error(t, err)
	assert.True(t, errs.IsInvalidInput(err))
}

func TestWriteSnapshotPutFailureNamesKey(t *testing.T) {
	fs := &fakeStore{
		failName: "models.go",
		failErr:  errs.New(errs.ErrKindPermissionDenied, "access denied"),
	}
	artifacts := []Artifact{
		{Name: "schema.json", ContentType: "application/json", Body: []byte("{}")},
		{Name: "models.go", ContentType: "text/x-go", Body: []byte("package models\n")},
	}

	_, err := WriteSnapshot(context.Background(), fs, "chinspect", snapAt, artifacts)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "chinspect/20240131T120000Z/models.go")
	assert.True(t, errs.IsPermissionDenied(err))

	// Artifacts uploaded before the failure stay stored.
	require.Len(t, fs.puts, 1)
	assert.Equal(t, "chinspect/20240131T120000Z/schema.json", fs.puts[0].key)
}
