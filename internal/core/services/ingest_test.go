package services

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/mediamind/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/mediamind/internal/core/domain"
)

// failingObjects rejects uploads of the named keys.
type failingObjects struct {
	*memory.ObjectStore
	fail map[string]bool
}

func (f *failingObjects) Upload(ctx context.Context, key string, r io.Reader, size int64, contentType string) error {
	if f.fail[key] {
		return errors.New("connection reset")
	}
	return f.ObjectStore.Upload(ctx, key, r, size, contentType)
}

// brokenTracker fails every dedup lookup.
type brokenTracker struct {
	*memory.IngestStore
}

func (brokenTracker) Has(context.Context, string) (bool, error) {
	return false, errors.New("database is locked")
}

func writeFiles(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		path := filepath.Join(root, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0700))
		require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	}
}

func TestStorageKey(t *testing.T) {
	key, err := StorageKey("raw/", "/in", "/in/sub/report.PDF")
	require.NoError(t, err)
	assert.Equal(t, "raw/pdf/sub/report.PDF", key)

	key, err = StorageKey("raw/", "/in", "/in/clip.mp4")
	require.NoError(t, err)
	assert.Equal(t, "raw/videos/clip.mp4", key)
}

func TestIngestService_IngestDir(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	writeFiles(t, root, map[string]string{
		"a.pdf":       "%PDF-a",
		"scans/b.pdf": "%PDF-b",
		"photo.jpg":   "jpeg",
		"notes.txt":   "text",
	})
	objects := memory.NewObjectStore("bucket")
	tracker := memory.NewIngestStore()
	svc := NewIngestService(objects, tracker, "raw/")

	report, err := svc.IngestDir(ctx, root)

	require.NoError(t, err)
	assert.Equal(t, 4, report.Uploaded)
	assert.Equal(t, 0, report.Skipped)
	assert.Equal(t, 0, report.Failed())
	assert.True(t, objects.BucketCreated())

	keys, err := objects.List(ctx, "raw/")
	require.NoError(t, err)
	assert.Equal(t, []string{
		"raw/images/photo.jpg",
		"raw/other/notes.txt",
		"raw/pdf/a.pdf",
		"raw/pdf/scans/b.pdf",
	}, keys)
	assert.Equal(t, "application/pdf", objects.ContentType("raw/pdf/a.pdf"))

	ok, err := svc.AlreadyIngested(ctx, filepath.Join(root, "scans", "b.pdf"))
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestIngestService_SecondRunUploadsNothing(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	writeFiles(t, root, map[string]string{"a.pdf": "one", "b.pdf": "two"})
	objects := memory.NewObjectStore("bucket")
	svc := NewIngestService(objects, memory.NewIngestStore(), "raw/")

	_, err := svc.IngestDir(ctx, root)
	require.NoError(t, err)
	before, err := svc.Ingested(ctx)
	require.NoError(t, err)
	require.Len(t, before, 2)

	// Changing content does not matter: dedup is by path only.
	writeFiles(t, root, map[string]string{"a.pdf": "changed"})
	report, err := svc.IngestDir(ctx, root)

	require.NoError(t, err)
	assert.Equal(t, 0, report.Uploaded)
	assert.Equal(t, 2, report.Skipped)
	after, err := svc.Ingested(ctx)
	require.NoError(t, err)
	assert.Equal(t, before, after, "a repeat run adds no dedup rows")
	data, err := objects.Download(ctx, "raw/pdf/a.pdf")
	require.NoError(t, err)
	assert.Equal(t, "one", string(data))
}

func TestIngestService_NewFileAfterFirstRun(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	writeFiles(t, root, map[string]string{"a.pdf": "one"})
	svc := NewIngestService(memory.NewObjectStore("bucket"), memory.NewIngestStore(), "raw/")
	_, err := svc.IngestDir(ctx, root)
	require.NoError(t, err)

	writeFiles(t, root, map[string]string{"b.pdf": "two"})
	report, err := svc.IngestDir(ctx, root)

	require.NoError(t, err)
	assert.Equal(t, 1, report.Uploaded)
	assert.Equal(t, 1, report.Skipped)
}

func TestIngestService_UploadFailureIsCountedAndRetriedLater(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	writeFiles(t, root, map[string]string{"a.pdf": "a", "b.pdf": "b"})
	objects := &failingObjects{ObjectStore: memory.NewObjectStore("bucket"), fail: map[string]bool{"raw/pdf/a.pdf": true}}
	tracker := memory.NewIngestStore()
	svc := NewIngestService(objects, tracker, "raw/")

	report, err := svc.IngestDir(ctx, root)

	require.NoError(t, err)
	assert.Equal(t, 1, report.Uploaded)
	require.Equal(t, 1, report.Failed())
	assert.Equal(t, filepath.Join(root, "a.pdf"), report.Failures[0].Path)

	ok, err := tracker.Has(ctx, filepath.Join(root, "a.pdf"))
	require.NoError(t, err)
	assert.False(t, ok, "a failed upload must not be recorded")

	objects.fail = nil
	report, err = svc.IngestDir(ctx, root)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Uploaded)
	assert.Equal(t, 1, report.Skipped)
}

func TestIngestService_DedupStoreFailureStopsRun(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, map[string]string{"a.pdf": "a"})
	objects := memory.NewObjectStore("bucket")
	svc := NewIngestService(objects, brokenTracker{memory.NewIngestStore()}, "raw/")

	_, err := svc.IngestDir(context.Background(), root)

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrDedupStore)
	keys, _ := objects.List(context.Background(), "")
	assert.Empty(t, keys, "nothing is uploaded when the dedup table cannot be read")
}

func TestIngestService_NotADirectory(t *testing.T) {
	root := t.TempDir()
	file := filepath.Join(root, "a.pdf")
	writeFiles(t, root, map[string]string{"a.pdf": "a"})
	svc := NewIngestService(memory.NewObjectStore("b"), memory.NewIngestStore(), "raw/")

	_, err := svc.IngestDir(context.Background(), file)

	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestIngestService_RecordIngestedTwiceKeepsOriginal(t *testing.T) {
	ctx := context.Background()
	tracker := memory.NewIngestStore()
	svc := NewIngestService(memory.NewObjectStore("b"), tracker, "raw/")
	svc.now = func() time.Time { return time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC) }

	require.NoError(t, svc.RecordIngested(ctx, "/in/a.pdf", "raw/pdf/a.pdf"))
	require.NoError(t, svc.RecordIngested(ctx, "/in/a.pdf", "raw/pdf/other.pdf"))

	records, err := tracker.List(ctx)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "raw/pdf/a.pdf", records[0].StorageKey)
	assert.Equal(t, 2024, records[0].UploadedAt.Year())
}

func TestIngestService_Ingested(t *testing.T) {
	ctx := context.Background()
	svc := NewIngestService(memory.NewObjectStore("b"), memory.NewIngestStore(), "raw/")

	require.NoError(t, svc.RecordIngested(ctx, "/in/b.pdf", "raw/pdf/b.pdf"))
	require.NoError(t, svc.RecordIngested(ctx, "/in/a.pdf", "raw/pdf/a.pdf"))

	records, err := svc.Ingested(ctx)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "/in/a.pdf", records[0].LocalPath)
	assert.Equal(t, "/in/b.pdf", records[1].LocalPath)
}
