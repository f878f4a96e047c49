package driven

import (
	"context"

	"github.com/custodia-labs/mediamind/internal/core/domain"
)

// IngestStore persists the ingestion dedup table keyed by local path.
type IngestStore interface {
	// Has reports whether a record exists for the exact path string.
	Has(ctx context.Context, localPath string) (bool, error)

	// Record inserts a record. It returns domain.ErrAlreadyExists when the
	// path is already present; existing records are never updated.
	Record(ctx context.Context, rec domain.IngestRecord) error

	// List returns all records ordered by path.
	List(ctx context.Context) ([]domain.IngestRecord, error)

	// Close releases resources.
	Close() error
}

// ChunkStore holds the chunk set between extraction and indexing.
type ChunkStore interface {
	// SaveChunks replaces the stored chunk set.
	SaveChunks(ctx context.Context, chunks []domain.Chunk) error

	// LoadChunks returns the stored chunk set, or domain.ErrNotFound.
	LoadChunks(ctx context.Context) ([]domain.Chunk, error)

	// SaveSkipped replaces the stored skip report.
	SaveSkipped(ctx context.Context, skipped []domain.SkippedDocument) error
}

// ChangeNotifier signals when files appear under a watched directory.
type ChangeNotifier interface {
	// Watch emits after each settled burst of changes until ctx is done.
	Watch(ctx context.Context, dir string) (<-chan struct{}, error)
}
