package driving

import (
	"context"

	"github.com/custodia-labs/mediamind/internal/core/domain"
)

// IngestService uploads local files to object storage at most once per path.
type IngestService interface {
	// AlreadyIngested reports whether the exact path has been recorded.
	AlreadyIngested(ctx context.Context, localPath string) (bool, error)

	// RecordIngested marks the path as uploaded under storageKey.
	RecordIngested(ctx context.Context, localPath, storageKey string) error

	// Ingested returns every dedup record ordered by path.
	Ingested(ctx context.Context) ([]domain.IngestRecord, error)

	// IngestDir uploads every unrecorded file under root.
	IngestDir(ctx context.Context, root string) (*domain.IngestReport, error)
}

// ExtractService turns stored PDFs into the chunk set.
type ExtractService interface {
	// ExtractAll extracts every stored PDF and persists the resulting chunk set.
	ExtractAll(ctx context.Context) (*domain.ExtractionReport, error)
}

// IndexService builds and publishes index snapshots.
type IndexService interface {
	// Build rebuilds the index from the persisted chunk set.
	Build(ctx context.Context) (*domain.SnapshotInfo, error)

	// BuildFrom rebuilds the index from the given chunks.
	BuildFrom(ctx context.Context, chunks []domain.Chunk) (*domain.SnapshotInfo, error)
}
