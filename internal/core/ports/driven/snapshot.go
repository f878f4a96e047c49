package driven

import (
	"context"

	"github.com/custodia-labs/mediamind/internal/core/domain"
)

// Snapshot is one immutable, published pairing of vector index and metadata.
// Callers must Close a snapshot obtained from SnapshotStore.Current.
type Snapshot interface {
	Info() domain.SnapshotInfo
	Index() VectorIndex
	Metadata() MetadataStore

	// Close releases the caller's hold on the snapshot.
	Close() error
}

// PublishRequest carries a complete build to be published.
type PublishRequest struct {
	Vectors []domain.VectorRecord
	Metas   []domain.MetaRecord

	// Model is the embedding model that produced Vectors.
	Model string
}

// SnapshotStore owns the published index state.
//
// Publish must be atomic from a reader's perspective: Current returns either
// the previous snapshot or the new one in full, never a mix. Publish rejects
// a request whose vector and metadata ids are not the same set.
type SnapshotStore interface {
	// Publish validates and installs a new snapshot as current.
	Publish(ctx context.Context, req PublishRequest) (*domain.SnapshotInfo, error)

	// Current returns the current snapshot, or domain.ErrNoSnapshot.
	Current(ctx context.Context) (Snapshot, error)

	// Close releases resources.
	Close() error
}
