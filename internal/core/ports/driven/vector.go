package driven

import (
	"context"

	"github.com/custodia-labs/mediamind/internal/core/domain"
)

// VectorIndex provides exact inner-product search over one snapshot.
// Implementations are read-only once loaded and safe for concurrent use.
type VectorIndex interface {
	// Search returns at most k hits ordered by descending score, ties broken
	// by ascending id. k larger than Len is clamped.
	Search(query []float32, k int) ([]VectorHit, error)

	// Len returns the number of vectors.
	Len() int

	// Dimensions returns the vector size (0 when the index is empty).
	Dimensions() int

	// IDs returns every id in ascending order.
	IDs() []int64
}

// VectorHit represents a similarity search result.
type VectorHit struct {
	// ID is the matched record.
	ID int64

	// Score is the inner product with the query.
	Score float64
}

// MetadataStore resolves vector ids to chunk metadata for one snapshot.
type MetadataStore interface {
	// Get returns the row for id, or domain.ErrNotFound.
	Get(ctx context.Context, id int64) (*domain.MetaRecord, error)

	// IDs returns every id in ascending order.
	IDs(ctx context.Context) ([]int64, error)

	// Count returns the number of rows.
	Count(ctx context.Context) (int, error)
}
