package domain

import (
	"fmt"
	"sort"
	"time"
)

// VectorRecord is one row of the vector index.
type VectorRecord struct {
	// ID is the dense integer id, 0..n-1 within one build.
	ID int64

	// Embedding is the unit-normalised vector.
	Embedding []float32
}

// MetaRecord is one row of the metadata store.
// It shares its ID with exactly one VectorRecord.
type MetaRecord struct {
	ID      int64
	ChunkID string
	Source  SourceKind
	DocPath string
	Loc     Location
	Text    string
}

// MetaFromChunk builds the metadata row for a chunk assigned the given id.
func MetaFromChunk(id int64, c Chunk) MetaRecord {
	return MetaRecord{
		ID:      id,
		ChunkID: c.ChunkID,
		Source:  c.Source,
		DocPath: c.DocPath,
		Loc:     c.Loc,
		Text:    c.Text,
	}
}

// CheckIdentity verifies that the vector ids and the metadata ids are the
// same set with no duplicates on either side. It returns an
// *IndexConsistencyError describing the difference otherwise.
func CheckIdentity(vectorIDs, metaIDs []int64) error {
	vectors := make(map[int64]struct{}, len(vectorIDs))
	for _, id := range vectorIDs {
		if _, dup := vectors[id]; dup {
			return &IndexConsistencyError{Detail: fmt.Sprintf("duplicate vector id %d", id)}
		}
		vectors[id] = struct{}{}
	}

	metas := make(map[int64]struct{}, len(metaIDs))
	for _, id := range metaIDs {
		if _, dup := metas[id]; dup {
			return &IndexConsistencyError{Detail: fmt.Sprintf("duplicate metadata id %d", id)}
		}
		metas[id] = struct{}{}
	}

	var missingMeta, missingVectors []int64
	for id := range vectors {
		if _, ok := metas[id]; !ok {
			missingMeta = append(missingMeta, id)
		}
	}
	for id := range metas {
		if _, ok := vectors[id]; !ok {
			missingVectors = append(missingVectors, id)
		}
	}
	if len(missingMeta) == 0 && len(missingVectors) == 0 {
		return nil
	}

	sort.Slice(missingMeta, func(i, j int) bool { return missingMeta[i] < missingMeta[j] })
	sort.Slice(missingVectors, func(i, j int) bool { return missingVectors[i] < missingVectors[j] })
	return &IndexConsistencyError{MissingMetadata: missingMeta, MissingVectors: missingVectors}
}

// SnapshotInfo describes a published index snapshot.
type SnapshotInfo struct {
	// Version is the snapshot directory name.
	Version string `json:"version"`

	// Records is the number of vector/metadata pairs.
	Records int `json:"records"`

	// Dimensions is the embedding dimensionality (0 for an empty snapshot).
	Dimensions int `json:"dimensions"`

	// Model is the embedding model that produced the vectors.
	Model string `json:"model"`

	// CreatedAt is when the snapshot was published.
	CreatedAt time.Time `json:"created_at"`
}
