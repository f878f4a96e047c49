package memory

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/custodia-labs/mediamind/internal/adapters/driven/vectorindex/flat"
	"github.com/custodia-labs/mediamind/internal/core/domain"
	"github.com/custodia-labs/mediamind/internal/core/ports/driven"
)

// Ensure SnapshotStore implements the interface.
var _ driven.SnapshotStore = (*SnapshotStore)(nil)

// SnapshotStore is an in-memory implementation of driven.SnapshotStore.
// Publish swaps a single pointer under a lock, so readers see whole snapshots.
type SnapshotStore struct {
	mu       sync.RWMutex
	current  *Snapshot
	versions int
}

// NewSnapshotStore creates an empty snapshot store.
func NewSnapshotStore() *SnapshotStore {
	return &SnapshotStore{}
}

// Publish validates the id bijection and installs the snapshot.
func (s *SnapshotStore) Publish(_ context.Context, req driven.PublishRequest) (*domain.SnapshotInfo, error) {
	index := flat.New(0)
	for _, v := range req.Vectors {
		if err := index.Add(v.ID, v.Embedding); err != nil {
			if errors.Is(err, flat.ErrDuplicateID) {
				return nil, &domain.IndexConsistencyError{Detail: err.Error()}
			}
			return nil, fmt.Errorf("building index: %w", err)
		}
	}

	meta := NewMetadataStore()
	metaIDs := make([]int64, 0, len(req.Metas))
	for _, m := range req.Metas {
		meta.rows[m.ID] = m
		metaIDs = append(metaIDs, m.ID)
	}
	if err := domain.CheckIdentity(index.IDs(), metaIDs); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.versions++
	info := domain.SnapshotInfo{
		Version:    fmt.Sprintf("mem-%d", s.versions),
		Records:    index.Len(),
		Dimensions: index.Dimensions(),
		Model:      req.Model,
		CreatedAt:  time.Now().UTC(),
	}
	s.current = &Snapshot{info: info, index: index, meta: meta}
	return &info, nil
}

// Install makes an arbitrary snapshot current without validation.
// It lets tests reproduce states that Publish refuses to create.
func (s *SnapshotStore) Install(snap *Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = snap
}

// Current returns the current snapshot, or domain.ErrNoSnapshot.
func (s *SnapshotStore) Current(_ context.Context) (driven.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		return nil, domain.ErrNoSnapshot
	}
	return s.current, nil
}

// Close is a no-op.
func (s *SnapshotStore) Close() error {
	return nil
}

// Snapshot is an in-memory driven.Snapshot.
type Snapshot struct {
	info  domain.SnapshotInfo
	index *flat.Index
	meta  *MetadataStore
}

// NewSnapshot assembles a snapshot from parts.
func NewSnapshot(info domain.SnapshotInfo, index *flat.Index, meta *MetadataStore) *Snapshot {
	return &Snapshot{info: info, index: index, meta: meta}
}

// Info returns the snapshot description.
func (s *Snapshot) Info() domain.SnapshotInfo { return s.info }

// Index returns the vector index.
func (s *Snapshot) Index() driven.VectorIndex { return s.index }

// Metadata returns the metadata store.
func (s *Snapshot) Metadata() driven.MetadataStore { return s.meta }

// Close is a no-op.
func (s *Snapshot) Close() error { return nil }

// Ensure MetadataStore implements the interface.
var _ driven.MetadataStore = (*MetadataStore)(nil)

// MetadataStore is an in-memory implementation of driven.MetadataStore.
type MetadataStore struct {
	rows map[int64]domain.MetaRecord
}

// NewMetadataStore creates a metadata store holding metas.
func NewMetadataStore(metas ...domain.MetaRecord) *MetadataStore {
	m := &MetadataStore{rows: make(map[int64]domain.MetaRecord, len(metas))}
	for _, r := range metas {
		m.rows[r.ID] = r
	}
	return m
}

// Get returns the row for id, or domain.ErrNotFound.
func (m *MetadataStore) Get(_ context.Context, id int64) (*domain.MetaRecord, error) {
	r, ok := m.rows[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &r, nil
}

// IDs returns every id in ascending order.
func (m *MetadataStore) IDs(_ context.Context) ([]int64, error) {
	ids := make([]int64, 0, len(m.rows))
	for id := range m.rows {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

// Count returns the number of rows.
func (m *MetadataStore) Count(_ context.Context) (int, error) {
	return len(m.rows), nil
}
