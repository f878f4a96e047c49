package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/custodia-labs/mediamind/internal/core/domain"
	"github.com/custodia-labs/mediamind/internal/core/ports/driven"
)

// Ensure IngestStore implements the interface.
var _ driven.IngestStore = (*IngestStore)(nil)

// IngestStore is an in-memory implementation of driven.IngestStore.
type IngestStore struct {
	mu      sync.RWMutex
	records map[string]domain.IngestRecord
}

// NewIngestStore creates a new in-memory dedup store.
func NewIngestStore() *IngestStore {
	return &IngestStore{records: make(map[string]domain.IngestRecord)}
}

// Has reports whether the exact path has a record.
func (s *IngestStore) Has(_ context.Context, localPath string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.records[localPath]
	return ok, nil
}

// Record inserts a record; an existing path yields domain.ErrAlreadyExists.
func (s *IngestStore) Record(_ context.Context, rec domain.IngestRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.records[rec.LocalPath]; ok {
		return domain.ErrAlreadyExists
	}
	s.records[rec.LocalPath] = rec
	return nil
}

// List returns all records ordered by path.
func (s *IngestStore) List(_ context.Context) ([]domain.IngestRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.IngestRecord, 0, len(s.records))
	for _, r := range s.records {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].LocalPath < out[j].LocalPath })
	return out, nil
}

// Close is a no-op.
func (s *IngestStore) Close() error {
	return nil
}
