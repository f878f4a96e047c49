package memory

import (
	"context"
	"sync"

	"github.com/custodia-labs/mediamind/internal/core/domain"
	"github.com/custodia-labs/mediamind/internal/core/ports/driven"
)

// Ensure ChunkStore implements the interface.
var _ driven.ChunkStore = (*ChunkStore)(nil)

// ChunkStore is an in-memory implementation of driven.ChunkStore.
type ChunkStore struct {
	mu      sync.RWMutex
	chunks  []domain.Chunk
	saved   bool
	skipped []domain.SkippedDocument
}

// NewChunkStore creates a new in-memory chunk store.
func NewChunkStore() *ChunkStore {
	return &ChunkStore{}
}

// SaveChunks replaces the stored chunk set.
func (s *ChunkStore) SaveChunks(_ context.Context, chunks []domain.Chunk) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.chunks = append([]domain.Chunk(nil), chunks...)
	s.saved = true
	return nil
}

// LoadChunks returns the stored chunk set, or domain.ErrNotFound if none was saved.
func (s *ChunkStore) LoadChunks(_ context.Context) ([]domain.Chunk, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.saved {
		return nil, domain.ErrNotFound
	}
	return append([]domain.Chunk{}, s.chunks...), nil
}

// SaveSkipped replaces the stored skip report.
func (s *ChunkStore) SaveSkipped(_ context.Context, skipped []domain.SkippedDocument) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.skipped = append([]domain.SkippedDocument(nil), skipped...)
	return nil
}

// Skipped returns the stored skip report.
func (s *ChunkStore) Skipped() []domain.SkippedDocument {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.SkippedDocument(nil), s.skipped...)
}
