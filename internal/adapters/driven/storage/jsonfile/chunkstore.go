// Package jsonfile persists the extracted chunk set as JSON documents in
// the processed directory.
package jsonfile

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/custodia-labs/mediamind/internal/core/domain"
	"github.com/custodia-labs/mediamind/internal/core/ports/driven"
)

// Ensure ChunkStore implements the interface.
var _ driven.ChunkStore = (*ChunkStore)(nil)

const (
	chunksFile  = "all_chunks.json"
	skippedFile = "skipped_pdfs.json"
)

// ChunkStore keeps all_chunks.json and skipped_pdfs.json in one directory.
type ChunkStore struct {
	dir string
}

// NewChunkStore creates a chunk store writing into dir.
func NewChunkStore(dir string) *ChunkStore {
	return &ChunkStore{dir: dir}
}

// ChunksPath returns the path of the chunk file.
func (s *ChunkStore) ChunksPath() string {
	return filepath.Join(s.dir, chunksFile)
}

// SkippedPath returns the path of the skip report.
func (s *ChunkStore) SkippedPath() string {
	return filepath.Join(s.dir, skippedFile)
}

// SaveChunks replaces the chunk file.
func (s *ChunkStore) SaveChunks(_ context.Context, chunks []domain.Chunk) error {
	if chunks == nil {
		chunks = []domain.Chunk{}
	}
	return s.write(s.ChunksPath(), chunks)
}

// LoadChunks reads the chunk file, or returns domain.ErrNotFound if
// extraction has not run yet.
func (s *ChunkStore) LoadChunks(_ context.Context) ([]domain.Chunk, error) {
	data, err := os.ReadFile(s.ChunksPath())
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%s: %w", s.ChunksPath(), domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("reading chunks: %w", err)
	}

	var chunks []domain.Chunk
	if err := json.Unmarshal(data, &chunks); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", s.ChunksPath(), err)
	}
	return chunks, nil
}

// SaveSkipped replaces the skip report.
func (s *ChunkStore) SaveSkipped(_ context.Context, skipped []domain.SkippedDocument) error {
	if skipped == nil {
		skipped = []domain.SkippedDocument{}
	}
	return s.write(s.SkippedPath(), skipped)
}

// LoadSkipped reads the skip report. A missing report is empty.
func (s *ChunkStore) LoadSkipped() ([]domain.SkippedDocument, error) {
	data, err := os.ReadFile(s.SkippedPath())
	if errors.Is(err, os.ErrNotExist) {
		return []domain.SkippedDocument{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading skip report: %w", err)
	}
	var skipped []domain.SkippedDocument
	if err := json.Unmarshal(data, &skipped); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", s.SkippedPath(), err)
	}
	return skipped, nil
}

// write marshals v to a temporary file and renames it over path.
func (s *ChunkStore) write(path string, v any) error {
	if err := os.MkdirAll(s.dir, 0700); err != nil {
		return fmt.Errorf("creating processed directory: %w", err)
	}

	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshalling %s: %w", filepath.Base(path), err)
	}

	tmp, err := os.CreateTemp(s.dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("writing %s: %w", filepath.Base(path), err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", filepath.Base(path), err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("replacing %s: %w", filepath.Base(path), err)
	}
	return nil
}
