package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/custodia-labs/mediamind/internal/core/domain"
	"github.com/custodia-labs/mediamind/internal/core/ports/driven"
	"github.com/custodia-labs/mediamind/internal/core/ports/driving"
	"github.com/custodia-labs/mediamind/internal/logger"
)

// Ensure RetrievalService implements the interface.
var _ driving.SearchService = (*RetrievalService)(nil)

// RetrievalService answers top-k queries against the current snapshot.
// It is read-only and safe for concurrent use.
type RetrievalService struct {
	embedder  driven.EmbeddingService
	snapshots driven.SnapshotStore
	timeout   time.Duration
}

// NewRetrievalService creates a retrieval service. timeout bounds the query
// embedding call; zero means no extra bound.
func NewRetrievalService(
	embedder driven.EmbeddingService,
	snapshots driven.SnapshotStore,
	timeout time.Duration,
) *RetrievalService {
	return &RetrievalService{
		embedder:  embedder,
		snapshots: snapshots,
		timeout:   timeout,
	}
}

// Search returns min(topK, corpus size) passages in strictly descending
// score order, ties broken by ascending id. A hit without a metadata row is
// an *domain.IndexConsistencyError.
func (s *RetrievalService) Search(ctx context.Context, question string, topK int) ([]domain.Passage, error) {
	defer logger.Timed("Retrieval")()
	logger.Debug("Question: %q, top_k: %d", question, topK)

	if err := (domain.Query{Question: question, TopK: topK}).Validate(); err != nil {
		return nil, err
	}
	if s.embedder == nil {
		return nil, domain.ErrEmbeddingUnavailable
	}

	// 1. Resolve the snapshot first so an empty corpus costs no embedding call
	snap, err := s.snapshots.Current(ctx)
	if err != nil {
		return nil, fmt.Errorf("current snapshot: %w", err)
	}
	defer snap.Close()

	index := snap.Index()
	n := index.Len()
	if n == 0 {
		logger.Debug("Snapshot %s is empty", snap.Info().Version)
		return []domain.Passage{}, nil
	}
	k := min(topK, n)

	// 2. Encode and normalise the question
	query, err := s.embedQuery(ctx, question)
	if err != nil {
		return nil, err
	}

	// 3. Exact inner-product scan
	hits, err := index.Search(query, k)
	if err != nil {
		return nil, fmt.Errorf("vector search: %w", err)
	}
	logger.Debug("Snapshot %s: %d hits of %d vectors", snap.Info().Version, len(hits), n)

	// 4. Join metadata; a missing row is never dropped silently
	passages := make([]domain.Passage, 0, len(hits))
	for rank, hit := range hits {
		meta, err := snap.Metadata().Get(ctx, hit.ID)
		if errors.Is(err, domain.ErrNotFound) {
			logger.Warn("Vector id %d has no metadata in snapshot %s", hit.ID, snap.Info().Version)
			return nil, &domain.IndexConsistencyError{MissingMetadata: []int64{hit.ID}}
		}
		if err != nil {
			return nil, fmt.Errorf("metadata %d: %w", hit.ID, err)
		}
		passages = append(passages, domain.Passage{
			Rank:    rank,
			Score:   hit.Score,
			DocPath: meta.DocPath,
			Loc:     meta.Loc,
			Text:    meta.Text,
		})
	}
	return passages, nil
}

func (s *RetrievalService) embedQuery(ctx context.Context, question string) ([]float32, error) {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	emb, err := s.embedder.Embed(ctx, question)
	if err != nil {
		return nil, classifyUpstream("embedding", err)
	}
	unit, err := normalise(emb)
	if err != nil {
		return nil, fmt.Errorf("query embedding: %w", err)
	}
	return unit, nil
}
