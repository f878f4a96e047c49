package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/custodia-labs/mediamind/internal/core/domain"
	"github.com/custodia-labs/mediamind/internal/core/ports/driven"
	"github.com/custodia-labs/mediamind/internal/core/ports/driving"
	"github.com/custodia-labs/mediamind/internal/logger"
)

// Ensure IndexService implements the interface.
var _ driving.IndexService = (*IndexService)(nil)

// IndexOptions tunes a build.
type IndexOptions struct {
	// MaxChars truncates chunk text before encoding.
	MaxChars int

	// BatchSize is the number of texts per embedding call.
	BatchSize int

	// Timeout bounds each embedding call. Zero means no extra bound.
	Timeout time.Duration
}

// IndexService rebuilds the vector index and metadata store from the chunk
// set and publishes them together as one snapshot. Builds are always full.
type IndexService struct {
	chunks    driven.ChunkStore
	embedder  driven.EmbeddingService
	snapshots driven.SnapshotStore
	opts      IndexOptions

	// building serialises builds within the process.
	building sync.Mutex
}

// NewIndexService creates an index builder.
func NewIndexService(
	chunks driven.ChunkStore,
	embedder driven.EmbeddingService,
	snapshots driven.SnapshotStore,
	opts IndexOptions,
) *IndexService {
	if opts.MaxChars <= 0 {
		opts.MaxChars = domain.DefaultMaxChars
	}
	if opts.BatchSize <= 0 {
		opts.BatchSize = domain.DefaultBatchSize
	}
	return &IndexService{
		chunks:    chunks,
		embedder:  embedder,
		snapshots: snapshots,
		opts:      opts,
	}
}

// Build rebuilds the index from the persisted chunk set.
func (s *IndexService) Build(ctx context.Context) (*domain.SnapshotInfo, error) {
	chunks, err := s.chunks.LoadChunks(ctx)
	if err != nil {
		return nil, fmt.Errorf("load chunks: %w", err)
	}
	return s.BuildFrom(ctx, chunks)
}

// BuildFrom assigns ids 0..n-1 in chunk order, embeds the truncated texts,
// normalises the vectors and publishes the result. It fails with
// domain.ErrBuildInProgress when another build is running.
func (s *IndexService) BuildFrom(ctx context.Context, chunks []domain.Chunk) (*domain.SnapshotInfo, error) {
	if !s.building.TryLock() {
		return nil, domain.ErrBuildInProgress
	}
	defer s.building.Unlock()

	if s.embedder == nil {
		return nil, domain.ErrEmbeddingUnavailable
	}

	defer logger.Timed("Index Build")()
	logger.Info("Embedding %d chunks with %s", len(chunks), s.embedder.ModelName())

	vectors := make([]domain.VectorRecord, 0, len(chunks))
	metas := make([]domain.MetaRecord, 0, len(chunks))
	dims := 0

	for start := 0; start < len(chunks); start += s.opts.BatchSize {
		end := min(start+s.opts.BatchSize, len(chunks))
		batch := chunks[start:end]

		texts := make([]string, len(batch))
		for i, c := range batch {
			texts[i] = truncateRunes(c.Text, s.opts.MaxChars)
		}

		embeddings, err := s.embedBatch(ctx, texts)
		if err != nil {
			return nil, fmt.Errorf("embed chunks %d-%d: %w", start, end-1, err)
		}
		if len(embeddings) != len(batch) {
			return nil, fmt.Errorf("embed chunks %d-%d: got %d vectors for %d texts",
				start, end-1, len(embeddings), len(batch))
		}

		for i, emb := range embeddings {
			id := int64(start + i)
			if dims == 0 {
				dims = len(emb)
			}
			if len(emb) != dims {
				return nil, fmt.Errorf("chunk %d: embedding has %d dimensions, want %d", id, len(emb), dims)
			}
			unit, err := normalise(emb)
			if err != nil {
				return nil, fmt.Errorf("chunk %d (%s): %w", id, batch[i].ChunkID, err)
			}
			vectors = append(vectors, domain.VectorRecord{ID: id, Embedding: unit})
			metas = append(metas, domain.MetaFromChunk(id, batch[i]))
		}
		logger.Debug("Embedded %d/%d", end, len(chunks))
	}

	info, err := s.snapshots.Publish(ctx, driven.PublishRequest{
		Vectors: vectors,
		Metas:   metas,
		Model:   s.embedder.ModelName(),
	})
	if err != nil {
		return nil, fmt.Errorf("publish snapshot: %w", err)
	}

	logger.Info("Published snapshot %s with %d records", info.Version, info.Records)
	return info, nil
}

func (s *IndexService) embedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if s.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.opts.Timeout)
		defer cancel()
	}
	out, err := s.embedder.EmbedBatch(ctx, texts)
	return out, classifyUpstream("embedding", err)
}
