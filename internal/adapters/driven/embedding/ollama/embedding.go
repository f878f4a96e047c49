// Package ollama embeds passages and questions with a local Ollama model.
package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/custodia-labs/mediamind/internal/core/domain"
	"github.com/custodia-labs/mediamind/internal/core/ports/driven"
)

var _ driven.EmbeddingService = (*EmbeddingService)(nil)

const (
	DefaultBaseURL   = "http://localhost:11434"
	DefaultModel     = "all-minilm"
	DefaultTimeout   = 30 * time.Second
	DefaultBatchSize = 64
)

// Config configures EmbeddingService. Zero fields take the defaults.
type Config struct {
	BaseURL string
	Model   string
	Timeout time.Duration

	// Dimensions is looked up for known models when zero, and otherwise
	// learned from the first response.
	Dimensions int

	// BatchSize caps the inputs sent in one /api/embed call. Ollama embeds
	// a batch sequentially, so large batches run into Timeout.
	BatchSize int
}

// EmbeddingService calls /api/embed.
type EmbeddingService struct {
	client    *http.Client
	baseURL   string
	model     string
	batchSize int

	mu         sync.RWMutex
	dimensions int
}

type embedRequest struct {
	Model    string   `json:"model"`
	Input    []string `json:"input"`
	Truncate bool     `json:"truncate"`
}

type embedResponse struct {
	Embeddings [][]float64 `json:"embeddings"`
}

type tagsResponse struct {
	Models []struct {
		Name string `json:"name"`
	} `json:"models"`
}

// NewEmbeddingService creates an EmbeddingService.
func NewEmbeddingService(cfg Config) *EmbeddingService {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.Dimensions == 0 {
		cfg.Dimensions = domain.EmbeddingDimensions()[cfg.Model]
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = DefaultBatchSize
	}

	return &EmbeddingService{
		client:     &http.Client{Timeout: cfg.Timeout},
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		model:      cfg.Model,
		batchSize:  cfg.BatchSize,
		dimensions: cfg.Dimensions,
	}
}

// Embed embeds one text.
func (s *EmbeddingService) Embed(ctx context.Context, text string) ([]float32, error) {
	vecs, err := s.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vecs[0], nil
}

// EmbedBatch embeds texts in order, BatchSize inputs per request. Inputs
// longer than the model's context are truncated by the server.
func (s *EmbeddingService) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, 0, len(texts))
	for start := 0; start < len(texts); start += s.batchSize {
		batch := texts[start:min(start+s.batchSize, len(texts))]
		vecs, err := s.embed(ctx, batch)
		if err != nil {
			return nil, err
		}
		out = append(out, vecs...)
	}
	return out, nil
}

func (s *EmbeddingService) embed(ctx context.Context, texts []string) ([][]float32, error) {
	var resp embedResponse
	if err := s.call(ctx, http.MethodPost, "/api/embed", embedRequest{Model: s.model, Input: texts, Truncate: true}, &resp); err != nil {
		return nil, err
	}
	if len(resp.Embeddings) != len(texts) {
		return nil, fmt.Errorf("ollama: got %d embeddings for %d inputs", len(resp.Embeddings), len(texts))
	}

	vecs := make([][]float32, len(texts))
	for i, raw := range resp.Embeddings {
		if len(raw) == 0 {
			return nil, fmt.Errorf("ollama: empty embedding for input %d", i)
		}
		v := make([]float32, len(raw))
		for j, x := range raw {
			v[j] = float32(x)
		}
		vecs[i] = v
	}
	s.learnDimensions(len(vecs[0]))
	return vecs, nil
}

func (s *EmbeddingService) call(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader = http.NoBody
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("ollama: marshal request: %w", err)
		}
		body = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, method, s.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("ollama: create request: %w", err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("ollama: %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		return fmt.Errorf("ollama: %s: status %d: %s", path, resp.StatusCode, strings.TrimSpace(string(msg)))
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("ollama: decode %s: %w", path, err)
	}
	return nil
}

func (s *EmbeddingService) learnDimensions(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.dimensions == 0 {
		s.dimensions = n
	}
}

// Dimensions returns the vector size, or 0 until the first embedding of an
// unknown model.
func (s *EmbeddingService) Dimensions() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.dimensions
}

func (s *EmbeddingService) ModelName() string { return s.model }

// Ping checks the server answers and that the model has been pulled.
func (s *EmbeddingService) Ping(ctx context.Context) error {
	var tags tagsResponse
	if err := s.call(ctx, http.MethodGet, "/api/tags", nil, &tags); err != nil {
		return err
	}
	want := strings.TrimSuffix(s.model, ":latest")
	for _, m := range tags.Models {
		if strings.TrimSuffix(m.Name, ":latest") == want {
			return nil
		}
	}
	return fmt.Errorf("ollama: model %q is not pulled (ollama pull %s)", s.model, s.model)
}

func (s *EmbeddingService) Close() error { return nil }
