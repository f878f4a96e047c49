// Package openai embeds passages and questions through the OpenAI (or an
// OpenAI-compatible) /embeddings endpoint.
package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/custodia-labs/mediamind/internal/core/domain"
	"github.com/custodia-labs/mediamind/internal/core/ports/driven"
)

var _ driven.EmbeddingService = (*EmbeddingService)(nil)

// Default configuration values.
const (
	DefaultBaseURL = "https://api.openai.com/v1"
	DefaultModel   = "text-embedding-3-small"
	DefaultTimeout = 60 * time.Second

	// MaxInputsPerRequest is the API's limit on inputs in one call.
	MaxInputsPerRequest = 2048

	fallbackDimensions = 1536
)

// Config holds configuration for the OpenAI embedding service.
type Config struct {
	// APIKey is the OpenAI API key (required).
	APIKey string

	// BaseURL is the API base URL. Compatible servers work too.
	BaseURL string

	// Model is the embedding model (default text-embedding-3-small).
	Model string

	// Timeout bounds each HTTP request.
	Timeout time.Duration

	// Dimensions requests shortened vectors from text-embedding-3 models.
	Dimensions int
}

// EmbeddingService calls the /embeddings endpoint.
type EmbeddingService struct {
	client     *http.Client
	baseURL    string
	apiKey     string
	model      string
	dimensions int
}

type embeddingRequest struct {
	Model      string   `json:"model"`
	Input      []string `json:"input"`
	Dimensions int      `json:"dimensions,omitempty"`
}

type embeddingResponse struct {
	Data []struct {
		Embedding []float64 `json:"embedding"`
		Index     int       `json:"index"`
	} `json:"data"`
}

type apiError struct {
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

// NewEmbeddingService creates a new OpenAI embedding service.
func NewEmbeddingService(cfg Config) (*EmbeddingService, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("openai: API key is required")
	}
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
		d, ok := domain.EmbeddingDimensions()[cfg.Model]
		if !ok {
			d = fallbackDimensions
		}
		cfg.Dimensions = d
	}

	return &EmbeddingService{
		client:     &http.Client{Timeout: cfg.Timeout},
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:     cfg.APIKey,
		model:      cfg.Model,
		dimensions: cfg.Dimensions,
	}, nil
}

// Embed embeds a single text.
func (s *EmbeddingService) Embed(ctx context.Context, text string) ([]float32, error) {
	embeddings, err := s.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return embeddings[0], nil
}

// EmbedBatch embeds texts in order, splitting them across as many requests
// as the API's input limit requires.
func (s *EmbeddingService) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, 0, len(texts))
	for start := 0; start < len(texts); start += MaxInputsPerRequest {
		end := min(start+MaxInputsPerRequest, len(texts))
		vecs, err := s.embed(ctx, texts[start:end])
		if err != nil {
			return nil, err
		}
		out = append(out, vecs...)
	}
	return out, nil
}

// embed sends one request and returns the vectors ordered by input index.
func (s *EmbeddingService) embed(ctx context.Context, texts []string) ([][]float32, error) {
	req := embeddingRequest{Model: s.model, Input: texts}
	if strings.HasPrefix(s.model, "text-embedding-3") {
		req.Dimensions = s.dimensions
	}

	var resp embeddingResponse
	if err := s.do(ctx, http.MethodPost, "/embeddings", req, &resp); err != nil {
		return nil, err
	}
	if len(resp.Data) != len(texts) {
		return nil, fmt.Errorf("openai: got %d embeddings for %d inputs", len(resp.Data), len(texts))
	}

	vecs := make([][]float32, len(texts))
	for _, d := range resp.Data {
		if d.Index < 0 || d.Index >= len(texts) || vecs[d.Index] != nil {
			return nil, fmt.Errorf("openai: bad embedding index %d", d.Index)
		}
		v := make([]float32, len(d.Embedding))
		for i, x := range d.Embedding {
			v[i] = float32(x)
		}
		vecs[d.Index] = v
	}
	return vecs, nil
}

// do performs an authenticated request. A non-2xx status is reported with
// the API's own error message when the body carries one.
func (s *EmbeddingService) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader = http.NoBody
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("openai: marshal request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, s.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("openai: create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.apiKey)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("openai: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("openai: read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var apiErr apiError
		if json.Unmarshal(data, &apiErr) == nil && apiErr.Error != nil {
			return fmt.Errorf("openai: status %d: %s", resp.StatusCode, apiErr.Error.Message)
		}
		return fmt.Errorf("openai: status %d: %s", resp.StatusCode, strings.TrimSpace(string(data)))
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("openai: decode response: %w", err)
	}
	return nil
}

// Dimensions returns the embedding vector size.
func (s *EmbeddingService) Dimensions() int {
	return s.dimensions
}

// ModelName returns the embedding model.
func (s *EmbeddingService) ModelName() string {
	return s.model
}

// Ping lists models, which checks the key without running inference.
func (s *EmbeddingService) Ping(ctx context.Context) error {
	return s.do(ctx, http.MethodGet, "/models", nil, nil)
}

// Close releases resources.
func (s *EmbeddingService) Close() error {
	return nil
}
