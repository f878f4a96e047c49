// Package ollama completes synthesis prompts with a local Ollama model.
package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/custodia-labs/mediamind/internal/core/ports/driven"
)

var _ driven.LLMService = (*LLMService)(nil)

const (
	DefaultBaseURL    = "http://localhost:11434"
	DefaultLLMModel   = "mistral"
	DefaultLLMTimeout = 120 * time.Second
)

// LLMConfig configures LLMService. Zero fields take the defaults.
type LLMConfig struct {
	BaseURL string
	Model   string
	Timeout time.Duration

	// KeepAlive is how long Ollama keeps the model loaded after a request,
	// e.g. "10m". Empty uses the server default.
	KeepAlive string
}

// LLMService calls /api/generate without streaming.
type LLMService struct {
	client    *http.Client
	baseURL   string
	model     string
	keepAlive string
}

type generateRequest struct {
	Model     string         `json:"model"`
	Prompt    string         `json:"prompt"`
	Stream    bool           `json:"stream"`
	KeepAlive string         `json:"keep_alive,omitempty"`
	Options   map[string]any `json:"options"`
}

type generateResponse struct {
	Response        string `json:"response"`
	Done            bool   `json:"done"`
	DoneReason      string `json:"done_reason"`
	PromptEvalCount int    `json:"prompt_eval_count"`
	EvalCount       int    `json:"eval_count"`
	Error           string `json:"error"`
}

// NewLLMService creates an LLMService.
func NewLLMService(cfg LLMConfig) *LLMService {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultLLMModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultLLMTimeout
	}

	return &LLMService{
		client:    &http.Client{Timeout: cfg.Timeout},
		baseURL:   strings.TrimRight(cfg.BaseURL, "/"),
		model:     cfg.Model,
		keepAlive: cfg.KeepAlive,
	}
}

// Complete runs one generation. Temperature is always sent so that zero
// means greedy decoding rather than the model's default.
func (s *LLMService) Complete(ctx context.Context, prompt string, opts driven.CompletionOptions) (driven.Completion, error) {
	options := map[string]any{"temperature": opts.Temperature}
	if opts.MaxTokens > 0 {
		options["num_predict"] = opts.MaxTokens
	}
	if len(opts.Stop) > 0 {
		options["stop"] = opts.Stop
	}

	data, err := json.Marshal(generateRequest{
		Model:     s.model,
		Prompt:    prompt,
		KeepAlive: s.keepAlive,
		Options:   options,
	})
	if err != nil {
		return driven.Completion{}, fmt.Errorf("ollama: marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/api/generate", bytes.NewReader(data))
	if err != nil {
		return driven.Completion{}, fmt.Errorf("ollama: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return driven.Completion{}, fmt.Errorf("ollama: generate: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return driven.Completion{}, fmt.Errorf("ollama: read response: %w", err)
	}

	var gen generateResponse
	decodeErr := json.Unmarshal(body, &gen)
	switch {
	case gen.Error != "":
		return driven.Completion{}, fmt.Errorf("ollama: status %d: %s", resp.StatusCode, gen.Error)
	case resp.StatusCode != http.StatusOK:
		return driven.Completion{}, fmt.Errorf("ollama: status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	case decodeErr != nil:
		return driven.Completion{}, fmt.Errorf("ollama: decode response: %w", decodeErr)
	}

	return driven.Completion{
		Text:         gen.Response,
		Truncated:    gen.DoneReason == "length",
		PromptTokens: gen.PromptEvalCount,
		OutputTokens: gen.EvalCount,
	}, nil
}

func (s *LLMService) ModelName() string { return s.model }

// Ping lists local models via /api/tags.
func (s *LLMService) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"/api/tags", http.NoBody)
	if err != nil {
		return fmt.Errorf("ollama: create ping request: %w", err)
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("ollama: ping: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("ollama: ping: status %d", resp.StatusCode)
	}
	return nil
}

func (s *LLMService) Close() error { return nil }
